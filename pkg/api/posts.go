package api

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"
	cliErrors "github.com/tathya/tathya-cli/pkg/errors"
	"github.com/tathya/tathya-cli/pkg/logger"
)

// CreatePostRequest is the request to create a new post. Files are sent
// in order as repeated "files" multipart parts.
type CreatePostRequest struct {
	Title       string
	Content     string
	CommunityID string
	FilePaths   []string
}

// TogglePostLike flips the viewer's like on a post
func (s *Store) TogglePostLike(ctx context.Context, postID string) (*LikeState, error) {
	logger.Debug("Toggling post like", "post_id", postID)

	resp, err := s.http.R().
		SetContext(ctx).
		SetPathParam("postId", postID).
		Post("/api/posts/{postId}/like")

	if err := CheckResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to toggle like: %w", err)
	}

	return decodeLikeState(resp.Body())
}

// CreatePost uploads a post with its attachments
func (s *Store) CreatePost(ctx context.Context, req CreatePostRequest) (*RawPost, error) {
	logger.Debug("Creating post", "title", req.Title, "files", len(req.FilePaths))

	fields := make([]*resty.MultipartField, 0, len(req.FilePaths))
	for _, path := range req.FilePaths {
		f, err := os.Open(path)
		if err != nil {
			return nil, cliErrors.FileNotFoundError(path).WithCause(err)
		}
		defer f.Close()

		contentType, err := detectContentType(f, path)
		if err != nil {
			return nil, err
		}

		fields = append(fields, &resty.MultipartField{
			Param:       "files",
			FileName:    filepath.Base(path),
			ContentType: contentType,
			Reader:      f,
		})
	}

	form := map[string]string{
		"title":   req.Title,
		"content": req.Content,
	}
	if req.CommunityID != "" {
		form["communityId"] = req.CommunityID
	}

	request := s.http.R().
		SetContext(ctx).
		SetMultipartFormData(form)
	if len(fields) > 0 {
		request.SetMultipartFields(fields...)
	}

	resp, err := request.Post("/api/posts")
	if err := CheckResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	var response struct {
		Post RawPost `json:"post"`
	}
	if err := json.Unmarshal(resp.Body(), &response); err != nil {
		return nil, err
	}

	return &response.Post, nil
}

// DeletePost removes a post with its comments and replies (moderators only)
func (s *Store) DeletePost(ctx context.Context, postID string) error {
	logger.Debug("Deleting post", "post_id", postID)

	resp, err := s.http.R().
		SetContext(ctx).
		SetPathParam("postId", postID).
		Delete("/api/posts/{postId}")

	if err := CheckResponse(resp, err); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return nil
}

// detectContentType prefers the extension, then sniffs the first bytes
func detectContentType(f *os.File, path string) (string, error) {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct, nil
	}

	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}
