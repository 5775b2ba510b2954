package api

import (
	"context"
	"fmt"

	"github.com/tathya/tathya-cli/pkg/logger"
)

// CreateCommentRequest is the body for comments and replies
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// CreateComment adds a top-level comment to a post
func (s *Store) CreateComment(ctx context.Context, postID, content string) error {
	logger.Debug("Creating comment", "post_id", postID)

	resp, err := s.http.R().
		SetContext(ctx).
		SetPathParam("postId", postID).
		SetBody(CreateCommentRequest{Content: content}).
		Post("/api/posts/{postId}/comments")

	if err := CheckResponse(resp, err); err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// CreateReply adds a reply under a comment
func (s *Store) CreateReply(ctx context.Context, postID, commentID, content string) error {
	logger.Debug("Creating reply", "post_id", postID, "comment_id", commentID)

	resp, err := s.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"postId":    postID,
			"commentId": commentID,
		}).
		SetBody(CreateCommentRequest{Content: content}).
		Post("/api/posts/{postId}/comments/{commentId}/replies")

	if err := CheckResponse(resp, err); err != nil {
		return fmt.Errorf("failed to create reply: %w", err)
	}

	return nil
}

// ToggleCommentLike flips the viewer's like on a comment, or on a reply
// when replyID is set
func (s *Store) ToggleCommentLike(ctx context.Context, postID, commentID, replyID string) (*LikeState, error) {
	logger.Debug("Toggling comment like", "post_id", postID, "comment_id", commentID, "reply_id", replyID)

	params := map[string]string{
		"postId":    postID,
		"commentId": commentID,
	}
	path := "/api/posts/{postId}/comments/{commentId}/like"
	if replyID != "" {
		params["replyId"] = replyID
		path = "/api/posts/{postId}/comments/{commentId}/replies/{replyId}/like"
	}

	resp, err := s.http.R().
		SetContext(ctx).
		SetPathParams(params).
		Post(path)

	if err := CheckResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to toggle comment like: %w", err)
	}

	return decodeLikeState(resp.Body())
}
