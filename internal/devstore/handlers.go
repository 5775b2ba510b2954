package devstore

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Message: message})
}

// respondRepoError maps repository errors onto statuses
func (s *Server) respondRepoError(c *gin.Context, err error, what string) {
	if errors.Is(err, ErrNotFound) {
		respondError(c, http.StatusNotFound, "not_found", what+" not found")
		return
	}
	s.log.Error("Repository error", zap.String("path", c.FullPath()), zap.Error(err))
	respondError(c, http.StatusInternalServerError, "internal_error", "internal server error")
}

func pagination(c *gin.Context) (page, limit int) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "email and password are required")
		return
	}

	user, err := s.repo.Authenticate(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		respondError(c, http.StatusUnauthorized, "invalid_credentials", err.Error())
		return
	}
	if err != nil {
		s.respondRepoError(c, err, "user")
		return
	}

	token, ttl, err := s.tokens.Issue(user)
	if err != nil {
		s.log.Error("Failed to issue token", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal_error", "could not sign in")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresIn": int(ttl.Seconds()),
		"user":      selfUser(*user),
	})
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": selfUser(*currentUser(c))})
}

func (s *Server) recentPosts(c *gin.Context) {
	page, limit := pagination(c)
	posts, err := s.repo.RecentPosts(c.Request.Context(), page, limit)
	if err != nil {
		s.respondRepoError(c, err, "posts")
		return
	}
	s.respondPosts(c, posts)
}

func (s *Server) communityPosts(c *gin.Context) {
	page, limit := pagination(c)
	posts, err := s.repo.CommunityPosts(c.Request.Context(), c.Param("communityId"), page, limit)
	if err != nil {
		s.respondRepoError(c, err, "posts")
		return
	}
	s.respondPosts(c, posts)
}

func (s *Server) respondPosts(c *gin.Context, posts []Post) {
	out, err := s.repo.renderPosts(c.Request.Context(), posts)
	if err != nil {
		s.respondRepoError(c, err, "posts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": out})
}

func (s *Server) createPost(c *gin.Context) {
	user := currentUser(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadMB<<20)

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "expected a multipart form")
		return
	}
	content := strings.TrimSpace(c.PostForm("content"))
	if content == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "content is required")
		return
	}

	post := &Post{
		AuthorID:    user.ID,
		CommunityID: strings.TrimSpace(c.PostForm("communityId")),
		Title:       strings.TrimSpace(c.PostForm("title")),
		Content:     content,
	}

	files := form.File["files"]
	for _, fh := range files {
		mimeType := fh.Header.Get("Content-Type")
		if !strings.HasPrefix(mimeType, "image/") && !strings.HasPrefix(mimeType, "video/") {
			respondError(c, http.StatusBadRequest, "validation_error",
				fmt.Sprintf("%s: only images and videos can be attached", fh.Filename))
			return
		}
	}

	saved := make([]string, 0, len(files))
	for _, fh := range files {
		name := newID() + strings.ToLower(filepath.Ext(fh.Filename))
		if err := c.SaveUploadedFile(fh, filepath.Join(s.cfg.UploadDir, name)); err != nil {
			s.log.Error("Failed to save upload", zap.String("file", fh.Filename), zap.Error(err))
			s.removeUploads(saved)
			respondError(c, http.StatusInternalServerError, "upload_failed", "could not store "+fh.Filename)
			return
		}
		saved = append(saved, path.Join("/uploads", name))
		post.Attachments = append(post.Attachments, Attachment{
			MimeType: fh.Header.Get("Content-Type"),
			Path:     saved[len(saved)-1],
		})
	}

	if err := s.repo.CreatePost(c.Request.Context(), post); err != nil {
		s.removeUploads(saved)
		s.respondRepoError(c, err, "post")
		return
	}
	s.metrics.PostsCreatedTotal.Inc()
	s.hub.Broadcast(EventPostCreated, gin.H{"postId": post.ID, "communityId": post.CommunityID})

	c.JSON(http.StatusCreated, gin.H{"post": renderPost(*post, nil, nil)})
}

// removeUploads deletes stored files by their /uploads paths
func (s *Server) removeUploads(paths []string) {
	for _, p := range paths {
		file := filepath.Join(s.cfg.UploadDir, filepath.Base(p))
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			s.log.Warn("Failed to remove upload", zap.String("file", file), zap.Error(err))
		}
	}
}

func (s *Server) deletePost(c *gin.Context) {
	user := currentUser(c)
	if !user.CanModerate() {
		respondError(c, http.StatusForbidden, "forbidden", "only moderators can delete posts")
		return
	}

	postID := c.Param("postId")
	paths, err := s.repo.DeletePost(c.Request.Context(), postID)
	if err != nil {
		s.respondRepoError(c, err, "post")
		return
	}
	s.removeUploads(paths)
	s.metrics.PostsDeletedTotal.Inc()
	s.hub.Broadcast(EventPostDeleted, gin.H{"postId": postID})

	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

func (s *Server) togglePostLike(c *gin.Context) {
	postID := c.Param("postId")
	if _, err := s.repo.PostByID(c.Request.Context(), postID); err != nil {
		s.respondRepoError(c, err, "post")
		return
	}

	likedBy, err := s.repo.ToggleLike(c.Request.Context(), currentUser(c).ID, TargetPost, postID)
	if err != nil {
		s.respondRepoError(c, err, "post")
		return
	}
	s.metrics.LikesToggledTotal.WithLabelValues(TargetPost).Inc()

	state := newLikeState(likedBy)
	s.hub.Broadcast(EventPostLiked, gin.H{"postId": postID, "likedBy": state.LikedBy, "likeCount": state.LikeCount})
	c.JSON(http.StatusOK, state)
}

// toggleCommentLike serves both the comment and the reply like routes
func (s *Server) toggleCommentLike(c *gin.Context) {
	ctx := c.Request.Context()
	postID, commentID, replyID := c.Param("postId"), c.Param("commentId"), c.Param("replyId")

	target, kind := commentID, "comment"
	var err error
	if replyID != "" {
		target, kind = replyID, "reply"
		err = s.repo.FindReply(ctx, postID, commentID, replyID)
	} else {
		err = s.repo.FindComment(ctx, postID, commentID)
	}
	if err != nil {
		s.respondRepoError(c, err, kind)
		return
	}

	likedBy, err := s.repo.ToggleLike(ctx, currentUser(c).ID, TargetComment, target)
	if err != nil {
		s.respondRepoError(c, err, kind)
		return
	}
	s.metrics.LikesToggledTotal.WithLabelValues(kind).Inc()

	state := newLikeState(likedBy)
	payload := gin.H{"postId": postID, "commentId": commentID, "likedBy": state.LikedBy, "likeCount": state.LikeCount}
	if replyID != "" {
		payload["replyId"] = replyID
	}
	s.hub.Broadcast(EventCommentLiked, payload)
	c.JSON(http.StatusOK, state)
}

type commentRequest struct {
	Content string `json:"content"`
}

func (s *Server) createComment(c *gin.Context) {
	s.addComment(c, nil)
}

func (s *Server) createReply(c *gin.Context) {
	parent := c.Param("commentId")
	s.addComment(c, &parent)
}

func (s *Server) addComment(c *gin.Context, parentID *string) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "content is required")
		return
	}

	postID := c.Param("postId")
	comment, err := s.repo.CreateComment(c.Request.Context(), postID, parentID, currentUser(c).ID, strings.TrimSpace(req.Content))
	if err != nil {
		s.respondRepoError(c, err, "comment")
		return
	}
	s.hub.Broadcast(EventPostCommented, gin.H{"postId": postID})

	if parentID != nil {
		s.metrics.CommentsTotal.WithLabelValues("reply").Inc()
		c.JSON(http.StatusCreated, gin.H{"reply": renderReply(*comment, nil)})
		return
	}
	s.metrics.CommentsTotal.WithLabelValues("comment").Inc()
	c.JSON(http.StatusCreated, gin.H{"comment": wireComment{
		ID:        comment.ID,
		Author:    publicUser(comment.Author),
		Content:   comment.Content,
		LikedBy:   []string{},
		Replies:   []wireReply{},
		CreatedAt: timestamp(comment.CreatedAt),
	}})
}
