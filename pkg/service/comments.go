package service

import (
	"context"
	"strings"

	cliErrors "github.com/tathya/tathya-cli/pkg/errors"
)

// CommentService adds comments and replies and likes them
type CommentService struct {
	app  *App
	feed *FeedService
}

// NewCommentService creates a new comment service
func NewCommentService(app *App) *CommentService {
	return &CommentService{app: app, feed: NewFeedService(app)}
}

// Add posts a top-level comment
func (s *CommentService) Add(ctx context.Context, q FeedQuery, postRef, text string) error {
	if strings.TrimSpace(text) == "" {
		return cliErrors.ValidationError("comment", "cannot be empty")
	}
	postID, err := s.feed.Find(ctx, q, postRef)
	if err != nil {
		return err
	}

	s.app.Feed.OpenComment(postID)
	s.app.Feed.SetDraft(text)
	if err := s.app.Feed.SubmitComposer(ctx); err != nil {
		return err
	}
	s.app.Out.Success("✓ Comment posted")
	return nil
}

// Reply answers a comment. The reply starts with an @mention of the
// comment author.
func (s *CommentService) Reply(ctx context.Context, q FeedQuery, postRef, commentRef, text string) error {
	postID, err := s.feed.Find(ctx, q, postRef)
	if err != nil {
		return err
	}
	commentID, err := s.feed.resolveComment(postID, commentRef)
	if err != nil {
		return err
	}

	s.app.Feed.OpenReply(postID, commentID, "")
	s.app.Feed.SetDraft(s.app.Feed.Composer().Draft + strings.TrimSpace(text))
	if err := s.app.Feed.SubmitComposer(ctx); err != nil {
		return err
	}
	s.app.Out.Success("✓ Reply posted")
	return nil
}

// Like toggles the viewer's like on a comment, or on a reply when
// replyRef is set
func (s *CommentService) Like(ctx context.Context, q FeedQuery, postRef, commentRef, replyRef string) error {
	postID, err := s.feed.Find(ctx, q, postRef)
	if err != nil {
		return err
	}
	commentID, err := s.feed.resolveComment(postID, commentRef)
	if err != nil {
		return err
	}
	replyID := ""
	if replyRef != "" {
		if replyID, err = s.feed.resolveReply(postID, commentID, replyRef); err != nil {
			return err
		}
	}

	if err := s.app.Feed.ToggleCommentLike(ctx, postID, commentID, replyID); err != nil {
		return err
	}

	p, _ := s.app.Feed.Post(postID)
	c := p.Comment(commentID)
	if c == nil {
		return nil
	}
	liked, count := c.CurrentUserLiked, c.LikeCount
	if replyID != "" {
		if r := c.Reply(replyID); r != nil {
			liked, count = r.CurrentUserLiked, r.LikeCount
		}
	}
	verb := "Unliked"
	if liked {
		verb = "Liked"
	}
	s.app.Out.Success("%s (%d like%s)", verb, count, pluralize(count))
	return nil
}
