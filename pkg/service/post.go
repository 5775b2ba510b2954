package service

import (
	"context"

	"github.com/tathya/tathya-cli/pkg/feed"
	"github.com/tathya/tathya-cli/pkg/logger"
)

// PostService creates, deletes and likes posts
type PostService struct {
	app  *App
	feed *FeedService
}

// NewPostService creates a new post service
func NewPostService(app *App) *PostService {
	return &PostService{app: app, feed: NewFeedService(app)}
}

// Create publishes a post with files uploaded in the given order
func (s *PostService) Create(ctx context.Context, in feed.CreatePostInput) error {
	logger.Debug("Creating post", "community_id", in.CommunityID, "files", len(in.Files))

	post, err := s.app.Feed.CreatePost(ctx, in)
	if err != nil {
		return err
	}

	if s.app.Out.JSON() {
		return s.app.Out.Value("", post)
	}
	s.app.Out.Success("✓ Post created: %s", post.ID)
	if n := post.MediaCount(); n > 0 {
		s.app.Out.Info("  %d image%s, %d video%s attached", len(post.Images), pluralize(len(post.Images)), len(post.Videos), pluralize(len(post.Videos)))
	}
	return nil
}

// Delete removes a post as a moderator. confirm skips the prompt when false.
func (s *PostService) Delete(ctx context.Context, q FeedQuery, ref string, confirm bool) error {
	postID, err := s.feed.Find(ctx, q, ref)
	if err != nil {
		return err
	}

	if confirm {
		p, _ := s.app.Feed.Post(postID)
		ok, err := s.app.In.Confirm("Delete \"" + p.Title + "\" and all its comments?")
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	if err := s.app.Feed.DeletePost(ctx, postID); err != nil {
		return err
	}
	s.app.Out.Success("✓ Post %s deleted", postID)
	return nil
}

// Like toggles the viewer's like on a post
func (s *PostService) Like(ctx context.Context, q FeedQuery, ref string) error {
	postID, err := s.feed.Find(ctx, q, ref)
	if err != nil {
		return err
	}
	if err := s.app.Feed.ToggleLike(ctx, postID); err != nil {
		return err
	}
	s.feed.likeSummary(postID)
	return nil
}
