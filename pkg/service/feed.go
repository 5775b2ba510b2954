package service

import (
	"context"
	"fmt"
	"strconv"

	cliErrors "github.com/tathya/tathya-cli/pkg/errors"
	"github.com/tathya/tathya-cli/pkg/feed"
	"github.com/tathya/tathya-cli/pkg/formatter"
	"github.com/tathya/tathya-cli/pkg/logger"
)

// FeedQuery selects what a command loads
type FeedQuery struct {
	CommunityID string
	Page        int
}

// FeedService lists and shows posts
type FeedService struct {
	app *App
}

// NewFeedService creates a new feed service
func NewFeedService(app *App) *FeedService {
	return &FeedService{app: app}
}

// Load fills the controller from q
func (fs *FeedService) Load(ctx context.Context, q FeedQuery) error {
	logger.Debug("Loading feed", "community_id", q.CommunityID, "page", q.Page)
	if q.CommunityID != "" {
		return fs.app.Feed.LoadCommunity(ctx, q.CommunityID, q.Page)
	}
	return fs.app.Feed.LoadRecent(ctx, q.Page)
}

// List loads and prints one page
func (fs *FeedService) List(ctx context.Context, q FeedQuery) error {
	if err := fs.Load(ctx, q); err != nil {
		return err
	}
	fs.PrintList()
	return nil
}

// PrintList prints the loaded posts
func (fs *FeedService) PrintList() {
	posts := fs.app.Feed.Posts()
	out := fs.app.Out

	if len(posts) == 0 && !out.JSON() {
		out.Info("No posts yet.")
		return
	}
	if err := out.Table(formatter.FeedHeaders, formatter.PostRows(posts), posts); err != nil {
		logger.Warn("Failed to print feed", "error", err)
	}
}

// Show prints one loaded post in full
func (fs *FeedService) Show(postID string) error {
	p, ok := fs.app.Feed.Post(postID)
	if !ok {
		return cliErrors.NotFoundError("Post", postID)
	}
	if fs.app.Out.JSON() {
		return fs.app.Out.Value("", p)
	}
	var slide *feed.Slide
	if s, ok := fs.app.Feed.Slide(postID); ok {
		slide = &s
	}
	formatter.RenderPost(fs.app.Out.W, fs.indexOf(postID), p, slide)
	return nil
}

func (fs *FeedService) indexOf(postID string) int {
	for i, p := range fs.app.Feed.Posts() {
		if p.ID == postID {
			return i + 1
		}
	}
	return 0
}

// resolve maps a 1-based list number or a post id to a post id
func (fs *FeedService) resolve(ref string) (string, error) {
	posts := fs.app.Feed.Posts()
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(posts) {
		return posts[n-1].ID, nil
	}
	for _, p := range posts {
		if p.ID == ref {
			return p.ID, nil
		}
	}
	return "", cliErrors.NotFoundError("Post", ref)
}

// resolveComment maps a 1-based comment number or comment id on postID
func (fs *FeedService) resolveComment(postID, ref string) (string, error) {
	p, ok := fs.app.Feed.Post(postID)
	if !ok {
		return "", cliErrors.NotFoundError("Post", postID)
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(p.Comments) {
		return p.Comments[n-1].ID, nil
	}
	if c := p.Comment(ref); c != nil {
		return c.ID, nil
	}
	return "", cliErrors.NotFoundError("Comment", ref)
}

// resolveReply maps a 1-based reply number or reply id under a comment
func (fs *FeedService) resolveReply(postID, commentID, ref string) (string, error) {
	p, _ := fs.app.Feed.Post(postID)
	c := p.Comment(commentID)
	if c == nil {
		return "", cliErrors.NotFoundError("Comment", commentID)
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(c.Replies) {
		return c.Replies[n-1].ID, nil
	}
	if r := c.Reply(ref); r != nil {
		return r.ID, nil
	}
	return "", cliErrors.NotFoundError("Reply", ref)
}

// likeSummary prints the post's like state after a toggle
func (fs *FeedService) likeSummary(postID string) {
	p, ok := fs.app.Feed.Post(postID)
	if !ok {
		return
	}
	if fs.app.Out.JSON() {
		_ = fs.app.Out.Value("", map[string]interface{}{
			"post_id":            p.ID,
			"like_count":         p.LikeCount,
			"current_user_liked": p.CurrentUserLiked,
		})
		return
	}
	verb := "Unliked"
	if p.CurrentUserLiked {
		verb = "Liked"
	}
	fs.app.Out.Success("%s %q (%d like%s)", verb, p.Title, p.LikeCount, pluralize(p.LikeCount))
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// Find loads q and returns the id of the post ref names on that page
func (fs *FeedService) Find(ctx context.Context, q FeedQuery, ref string) (string, error) {
	if err := fs.Load(ctx, q); err != nil {
		return "", err
	}
	id, err := fs.resolve(ref)
	if err != nil {
		return "", fmt.Errorf("%w (only posts on the loaded page can be addressed)", err)
	}
	return id, nil
}
