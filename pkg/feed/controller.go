package feed

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/tathya/tathya-cli/pkg/api"
	"github.com/tathya/tathya-cli/pkg/credentials"
	cliErrors "github.com/tathya/tathya-cli/pkg/errors"
	"github.com/tathya/tathya-cli/pkg/logger"
)

const defaultPageSize = 10

// Option configures a Controller
type Option func(*Controller)

// WithPageSize sets how many posts a load requests
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithMediaBaseURL resolves relative attachment paths against base
func WithMediaBaseURL(base string) Option {
	return func(c *Controller) {
		c.normalize.MediaBaseURL = base
	}
}

// WithSessionExpired registers a hook run after the store rejects the
// session. The controller has already dropped its viewer when it runs.
func WithSessionExpired(fn func()) Option {
	return func(c *Controller) {
		c.onSessionExpired = fn
	}
}

// Source identifies what the current list was loaded from
type Source struct {
	CommunityID string `json:"community_id,omitempty"`
	Page        int    `json:"page"`
}

// Controller owns the normalized post list and every mutation to it.
// It is safe for concurrent use. No store call is made while mu is held,
// and every response is applied only if its target still exists.
type Controller struct {
	store            PostStore
	pageSize         int
	normalize        NormalizeOptions
	onSessionExpired func()

	mu       sync.Mutex
	session  *credentials.Credentials
	posts    []Post
	liked    map[string]struct{}
	composer Composer
	carousel *Carousel
	source   Source
}

// NewController creates a controller for one viewer session. session may
// be nil for an anonymous viewer.
func NewController(store PostStore, session *credentials.Credentials, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		pageSize: defaultPageSize,
		session:  session,
		posts:    []Post{},
		liked:    make(map[string]struct{}),
		carousel: NewCarousel(),
		source:   Source{Page: 1},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadRecent replaces the list with a page of recent posts
func (c *Controller) LoadRecent(ctx context.Context, page int) error {
	return c.load(ctx, Source{Page: normalizePage(page)})
}

// LoadCommunity replaces the list with a page of one community's posts
func (c *Controller) LoadCommunity(ctx context.Context, communityID string, page int) error {
	if strings.TrimSpace(communityID) == "" {
		return cliErrors.ValidationError("community", "id is required")
	}
	return c.load(ctx, Source{CommunityID: communityID, Page: normalizePage(page)})
}

// Reload refetches whatever was loaded last
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	src := c.source
	c.mu.Unlock()
	return c.load(ctx, src)
}

func (c *Controller) load(ctx context.Context, src Source) error {
	var (
		raws []api.RawPost
		err  error
	)
	if src.CommunityID != "" {
		raws, err = c.store.CommunityPosts(ctx, src.CommunityID, src.Page, c.pageSize)
	} else {
		raws, err = c.store.RecentPosts(ctx, src.Page, c.pageSize)
	}
	if err != nil {
		cliErr := cliErrors.CategorizeError(err)
		if cliErr.Type == cliErrors.ErrorTypeSessionExpired {
			c.expireSession()
		}
		return cliErr
	}

	c.mu.Lock()
	c.source = src
	c.posts = NormalizeAll(raws, c.viewerLocked(), c.normalize)
	c.rebuildLikedLocked()
	c.carousel.ResetAll()
	n := len(c.posts)
	c.mu.Unlock()

	logger.Debug("Feed loaded", "community_id", src.CommunityID, "page", src.Page, "posts", n)
	return nil
}

// ToggleLike flips the viewer's like on a post. The change is visible
// immediately and then overwritten by the store's answer; a failed request
// is rolled back by a full reload.
func (c *Controller) ToggleLike(ctx context.Context, postID string) error {
	c.mu.Lock()
	viewer := c.viewerLocked()
	if viewer == "" {
		c.mu.Unlock()
		return cliErrors.AuthRequiredError("like posts")
	}
	p := c.findLocked(postID)
	if p == nil {
		c.mu.Unlock()
		return nil
	}
	p.LikedBy = flip(p.LikedBy, viewer)
	p.LikeCount = len(p.LikedBy)
	p.CurrentUserLiked = contains(p.LikedBy, viewer)
	c.syncLikedLocked(p)
	c.mu.Unlock()

	state, err := c.store.TogglePostLike(ctx, postID)
	if err != nil {
		return c.fail(ctx, "toggle like", err)
	}
	if state == nil {
		return c.Reload(ctx)
	}

	c.ApplyLikeState(postID, "", "", state.IDs())
	return nil
}

// ToggleCommentLike flips the viewer's like on a comment, or on one of its
// replies when replyID is set
func (c *Controller) ToggleCommentLike(ctx context.Context, postID, commentID, replyID string) error {
	c.mu.Lock()
	viewer := c.viewerLocked()
	if viewer == "" {
		c.mu.Unlock()
		return cliErrors.AuthRequiredError("like comments")
	}
	likedBy, ok := c.entityLikesLocked(postID, commentID, replyID)
	if !ok {
		c.mu.Unlock()
		return nil
	}
	c.setEntityLikesLocked(postID, commentID, replyID, flip(likedBy, viewer))
	c.mu.Unlock()

	state, err := c.store.ToggleCommentLike(ctx, postID, commentID, replyID)
	if err != nil {
		return c.fail(ctx, "toggle comment like", err)
	}
	if state == nil {
		return c.Reload(ctx)
	}

	c.ApplyLikeState(postID, commentID, replyID, state.IDs())
	return nil
}

// ApplyLikeState overwrites an entity's likers with authoritative ids.
// It reports false when the target is no longer in the list.
func (c *Controller) ApplyLikeState(postID, commentID, replyID string, likedBy []string) bool {
	ids := make([]api.FlexID, 0, len(likedBy))
	for _, id := range likedBy {
		ids = append(ids, api.FlexID(id))
	}
	canonical := canonicalIDs(ids)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entityLikesLocked(postID, commentID, replyID); !ok {
		logger.Debug("Dropping like state for missing target", "post_id", postID, "comment_id", commentID, "reply_id", replyID)
		return false
	}
	c.setEntityLikesLocked(postID, commentID, replyID, canonical)
	return true
}

// OpenComment points the composer at a new comment on postID
func (c *Controller) OpenComment(postID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.findLocked(postID) == nil {
		return false
	}
	c.composer.OpenComment(postID)
	return true
}

// OpenReply points the composer at a reply under commentID. The draft
// mentions the comment author, or the author of replyID when it is set.
func (c *Controller) OpenReply(postID, commentID, replyID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.findLocked(postID)
	if p == nil {
		return false
	}
	cm := p.Comment(commentID)
	if cm == nil {
		return false
	}
	mention := cm.Author.DisplayName
	if replyID != "" {
		r := cm.Reply(replyID)
		if r == nil {
			return false
		}
		mention = r.Author.DisplayName
	}
	c.composer.OpenReply(postID, commentID, mention)
	return true
}

// SetDraft replaces the composer text
func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.composer.SetDraft(text)
}

// CloseComposer discards the composer target and draft
func (c *Controller) CloseComposer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.composer.Close()
}

// SubmitComposer sends the open draft as a comment or reply. Blank drafts
// are ignored. The composer closes on every submission and the list is
// refetched whether or not the store accepted it.
func (c *Controller) SubmitComposer(ctx context.Context) error {
	c.mu.Lock()
	st := c.composer.State()
	if !st.Submittable() {
		c.mu.Unlock()
		return nil
	}
	if c.viewerLocked() == "" {
		c.mu.Unlock()
		return cliErrors.AuthRequiredError("comment")
	}
	c.composer.Close()
	c.mu.Unlock()

	content := strings.TrimSpace(st.Draft)
	var err error
	if st.Kind == ComposerReply {
		err = c.store.CreateReply(ctx, st.PostID, st.CommentID, content)
	} else {
		err = c.store.CreateComment(ctx, st.PostID, content)
	}
	if err != nil {
		return c.fail(ctx, "comment", err)
	}

	return c.Reload(ctx)
}

// CreatePostInput is what the viewer fills in for a new post
type CreatePostInput struct {
	Title       string
	Content     string
	CommunityID string
	Files       []string
}

// CreatePost publishes a post with its files in order and reloads the list
func (c *Controller) CreatePost(ctx context.Context, in CreatePostInput) (*Post, error) {
	c.mu.Lock()
	viewer := c.viewerLocked()
	c.mu.Unlock()
	if viewer == "" {
		return nil, cliErrors.AuthRequiredError("create posts")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, cliErrors.ValidationError("content", "must not be empty")
	}

	raw, err := c.store.CreatePost(ctx, api.CreatePostRequest{
		Title:       strings.TrimSpace(in.Title),
		Content:     in.Content,
		CommunityID: in.CommunityID,
		FilePaths:   in.Files,
	})
	if err != nil {
		if cliErrors.IsType(err, cliErrors.ErrorTypeFileNotFound) {
			return nil, cliErrors.CategorizeError(err)
		}
		return nil, c.fail(ctx, "create post", err)
	}

	post := Normalize(*raw, viewer, c.normalize)
	if err := c.Reload(ctx); err != nil {
		logger.Warn("Reload after create failed", "error", err)
	}
	return &post, nil
}

// DeletePost removes a post. Only moderators and admins may call it; the
// role is checked before any request.
func (c *Controller) DeletePost(ctx context.Context, postID string) error {
	c.mu.Lock()
	session := c.session
	viewer := c.viewerLocked()
	c.mu.Unlock()

	if viewer == "" {
		return cliErrors.AuthRequiredError("delete posts")
	}
	if !session.IsModerator() {
		return cliErrors.ForbiddenError("Only moderators can delete posts")
	}

	if err := c.store.DeletePost(ctx, postID); err != nil {
		return c.fail(ctx, "delete post", err)
	}
	return c.Reload(ctx)
}

// fail resolves an action failure: an expired session is cleared without
// reloading, anything else is rolled back by a reload. The categorized
// action error is returned either way.
func (c *Controller) fail(ctx context.Context, action string, err error) error {
	cliErr := cliErrors.CategorizeError(err)
	logger.Warn("Action failed", "action", action, "type", cliErr.Type, "error", err)

	if cliErr.Type == cliErrors.ErrorTypeSessionExpired {
		c.expireSession()
		return cliErr
	}

	if rerr := c.Reload(context.WithoutCancel(ctx)); rerr != nil {
		logger.Warn("Reload after failure failed", "action", action, "error", rerr)
	}
	return cliErr
}

func (c *Controller) expireSession() {
	c.mu.Lock()
	c.session = nil
	c.recomputeLocked()
	c.mu.Unlock()

	logger.Info("Session expired, clearing credentials")
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}

// SetSession swaps the viewer and recomputes every liked flag
func (c *Controller) SetSession(creds *credentials.Credentials) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = creds
	c.recomputeLocked()
}

// Session returns the current viewer session
func (c *Controller) Session() *credentials.Credentials {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Source returns what the list was last loaded from
func (c *Controller) Source() Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source
}

// Posts returns a copy of the current list
func (c *Controller) Posts() []Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Post, len(c.posts))
	for i, p := range c.posts {
		out[i] = p.clone()
	}
	return out
}

// Post returns a copy of one post
func (c *Controller) Post(id string) (Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.findLocked(id)
	if p == nil {
		return Post{}, false
	}
	return p.clone(), true
}

// LikedPostIDs returns the sorted ids of posts the viewer likes
func (c *Controller) LikedPostIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.liked))
	for id := range c.liked {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// IsLiked reports whether the viewer likes postID
func (c *Controller) IsLiked(postID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.liked[postID]
	return ok
}

// Composer returns the composer state
func (c *Controller) Composer() ComposerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.composer.State()
}

// Navigate moves a post's carousel and returns the new slide
func (c *Controller) Navigate(postID string, dir Direction) (Slide, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.findLocked(postID)
	if p == nil {
		return Slide{}, false
	}
	c.carousel.Navigate(postID, p.MediaCount(), dir)
	return c.carousel.Current(*p)
}

// Slide returns a post's current carousel item
func (c *Controller) Slide(postID string) (Slide, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.findLocked(postID)
	if p == nil {
		return Slide{}, false
	}
	return c.carousel.Current(*p)
}

// Carousel returns a copy of every carousel index
func (c *Controller) Carousel() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.carousel.Snapshot()
}

func (c *Controller) viewerLocked() string {
	return c.session.ViewerID()
}

func (c *Controller) findLocked(postID string) *Post {
	for i := range c.posts {
		if c.posts[i].ID == postID {
			return &c.posts[i]
		}
	}
	return nil
}

// entityLikesLocked returns the likers of a post, comment or reply
func (c *Controller) entityLikesLocked(postID, commentID, replyID string) ([]string, bool) {
	p := c.findLocked(postID)
	if p == nil {
		return nil, false
	}
	if commentID == "" {
		return p.LikedBy, true
	}
	cm := p.Comment(commentID)
	if cm == nil {
		return nil, false
	}
	if replyID == "" {
		return cm.LikedBy, true
	}
	r := cm.Reply(replyID)
	if r == nil {
		return nil, false
	}
	return r.LikedBy, true
}

func (c *Controller) setEntityLikesLocked(postID, commentID, replyID string, likedBy []string) {
	viewer := c.viewerLocked()
	p := c.findLocked(postID)
	if p == nil {
		return
	}
	if commentID == "" {
		p.LikedBy = likedBy
		p.LikeCount = len(likedBy)
		p.CurrentUserLiked = contains(likedBy, viewer)
		c.syncLikedLocked(p)
		return
	}
	cm := p.Comment(commentID)
	if cm == nil {
		return
	}
	if replyID == "" {
		cm.LikedBy = likedBy
		cm.LikeCount = len(likedBy)
		cm.CurrentUserLiked = contains(likedBy, viewer)
		return
	}
	if r := cm.Reply(replyID); r != nil {
		r.LikedBy = likedBy
		r.LikeCount = len(likedBy)
		r.CurrentUserLiked = contains(likedBy, viewer)
	}
}

func (c *Controller) syncLikedLocked(p *Post) {
	if p.CurrentUserLiked {
		c.liked[p.ID] = struct{}{}
	} else {
		delete(c.liked, p.ID)
	}
}

func (c *Controller) rebuildLikedLocked() {
	c.liked = make(map[string]struct{}, len(c.posts))
	for i := range c.posts {
		c.syncLikedLocked(&c.posts[i])
	}
}

// recomputeLocked refreshes every CurrentUserLiked flag for the viewer
func (c *Controller) recomputeLocked() {
	viewer := c.viewerLocked()
	for i := range c.posts {
		p := &c.posts[i]
		p.CurrentUserLiked = contains(p.LikedBy, viewer)
		for j := range p.Comments {
			cm := &p.Comments[j]
			cm.CurrentUserLiked = contains(cm.LikedBy, viewer)
			for k := range cm.Replies {
				r := &cm.Replies[k]
				r.CurrentUserLiked = contains(r.LikedBy, viewer)
			}
		}
	}
	c.rebuildLikedLocked()
}

// flip adds viewer to likedBy or removes it, returning a new slice
func flip(likedBy []string, viewer string) []string {
	if contains(likedBy, viewer) {
		return without(likedBy, viewer)
	}
	out := make([]string, 0, len(likedBy)+1)
	out = append(out, likedBy...)
	return append(out, viewer)
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
