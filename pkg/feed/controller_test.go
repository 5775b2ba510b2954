package feed

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tathya/tathya-cli/pkg/api"
	cliErrors "github.com/tathya/tathya-cli/pkg/errors"
)

type ControllerSuite struct {
	suite.Suite
	store *fakeStore
	ctrl  *Controller
	ctx   context.Context
}

func (s *ControllerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = &fakeStore{recent: []api.RawPost{rawPost("p1"), rawPost("p2", "u2")}}
	s.ctrl = NewController(s.store, viewer("v1"), WithPageSize(5))
	s.Require().NoError(s.ctrl.LoadRecent(s.ctx, 1))
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) TestLoadRecentUsesPageSize() {
	s.Equal(1, s.store.lastPage)
	s.Equal(5, s.store.lastLimit)
	s.Len(s.ctrl.Posts(), 2)
	s.Equal(Source{Page: 1}, s.ctrl.Source())
}

func (s *ControllerSuite) TestToggleLikeConfirmed() {
	s.store.likeState = &api.LikeState{LikedBy: ids("v1"), LikeCount: 1}

	s.Require().NoError(s.ctrl.ToggleLike(s.ctx, "p1"))

	p, ok := s.ctrl.Post("p1")
	s.Require().True(ok)
	s.Equal([]string{"v1"}, p.LikedBy)
	s.Equal(1, p.LikeCount)
	s.True(p.CurrentUserLiked)
	s.True(s.ctrl.IsLiked("p1"))
	s.Equal([]string{"p1"}, s.ctrl.LikedPostIDs())

	s.store.likeState = &api.LikeState{LikedBy: ids()}
	s.Require().NoError(s.ctrl.ToggleLike(s.ctx, "p1"))

	p, _ = s.ctrl.Post("p1")
	s.Empty(p.LikedBy)
	s.Equal(0, p.LikeCount)
	s.False(p.CurrentUserLiked)
	s.False(s.ctrl.IsLiked("p1"))
}

func (s *ControllerSuite) TestToggleLikeIsOptimistic() {
	var during Post
	s.store.beforeLike = func() { during, _ = s.ctrl.Post("p1") }
	s.store.likeState = &api.LikeState{LikedBy: ids("v1")}

	s.Require().NoError(s.ctrl.ToggleLike(s.ctx, "p1"))

	s.Equal(1, during.LikeCount)
	s.True(during.CurrentUserLiked)
}

func (s *ControllerSuite) TestServerWinsOverGuess() {
	var during Post
	s.store.beforeLike = func() { during, _ = s.ctrl.Post("p2") }
	s.store.likeState = &api.LikeState{LikedBy: ids("u2", "v1", "u7"), LikeCount: 3}

	s.Require().NoError(s.ctrl.ToggleLike(s.ctx, "p2"))

	s.Equal([]string{"u2", "v1"}, during.LikedBy)
	p, _ := s.ctrl.Post("p2")
	s.Equal([]string{"u2", "v1", "u7"}, p.LikedBy)
	s.Equal(3, p.LikeCount)
	s.True(p.CurrentUserLiked)
}

func (s *ControllerSuite) TestLikeCountFollowsLikedBy() {
	s.store.likeState = &api.LikeState{LikedBy: ids("v1", "v1", "u3"), LikeCount: 10}

	s.Require().NoError(s.ctrl.ToggleLike(s.ctx, "p1"))

	p, _ := s.ctrl.Post("p1")
	s.Equal(len(p.LikedBy), p.LikeCount)
	s.Equal(2, p.LikeCount)
}

func (s *ControllerSuite) TestToggleLikeWithoutSession() {
	ctrl := NewController(s.store, nil)
	s.Require().NoError(ctrl.LoadRecent(s.ctx, 1))

	err := ctrl.ToggleLike(s.ctx, "p1")

	s.True(cliErrors.IsType(err, cliErrors.ErrorTypeAuthRequired))
	s.Zero(s.store.callCount("like"))
}

func (s *ControllerSuite) TestToggleLikeMissingPostIsNoop() {
	s.NoError(s.ctrl.ToggleLike(s.ctx, "nope"))
	s.Zero(s.store.callCount("like"))
}

func (s *ControllerSuite) TestToggleLikeFailureReloads() {
	s.store.likeErr = errors.New("dial tcp: connection refused")
	loads := s.store.callCount("recent")

	err := s.ctrl.ToggleLike(s.ctx, "p1")

	s.True(cliErrors.IsType(err, cliErrors.ErrorTypeNetwork))
	s.Equal(loads+1, s.store.callCount("recent"))
	p, _ := s.ctrl.Post("p1")
	s.Empty(p.LikedBy)
	s.False(p.CurrentUserLiked)
	s.False(s.ctrl.IsLiked("p1"))
}

func (s *ControllerSuite) TestUnauthorizedClearsSessionWithoutReload() {
	expired := 0
	ctrl := NewController(s.store, viewer("v1"), WithSessionExpired(func() { expired++ }))
	s.Require().NoError(ctrl.LoadRecent(s.ctx, 1))
	s.store.likeErr = &api.APIError{StatusCode: http.StatusUnauthorized, Message: "jwt expired"}
	loads := s.store.callCount("recent")

	err := ctrl.ToggleLike(s.ctx, "p1")

	s.True(cliErrors.IsType(err, cliErrors.ErrorTypeSessionExpired))
	s.Equal(1, expired)
	s.Nil(ctrl.Session())
	s.Equal(loads, s.store.callCount("recent"))
	p, _ := ctrl.Post("p1")
	s.False(p.CurrentUserLiked)
	s.Empty(ctrl.LikedPostIDs())
}

func (s *ControllerSuite) TestReloadFailureKeepsOriginalError() {
	s.store.likeErr = errors.New("timeout awaiting response headers")
	s.store.loadErr = errors.New("connection refused")

	err := s.ctrl.ToggleLike(s.ctx, "p1")

	s.True(cliErrors.IsType(err, cliErrors.ErrorTypeTimeout))
}

func (s *ControllerSuite) TestResponseForVanishedPostIsDropped() {
	s.store.beforeLike = func() {
		s.store.mu.Lock()
		s.store.recent = []api.RawPost{rawPost("p2")}
		s.store.mu.Unlock()
		s.Require().NoError(s.ctrl.Reload(s.ctx))
	}
	s.store.likeState = &api.LikeState{LikedBy: ids("v1")}

	s.Require().NoError(s.ctrl.ToggleLike(s.ctx, "p1"))

	_, ok := s.ctrl.Post("p1")
	s.False(ok)
	s.Len(s.ctrl.Posts(), 1)
}

func (s *ControllerSuite) TestToggleCommentAndReplyLike() {
	s.store.recent = []api.RawPost{{
		ID: "p1",
		Comments: []api.RawComment{{
			ID:      "c1",
			LikedBy: ids("u2"),
			Replies: []api.RawReply{{ID: "r1"}},
		}},
	}}
	s.Require().NoError(s.ctrl.Reload(s.ctx))

	s.store.likeState = &api.LikeState{LikedBy: ids("u2", "v1", "u5")}
	s.Require().NoError(s.ctrl.ToggleCommentLike(s.ctx, "p1", "c1", ""))
	s.Equal([3]string{"p1", "c1", ""}, s.store.lastLikeArgs)

	p, _ := s.ctrl.Post("p1")
	c := p.Comments[0]
	s.Equal([]string{"u2", "v1", "u5"}, c.LikedBy)
	s.Equal(3, c.LikeCount)
	s.True(c.CurrentUserLiked)
	s.False(s.ctrl.IsLiked("p1"))

	s.store.likeState = &api.LikeState{LikedBy: ids("v1")}
	s.Require().NoError(s.ctrl.ToggleCommentLike(s.ctx, "p1", "c1", "r1"))
	p, _ = s.ctrl.Post("p1")
	s.True(p.Comments[0].Replies[0].CurrentUserLiked)
	s.Equal(1, p.Comments[0].Replies[0].LikeCount)

	s.NoError(s.ctrl.ToggleCommentLike(s.ctx, "p1", "missing", ""))
	s.Equal(2, s.store.callCount("clike"))
}

func (s *ControllerSuite) TestSetSessionRecomputesFlags() {
	s.False(s.ctrl.IsLiked("p2"))

	s.ctrl.SetSession(viewer("u2"))

	s.True(s.ctrl.IsLiked("p2"))
	p, _ := s.ctrl.Post("p2")
	s.True(p.CurrentUserLiked)

	s.ctrl.SetSession(nil)
	s.Empty(s.ctrl.LikedPostIDs())
}

func (s *ControllerSuite) TestLoadResetsCarousel() {
	s.store.recent = []api.RawPost{{
		ID: "p1",
		Attachments: []api.RawAttachment{
			{MimeType: "image/png", Path: "/a.png"},
			{MimeType: "video/mp4", Path: "/b.mp4"},
		},
	}}
	s.Require().NoError(s.ctrl.Reload(s.ctx))

	slide, ok := s.ctrl.Navigate("p1", Next)
	s.Require().True(ok)
	s.Equal(MediaVideo, slide.Media.Kind)
	s.Equal(1, s.ctrl.Carousel()["p1"])

	s.Require().NoError(s.ctrl.Reload(s.ctx))

	slide, ok = s.ctrl.Slide("p1")
	s.Require().True(ok)
	s.Equal(0, slide.Index)
	s.Equal(MediaImage, slide.Media.Kind)
}

func (s *ControllerSuite) TestLoadCommunityMissingComments() {
	s.store.community = map[string][]api.RawPost{
		"C1": {{ID: "a"}, {ID: "b"}, {ID: "c"}},
	}

	s.Require().NoError(s.ctrl.LoadCommunity(s.ctx, "C1", 1))

	posts := s.ctrl.Posts()
	s.Require().Len(posts, 3)
	for _, p := range posts {
		s.NotNil(p.Comments)
		s.Empty(p.Comments)
	}

	s.store.likeErr = errors.New("EOF")
	_ = s.ctrl.ToggleLike(s.ctx, "a")
	s.Equal(2, s.store.callCount("community:C1"))
	s.Equal("C1", s.ctrl.Source().CommunityID)

	s.Error(s.ctrl.LoadCommunity(s.ctx, " ", 1))
}

func (s *ControllerSuite) TestPostsReturnsCopies() {
	posts := s.ctrl.Posts()
	posts[1].LikedBy[0] = "mutated"

	p, _ := s.ctrl.Post("p2")
	s.Equal([]string{"u2"}, p.LikedBy)
}

func (s *ControllerSuite) TestCreatePost() {
	s.store.created = &api.RawPost{ID: "p9", Title: "Lost ID card", Content: "near library"}

	post, err := s.ctrl.CreatePost(s.ctx, CreatePostInput{
		Title:       " Lost ID card ",
		Content:     "near library",
		CommunityID: "c7",
		Files:       []string{"b.png", "a.png"},
	})

	s.Require().NoError(err)
	s.Equal("p9", post.ID)
	s.Equal("Lost ID card", s.store.lastCreate.Title)
	s.Equal([]string{"b.png", "a.png"}, s.store.lastCreate.FilePaths)
	s.Equal(2, s.store.callCount("recent"))
}

func (s *ControllerSuite) TestCreatePostValidation() {
	_, err := s.ctrl.CreatePost(s.ctx, CreatePostInput{Title: "t", Content: "   "})
	s.True(cliErrors.IsType(err, cliErrors.ErrorTypeValidation))

	anon := NewController(s.store, nil)
	_, err = anon.CreatePost(s.ctx, CreatePostInput{Content: "x"})
	s.True(cliErrors.IsType(err, cliErrors.ErrorTypeAuthRequired))
	s.Zero(s.store.callCount("create"))
}

func (s *ControllerSuite) TestDeletePostRequiresModerator() {
	err := s.ctrl.DeletePost(s.ctx, "p1")
	s.True(cliErrors.IsType(err, cliErrors.ErrorTypeForbidden))
	s.Zero(s.store.callCount("delete"))

	s.ctrl.SetSession(moderator("m1"))
	s.store.recent = []api.RawPost{rawPost("p2")}
	s.Require().NoError(s.ctrl.DeletePost(s.ctx, "p1"))
	s.Equal(1, s.store.callCount("delete"))
	_, ok := s.ctrl.Post("p1")
	s.False(ok)
}

func TestDeletePost_AdminAllowed(t *testing.T) {
	store := &fakeStore{}
	admin := viewer("a1")
	admin.Role = "ADMIN"
	ctrl := NewController(store, admin)

	require.NoError(t, ctrl.DeletePost(context.Background(), "p1"))
	assert.Equal(t, 1, store.callCount("delete"))
}

func TestToggleLike_ConcurrentCallsStayConsistent(t *testing.T) {
	store := &fakeStore{
		recent:    []api.RawPost{rawPost("p1")},
		likeState: &api.LikeState{LikedBy: ids("v1")},
	}
	ctrl := NewController(store, viewer("v1"))
	require.NoError(t, ctrl.LoadRecent(context.Background(), 1))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ctrl.ToggleLike(context.Background(), "p1")
			_ = ctrl.Posts()
		}()
	}
	wg.Wait()

	p, _ := ctrl.Post("p1")
	assert.Equal(t, []string{"v1"}, p.LikedBy)
	assert.Equal(t, 1, p.LikeCount)
	assert.Equal(t, 20, store.callCount("like"))
	assert.True(t, ctrl.IsLiked("p1"))
}
