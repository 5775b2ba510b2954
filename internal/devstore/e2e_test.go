package devstore_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tathya/tathya-cli/internal/devstore"
	"github.com/tathya/tathya-cli/pkg/api"
	"github.com/tathya/tathya-cli/pkg/client"
	"github.com/tathya/tathya-cli/pkg/credentials"
	cliErrors "github.com/tathya/tathya-cli/pkg/errors"
	"github.com/tathya/tathya-cli/pkg/feed"
	"github.com/tathya/tathya-cli/pkg/websocket"
)

type campus struct {
	url       string
	server    *devstore.Server
	repo      *devstore.Repository
	member    *devstore.User
	moderator *devstore.User
	post      *devstore.Post
}

func startCampus(t *testing.T) *campus {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := devstore.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), false)
	require.NoError(t, err)
	require.NoError(t, devstore.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	srv := devstore.NewServer(devstore.Config{
		JWTSecret: "e2e-secret",
		TokenTTL:  time.Hour,
		UploadDir: t.TempDir(),
	}, db, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	ctx := context.Background()
	c := &campus{url: ts.URL, server: srv, repo: srv.Repository()}
	c.member = &devstore.User{Username: "asha", Email: "asha@tathya.test", Name: "Asha Rao", Role: devstore.RoleUser}
	require.NoError(t, c.repo.CreateUser(ctx, c.member, "secret-asha"))
	c.moderator = &devstore.User{Username: "meera", Email: "meera@tathya.test", Role: devstore.RoleModerator}
	require.NoError(t, c.repo.CreateUser(ctx, c.moderator, "secret-meera"))

	c.post = &devstore.Post{AuthorID: c.moderator.ID, CommunityID: "library", Title: "Library hours", Content: "Open till midnight"}
	require.NoError(t, c.repo.CreatePost(ctx, c.post))
	return c
}

// login signs in through the store and binds the session to its client
func (c *campus) login(t *testing.T, email, password string) (*api.Store, *credentials.Credentials) {
	t.Helper()
	store := api.NewStore(client.New(client.Options{BaseURL: c.url, Timeout: 5 * time.Second}))

	resp, err := store.Login(context.Background(), email, password)
	require.NoError(t, err)
	creds := &credentials.Credentials{
		AccessToken: resp.Token,
		ExpiresAt:   time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
		UserID:      resp.User.Key(),
		Username:    resp.User.Username,
		Email:       resp.User.Email,
		Role:        resp.User.Role,
	}
	store.HTTP().SetSession(creds)
	return store, creds
}

// signIn returns a controller bound to a fresh session
func (c *campus) signIn(t *testing.T, email, password string) *feed.Controller {
	t.Helper()
	store, creds := c.login(t, email, password)
	return feed.NewController(store, creds)
}

// countingStore counts feed fetches
type countingStore struct {
	*api.Store
	loads atomic.Int32
}

func (s *countingStore) RecentPosts(ctx context.Context, page, limit int) ([]api.RawPost, error) {
	s.loads.Add(1)
	return s.Store.RecentPosts(ctx, page, limit)
}

func TestControllerAgainstDevstore(t *testing.T) {
	c := startCampus(t)
	ctx := context.Background()
	ctrl := c.signIn(t, "asha@tathya.test", "secret-asha")

	require.NoError(t, ctrl.LoadRecent(ctx, 1))
	posts := ctrl.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, "meera", posts[0].Author.DisplayName)
	assert.Equal(t, "library", posts[0].CommunityID)

	// like, then unlike
	require.NoError(t, ctrl.ToggleLike(ctx, c.post.ID))
	p, _ := ctrl.Post(c.post.ID)
	assert.Equal(t, []string{c.member.ID}, p.LikedBy)
	assert.Equal(t, 1, p.LikeCount)
	assert.True(t, ctrl.IsLiked(c.post.ID))

	require.NoError(t, ctrl.ToggleLike(ctx, c.post.ID))
	p, _ = ctrl.Post(c.post.ID)
	assert.Empty(t, p.LikedBy)
	assert.Equal(t, 0, p.LikeCount)

	// comment through the composer
	require.True(t, ctrl.OpenComment(c.post.ID))
	ctrl.SetDraft("Is the reading room open too?")
	require.NoError(t, ctrl.SubmitComposer(ctx))
	assert.False(t, ctrl.Composer().IsOpen())

	p, _ = ctrl.Post(c.post.ID)
	require.Len(t, p.Comments, 1)
	comment := p.Comments[0]
	assert.Equal(t, "asha", comment.Author.DisplayName)

	// reply prefilled with a mention
	require.True(t, ctrl.OpenReply(c.post.ID, comment.ID, ""))
	assert.Equal(t, "@asha ", ctrl.Composer().Draft)
	ctrl.SetDraft(ctrl.Composer().Draft + "yes it is")
	require.NoError(t, ctrl.SubmitComposer(ctx))

	p, _ = ctrl.Post(c.post.ID)
	require.Len(t, p.Comments[0].Replies, 1)
	reply := p.Comments[0].Replies[0]
	assert.Equal(t, "@asha yes it is", reply.Content)

	require.NoError(t, ctrl.ToggleCommentLike(ctx, c.post.ID, comment.ID, reply.ID))
	p, _ = ctrl.Post(c.post.ID)
	assert.True(t, p.Comments[0].Replies[0].CurrentUserLiked)
	assert.Equal(t, 1, p.Comments[0].Replies[0].LikeCount)
	assert.Equal(t, 0, p.Comments[0].LikeCount)

	// members cannot delete
	err := ctrl.DeletePost(ctx, c.post.ID)
	assert.True(t, cliErrors.IsType(err, cliErrors.ErrorTypeForbidden))
}

func TestModeratorDeletesPost(t *testing.T) {
	c := startCampus(t)
	ctx := context.Background()
	ctrl := c.signIn(t, "meera@tathya.test", "secret-meera")

	require.NoError(t, ctrl.LoadCommunity(ctx, "library", 1))
	require.Len(t, ctrl.Posts(), 1)

	require.NoError(t, ctrl.DeletePost(ctx, c.post.ID))
	assert.Empty(t, ctrl.Posts())

	_, err := c.repo.PostByID(ctx, c.post.ID)
	assert.ErrorIs(t, err, devstore.ErrNotFound)
}

func TestLoginRejected(t *testing.T) {
	c := startCampus(t)
	store := api.NewStore(client.New(client.Options{BaseURL: c.url}))

	_, err := store.Login(context.Background(), "asha@tathya.test", "wrong")
	require.Error(t, err)
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
}

func TestRealtimeEventsReachController(t *testing.T) {
	c := startCampus(t)
	ctx := context.Background()

	store, creds := c.login(t, "asha@tathya.test", "secret-asha")
	counted := &countingStore{Store: store}
	ctrl := feed.NewController(counted, creds)
	require.NoError(t, ctrl.LoadRecent(ctx, 1))
	require.EqualValues(t, 1, counted.loads.Load())

	ws := websocket.NewClient(websocket.ConfigFromURL(c.url + "/api/ws"))
	require.NoError(t, ws.Connect(creds.AccessToken))
	defer func() { _ = ws.Disconnect() }()
	unbind := feed.BindRealtime(ctrl, ws)
	defer unbind()

	require.Eventually(t, func() bool { return c.server.Hub().ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	// another viewer likes the post; the like set arrives over the socket
	other, _ := c.login(t, "meera@tathya.test", "secret-meera")
	_, err := other.TogglePostLike(ctx, c.post.ID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		p, ok := ctrl.Post(c.post.ID)
		return ok && len(p.LikedBy) == 1 && p.LikedBy[0] == c.moderator.ID
	}, 3*time.Second, 20*time.Millisecond)
	p, _ := ctrl.Post(c.post.ID)
	assert.Equal(t, 1, p.LikeCount)
	assert.False(t, p.CurrentUserLiked)
	assert.EqualValues(t, 1, counted.loads.Load())

	// a new comment triggers a refetch
	require.NoError(t, other.CreateComment(ctx, c.post.ID, "see you there"))
	require.Eventually(t, func() bool {
		p, ok := ctrl.Post(c.post.ID)
		return ok && len(p.Comments) == 1
	}, 3*time.Second, 20*time.Millisecond)
	assert.EqualValues(t, 2, counted.loads.Load())
}
