package feed

import (
	"context"
	"sync"

	"github.com/tathya/tathya-cli/pkg/api"
	"github.com/tathya/tathya-cli/pkg/credentials"
)

// fakeStore records calls and serves canned answers
type fakeStore struct {
	mu sync.Mutex

	recent    []api.RawPost
	community map[string][]api.RawPost
	loadErr   error

	likeState *api.LikeState
	likeErr   error
	// beforeLike runs inside TogglePostLike, before it answers
	beforeLike func()

	commentErr error
	createErr  error
	created    *api.RawPost
	deleteErr  error

	calls        []string
	likeCalls    int
	recentLoads  int
	lastContent  string
	lastComment  string
	lastCreate   api.CreatePostRequest
	lastPage     int
	lastLimit    int
	lastLikeArgs [3]string
}

func (f *fakeStore) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeStore) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeStore) RecentPosts(_ context.Context, page, limit int) ([]api.RawPost, error) {
	f.record("recent")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recentLoads++
	f.lastPage, f.lastLimit = page, limit
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.recent, nil
}

func (f *fakeStore) CommunityPosts(_ context.Context, id string, page, limit int) ([]api.RawPost, error) {
	f.record("community:" + id)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPage, f.lastLimit = page, limit
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.community[id], nil
}

func (f *fakeStore) TogglePostLike(_ context.Context, postID string) (*api.LikeState, error) {
	f.record("like")
	if f.beforeLike != nil {
		f.beforeLike()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.likeCalls++
	f.lastLikeArgs = [3]string{postID}
	if f.likeErr != nil {
		return nil, f.likeErr
	}
	return f.likeState, nil
}

func (f *fakeStore) ToggleCommentLike(_ context.Context, postID, commentID, replyID string) (*api.LikeState, error) {
	f.record("clike")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLikeArgs = [3]string{postID, commentID, replyID}
	if f.likeErr != nil {
		return nil, f.likeErr
	}
	return f.likeState, nil
}

func (f *fakeStore) CreatePost(_ context.Context, req api.CreatePostRequest) (*api.RawPost, error) {
	f.record("create")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCreate = req
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func (f *fakeStore) CreateComment(_ context.Context, postID, content string) error {
	f.record("comment")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastContent = content
	f.lastComment = ""
	return f.commentErr
}

func (f *fakeStore) CreateReply(_ context.Context, postID, commentID, content string) error {
	f.record("reply")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastContent = content
	f.lastComment = commentID
	return f.commentErr
}

func (f *fakeStore) DeletePost(_ context.Context, postID string) error {
	f.record("delete")
	return f.deleteErr
}

func viewer(id string) *credentials.Credentials {
	return &credentials.Credentials{AccessToken: "tok-" + id, UserID: id, Username: id}
}

func moderator(id string) *credentials.Credentials {
	c := viewer(id)
	c.Role = credentials.RoleModerator
	return c
}

func ids(s ...string) []api.FlexID {
	out := make([]api.FlexID, len(s))
	for i, v := range s {
		out[i] = api.FlexID(v)
	}
	return out
}

func rawPost(id string, likedBy ...string) api.RawPost {
	return api.RawPost{ID: api.FlexID(id), Title: "post " + id, Content: "body", LikedBy: ids(likedBy...)}
}
