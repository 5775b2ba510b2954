package devstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLike_IdempotentInPairs(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	asha := mustUser(t, repo, "asha", RoleUser)
	ravi := mustUser(t, repo, "ravi", RoleUser)
	post := mustPost(t, repo, asha, "")

	likedBy, err := repo.ToggleLike(ctx, ravi.ID, TargetPost, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{ravi.ID}, likedBy)

	likedBy, err = repo.ToggleLike(ctx, ravi.ID, TargetPost, post.ID)
	require.NoError(t, err)
	assert.Empty(t, likedBy)
	assert.NotNil(t, likedBy)
}

func TestAuthenticate(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	asha := mustUser(t, repo, "asha", RoleUser)

	u, err := repo.Authenticate(ctx, " ASHA@tathya.test ", "pw-asha")
	require.NoError(t, err)
	assert.Equal(t, asha.ID, u.ID)

	_, err = repo.Authenticate(ctx, "asha@tathya.test", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = repo.Authenticate(ctx, "nobody@tathya.test", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestListPosts_PinnedFirstAndPaged(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	asha := mustUser(t, repo, "asha", RoleUser)

	first := mustPost(t, repo, asha, "library")
	second := mustPost(t, repo, asha, "sports")
	pinned := &Post{AuthorID: asha.ID, CommunityID: "library", Content: "pinned", IsPinned: true}
	require.NoError(t, repo.CreatePost(ctx, pinned))

	posts, err := repo.RecentPosts(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, pinned.ID, posts[0].ID)

	posts, err = repo.CommunityPosts(ctx, "library", 1, 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, pinned.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)

	posts, err = repo.RecentPosts(ctx, 3, 1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Contains(t, []string{first.ID, second.ID}, posts[0].ID)

	posts, err = repo.RecentPosts(ctx, 9, 10)
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestCreateComment_RepliesOnlyUnderTopLevel(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	asha := mustUser(t, repo, "asha", RoleUser)
	post := mustPost(t, repo, asha, "")

	comment, err := repo.CreateComment(ctx, post.ID, nil, asha.ID, "first")
	require.NoError(t, err)
	assert.Equal(t, "asha", comment.Author.Username)

	reply, err := repo.CreateComment(ctx, post.ID, &comment.ID, asha.ID, "@asha me too")
	require.NoError(t, err)

	_, err = repo.CreateComment(ctx, post.ID, &reply.ID, asha.ID, "nested")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.CreateComment(ctx, "missing", nil, asha.ID, "x")
	assert.ErrorIs(t, err, ErrNotFound)

	loaded, err := repo.PostByID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Comments, 1)
	require.Len(t, loaded.Comments[0].Replies, 1)
	assert.Equal(t, reply.ID, loaded.Comments[0].Replies[0].ID)

	assert.NoError(t, repo.FindReply(ctx, post.ID, comment.ID, reply.ID))
	assert.ErrorIs(t, repo.FindReply(ctx, post.ID, reply.ID, comment.ID), ErrNotFound)
	assert.ErrorIs(t, repo.FindComment(ctx, post.ID, reply.ID), ErrNotFound)
}

func TestDeletePost_Cascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	asha := mustUser(t, repo, "asha", RoleUser)

	post := &Post{
		AuthorID: asha.ID,
		Content:  "with media",
		Attachments: []Attachment{
			{MimeType: "image/png", Path: "/uploads/a.png"},
			{MimeType: "video/mp4", Path: "/uploads/b.mp4"},
		},
	}
	require.NoError(t, repo.CreatePost(ctx, post))
	keep := mustPost(t, repo, asha, "")

	comment, err := repo.CreateComment(ctx, post.ID, nil, asha.ID, "c")
	require.NoError(t, err)
	reply, err := repo.CreateComment(ctx, post.ID, &comment.ID, asha.ID, "r")
	require.NoError(t, err)
	for _, target := range []struct{ kind, id string }{
		{TargetPost, post.ID}, {TargetComment, comment.ID}, {TargetComment, reply.ID}, {TargetPost, keep.ID},
	} {
		_, err := repo.ToggleLike(ctx, asha.ID, target.kind, target.id)
		require.NoError(t, err)
	}

	paths, err := repo.DeletePost(ctx, post.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/uploads/a.png", "/uploads/b.mp4"}, paths)

	var n int64
	db.Model(&Comment{}).Where("post_id = ?", post.ID).Count(&n)
	assert.Zero(t, n)
	db.Model(&Attachment{}).Where("post_id = ?", post.ID).Count(&n)
	assert.Zero(t, n)
	db.Model(&Like{}).Count(&n)
	assert.Equal(t, int64(1), n, "only the like on the other post survives")

	_, err = repo.DeletePost(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreatePost_KeepsAttachmentOrder(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	asha := mustUser(t, repo, "asha", RoleUser)

	post := &Post{AuthorID: asha.ID, Content: "gallery", Attachments: []Attachment{
		{MimeType: "image/png", Path: "/uploads/3.png"},
		{MimeType: "image/png", Path: "/uploads/1.png"},
		{MimeType: "image/png", Path: "/uploads/2.png"},
	}}
	require.NoError(t, repo.CreatePost(ctx, post))

	loaded, err := repo.PostByID(ctx, post.ID)
	require.NoError(t, err)
	var got []string
	for _, a := range loaded.Attachments {
		got = append(got, a.Path)
	}
	assert.Equal(t, []string{"/uploads/3.png", "/uploads/1.png", "/uploads/2.png"}, got)
}
