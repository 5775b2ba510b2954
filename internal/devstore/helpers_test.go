package devstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a private in-memory sqlite database
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), false)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func mustUser(t *testing.T, repo *Repository, username, role string) *User {
	t.Helper()
	u := &User{Username: username, Email: username + "@tathya.test", Name: username, Role: role}
	require.NoError(t, repo.CreateUser(context.Background(), u, "pw-"+username))
	return u
}

func mustPost(t *testing.T, repo *Repository, author *User, community string) *Post {
	t.Helper()
	p := &Post{AuthorID: author.ID, CommunityID: community, Title: "t-" + author.Username, Content: "hello"}
	require.NoError(t, repo.CreatePost(context.Background(), p))
	return p
}
