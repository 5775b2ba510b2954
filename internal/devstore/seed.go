package devstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"
)

// SeedOptions controls how much fake data Seed writes
type SeedOptions struct {
	Users       int
	Posts       int
	Communities []string
	// Password is shared by every seeded account
	Password string
}

// DefaultSeedOptions returns a small campus
func DefaultSeedOptions() SeedOptions {
	return SeedOptions{
		Users:       8,
		Posts:       20,
		Communities: []string{"cs-club", "library", "sports", "events"},
		Password:    "password123",
	}
}

// SeedResult summarizes what Seed wrote
type SeedResult struct {
	Users     int
	Posts     int
	Comments  int
	Replies   int
	Likes     int
	Moderator string
}

// Seeder fills a store with fake users, posts, comments and likes
type Seeder struct {
	repo *Repository
	log  *zap.Logger
}

// NewSeeder creates a seeder over repo
func NewSeeder(repo *Repository, log *zap.Logger) *Seeder {
	if log == nil {
		log = zap.NewNop()
	}
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{repo: repo, log: log}
}

// Seed writes opts.Users accounts, the first of them a moderator
// (moderator@tathya.test), and opts.Posts posts spread over the communities
func (s *Seeder) Seed(ctx context.Context, opts SeedOptions) (*SeedResult, error) {
	if opts.Users < 1 {
		opts.Users = 1
	}
	if opts.Password == "" {
		opts.Password = DefaultSeedOptions().Password
	}
	res := &SeedResult{}

	users := make([]*User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u := &User{
			Username: fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), i),
			Email:    fmt.Sprintf("user%d@tathya.test", i),
			Name:     gofakeit.Name(),
			Role:     RoleUser,
		}
		if i == 0 {
			u.Email = "moderator@tathya.test"
			u.Role = RoleModerator
			res.Moderator = u.Email
		}
		if err := s.repo.CreateUser(ctx, u, opts.Password); err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", u.Username, err)
		}
		users = append(users, u)
	}
	res.Users = len(users)

	pick := func() *User { return users[gofakeit.Number(0, len(users)-1)] }

	for i := 0; i < opts.Posts; i++ {
		post := &Post{
			AuthorID: pick().ID,
			Title:    gofakeit.HipsterSentence(),
			Content:  gofakeit.HipsterSentence() + " " + gofakeit.HipsterSentence(),
			IsPinned: i == 0,
		}
		if len(opts.Communities) > 0 {
			post.CommunityID = opts.Communities[gofakeit.Number(0, len(opts.Communities)-1)]
		}
		if err := s.repo.CreatePost(ctx, post); err != nil {
			return nil, fmt.Errorf("failed to create post: %w", err)
		}
		res.Posts++

		for c := gofakeit.Number(0, 3); c > 0; c-- {
			comment, err := s.repo.CreateComment(ctx, post.ID, nil, pick().ID, gofakeit.HipsterSentence())
			if err != nil {
				return nil, fmt.Errorf("failed to create comment: %w", err)
			}
			res.Comments++

			if gofakeit.Bool() {
				replier := pick()
				mention := "@" + comment.Author.Username + " " + gofakeit.HipsterSentence()
				if _, err := s.repo.CreateComment(ctx, post.ID, &comment.ID, replier.ID, mention); err != nil {
					return nil, fmt.Errorf("failed to create reply: %w", err)
				}
				res.Replies++
			}
		}

		for _, u := range users {
			if gofakeit.Bool() {
				if _, err := s.repo.ToggleLike(ctx, u.ID, TargetPost, post.ID); err != nil {
					return nil, fmt.Errorf("failed to like post: %w", err)
				}
				res.Likes++
			}
		}
	}

	s.log.Info("Seeded devstore",
		zap.Int("users", res.Users),
		zap.Int("posts", res.Posts),
		zap.Int("comments", res.Comments),
		zap.Int("replies", res.Replies),
		zap.Int("likes", res.Likes),
	)
	return res, nil
}
