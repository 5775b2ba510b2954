package api

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	json "github.com/json-iterator/go"
	"github.com/tathya/tathya-cli/pkg/client"
	"github.com/tathya/tathya-cli/pkg/logger"
)

// Store is the REST client for the TATHYA post store
type Store struct {
	http *client.Client
}

// NewStore creates a store client over an HTTP client
func NewStore(c *client.Client) *Store {
	return &Store{http: c}
}

// HTTP returns the underlying client
func (s *Store) HTTP() *client.Client {
	return s.http
}

func pageParams(page, limit int) map[string]string {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return map[string]string{
		"page":  strconv.Itoa(page),
		"limit": strconv.Itoa(limit),
	}
}

// decodePosts accepts {"posts": [...]} or a bare array
func decodePosts(body []byte) ([]RawPost, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []RawPost{}, nil
	}
	if body[0] == '[' {
		var posts []RawPost
		if err := json.Unmarshal(body, &posts); err != nil {
			return nil, err
		}
		return posts, nil
	}
	var env postsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	if env.Posts == nil {
		env.Posts = []RawPost{}
	}
	return env.Posts, nil
}

// RecentPosts fetches the most recent posts
func (s *Store) RecentPosts(ctx context.Context, page, limit int) ([]RawPost, error) {
	logger.Debug("Fetching recent posts", "page", page, "limit", limit)

	resp, err := s.http.R().
		SetContext(ctx).
		SetQueryParams(pageParams(page, limit)).
		Get("/api/posts/recent")

	if err := CheckResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to fetch recent posts: %w", err)
	}

	return decodePosts(resp.Body())
}

// CommunityPosts fetches posts for one community
func (s *Store) CommunityPosts(ctx context.Context, communityID string, page, limit int) ([]RawPost, error) {
	logger.Debug("Fetching community posts", "community_id", communityID, "page", page)

	resp, err := s.http.R().
		SetContext(ctx).
		SetPathParam("communityId", communityID).
		SetQueryParams(pageParams(page, limit)).
		Get("/api/communities/{communityId}/posts")

	if err := CheckResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to fetch community posts: %w", err)
	}

	return decodePosts(resp.Body())
}

// decodeLikeState returns nil when the body carries no likedBy set, so the
// caller refetches instead of trusting an empty answer
func decodeLikeState(body []byte) (*LikeState, error) {
	var raw struct {
		LikedBy   *[]FlexID `json:"likedBy"`
		LikeCount int       `json:"likeCount"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if raw.LikedBy == nil {
		return nil, nil
	}
	return &LikeState{LikedBy: *raw.LikedBy, LikeCount: raw.LikeCount}, nil
}
