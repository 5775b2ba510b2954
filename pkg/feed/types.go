package feed

import (
	"context"

	"github.com/tathya/tathya-cli/pkg/api"
)

// MediaKind says how an attachment is rendered
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Media is a renderable attachment
type Media struct {
	Kind     MediaKind `json:"kind"`
	MimeType string    `json:"mime_type"`
	URL      string    `json:"url"`
}

// Author is a fully populated author view
type Author struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Avatar      string  `json:"avatar"`
	Placeholder *Avatar `json:"placeholder,omitempty"`
	Role        string  `json:"role,omitempty"`
}

// Reply is a normalized reply
type Reply struct {
	ID               string   `json:"id"`
	Author           Author   `json:"author"`
	Content          string   `json:"content"`
	LikedBy          []string `json:"liked_by"`
	LikeCount        int      `json:"like_count"`
	CurrentUserLiked bool     `json:"current_user_liked"`
	CreatedAt        string   `json:"created_at,omitempty"`
}

// Comment is a normalized top-level comment
type Comment struct {
	ID               string   `json:"id"`
	Author           Author   `json:"author"`
	Content          string   `json:"content"`
	LikedBy          []string `json:"liked_by"`
	LikeCount        int      `json:"like_count"`
	CurrentUserLiked bool     `json:"current_user_liked"`
	Replies          []Reply  `json:"replies"`
	CreatedAt        string   `json:"created_at,omitempty"`
}

// Post is the view model for one feed entry. LikeCount always equals
// len(LikedBy).
type Post struct {
	ID               string    `json:"id"`
	Author           Author    `json:"author"`
	CommunityID      string    `json:"community_id,omitempty"`
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	Images           []Media   `json:"images"`
	Videos           []Media   `json:"videos"`
	IsPinned         bool      `json:"is_pinned"`
	LikedBy          []string  `json:"liked_by"`
	LikeCount        int       `json:"like_count"`
	CurrentUserLiked bool      `json:"current_user_liked"`
	Comments         []Comment `json:"comments"`
	CreatedAt        string    `json:"created_at,omitempty"`
}

// MediaCount is the carousel length
func (p Post) MediaCount() int {
	return len(p.Images) + len(p.Videos)
}

// Comment finds a comment by id
func (p *Post) Comment(id string) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i]
		}
	}
	return nil
}

// Reply finds a reply by id
func (c *Comment) Reply(id string) *Reply {
	for i := range c.Replies {
		if c.Replies[i].ID == id {
			return &c.Replies[i]
		}
	}
	return nil
}

func (p Post) clone() Post {
	out := p
	out.Images = append([]Media(nil), p.Images...)
	out.Videos = append([]Media(nil), p.Videos...)
	out.LikedBy = append([]string{}, p.LikedBy...)
	out.Comments = make([]Comment, len(p.Comments))
	for i, c := range p.Comments {
		cc := c
		cc.LikedBy = append([]string{}, c.LikedBy...)
		cc.Replies = make([]Reply, len(c.Replies))
		for j, r := range c.Replies {
			rc := r
			rc.LikedBy = append([]string{}, r.LikedBy...)
			cc.Replies[j] = rc
		}
		out.Comments[i] = cc
	}
	return out
}

// PostStore is the remote source of truth for posts
type PostStore interface {
	RecentPosts(ctx context.Context, page, limit int) ([]api.RawPost, error)
	CommunityPosts(ctx context.Context, communityID string, page, limit int) ([]api.RawPost, error)
	TogglePostLike(ctx context.Context, postID string) (*api.LikeState, error)
	ToggleCommentLike(ctx context.Context, postID, commentID, replyID string) (*api.LikeState, error)
	CreatePost(ctx context.Context, req api.CreatePostRequest) (*api.RawPost, error)
	CreateComment(ctx context.Context, postID, content string) error
	CreateReply(ctx context.Context, postID, commentID, content string) error
	DeletePost(ctx context.Context, postID string) error
}

var _ PostStore = (*api.Store)(nil)
