package devstore

import (
	"context"
	"time"
)

// The JSON below follows the field names the feed client reads
// (_id, likedBy, mimeType and friends).

type wireUser struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Role     string `json:"role"`
}

type wireAttachment struct {
	MimeType string `json:"mimeType"`
	Path     string `json:"path"`
}

type wireReply struct {
	ID        string   `json:"_id"`
	Author    wireUser `json:"author"`
	Content   string   `json:"content"`
	LikedBy   []string `json:"likedBy"`
	LikeCount int      `json:"likeCount"`
	CreatedAt string   `json:"createdAt"`
}

type wireComment struct {
	ID        string      `json:"_id"`
	Author    wireUser    `json:"author"`
	Content   string      `json:"content"`
	LikedBy   []string    `json:"likedBy"`
	LikeCount int         `json:"likeCount"`
	Replies   []wireReply `json:"replies"`
	CreatedAt string      `json:"createdAt"`
}

type wirePost struct {
	ID          string           `json:"_id"`
	Author      wireUser         `json:"author"`
	Community   string           `json:"community,omitempty"`
	Title       string           `json:"title"`
	Content     string           `json:"content"`
	Attachments []wireAttachment `json:"attachments"`
	IsPinned    bool             `json:"isPinned"`
	LikedBy     []string         `json:"likedBy"`
	LikeCount   int              `json:"likeCount"`
	Comments    []wireComment    `json:"comments"`
	CreatedAt   string           `json:"createdAt"`
}

type likeState struct {
	LikedBy   []string `json:"likedBy"`
	LikeCount int      `json:"likeCount"`
}

func newLikeState(likedBy []string) likeState {
	if likedBy == nil {
		likedBy = []string{}
	}
	return likeState{LikedBy: likedBy, LikeCount: len(likedBy)}
}

// publicUser omits the email
func publicUser(u User) wireUser {
	return wireUser{ID: u.ID, Username: u.Username, Name: u.Name, Avatar: u.Avatar, Role: u.Role}
}

func selfUser(u User) wireUser {
	w := publicUser(u)
	w.Email = u.Email
	return w
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// renderPosts converts posts with two like lookups for the whole page
func (r *Repository) renderPosts(ctx context.Context, posts []Post) ([]wirePost, error) {
	postIDs := make([]string, 0, len(posts))
	var commentIDs []string
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		for _, c := range p.Comments {
			commentIDs = append(commentIDs, c.ID)
			for _, rp := range c.Replies {
				commentIDs = append(commentIDs, rp.ID)
			}
		}
	}

	postLikes, err := r.LikesFor(ctx, TargetPost, postIDs)
	if err != nil {
		return nil, err
	}
	commentLikes, err := r.LikesFor(ctx, TargetComment, commentIDs)
	if err != nil {
		return nil, err
	}

	out := make([]wirePost, 0, len(posts))
	for _, p := range posts {
		out = append(out, renderPost(p, postLikes, commentLikes))
	}
	return out, nil
}

func renderPost(p Post, postLikes, commentLikes map[string][]string) wirePost {
	w := wirePost{
		ID:          p.ID,
		Author:      publicUser(p.Author),
		Community:   p.CommunityID,
		Title:       p.Title,
		Content:     p.Content,
		Attachments: make([]wireAttachment, 0, len(p.Attachments)),
		IsPinned:    p.IsPinned,
		Comments:    make([]wireComment, 0, len(p.Comments)),
		CreatedAt:   timestamp(p.CreatedAt),
	}
	state := newLikeState(postLikes[p.ID])
	w.LikedBy, w.LikeCount = state.LikedBy, state.LikeCount

	for _, a := range p.Attachments {
		w.Attachments = append(w.Attachments, wireAttachment{MimeType: a.MimeType, Path: a.Path})
	}
	for _, c := range p.Comments {
		wc := wireComment{
			ID:        c.ID,
			Author:    publicUser(c.Author),
			Content:   c.Content,
			Replies:   make([]wireReply, 0, len(c.Replies)),
			CreatedAt: timestamp(c.CreatedAt),
		}
		state := newLikeState(commentLikes[c.ID])
		wc.LikedBy, wc.LikeCount = state.LikedBy, state.LikeCount
		for _, rp := range c.Replies {
			wc.Replies = append(wc.Replies, renderReply(rp, commentLikes[rp.ID]))
		}
		w.Comments = append(w.Comments, wc)
	}
	return w
}

func renderReply(c Comment, likedBy []string) wireReply {
	state := newLikeState(likedBy)
	return wireReply{
		ID:        c.ID,
		Author:    publicUser(c.Author),
		Content:   c.Content,
		LikedBy:   state.LikedBy,
		LikeCount: state.LikeCount,
		CreatedAt: timestamp(c.CreatedAt),
	}
}
