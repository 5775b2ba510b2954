package feed

import "strings"

// ComposerKind tags the composer state
type ComposerKind int

const (
	ComposerClosed ComposerKind = iota
	ComposerComment
	ComposerReply
)

func (k ComposerKind) String() string {
	switch k {
	case ComposerComment:
		return "comment"
	case ComposerReply:
		return "reply"
	default:
		return "closed"
	}
}

// ComposerState is the single global comment/reply input. CommentID and
// ReplyTo are only set for ComposerReply; PostID is empty when closed.
type ComposerState struct {
	Kind      ComposerKind `json:"kind"`
	PostID    string       `json:"post_id,omitempty"`
	CommentID string       `json:"comment_id,omitempty"`
	ReplyTo   string       `json:"reply_to,omitempty"`
	Draft     string       `json:"draft"`
}

// IsOpen reports whether a target is set
func (s ComposerState) IsOpen() bool {
	return s.Kind != ComposerClosed
}

// Submittable reports whether the draft is non-blank
func (s ComposerState) Submittable() bool {
	return s.IsOpen() && strings.TrimSpace(s.Draft) != ""
}

// Composer holds the one composer state. It is not safe for concurrent
// use on its own; the Controller serializes access.
type Composer struct {
	state ComposerState
}

// State returns a copy of the current state
func (c *Composer) State() ComposerState {
	return c.state
}

// OpenComment targets a plain comment on postID, replacing any open target
func (c *Composer) OpenComment(postID string) {
	c.state = ComposerState{Kind: ComposerComment, PostID: postID}
}

// OpenReply targets a reply to commentID and prefills an @mention
func (c *Composer) OpenReply(postID, commentID, replyTo string) {
	draft := ""
	if name := strings.TrimSpace(replyTo); name != "" {
		draft = "@" + name + " "
	}
	c.state = ComposerState{
		Kind:      ComposerReply,
		PostID:    postID,
		CommentID: commentID,
		ReplyTo:   replyTo,
		Draft:     draft,
	}
}

// SetDraft replaces the draft text. Ignored while closed.
func (c *Composer) SetDraft(text string) {
	if !c.state.IsOpen() {
		return
	}
	c.state.Draft = text
}

// Close clears target and draft
func (c *Composer) Close() {
	c.state = ComposerState{}
}
