package api

import (
	"bytes"
	"strconv"

	json "github.com/json-iterator/go"
)

// FlexID is an identifier that may arrive as a JSON string, a number, a
// Mongo extended-JSON object ({"$oid": ...}) or a populated document with
// an _id/id field. It always holds the canonical string form.
type FlexID string

// UnmarshalJSON implements json.Unmarshaler
func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
	case '{':
		var obj struct {
			OID   string `json:"$oid"`
			ID    FlexID `json:"_id"`
			AltID FlexID `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		switch {
		case obj.OID != "":
			*id = FlexID(obj.OID)
		case obj.ID != "":
			*id = obj.ID
		default:
			*id = obj.AltID
		}
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		if i, err := n.Int64(); err == nil {
			*id = FlexID(strconv.FormatInt(i, 10))
		} else {
			*id = FlexID(n.String())
		}
	}
	return nil
}

// String returns the canonical form
func (id FlexID) String() string {
	return string(id)
}

// firstID returns the first non-empty id
func firstID(ids ...FlexID) string {
	for _, id := range ids {
		if id != "" {
			return string(id)
		}
	}
	return ""
}

// RawProfile is the nested profile some endpoints populate
type RawProfile struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// RawUser is a user record as the store returns it
type RawUser struct {
	ID       FlexID      `json:"_id"`
	AltID    FlexID      `json:"id"`
	Username string      `json:"username"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Avatar   string      `json:"avatar"`
	Role     string      `json:"role"`
	Profile  *RawProfile `json:"profile,omitempty"`
}

// Key returns the canonical user id
func (u RawUser) Key() string {
	return firstID(u.ID, u.AltID)
}

// RawAuthor is either a populated user document or a bare user id
type RawAuthor struct {
	RawUser
}

// UnmarshalJSON implements json.Unmarshaler
func (a *RawAuthor) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		a.RawUser = RawUser{}
		return nil
	}
	if data[0] != '{' {
		var id FlexID
		if err := id.UnmarshalJSON(data); err != nil {
			return err
		}
		a.RawUser = RawUser{ID: id}
		return nil
	}
	var u RawUser
	if err := json.Unmarshal(data, &u); err != nil {
		return err
	}
	a.RawUser = u
	return nil
}

// RawAttachment is one uploaded file on a post
type RawAttachment struct {
	MimeType    string `json:"mimeType"`
	FileType    string `json:"fileType"`
	ContentType string `json:"contentType"`
	Path        string `json:"path"`
	URL         string `json:"url"`
}

// Mime returns the first mime type field that is set
func (a RawAttachment) Mime() string {
	for _, m := range []string{a.MimeType, a.FileType, a.ContentType} {
		if m != "" {
			return m
		}
	}
	return ""
}

// Location returns the path or URL of the file
func (a RawAttachment) Location() string {
	if a.Path != "" {
		return a.Path
	}
	return a.URL
}

// RawReply is a reply to a comment
type RawReply struct {
	ID        FlexID    `json:"_id"`
	AltID     FlexID    `json:"id"`
	Author    RawAuthor `json:"author"`
	Content   string    `json:"content"`
	LikedBy   []FlexID  `json:"likedBy"`
	CreatedAt string    `json:"createdAt"`
}

// Key returns the canonical reply id
func (r RawReply) Key() string {
	return firstID(r.ID, r.AltID)
}

// RawComment is a top-level comment on a post
type RawComment struct {
	ID        FlexID     `json:"_id"`
	AltID     FlexID     `json:"id"`
	Author    RawAuthor  `json:"author"`
	Content   string     `json:"content"`
	LikedBy   []FlexID   `json:"likedBy"`
	Replies   []RawReply `json:"replies"`
	CreatedAt string     `json:"createdAt"`
}

// Key returns the canonical comment id
func (c RawComment) Key() string {
	return firstID(c.ID, c.AltID)
}

// RawPost is a post record as the store returns it
type RawPost struct {
	ID          FlexID          `json:"_id"`
	AltID       FlexID          `json:"id"`
	Author      RawAuthor       `json:"author"`
	Community   FlexID          `json:"community"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Attachments []RawAttachment `json:"attachments"`
	IsPinned    bool            `json:"isPinned"`
	LikedBy     []FlexID        `json:"likedBy"`
	LikeCount   int             `json:"likeCount"`
	Comments    []RawComment    `json:"comments"`
	CreatedAt   string          `json:"createdAt"`
}

// Key returns the canonical post id
func (p RawPost) Key() string {
	return firstID(p.ID, p.AltID)
}

// LikeState is the authoritative like set returned by a toggle
type LikeState struct {
	LikedBy   []FlexID `json:"likedBy"`
	LikeCount int      `json:"likeCount"`
}

// IDs returns the liker ids as strings
func (s LikeState) IDs() []string {
	out := make([]string, 0, len(s.LikedBy))
	for _, id := range s.LikedBy {
		out = append(out, string(id))
	}
	return out
}

// Auth types

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string  `json:"token"`
	ExpiresIn int     `json:"expiresIn"`
	User      RawUser `json:"user"`
}

// postsEnvelope accepts both {"posts": [...]} and a bare array
type postsEnvelope struct {
	Posts []RawPost `json:"posts"`
	Page  int       `json:"page"`
	Total int       `json:"total"`
}

// ErrorResponse is the store's error body
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}
