package devstore

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles stored on User.Role
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Like targets
const (
	TargetPost    = "post"
	TargetComment = "comment"
)

// User is a campus account
type User struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"`
	Email        string `gorm:"uniqueIndex;not null"`
	Username     string `gorm:"uniqueIndex;not null"`
	Name         string
	Avatar       string
	Role         string `gorm:"not null;default:user"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanModerate reports whether u may delete other users' posts
func (u *User) CanModerate() bool {
	switch strings.ToLower(u.Role) {
	case RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// Post is a feed entry. Attachments keep upload order through Position.
type Post struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	AuthorID    string `gorm:"not null;index"`
	Author      User   `gorm:"foreignKey:AuthorID"`
	CommunityID string `gorm:"index"`
	Title       string
	Content     string `gorm:"type:text;not null"`
	IsPinned    bool   `gorm:"default:false"`
	Attachments []Attachment
	Comments    []Comment
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

// Attachment is one uploaded file
type Attachment struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	PostID    string `gorm:"not null;index"`
	Position  int    `gorm:"not null"`
	MimeType  string `gorm:"not null"`
	Path      string `gorm:"not null"`
	CreatedAt time.Time
}

// Comment is a top-level comment when ParentID is nil, otherwise a reply
type Comment struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	PostID    string    `gorm:"not null;index"`
	ParentID  *string   `gorm:"type:varchar(36);index"`
	Replies   []Comment `gorm:"foreignKey:ParentID"`
	AuthorID  string    `gorm:"not null;index"`
	Author    User      `gorm:"foreignKey:AuthorID"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Like is one user's like on a post or comment. At most one per target.
type Like struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	UserID     string `gorm:"not null;uniqueIndex:idx_like_target"`
	TargetType string `gorm:"not null;uniqueIndex:idx_like_target;index:idx_like_lookup"`
	TargetID   string `gorm:"not null;uniqueIndex:idx_like_target;index:idx_like_lookup"`
	CreatedAt  time.Time
}

func newID() string {
	return uuid.NewString()
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = newID()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = newID()
	}
	return nil
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = newID()
	}
	return nil
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = newID()
	}
	return nil
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = newID()
	}
	return nil
}

// models lists every table for migration
func models() []interface{} {
	return []interface{}{&User{}, &Post{}, &Attachment{}, &Comment{}, &Like{}}
}
