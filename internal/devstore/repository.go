package devstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// ErrNotFound is returned when a post, comment or user does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is returned for an unknown email or wrong password
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Open connects to dsn. DSNs starting with postgres:// or postgresql://
// use the postgres driver; anything else is a sqlite path or URI.
func Open(dsn string, verbose bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	gormLogger := logger.Default.LogMode(logger.Silent)
	if verbose {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Repository reads and writes the feed tables
type Repository struct {
	db *gorm.DB
}

// NewRepository wraps db
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// CreateUser stores u with a bcrypt hash of password
func (r *Repository) CreateUser(ctx context.Context, u *User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.PasswordHash = string(hash)
	return r.db.WithContext(ctx).Create(u).Error
}

// Authenticate returns the user for email when password matches
func (r *Repository) Authenticate(ctx context.Context, email, password string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// UserByID loads one user
func (r *Repository) UserByID(ctx context.Context, id string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// withThread preloads everything a rendered post needs
func withThread(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Where("parent_id IS NULL").Order("created_at ASC")
		}).
		Preload("Comments.Author").
		Preload("Comments.Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Comments.Replies.Author")
}

// RecentPosts lists posts across all communities, pinned first
func (r *Repository) RecentPosts(ctx context.Context, page, limit int) ([]Post, error) {
	return r.listPosts(ctx, "", page, limit)
}

// CommunityPosts lists posts in one community, pinned first
func (r *Repository) CommunityPosts(ctx context.Context, communityID string, page, limit int) ([]Post, error) {
	return r.listPosts(ctx, communityID, page, limit)
}

func (r *Repository) listPosts(ctx context.Context, communityID string, page, limit int) ([]Post, error) {
	q := withThread(r.db.WithContext(ctx)).
		Order("is_pinned DESC").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit)
	if communityID != "" {
		q = q.Where("community_id = ?", communityID)
	}

	posts := []Post{}
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// PostByID loads one post with its thread
func (r *Repository) PostByID(ctx context.Context, id string) (*Post, error) {
	var p Post
	if err := withThread(r.db.WithContext(ctx)).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// CreatePost stores p and its attachments
func (r *Repository) CreatePost(ctx context.Context, p *Post) error {
	for i := range p.Attachments {
		p.Attachments[i].Position = i
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).First(&p.Author, "id = ?", p.AuthorID).Error
}

// CreateComment adds a comment to postID, or a reply when parentID is set.
// Replies attach to top-level comments only.
func (r *Repository) CreateComment(ctx context.Context, postID string, parentID *string, authorID, content string) (*Comment, error) {
	db := r.db.WithContext(ctx)

	var count int64
	if err := db.Model(&Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	if parentID != nil {
		if _, err := r.topLevelComment(ctx, postID, *parentID); err != nil {
			return nil, err
		}
	}

	c := &Comment{PostID: postID, ParentID: parentID, AuthorID: authorID, Content: content}
	if err := db.Create(c).Error; err != nil {
		return nil, err
	}
	if err := db.First(&c.Author, "id = ?", authorID).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Repository) topLevelComment(ctx context.Context, postID, commentID string) (*Comment, error) {
	var c Comment
	err := r.db.WithContext(ctx).
		Where("id = ? AND post_id = ? AND parent_id IS NULL", commentID, postID).
		First(&c).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// FindReply checks that replyID is a reply to commentID on postID
func (r *Repository) FindReply(ctx context.Context, postID, commentID, replyID string) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&Comment{}).
		Where("id = ? AND post_id = ? AND parent_id = ?", replyID, postID, commentID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// FindComment checks that commentID is a top-level comment on postID
func (r *Repository) FindComment(ctx context.Context, postID, commentID string) error {
	_, err := r.topLevelComment(ctx, postID, commentID)
	return err
}

// ToggleLike adds or removes userID's like on a target and returns the
// likers in the order they liked
func (r *Repository) ToggleLike(ctx context.Context, userID, targetType, targetID string) ([]string, error) {
	var likedBy []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Like
		err := tx.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
			First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&Like{UserID: userID, TargetType: targetType, TargetID: targetID}).Error; err != nil {
				return err
			}
		default:
			return err
		}

		likedBy = []string{}
		return tx.Model(&Like{}).
			Where("target_type = ? AND target_id = ?", targetType, targetID).
			Order("created_at ASC").
			Pluck("user_id", &likedBy).Error
	})
	if err != nil {
		return nil, err
	}
	return likedBy, nil
}

// LikesFor maps each target id to its likers
func (r *Repository) LikesFor(ctx context.Context, targetType string, ids []string) (map[string][]string, error) {
	out := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var likes []Like
	err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id IN ?", targetType, ids).
		Order("created_at ASC").
		Find(&likes).Error
	if err != nil {
		return nil, err
	}
	for _, l := range likes {
		out[l.TargetID] = append(out[l.TargetID], l.UserID)
	}
	return out, nil
}

// DeletePost removes a post with its likes, replies, comments and
// attachments in one transaction. It returns the deleted attachment paths.
func (r *Repository) DeletePost(ctx context.Context, postID string) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post Post
		if err := tx.First(&post, "id = ?", postID).Error; err != nil {
			return notFound(err)
		}

		var commentIDs []string
		if err := tx.Model(&Comment{}).Where("post_id = ?", postID).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("target_type = ? AND target_id IN ?", TargetComment, commentIDs).Delete(&Like{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("target_type = ? AND target_id = ?", TargetPost, postID).Delete(&Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ? AND parent_id IS NOT NULL", postID).Delete(&Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&Attachment{}).Where("post_id = ?", postID).Pluck("path", &paths).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&Attachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
