// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"instogram/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// GetByID returns a NOT_FOUND error when no user has id.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByUsername returns (nil, nil) when no user has username.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	SearchByUsername(ctx context.Context, fragment string) ([]models.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

// FollowRepository defines persistence operations for the follow graph.
type FollowRepository interface {
	// Toggle removes the follower->following edge if present, otherwise
	// creates it. It reports whether the edge exists afterwards.
	Toggle(ctx context.Context, followerID, followingID string) (bool, error)
	FollowerIDs(ctx context.Context, userID string) ([]string, error)
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
}

// PostRepository defines persistence operations for posts and their engagement.
type PostRepository interface {
	ExistsByContentHash(ctx context.Context, hash string) (bool, error)
	// Create returns a CONFLICT error when the content already exists.
	Create(ctx context.Context, post *models.Post) error
	Exists(ctx context.Context, id string) (bool, error)
	// GetByID returns the author-enriched post or a NOT_FOUND error.
	GetByID(ctx context.Context, id string) (*models.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error)
	// ListLatest returns every post with its author, newest first.
	ListLatest(ctx context.Context) ([]models.Post, error)
	AddComment(ctx context.Context, postID string, comment *models.Comment) error
	// ToggleLike removes username's like if present, otherwise adds it. It
	// reports whether the like exists afterwards.
	ToggleLike(ctx context.Context, postID, username string) (bool, error)
}

// Backend is the connection underneath a Store.
type Backend interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Store bundles the repositories of one storage backend.
type Store struct {
	Users   UserRepository
	Follows FollowRepository
	Posts   PostRepository
	Backend Backend
}

// NewGormStore returns a Store backed by db.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Users:   NewUserRepository(db),
		Follows: NewFollowRepository(db),
		Posts:   NewPostRepository(db),
		Backend: gormBackend{db: db},
	}
}

type gormBackend struct {
	db *gorm.DB
}

func (b gormBackend) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (b gormBackend) Close(_ context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// likePattern turns fragment into a LIKE pattern matching it literally
// anywhere in the value. Use with ESCAPE '\'.
func likePattern(fragment string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(fragment) + "%"
}
