package repository

import (
	"context"
	"errors"

	"github.com/ceitask/taskboard/internal/domain/entity"
)

// ErrNotFound is returned when no row matches a lookup.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint
// (username or google_id). Concurrent registrations for the same username
// race on this constraint; exactly one wins.
var ErrDuplicate = errors.New("duplicate key")

// UserRepository defines the interface for user-related store operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*entity.User, error)
	UpdateProfileImage(ctx context.Context, username, image string) error
}
