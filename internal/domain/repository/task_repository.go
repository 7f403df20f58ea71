package repository

import (
	"context"
	"time"

	"github.com/ceitask/taskboard/internal/domain/entity"
)

// TaskRepository defines the interface for task-related store operations.
// ListByUsername orders by target_datetime descending with tasks lacking a
// deadline last. UpdateStatus and Delete succeed whether or not the id
// exists.
type TaskRepository interface {
	Create(ctx context.Context, t *entity.Task) error
	ListByUsername(ctx context.Context, username string) ([]*entity.Task, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
}

// NullsLastDesc is the comparison used for task listings: later deadlines
// first, missing deadlines last. Exposed so in-memory implementations sort
// the same way the SQL does.
func NullsLastDesc(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.After(*b)
	}
}
