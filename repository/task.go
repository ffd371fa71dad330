package repository

import (
	"context"

	"github.com/fastygo/tasks/domain"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page is an offset/limit window over the task table in insertion order.
type Page struct {
	Offset int
	Limit  int
}

// DefaultPage returns the window used when the client supplies no bounds.
func DefaultPage() Page {
	return Page{Offset: 0, Limit: DefaultLimit}
}

// Validate rejects windows outside 0 <= offset and 0 <= limit <= MaxLimit.
// Out-of-range limits are rejected, never clamped.
func (p Page) Validate() error {
	if p.Offset < 0 {
		return domain.Invalid("offset must be greater than or equal to 0")
	}
	if p.Limit < 0 {
		return domain.Invalid("limit must be greater than or equal to 0")
	}
	if p.Limit > MaxLimit {
		return domain.Invalid("limit must be less than or equal to %d", MaxLimit)
	}
	return nil
}

// TaskRepository persists tasks. Each call runs in its own storage session.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	List(ctx context.Context, page Page) ([]domain.Task, error)
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
	Close() error
}
