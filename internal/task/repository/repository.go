package repository

import (
	"context"

	"taskhub/internal/task/domain"
)

// Repository defines persistence for tasks.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	// GetByIDForUpdate is GetByID that also locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error)
	// Put inserts t, or overwrites the mutable fields of an existing task with the same id.
	Put(ctx context.Context, t *domain.Task) error
}
