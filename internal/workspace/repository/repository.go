package repository

import (
	"context"

	"taskhub/internal/workspace/domain"
)

// Repository defines persistence for workspaces.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Workspace, error)
	// ListByUser returns the workspaces in which userID holds a membership.
	ListByUser(ctx context.Context, userID string) ([]*domain.Workspace, error)
	Create(ctx context.Context, w *domain.Workspace) error
}
