package repository

import (
	"context"

	"taskhub/internal/project/domain"
)

// Repository defines persistence for projects.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Project, error)
	Create(ctx context.Context, p *domain.Project) error
}
