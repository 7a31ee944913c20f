package repository

import (
	"context"

	"taskhub/internal/membership/domain"
)

// Repository defines persistence for memberships.
type Repository interface {
	GetByWorkspaceAndUser(ctx context.Context, workspaceID, userID string) (*domain.Membership, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Membership, error)
	Create(ctx context.Context, m *domain.Membership) error
}
