package repository

import (
	"context"
	"database/sql"
	"errors"

	"taskhub/internal/db"
	"taskhub/internal/membership/domain"
)

const membershipColumns = `id, workspace_id, user_id, role, created_at`

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a membership repository backed by db.
func NewPostgresRepository(db db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByWorkspaceAndUser returns the membership for the given workspace and user, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByWorkspaceAndUser(ctx context.Context, workspaceID, userID string) (*domain.Membership, error) {
	var m domain.Membership
	err := r.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE workspace_id = $1 AND user_id = $2`,
		workspaceID, userID,
	).Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// ListByWorkspace returns all memberships of the workspace, oldest first.
func (r *PostgresRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE workspace_id = $1 ORDER BY created_at, id`,
		workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Membership
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// Create persists the membership. The membership must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, m *domain.Membership) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO memberships (id, workspace_id, user_id, role, created_at) VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.WorkspaceID, m.UserID, string(m.Role), m.CreatedAt)
	return err
}
