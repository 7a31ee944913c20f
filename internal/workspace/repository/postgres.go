package repository

import (
	"context"
	"database/sql"
	"errors"

	"taskhub/internal/db"
	"taskhub/internal/workspace/domain"
)

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a workspace repository backed by db.
func NewPostgresRepository(db db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the workspace for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Workspace, error) {
	var w domain.Workspace
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, owner_id, created_at FROM workspaces WHERE id = $1`, id,
	).Scan(&w.ID, &w.Name, &w.OwnerID, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Workspace, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT w.id, w.name, w.owner_id, w.created_at
		   FROM workspaces w
		   JOIN memberships m ON m.workspace_id = w.id
		  WHERE m.user_id = $1
		  ORDER BY w.created_at, w.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Workspace
	for rows.Next() {
		var w domain.Workspace
		if err := rows.Scan(&w.ID, &w.Name, &w.OwnerID, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &w)
	}
	return out, rows.Err()
}

// Create persists the workspace. The workspace must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, w *domain.Workspace) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO workspaces (id, name, owner_id, created_at) VALUES ($1, $2, $3, $4)`,
		w.ID, w.Name, w.OwnerID, w.CreatedAt)
	return err
}
