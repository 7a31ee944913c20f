package repository

import (
	"context"
	"database/sql"
	"errors"

	"taskhub/internal/db"
	"taskhub/internal/project/domain"
)

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a project repository backed by db.
func NewPostgresRepository(db db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the project for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	var p domain.Project
	err := r.db.QueryRowContext(ctx,
		`SELECT id, workspace_id, name, created_at FROM projects WHERE id = $1`, id,
	).Scan(&p.ID, &p.WorkspaceID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ListByWorkspace returns the workspace's projects, oldest first.
func (r *PostgresRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, workspace_id, name, created_at FROM projects WHERE workspace_id = $1 ORDER BY created_at, id`,
		workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.WorkspaceID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, p *domain.Project) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, workspace_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		p.ID, p.WorkspaceID, p.Name, p.CreatedAt)
	return err
}
