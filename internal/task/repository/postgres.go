package repository

import (
	"context"
	"database/sql"
	"errors"

	"taskhub/internal/db"
	"taskhub/internal/task/domain"
)

const taskColumns = `id, project_id, title, description, status, priority, assignee_id, created_at, updated_at`

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a task repository backed by db. Locking reads only hold their
// lock when db is a *sql.Tx.
func NewPostgresRepository(db db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the task for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return r.get(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Task, error) {
	return r.get(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresRepository) get(ctx context.Context, query, id string) (*domain.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// ListByProject returns the project's tasks, oldest first.
func (r *PostgresRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 ORDER BY created_at, id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Put upserts the task. Only status, assignee and updated_at change on conflict; the rest is immutable.
func (r *PostgresRepository) Put(ctx context.Context, t *domain.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE
		    SET status = EXCLUDED.status, assignee_id = EXCLUDED.assignee_id, updated_at = EXCLUDED.updated_at`,
		t.ID, t.ProjectID, t.Title, t.Description, string(t.Status), string(t.Priority),
		nullable(t.AssigneeID), t.CreatedAt, t.UpdatedAt)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*domain.Task, error) {
	var (
		t        domain.Task
		assignee sql.NullString
	)
	if err := s.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&assignee, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.AssigneeID = assignee.String
	return &t, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
