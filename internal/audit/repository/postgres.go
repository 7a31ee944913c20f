package repository

import (
	"context"
	"database/sql"

	"taskhub/internal/audit/domain"
	"taskhub/internal/db"
)

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns an audit log repository backed by db.
func NewPostgresRepository(db db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByWorkspace returns the workspace's audit logs, newest first, paginated by limit and offset.
// Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByWorkspace(ctx context.Context, workspaceID string, limit, offset int32) ([]*domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, workspace_id, user_id, action, resource, resource_id, ip, metadata, created_at
		   FROM audit_logs WHERE workspace_id = $1
		  ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`, workspaceID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.AuditLog
	for rows.Next() {
		var (
			a        domain.AuditLog
			uid      sql.NullString
			metadata sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.WorkspaceID, &uid, &a.Action, &a.Resource, &a.ResourceID,
			&a.IP, &metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.UserID = uid.String
		a.Metadata = metadata.String
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Create persists the audit log. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	uid := sql.NullString{String: a.UserID, Valid: a.UserID != ""}
	meta := sql.NullString{String: a.Metadata, Valid: a.Metadata != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, workspace_id, user_id, action, resource, resource_id, ip, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.WorkspaceID, uid, a.Action, a.Resource, a.ResourceID, a.IP, meta, a.CreatedAt)
	return err
}
