package domain

import "time"

// AuditLog is one recorded action against a workspace.
type AuditLog struct {
	ID          string
	WorkspaceID string
	UserID      string
	Action      string
	Resource    string
	ResourceID  string
	IP          string
	Metadata    string
	CreatedAt   time.Time
}
