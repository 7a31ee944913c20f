package domain

import (
	"errors"
	"strings"
	"time"
)

// Project is a named grouping of tasks inside exactly one workspace.
type Project struct {
	ID          string
	WorkspaceID string
	Name        string
	CreatedAt   time.Time
}

// Validate validates the project for persistence. Returns an error describing the first validation failure.
func (p *Project) Validate() error {
	if p.WorkspaceID == "" {
		return errors.New("workspace_id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}
