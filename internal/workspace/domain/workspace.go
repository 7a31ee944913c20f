package domain

import (
	"errors"
	"strings"
	"time"
)

// Workspace is the top-level collaboration container. OwnerID is set at creation and never reassigned.
type Workspace struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
}

// Validate validates the workspace for persistence. Returns an error describing the first validation failure.
func (w *Workspace) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return errors.New("name is required")
	}
	if w.OwnerID == "" {
		return errors.New("owner_id is required")
	}
	return nil
}
