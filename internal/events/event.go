// Package events publishes domain events after a mutation commits.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	TypeWorkspaceCreated  = "workspace.created"
	TypeMemberInvited     = "member.invited"
	TypeProjectCreated    = "project.created"
	TypeTaskCreated       = "task.created"
	TypeTaskStatusChanged = "task.status_changed"
	TypeTaskAssigned      = "task.assigned"
)

// Event is one domain event. Events are keyed by WorkspaceID so a consumer sees a workspace's
// events in order.
type Event struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	WorkspaceID string            `json:"workspace_id"`
	ActorID     string            `json:"actor_id"`
	ResourceID  string            `json:"resource_id"`
	OccurredAt  time.Time         `json:"occurred_at"`
	Data        map[string]string `json:"data,omitempty"`
}

// New returns an event with a fresh ID.
func New(eventType, workspaceID, actorID, resourceID string, now time.Time, data map[string]string) *Event {
	return &Event{
		ID:          uuid.New().String(),
		Type:        eventType,
		WorkspaceID: workspaceID,
		ActorID:     actorID,
		ResourceID:  resourceID,
		OccurredAt:  now.UTC(),
		Data:        data,
	}
}

// Emitter delivers events to a broker. Best-effort; callers log and ignore errors.
type Emitter interface {
	Emit(ctx context.Context, event *Event) error
}
