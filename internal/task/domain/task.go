package domain

import (
	"time"
)

// Task is a unit of work inside a project.
type Task struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	// AssigneeID is empty when the task is unassigned.
	AssigneeID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Status is the lifecycle state of a task. TODO is initial; any state may move to any other.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Valid reports whether s is one of the three lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Priority orders tasks for display; it has no effect on the lifecycle.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Valid reports whether p is LOW, MEDIUM or HIGH.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// IsAssignee reports whether userID is the task's current assignee.
func (t *Task) IsAssignee(userID string) bool {
	return t.AssigneeID != "" && t.AssigneeID == userID
}

// SetStatus moves the task to s and bumps UpdatedAt. It returns false, leaving the task untouched,
// when s equals the current status. Callers validate s first.
func (t *Task) SetStatus(s Status, now time.Time) bool {
	if t.Status == s {
		return false
	}
	t.Status = s
	t.UpdatedAt = now
	return true
}

// SetAssignee assigns the task to userID, or unassigns it when userID is empty, and bumps UpdatedAt.
// It returns false when the assignee is unchanged.
func (t *Task) SetAssignee(userID string, now time.Time) bool {
	if t.AssigneeID == userID {
		return false
	}
	t.AssigneeID = userID
	t.UpdatedAt = now
	return true
}
