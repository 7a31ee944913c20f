package audit

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"taskhub/internal/audit/domain"
)

// mockAuditStore implements Store for tests.
type mockAuditStore struct {
	entries   []*domain.AuditLog
	createErr error
}

func (m *mockAuditStore) CreateAuditLog(ctx context.Context, entry *domain.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func TestLogger_LogEvent_Success(t *testing.T) {
	store := &mockAuditStore{}
	ipExtractor := func(ctx context.Context) string {
		return "192.168.1.1"
	}
	logger := NewLogger(store, ipExtractor, zap.NewNop())

	logger.LogEvent(context.Background(), "ws-1", "user-1", "status_changed", "task", "task-1", "TODO->DONE")

	if len(store.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(store.entries))
	}
	entry := store.entries[0]
	if entry.WorkspaceID != "ws-1" {
		t.Errorf("workspace_id = %q, want %q", entry.WorkspaceID, "ws-1")
	}
	if entry.UserID != "user-1" {
		t.Errorf("user_id = %q, want %q", entry.UserID, "user-1")
	}
	if entry.Action != "status_changed" {
		t.Errorf("action = %q, want %q", entry.Action, "status_changed")
	}
	if entry.Resource != "task" {
		t.Errorf("resource = %q, want %q", entry.Resource, "task")
	}
	if entry.ResourceID != "task-1" {
		t.Errorf("resource_id = %q, want %q", entry.ResourceID, "task-1")
	}
	if entry.IP != "192.168.1.1" {
		t.Errorf("ip = %q, want %q", entry.IP, "192.168.1.1")
	}
	if entry.Metadata != "TODO->DONE" {
		t.Errorf("metadata = %q, want %q", entry.Metadata, "TODO->DONE")
	}
	if entry.ID == "" {
		t.Error("entry ID should be set")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("entry CreatedAt should be set")
	}
}

func TestLogger_LogEvent_NilIPExtractor(t *testing.T) {
	store := &mockAuditStore{}
	logger := NewLogger(store, nil, nil)

	logger.LogEvent(context.Background(), "ws-1", "user-1", "action", "resource", "", "")

	if len(store.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(store.entries))
	}
	if store.entries[0].IP != "unknown" {
		t.Errorf("ip = %q, want %q", store.entries[0].IP, "unknown")
	}
}

func TestLogger_LogEvent_SentinelWorkspaceID(t *testing.T) {
	store := &mockAuditStore{}
	logger := NewLogger(store, nil, zap.NewNop())

	logger.LogEvent(context.Background(), "", "user-1", "login_failure", "user", "", "")

	if len(store.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(store.entries))
	}
	if store.entries[0].WorkspaceID != SentinelWorkspaceID {
		t.Errorf("workspace_id = %q, want %q", store.entries[0].WorkspaceID, SentinelWorkspaceID)
	}
}

func TestLogger_LogEvent_CanceledContext(t *testing.T) {
	store := &mockAuditStore{}
	logger := NewLogger(store, nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	logger.LogEvent(ctx, "ws-1", "user-1", "action", "resource", "", "")

	if len(store.entries) != 1 {
		t.Fatalf("expected 1 entry after cancel, got %d", len(store.entries))
	}
}

func TestLogger_LogEvent_StoreError(t *testing.T) {
	store := &mockAuditStore{createErr: errors.New("database error")}
	logger := NewLogger(store, nil, zap.NewNop())

	// Best-effort: must not panic.
	logger.LogEvent(context.Background(), "ws-1", "user-1", "action", "resource", "", "")
}

func TestLogger_LogEvent_NilStore(t *testing.T) {
	logger := NewLogger(nil, nil, nil)
	logger.LogEvent(context.Background(), "ws-1", "user-1", "action", "resource", "", "")

	var nilLogger *Logger
	nilLogger.LogEvent(context.Background(), "ws-1", "user-1", "action", "resource", "", "")
}
