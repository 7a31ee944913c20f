package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskhub/internal/audit/domain"
)

// SentinelWorkspaceID is the workspace_id used for audit events that have no workspace (e.g. login_failure).
const SentinelWorkspaceID = "_system"

// IPExtractor returns the client IP from the request context (e.g. gRPC metadata or peer).
type IPExtractor func(context.Context) string

// Store persists audit entries.
type Store interface {
	CreateAuditLog(ctx context.Context, a *domain.AuditLog) error
}

// AuditLogger writes a single audit event. LogEvent is best-effort: failures are logged and do not
// affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, workspaceID, userID, action, resource, resourceID, metadata string)
}

// Logger implements AuditLogger on top of a Store and an optional IP extractor.
type Logger struct {
	store       Store
	ipExtractor IPExtractor
	log         *zap.Logger
	now         func() time.Time
}

// NewLogger returns an AuditLogger that persists to store and uses ipExtractor for client IP.
// ipExtractor may be nil; then IP is recorded as "unknown".
func NewLogger(store Store, ipExtractor IPExtractor, log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{store: store, ipExtractor: ipExtractor, log: log, now: time.Now}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, workspaceID, userID, action, resource, resourceID, metadata string) {
	if l == nil || l.store == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	if workspaceID == "" {
		workspaceID = SentinelWorkspaceID
	}
	entry := &domain.AuditLog{
		ID:          uuid.New().String(),
		WorkspaceID: workspaceID,
		UserID:      userID,
		Action:      action,
		Resource:    resource,
		ResourceID:  resourceID,
		IP:          ip,
		Metadata:    metadata,
		CreatedAt:   l.now().UTC(),
	}
	// The request may already be finished; the entry should still land.
	if err := l.store.CreateAuditLog(context.WithoutCancel(ctx), entry); err != nil {
		l.log.Warn("audit: failed to log event",
			zap.String("action", action),
			zap.String("resource", resource),
			zap.Error(err))
	}
}
