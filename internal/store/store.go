// Package store is the persistence boundary of taskhub. Services read and write through Store and
// group read-authorize-write sequences with TxRunner.RunInTx.
package store

import (
	"context"

	auditdomain "taskhub/internal/audit/domain"
	identitydomain "taskhub/internal/identity/domain"
	membershipdomain "taskhub/internal/membership/domain"
	projectdomain "taskhub/internal/project/domain"
	taskdomain "taskhub/internal/task/domain"
	userdomain "taskhub/internal/user/domain"
	workspacedomain "taskhub/internal/workspace/domain"
)

// Store is the set of entity operations used by the services. Get methods return nil, nil when the
// entity does not exist; errors are reserved for storage failures. Create methods return
// ErrDuplicate when a uniqueness constraint rejects the write.
type Store interface {
	GetUser(ctx context.Context, id string) (*userdomain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*userdomain.User, error)
	CreateUser(ctx context.Context, u *userdomain.User) error

	GetIdentity(ctx context.Context, userID string, provider identitydomain.IdentityProvider) (*identitydomain.Identity, error)
	CreateIdentity(ctx context.Context, i *identitydomain.Identity) error

	GetWorkspace(ctx context.Context, id string) (*workspacedomain.Workspace, error)
	ListWorkspacesByUser(ctx context.Context, userID string) ([]*workspacedomain.Workspace, error)
	PutWorkspace(ctx context.Context, w *workspacedomain.Workspace) error

	GetMembership(ctx context.Context, workspaceID, userID string) (*membershipdomain.Membership, error)
	ListMemberships(ctx context.Context, workspaceID string) ([]*membershipdomain.Membership, error)
	PutMembership(ctx context.Context, m *membershipdomain.Membership) error

	GetProject(ctx context.Context, id string) (*projectdomain.Project, error)
	ListProjects(ctx context.Context, workspaceID string) ([]*projectdomain.Project, error)
	PutProject(ctx context.Context, p *projectdomain.Project) error

	GetTask(ctx context.Context, id string) (*taskdomain.Task, error)
	// GetTaskForUpdate is GetTask that also holds the task against other writers until the
	// surrounding transaction ends.
	GetTaskForUpdate(ctx context.Context, id string) (*taskdomain.Task, error)
	ListTasks(ctx context.Context, projectID string) ([]*taskdomain.Task, error)
	PutTask(ctx context.Context, t *taskdomain.Task) error

	CreateAuditLog(ctx context.Context, a *auditdomain.AuditLog) error
	ListAuditLogs(ctx context.Context, workspaceID string, limit, offset int32) ([]*auditdomain.AuditLog, error)
}

// TxRunner runs fn atomically. fn receives a Store bound to the transaction; its writes become
// visible to other callers only if fn returns nil.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}

// TxStore is a Store that can also open transactions. Services depend on it.
type TxStore interface {
	Store
	TxRunner
}

// Database is a TxStore that can report its health and be closed.
type Database interface {
	TxStore
	Ping(ctx context.Context) error
	Close() error
}
