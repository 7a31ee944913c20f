package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	auditdomain "taskhub/internal/audit/domain"
	auditrepo "taskhub/internal/audit/repository"
	"taskhub/internal/db"
	identitydomain "taskhub/internal/identity/domain"
	identityrepo "taskhub/internal/identity/repository"
	membershipdomain "taskhub/internal/membership/domain"
	membershiprepo "taskhub/internal/membership/repository"
	projectdomain "taskhub/internal/project/domain"
	projectrepo "taskhub/internal/project/repository"
	taskdomain "taskhub/internal/task/domain"
	taskrepo "taskhub/internal/task/repository"
	userdomain "taskhub/internal/user/domain"
	userrepo "taskhub/internal/user/repository"
	workspacedomain "taskhub/internal/workspace/domain"
	workspacerepo "taskhub/internal/workspace/repository"
)

const defaultTxTimeout = 5 * time.Second

// repos binds every entity repository to one db.DBTX.
type repos struct {
	users       userrepo.Repository
	identities  identityrepo.Repository
	workspaces  workspacerepo.Repository
	memberships membershiprepo.Repository
	projects    projectrepo.Repository
	tasks       taskrepo.Repository
	audit       auditrepo.Repository
}

func newRepos(conn db.DBTX) repos {
	return repos{
		users:       userrepo.NewPostgresRepository(conn),
		identities:  identityrepo.NewPostgresRepository(conn),
		workspaces:  workspacerepo.NewPostgresRepository(conn),
		memberships: membershiprepo.NewPostgresRepository(conn),
		projects:    projectrepo.NewPostgresRepository(conn),
		tasks:       taskrepo.NewPostgresRepository(conn),
		audit:       auditrepo.NewPostgresRepository(conn),
	}
}

// PostgresStore implements Database over a *sql.DB opened with the pgx driver.
type PostgresStore struct {
	repos
	db        *sql.DB
	TxTimeout time.Duration
}

// NewPostgresStore returns a store that persists to db. The caller keeps ownership of db until Close.
func NewPostgresStore(conn *sql.DB) *PostgresStore {
	return &PostgresStore{repos: newRepos(conn), db: conn}
}

// RunInTx runs fn inside one database transaction. Locking reads issued through the Store passed to
// fn hold their row locks until commit or rollback. A context without a deadline gets TxTimeout
// (default 5s).
func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}
	timeout := s.TxTimeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, &postgresTx{repos: newRepos(tx)}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// postgresTx is the Store handed to RunInTx callbacks.
type postgresTx struct {
	repos
}

func (r repos) GetUser(ctx context.Context, id string) (*userdomain.User, error) {
	return r.users.GetByID(ctx, id)
}

func (r repos) GetUserByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	return r.users.GetByEmail(ctx, email)
}

func (r repos) CreateUser(ctx context.Context, u *userdomain.User) error {
	return duplicate(r.users.Create(ctx, u))
}

func (r repos) GetIdentity(ctx context.Context, userID string, provider identitydomain.IdentityProvider) (*identitydomain.Identity, error) {
	return r.identities.GetByUserAndProvider(ctx, userID, provider)
}

func (r repos) CreateIdentity(ctx context.Context, i *identitydomain.Identity) error {
	return duplicate(r.identities.Create(ctx, i))
}

func (r repos) GetWorkspace(ctx context.Context, id string) (*workspacedomain.Workspace, error) {
	return r.workspaces.GetByID(ctx, id)
}

func (r repos) ListWorkspacesByUser(ctx context.Context, userID string) ([]*workspacedomain.Workspace, error) {
	return r.workspaces.ListByUser(ctx, userID)
}

func (r repos) PutWorkspace(ctx context.Context, w *workspacedomain.Workspace) error {
	return duplicate(r.workspaces.Create(ctx, w))
}

func (r repos) GetMembership(ctx context.Context, workspaceID, userID string) (*membershipdomain.Membership, error) {
	return r.memberships.GetByWorkspaceAndUser(ctx, workspaceID, userID)
}

func (r repos) ListMemberships(ctx context.Context, workspaceID string) ([]*membershipdomain.Membership, error) {
	return r.memberships.ListByWorkspace(ctx, workspaceID)
}

func (r repos) PutMembership(ctx context.Context, m *membershipdomain.Membership) error {
	return duplicate(r.memberships.Create(ctx, m))
}

func (r repos) GetProject(ctx context.Context, id string) (*projectdomain.Project, error) {
	return r.projects.GetByID(ctx, id)
}

func (r repos) ListProjects(ctx context.Context, workspaceID string) ([]*projectdomain.Project, error) {
	return r.projects.ListByWorkspace(ctx, workspaceID)
}

func (r repos) PutProject(ctx context.Context, p *projectdomain.Project) error {
	return duplicate(r.projects.Create(ctx, p))
}

func (r repos) GetTask(ctx context.Context, id string) (*taskdomain.Task, error) {
	return r.tasks.GetByID(ctx, id)
}

func (r repos) GetTaskForUpdate(ctx context.Context, id string) (*taskdomain.Task, error) {
	return r.tasks.GetByIDForUpdate(ctx, id)
}

func (r repos) ListTasks(ctx context.Context, projectID string) ([]*taskdomain.Task, error) {
	return r.tasks.ListByProject(ctx, projectID)
}

func (r repos) PutTask(ctx context.Context, t *taskdomain.Task) error {
	return r.tasks.Put(ctx, t)
}

func (r repos) CreateAuditLog(ctx context.Context, a *auditdomain.AuditLog) error {
	return r.audit.Create(ctx, a)
}

func (r repos) ListAuditLogs(ctx context.Context, workspaceID string, limit, offset int32) ([]*auditdomain.AuditLog, error) {
	return r.audit.ListByWorkspace(ctx, workspaceID, limit, offset)
}

func duplicate(err error) error {
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

var (
	_ Database = (*PostgresStore)(nil)
	_ Store    = (*postgresTx)(nil)
)
