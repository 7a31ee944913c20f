package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	auditdomain "taskhub/internal/audit/domain"
	identitydomain "taskhub/internal/identity/domain"
	membershipdomain "taskhub/internal/membership/domain"
	projectdomain "taskhub/internal/project/domain"
	taskdomain "taskhub/internal/task/domain"
	userdomain "taskhub/internal/user/domain"
	workspacedomain "taskhub/internal/workspace/domain"
)

// state is the full contents of a MemoryStore. Entities are stored by value so callers never alias
// stored data.
type state struct {
	users       map[string]userdomain.User
	identities  map[string]identitydomain.Identity // user_id + "|" + provider
	workspaces  map[string]workspacedomain.Workspace
	memberships map[string]membershipdomain.Membership // workspace_id + "|" + user_id
	projects    map[string]projectdomain.Project
	tasks       map[string]taskdomain.Task
	audit       []auditdomain.AuditLog
}

func newState() *state {
	return &state{
		users:       make(map[string]userdomain.User),
		identities:  make(map[string]identitydomain.Identity),
		workspaces:  make(map[string]workspacedomain.Workspace),
		memberships: make(map[string]membershipdomain.Membership),
		projects:    make(map[string]projectdomain.Project),
		tasks:       make(map[string]taskdomain.Task),
	}
}

func (s *state) clone() *state {
	c := &state{
		users:       make(map[string]userdomain.User, len(s.users)),
		identities:  make(map[string]identitydomain.Identity, len(s.identities)),
		workspaces:  make(map[string]workspacedomain.Workspace, len(s.workspaces)),
		memberships: make(map[string]membershipdomain.Membership, len(s.memberships)),
		projects:    make(map[string]projectdomain.Project, len(s.projects)),
		tasks:       make(map[string]taskdomain.Task, len(s.tasks)),
		audit:       append([]auditdomain.AuditLog(nil), s.audit...),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.identities {
		c.identities[k] = v
	}
	for k, v := range s.workspaces {
		c.workspaces[k] = v
	}
	for k, v := range s.memberships {
		c.memberships[k] = v
	}
	for k, v := range s.projects {
		c.projects[k] = v
	}
	for k, v := range s.tasks {
		c.tasks[k] = v
	}
	return c
}

// MemoryStore is an in-process Database used when no DATABASE_URL is configured and in tests.
// Transactions are serialized; each works on a private copy of the state that replaces the shared
// state only when the callback succeeds.
type MemoryStore struct {
	mu    sync.RWMutex
	state *state
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newState()}
}

func (m *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	working := m.state.clone()
	if err := fn(ctx, &memoryTx{state: working}); err != nil {
		return err
	}
	m.state = working
	return nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

// read runs fn against the committed state under the read lock.
func (m *MemoryStore) read(fn func(tx *memoryTx)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn(&memoryTx{state: m.state})
}

// write runs fn as a single-operation transaction.
func (m *MemoryStore) write(ctx context.Context, fn func(tx *memoryTx) error) error {
	return m.RunInTx(ctx, func(_ context.Context, s Store) error {
		return fn(s.(*memoryTx))
	})
}

func (m *MemoryStore) GetUser(ctx context.Context, id string) (u *userdomain.User, err error) {
	m.read(func(tx *memoryTx) { u, err = tx.GetUser(ctx, id) })
	return
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (u *userdomain.User, err error) {
	m.read(func(tx *memoryTx) { u, err = tx.GetUserByEmail(ctx, email) })
	return
}

func (m *MemoryStore) CreateUser(ctx context.Context, u *userdomain.User) error {
	return m.write(ctx, func(tx *memoryTx) error { return tx.CreateUser(ctx, u) })
}

func (m *MemoryStore) GetIdentity(ctx context.Context, userID string, provider identitydomain.IdentityProvider) (i *identitydomain.Identity, err error) {
	m.read(func(tx *memoryTx) { i, err = tx.GetIdentity(ctx, userID, provider) })
	return
}

func (m *MemoryStore) CreateIdentity(ctx context.Context, i *identitydomain.Identity) error {
	return m.write(ctx, func(tx *memoryTx) error { return tx.CreateIdentity(ctx, i) })
}

func (m *MemoryStore) GetWorkspace(ctx context.Context, id string) (w *workspacedomain.Workspace, err error) {
	m.read(func(tx *memoryTx) { w, err = tx.GetWorkspace(ctx, id) })
	return
}

func (m *MemoryStore) ListWorkspacesByUser(ctx context.Context, userID string) (list []*workspacedomain.Workspace, err error) {
	m.read(func(tx *memoryTx) { list, err = tx.ListWorkspacesByUser(ctx, userID) })
	return
}

func (m *MemoryStore) PutWorkspace(ctx context.Context, w *workspacedomain.Workspace) error {
	return m.write(ctx, func(tx *memoryTx) error { return tx.PutWorkspace(ctx, w) })
}

func (m *MemoryStore) GetMembership(ctx context.Context, workspaceID, userID string) (ms *membershipdomain.Membership, err error) {
	m.read(func(tx *memoryTx) { ms, err = tx.GetMembership(ctx, workspaceID, userID) })
	return
}

func (m *MemoryStore) ListMemberships(ctx context.Context, workspaceID string) (list []*membershipdomain.Membership, err error) {
	m.read(func(tx *memoryTx) { list, err = tx.ListMemberships(ctx, workspaceID) })
	return
}

func (m *MemoryStore) PutMembership(ctx context.Context, ms *membershipdomain.Membership) error {
	return m.write(ctx, func(tx *memoryTx) error { return tx.PutMembership(ctx, ms) })
}

func (m *MemoryStore) GetProject(ctx context.Context, id string) (p *projectdomain.Project, err error) {
	m.read(func(tx *memoryTx) { p, err = tx.GetProject(ctx, id) })
	return
}

func (m *MemoryStore) ListProjects(ctx context.Context, workspaceID string) (list []*projectdomain.Project, err error) {
	m.read(func(tx *memoryTx) { list, err = tx.ListProjects(ctx, workspaceID) })
	return
}

func (m *MemoryStore) PutProject(ctx context.Context, p *projectdomain.Project) error {
	return m.write(ctx, func(tx *memoryTx) error { return tx.PutProject(ctx, p) })
}

func (m *MemoryStore) GetTask(ctx context.Context, id string) (t *taskdomain.Task, err error) {
	m.read(func(tx *memoryTx) { t, err = tx.GetTask(ctx, id) })
	return
}

// GetTaskForUpdate outside a transaction is a plain read.
func (m *MemoryStore) GetTaskForUpdate(ctx context.Context, id string) (*taskdomain.Task, error) {
	return m.GetTask(ctx, id)
}

func (m *MemoryStore) ListTasks(ctx context.Context, projectID string) (list []*taskdomain.Task, err error) {
	m.read(func(tx *memoryTx) { list, err = tx.ListTasks(ctx, projectID) })
	return
}

func (m *MemoryStore) PutTask(ctx context.Context, t *taskdomain.Task) error {
	return m.write(ctx, func(tx *memoryTx) error { return tx.PutTask(ctx, t) })
}

func (m *MemoryStore) CreateAuditLog(ctx context.Context, a *auditdomain.AuditLog) error {
	return m.write(ctx, func(tx *memoryTx) error { return tx.CreateAuditLog(ctx, a) })
}

func (m *MemoryStore) ListAuditLogs(ctx context.Context, workspaceID string, limit, offset int32) (list []*auditdomain.AuditLog, err error) {
	m.read(func(tx *memoryTx) { list, err = tx.ListAuditLogs(ctx, workspaceID, limit, offset) })
	return
}

// memoryTx implements Store directly on a state. It does no locking of its own.
type memoryTx struct {
	state *state
}

func (tx *memoryTx) GetUser(_ context.Context, id string) (*userdomain.User, error) {
	u, ok := tx.state.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (tx *memoryTx) GetUserByEmail(_ context.Context, email string) (*userdomain.User, error) {
	for _, u := range tx.state.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (tx *memoryTx) CreateUser(_ context.Context, u *userdomain.User) error {
	if _, ok := tx.state.users[u.ID]; ok {
		return ErrDuplicate
	}
	for _, existing := range tx.state.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	tx.state.users[u.ID] = *u
	return nil
}

func identityKey(userID string, provider identitydomain.IdentityProvider) string {
	return userID + "|" + string(provider)
}

func (tx *memoryTx) GetIdentity(_ context.Context, userID string, provider identitydomain.IdentityProvider) (*identitydomain.Identity, error) {
	i, ok := tx.state.identities[identityKey(userID, provider)]
	if !ok {
		return nil, nil
	}
	return &i, nil
}

func (tx *memoryTx) CreateIdentity(_ context.Context, i *identitydomain.Identity) error {
	key := identityKey(i.UserID, i.Provider)
	if _, ok := tx.state.identities[key]; ok {
		return ErrDuplicate
	}
	tx.state.identities[key] = *i
	return nil
}

func (tx *memoryTx) GetWorkspace(_ context.Context, id string) (*workspacedomain.Workspace, error) {
	w, ok := tx.state.workspaces[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (tx *memoryTx) ListWorkspacesByUser(_ context.Context, userID string) ([]*workspacedomain.Workspace, error) {
	var out []*workspacedomain.Workspace
	for _, m := range tx.state.memberships {
		if m.UserID != userID {
			continue
		}
		if w, ok := tx.state.workspaces[m.WorkspaceID]; ok {
			out = append(out, &w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return less(out[i].CreatedAt.UnixNano(), out[j].CreatedAt.UnixNano(), out[i].ID, out[j].ID)
	})
	return out, nil
}

func (tx *memoryTx) PutWorkspace(_ context.Context, w *workspacedomain.Workspace) error {
	if _, ok := tx.state.workspaces[w.ID]; ok {
		return ErrDuplicate
	}
	tx.state.workspaces[w.ID] = *w
	return nil
}

func membershipKey(workspaceID, userID string) string {
	return workspaceID + "|" + userID
}

func (tx *memoryTx) GetMembership(_ context.Context, workspaceID, userID string) (*membershipdomain.Membership, error) {
	m, ok := tx.state.memberships[membershipKey(workspaceID, userID)]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (tx *memoryTx) ListMemberships(_ context.Context, workspaceID string) ([]*membershipdomain.Membership, error) {
	var out []*membershipdomain.Membership
	for _, m := range tx.state.memberships {
		if m.WorkspaceID == workspaceID {
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return less(out[i].CreatedAt.UnixNano(), out[j].CreatedAt.UnixNano(), out[i].ID, out[j].ID)
	})
	return out, nil
}

func (tx *memoryTx) PutMembership(_ context.Context, m *membershipdomain.Membership) error {
	key := membershipKey(m.WorkspaceID, m.UserID)
	if _, ok := tx.state.memberships[key]; ok {
		return ErrDuplicate
	}
	if m.Role == membershipdomain.RoleOwner {
		for _, existing := range tx.state.memberships {
			if existing.WorkspaceID == m.WorkspaceID && existing.Role == membershipdomain.RoleOwner {
				return ErrDuplicate
			}
		}
	}
	tx.state.memberships[key] = *m
	return nil
}

func (tx *memoryTx) GetProject(_ context.Context, id string) (*projectdomain.Project, error) {
	p, ok := tx.state.projects[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (tx *memoryTx) ListProjects(_ context.Context, workspaceID string) ([]*projectdomain.Project, error) {
	var out []*projectdomain.Project
	for _, p := range tx.state.projects {
		if p.WorkspaceID == workspaceID {
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return less(out[i].CreatedAt.UnixNano(), out[j].CreatedAt.UnixNano(), out[i].ID, out[j].ID)
	})
	return out, nil
}

func (tx *memoryTx) PutProject(_ context.Context, p *projectdomain.Project) error {
	if _, ok := tx.state.projects[p.ID]; ok {
		return ErrDuplicate
	}
	tx.state.projects[p.ID] = *p
	return nil
}

func (tx *memoryTx) GetTask(_ context.Context, id string) (*taskdomain.Task, error) {
	t, ok := tx.state.tasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// GetTaskForUpdate needs no lock: the transaction already runs exclusively.
func (tx *memoryTx) GetTaskForUpdate(ctx context.Context, id string) (*taskdomain.Task, error) {
	return tx.GetTask(ctx, id)
}

func (tx *memoryTx) ListTasks(_ context.Context, projectID string) ([]*taskdomain.Task, error) {
	var out []*taskdomain.Task
	for _, t := range tx.state.tasks {
		if t.ProjectID == projectID {
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return less(out[i].CreatedAt.UnixNano(), out[j].CreatedAt.UnixNano(), out[i].ID, out[j].ID)
	})
	return out, nil
}

func (tx *memoryTx) PutTask(_ context.Context, t *taskdomain.Task) error {
	if existing, ok := tx.state.tasks[t.ID]; ok {
		existing.Status = t.Status
		existing.AssigneeID = t.AssigneeID
		existing.UpdatedAt = t.UpdatedAt
		tx.state.tasks[t.ID] = existing
		return nil
	}
	tx.state.tasks[t.ID] = *t
	return nil
}

func (tx *memoryTx) CreateAuditLog(_ context.Context, a *auditdomain.AuditLog) error {
	tx.state.audit = append(tx.state.audit, *a)
	return nil
}

func (tx *memoryTx) ListAuditLogs(_ context.Context, workspaceID string, limit, offset int32) ([]*auditdomain.AuditLog, error) {
	var out []*auditdomain.AuditLog
	// Newest first.
	for i := len(tx.state.audit) - 1; i >= 0; i-- {
		a := tx.state.audit[i]
		if a.WorkspaceID == workspaceID {
			out = append(out, &a)
		}
	}
	if int(offset) >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && int(limit) < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func less(aTime, bTime int64, aID, bID string) bool {
	if aTime != bTime {
		return aTime < bTime
	}
	return strings.Compare(aID, bID) < 0
}

var (
	_ Database = (*MemoryStore)(nil)
	_ Store    = (*memoryTx)(nil)
)
