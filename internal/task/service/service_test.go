package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"taskhub/internal/events"
	membershipdomain "taskhub/internal/membership/domain"
	"taskhub/internal/metrics"
	"taskhub/internal/platform/errs"
	"taskhub/internal/platform/rbac"
	"taskhub/internal/policy/engine"
	projectdomain "taskhub/internal/project/domain"
	"taskhub/internal/store"
	"taskhub/internal/task/domain"
	userdomain "taskhub/internal/user/domain"
	workspacedomain "taskhub/internal/workspace/domain"
)

// mockAuditLogger records LogEvent calls.
type mockAuditLogger struct {
	mu     sync.Mutex
	events []string
}

func (m *mockAuditLogger) LogEvent(ctx context.Context, workspaceID, userID, action, resource, resourceID, metadata string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, action+":"+resourceID)
}

func (m *mockAuditLogger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

// mockEmitter records emitted events.
type mockEmitter struct {
	mu     sync.Mutex
	events []*events.Event
}

func (m *mockEmitter) Emit(ctx context.Context, e *events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *mockEmitter) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Type
	}
	return out
}

// failingStore fails every transaction with err.
type failingStore struct {
	store.TxStore
	err error
}

func (f *failingStore) RunInTx(ctx context.Context, fn func(ctx context.Context, s store.Store) error) error {
	return f.err
}

type fixture struct {
	svc        *Service
	store      *store.MemoryStore
	audit      *mockAuditLogger
	emitter    *mockEmitter
	dispatcher *events.Dispatcher
	metrics    *metrics.Metrics
	workspace  string
	project    string
	task       string // assigned to bob, TODO
	unassigned string
	clock      time.Time
}

const (
	alice = "alice" // OWNER
	dave  = "dave"  // ADMIN
	bob   = "bob"   // MEMBER
	erin  = "erin"  // MEMBER
	carol = "carol" // registered, not a member
)

// newFixture builds the workspace W with OWNER=alice, ADMIN=dave, MEMBER=bob and erin, a project,
// a TODO task assigned to bob and an unassigned task.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	for _, id := range []string{alice, dave, bob, erin, carol} {
		if err := st.CreateUser(ctx, &userdomain.User{ID: id, Email: id + "@example.com", Name: id, CreatedAt: base}); err != nil {
			t.Fatalf("CreateUser(%s): %v", id, err)
		}
	}
	agg, err := workspacedomain.NewWorkspace("W", alice, base)
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	for id, role := range map[string]membershipdomain.Role{dave: membershipdomain.RoleAdmin, bob: membershipdomain.RoleMember, erin: membershipdomain.RoleMember} {
		if _, err := agg.AddMember(id, role, base); err != nil {
			t.Fatalf("AddMember(%s): %v", id, err)
		}
	}
	if err := st.PutWorkspace(ctx, agg.Workspace); err != nil {
		t.Fatalf("PutWorkspace: %v", err)
	}
	for _, m := range agg.Memberships {
		if err := st.PutMembership(ctx, m); err != nil {
			t.Fatalf("PutMembership: %v", err)
		}
	}
	project := &projectdomain.Project{ID: "p-1", WorkspaceID: agg.Workspace.ID, Name: "Launch", CreatedAt: base}
	if err := st.PutProject(ctx, project); err != nil {
		t.Fatalf("PutProject: %v", err)
	}
	for _, task := range []*domain.Task{
		{ID: "t-1", ProjectID: project.ID, Title: "Write docs", Status: domain.StatusTodo, Priority: domain.PriorityMedium, AssigneeID: bob, CreatedAt: base, UpdatedAt: base},
		{ID: "t-2", ProjectID: project.ID, Title: "Ship", Status: domain.StatusTodo, Priority: domain.PriorityHigh, CreatedAt: base, UpdatedAt: base},
	} {
		if err := st.PutTask(ctx, task); err != nil {
			t.Fatalf("PutTask: %v", err)
		}
	}

	m := metrics.New(prometheus.NewRegistry())
	auditLogger := &mockAuditLogger{}
	emitter := &mockEmitter{}
	dispatcher := events.NewDispatcher(emitter, nil, m)
	authz := rbac.NewAuthorizer(rbac.NewResolver(nil, nil), engine.NewStaticEvaluator(), m)
	svc := NewService(st, authz, auditLogger, dispatcher, m, nil)
	f := &fixture{
		svc: svc, store: st, audit: auditLogger, emitter: emitter, dispatcher: dispatcher, metrics: m,
		workspace: agg.Workspace.ID, project: project.ID, task: "t-1", unassigned: "t-2",
		clock: base.Add(time.Hour),
	}
	svc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) drain(t *testing.T) {
	t.Helper()
	if err := f.dispatcher.Wait(context.Background()); err != nil {
		t.Fatalf("dispatcher Wait: %v", err)
	}
}

func TestUpdateStatus_AssigneeMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.UpdateStatus(ctx, f.task, bob, "IN_PROGRESS")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if got.Status != domain.StatusInProgress {
		t.Errorf("status = %q, want %q", got.Status, domain.StatusInProgress)
	}
	if !got.UpdatedAt.Equal(f.clock) {
		t.Errorf("updated_at = %v, want %v", got.UpdatedAt, f.clock)
	}
	stored, _ := f.store.GetTask(ctx, f.task)
	if stored.Status != domain.StatusInProgress {
		t.Errorf("stored status = %q, want %q", stored.Status, domain.StatusInProgress)
	}

	f.drain(t)
	if types := f.emitter.types(); len(types) != 1 || types[0] != events.TypeTaskStatusChanged {
		t.Errorf("events = %v, want [%s]", types, events.TypeTaskStatusChanged)
	}
	if f.audit.count() != 1 {
		t.Errorf("audit entries = %d, want 1", f.audit.count())
	}
	if got := testutil.ToFloat64(f.metrics.TaskTransitions.WithLabelValues("TODO", "IN_PROGRESS")); got != 1 {
		t.Errorf("transition count = %v, want 1", got)
	}
}

func TestUpdateStatus_NonMemberForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.UpdateStatus(ctx, f.task, bob, "IN_PROGRESS"); err != nil {
		t.Fatalf("UpdateStatus(bob): %v", err)
	}
	_, err := f.svc.UpdateStatus(ctx, f.task, carol, "DONE")
	if !errs.IsKind(err, errs.KindForbidden) {
		t.Fatalf("UpdateStatus(carol): err = %v, want Forbidden", err)
	}
	stored, _ := f.store.GetTask(ctx, f.task)
	if stored.Status != domain.StatusInProgress {
		t.Errorf("status = %q, want %q", stored.Status, domain.StatusInProgress)
	}
}

func TestUpdateStatus_RoleMatrix(t *testing.T) {
	tests := []struct {
		name   string
		actor  string
		taskID func(f *fixture) string
		want   errs.Kind
	}{
		{"member assignee", bob, func(f *fixture) string { return f.task }, ""},
		{"member not assignee", erin, func(f *fixture) string { return f.task }, errs.KindForbidden},
		{"member on unassigned", bob, func(f *fixture) string { return f.unassigned }, errs.KindForbidden},
		{"admin any task", dave, func(f *fixture) string { return f.task }, ""},
		{"owner any task", alice, func(f *fixture) string { return f.unassigned }, ""},
		{"non-member", carol, func(f *fixture) string { return f.task }, errs.KindForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.UpdateStatus(context.Background(), tt.taskID(f), tt.actor, "DONE")
			if got := errs.KindOf(err); got != tt.want {
				t.Errorf("kind = %q, want %q (err = %v)", got, tt.want, err)
			}
		})
	}
}

func TestUpdateStatus_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.UpdateStatus(ctx, f.task, bob, "DONE")
	if err != nil {
		t.Fatalf("first UpdateStatus: %v", err)
	}
	firstUpdated := first.UpdatedAt

	f.clock = f.clock.Add(time.Hour)
	second, err := f.svc.UpdateStatus(ctx, f.task, bob, "DONE")
	if err != nil {
		t.Fatalf("second UpdateStatus: %v", err)
	}
	if second.Status != domain.StatusDone {
		t.Errorf("status = %q, want %q", second.Status, domain.StatusDone)
	}
	if !second.UpdatedAt.Equal(firstUpdated) {
		t.Errorf("no-op bumped updated_at to %v, want %v", second.UpdatedAt, firstUpdated)
	}
	f.drain(t)
	if n := len(f.emitter.types()); n != 1 {
		t.Errorf("events = %d, want 1", n)
	}
}

func TestUpdateStatus_DoneIsReversible(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, s := range []string{"DONE", "TODO", "IN_PROGRESS", "DONE", "IN_PROGRESS"} {
		got, err := f.svc.UpdateStatus(ctx, f.task, bob, s)
		if err != nil {
			t.Fatalf("UpdateStatus(%s): %v", s, err)
		}
		if string(got.Status) != s {
			t.Errorf("status = %q, want %q", got.Status, s)
		}
	}
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdateStatus(context.Background(), f.task, alice, "BLOCKED")
	if !errs.IsKind(err, errs.KindInvalidArgument) {
		t.Fatalf("err = %v, want InvalidArgument", err)
	}
}

func TestUpdateStatus_AuthorizationBeforeValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdateStatus(context.Background(), f.task, carol, "BLOCKED")
	if !errs.IsKind(err, errs.KindForbidden) {
		t.Fatalf("err = %v, want Forbidden", err)
	}
}

func TestUpdateStatus_TaskNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdateStatus(context.Background(), "missing", alice, "DONE")
	if !errs.IsKind(err, errs.KindNotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestAssignTask(t *testing.T) {
	tests := []struct {
		name     string
		actor    string
		assignee string
		want     errs.Kind
	}{
		{"owner assigns member", alice, erin, ""},
		{"admin assigns admin", dave, dave, ""},
		{"owner unassigns", alice, "", ""},
		{"member cannot assign", bob, erin, errs.KindForbidden},
		{"member cannot self-assign", erin, erin, errs.KindForbidden},
		{"non-member cannot assign", carol, bob, errs.KindForbidden},
		{"owner to non-member", alice, carol, errs.KindInvalidArgument},
		{"admin to unknown user", dave, "nobody", errs.KindInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			got, err := f.svc.AssignTask(context.Background(), f.task, tt.actor, tt.assignee)
			if kind := errs.KindOf(err); kind != tt.want {
				t.Fatalf("kind = %q, want %q (err = %v)", kind, tt.want, err)
			}
			if err != nil {
				return
			}
			if got.AssigneeID != tt.assignee {
				t.Errorf("assignee = %q, want %q", got.AssigneeID, tt.assignee)
			}
		})
	}
}

func TestAssignTask_NonMemberMessage(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.AssignTask(context.Background(), f.task, alice, carol)
	var e *errs.Error
	if !errors.As(err, &e) {
		t.Fatalf("err = %v, want *errs.Error", err)
	}
	if e.Message != "cannot assign to non-member" {
		t.Errorf("message = %q, want %q", e.Message, "cannot assign to non-member")
	}
}

func TestAssignTask_UnassignUnassignedIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.AssignTask(ctx, f.unassigned, alice, "")
	if err != nil {
		t.Fatalf("AssignTask: %v", err)
	}
	if got.AssigneeID != "" {
		t.Errorf("assignee = %q, want empty", got.AssigneeID)
	}
	if !got.UpdatedAt.Equal(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("no-op bumped updated_at to %v", got.UpdatedAt)
	}
	f.drain(t)
	if n := len(f.emitter.types()); n != 0 {
		t.Errorf("events = %d, want 0", n)
	}
}

func TestAssignTask_NewAssigneeCanUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.UpdateStatus(ctx, f.unassigned, erin, "IN_PROGRESS"); !errs.IsKind(err, errs.KindForbidden) {
		t.Fatalf("before assignment: err = %v, want Forbidden", err)
	}
	if _, err := f.svc.AssignTask(ctx, f.unassigned, dave, erin); err != nil {
		t.Fatalf("AssignTask: %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, f.unassigned, erin, "IN_PROGRESS"); err != nil {
		t.Fatalf("after assignment: %v", err)
	}
}

func TestCreateTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.CreateTask(ctx, dave, CreateTaskInput{ProjectID: f.project, Title: "  Review PR  ", AssigneeID: bob})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if got.Title != "Review PR" {
		t.Errorf("title = %q, want %q", got.Title, "Review PR")
	}
	if got.Status != domain.StatusTodo {
		t.Errorf("status = %q, want %q", got.Status, domain.StatusTodo)
	}
	if got.Priority != domain.PriorityMedium {
		t.Errorf("priority = %q, want default %q", got.Priority, domain.PriorityMedium)
	}
	if !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Errorf("created_at %v != updated_at %v", got.CreatedAt, got.UpdatedAt)
	}
	list, err := f.svc.ListTasks(ctx, f.project, bob)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("tasks = %d, want 3", len(list))
	}
	f.drain(t)
	if types := f.emitter.types(); len(types) != 1 || types[0] != events.TypeTaskCreated {
		t.Errorf("events = %v, want [%s]", types, events.TypeTaskCreated)
	}
}

func TestCreateTask_EmptyTitleRegardlessOfRole(t *testing.T) {
	for _, actor := range []string{alice, dave, bob, carol, "nobody"} {
		t.Run(actor, func(t *testing.T) {
			f := newFixture(t)
			for _, title := range []string{"", "   "} {
				_, err := f.svc.CreateTask(context.Background(), actor, CreateTaskInput{ProjectID: f.project, Title: title})
				if !errs.IsKind(err, errs.KindInvalidArgument) {
					t.Errorf("title %q: err = %v, want InvalidArgument", title, err)
				}
			}
		})
	}
}

func TestCreateTask_Failures(t *testing.T) {
	tests := []struct {
		name  string
		actor string
		in    func(f *fixture) CreateTaskInput
		want  errs.Kind
	}{
		{"member forbidden", bob, func(f *fixture) CreateTaskInput {
			return CreateTaskInput{ProjectID: f.project, Title: "x"}
		}, errs.KindForbidden},
		{"non-member forbidden", carol, func(f *fixture) CreateTaskInput {
			return CreateTaskInput{ProjectID: f.project, Title: "x"}
		}, errs.KindForbidden},
		{"missing project", alice, func(f *fixture) CreateTaskInput {
			return CreateTaskInput{ProjectID: "nope", Title: "x"}
		}, errs.KindNotFound},
		{"bad priority", alice, func(f *fixture) CreateTaskInput {
			return CreateTaskInput{ProjectID: f.project, Title: "x", Priority: "URGENT"}
		}, errs.KindInvalidArgument},
		{"non-member assignee", alice, func(f *fixture) CreateTaskInput {
			return CreateTaskInput{ProjectID: f.project, Title: "x", AssigneeID: carol}
		}, errs.KindInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.CreateTask(context.Background(), tt.actor, tt.in(f))
			if kind := errs.KindOf(err); kind != tt.want {
				t.Errorf("kind = %q, want %q (err = %v)", kind, tt.want, err)
			}
			list, _ := f.store.ListTasks(context.Background(), f.project)
			if len(list) != 2 {
				t.Errorf("tasks = %d, want 2 (nothing created)", len(list))
			}
		})
	}
}

func TestGetTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.GetTask(ctx, f.task, erin)
	if err != nil {
		t.Fatalf("GetTask(member): %v", err)
	}
	if got.ID != f.task {
		t.Errorf("id = %q, want %q", got.ID, f.task)
	}
	if _, err := f.svc.GetTask(ctx, f.task, carol); !errs.IsKind(err, errs.KindForbidden) {
		t.Errorf("GetTask(non-member): err = %v, want Forbidden", err)
	}
	if _, err := f.svc.GetTask(ctx, "missing", alice); !errs.IsKind(err, errs.KindNotFound) {
		t.Errorf("GetTask(missing): err = %v, want NotFound", err)
	}
}

func TestListTasks_NonMemberForbidden(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.ListTasks(context.Background(), f.project, carol); !errs.IsKind(err, errs.KindForbidden) {
		t.Fatalf("err = %v, want Forbidden", err)
	}
}

func TestStoreFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	f.svc.store = &failingStore{TxStore: f.store, err: errs.Internal(errors.New("db down"), "failed to load task")}

	_, err := f.svc.UpdateStatus(context.Background(), f.task, alice, "DONE")
	if !errs.IsKind(err, errs.KindInternal) {
		t.Fatalf("err = %v, want Internal", err)
	}
}

func TestUpdateStatus_ConcurrentWritersSerialize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	statuses := []string{"TODO", "IN_PROGRESS", "DONE"}
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(s string) {
			defer wg.Done()
			if _, err := f.svc.UpdateStatus(ctx, f.task, bob, s); err != nil {
				t.Errorf("UpdateStatus(%s): %v", s, err)
			}
		}(statuses[i%3])
	}
	wg.Wait()

	stored, _ := f.store.GetTask(ctx, f.task)
	if !stored.Status.Valid() {
		t.Errorf("status = %q, want a valid status", stored.Status)
	}
}
