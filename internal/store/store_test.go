package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	auditdomain "taskhub/internal/audit/domain"
	identitydomain "taskhub/internal/identity/domain"
	membershipdomain "taskhub/internal/membership/domain"
	projectdomain "taskhub/internal/project/domain"
	"taskhub/internal/store"
	taskdomain "taskhub/internal/task/domain"
	userdomain "taskhub/internal/user/domain"
	workspacedomain "taskhub/internal/workspace/domain"
)

// StoreSuite exercises the Database contract. Backends embed it and provide a fresh store per test.
type StoreSuite struct {
	suite.Suite
	newStore func() store.Database
	db       store.Database
	ctx      context.Context
	now      time.Time
}

func (s *StoreSuite) SetupTest() {
	s.db = s.newStore()
	s.ctx = context.Background()
	// Postgres keeps microseconds.
	s.now = time.Now().UTC().Truncate(time.Millisecond)
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, &StoreSuite{newStore: func() store.Database { return store.NewMemoryStore() }})
}

func (s *StoreSuite) seedUser(name string) *userdomain.User {
	u := &userdomain.User{ID: uuid.NewString(), Email: name + "-" + uuid.NewString()[:8] + "@example.com", Name: name, CreatedAt: s.now}
	s.Require().NoError(s.db.CreateUser(s.ctx, u))
	return u
}

func (s *StoreSuite) seedWorkspace(owner *userdomain.User) *workspacedomain.Workspace {
	w := &workspacedomain.Workspace{ID: uuid.NewString(), Name: "Acme", OwnerID: owner.ID, CreatedAt: s.now}
	err := s.db.RunInTx(s.ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.PutWorkspace(ctx, w); err != nil {
			return err
		}
		return tx.PutMembership(ctx, &membershipdomain.Membership{
			ID: uuid.NewString(), WorkspaceID: w.ID, UserID: owner.ID, Role: membershipdomain.RoleOwner, CreatedAt: s.now,
		})
	})
	s.Require().NoError(err)
	return w
}

func (s *StoreSuite) seedTask(w *workspacedomain.Workspace) *taskdomain.Task {
	p := &projectdomain.Project{ID: uuid.NewString(), WorkspaceID: w.ID, Name: "Launch", CreatedAt: s.now}
	s.Require().NoError(s.db.PutProject(s.ctx, p))
	t := &taskdomain.Task{
		ID: uuid.NewString(), ProjectID: p.ID, Title: "Write docs",
		Status: taskdomain.StatusTodo, Priority: taskdomain.PriorityMedium,
		CreatedAt: s.now, UpdatedAt: s.now,
	}
	s.Require().NoError(s.db.PutTask(s.ctx, t))
	return t
}

func (s *StoreSuite) TestGetMissingReturnsNil() {
	u, err := s.db.GetUser(s.ctx, uuid.NewString())
	s.Require().NoError(err)
	s.Nil(u)

	w, err := s.db.GetWorkspace(s.ctx, uuid.NewString())
	s.Require().NoError(err)
	s.Nil(w)

	task, err := s.db.GetTask(s.ctx, uuid.NewString())
	s.Require().NoError(err)
	s.Nil(task)

	m, err := s.db.GetMembership(s.ctx, uuid.NewString(), uuid.NewString())
	s.Require().NoError(err)
	s.Nil(m)
}

func (s *StoreSuite) TestUserByEmailAndDuplicate() {
	u := s.seedUser("alice")

	got, err := s.db.GetUserByEmail(s.ctx, u.Email)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(u.ID, got.ID)

	dup := &userdomain.User{ID: uuid.NewString(), Email: u.Email, Name: "other", CreatedAt: s.now}
	err = s.db.CreateUser(s.ctx, dup)
	s.True(errors.Is(err, store.ErrDuplicate), "err = %v", err)
}

func (s *StoreSuite) TestIdentityRoundTrip() {
	u := s.seedUser("bob")
	i := &identitydomain.Identity{
		ID: uuid.NewString(), UserID: u.ID, Provider: identitydomain.IdentityProviderLocal,
		ProviderID: u.Email, PasswordHash: "hash", CreatedAt: s.now,
	}
	s.Require().NoError(s.db.CreateIdentity(s.ctx, i))

	got, err := s.db.GetIdentity(s.ctx, u.ID, identitydomain.IdentityProviderLocal)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal("hash", got.PasswordHash)
}

func (s *StoreSuite) TestMembershipUniquePerWorkspaceAndUser() {
	owner := s.seedUser("alice")
	bob := s.seedUser("bob")
	w := s.seedWorkspace(owner)

	m := &membershipdomain.Membership{ID: uuid.NewString(), WorkspaceID: w.ID, UserID: bob.ID, Role: membershipdomain.RoleMember, CreatedAt: s.now}
	s.Require().NoError(s.db.PutMembership(s.ctx, m))

	again := &membershipdomain.Membership{ID: uuid.NewString(), WorkspaceID: w.ID, UserID: bob.ID, Role: membershipdomain.RoleAdmin, CreatedAt: s.now}
	err := s.db.PutMembership(s.ctx, again)
	s.True(errors.Is(err, store.ErrDuplicate), "err = %v", err)

	got, err := s.db.GetMembership(s.ctx, w.ID, bob.ID)
	s.Require().NoError(err)
	s.Equal(membershipdomain.RoleMember, got.Role)

	list, err := s.db.ListMemberships(s.ctx, w.ID)
	s.Require().NoError(err)
	s.Len(list, 2)
}

func (s *StoreSuite) TestSecondOwnerRejected() {
	owner := s.seedUser("alice")
	bob := s.seedUser("bob")
	w := s.seedWorkspace(owner)

	err := s.db.PutMembership(s.ctx, &membershipdomain.Membership{
		ID: uuid.NewString(), WorkspaceID: w.ID, UserID: bob.ID, Role: membershipdomain.RoleOwner, CreatedAt: s.now,
	})
	s.True(errors.Is(err, store.ErrDuplicate), "err = %v", err)
}

func (s *StoreSuite) TestListWorkspacesByUser() {
	alice := s.seedUser("alice")
	bob := s.seedUser("bob")
	w1 := s.seedWorkspace(alice)
	s.seedWorkspace(bob)

	list, err := s.db.ListWorkspacesByUser(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(w1.ID, list[0].ID)
}

func (s *StoreSuite) TestPutTaskUpdatesMutableFields() {
	owner := s.seedUser("alice")
	w := s.seedWorkspace(owner)
	task := s.seedTask(w)

	later := s.now.Add(time.Minute)
	update := *task
	update.Status = taskdomain.StatusInProgress
	update.AssigneeID = owner.ID
	update.UpdatedAt = later
	update.Title = "ignored"
	s.Require().NoError(s.db.PutTask(s.ctx, &update))

	got, err := s.db.GetTask(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Equal(taskdomain.StatusInProgress, got.Status)
	s.Equal(owner.ID, got.AssigneeID)
	s.True(got.UpdatedAt.Equal(later))
	s.Equal("Write docs", got.Title)

	list, err := s.db.ListTasks(s.ctx, task.ProjectID)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *StoreSuite) TestRunInTxRollsBackOnError() {
	owner := s.seedUser("alice")
	w := s.seedWorkspace(owner)
	task := s.seedTask(w)

	boom := errors.New("boom")
	err := s.db.RunInTx(s.ctx, func(ctx context.Context, tx store.Store) error {
		locked, err := tx.GetTaskForUpdate(ctx, task.ID)
		if err != nil {
			return err
		}
		locked.Status = taskdomain.StatusDone
		if err := tx.PutTask(ctx, locked); err != nil {
			return err
		}
		return boom
	})
	s.Require().ErrorIs(err, boom)

	got, err := s.db.GetTask(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Equal(taskdomain.StatusTodo, got.Status)
}

func (s *StoreSuite) TestRunInTxCommits() {
	owner := s.seedUser("alice")
	w := s.seedWorkspace(owner)
	task := s.seedTask(w)

	err := s.db.RunInTx(s.ctx, func(ctx context.Context, tx store.Store) error {
		locked, err := tx.GetTaskForUpdate(ctx, task.ID)
		if err != nil {
			return err
		}
		locked.Status = taskdomain.StatusDone
		return tx.PutTask(ctx, locked)
	})
	s.Require().NoError(err)

	got, err := s.db.GetTask(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Equal(taskdomain.StatusDone, got.Status)
}

func (s *StoreSuite) TestRunInTxCanceledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	called := false
	err := s.db.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		called = true
		return nil
	})
	s.Error(err)
	s.False(called)
}

func (s *StoreSuite) TestAuditLogsNewestFirst() {
	wsID := uuid.NewString()
	for i, action := range []string{"created", "assigned", "status_changed"} {
		s.Require().NoError(s.db.CreateAuditLog(s.ctx, &auditdomain.AuditLog{
			ID: uuid.NewString(), WorkspaceID: wsID, Action: action, Resource: "task", IP: "unknown",
			CreatedAt: s.now.Add(time.Duration(i) * time.Second),
		}))
	}

	list, err := s.db.ListAuditLogs(s.ctx, wsID, 2, 0)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("status_changed", list[0].Action)
	s.Equal("assigned", list[1].Action)

	rest, err := s.db.ListAuditLogs(s.ctx, wsID, 10, 2)
	s.Require().NoError(err)
	s.Require().Len(rest, 1)
	s.Equal("created", rest[0].Action)
}

func TestMemoryStore_ReturnedEntitiesAreCopies(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryStore()
	u := &userdomain.User{ID: "u1", Email: "a@example.com", CreatedAt: time.Now()}
	require.NoError(t, db.CreateUser(ctx, u))

	got, err := db.GetUser(ctx, "u1")
	require.NoError(t, err)
	got.Email = "changed@example.com"

	again, err := db.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", again.Email)
}
