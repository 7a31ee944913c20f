package rbac

import (
	"context"
	"errors"
	"testing"

	"taskhub/internal/membership/domain"
	"taskhub/internal/platform/errs"
	workspacedomain "taskhub/internal/workspace/domain"
)

// mockSource implements Source for tests. Memberships are keyed "workspace:user".
type mockSource struct {
	workspaces      map[string]*workspacedomain.Workspace
	memberships     map[string]*domain.Membership
	workspaceErr    error
	membershipErr   error
	membershipCalls int
}

func (m *mockSource) GetWorkspace(ctx context.Context, id string) (*workspacedomain.Workspace, error) {
	if m.workspaceErr != nil {
		return nil, m.workspaceErr
	}
	return m.workspaces[id], nil
}

func (m *mockSource) GetMembership(ctx context.Context, workspaceID, userID string) (*domain.Membership, error) {
	m.membershipCalls++
	if m.membershipErr != nil {
		return nil, m.membershipErr
	}
	return m.memberships[workspaceID+":"+userID], nil
}

// mockCache implements RoleCache for tests.
type mockCache struct {
	roles  map[string]domain.Role
	getErr error
	sets   int
}

func (c *mockCache) Get(ctx context.Context, workspaceID, userID string) (domain.Role, bool, error) {
	if c.getErr != nil {
		return domain.RoleNone, false, c.getErr
	}
	r, ok := c.roles[workspaceID+":"+userID]
	return r, ok, nil
}

func (c *mockCache) Set(ctx context.Context, workspaceID, userID string, role domain.Role) error {
	c.sets++
	if c.roles == nil {
		c.roles = map[string]domain.Role{}
	}
	c.roles[workspaceID+":"+userID] = role
	return nil
}

func newSource() *mockSource {
	return &mockSource{
		workspaces: map[string]*workspacedomain.Workspace{
			"ws-1": {ID: "ws-1", Name: "Acme", OwnerID: "alice"},
		},
		memberships: map[string]*domain.Membership{
			"ws-1:alice": {ID: "m1", WorkspaceID: "ws-1", UserID: "alice", Role: domain.RoleOwner},
			"ws-1:bob":   {ID: "m2", WorkspaceID: "ws-1", UserID: "bob", Role: domain.RoleMember},
		},
	}
}

func TestResolveRole(t *testing.T) {
	tests := []struct {
		name        string
		workspaceID string
		userID      string
		want        domain.Role
	}{
		{"owner", "ws-1", "alice", domain.RoleOwner},
		{"member", "ws-1", "bob", domain.RoleMember},
		{"not a member", "ws-1", "carol", domain.RoleNone},
		{"empty user", "ws-1", "", domain.RoleNone},
	}
	r := NewResolver(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := r.ResolveRole(context.Background(), newSource(), tt.workspaceID, tt.userID)
			if err != nil {
				t.Fatalf("ResolveRole: %v", err)
			}
			if role != tt.want {
				t.Errorf("role = %q, want %q", role, tt.want)
			}
		})
	}
}

func TestResolveRole_WorkspaceNotFound(t *testing.T) {
	r := NewResolver(nil, nil)
	_, err := r.ResolveRole(context.Background(), newSource(), "missing", "alice")
	if !errs.IsKind(err, errs.KindNotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestResolveRole_StoreErrors(t *testing.T) {
	r := NewResolver(nil, nil)

	src := newSource()
	src.workspaceErr = errors.New("db down")
	if _, err := r.ResolveRole(context.Background(), src, "ws-1", "alice"); !errs.IsKind(err, errs.KindInternal) {
		t.Errorf("workspace error: err = %v, want Internal", err)
	}

	src = newSource()
	src.membershipErr = errors.New("db down")
	if _, err := r.ResolveRole(context.Background(), src, "ws-1", "alice"); !errs.IsKind(err, errs.KindInternal) {
		t.Errorf("membership error: err = %v, want Internal", err)
	}
}

func TestResolveRole_CachesPositiveOnly(t *testing.T) {
	cache := &mockCache{}
	r := NewResolver(cache, nil)
	src := newSource()
	ctx := context.Background()

	if _, err := r.ResolveRole(ctx, src, "ws-1", "bob"); err != nil {
		t.Fatalf("ResolveRole: %v", err)
	}
	if _, err := r.ResolveRole(ctx, src, "ws-1", "bob"); err != nil {
		t.Fatalf("ResolveRole: %v", err)
	}
	if src.membershipCalls != 1 {
		t.Errorf("membership lookups = %d, want 1", src.membershipCalls)
	}

	if _, err := r.ResolveRole(ctx, src, "ws-1", "carol"); err != nil {
		t.Fatalf("ResolveRole: %v", err)
	}
	if cache.sets != 1 {
		t.Errorf("cache sets = %d, want 1 (non-members are not cached)", cache.sets)
	}
}

func TestResolveRole_CacheErrorFallsBackToStore(t *testing.T) {
	cache := &mockCache{getErr: errors.New("redis down")}
	r := NewResolver(cache, nil)

	role, err := r.ResolveRole(context.Background(), newSource(), "ws-1", "alice")
	if err != nil {
		t.Fatalf("ResolveRole: %v", err)
	}
	if role != domain.RoleOwner {
		t.Errorf("role = %q, want %q", role, domain.RoleOwner)
	}
}

func TestResolveRole_CacheDoesNotMaskMissingWorkspace(t *testing.T) {
	cache := &mockCache{roles: map[string]domain.Role{"gone:alice": domain.RoleOwner}}
	r := NewResolver(cache, nil)

	_, err := r.ResolveRole(context.Background(), newSource(), "gone", "alice")
	if !errs.IsKind(err, errs.KindNotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}
