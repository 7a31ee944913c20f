package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	membershipdomain "taskhub/internal/membership/domain"
	"taskhub/internal/platform/errs"
)

// Aggregate is a workspace together with its memberships. Membership changes go through the
// aggregate so the one-owner and one-membership-per-user invariants hold.
type Aggregate struct {
	Workspace   *Workspace
	Memberships []*membershipdomain.Membership
}

// NewWorkspace creates a workspace owned by ownerID together with the owner's OWNER membership.
func NewWorkspace(name, ownerID string, now time.Time) (*Aggregate, error) {
	ws := &Workspace{
		ID:        uuid.New().String(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: now,
	}
	if err := ws.Validate(); err != nil {
		return nil, errs.InvalidArgument("%s", err.Error())
	}
	owner := &membershipdomain.Membership{
		ID:          uuid.New().String(),
		WorkspaceID: ws.ID,
		UserID:      ownerID,
		Role:        membershipdomain.RoleOwner,
		CreatedAt:   now,
	}
	return &Aggregate{Workspace: ws, Memberships: []*membershipdomain.Membership{owner}}, nil
}

// RoleOf returns the role userID holds in the workspace, or RoleNone.
func (a *Aggregate) RoleOf(userID string) membershipdomain.Role {
	for _, m := range a.Memberships {
		if m.UserID == userID {
			return m.Role
		}
	}
	return membershipdomain.RoleNone
}

// AddMember creates a membership for userID with role. OWNER is rejected with InvalidArgument and an
// existing membership with Conflict.
func (a *Aggregate) AddMember(userID string, role membershipdomain.Role, now time.Time) (*membershipdomain.Membership, error) {
	if !role.Invitable() {
		return nil, errs.InvalidArgument("role must be MEMBER or ADMIN")
	}
	if a.RoleOf(userID).IsMember() {
		return nil, errs.Conflict("user is already a member of this workspace")
	}
	m := &membershipdomain.Membership{
		ID:          uuid.New().String(),
		WorkspaceID: a.Workspace.ID,
		UserID:      userID,
		Role:        role,
		CreatedAt:   now,
	}
	a.Memberships = append(a.Memberships, m)
	return m, nil
}

// CheckInvariants verifies that exactly one OWNER membership exists, that it belongs to the
// workspace owner, and that no user holds two memberships.
func (a *Aggregate) CheckInvariants() error {
	owners := 0
	seen := make(map[string]bool, len(a.Memberships))
	for _, m := range a.Memberships {
		if m.WorkspaceID != a.Workspace.ID {
			return fmt.Errorf("membership %s belongs to workspace %s", m.ID, m.WorkspaceID)
		}
		if seen[m.UserID] {
			return fmt.Errorf("user %s has more than one membership", m.UserID)
		}
		seen[m.UserID] = true
		if m.Role == membershipdomain.RoleOwner {
			owners++
			if m.UserID != a.Workspace.OwnerID {
				return fmt.Errorf("owner membership held by %s, workspace owner is %s", m.UserID, a.Workspace.OwnerID)
			}
		}
	}
	if owners != 1 {
		return fmt.Errorf("workspace has %d owner memberships, want 1", owners)
	}
	return nil
}
