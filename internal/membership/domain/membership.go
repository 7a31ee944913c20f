package domain

import (
	"time"
)

// Membership links a user to a workspace with a role. At most one membership exists per
// (workspace, user) pair.
type Membership struct {
	ID          string
	WorkspaceID string
	UserID      string
	Role        Role
	CreatedAt   time.Time
}

// Role is a workspace role. Roles are ordered OWNER > ADMIN > MEMBER.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
	// RoleNone is the resolver's NotAMember result: the workspace exists but the user holds no
	// membership in it.
	RoleNone Role = ""
)

// Rank returns the privilege rank of r: 3 for OWNER, 2 for ADMIN, 1 for MEMBER and 0 otherwise.
func (r Role) Rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleAdmin:
		return 2
	case RoleMember:
		return 1
	default:
		return 0
	}
}

// IsMember reports whether r is one of the three membership roles.
func (r Role) IsMember() bool { return r.Rank() > 0 }

// AtLeast reports whether r grants at least the privileges of other. RoleNone never does.
func (r Role) AtLeast(other Role) bool {
	return r.IsMember() && r.Rank() >= other.Rank()
}

// ParseRole parses s as a membership role. It returns false for anything other than OWNER, ADMIN or MEMBER.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.IsMember()
}

// Invitable reports whether a membership with role r may be created by an invite. OWNER is never invitable.
func (r Role) Invitable() bool {
	return r == RoleAdmin || r == RoleMember
}
