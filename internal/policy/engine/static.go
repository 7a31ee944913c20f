package engine

import (
	"context"

	"taskhub/internal/membership/domain"
)

// minRole is the least role granted each action. Roles are ordered OWNER > ADMIN > MEMBER.
var minRole = map[Action]domain.Role{
	ActionView:             domain.RoleMember,
	ActionCreateProject:    domain.RoleAdmin,
	ActionInviteMember:     domain.RoleAdmin,
	ActionCreateTask:       domain.RoleAdmin,
	ActionAssignTask:       domain.RoleAdmin,
	ActionUpdateTaskStatus: domain.RoleAdmin,
	ActionViewAuditLog:     domain.RoleAdmin,
}

// StaticEvaluator is the built-in permission table.
type StaticEvaluator struct{}

// NewStaticEvaluator returns the table-driven evaluator.
func NewStaticEvaluator() *StaticEvaluator {
	return &StaticEvaluator{}
}

func (StaticEvaluator) Authorize(_ context.Context, role domain.Role, req Request) Decision {
	if !role.IsMember() {
		return deny(denyReason(role, req))
	}
	need, ok := minRole[req.Action]
	if !ok {
		return deny(denyReason(role, req))
	}
	if req.Action == ActionUpdateTaskStatus && req.IsAssignee {
		need = domain.RoleMember
	}
	if !role.AtLeast(need) {
		return deny(denyReason(role, req))
	}
	return allow()
}
