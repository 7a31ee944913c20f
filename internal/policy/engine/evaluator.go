// Package engine decides whether a workspace role may perform an action.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"taskhub/internal/membership/domain"
)

// Action names an operation subject to authorization.
type Action string

const (
	ActionView             Action = "view"
	ActionCreateProject    Action = "create_project"
	ActionInviteMember     Action = "invite_member"
	ActionCreateTask       Action = "create_task"
	ActionAssignTask       Action = "assign_task"
	ActionUpdateTaskStatus Action = "update_task_status"
	ActionViewAuditLog     Action = "view_audit_log"
)

// Actions lists every known action.
var Actions = []Action{
	ActionView,
	ActionCreateProject,
	ActionInviteMember,
	ActionCreateTask,
	ActionAssignTask,
	ActionUpdateTaskStatus,
	ActionViewAuditLog,
}

// Request describes the action being authorized. IsAssignee is only consulted for
// ActionUpdateTaskStatus, where being the task's assignee grants the action to any member.
type Request struct {
	Action     Action
	IsAssignee bool
}

// Decision is the outcome of an authorization check. Reason is set when Allowed is false.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// Evaluator authorizes role for req. Implementations fail closed: unknown roles, unknown actions
// and internal failures all yield a denial.
type Evaluator interface {
	Authorize(ctx context.Context, role domain.Role, req Request) Decision
}

// denyReason explains why role may not perform req. Both evaluators use it so their denials read
// the same.
func denyReason(role domain.Role, req Request) string {
	if role == domain.RoleNone {
		return "not a member of this workspace"
	}
	if !role.IsMember() {
		return fmt.Sprintf("unknown role %q", role)
	}
	if _, ok := minRole[req.Action]; !ok {
		return fmt.Sprintf("unknown action %q", req.Action)
	}
	if req.Action == ActionUpdateTaskStatus {
		return "only the assignee or a workspace admin may update the status of this task"
	}
	return fmt.Sprintf("%s requires ADMIN or OWNER role", req.Action)
}

// Engine names accepted by New.
const (
	EngineStatic = "static"
	EngineRego   = "rego"
)

// New returns the evaluator named by engine. An empty name selects the static table.
func New(ctx context.Context, engine string, log *zap.Logger) (Evaluator, error) {
	switch engine {
	case "", EngineStatic:
		return NewStaticEvaluator(), nil
	case EngineRego:
		return NewOPAEvaluator(ctx, log)
	default:
		return nil, fmt.Errorf("unknown policy engine %q", engine)
	}
}
