package rbac

import (
	"context"

	"taskhub/internal/membership/domain"
	"taskhub/internal/metrics"
	"taskhub/internal/platform/errs"
	"taskhub/internal/policy/engine"
)

// Authorizer resolves the caller's role and asks the evaluator whether it permits a request.
// Every service authorizes through it so no code path re-derives permissions from a role.
type Authorizer struct {
	resolver  *Resolver
	evaluator engine.Evaluator
	metrics   *metrics.Metrics
}

// NewAuthorizer returns an Authorizer. m may be nil.
func NewAuthorizer(resolver *Resolver, evaluator engine.Evaluator, m *metrics.Metrics) *Authorizer {
	return &Authorizer{resolver: resolver, evaluator: evaluator, metrics: m}
}

// Authorize returns the caller's role when req is allowed in workspaceID. It fails with
// errs.NotFound when the workspace does not exist and errs.Forbidden carrying the evaluator's
// reason when the request is denied, including when the caller is not a member.
func (a *Authorizer) Authorize(ctx context.Context, src Source, workspaceID, userID string, req engine.Request) (domain.Role, error) {
	role, err := a.resolver.ResolveRole(ctx, src, workspaceID, userID)
	if err != nil {
		return domain.RoleNone, err
	}
	d := a.evaluator.Authorize(ctx, role, req)
	a.metrics.ObserveDecision(string(req.Action), d.Allowed)
	if !d.Allowed {
		return role, errs.Forbidden("%s", d.Reason)
	}
	return role, nil
}

// IsMember reports whether userID holds any membership in workspaceID.
func (a *Authorizer) IsMember(ctx context.Context, src Source, workspaceID, userID string) (bool, error) {
	role, err := a.resolver.ResolveRole(ctx, src, workspaceID, userID)
	if err != nil {
		return false, err
	}
	return role.IsMember(), nil
}
