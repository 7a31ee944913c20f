package engine

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"
	"go.uber.org/zap"

	"taskhub/internal/membership/domain"
)

//go:embed authz.rego
var authzPolicy string

const decisionQuery = "data.taskhub.authz.decision"

// OPAEvaluator evaluates the embedded authz.rego policy. The query is prepared once; every
// evaluation error is treated as a denial.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
	log   *zap.Logger
}

// NewOPAEvaluator compiles the policy. It fails if the policy does not compile.
func NewOPAEvaluator(ctx context.Context, log *zap.Logger) (*OPAEvaluator, error) {
	return newOPAEvaluator(ctx, authzPolicy, log)
}

func newOPAEvaluator(ctx context.Context, policy string, log *zap.Logger) (*OPAEvaluator, error) {
	if log == nil {
		log = zap.NewNop()
	}
	pq, err := rego.New(
		rego.Query(decisionQuery),
		rego.Module("authz.rego", policy),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare authz policy: %w", err)
	}
	return &OPAEvaluator{query: pq, log: log}, nil
}

func (e *OPAEvaluator) Authorize(ctx context.Context, role domain.Role, req Request) Decision {
	if role == domain.RoleNone {
		return deny(denyReason(role, req))
	}
	allowed, err := e.eval(ctx, role, req)
	if err != nil {
		e.log.Error("policy: authz evaluation failed, denying",
			zap.String("role", string(role)),
			zap.String("action", string(req.Action)),
			zap.Error(err))
		return deny("policy evaluation failed")
	}
	if !allowed {
		return deny(denyReason(role, req))
	}
	return allow()
}

func (e *OPAEvaluator) eval(ctx context.Context, role domain.Role, req Request) (bool, error) {
	input := map[string]interface{}{
		"role":        string(role),
		"action":      string(req.Action),
		"is_assignee": req.IsAssignee,
	}
	rs, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, err
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, errors.New("policy query returned no result")
	}
	decision, ok := rs[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return false, fmt.Errorf("unexpected decision type %T", rs[0].Expressions[0].Value)
	}
	allowed, ok := decision["allow"].(bool)
	if !ok {
		return false, errors.New("decision has no boolean allow")
	}
	member, _ := decision["member"].(bool)
	return allowed && member, nil
}

// HealthCheck evaluates the prepared policy against a fixed request whose answer is known.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	allowed, err := e.eval(ctx, domain.RoleOwner, Request{Action: ActionView})
	if err != nil {
		return fmt.Errorf("eval authz policy: %w", err)
	}
	if !allowed {
		return errors.New("authz policy denied owner view")
	}
	return nil
}
