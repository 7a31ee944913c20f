// Package rbac resolves a user's role in a workspace.
package rbac

import (
	"context"

	"go.uber.org/zap"

	"taskhub/internal/membership/domain"
	"taskhub/internal/platform/errs"
	workspacedomain "taskhub/internal/workspace/domain"
)

// Source is the slice of the store the resolver reads from. Inside a transaction pass the
// transaction's store so the lookup sees the same snapshot as the write that follows.
type Source interface {
	GetWorkspace(ctx context.Context, id string) (*workspacedomain.Workspace, error)
	GetMembership(ctx context.Context, workspaceID, userID string) (*domain.Membership, error)
}

// RoleCache caches positive role lookups. Memberships are never removed or downgraded, so a
// cached role cannot go stale; "not a member" is never cached since an invite may add the user
// at any time.
type RoleCache interface {
	Get(ctx context.Context, workspaceID, userID string) (domain.Role, bool, error)
	Set(ctx context.Context, workspaceID, userID string, role domain.Role) error
}

// Resolver implements the membership lookup shared by every workspace, project and task operation.
type Resolver struct {
	cache RoleCache
	log   *zap.Logger
}

// NewResolver returns a Resolver. cache may be nil.
func NewResolver(cache RoleCache, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{cache: cache, log: log}
}

// ResolveRole returns userID's role in workspaceID, or domain.RoleNone when the user holds no
// membership. It fails with errs.NotFound when the workspace does not exist.
func (r *Resolver) ResolveRole(ctx context.Context, src Source, workspaceID, userID string) (domain.Role, error) {
	ws, err := src.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return domain.RoleNone, errs.Internal(err, "failed to load workspace")
	}
	if ws == nil {
		return domain.RoleNone, errs.NotFound("workspace not found")
	}
	if userID == "" {
		return domain.RoleNone, nil
	}

	if r.cache != nil {
		role, ok, err := r.cache.Get(ctx, workspaceID, userID)
		if err != nil {
			r.log.Warn("rbac: role cache read failed", zap.String("workspace_id", workspaceID), zap.Error(err))
		} else if ok && role.IsMember() {
			return role, nil
		}
	}

	m, err := src.GetMembership(ctx, workspaceID, userID)
	if err != nil {
		return domain.RoleNone, errs.Internal(err, "failed to resolve membership")
	}
	if m == nil {
		return domain.RoleNone, nil
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, workspaceID, userID, m.Role); err != nil {
			r.log.Warn("rbac: role cache write failed", zap.String("workspace_id", workspaceID), zap.Error(err))
		}
	}
	return m.Role, nil
}
