// Package service implements the workspace aggregate operations: workspace creation, membership
// invites and projects.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskhub/internal/audit"
	auditdomain "taskhub/internal/audit/domain"
	"taskhub/internal/events"
	membershipdomain "taskhub/internal/membership/domain"
	"taskhub/internal/platform/errs"
	"taskhub/internal/platform/rbac"
	"taskhub/internal/policy/engine"
	projectdomain "taskhub/internal/project/domain"
	"taskhub/internal/store"
	userdomain "taskhub/internal/user/domain"
	"taskhub/internal/workspace/domain"
)

const maxAuditPageSize = 100

// Member is a membership together with the user holding it.
type Member struct {
	Membership *membershipdomain.Membership
	User       *userdomain.User
}

// Service implements workspace, membership and project operations.
type Service struct {
	store  store.TxStore
	authz  *rbac.Authorizer
	audit  audit.AuditLogger
	events *events.Dispatcher
	log    *zap.Logger
	now    func() time.Time
}

// NewService returns a workspace Service. auditLogger and dispatcher may be nil.
func NewService(st store.TxStore, authz *rbac.Authorizer, auditLogger audit.AuditLogger, dispatcher *events.Dispatcher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:  st,
		authz:  authz,
		audit:  auditLogger,
		events: dispatcher,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateWorkspace creates a workspace owned by actorID together with its OWNER membership.
func (s *Service) CreateWorkspace(ctx context.Context, actorID, name string) (*domain.Workspace, error) {
	agg, err := domain.NewWorkspace(strings.TrimSpace(name), actorID, s.now())
	if err != nil {
		return nil, err
	}
	err = s.store.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		u, err := st.GetUser(ctx, actorID)
		if err != nil {
			return errs.Internal(err, "failed to load user")
		}
		if u == nil {
			return errs.NotFound("user not found")
		}
		if err := st.PutWorkspace(ctx, agg.Workspace); err != nil {
			return errs.Internal(err, "failed to save workspace")
		}
		for _, m := range agg.Memberships {
			if err := st.PutMembership(ctx, m); err != nil {
				return errs.Internal(err, "failed to save membership")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ws := agg.Workspace
	s.record(ctx, ws.ID, actorID, "workspace_created", "workspace", ws.ID, ws.Name)
	s.events.Publish(events.New(events.TypeWorkspaceCreated, ws.ID, actorID, ws.ID, ws.CreatedAt,
		map[string]string{"name": ws.Name}))
	return ws, nil
}

// GetWorkspace returns the workspace if actorID is a member.
func (s *Service) GetWorkspace(ctx context.Context, workspaceID, actorID string) (*domain.Workspace, error) {
	if _, err := s.authz.Authorize(ctx, s.store, workspaceID, actorID, engine.Request{Action: engine.ActionView}); err != nil {
		return nil, err
	}
	ws, err := s.store.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, errs.Internal(err, "failed to load workspace")
	}
	if ws == nil {
		return nil, errs.NotFound("workspace not found")
	}
	return ws, nil
}

// ListWorkspaces returns the workspaces in which actorID holds a membership.
func (s *Service) ListWorkspaces(ctx context.Context, actorID string) ([]*domain.Workspace, error) {
	list, err := s.store.ListWorkspacesByUser(ctx, actorID)
	if err != nil {
		return nil, errs.Internal(err, "failed to list workspaces")
	}
	return list, nil
}

// ListMembers returns the workspace's memberships with their users, oldest first.
func (s *Service) ListMembers(ctx context.Context, workspaceID, actorID string) ([]*Member, error) {
	if _, err := s.authz.Authorize(ctx, s.store, workspaceID, actorID, engine.Request{Action: engine.ActionView}); err != nil {
		return nil, err
	}
	list, err := s.store.ListMemberships(ctx, workspaceID)
	if err != nil {
		return nil, errs.Internal(err, "failed to list members")
	}
	out := make([]*Member, 0, len(list))
	for _, m := range list {
		u, err := s.store.GetUser(ctx, m.UserID)
		if err != nil {
			return nil, errs.Internal(err, "failed to load member")
		}
		out = append(out, &Member{Membership: m, User: u})
	}
	return out, nil
}

// InviteMember adds the registered user with email to the workspace as role (MEMBER or ADMIN).
func (s *Service) InviteMember(ctx context.Context, workspaceID, actorID, email, role string) (*Member, error) {
	var out *Member
	err := s.store.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		if _, err := s.authz.Authorize(ctx, st, workspaceID, actorID, engine.Request{Action: engine.ActionInviteMember}); err != nil {
			return err
		}
		r, ok := membershipdomain.ParseRole(role)
		if !ok || !r.Invitable() {
			return errs.InvalidArgument("role must be MEMBER or ADMIN")
		}
		u, err := st.GetUserByEmail(ctx, normalizeEmail(email))
		if err != nil {
			return errs.Internal(err, "failed to look up user")
		}
		if u == nil {
			return errs.NotFound("user must already be registered")
		}
		agg, err := loadAggregate(ctx, st, workspaceID)
		if err != nil {
			return err
		}
		m, err := agg.AddMember(u.ID, r, s.now())
		if err != nil {
			return err
		}
		if err := agg.CheckInvariants(); err != nil {
			return errs.Internal(err, "workspace invariant violated")
		}
		if err := st.PutMembership(ctx, m); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return errs.Conflict("user is already a member of this workspace")
			}
			return errs.Internal(err, "failed to save membership")
		}
		out = &Member{Membership: m, User: u}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m := out.Membership
	s.record(ctx, workspaceID, actorID, "member_invited", "membership", m.ID, out.User.ID+":"+string(m.Role))
	s.events.Publish(events.New(events.TypeMemberInvited, workspaceID, actorID, m.ID, m.CreatedAt,
		map[string]string{"user_id": m.UserID, "role": string(m.Role)}))
	return out, nil
}

// CreateProject creates a project in the workspace. ADMIN or OWNER only.
func (s *Service) CreateProject(ctx context.Context, workspaceID, actorID, name string) (*projectdomain.Project, error) {
	var out *projectdomain.Project
	err := s.store.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		if _, err := s.authz.Authorize(ctx, st, workspaceID, actorID, engine.Request{Action: engine.ActionCreateProject}); err != nil {
			return err
		}
		p := &projectdomain.Project{
			ID:          uuid.New().String(),
			WorkspaceID: workspaceID,
			Name:        strings.TrimSpace(name),
			CreatedAt:   s.now(),
		}
		if err := p.Validate(); err != nil {
			return errs.InvalidArgument("%s", err.Error())
		}
		if err := st.PutProject(ctx, p); err != nil {
			return errs.Internal(err, "failed to save project")
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, workspaceID, actorID, "project_created", "project", out.ID, out.Name)
	s.events.Publish(events.New(events.TypeProjectCreated, workspaceID, actorID, out.ID, out.CreatedAt,
		map[string]string{"name": out.Name}))
	return out, nil
}

// GetProject returns the project if actorID is a member of its workspace.
func (s *Service) GetProject(ctx context.Context, projectID, actorID string) (*projectdomain.Project, error) {
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, errs.Internal(err, "failed to load project")
	}
	if p == nil {
		return nil, errs.NotFound("project not found")
	}
	if _, err := s.authz.Authorize(ctx, s.store, p.WorkspaceID, actorID, engine.Request{Action: engine.ActionView}); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProjects returns the workspace's projects, oldest first.
func (s *Service) ListProjects(ctx context.Context, workspaceID, actorID string) ([]*projectdomain.Project, error) {
	if _, err := s.authz.Authorize(ctx, s.store, workspaceID, actorID, engine.Request{Action: engine.ActionView}); err != nil {
		return nil, err
	}
	list, err := s.store.ListProjects(ctx, workspaceID)
	if err != nil {
		return nil, errs.Internal(err, "failed to list projects")
	}
	return list, nil
}

func loadAggregate(ctx context.Context, st store.Store, workspaceID string) (*domain.Aggregate, error) {
	ws, err := st.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, errs.Internal(err, "failed to load workspace")
	}
	if ws == nil {
		return nil, errs.NotFound("workspace not found")
	}
	members, err := st.ListMemberships(ctx, workspaceID)
	if err != nil {
		return nil, errs.Internal(err, "failed to list members")
	}
	return &domain.Aggregate{Workspace: ws, Memberships: members}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) record(ctx context.Context, workspaceID, actorID, action, resource, resourceID, metadata string) {
	if s.audit == nil {
		return
	}
	s.audit.LogEvent(ctx, workspaceID, actorID, action, resource, resourceID, metadata)
}

// ListAuditLogs returns the workspace's audit entries, newest first. ADMIN or OWNER only.
func (s *Service) ListAuditLogs(ctx context.Context, workspaceID, actorID string, limit, offset int32) ([]*auditdomain.AuditLog, error) {
	if _, err := s.authz.Authorize(ctx, s.store, workspaceID, actorID, engine.Request{Action: engine.ActionViewAuditLog}); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxAuditPageSize {
		limit = maxAuditPageSize
	}
	if offset < 0 {
		offset = 0
	}
	list, err := s.store.ListAuditLogs(ctx, workspaceID, limit, offset)
	if err != nil {
		return nil, errs.Internal(err, "failed to list audit logs")
	}
	return list, nil
}
