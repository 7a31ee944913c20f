package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	taskhubv1 "taskhub/api/taskhub/v1"
	auditdomain "taskhub/internal/audit/domain"
	"taskhub/internal/platform/errs"
	"taskhub/internal/server/interceptors"
	"taskhub/internal/workspace/domain"
	"taskhub/internal/workspace/service"
)

// Server implements WorkspaceService: workspaces, their members and audit trail.
type Server struct {
	taskhubv1.UnimplementedWorkspaceServiceServer
	svc *service.Service
}

// NewServer returns a new Workspace gRPC server. If svc is nil, every RPC returns Unimplemented.
func NewServer(svc *service.Service) *Server {
	return &Server{svc: svc}
}

// CreateWorkspace creates a workspace owned by the caller.
func (s *Server) CreateWorkspace(ctx context.Context, req *taskhubv1.CreateWorkspaceRequest) (*taskhubv1.CreateWorkspaceResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method CreateWorkspace not implemented")
	}
	userID, err := interceptors.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}
	ws, err := s.svc.CreateWorkspace(ctx, userID, req.Name)
	if err != nil {
		return nil, errs.ToStatus(err)
	}
	return &taskhubv1.CreateWorkspaceResponse{Workspace: WorkspaceToAPI(ws)}, nil
}

func (s *Server) GetWorkspace(ctx context.Context, req *taskhubv1.GetWorkspaceRequest) (*taskhubv1.GetWorkspaceResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method GetWorkspace not implemented")
	}
	userID, err := interceptors.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}
	ws, err := s.svc.GetWorkspace(ctx, req.WorkspaceID, userID)
	if err != nil {
		return nil, errs.ToStatus(err)
	}
	return &taskhubv1.GetWorkspaceResponse{Workspace: WorkspaceToAPI(ws)}, nil
}

// ListWorkspaces returns the workspaces the caller belongs to.
func (s *Server) ListWorkspaces(ctx context.Context, req *taskhubv1.ListWorkspacesRequest) (*taskhubv1.ListWorkspacesResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method ListWorkspaces not implemented")
	}
	userID, err := interceptors.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.svc.ListWorkspaces(ctx, userID)
	if err != nil {
		return nil, errs.ToStatus(err)
	}
	out := make([]*taskhubv1.Workspace, 0, len(list))
	for _, ws := range list {
		out = append(out, WorkspaceToAPI(ws))
	}
	return &taskhubv1.ListWorkspacesResponse{Workspaces: out}, nil
}

func (s *Server) ListMembers(ctx context.Context, req *taskhubv1.ListMembersRequest) (*taskhubv1.ListMembersResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method ListMembers not implemented")
	}
	userID, err := interceptors.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.svc.ListMembers(ctx, req.WorkspaceID, userID)
	if err != nil {
		return nil, errs.ToStatus(err)
	}
	out := make([]*taskhubv1.Member, 0, len(list))
	for _, m := range list {
		out = append(out, MemberToAPI(m))
	}
	return &taskhubv1.ListMembersResponse{Members: out}, nil
}

// InviteMember adds a registered user to the workspace as MEMBER or ADMIN.
func (s *Server) InviteMember(ctx context.Context, req *taskhubv1.InviteMemberRequest) (*taskhubv1.InviteMemberResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method InviteMember not implemented")
	}
	userID, err := interceptors.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.svc.InviteMember(ctx, req.WorkspaceID, userID, req.Email, req.Role)
	if err != nil {
		return nil, errs.ToStatus(err)
	}
	return &taskhubv1.InviteMemberResponse{Member: MemberToAPI(m)}, nil
}

// ListAuditLogs returns a page of the workspace's audit trail, newest first.
func (s *Server) ListAuditLogs(ctx context.Context, req *taskhubv1.ListAuditLogsRequest) (*taskhubv1.ListAuditLogsResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method ListAuditLogs not implemented")
	}
	userID, err := interceptors.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.svc.ListAuditLogs(ctx, req.WorkspaceID, userID, req.Limit, req.Offset)
	if err != nil {
		return nil, errs.ToStatus(err)
	}
	out := make([]*taskhubv1.AuditLog, 0, len(list))
	for _, a := range list {
		out = append(out, auditLogToAPI(a))
	}
	return &taskhubv1.ListAuditLogsResponse{AuditLogs: out}, nil
}

func WorkspaceToAPI(ws *domain.Workspace) *taskhubv1.Workspace {
	if ws == nil {
		return nil
	}
	return &taskhubv1.Workspace{ID: ws.ID, Name: ws.Name, OwnerID: ws.OwnerID, CreatedAt: ws.CreatedAt}
}

func MemberToAPI(m *service.Member) *taskhubv1.Member {
	if m == nil || m.Membership == nil {
		return nil
	}
	out := &taskhubv1.Member{
		MembershipID: m.Membership.ID,
		WorkspaceID:  m.Membership.WorkspaceID,
		UserID:       m.Membership.UserID,
		Role:         string(m.Membership.Role),
		JoinedAt:     m.Membership.CreatedAt,
	}
	if m.User != nil {
		out.Email = m.User.Email
		out.Name = m.User.Name
	}
	return out
}

func auditLogToAPI(a *auditdomain.AuditLog) *taskhubv1.AuditLog {
	return &taskhubv1.AuditLog{
		ID:         a.ID,
		UserID:     a.UserID,
		Action:     a.Action,
		Resource:   a.Resource,
		ResourceID: a.ResourceID,
		IP:         a.IP,
		Metadata:   a.Metadata,
		CreatedAt:  a.CreatedAt,
	}
}
