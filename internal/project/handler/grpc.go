package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	taskhubv1 "taskhub/api/taskhub/v1"
	"taskhub/internal/platform/errs"
	"taskhub/internal/project/domain"
	"taskhub/internal/server/interceptors"
	workspaceservice "taskhub/internal/workspace/service"
)

// Server implements ProjectService. Projects belong to the workspace aggregate, so it delegates to
// the workspace service.
type Server struct {
	taskhubv1.UnimplementedProjectServiceServer
	svc *workspaceservice.Service
}

// NewServer returns a new Project gRPC server. If svc is nil, every RPC returns Unimplemented.
func NewServer(svc *workspaceservice.Service) *Server {
	return &Server{svc: svc}
}

// CreateProject creates a project in a workspace. ADMIN or OWNER only.
func (s *Server) CreateProject(ctx context.Context, req *taskhubv1.CreateProjectRequest) (*taskhubv1.CreateProjectResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method CreateProject not implemented")
	}
	userID, err := interceptors.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.svc.CreateProject(ctx, req.WorkspaceID, userID, req.Name)
	if err != nil {
		return nil, errs.ToStatus(err)
	}
	return &taskhubv1.CreateProjectResponse{Project: ProjectToAPI(p)}, nil
}

func (s *Server) GetProject(ctx context.Context, req *taskhubv1.GetProjectRequest) (*taskhubv1.GetProjectResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method GetProject not implemented")
	}
	userID, err := interceptors.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.svc.GetProject(ctx, req.ProjectID, userID)
	if err != nil {
		return nil, errs.ToStatus(err)
	}
	return &taskhubv1.GetProjectResponse{Project: ProjectToAPI(p)}, nil
}

func (s *Server) ListProjects(ctx context.Context, req *taskhubv1.ListProjectsRequest) (*taskhubv1.ListProjectsResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method ListProjects not implemented")
	}
	userID, err := interceptors.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.svc.ListProjects(ctx, req.WorkspaceID, userID)
	if err != nil {
		return nil, errs.ToStatus(err)
	}
	out := make([]*taskhubv1.Project, 0, len(list))
	for _, p := range list {
		out = append(out, ProjectToAPI(p))
	}
	return &taskhubv1.ListProjectsResponse{Projects: out}, nil
}

// ProjectToAPI converts a domain project to its wire form.
func ProjectToAPI(p *domain.Project) *taskhubv1.Project {
	if p == nil {
		return nil
	}
	return &taskhubv1.Project{ID: p.ID, WorkspaceID: p.WorkspaceID, Name: p.Name, CreatedAt: p.CreatedAt}
}
