package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	taskhubv1 "taskhub/api/taskhub/v1"
	"taskhub/internal/platform/errs"
	"taskhub/internal/server/interceptors"
	"taskhub/internal/task/domain"
	"taskhub/internal/task/service"
)

// Server implements TaskService: task creation, status changes and assignment.
type Server struct {
	taskhubv1.UnimplementedTaskServiceServer
	svc *service.Service
}

// NewServer returns a new Task gRPC server. If svc is nil, every RPC returns Unimplemented.
func NewServer(svc *service.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) CreateTask(ctx context.Context, req *taskhubv1.CreateTaskRequest) (*taskhubv1.CreateTaskResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method CreateTask not implemented")
	}
	userID, err := interceptors.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.svc.CreateTask(ctx, userID, service.CreateTaskInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		return nil, errs.ToStatus(err)
	}
	return &taskhubv1.CreateTaskResponse{Task: TaskToAPI(t)}, nil
}

func (s *Server) GetTask(ctx context.Context, req *taskhubv1.GetTaskRequest) (*taskhubv1.GetTaskResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method GetTask not implemented")
	}
	userID, err := interceptors.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.svc.GetTask(ctx, req.TaskID, userID)
	if err != nil {
		return nil, errs.ToStatus(err)
	}
	return &taskhubv1.GetTaskResponse{Task: TaskToAPI(t)}, nil
}

func (s *Server) ListTasks(ctx context.Context, req *taskhubv1.ListTasksRequest) (*taskhubv1.ListTasksResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method ListTasks not implemented")
	}
	userID, err := interceptors.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.svc.ListTasks(ctx, req.ProjectID, userID)
	if err != nil {
		return nil, errs.ToStatus(err)
	}
	out := make([]*taskhubv1.Task, 0, len(list))
	for _, t := range list {
		out = append(out, TaskToAPI(t))
	}
	return &taskhubv1.ListTasksResponse{Tasks: out}, nil
}

// UpdateTaskStatus moves a task to a new status.
func (s *Server) UpdateTaskStatus(ctx context.Context, req *taskhubv1.UpdateTaskStatusRequest) (*taskhubv1.UpdateTaskStatusResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method UpdateTaskStatus not implemented")
	}
	userID, err := interceptors.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.svc.UpdateStatus(ctx, req.TaskID, userID, req.Status)
	if err != nil {
		return nil, errs.ToStatus(err)
	}
	return &taskhubv1.UpdateTaskStatusResponse{Task: TaskToAPI(t)}, nil
}

// AssignTask sets or clears a task's assignee.
func (s *Server) AssignTask(ctx context.Context, req *taskhubv1.AssignTaskRequest) (*taskhubv1.AssignTaskResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method AssignTask not implemented")
	}
	userID, err := interceptors.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.svc.AssignTask(ctx, req.TaskID, userID, req.AssigneeID)
	if err != nil {
		return nil, errs.ToStatus(err)
	}
	return &taskhubv1.AssignTaskResponse{Task: TaskToAPI(t)}, nil
}

// TaskToAPI converts a domain task to its wire form.
func TaskToAPI(t *domain.Task) *taskhubv1.Task {
	if t == nil {
		return nil
	}
	return &taskhubv1.Task{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		AssigneeID:  t.AssigneeID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
