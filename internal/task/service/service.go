// Package service implements the task lifecycle: creation, status changes and assignment.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskhub/internal/audit"
	"taskhub/internal/events"
	"taskhub/internal/metrics"
	"taskhub/internal/platform/errs"
	"taskhub/internal/platform/rbac"
	"taskhub/internal/policy/engine"
	projectdomain "taskhub/internal/project/domain"
	"taskhub/internal/store"
	"taskhub/internal/task/domain"
)

// CreateTaskInput holds the fields of a new task. Priority defaults to MEDIUM; an empty AssigneeID
// leaves the task unassigned.
type CreateTaskInput struct {
	ProjectID   string
	Title       string
	Description string
	Priority    string
	AssigneeID  string
}

// Service applies task mutations. Each mutation reads, authorizes, validates and writes inside one
// store transaction; audit entries, events and metrics follow the commit.
type Service struct {
	store   store.TxStore
	authz   *rbac.Authorizer
	audit   audit.AuditLogger
	events  *events.Dispatcher
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

// NewService returns a task Service. auditLogger, dispatcher and m may be nil.
func NewService(st store.TxStore, authz *rbac.Authorizer, auditLogger audit.AuditLogger, dispatcher *events.Dispatcher, m *metrics.Metrics, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:   st,
		authz:   authz,
		audit:   auditLogger,
		events:  dispatcher,
		metrics: m,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// loadTask returns the task and the project it belongs to. forUpdate locks the task row.
func loadTask(ctx context.Context, st store.Store, taskID string, forUpdate bool) (*domain.Task, *projectdomain.Project, error) {
	get := st.GetTask
	if forUpdate {
		get = st.GetTaskForUpdate
	}
	t, err := get(ctx, taskID)
	if err != nil {
		return nil, nil, errs.Internal(err, "failed to load task")
	}
	if t == nil {
		return nil, nil, errs.NotFound("task not found")
	}
	p, err := st.GetProject(ctx, t.ProjectID)
	if err != nil {
		return nil, nil, errs.Internal(err, "failed to load project")
	}
	if p == nil {
		return nil, nil, errs.Internal(errors.New("task references missing project "+t.ProjectID), "failed to load project")
	}
	return t, p, nil
}

// UpdateStatus moves the task to newStatus. MEMBERs may only move tasks assigned to them;
// ADMINs and OWNERs may move any task. Setting the current status succeeds without a write.
func (s *Service) UpdateStatus(ctx context.Context, taskID, actorID, newStatus string) (*domain.Task, error) {
	var (
		out         *domain.Task
		workspaceID string
		from        domain.Status
		changed     bool
	)
	err := s.store.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		t, p, err := loadTask(ctx, st, taskID, true)
		if err != nil {
			return err
		}
		workspaceID = p.WorkspaceID
		req := engine.Request{Action: engine.ActionUpdateTaskStatus, IsAssignee: t.IsAssignee(actorID)}
		if _, err := s.authz.Authorize(ctx, st, p.WorkspaceID, actorID, req); err != nil {
			return err
		}
		status := domain.Status(newStatus)
		if !status.Valid() {
			return errs.InvalidArgument("invalid status %q: must be TODO, IN_PROGRESS or DONE", newStatus)
		}
		from = t.Status
		out = t
		if !t.SetStatus(status, s.now()) {
			return nil
		}
		changed = true
		if err := st.PutTask(ctx, t); err != nil {
			return errs.Internal(err, "failed to save task")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.metrics.ObserveTransition(string(from), string(out.Status))
		s.record(ctx, workspaceID, actorID, "status_changed", out.ID, string(from)+"->"+string(out.Status))
		s.events.Publish(events.New(events.TypeTaskStatusChanged, workspaceID, actorID, out.ID, out.UpdatedAt,
			map[string]string{"from": string(from), "to": string(out.Status)}))
	}
	return out, nil
}

// AssignTask sets the task's assignee, or clears it when assigneeID is empty. The assignee must
// be a member of the task's workspace.
func (s *Service) AssignTask(ctx context.Context, taskID, actorID, assigneeID string) (*domain.Task, error) {
	var (
		out         *domain.Task
		workspaceID string
		changed     bool
	)
	err := s.store.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		t, p, err := loadTask(ctx, st, taskID, true)
		if err != nil {
			return err
		}
		workspaceID = p.WorkspaceID
		if _, err := s.authz.Authorize(ctx, st, p.WorkspaceID, actorID, engine.Request{Action: engine.ActionAssignTask}); err != nil {
			return err
		}
		if err := s.checkAssignee(ctx, st, p.WorkspaceID, assigneeID); err != nil {
			return err
		}
		out = t
		if !t.SetAssignee(assigneeID, s.now()) {
			return nil
		}
		changed = true
		if err := st.PutTask(ctx, t); err != nil {
			return errs.Internal(err, "failed to save task")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.record(ctx, workspaceID, actorID, "task_assigned", out.ID, out.AssigneeID)
		s.events.Publish(events.New(events.TypeTaskAssigned, workspaceID, actorID, out.ID, out.UpdatedAt,
			map[string]string{"assignee_id": out.AssigneeID}))
	}
	return out, nil
}

// CreateTask creates a TODO task in the project. An empty title is rejected before any lookup.
func (s *Service) CreateTask(ctx context.Context, actorID string, in CreateTaskInput) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, errs.InvalidArgument("title is required")
	}
	var (
		out         *domain.Task
		workspaceID string
	)
	err := s.store.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		p, err := st.GetProject(ctx, in.ProjectID)
		if err != nil {
			return errs.Internal(err, "failed to load project")
		}
		if p == nil {
			return errs.NotFound("project not found")
		}
		workspaceID = p.WorkspaceID
		if _, err := s.authz.Authorize(ctx, st, p.WorkspaceID, actorID, engine.Request{Action: engine.ActionCreateTask}); err != nil {
			return err
		}
		priority := domain.Priority(in.Priority)
		if priority == "" {
			priority = domain.PriorityMedium
		}
		if !priority.Valid() {
			return errs.InvalidArgument("invalid priority %q: must be LOW, MEDIUM or HIGH", in.Priority)
		}
		if err := s.checkAssignee(ctx, st, p.WorkspaceID, in.AssigneeID); err != nil {
			return err
		}
		now := s.now()
		t := &domain.Task{
			ID:          uuid.New().String(),
			ProjectID:   p.ID,
			Title:       title,
			Description: strings.TrimSpace(in.Description),
			Status:      domain.StatusTodo,
			Priority:    priority,
			AssigneeID:  in.AssigneeID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := st.PutTask(ctx, t); err != nil {
			return errs.Internal(err, "failed to save task")
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, workspaceID, actorID, "task_created", out.ID, out.Title)
	s.events.Publish(events.New(events.TypeTaskCreated, workspaceID, actorID, out.ID, out.CreatedAt,
		map[string]string{"project_id": out.ProjectID, "assignee_id": out.AssigneeID}))
	return out, nil
}

// GetTask returns the task if actorID may view its workspace.
func (s *Service) GetTask(ctx context.Context, taskID, actorID string) (*domain.Task, error) {
	t, p, err := loadTask(ctx, s.store, taskID, false)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.Authorize(ctx, s.store, p.WorkspaceID, actorID, engine.Request{Action: engine.ActionView}); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTasks returns the project's tasks, oldest first, if actorID may view its workspace.
func (s *Service) ListTasks(ctx context.Context, projectID, actorID string) ([]*domain.Task, error) {
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
	list, err := s.store.ListTasks(ctx, projectID)
	if err != nil {
		return nil, errs.Internal(err, "failed to list tasks")
	}
	return list, nil
}

func (s *Service) checkAssignee(ctx context.Context, st store.Store, workspaceID, assigneeID string) error {
	if assigneeID == "" {
		return nil
	}
	ok, err := s.authz.IsMember(ctx, st, workspaceID, assigneeID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.InvalidArgument("cannot assign to non-member")
	}
	return nil
}

func (s *Service) record(ctx context.Context, workspaceID, actorID, action, taskID, metadata string) {
	if s.audit == nil {
		return
	}
	s.audit.LogEvent(ctx, workspaceID, actorID, action, "task", taskID, metadata)
}
