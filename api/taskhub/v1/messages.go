package taskhubv1

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Workspace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Member struct {
	MembershipID string    `json:"membership_id"`
	WorkspaceID  string    `json:"workspace_id"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email,omitempty"`
	Name         string    `json:"name,omitempty"`
	Role         string    `json:"role"`
	JoinedAt     time.Time `json:"joined_at"`
}

type Project struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
}

type Task struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	AssigneeID  string    `json:"assignee_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AuditLog struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id,omitempty"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resource_id,omitempty"`
	IP         string    `json:"ip"`
	Metadata   string    `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AuthService

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type RegisterResponse struct {
	User *User `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}

type MeRequest struct{}

type MeResponse struct {
	User *User `json:"user"`
}

// WorkspaceService

type CreateWorkspaceRequest struct {
	Name string `json:"name"`
}

type CreateWorkspaceResponse struct {
	Workspace *Workspace `json:"workspace"`
}

type GetWorkspaceRequest struct {
	WorkspaceID string `json:"workspace_id"`
}

type GetWorkspaceResponse struct {
	Workspace *Workspace `json:"workspace"`
}

type ListWorkspacesRequest struct{}

type ListWorkspacesResponse struct {
	Workspaces []*Workspace `json:"workspaces"`
}

type ListMembersRequest struct {
	WorkspaceID string `json:"workspace_id"`
}

type ListMembersResponse struct {
	Members []*Member `json:"members"`
}

type InviteMemberRequest struct {
	WorkspaceID string `json:"workspace_id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

type InviteMemberResponse struct {
	Member *Member `json:"member"`
}

type ListAuditLogsRequest struct {
	WorkspaceID string `json:"workspace_id"`
	Limit       int32  `json:"limit,omitempty"`
	Offset      int32  `json:"offset,omitempty"`
}

type ListAuditLogsResponse struct {
	AuditLogs []*AuditLog `json:"audit_logs"`
}

// ProjectService

type CreateProjectRequest struct {
	WorkspaceID string `json:"workspace_id"`
	Name        string `json:"name"`
}

type CreateProjectResponse struct {
	Project *Project `json:"project"`
}

type GetProjectRequest struct {
	ProjectID string `json:"project_id"`
}

type GetProjectResponse struct {
	Project *Project `json:"project"`
}

type ListProjectsRequest struct {
	WorkspaceID string `json:"workspace_id"`
}

type ListProjectsResponse struct {
	Projects []*Project `json:"projects"`
}

// TaskService

type CreateTaskRequest struct {
	ProjectID   string `json:"project_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	AssigneeID  string `json:"assignee_id,omitempty"`
}

type CreateTaskResponse struct {
	Task *Task `json:"task"`
}

type GetTaskRequest struct {
	TaskID string `json:"task_id"`
}

type GetTaskResponse struct {
	Task *Task `json:"task"`
}

type ListTasksRequest struct {
	ProjectID string `json:"project_id"`
}

type ListTasksResponse struct {
	Tasks []*Task `json:"tasks"`
}

type UpdateTaskStatusRequest struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

type UpdateTaskStatusResponse struct {
	Task *Task `json:"task"`
}

// AssignTaskRequest assigns the task to AssigneeID; an empty AssigneeID unassigns it.
type AssignTaskRequest struct {
	TaskID     string `json:"task_id"`
	AssigneeID string `json:"assignee_id,omitempty"`
}

type AssignTaskResponse struct {
	Task *Task `json:"task"`
}

// GetWorkspaceID lets interceptors attribute a request to its workspace.
func (r *GetWorkspaceRequest) GetWorkspaceID() string  { return r.WorkspaceID }
func (r *ListMembersRequest) GetWorkspaceID() string   { return r.WorkspaceID }
func (r *InviteMemberRequest) GetWorkspaceID() string  { return r.WorkspaceID }
func (r *ListAuditLogsRequest) GetWorkspaceID() string { return r.WorkspaceID }
func (r *CreateProjectRequest) GetWorkspaceID() string { return r.WorkspaceID }
func (r *ListProjectsRequest) GetWorkspaceID() string  { return r.WorkspaceID }
