package cli

import (
	"github.com/spf13/cobra"

	taskhubv1 "taskhub/api/taskhub/v1"
)

func newRegisterCmd(a *app) *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := a.auth().Register(cmd.Context(), &taskhubv1.RegisterRequest{Email: email, Password: password, Name: name})
			if err != nil {
				return err
			}
			return a.print(resp.User)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (at least 8 characters)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Obtain an access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := a.auth().Login(cmd.Context(), &taskhubv1.LoginRequest{Email: email, Password: password})
			if err != nil {
				return err
			}
			return a.print(resp)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newMeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := a.auth().Me(ctx, &taskhubv1.MeRequest{})
			if err != nil {
				return err
			}
			return a.print(resp.User)
		},
	}
}

func newWorkspaceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "workspace", Aliases: []string{"ws"}, Short: "Manage workspaces"}

	create := &cobra.Command{
		Use:  "create NAME",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := a.workspaces().CreateWorkspace(ctx, &taskhubv1.CreateWorkspaceRequest{Name: args[0]})
			if err != nil {
				return err
			}
			return a.print(resp.Workspace)
		},
	}
	list := &cobra.Command{
		Use:  "list",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := a.workspaces().ListWorkspaces(ctx, &taskhubv1.ListWorkspacesRequest{})
			if err != nil {
				return err
			}
			return a.print(resp.Workspaces)
		},
	}
	get := &cobra.Command{
		Use:  "get WORKSPACE_ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := a.workspaces().GetWorkspace(ctx, &taskhubv1.GetWorkspaceRequest{WorkspaceID: args[0]})
			if err != nil {
				return err
			}
			return a.print(resp.Workspace)
		},
	}
	members := &cobra.Command{
		Use:  "members WORKSPACE_ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := a.workspaces().ListMembers(ctx, &taskhubv1.ListMembersRequest{WorkspaceID: args[0]})
			if err != nil {
				return err
			}
			return a.print(resp.Members)
		},
	}

	var role string
	invite := &cobra.Command{
		Use:   "invite WORKSPACE_ID EMAIL",
		Short: "Add a registered user to the workspace",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := a.workspaces().InviteMember(ctx, &taskhubv1.InviteMemberRequest{WorkspaceID: args[0], Email: args[1], Role: role})
			if err != nil {
				return err
			}
			return a.print(resp.Member)
		},
	}
	invite.Flags().StringVar(&role, "role", "MEMBER", "MEMBER or ADMIN")

	var limit, offset int32
	auditCmd := &cobra.Command{
		Use:   "audit WORKSPACE_ID",
		Short: "Show the workspace audit trail, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := a.workspaces().ListAuditLogs(ctx, &taskhubv1.ListAuditLogsRequest{WorkspaceID: args[0], Limit: limit, Offset: offset})
			if err != nil {
				return err
			}
			return a.print(resp.AuditLogs)
		},
	}
	auditCmd.Flags().Int32Var(&limit, "limit", 50, "page size (max 100)")
	auditCmd.Flags().Int32Var(&offset, "offset", 0, "entries to skip")

	cmd.AddCommand(create, list, get, members, invite, auditCmd)
	return cmd
}

func newProjectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "project", Short: "Manage projects"}

	create := &cobra.Command{
		Use:  "create WORKSPACE_ID NAME",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := a.projects().CreateProject(ctx, &taskhubv1.CreateProjectRequest{WorkspaceID: args[0], Name: args[1]})
			if err != nil {
				return err
			}
			return a.print(resp.Project)
		},
	}
	list := &cobra.Command{
		Use:  "list WORKSPACE_ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := a.projects().ListProjects(ctx, &taskhubv1.ListProjectsRequest{WorkspaceID: args[0]})
			if err != nil {
				return err
			}
			return a.print(resp.Projects)
		},
	}
	get := &cobra.Command{
		Use:  "get PROJECT_ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := a.projects().GetProject(ctx, &taskhubv1.GetProjectRequest{ProjectID: args[0]})
			if err != nil {
				return err
			}
			return a.print(resp.Project)
		},
	}
	cmd.AddCommand(create, list, get)
	return cmd
}

func newTaskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "task", Short: "Manage tasks"}

	var description, priority, assignee string
	create := &cobra.Command{
		Use:  "create PROJECT_ID TITLE",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := a.tasks().CreateTask(ctx, &taskhubv1.CreateTaskRequest{
				ProjectID:   args[0],
				Title:       args[1],
				Description: description,
				Priority:    priority,
				AssigneeID:  assignee,
			})
			if err != nil {
				return err
			}
			return a.print(resp.Task)
		},
	}
	create.Flags().StringVar(&description, "description", "", "task description")
	create.Flags().StringVar(&priority, "priority", "", "LOW, MEDIUM or HIGH (default MEDIUM)")
	create.Flags().StringVar(&assignee, "assignee", "", "assignee user id")

	list := &cobra.Command{
		Use:  "list PROJECT_ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := a.tasks().ListTasks(ctx, &taskhubv1.ListTasksRequest{ProjectID: args[0]})
			if err != nil {
				return err
			}
			return a.print(resp.Tasks)
		},
	}
	get := &cobra.Command{
		Use:  "get TASK_ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := a.tasks().GetTask(ctx, &taskhubv1.GetTaskRequest{TaskID: args[0]})
			if err != nil {
				return err
			}
			return a.print(resp.Task)
		},
	}
	status := &cobra.Command{
		Use:   "status TASK_ID STATUS",
		Short: "Move a task to TODO, IN_PROGRESS or DONE",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := a.tasks().UpdateTaskStatus(ctx, &taskhubv1.UpdateTaskStatusRequest{TaskID: args[0], Status: args[1]})
			if err != nil {
				return err
			}
			return a.print(resp.Task)
		},
	}
	assign := &cobra.Command{
		Use:   "assign TASK_ID [USER_ID]",
		Short: "Assign a task, or unassign it when USER_ID is omitted",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			req := &taskhubv1.AssignTaskRequest{TaskID: args[0]}
			if len(args) == 2 {
				req.AssigneeID = args[1]
			}
			resp, err := a.tasks().AssignTask(ctx, req)
			if err != nil {
				return err
			}
			return a.print(resp.Task)
		},
	}
	cmd.AddCommand(create, list, get, status, assign)
	return cmd
}
