package audit

import "strings"

// ActionResource holds action and resource derived from a gRPC full method name.
type ActionResource struct {
	Action   string
	Resource string
}

const (
	workspaceInviteMember = "/taskhub.v1.WorkspaceService/InviteMember"
	taskAssignTask        = "/taskhub.v1.TaskService/AssignTask"
	taskUpdateStatus      = "/taskhub.v1.TaskService/UpdateTaskStatus"
)

// ParseFullMethod returns action and resource for a gRPC full method (e.g. /taskhub.v1.ProjectService/GetProject).
// Action is a verb: get, list, create, update, or a lowercase method name for others.
// Resource is derived from the service name (e.g. ProjectService -> project).
// InviteMember, AssignTask and UpdateTaskStatus map to member_invited, task_assigned and status_changed.
func ParseFullMethod(fullMethod string) ActionResource {
	switch fullMethod {
	case workspaceInviteMember:
		return ActionResource{Action: "member_invited", Resource: "membership"}
	case taskAssignTask:
		return ActionResource{Action: "task_assigned", Resource: "task"}
	case taskUpdateStatus:
		return ActionResource{Action: "status_changed", Resource: "task"}
	}
	// fullMethod format: /package.v1.ServiceName/MethodName
	slash := strings.LastIndex(fullMethod, "/")
	if slash < 0 {
		return ActionResource{Action: "unknown", Resource: "unknown"}
	}
	method := fullMethod[slash+1:]
	beforeSlash := fullMethod[:slash]
	dot := strings.LastIndex(beforeSlash, ".")
	if dot < 0 {
		return ActionResource{Action: strings.ToLower(method), Resource: "unknown"}
	}
	return ActionResource{
		Action:   methodToAction(method),
		Resource: serviceToResource(beforeSlash[dot+1:]),
	}
}

func serviceToResource(serviceName string) string {
	s := strings.TrimSuffix(serviceName, "Service")
	if s == "" {
		return "unknown"
	}
	return strings.ToLower(s[0:1]) + s[1:]
}

func methodToAction(method string) string {
	switch {
	case strings.HasPrefix(method, "Get") && method != "Get":
		return "get"
	case strings.HasPrefix(method, "List"):
		return "list"
	case strings.HasPrefix(method, "Create"):
		return "create"
	case strings.HasPrefix(method, "Update"):
		return "update"
	case strings.HasPrefix(method, "Register"):
		return "register"
	default:
		return strings.ToLower(method)
	}
}
