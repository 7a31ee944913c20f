package taskhubv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	TaskService_CreateTask_FullMethodName       = "/taskhub.v1.TaskService/CreateTask"
	TaskService_GetTask_FullMethodName          = "/taskhub.v1.TaskService/GetTask"
	TaskService_ListTasks_FullMethodName        = "/taskhub.v1.TaskService/ListTasks"
	TaskService_UpdateTaskStatus_FullMethodName = "/taskhub.v1.TaskService/UpdateTaskStatus"
	TaskService_AssignTask_FullMethodName       = "/taskhub.v1.TaskService/AssignTask"
)

// TaskServiceServer is the server API for TaskService: tasks and their lifecycle.
type TaskServiceServer interface {
	CreateTask(context.Context, *CreateTaskRequest) (*CreateTaskResponse, error)
	GetTask(context.Context, *GetTaskRequest) (*GetTaskResponse, error)
	ListTasks(context.Context, *ListTasksRequest) (*ListTasksResponse, error)
	UpdateTaskStatus(context.Context, *UpdateTaskStatusRequest) (*UpdateTaskStatusResponse, error)
	AssignTask(context.Context, *AssignTaskRequest) (*AssignTaskResponse, error)
}

// UnimplementedTaskServiceServer returns Unimplemented for every method. Embed it to keep
// implementations compiling when methods are added.
type UnimplementedTaskServiceServer struct{}

func (UnimplementedTaskServiceServer) CreateTask(context.Context, *CreateTaskRequest) (*CreateTaskResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateTask not implemented")
}

func (UnimplementedTaskServiceServer) GetTask(context.Context, *GetTaskRequest) (*GetTaskResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetTask not implemented")
}

func (UnimplementedTaskServiceServer) ListTasks(context.Context, *ListTasksRequest) (*ListTasksResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListTasks not implemented")
}

func (UnimplementedTaskServiceServer) UpdateTaskStatus(context.Context, *UpdateTaskStatusRequest) (*UpdateTaskStatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateTaskStatus not implemented")
}

func (UnimplementedTaskServiceServer) AssignTask(context.Context, *AssignTaskRequest) (*AssignTaskResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AssignTask not implemented")
}

// TaskService_ServiceDesc is the grpc.ServiceDesc for TaskService.
var TaskService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "taskhub.v1.TaskService",
	HandlerType: (*TaskServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateTask", Handler: unary(TaskService_CreateTask_FullMethodName, TaskServiceServer.CreateTask)},
		{MethodName: "GetTask", Handler: unary(TaskService_GetTask_FullMethodName, TaskServiceServer.GetTask)},
		{MethodName: "ListTasks", Handler: unary(TaskService_ListTasks_FullMethodName, TaskServiceServer.ListTasks)},
		{MethodName: "UpdateTaskStatus", Handler: unary(TaskService_UpdateTaskStatus_FullMethodName, TaskServiceServer.UpdateTaskStatus)},
		{MethodName: "AssignTask", Handler: unary(TaskService_AssignTask_FullMethodName, TaskServiceServer.AssignTask)},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterTaskServiceServer registers srv with s.
func RegisterTaskServiceServer(s grpc.ServiceRegistrar, srv TaskServiceServer) {
	s.RegisterService(&TaskService_ServiceDesc, srv)
}

// TaskServiceClient is the client API for TaskService.
type TaskServiceClient interface {
	CreateTask(ctx context.Context, in *CreateTaskRequest, opts ...grpc.CallOption) (*CreateTaskResponse, error)
	GetTask(ctx context.Context, in *GetTaskRequest, opts ...grpc.CallOption) (*GetTaskResponse, error)
	ListTasks(ctx context.Context, in *ListTasksRequest, opts ...grpc.CallOption) (*ListTasksResponse, error)
	UpdateTaskStatus(ctx context.Context, in *UpdateTaskStatusRequest, opts ...grpc.CallOption) (*UpdateTaskStatusResponse, error)
	AssignTask(ctx context.Context, in *AssignTaskRequest, opts ...grpc.CallOption) (*AssignTaskResponse, error)
}

type taskServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewTaskServiceClient returns a TaskServiceClient that speaks the JSON codec over cc.
func NewTaskServiceClient(cc grpc.ClientConnInterface) TaskServiceClient {
	return &taskServiceClient{cc: cc}
}

func (c *taskServiceClient) CreateTask(ctx context.Context, in *CreateTaskRequest, opts ...grpc.CallOption) (*CreateTaskResponse, error) {
	return invoke[CreateTaskResponse](ctx, c.cc, TaskService_CreateTask_FullMethodName, in, opts...)
}

func (c *taskServiceClient) GetTask(ctx context.Context, in *GetTaskRequest, opts ...grpc.CallOption) (*GetTaskResponse, error) {
	return invoke[GetTaskResponse](ctx, c.cc, TaskService_GetTask_FullMethodName, in, opts...)
}

func (c *taskServiceClient) ListTasks(ctx context.Context, in *ListTasksRequest, opts ...grpc.CallOption) (*ListTasksResponse, error) {
	return invoke[ListTasksResponse](ctx, c.cc, TaskService_ListTasks_FullMethodName, in, opts...)
}

func (c *taskServiceClient) UpdateTaskStatus(ctx context.Context, in *UpdateTaskStatusRequest, opts ...grpc.CallOption) (*UpdateTaskStatusResponse, error) {
	return invoke[UpdateTaskStatusResponse](ctx, c.cc, TaskService_UpdateTaskStatus_FullMethodName, in, opts...)
}

func (c *taskServiceClient) AssignTask(ctx context.Context, in *AssignTaskRequest, opts ...grpc.CallOption) (*AssignTaskResponse, error) {
	return invoke[AssignTaskResponse](ctx, c.cc, TaskService_AssignTask_FullMethodName, in, opts...)
}
