package taskhubv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ProjectService_CreateProject_FullMethodName = "/taskhub.v1.ProjectService/CreateProject"
	ProjectService_GetProject_FullMethodName    = "/taskhub.v1.ProjectService/GetProject"
	ProjectService_ListProjects_FullMethodName  = "/taskhub.v1.ProjectService/ListProjects"
)

// ProjectServiceServer is the server API for ProjectService: projects inside a workspace.
type ProjectServiceServer interface {
	CreateProject(context.Context, *CreateProjectRequest) (*CreateProjectResponse, error)
	GetProject(context.Context, *GetProjectRequest) (*GetProjectResponse, error)
	ListProjects(context.Context, *ListProjectsRequest) (*ListProjectsResponse, error)
}

// UnimplementedProjectServiceServer returns Unimplemented for every method. Embed it to keep
// implementations compiling when methods are added.
type UnimplementedProjectServiceServer struct{}

func (UnimplementedProjectServiceServer) CreateProject(context.Context, *CreateProjectRequest) (*CreateProjectResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateProject not implemented")
}

func (UnimplementedProjectServiceServer) GetProject(context.Context, *GetProjectRequest) (*GetProjectResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProject not implemented")
}

func (UnimplementedProjectServiceServer) ListProjects(context.Context, *ListProjectsRequest) (*ListProjectsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListProjects not implemented")
}

// ProjectService_ServiceDesc is the grpc.ServiceDesc for ProjectService.
var ProjectService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "taskhub.v1.ProjectService",
	HandlerType: (*ProjectServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateProject", Handler: unary(ProjectService_CreateProject_FullMethodName, ProjectServiceServer.CreateProject)},
		{MethodName: "GetProject", Handler: unary(ProjectService_GetProject_FullMethodName, ProjectServiceServer.GetProject)},
		{MethodName: "ListProjects", Handler: unary(ProjectService_ListProjects_FullMethodName, ProjectServiceServer.ListProjects)},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterProjectServiceServer registers srv with s.
func RegisterProjectServiceServer(s grpc.ServiceRegistrar, srv ProjectServiceServer) {
	s.RegisterService(&ProjectService_ServiceDesc, srv)
}

// ProjectServiceClient is the client API for ProjectService.
type ProjectServiceClient interface {
	CreateProject(ctx context.Context, in *CreateProjectRequest, opts ...grpc.CallOption) (*CreateProjectResponse, error)
	GetProject(ctx context.Context, in *GetProjectRequest, opts ...grpc.CallOption) (*GetProjectResponse, error)
	ListProjects(ctx context.Context, in *ListProjectsRequest, opts ...grpc.CallOption) (*ListProjectsResponse, error)
}

type projectServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewProjectServiceClient returns a ProjectServiceClient that speaks the JSON codec over cc.
func NewProjectServiceClient(cc grpc.ClientConnInterface) ProjectServiceClient {
	return &projectServiceClient{cc: cc}
}

func (c *projectServiceClient) CreateProject(ctx context.Context, in *CreateProjectRequest, opts ...grpc.CallOption) (*CreateProjectResponse, error) {
	return invoke[CreateProjectResponse](ctx, c.cc, ProjectService_CreateProject_FullMethodName, in, opts...)
}

func (c *projectServiceClient) GetProject(ctx context.Context, in *GetProjectRequest, opts ...grpc.CallOption) (*GetProjectResponse, error) {
	return invoke[GetProjectResponse](ctx, c.cc, ProjectService_GetProject_FullMethodName, in, opts...)
}

func (c *projectServiceClient) ListProjects(ctx context.Context, in *ListProjectsRequest, opts ...grpc.CallOption) (*ListProjectsResponse, error) {
	return invoke[ListProjectsResponse](ctx, c.cc, ProjectService_ListProjects_FullMethodName, in, opts...)
}
