package taskhubv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	WorkspaceService_CreateWorkspace_FullMethodName = "/taskhub.v1.WorkspaceService/CreateWorkspace"
	WorkspaceService_GetWorkspace_FullMethodName    = "/taskhub.v1.WorkspaceService/GetWorkspace"
	WorkspaceService_ListWorkspaces_FullMethodName  = "/taskhub.v1.WorkspaceService/ListWorkspaces"
	WorkspaceService_ListMembers_FullMethodName     = "/taskhub.v1.WorkspaceService/ListMembers"
	WorkspaceService_InviteMember_FullMethodName    = "/taskhub.v1.WorkspaceService/InviteMember"
	WorkspaceService_ListAuditLogs_FullMethodName   = "/taskhub.v1.WorkspaceService/ListAuditLogs"
)

// WorkspaceServiceServer is the server API for WorkspaceService: workspaces, their members and audit trail.
type WorkspaceServiceServer interface {
	CreateWorkspace(context.Context, *CreateWorkspaceRequest) (*CreateWorkspaceResponse, error)
	GetWorkspace(context.Context, *GetWorkspaceRequest) (*GetWorkspaceResponse, error)
	ListWorkspaces(context.Context, *ListWorkspacesRequest) (*ListWorkspacesResponse, error)
	ListMembers(context.Context, *ListMembersRequest) (*ListMembersResponse, error)
	InviteMember(context.Context, *InviteMemberRequest) (*InviteMemberResponse, error)
	ListAuditLogs(context.Context, *ListAuditLogsRequest) (*ListAuditLogsResponse, error)
}

// UnimplementedWorkspaceServiceServer returns Unimplemented for every method. Embed it to keep
// implementations compiling when methods are added.
type UnimplementedWorkspaceServiceServer struct{}

func (UnimplementedWorkspaceServiceServer) CreateWorkspace(context.Context, *CreateWorkspaceRequest) (*CreateWorkspaceResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateWorkspace not implemented")
}

func (UnimplementedWorkspaceServiceServer) GetWorkspace(context.Context, *GetWorkspaceRequest) (*GetWorkspaceResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetWorkspace not implemented")
}

func (UnimplementedWorkspaceServiceServer) ListWorkspaces(context.Context, *ListWorkspacesRequest) (*ListWorkspacesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListWorkspaces not implemented")
}

func (UnimplementedWorkspaceServiceServer) ListMembers(context.Context, *ListMembersRequest) (*ListMembersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListMembers not implemented")
}

func (UnimplementedWorkspaceServiceServer) InviteMember(context.Context, *InviteMemberRequest) (*InviteMemberResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method InviteMember not implemented")
}

func (UnimplementedWorkspaceServiceServer) ListAuditLogs(context.Context, *ListAuditLogsRequest) (*ListAuditLogsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAuditLogs not implemented")
}

// WorkspaceService_ServiceDesc is the grpc.ServiceDesc for WorkspaceService.
var WorkspaceService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "taskhub.v1.WorkspaceService",
	HandlerType: (*WorkspaceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateWorkspace", Handler: unary(WorkspaceService_CreateWorkspace_FullMethodName, WorkspaceServiceServer.CreateWorkspace)},
		{MethodName: "GetWorkspace", Handler: unary(WorkspaceService_GetWorkspace_FullMethodName, WorkspaceServiceServer.GetWorkspace)},
		{MethodName: "ListWorkspaces", Handler: unary(WorkspaceService_ListWorkspaces_FullMethodName, WorkspaceServiceServer.ListWorkspaces)},
		{MethodName: "ListMembers", Handler: unary(WorkspaceService_ListMembers_FullMethodName, WorkspaceServiceServer.ListMembers)},
		{MethodName: "InviteMember", Handler: unary(WorkspaceService_InviteMember_FullMethodName, WorkspaceServiceServer.InviteMember)},
		{MethodName: "ListAuditLogs", Handler: unary(WorkspaceService_ListAuditLogs_FullMethodName, WorkspaceServiceServer.ListAuditLogs)},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterWorkspaceServiceServer registers srv with s.
func RegisterWorkspaceServiceServer(s grpc.ServiceRegistrar, srv WorkspaceServiceServer) {
	s.RegisterService(&WorkspaceService_ServiceDesc, srv)
}

// WorkspaceServiceClient is the client API for WorkspaceService.
type WorkspaceServiceClient interface {
	CreateWorkspace(ctx context.Context, in *CreateWorkspaceRequest, opts ...grpc.CallOption) (*CreateWorkspaceResponse, error)
	GetWorkspace(ctx context.Context, in *GetWorkspaceRequest, opts ...grpc.CallOption) (*GetWorkspaceResponse, error)
	ListWorkspaces(ctx context.Context, in *ListWorkspacesRequest, opts ...grpc.CallOption) (*ListWorkspacesResponse, error)
	ListMembers(ctx context.Context, in *ListMembersRequest, opts ...grpc.CallOption) (*ListMembersResponse, error)
	InviteMember(ctx context.Context, in *InviteMemberRequest, opts ...grpc.CallOption) (*InviteMemberResponse, error)
	ListAuditLogs(ctx context.Context, in *ListAuditLogsRequest, opts ...grpc.CallOption) (*ListAuditLogsResponse, error)
}

type workspaceServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewWorkspaceServiceClient returns a WorkspaceServiceClient that speaks the JSON codec over cc.
func NewWorkspaceServiceClient(cc grpc.ClientConnInterface) WorkspaceServiceClient {
	return &workspaceServiceClient{cc: cc}
}

func (c *workspaceServiceClient) CreateWorkspace(ctx context.Context, in *CreateWorkspaceRequest, opts ...grpc.CallOption) (*CreateWorkspaceResponse, error) {
	return invoke[CreateWorkspaceResponse](ctx, c.cc, WorkspaceService_CreateWorkspace_FullMethodName, in, opts...)
}

func (c *workspaceServiceClient) GetWorkspace(ctx context.Context, in *GetWorkspaceRequest, opts ...grpc.CallOption) (*GetWorkspaceResponse, error) {
	return invoke[GetWorkspaceResponse](ctx, c.cc, WorkspaceService_GetWorkspace_FullMethodName, in, opts...)
}

func (c *workspaceServiceClient) ListWorkspaces(ctx context.Context, in *ListWorkspacesRequest, opts ...grpc.CallOption) (*ListWorkspacesResponse, error) {
	return invoke[ListWorkspacesResponse](ctx, c.cc, WorkspaceService_ListWorkspaces_FullMethodName, in, opts...)
}

func (c *workspaceServiceClient) ListMembers(ctx context.Context, in *ListMembersRequest, opts ...grpc.CallOption) (*ListMembersResponse, error) {
	return invoke[ListMembersResponse](ctx, c.cc, WorkspaceService_ListMembers_FullMethodName, in, opts...)
}

func (c *workspaceServiceClient) InviteMember(ctx context.Context, in *InviteMemberRequest, opts ...grpc.CallOption) (*InviteMemberResponse, error) {
	return invoke[InviteMemberResponse](ctx, c.cc, WorkspaceService_InviteMember_FullMethodName, in, opts...)
}

func (c *workspaceServiceClient) ListAuditLogs(ctx context.Context, in *ListAuditLogsRequest, opts ...grpc.CallOption) (*ListAuditLogsResponse, error) {
	return invoke[ListAuditLogsResponse](ctx, c.cc, WorkspaceService_ListAuditLogs_FullMethodName, in, opts...)
}
