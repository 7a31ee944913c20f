package taskhubv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	AuthService_Register_FullMethodName = "/taskhub.v1.AuthService/Register"
	AuthService_Login_FullMethodName    = "/taskhub.v1.AuthService/Login"
	AuthService_Me_FullMethodName       = "/taskhub.v1.AuthService/Me"
)

// AuthServiceServer is the server API for AuthService: register, login and the current user.
type AuthServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Me(context.Context, *MeRequest) (*MeResponse, error)
}

// UnimplementedAuthServiceServer returns Unimplemented for every method. Embed it to keep
// implementations compiling when methods are added.
type UnimplementedAuthServiceServer struct{}

func (UnimplementedAuthServiceServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}

func (UnimplementedAuthServiceServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}

func (UnimplementedAuthServiceServer) Me(context.Context, *MeRequest) (*MeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Me not implemented")
}

// AuthService_ServiceDesc is the grpc.ServiceDesc for AuthService.
var AuthService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "taskhub.v1.AuthService",
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unary(AuthService_Register_FullMethodName, AuthServiceServer.Register)},
		{MethodName: "Login", Handler: unary(AuthService_Login_FullMethodName, AuthServiceServer.Login)},
		{MethodName: "Me", Handler: unary(AuthService_Me_FullMethodName, AuthServiceServer.Me)},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterAuthServiceServer registers srv with s.
func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthService_ServiceDesc, srv)
}

// AuthServiceClient is the client API for AuthService.
type AuthServiceClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	Me(ctx context.Context, in *MeRequest, opts ...grpc.CallOption) (*MeResponse, error)
}

type authServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAuthServiceClient returns a AuthServiceClient that speaks the JSON codec over cc.
func NewAuthServiceClient(cc grpc.ClientConnInterface) AuthServiceClient {
	return &authServiceClient{cc: cc}
}

func (c *authServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, AuthService_Register_FullMethodName, in, opts...)
}

func (c *authServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, AuthService_Login_FullMethodName, in, opts...)
}

func (c *authServiceClient) Me(ctx context.Context, in *MeRequest, opts ...grpc.CallOption) (*MeResponse, error) {
	return invoke[MeResponse](ctx, c.cc, AuthService_Me_FullMethodName, in, opts...)
}
