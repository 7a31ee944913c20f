package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	taskhubv1 "taskhub/api/taskhub/v1"
	"taskhub/internal/audit"
	identityhandler "taskhub/internal/identity/handler"
	identityservice "taskhub/internal/identity/service"
	"taskhub/internal/metrics"
	projecthandler "taskhub/internal/project/handler"
	"taskhub/internal/server/interceptors"
	taskhandler "taskhub/internal/task/handler"
	taskservice "taskhub/internal/task/service"
	workspacehandler "taskhub/internal/workspace/handler"
	workspaceservice "taskhub/internal/workspace/service"
)

// Deps holds optional service dependencies for gRPC handlers. A nil service makes its RPCs
// return Unimplemented.
type Deps struct {
	// Auth backs AuthService (Register, Login, Me).
	Auth *identityservice.AuthService
	// Workspaces backs WorkspaceService and ProjectService.
	Workspaces *workspaceservice.Service
	// Tasks backs TaskService.
	Tasks *taskservice.Service
}

// RegisterServices registers all taskhub gRPC services with the given server.
//
// Service → handler mapping:
//   - AuthService      → internal/identity/handler
//   - WorkspaceService → internal/workspace/handler
//   - ProjectService   → internal/project/handler
//   - TaskService      → internal/task/handler
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) {
	taskhubv1.RegisterAuthServiceServer(s, identityhandler.NewAuthServer(deps.Auth))
	taskhubv1.RegisterWorkspaceServiceServer(s, workspacehandler.NewServer(deps.Workspaces))
	taskhubv1.RegisterProjectServiceServer(s, projecthandler.NewServer(deps.Workspaces))
	taskhubv1.RegisterTaskServiceServer(s, taskhandler.NewServer(deps.Tasks))
}

// PublicMethods are the full method names callable without a Bearer token.
var PublicMethods = map[string]bool{
	taskhubv1.AuthService_Register_FullMethodName: true,
	taskhubv1.AuthService_Login_FullMethodName:    true,
	healthpb.Health_Check_FullMethodName:          true,
	healthpb.Health_Watch_FullMethodName:          true,
}

// Options configures the cross-cutting behavior of the gRPC server.
type Options struct {
	Tokens  interceptors.TokenValidator
	Audit   audit.AuditLogger
	Metrics *metrics.Metrics
	Log     *zap.Logger
	// Health is registered as grpc.health.v1.Health when set.
	Health *health.Server
}

// NewGRPCServer returns a server with the taskhub services registered behind the interceptor chain
// logging → auth → audit → metrics, traced by otelgrpc.
func NewGRPCServer(deps Deps, opts Options) *grpc.Server {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	quiet := map[string]bool{
		healthpb.Health_Check_FullMethodName: true,
	}
	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptors.LoggingUnary(log, quiet),
			interceptors.AuthUnary(opts.Tokens, PublicMethods, log),
			interceptors.AuditUnary(opts.Audit, quiet),
			interceptors.MetricsUnary(opts.Metrics),
		),
	)
	RegisterServices(s, deps)
	if opts.Health != nil {
		healthpb.RegisterHealthServer(s, opts.Health)
	}
	return s
}
