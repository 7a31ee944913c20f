package interceptors

import (
	"context"
	"net"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"taskhub/internal/audit"
)

// workspaceScoped is implemented by requests that name the workspace they act on.
type workspaceScoped interface {
	GetWorkspaceID() string
}

// AuditUnary returns a unary server interceptor that records an audit entry for every RPC rejected
// with PermissionDenied. Successful mutations are audited by the services themselves.
// skipMethods is the set of full method names never audited.
func AuditUnary(logger audit.AuditLogger, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if logger == nil || skipMethods[info.FullMethod] || status.Code(err) != codes.PermissionDenied {
			return resp, err
		}
		userID, _ := GetUserID(ctx)
		var workspaceID string
		if ws, ok := req.(workspaceScoped); ok {
			workspaceID = ws.GetWorkspaceID()
		}
		ar := audit.ParseFullMethod(info.FullMethod)
		logger.LogEvent(ctx, workspaceID, userID, ar.Action+"_denied", ar.Resource, "", status.Convert(err).Message())
		return resp, err
	}
}

// ClientIP returns the client IP from gRPC metadata (x-forwarded-for, x-real-ip) or peer, or "unknown".
func ClientIP(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get("x-forwarded-for"); len(vals) > 0 {
			if s := strings.TrimSpace(vals[0]); s != "" {
				if i := strings.Index(s, ","); i > 0 {
					s = strings.TrimSpace(s[:i])
				}
				return s
			}
		}
		if vals := md.Get("x-real-ip"); len(vals) > 0 {
			if s := strings.TrimSpace(vals[0]); s != "" {
				return s
			}
		}
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
			return host
		}
		return p.Addr.String()
	}
	return "unknown"
}
