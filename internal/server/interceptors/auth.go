package interceptors

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const bearerPrefix = "bearer "

// TokenValidator verifies an access token and returns the user id it was issued for.
type TokenValidator interface {
	ValidateAccess(token string) (userID string, err error)
}

// AuthUnary returns a unary server interceptor that validates the Bearer (access) token
// from gRPC metadata and sets user_id in context for protected RPCs.
// publicMethods is the set of full method names that do not require a Bearer token
// (AuthService Register and Login, grpc health).
func AuthUnary(tokens TokenValidator, publicMethods map[string]bool, log *zap.Logger) grpc.UnaryServerInterceptor {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		token := extractBearer(ctx)
		public := publicMethods[info.FullMethod]

		if token == "" {
			if public {
				return handler(ctx, req)
			}
			return nil, status.Error(codes.Unauthenticated, "missing or invalid authorization")
		}

		userID, err := tokens.ValidateAccess(token)
		if err != nil {
			if public {
				return handler(ctx, req)
			}
			log.Debug("auth: rejected token", zap.String("method", info.FullMethod), zap.Error(err))
			return nil, status.Error(codes.Unauthenticated, "missing or invalid authorization")
		}

		return handler(WithIdentity(ctx, userID), req)
	}
}

// extractBearer returns the Bearer token from ctx metadata, or "" if missing or malformed.
func extractBearer(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return ""
	}
	v := strings.TrimSpace(vals[0])
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
