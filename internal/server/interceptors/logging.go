package interceptors

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// LoggingUnary returns a unary server interceptor that logs method, code and duration of each RPC.
// Server-side failures log at error level and other non-OK codes at warn.
func LoggingUnary(log *zap.Logger, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if skipMethods[info.FullMethod] {
			return resp, err
		}
		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("duration", time.Since(start)),
		}
		if userID, ok := GetUserID(ctx); ok {
			fields = append(fields, zap.String("user_id", userID))
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		log.Check(levelFor(code), "grpc request").Write(fields...)
		return resp, err
	}
}

func levelFor(code codes.Code) zapcore.Level {
	switch code {
	case codes.OK:
		return zapcore.InfoLevel
	case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}
