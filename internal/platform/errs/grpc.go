package errs

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToStatus converts err into a gRPC status error. Errors that already carry a gRPC status are
// returned unchanged; internal failures are redacted.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, "request canceled")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}
	var e *Error
	if !errors.As(err, &e) {
		return status.Error(codes.Internal, "internal error")
	}
	switch e.Kind {
	case KindNotFound:
		return status.Error(codes.NotFound, e.Message)
	case KindForbidden:
		return status.Error(codes.PermissionDenied, e.Message)
	case KindInvalidArgument:
		return status.Error(codes.InvalidArgument, e.Message)
	case KindConflict:
		return status.Error(codes.AlreadyExists, e.Message)
	case KindUnauthenticated:
		return status.Error(codes.Unauthenticated, e.Message)
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
