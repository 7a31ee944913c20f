package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	taskhubv1 "taskhub/api/taskhub/v1"
	"taskhub/internal/identity/service"
	"taskhub/internal/platform/errs"
	"taskhub/internal/server/interceptors"
	userdomain "taskhub/internal/user/domain"
)

// AuthServer implements AuthService for registration, login and the current user.
type AuthServer struct {
	taskhubv1.UnimplementedAuthServiceServer
	auth *service.AuthService
}

// NewAuthServer returns a new Auth gRPC server. If auth is nil, every RPC returns Unimplemented.
func NewAuthServer(auth *service.AuthService) *AuthServer {
	return &AuthServer{auth: auth}
}

// Register creates a user with a local password identity.
func (s *AuthServer) Register(ctx context.Context, req *taskhubv1.RegisterRequest) (*taskhubv1.RegisterResponse, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method Register not implemented")
	}
	u, err := s.auth.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return nil, errs.ToStatus(err)
	}
	return &taskhubv1.RegisterResponse{User: UserToAPI(u)}, nil
}

// Login authenticates with email and password and returns an access token.
func (s *AuthServer) Login(ctx context.Context, req *taskhubv1.LoginRequest) (*taskhubv1.LoginResponse, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method Login not implemented")
	}
	res, err := s.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, errs.ToStatus(err)
	}
	return &taskhubv1.LoginResponse{
		AccessToken: res.AccessToken,
		ExpiresAt:   res.ExpiresAt,
		User:        UserToAPI(res.User),
	}, nil
}

// Me returns the authenticated user.
func (s *AuthServer) Me(ctx context.Context, req *taskhubv1.MeRequest) (*taskhubv1.MeResponse, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method Me not implemented")
	}
	userID, err := interceptors.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.auth.Me(ctx, userID)
	if err != nil {
		return nil, errs.ToStatus(err)
	}
	return &taskhubv1.MeResponse{User: UserToAPI(u)}, nil
}

// UserToAPI converts a domain user to its wire form.
func UserToAPI(u *userdomain.User) *taskhubv1.User {
	if u == nil {
		return nil
	}
	return &taskhubv1.User{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}
