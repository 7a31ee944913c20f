// Package service implements registration, password login and the current-user lookup.
package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskhub/internal/audit"
	identitydomain "taskhub/internal/identity/domain"
	"taskhub/internal/platform/errs"
	"taskhub/internal/security"
	"taskhub/internal/store"
	userdomain "taskhub/internal/user/domain"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AuthResult holds the outcome of Login.
type AuthResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *userdomain.User
}

// AuthService implements password-only register and login.
type AuthService struct {
	store  store.TxStore
	hasher *security.Hasher
	tokens *security.TokenProvider
	audit  audit.AuditLogger
	log    *zap.Logger
	now    func() time.Time
}

// NewAuthService returns an AuthService. auditLogger may be nil.
func NewAuthService(st store.TxStore, hasher *security.Hasher, tokens *security.TokenProvider, auditLogger audit.AuditLogger, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		store:  st,
		hasher: hasher,
		tokens: tokens,
		audit:  auditLogger,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a user and local identity with the given email and password.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*userdomain.User, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, errs.InvalidArgument("password must be at least %d characters", MinPasswordLength)
	}
	hashed, err := s.hasher.Hash(password)
	if errors.Is(err, security.ErrPasswordTooLong) {
		return nil, errs.InvalidArgument("password must be at most %d bytes", security.MaxPasswordBytes)
	}
	if err != nil {
		return nil, errs.Internal(err, "failed to hash password")
	}
	now := s.now()
	user := &userdomain.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
	}
	if err := user.Validate(); err != nil {
		return nil, errs.InvalidArgument("%s", err.Error())
	}
	ident := &identitydomain.Identity{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		Provider:     identitydomain.IdentityProviderLocal,
		ProviderID:   email,
		PasswordHash: hashed,
		CreatedAt:    now,
	}
	err = s.store.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		existing, err := st.GetUserByEmail(ctx, email)
		if err != nil {
			return errs.Internal(err, "failed to look up user")
		}
		if existing != nil {
			return errs.Conflict("email already registered")
		}
		if err := st.CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return errs.Conflict("email already registered")
			}
			return errs.Internal(err, "failed to create user")
		}
		if err := st.CreateIdentity(ctx, ident); err != nil {
			return errs.Internal(err, "failed to create identity")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, user.ID, "user_registered", user.ID)
	return user, nil
}

// Login authenticates with email/password and returns a signed access token. Every credential
// failure is reported as the same Unauthenticated error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, s.loginFailed(ctx, "", email)
	}
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, errs.Internal(err, "failed to look up user")
	}
	if user == nil {
		s.hasher.Burn(password)
		return nil, s.loginFailed(ctx, "", email)
	}
	ident, err := s.store.GetIdentity(ctx, user.ID, identitydomain.IdentityProviderLocal)
	if err != nil {
		return nil, errs.Internal(err, "failed to look up identity")
	}
	if ident == nil || ident.PasswordHash == "" {
		return nil, s.loginFailed(ctx, user.ID, email)
	}
	if !s.hasher.Verify(ident.PasswordHash, password) {
		return nil, s.loginFailed(ctx, user.ID, email)
	}
	token, exp, err := s.tokens.IssueAccess(user.ID, user.Email)
	if err != nil {
		return nil, errs.Internal(err, "failed to issue token")
	}
	s.record(ctx, user.ID, "login_success", user.ID)
	return &AuthResult{AccessToken: token, ExpiresAt: exp, User: user}, nil
}

// Me returns the user identified by userID.
func (s *AuthService) Me(ctx context.Context, userID string) (*userdomain.User, error) {
	if userID == "" {
		return nil, errs.Unauthenticated("missing identity")
	}
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, errs.Internal(err, "failed to load user")
	}
	if u == nil {
		return nil, errs.NotFound("user not found")
	}
	return u, nil
}

func (s *AuthService) loginFailed(ctx context.Context, userID, email string) error {
	s.log.Info("login failed", zap.String("user_id", userID))
	if s.audit != nil {
		s.audit.LogEvent(ctx, audit.SentinelWorkspaceID, userID, "login_failure", "authentication", "", email)
	}
	return errs.Unauthenticated("invalid credentials")
}

func (s *AuthService) record(ctx context.Context, userID, action, resourceID string) {
	if s.audit == nil {
		return
	}
	s.audit.LogEvent(ctx, audit.SentinelWorkspaceID, userID, action, "user", resourceID, "")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return errs.InvalidArgument("email is required")
	}
	if !emailPattern.MatchString(email) {
		return errs.InvalidArgument("invalid email format")
	}
	return nil
}
