// File: internal/gateway/service.go

// Package gateway is the credential gateway: it wraps the identity
// provider's sign-in/sign-up/sign-out calls, translates errors into the API
// taxonomy and maps the local profile schema to the remote one. The page
// layer only ever talks to this package and the session manager.
package gateway

import (
	"context"
	"errors"
	"regexp"

	"nujum_backend/internal/common"
	"nujum_backend/internal/provider"
	"nujum_backend/internal/session"
	"nujum_backend/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// emailPattern is deliberately simple: something@something.something.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 8

// Service exposes the four credential operations.
type Service struct {
	provider provider.Provider
	session  *session.Manager
	logger   *zap.Logger
}

// NewService creates a new credential gateway.
func NewService(p provider.Provider, m *session.Manager, logger *zap.Logger) *Service {
	return &Service{
		provider: p,
		session:  m,
		logger:   logger.Named("CredentialGateway"),
	}
}

// Login delegates to the provider's password sign-in. On success it does not
// populate the session directly; the provider's session-change notification
// triggers the profile load, so the explicit path and the notification path
// cannot double-write.
func (s *Service) Login(ctx context.Context, email, password string) error {
	if err := s.provider.SignIn(ctx, email, password); err != nil {
		if errors.Is(err, provider.ErrInvalidCredentials) {
			s.logger.Info("Login rejected", zap.String("email", email))
			return common.ErrAuth.WithDetails("Invalid email or password.")
		}
		s.logger.Error("Login failed against identity provider", zap.Error(err))
		return common.ErrAuth.WithDetails("Login failed. Please try again.")
	}
	return nil
}

// Signup validates required fields locally, creates the remote identity,
// populates the extended profile through the field-mapping table, and
// finally signs the new account in so the session transitions to
// Authenticated via the usual notification path. The returned id is the new
// account's local id (uuid.Nil on failure).
func (s *Service) Signup(ctx context.Context, draft user.SignupData) (uuid.UUID, error) {
	if fieldErrors := validateSignup(draft); len(fieldErrors) > 0 {
		return uuid.Nil, common.NewValidationAPIError(fieldErrors)
	}

	id, err := s.provider.SignUp(ctx, draft.Email, draft.Password)
	if err != nil {
		if errors.Is(err, provider.ErrEmailTaken) {
			return uuid.Nil, common.ErrAuth.WithDetails("User with this email or username already exists.")
		}
		s.logger.Error("Identity creation failed", zap.Error(err))
		return uuid.Nil, common.ErrAuth.WithDetails("Signup failed. Please try again.")
	}

	if err := s.provider.UpdateProfile(ctx, id, draft.SignupProfileFields()); err != nil {
		// The identity now exists without a complete profile. Surface the
		// orphaned-identity state distinctly so callers can prompt a
		// profile-completion retry instead of a fresh signup. No automatic
		// rollback: remote idempotency is not guaranteed.
		s.logger.Error("Profile population failed after identity creation",
			zap.Error(err), zap.String("remoteID", id.String()))
		return uuid.Nil, common.ErrProfileCreation.WithDetails(map[string]string{
			"remote_id": id.String(),
		})
	}

	if err := s.provider.SignIn(ctx, draft.Email, draft.Password); err != nil {
		s.logger.Error("Sign-in after signup failed", zap.Error(err))
		return id, common.ErrAuth.WithDetails("Account created but sign-in failed. Please log in.")
	}
	return id, nil
}

// Logout is effectively infallible from the caller's perspective: local
// state is forced to Unauthenticated even when the provider call errors,
// which is only logged for diagnostics.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.provider.SignOut(ctx); err != nil {
		s.logger.Error("Provider sign-out failed; local session cleared anyway", zap.Error(err))
	}
	s.session.ClearUser()
	return nil
}

// UpdateProfile maps the changed fields to remote column names, sends a
// partial update and merges the accepted fields into the in-memory user only
// after the remote write succeeded. Local state is left untouched on failure.
func (s *Service) UpdateProfile(ctx context.Context, update user.ProfileUpdate) error {
	snapshot := s.session.Snapshot()
	if !snapshot.IsAuthenticated || snapshot.User == nil {
		return common.ErrNotAuthenticated
	}

	fields := update.RemoteFields()
	if len(fields) == 0 {
		return nil
	}

	if err := s.provider.UpdateProfile(ctx, snapshot.User.ID, fields); err != nil {
		s.logger.Error("Remote profile update failed", zap.Error(err), zap.String("userID", snapshot.User.ID.String()))
		return common.ErrPersistence.WithDetails("Could not save profile changes.")
	}

	if !s.session.MergeProfileFields(fields) {
		// Session ended between the check and the merge; the remote write
		// stands and the next profile load picks it up.
		s.logger.Warn("Session ended during profile update; merge skipped")
	}
	return nil
}

// validateSignup enforces the local preconditions: these failures never
// reach the network layer.
func validateSignup(draft user.SignupData) map[string]string {
	fieldErrors := make(map[string]string)
	if draft.Username == "" {
		fieldErrors["username"] = "The username field is required."
	}
	if draft.Email == "" {
		fieldErrors["email"] = "The email field is required."
	} else if !emailPattern.MatchString(draft.Email) {
		fieldErrors["email"] = "The email field must be a valid email address."
	}
	if draft.Password == "" {
		fieldErrors["password"] = "The password field is required."
	} else if len(draft.Password) < minPasswordLength {
		fieldErrors["password"] = "The password field must be at least 8 characters long."
	}
	return fieldErrors
}
