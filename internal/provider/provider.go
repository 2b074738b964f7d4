// File: internal/provider/provider.go

// Package provider abstracts the remote identity/profile service behind a
// narrow capability interface so the session core can run against an
// in-memory fake, the database-hosted backend or Firebase without the rest of
// the application knowing which one is active.
package provider

import (
	"context"
	"errors"

	"nujum_backend/internal/user"

	"github.com/google/uuid"
)

// EventType enumerates session-change notifications.
type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventSignedOut EventType = "signed_out"
)

// Event is a session-change notification delivered to subscribers. Future
// sign-in/sign-out events can originate from any source: an explicit call, an
// expired token, or another client of the same provider.
type Event struct {
	Type   EventType
	UserID uuid.UUID
}

// Sentinel errors. The credential gateway translates these into the API error
// taxonomy; provider-specific error shapes never travel further than this.
var (
	ErrInvalidCredentials = errors.New("provider: invalid email or password")
	ErrEmailTaken         = errors.New("provider: an account with this email already exists")
	ErrNoSession          = errors.New("provider: no current session")
	ErrProfileNotFound    = errors.New("provider: profile not found")
)

// Provider is the capability interface of the remote identity/profile
// service. Implementations must publish EventSignedIn after a successful
// SignIn and EventSignedOut after SignOut, so that callers can rely on the
// notification path alone to react to session changes.
type Provider interface {
	// SignIn authenticates with email and password. It does not return the
	// user; consumers react to the session-change event instead.
	SignIn(ctx context.Context, email, password string) error

	// SignUp creates a new identity and returns its id. It does not
	// establish a session and does not populate profile fields beyond the
	// email.
	SignUp(ctx context.Context, email, password string) (uuid.UUID, error)

	// SignOut terminates the current session. Implementations publish
	// EventSignedOut even when parts of the teardown fail.
	SignOut(ctx context.Context) error

	// CurrentUser reports the identity of a currently valid session, if any.
	CurrentUser(ctx context.Context) (uuid.UUID, bool, error)

	// OnSessionChange registers a callback for session-change events and
	// returns a function releasing the subscription.
	OnSessionChange(fn func(Event)) (unsubscribe func())

	// GetProfile loads the full profile for an identity.
	GetProfile(ctx context.Context, id uuid.UUID) (*user.User, error)

	// UpdateProfile applies a partial update keyed by remote column names.
	UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
}
