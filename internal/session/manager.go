// File: internal/session/manager.go
package session

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"nujum_backend/internal/prefs"
	"nujum_backend/internal/provider"
	"nujum_backend/internal/user"

	"go.uber.org/zap"
)

// Manager is the session state machine. It is an explicit, injectable
// container (never a package-level global) so tests can run independent
// instances side by side.
//
// States: Unauthenticated (initial) and Authenticated(User). The explicit
// call path and the provider notification path may interleave; both are
// idempotent with respect to setting the same terminal state.
type Manager struct {
	provider provider.Provider
	prefs    prefs.Store
	logger   *zap.Logger

	mu          sync.Mutex
	state       Session
	subscribers map[int]chan Session
	nextSub     int
	unsubscribe func()
	closed      bool
}

// NewManager creates a session manager in the Unauthenticated state with
// default preferences.
func NewManager(p provider.Provider, store prefs.Store, logger *zap.Logger) *Manager {
	return &Manager{
		provider:    p,
		prefs:       store,
		logger:      logger.Named("SessionManager"),
		state:       defaultSession(),
		subscribers: make(map[int]chan Session),
	}
}

// Start subscribes to the provider's session-change stream for the Manager's
// lifetime and then performs the two independent initialization checks:
// apply durable preferences, resume a still-valid remote session. The
// subscription comes first so a sign-in or sign-out landing while the checks
// run is not missed.
func (m *Manager) Start(ctx context.Context) error {
	unsubscribe := m.provider.OnSessionChange(m.handleEvent)
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		unsubscribe()
		return fmt.Errorf("session manager already closed")
	}
	m.unsubscribe = unsubscribe
	m.mu.Unlock()

	m.loadPreferences(ctx)

	id, ok, err := m.provider.CurrentUser(ctx)
	if err != nil {
		// Treated like an absent session; the provider remains the source
		// of truth and a later notification can still establish one.
		m.logger.Warn("Current-session check failed at startup", zap.Error(err))
	} else if ok {
		u, err := m.provider.GetProfile(ctx, id)
		if err != nil {
			m.logger.Error("Failed to load profile for resumed session", zap.Error(err), zap.String("userID", id.String()))
		} else {
			m.applyUser(u)
		}
	}
	return nil
}

// Close releases the provider subscription and all consumer subscriptions.
// Safe to call more than once.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	subs := m.subscribers
	m.subscribers = make(map[int]chan Session)
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	for _, ch := range subs {
		close(ch)
	}
}

// Snapshot returns a copy of the current session. The contained user is
// copied so callers cannot mutate manager state through it.
func (m *Manager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Session {
	s := m.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Subscribe returns a channel receiving session snapshots after each change,
// plus a cancel function releasing the subscription. Slow consumers miss
// intermediate snapshots rather than blocking the manager.
func (m *Manager) Subscribe() (<-chan Session, func()) {
	ch := make(chan Session, 8)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = ch
	m.mu.Unlock()

	return ch, func() {
		m.mu.Lock()
		if existing, ok := m.subscribers[id]; ok {
			delete(m.subscribers, id)
			close(existing)
		}
		m.mu.Unlock()
	}
}

// handleEvent reacts to provider sign-in/sign-out notifications from any
// source (explicit call, expired token, another client).
func (m *Manager) handleEvent(e provider.Event) {
	switch e.Type {
	case provider.EventSignedIn:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		u, err := m.provider.GetProfile(ctx, e.UserID)
		if err != nil {
			m.logger.Error("Failed to load profile after sign-in notification",
				zap.Error(err), zap.String("userID", e.UserID.String()))
			return
		}
		m.applyUser(u)
	case provider.EventSignedOut:
		m.clearUser()
	}
}

// applyUser transitions to Authenticated(User). Applying an identical user
// twice is a no-op in effect: subscribers are not re-notified.
func (m *Manager) applyUser(u *user.User) {
	m.mu.Lock()
	if m.state.User != nil && reflect.DeepEqual(m.state.User, u) {
		m.mu.Unlock()
		return
	}
	clone := *u
	m.state.User = &clone
	m.state.IsAuthenticated = true
	m.notifyLocked()
	m.mu.Unlock()
}

// clearUser transitions to Unauthenticated. Clearing twice is a no-op.
func (m *Manager) clearUser() {
	m.mu.Lock()
	if m.state.User == nil && !m.state.IsAuthenticated {
		m.mu.Unlock()
		return
	}
	m.state.User = nil
	m.state.IsAuthenticated = false
	m.notifyLocked()
	m.mu.Unlock()
}

// ApplyUser is the explicit-call entry point for login success.
func (m *Manager) ApplyUser(u *user.User) {
	m.applyUser(u)
}

// ClearUser is the explicit-call entry point for logout.
func (m *Manager) ClearUser() {
	m.clearUser()
}

// MergeProfileFields merges confirmed remote fields into the current user.
// Returns false when no session is active.
func (m *Manager) MergeProfileFields(fields map[string]interface{}) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.User == nil {
		return false
	}
	clone := *m.state.User
	user.ApplyRemoteFields(&clone, fields)
	clone.UpdatedAt = time.Now().UTC()
	m.state.User = &clone
	m.notifyLocked()
	return true
}

func (m *Manager) notifyLocked() {
	snapshot := m.snapshotLocked()
	for _, ch := range m.subscribers {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// loadPreferences reads the three durable keys once and applies recognized
// values; unrecognized or unreadable values fall back to defaults.
func (m *Manager) loadPreferences(ctx context.Context) {
	for _, key := range prefKeys {
		value, ok, err := m.prefs.Get(ctx, key)
		if err != nil {
			m.logger.Warn("Preference storage unavailable, using default", zap.String("key", key), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}

		m.mu.Lock()
		switch key {
		case prefs.KeyLanguage:
			if lang, valid := parseLanguage(value); valid {
				m.state.Language = lang
			}
		case prefs.KeyAccessibilityMode:
			if mode, valid := parseAccessibilityMode(value); valid {
				m.state.AccessibilityMode = mode
			}
		case prefs.KeyTheme:
			if theme, valid := parseTheme(value); valid {
				m.state.Theme = theme
			}
		}
		m.mu.Unlock()
	}
}

// SetLanguage updates the language preference and writes it through to
// durable storage. Preference changes are orthogonal to authentication
// state. Persistence failures are logged, not surfaced: the in-memory value
// is authoritative for this process and storage is best-effort.
func (m *Manager) SetLanguage(ctx context.Context, v string) error {
	lang, ok := parseLanguage(v)
	if !ok {
		return fmt.Errorf("invalid language %q", v)
	}

	m.mu.Lock()
	m.state.Language = lang
	m.notifyLocked()
	m.mu.Unlock()

	if err := m.prefs.Set(ctx, prefs.KeyLanguage, string(lang)); err != nil {
		m.logger.Warn("Failed to persist language preference", zap.Error(err))
	}
	return nil
}

// SetAccessibilityMode updates the accessibility mode preference.
func (m *Manager) SetAccessibilityMode(ctx context.Context, v string) error {
	mode, ok := parseAccessibilityMode(v)
	if !ok {
		return fmt.Errorf("invalid accessibility mode %q", v)
	}

	m.mu.Lock()
	m.state.AccessibilityMode = mode
	m.notifyLocked()
	m.mu.Unlock()

	if err := m.prefs.Set(ctx, prefs.KeyAccessibilityMode, string(mode)); err != nil {
		m.logger.Warn("Failed to persist accessibility mode preference", zap.Error(err))
	}
	return nil
}

// SetTheme updates the theme preference.
func (m *Manager) SetTheme(ctx context.Context, v string) error {
	theme, ok := parseTheme(v)
	if !ok {
		return fmt.Errorf("invalid theme %q", v)
	}

	m.mu.Lock()
	m.state.Theme = theme
	m.notifyLocked()
	m.mu.Unlock()

	if err := m.prefs.Set(ctx, prefs.KeyTheme, string(theme)); err != nil {
		m.logger.Warn("Failed to persist theme preference", zap.Error(err))
	}
	return nil
}
