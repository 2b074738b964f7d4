// File: internal/session/manager_test.go
package session

import (
	"context"
	"testing"

	"nujum_backend/internal/prefs"
	"nujum_backend/internal/provider"
	"nujum_backend/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T, p provider.Provider, store prefs.Store) *Manager {
	m := NewManager(p, store, zap.NewNop())
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(m.Close)
	return m
}

func signUpTestUser(t *testing.T, p *provider.MemoryProvider) uuid.UUID {
	id, err := p.SignUp(context.Background(), "sara@example.com", "Abcdef12")
	require.NoError(t, err)
	err = p.UpdateProfile(context.Background(), id, map[string]interface{}{
		"full_name":       "Sara Ahmed",
		"disability_type": "visual",
	})
	require.NoError(t, err)
	return id
}

// startupSignInProvider signs a user in from inside the current-session
// check, the way a session change can land while initialization is still
// running.
type startupSignInProvider struct {
	*provider.MemoryProvider
	t *testing.T
}

func (p *startupSignInProvider) CurrentUser(ctx context.Context) (uuid.UUID, bool, error) {
	require.NoError(p.t, p.MemoryProvider.SignIn(ctx, "sara@example.com", "Abcdef12"))
	return uuid.Nil, false, nil
}

func TestManagerStartsUnauthenticated(t *testing.T) {
	m := newTestManager(t, provider.NewMemoryProvider(), prefs.NewMemoryStore())

	s := m.Snapshot()
	assert.False(t, s.IsAuthenticated)
	assert.Nil(t, s.User)
	assert.Equal(t, LanguageEnglish, s.Language)
	assert.Equal(t, AccessibilityStandard, s.AccessibilityMode)
	assert.Equal(t, ThemeLight, s.Theme)
}

func TestManagerSignInEventPopulatesSession(t *testing.T) {
	p := provider.NewMemoryProvider()
	id := signUpTestUser(t, p)
	m := newTestManager(t, p, prefs.NewMemoryStore())

	require.NoError(t, p.SignIn(context.Background(), "sara@example.com", "Abcdef12"))

	s := m.Snapshot()
	require.True(t, s.IsAuthenticated)
	require.NotNil(t, s.User)
	assert.Equal(t, id, s.User.ID)
	assert.Equal(t, "Sara Ahmed", s.User.FullName)
}

func TestManagerStartCatchesEventsDuringInitialization(t *testing.T) {
	mem := provider.NewMemoryProvider()
	id := signUpTestUser(t, mem)

	m := newTestManager(t, &startupSignInProvider{MemoryProvider: mem, t: t}, prefs.NewMemoryStore())

	s := m.Snapshot()
	require.True(t, s.IsAuthenticated, "sign-in landing mid-initialization must not be lost")
	require.NotNil(t, s.User)
	assert.Equal(t, id, s.User.ID)
}

func TestManagerResumesExistingSession(t *testing.T) {
	p := provider.NewMemoryProvider()
	id := signUpTestUser(t, p)
	require.NoError(t, p.SignIn(context.Background(), "sara@example.com", "Abcdef12"))

	// a manager started afterwards picks the session up from the provider
	m := newTestManager(t, p, prefs.NewMemoryStore())

	s := m.Snapshot()
	require.True(t, s.IsAuthenticated)
	assert.Equal(t, id, s.User.ID)
}

func TestManagerExternalSignOutClearsSession(t *testing.T) {
	p := provider.NewMemoryProvider()
	signUpTestUser(t, p)
	m := newTestManager(t, p, prefs.NewMemoryStore())

	require.NoError(t, p.SignIn(context.Background(), "sara@example.com", "Abcdef12"))
	require.True(t, m.Snapshot().IsAuthenticated)

	// simulates a sign-out from another client of the same provider
	require.NoError(t, p.SignOut(context.Background()))

	s := m.Snapshot()
	assert.False(t, s.IsAuthenticated)
	assert.Nil(t, s.User)
}

func TestManagerTransitionsAreIdempotent(t *testing.T) {
	p := provider.NewMemoryProvider()
	m := newTestManager(t, p, prefs.NewMemoryStore())

	updates, cancel := m.Subscribe()
	defer cancel()

	u := &user.User{ID: uuid.New(), FullName: "Sara Ahmed"}
	m.ApplyUser(u)
	m.ApplyUser(u) // second apply of the identical user must not re-notify

	require.Len(t, updates, 1)
	<-updates

	m.ClearUser()
	m.ClearUser() // clearing twice must not re-notify

	require.Len(t, updates, 1)
	s := <-updates
	assert.False(t, s.IsAuthenticated)
}

func TestManagerSnapshotIsACopy(t *testing.T) {
	p := provider.NewMemoryProvider()
	m := newTestManager(t, p, prefs.NewMemoryStore())

	m.ApplyUser(&user.User{ID: uuid.New(), FullName: "Sara Ahmed"})

	s := m.Snapshot()
	s.User.FullName = "mutated"

	assert.Equal(t, "Sara Ahmed", m.Snapshot().User.FullName)
}

func TestManagerMergeProfileFields(t *testing.T) {
	p := provider.NewMemoryProvider()
	m := newTestManager(t, p, prefs.NewMemoryStore())

	assert.False(t, m.MergeProfileFields(map[string]interface{}{"bio": "x"}),
		"merge without a session must be refused")

	m.ApplyUser(&user.User{ID: uuid.New(), FullName: "Sara Ahmed"})
	assert.True(t, m.MergeProfileFields(map[string]interface{}{
		"full_name":   "Sara A.",
		"blood_group": "O+",
	}))

	s := m.Snapshot()
	assert.Equal(t, "Sara A.", s.User.FullName)
	require.NotNil(t, s.User.BloodGroup)
	assert.Equal(t, "O+", *s.User.BloodGroup)
}

func TestManagerPreferenceSetters(t *testing.T) {
	ctx := context.Background()
	store := prefs.NewMemoryStore()
	m := newTestManager(t, provider.NewMemoryProvider(), store)

	require.NoError(t, m.SetLanguage(ctx, "ar"))
	require.NoError(t, m.SetAccessibilityMode(ctx, "blind"))
	require.NoError(t, m.SetTheme(ctx, "dark"))

	s := m.Snapshot()
	assert.Equal(t, LanguageArabic, s.Language)
	assert.Equal(t, AccessibilityBlind, s.AccessibilityMode)
	assert.Equal(t, ThemeDark, s.Theme)

	// invalid values are rejected and leave state unchanged
	assert.Error(t, m.SetLanguage(ctx, "fr"))
	assert.Error(t, m.SetAccessibilityMode(ctx, "loud"))
	assert.Error(t, m.SetTheme(ctx, "neon"))
	assert.Equal(t, s, m.Snapshot())
}

func TestManagerPreferenceOrderIndependence(t *testing.T) {
	ctx := context.Background()

	first := newTestManager(t, provider.NewMemoryProvider(), prefs.NewMemoryStore())
	require.NoError(t, first.SetLanguage(ctx, "ar"))
	require.NoError(t, first.SetTheme(ctx, "dark"))

	second := newTestManager(t, provider.NewMemoryProvider(), prefs.NewMemoryStore())
	require.NoError(t, second.SetTheme(ctx, "dark"))
	require.NoError(t, second.SetLanguage(ctx, "ar"))

	assert.Equal(t, first.Snapshot(), second.Snapshot())
}

func TestManagerPreferencesSurviveRestart(t *testing.T) {
	ctx := context.Background()
	store := prefs.NewMemoryStore()

	first := NewManager(provider.NewMemoryProvider(), store, zap.NewNop())
	require.NoError(t, first.Start(ctx))
	require.NoError(t, first.SetLanguage(ctx, "ar"))
	require.NoError(t, first.SetAccessibilityMode(ctx, "motor-impaired"))
	first.Close()

	// a fresh manager over the same durable store applies the saved values
	second := newTestManager(t, provider.NewMemoryProvider(), store)
	s := second.Snapshot()
	assert.Equal(t, LanguageArabic, s.Language)
	assert.Equal(t, AccessibilityMotorImpaired, s.AccessibilityMode)
	assert.Equal(t, ThemeLight, s.Theme)
}

func TestManagerIgnoresUnrecognizedStoredPreferences(t *testing.T) {
	ctx := context.Background()
	store := prefs.NewMemoryStore()
	require.NoError(t, store.Set(ctx, prefs.KeyTheme, "neon"))
	require.NoError(t, store.Set(ctx, prefs.KeyLanguage, "ar"))

	m := newTestManager(t, provider.NewMemoryProvider(), store)

	s := m.Snapshot()
	assert.Equal(t, ThemeLight, s.Theme, "unknown stored value falls back to default")
	assert.Equal(t, LanguageArabic, s.Language)
}

func TestManagerCloseReleasesProviderSubscription(t *testing.T) {
	p := provider.NewMemoryProvider()
	signUpTestUser(t, p)

	m := NewManager(p, prefs.NewMemoryStore(), zap.NewNop())
	require.NoError(t, m.Start(context.Background()))
	m.Close()
	m.Close() // safe to call twice

	require.NoError(t, p.SignIn(context.Background(), "sara@example.com", "Abcdef12"))
	assert.False(t, m.Snapshot().IsAuthenticated,
		"a closed manager must no longer react to provider events")
}

func TestManagerSubscribeDeliversChanges(t *testing.T) {
	p := provider.NewMemoryProvider()
	m := newTestManager(t, p, prefs.NewMemoryStore())

	updates, cancel := m.Subscribe()

	m.ApplyUser(&user.User{ID: uuid.New(), FullName: "Sara Ahmed"})
	s := <-updates
	assert.True(t, s.IsAuthenticated)

	cancel()
	m.ClearUser()

	_, open := <-updates
	assert.False(t, open, "cancel must close the subscription channel")
}
