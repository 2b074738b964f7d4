// File: internal/provider/database_test.go
package provider

import (
	"context"
	"testing"
	"time"

	"nujum_backend/internal/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "Failed to open in-memory sqlite")

	// a single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, AutoMigrate(db))
	return db
}

func newDatabaseProvider(t *testing.T, tokenTTL time.Duration) (*DatabaseProvider, *gorm.DB) {
	db := newTestDB(t)
	cfg := &config.Config{
		SessionTokenSecret: "test-secret",
		SessionTokenTTL:    tokenTTL,
	}
	p := NewDatabaseProvider(db, NewGORMProfileRepository(db), cfg, zap.NewNop())
	return p, db
}

func TestDatabaseProviderSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	p, db := newDatabaseProvider(t, time.Hour)

	id, err := p.SignUp(ctx, "Sara@Example.com", "Abcdef12")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	require.NoError(t, p.SignIn(ctx, "sara@example.com", "Abcdef12"))

	current, ok, err := p.CurrentUser(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, id, current)

	// profile row shares the identity id
	profile, err := p.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "sara@example.com", profile.Email)

	var sessionCount int64
	require.NoError(t, db.Model(&SessionRow{}).Count(&sessionCount).Error)
	assert.EqualValues(t, 1, sessionCount)
}

func TestDatabaseProviderRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	p, _ := newDatabaseProvider(t, time.Hour)

	_, err := p.SignUp(ctx, "sara@example.com", "Abcdef12")
	require.NoError(t, err)

	assert.ErrorIs(t, p.SignIn(ctx, "sara@example.com", "wrong"), ErrInvalidCredentials)
	assert.ErrorIs(t, p.SignIn(ctx, "nobody@example.com", "Abcdef12"), ErrInvalidCredentials)
}

func TestDatabaseProviderDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	p, _ := newDatabaseProvider(t, time.Hour)

	_, err := p.SignUp(ctx, "sara@example.com", "Abcdef12")
	require.NoError(t, err)

	_, err = p.SignUp(ctx, "SARA@example.com", "Other1234")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestDatabaseProviderNewSignInReplacesSession(t *testing.T) {
	ctx := context.Background()
	p, db := newDatabaseProvider(t, time.Hour)

	_, err := p.SignUp(ctx, "sara@example.com", "Abcdef12")
	require.NoError(t, err)

	require.NoError(t, p.SignIn(ctx, "sara@example.com", "Abcdef12"))
	require.NoError(t, p.SignIn(ctx, "sara@example.com", "Abcdef12"))

	var sessionCount int64
	require.NoError(t, db.Model(&SessionRow{}).Count(&sessionCount).Error)
	assert.EqualValues(t, 1, sessionCount)
}

func TestDatabaseProviderExpiredTokenBecomesSignOut(t *testing.T) {
	ctx := context.Background()
	// negative TTL issues tokens that are already expired
	p, db := newDatabaseProvider(t, -time.Minute)

	id, err := p.SignUp(ctx, "sara@example.com", "Abcdef12")
	require.NoError(t, err)

	var events []Event
	unsubscribe := p.OnSessionChange(func(e Event) { events = append(events, e) })
	defer unsubscribe()

	require.NoError(t, p.SignIn(ctx, "sara@example.com", "Abcdef12"))

	_, ok, err := p.CurrentUser(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "expired token must not resume a session")

	// the expired row is purged and subscribers heard a sign-out
	var sessionCount int64
	require.NoError(t, db.Model(&SessionRow{}).Count(&sessionCount).Error)
	assert.Zero(t, sessionCount)

	require.Len(t, events, 2)
	assert.Equal(t, EventSignedIn, events[0].Type)
	assert.Equal(t, Event{Type: EventSignedOut, UserID: id}, events[1])
}

func TestDatabaseProviderSignOut(t *testing.T) {
	ctx := context.Background()
	p, db := newDatabaseProvider(t, time.Hour)

	id, err := p.SignUp(ctx, "sara@example.com", "Abcdef12")
	require.NoError(t, err)
	require.NoError(t, p.SignIn(ctx, "sara@example.com", "Abcdef12"))

	var events []Event
	unsubscribe := p.OnSessionChange(func(e Event) { events = append(events, e) })
	defer unsubscribe()

	require.NoError(t, p.SignOut(ctx))

	var sessionCount int64
	require.NoError(t, db.Model(&SessionRow{}).Count(&sessionCount).Error)
	assert.Zero(t, sessionCount)

	require.Len(t, events, 1)
	assert.Equal(t, Event{Type: EventSignedOut, UserID: id}, events[0])

	// signing out with no session is a quiet no-op
	require.NoError(t, p.SignOut(ctx))
	assert.Len(t, events, 1)
}

func TestDatabaseProviderUpdateProfile(t *testing.T) {
	ctx := context.Background()
	p, _ := newDatabaseProvider(t, time.Hour)

	id, err := p.SignUp(ctx, "sara@example.com", "Abcdef12")
	require.NoError(t, err)

	err = p.UpdateProfile(ctx, id, map[string]interface{}{
		"full_name":            "Sara Ahmed",
		"disability_type":      "visual",
		"country_of_residence": "United Arab Emirates",
	})
	require.NoError(t, err)

	profile, err := p.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Sara Ahmed", profile.FullName)
	assert.Equal(t, "visual", string(profile.DisabilityType))
	assert.Equal(t, "United Arab Emirates", profile.CountryOfResidence)

	assert.ErrorIs(t, p.UpdateProfile(ctx, uuid.New(), map[string]interface{}{"bio": "x"}), ErrProfileNotFound)
}
