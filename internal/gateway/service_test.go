// File: internal/gateway/service_test.go
package gateway

import (
	"context"
	"testing"

	"nujum_backend/internal/common"
	"nujum_backend/internal/prefs"
	"nujum_backend/internal/provider"
	"nujum_backend/internal/session"
	"nujum_backend/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGateway(t *testing.T) (*Service, *provider.MemoryProvider, *session.Manager) {
	p := provider.NewMemoryProvider()
	m := session.NewManager(p, prefs.NewMemoryStore(), zap.NewNop())
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(m.Close)
	return NewService(p, m, zap.NewNop()), p, m
}

func assertAPIErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok, "expected an APIError, got %v", err)
	assert.Equal(t, code, apiErr.Code)
}

func validSignupData() user.SignupData {
	return user.SignupData{
		Username:           "sara",
		FullName:           "Sara Ahmed",
		Email:              "sara@example.com",
		Phone:              "+971501234567",
		Password:           "Abcdef12",
		DisabilityType:     "Visual Impairment",
		CountryOfResidence: "United Arab Emirates",
	}
}

func TestLoginEstablishesSession(t *testing.T) {
	ctx := context.Background()
	svc, p, m := newTestGateway(t)

	_, err := p.SignUp(ctx, "sara@example.com", "Abcdef12")
	require.NoError(t, err)

	require.NoError(t, svc.Login(ctx, "sara@example.com", "Abcdef12"))

	s := m.Snapshot()
	assert.True(t, s.IsAuthenticated)
	require.NotNil(t, s.User)
	assert.Equal(t, "sara@example.com", s.User.Email)
}

func TestLoginRejectionLeavesSessionUnauthenticated(t *testing.T) {
	ctx := context.Background()
	svc, p, m := newTestGateway(t)

	_, err := p.SignUp(ctx, "sara@example.com", "Abcdef12")
	require.NoError(t, err)

	err = svc.Login(ctx, "sara@example.com", "wrong-password")
	assertAPIErrorCode(t, err, "AUTH_FAILED")
	assert.False(t, m.Snapshot().IsAuthenticated)
}

func TestSignupValidatesBeforeAnyNetworkCall(t *testing.T) {
	ctx := context.Background()
	svc, p, _ := newTestGateway(t)

	tests := []struct {
		name   string
		mutate func(*user.SignupData)
	}{
		{"missing username", func(d *user.SignupData) { d.Username = "" }},
		{"missing email", func(d *user.SignupData) { d.Email = "" }},
		{"malformed email", func(d *user.SignupData) { d.Email = "not-an-email" }},
		{"missing password", func(d *user.SignupData) { d.Password = "" }},
		{"short password", func(d *user.SignupData) { d.Password = "Abc12" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := validSignupData()
			tc.mutate(&data)

			_, err := svc.Signup(ctx, data)
			assertAPIErrorCode(t, err, "VALIDATION_ERROR")
		})
	}

	// none of the rejected attempts reached the provider
	assert.ErrorIs(t, p.SignIn(ctx, "sara@example.com", "Abcdef12"), provider.ErrInvalidCredentials)
}

func TestSignupCreatesAccountAndSignsIn(t *testing.T) {
	ctx := context.Background()
	svc, p, m := newTestGateway(t)

	id, err := svc.Signup(ctx, validSignupData())
	require.NoError(t, err)

	s := m.Snapshot()
	require.True(t, s.IsAuthenticated)
	assert.Equal(t, id, s.User.ID)

	// the extended profile went through the field-mapping table
	profile, err := p.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Sara Ahmed", profile.FullName)
	assert.Equal(t, user.DisabilityVisual, profile.DisabilityType)
	assert.Equal(t, "United Arab Emirates", profile.CountryOfResidence)
	assert.Equal(t, "sara", profile.Username)
}

func TestSignupDuplicateEmailIsAuthError(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestGateway(t)

	_, err := svc.Signup(ctx, validSignupData())
	require.NoError(t, err)

	_, err = svc.Signup(ctx, validSignupData())
	assertAPIErrorCode(t, err, "AUTH_FAILED")
}

func TestSignupProfilePopulationFailure(t *testing.T) {
	ctx := context.Background()
	svc, p, m := newTestGateway(t)

	p.FailProfileUpdates(assert.AnError)

	_, err := svc.Signup(ctx, validSignupData())
	assertAPIErrorCode(t, err, "PROFILE_CREATION_FAILED")

	// the orphaned identity's id is surfaced for a completion retry
	apiErr, _ := common.IsAPIError(err)
	details, ok := apiErr.Details.(map[string]string)
	require.True(t, ok)
	assert.NotEmpty(t, details["remote_id"])

	assert.False(t, m.Snapshot().IsAuthenticated)
}

func TestLogoutIsInfallible(t *testing.T) {
	ctx := context.Background()
	svc, _, m := newTestGateway(t)

	_, err := svc.Signup(ctx, validSignupData())
	require.NoError(t, err)
	require.True(t, m.Snapshot().IsAuthenticated)

	require.NoError(t, svc.Logout(ctx))
	assert.False(t, m.Snapshot().IsAuthenticated)

	// logging out without a session is still fine
	require.NoError(t, svc.Logout(ctx))
}

func TestLogoutClearsSessionEvenWhenProviderFails(t *testing.T) {
	svc, _, m := newTestGateway(t)

	_, err := svc.Signup(context.Background(), validSignupData())
	require.NoError(t, err)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, svc.Logout(canceled))
	assert.False(t, m.Snapshot().IsAuthenticated)
}

func TestUpdateProfileRequiresSession(t *testing.T) {
	svc, _, _ := newTestGateway(t)

	name := "Sara A."
	err := svc.UpdateProfile(context.Background(), user.ProfileUpdate{FullName: &name})
	assertAPIErrorCode(t, err, "NOT_AUTHENTICATED")
}

func TestUpdateProfileMergesAfterRemoteSuccess(t *testing.T) {
	ctx := context.Background()
	svc, p, m := newTestGateway(t)

	id, err := svc.Signup(ctx, validSignupData())
	require.NoError(t, err)

	name := "Sara A."
	blood := "O+"
	require.NoError(t, svc.UpdateProfile(ctx, user.ProfileUpdate{
		FullName:   &name,
		BloodGroup: &blood,
	}))

	// both the remote profile and the in-memory session were updated
	profile, err := p.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Sara A.", profile.FullName)

	s := m.Snapshot()
	assert.Equal(t, "Sara A.", s.User.FullName)
	require.NotNil(t, s.User.BloodGroup)
	assert.Equal(t, "O+", *s.User.BloodGroup)
}

func TestUpdateProfileFailureLeavesLocalStateUntouched(t *testing.T) {
	ctx := context.Background()
	svc, p, m := newTestGateway(t)

	_, err := svc.Signup(ctx, validSignupData())
	require.NoError(t, err)
	before := m.Snapshot()

	p.FailProfileUpdates(assert.AnError)

	name := "Sara A."
	err = svc.UpdateProfile(ctx, user.ProfileUpdate{FullName: &name})
	assertAPIErrorCode(t, err, "PERSISTENCE_FAILED")

	// no optimistic merge happened
	assert.Equal(t, before.User.FullName, m.Snapshot().User.FullName)
}

func TestUpdateProfileWithNoChangesIsANoOp(t *testing.T) {
	ctx := context.Background()
	svc, p, _ := newTestGateway(t)

	_, err := svc.Signup(ctx, validSignupData())
	require.NoError(t, err)

	// even a failing provider is never consulted for an empty update
	p.FailProfileUpdates(assert.AnError)
	require.NoError(t, svc.UpdateProfile(ctx, user.ProfileUpdate{}))
}
