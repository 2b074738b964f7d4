// File: internal/user/adapter_test.go
package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestProfileUpdateRemoteFields(t *testing.T) {
	t.Run("renamed fields use remote column names", func(t *testing.T) {
		dt := DisabilityVisual
		update := ProfileUpdate{
			FullName:           strPtr("Sara Ahmed"),
			ProfilePicture:     strPtr("avatars/sara.png"),
			DisabilityType:     &dt,
			CountryOfResidence: strPtr("United Arab Emirates"),
			DateOfBirth:        strPtr("1995-04-12"),
			BloodGroup:         strPtr("O+"),
			EmergencyContact:   strPtr("+971501234567"),
		}

		fields := update.RemoteFields()

		expected := map[string]interface{}{
			"full_name":            "Sara Ahmed",
			"profile_picture":      "avatars/sara.png",
			"disability_type":      "visual",
			"country_of_residence": "United Arab Emirates",
			"date_of_birth":        "1995-04-12",
			"blood_group":          "O+",
			"emergency_contact":    "+971501234567",
		}
		assert.Equal(t, expected, fields)
	})

	t.Run("verbatim fields keep their names", func(t *testing.T) {
		update := ProfileUpdate{
			Username:    strPtr("sara"),
			Phone:       strPtr("+971501234567"),
			Nationality: strPtr("Emirati"),
			Gender:      strPtr("female"),
			Bio:         strPtr("hello"),
		}

		fields := update.RemoteFields()

		assert.Equal(t, "sara", fields["username"])
		assert.Equal(t, "+971501234567", fields["phone"])
		assert.Equal(t, "Emirati", fields["nationality"])
		assert.Equal(t, "female", fields["gender"])
		assert.Equal(t, "hello", fields["bio"])
	})

	t.Run("nil fields are omitted entirely", func(t *testing.T) {
		update := ProfileUpdate{FullName: strPtr("Only Name")}
		fields := update.RemoteFields()
		require.Len(t, fields, 1)
		assert.False(t, update.IsEmpty())
		assert.True(t, ProfileUpdate{}.IsEmpty())
	})
}

func TestDisabilityTypeFromDisplay(t *testing.T) {
	tests := []struct {
		display string
		want    DisabilityType
	}{
		{"Physical Disability", DisabilityPhysical},
		{"Mobility Impairment", DisabilityPhysical},
		{"Visual Impairment", DisabilityVisual},
		{"Hearing Impairment", DisabilityHearing},
		{"Cognitive Disability", DisabilityCognitive},
		{"Autism Spectrum Disorder", DisabilityCognitive},
		{"Mental Health Conditions", DisabilityCognitive},
		{"Communication Disability", DisabilitySpeech},
		{"Chronic Illness", DisabilityOther},
		{"Other", DisabilityOther},
		// internal codes pass through
		{"visual", DisabilityVisual},
		{"multiple", DisabilityMultiple},
		// anything unknown falls back
		{"Something Unlisted", DisabilityOther},
		{"", DisabilityOther},
	}

	for _, tc := range tests {
		t.Run(tc.display, func(t *testing.T) {
			assert.Equal(t, tc.want, DisabilityTypeFromDisplay(tc.display))
		})
	}
}

func TestSignupProfileFieldsMapsDisabilityAtBoundary(t *testing.T) {
	data := SignupData{
		Username:           "sara",
		FullName:           "Sara Ahmed",
		Email:              "sara@example.com",
		Phone:              "+971501234567",
		DisabilityType:     "Visual Impairment",
		CountryOfResidence: "United Arab Emirates",
	}

	fields := data.SignupProfileFields()

	assert.Equal(t, "visual", fields["disability_type"])
	assert.Equal(t, "Sara Ahmed", fields["full_name"])
	assert.Equal(t, "United Arab Emirates", fields["country_of_residence"])
	// optional fields that were never set do not appear
	_, hasBio := fields["bio"]
	assert.False(t, hasBio)
	_, hasDOB := fields["date_of_birth"]
	assert.False(t, hasDOB)
}

func TestApplyRemoteFields(t *testing.T) {
	u := &User{Username: "old", FullName: "Old Name"}

	ApplyRemoteFields(u, map[string]interface{}{
		"username":          "new",
		"full_name":         "New Name",
		"disability_type":   "hearing",
		"blood_group":       "A-",
		"emergency_contact": "+971509999999",
	})

	assert.Equal(t, "new", u.Username)
	assert.Equal(t, "New Name", u.FullName)
	assert.Equal(t, DisabilityHearing, u.DisabilityType)
	require.NotNil(t, u.BloodGroup)
	assert.Equal(t, "A-", *u.BloodGroup)
	require.NotNil(t, u.EmergencyContact)
	assert.Equal(t, "+971509999999", *u.EmergencyContact)
	// untouched fields stay untouched
	assert.Nil(t, u.Bio)
}
