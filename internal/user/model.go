// File: internal/user/model.go
package user

import (
	"time"

	"github.com/google/uuid"
)

// DisabilityType is the internal disability category code.
type DisabilityType string

const (
	DisabilityPhysical  DisabilityType = "physical"
	DisabilityVisual    DisabilityType = "visual"
	DisabilityHearing   DisabilityType = "hearing"
	DisabilityCognitive DisabilityType = "cognitive"
	DisabilitySpeech    DisabilityType = "speech"
	DisabilityMultiple  DisabilityType = "multiple"
	DisabilityOther     DisabilityType = "other"
)

// VerificationStatus tracks document-based account verification.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationPending    VerificationStatus = "pending"
	VerificationVerified   VerificationStatus = "verified"
	VerificationRejected   VerificationStatus = "rejected"
)

// User is the local user model. While a session is active it is owned by the
// session manager; the remote identity provider stays the durable source of
// truth.
type User struct {
	ID                 uuid.UUID          `json:"id"`
	Username           string             `json:"username"`
	FullName           string             `json:"full_name"`
	Email              string             `json:"email"`
	Phone              string             `json:"phone"`
	ProfilePicture     *string            `json:"profile_picture,omitempty"`
	DisabilityType     DisabilityType     `json:"disability_type"`
	CountryOfResidence string             `json:"country_of_residence"`
	Nationality        *string            `json:"nationality,omitempty"`
	Gender             *string            `json:"gender,omitempty"`
	DateOfBirth        *string            `json:"date_of_birth,omitempty"`
	IsVerified         bool               `json:"is_verified"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	Bio                *string            `json:"bio,omitempty"`
	BloodGroup         *string            `json:"blood_group,omitempty"`
	EmergencyContact   *string            `json:"emergency_contact,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// SignupData is the fully assembled registration draft handed to the
// credential gateway. Password is plaintext and must only ever live in
// memory; no durable store accepts it.
type SignupData struct {
	Username           string
	FullName           string
	Email              string
	Phone              string
	Password           string // plaintext, handed to the provider and discarded
	DisabilityType     string // display name, mapped through DisabilityTypeFromDisplay
	CountryOfResidence string
	Nationality        string
	Gender             string
	DateOfBirth        string
	ProfilePicture     string
	Bio                string
	BloodGroup         string
	EmergencyContact   string
}

// ProfileUpdate is a partial update of the profile fields a user may change.
// Nil means "leave unchanged".
type ProfileUpdate struct {
	Username           *string         `json:"username,omitempty"`
	FullName           *string         `json:"full_name,omitempty"`
	Phone              *string         `json:"phone,omitempty"`
	ProfilePicture     *string         `json:"profile_picture,omitempty"`
	DisabilityType     *DisabilityType `json:"disability_type,omitempty" binding:"omitempty,oneof=physical visual hearing cognitive speech multiple other"`
	CountryOfResidence *string         `json:"country_of_residence,omitempty"`
	Nationality        *string         `json:"nationality,omitempty"`
	Gender             *string         `json:"gender,omitempty"`
	DateOfBirth        *string         `json:"date_of_birth,omitempty"`
	Bio                *string         `json:"bio,omitempty"`
	BloodGroup         *string         `json:"blood_group,omitempty"`
	EmergencyContact   *string         `json:"emergency_contact,omitempty"`
}

// IsEmpty reports whether the update carries no changes.
func (p ProfileUpdate) IsEmpty() bool {
	return len(p.RemoteFields()) == 0
}

// displayNameToCode maps the display names offered during profile completion
// to internal disability codes. Unknown names fall back to "other".
var displayNameToCode = map[string]DisabilityType{
	"Physical Disability":      DisabilityPhysical,
	"Visual Impairment":        DisabilityVisual,
	"Hearing Impairment":       DisabilityHearing,
	"Cognitive Disability":     DisabilityCognitive,
	"Communication Disability": DisabilitySpeech,
	"Autism Spectrum Disorder": DisabilityCognitive,
	"Mental Health Conditions": DisabilityCognitive,
	"Chronic Illness":          DisabilityOther,
	"Mobility Impairment":      DisabilityPhysical,
	"Other":                    DisabilityOther,
}

// DisabilityTypeFromDisplay maps a display name to its internal code. Inputs
// that are already internal codes pass through unchanged.
func DisabilityTypeFromDisplay(display string) DisabilityType {
	if code, ok := displayNameToCode[display]; ok {
		return code
	}
	switch DisabilityType(display) {
	case DisabilityPhysical, DisabilityVisual, DisabilityHearing,
		DisabilityCognitive, DisabilitySpeech, DisabilityMultiple, DisabilityOther:
		return DisabilityType(display)
	}
	return DisabilityOther
}
