// File: internal/signup/model.go

// Package signup implements the staged registration pipeline: basic info,
// verification documents, password, completion. Each stage refuses to run
// until the previous one has recorded its data, and all intermediate state
// lives in an ephemeral draft keyed by a client-held token.
package signup

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage identifies a pipeline step.
type Stage string

const (
	StageBasic      Stage = "basic"
	StageDocuments  Stage = "documents"
	StagePassword   Stage = "password"
	StageCompletion Stage = "completion"
)

// DocumentCategory classifies an uploaded verification document.
type DocumentCategory string

const (
	DocIDProof               DocumentCategory = "id_proof"
	DocDisabilityCertificate DocumentCategory = "disability_certificate"
	DocInsurance             DocumentCategory = "insurance"
	DocMedicalReport         DocumentCategory = "medical_report"
	DocOther                 DocumentCategory = "other"
)

// requiredCategories must each be covered — by a stored file or an explicit
// placeholder — before the documents stage is accepted.
var requiredCategories = []DocumentCategory{DocIDProof, DocDisabilityCertificate}

// DocumentStatus is the review status of a draft document.
type DocumentStatus string

const (
	// DocStatusUploading marks a placeholder: the category is declared but
	// the file will arrive later.
	DocStatusUploading DocumentStatus = "uploading"
	// DocStatusPending marks a stored file awaiting verification.
	DocStatusPending DocumentStatus = "pending"
)

// DocumentRef is one document entry in the draft.
type DocumentRef struct {
	Category    DocumentCategory `json:"category"`
	FileName    string           `json:"file_name,omitempty"`
	StoragePath string           `json:"storage_path,omitempty"`
	Placeholder bool             `json:"placeholder"`
	Status      DocumentStatus   `json:"status"`
}

// BasicInfo is the stage-1 record.
type BasicInfo struct {
	FullName           string `json:"full_name"`
	Username           string `json:"username"`
	Email              string `json:"email"`
	Phone              string `json:"phone,omitempty"`
	CountryOfResidence string `json:"country_of_residence"`
	DisabilityType     string `json:"disability_type"` // display name
	Nationality        string `json:"nationality,omitempty"`
	Gender             string `json:"gender,omitempty"`
	DateOfBirth        string `json:"date_of_birth,omitempty"`
}

// Extras are the optional completion-stage attachments. They ride along as
// profile data; no behavior hangs off them here.
type Extras struct {
	EmergencyContact  string `json:"emergency_contact,omitempty"`
	BloodGroup        string `json:"blood_group,omitempty"`
	Language          string `json:"language,omitempty"`
	AccessibilityMode string `json:"accessibility_mode,omitempty"`
	Theme             string `json:"theme,omitempty"`
	BiometricOptIn    bool   `json:"biometric_opt_in,omitempty"`
}

// Draft is a pending registration. Password is plaintext and exists only in
// memory, only between the password stage and the completion call.
type Draft struct {
	Token     uuid.UUID     `json:"token"`
	Basic     *BasicInfo    `json:"basic,omitempty"`
	Documents []DocumentRef `json:"documents,omitempty"`
	Password  string        `json:"-"`
	Extras    Extras        `json:"extras"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// clone deep-copies the draft so store callers never share mutable state.
func (d *Draft) clone() *Draft {
	c := *d
	if d.Basic != nil {
		basic := *d.Basic
		c.Basic = &basic
	}
	if d.Documents != nil {
		c.Documents = append([]DocumentRef(nil), d.Documents...)
	}
	return &c
}

// HasPassword reports whether the password stage has been recorded. The
// password itself is wiped after the completion attempt, so completion state
// cannot be inferred from it afterwards.
func (d *Draft) HasPassword() bool {
	return d.Password != ""
}

// NextStage returns the first stage still missing data.
func (d *Draft) NextStage() Stage {
	switch {
	case d.Basic == nil:
		return StageBasic
	case len(d.Documents) == 0:
		return StageDocuments
	case !d.HasPassword():
		return StagePassword
	default:
		return StageCompletion
	}
}

// StageIncompleteError reports that a stage was invoked before its
// prerequisite stage recorded data. Required names the stage the caller has
// to finish first.
type StageIncompleteError struct {
	Required Stage
}

func (e *StageIncompleteError) Error() string {
	return fmt.Sprintf("signup stage %q must be completed first", e.Required)
}
