// File: internal/signup/service.go
package signup

import (
	"context"
	"mime/multipart"
	"regexp"
	"strings"

	"nujum_backend/internal/common"
	"nujum_backend/internal/filestorage"
	"nujum_backend/internal/gateway"
	"nujum_backend/internal/user"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// Pipeline drives the staged registration flow and hands the assembled draft
// to the credential gateway on completion.
type Pipeline struct {
	drafts         DraftStore
	files          *filestorage.Service
	docs           DocumentRepository // nil when the deployment has no database
	gateway        *gateway.Service
	defaultCountry string
	logger         *zap.Logger
}

// NewPipeline creates the signup pipeline service.
func NewPipeline(
	drafts DraftStore,
	files *filestorage.Service,
	docs DocumentRepository,
	gw *gateway.Service,
	defaultCountry string,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		drafts:         drafts,
		files:          files,
		docs:           docs,
		gateway:        gw,
		defaultCountry: defaultCountry,
		logger:         logger.Named("SignupPipeline"),
	}
}

// BasicRequest is the stage-1 payload.
type BasicRequest struct {
	FullName           string `json:"full_name" binding:"required,min=2,max=100"`
	Username           string `json:"username" binding:"omitempty,min=3,max=50"`
	Email              string `json:"email" binding:"required,email"`
	Phone              string `json:"phone" binding:"omitempty"`
	CountryOfResidence string `json:"country_of_residence" binding:"omitempty,max=100"`
	DisabilityType     string `json:"disability_type" binding:"required"`
	Nationality        string `json:"nationality" binding:"omitempty,max=100"`
	Gender             string `json:"gender" binding:"omitempty,oneof=male female other"`
	DateOfBirth        string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
}

// SubmitBasic records the stage-1 data. A zero token starts a new draft;
// otherwise the existing draft's basic record is replaced.
func (p *Pipeline) SubmitBasic(ctx context.Context, token uuid.UUID, req BasicRequest) (*Draft, error) {
	fieldErrors := make(map[string]string)
	if strings.TrimSpace(req.FullName) == "" {
		fieldErrors["full_name"] = "The full name field is required."
	}
	if !emailPattern.MatchString(req.Email) {
		fieldErrors["email"] = "The email field must be a valid email address."
	}
	if req.Phone != "" && !phonePattern.MatchString(req.Phone) {
		fieldErrors["phone"] = "The phone field must be a valid phone number."
	}
	if len(fieldErrors) > 0 {
		return nil, common.NewValidationAPIError(fieldErrors)
	}

	var draft *Draft
	if token != uuid.Nil {
		existing, ok := p.drafts.Get(token)
		if !ok {
			return nil, common.ErrNotFound.WithDetails("Signup draft not found or expired.")
		}
		draft = existing
	} else {
		draft = &Draft{Token: uuid.New()}
	}

	country := req.CountryOfResidence
	if country == "" {
		country = p.defaultCountry
	}

	draft.Basic = &BasicInfo{
		FullName:           strings.TrimSpace(req.FullName),
		Username:           deriveUsername(req.Username, req.FullName, req.Email),
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:              req.Phone,
		CountryOfResidence: country,
		DisabilityType:     req.DisabilityType,
		Nationality:        req.Nationality,
		Gender:             req.Gender,
		DateOfBirth:        req.DateOfBirth,
	}
	p.drafts.Put(draft)
	return draft, nil
}

// SubmitDocuments records the stage-2 checklist. Every required category
// must be covered by an uploaded file or a declared placeholder; uploads are
// persisted through the file storage service before the draft is updated.
// Resubmission replaces the previous document set.
func (p *Pipeline) SubmitDocuments(
	ctx context.Context,
	token uuid.UUID,
	uploads map[DocumentCategory]*multipart.FileHeader,
	placeholders []DocumentCategory,
) (*Draft, error) {
	draft, ok := p.drafts.Get(token)
	if !ok {
		return nil, common.ErrNotFound.WithDetails("Signup draft not found or expired.")
	}
	if draft.Basic == nil {
		return nil, &StageIncompleteError{Required: StageBasic}
	}

	declared := make(map[DocumentCategory]bool, len(uploads)+len(placeholders))
	for category := range uploads {
		if !validCategory(category) {
			return nil, common.NewValidationAPIError(map[string]string{
				"documents": "Unknown document category: " + string(category),
			})
		}
		declared[category] = true
	}
	for _, category := range placeholders {
		if !validCategory(category) {
			return nil, common.NewValidationAPIError(map[string]string{
				"documents": "Unknown document category: " + string(category),
			})
		}
		declared[category] = true
	}
	for _, required := range requiredCategories {
		if !declared[required] {
			return nil, common.NewValidationAPIError(map[string]string{
				"documents": "Missing required document: " + string(required),
			})
		}
	}

	refs := make([]DocumentRef, 0, len(uploads)+len(placeholders))
	for category, fileHeader := range uploads {
		storagePath, err := p.files.SaveDocument(fileHeader, "drafts/"+token.String())
		if err != nil {
			p.logger.Error("Document upload failed",
				zap.String("category", string(category)), zap.Error(err))
			return nil, common.ErrBadRequest.WithDetails("Could not store document: " + err.Error())
		}
		refs = append(refs, DocumentRef{
			Category:    category,
			FileName:    fileHeader.Filename,
			StoragePath: storagePath,
			Status:      DocStatusPending,
		})
	}
	for _, category := range placeholders {
		if _, uploaded := uploads[category]; uploaded {
			continue
		}
		refs = append(refs, DocumentRef{
			Category:    category,
			Placeholder: true,
			Status:      DocStatusUploading,
		})
	}

	draft.Documents = refs
	p.drafts.Put(draft)
	return draft, nil
}

// SubmitPassword records the stage-3 credential. The password stays in the
// draft — memory only — until the completion call consumes it.
func (p *Pipeline) SubmitPassword(ctx context.Context, token uuid.UUID, password, confirmation string) (*Draft, error) {
	draft, ok := p.drafts.Get(token)
	if !ok {
		return nil, common.ErrNotFound.WithDetails("Signup draft not found or expired.")
	}
	if draft.Basic == nil {
		return nil, &StageIncompleteError{Required: StageBasic}
	}
	if len(draft.Documents) == 0 {
		return nil, &StageIncompleteError{Required: StageDocuments}
	}

	if fieldErrors := validatePassword(password, confirmation); len(fieldErrors) > 0 {
		return nil, common.NewValidationAPIError(fieldErrors)
	}

	draft.Password = password
	p.drafts.Put(draft)
	return draft, nil
}

// Complete merges the staged records with the optional extras and performs
// the actual signup through the credential gateway. On success the draft is
// deleted and document metadata is persisted under the new account; on
// failure the draft survives for a retry — minus the password, which is
// wiped as soon as the gateway call returns either way.
func (p *Pipeline) Complete(ctx context.Context, token uuid.UUID, extras Extras) (uuid.UUID, error) {
	draft, ok := p.drafts.Get(token)
	if !ok {
		return uuid.Nil, common.ErrNotFound.WithDetails("Signup draft not found or expired.")
	}
	if draft.Basic == nil {
		return uuid.Nil, &StageIncompleteError{Required: StageBasic}
	}
	if len(draft.Documents) == 0 {
		return uuid.Nil, &StageIncompleteError{Required: StageDocuments}
	}
	if !draft.HasPassword() {
		return uuid.Nil, &StageIncompleteError{Required: StagePassword}
	}

	draft.Extras = extras
	data := user.SignupData{
		Username:           draft.Basic.Username,
		FullName:           draft.Basic.FullName,
		Email:              draft.Basic.Email,
		Phone:              draft.Basic.Phone,
		Password:           draft.Password,
		DisabilityType:     draft.Basic.DisabilityType,
		CountryOfResidence: draft.Basic.CountryOfResidence,
		Nationality:        draft.Basic.Nationality,
		Gender:             draft.Basic.Gender,
		DateOfBirth:        draft.Basic.DateOfBirth,
		Bio:                "",
		BloodGroup:         extras.BloodGroup,
		EmergencyContact:   extras.EmergencyContact,
	}

	userID, err := p.gateway.Signup(ctx, data)

	draft.Password = ""
	p.drafts.Put(draft)

	if err != nil {
		p.logger.Warn("Signup completion failed; draft preserved for retry",
			zap.String("draftToken", token.String()), zap.Error(err))
		return uuid.Nil, err
	}

	p.persistDocuments(ctx, userID, draft.Documents)
	p.drafts.Delete(token)
	p.logger.Info("Signup completed", zap.String("userID", userID.String()))
	return userID, nil
}

// State returns the current draft so clients can resume where they left off.
func (p *Pipeline) State(token uuid.UUID) (*Draft, error) {
	draft, ok := p.drafts.Get(token)
	if !ok {
		return nil, common.ErrNotFound.WithDetails("Signup draft not found or expired.")
	}
	return draft, nil
}

// PurgeExpiredDrafts is the cron entry point.
func (p *Pipeline) PurgeExpiredDrafts() int {
	purged := p.drafts.PurgeExpired()
	if purged > 0 {
		p.logger.Info("Purged expired signup drafts", zap.Int("count", purged))
	}
	return purged
}

// persistDocuments writes the document metadata rows. The account already
// exists at this point, so failures are logged rather than surfaced.
func (p *Pipeline) persistDocuments(ctx context.Context, userID uuid.UUID, refs []DocumentRef) {
	if p.docs == nil || len(refs) == 0 {
		return
	}
	records := make([]*DocumentRecord, 0, len(refs))
	for _, ref := range refs {
		records = append(records, &DocumentRecord{
			UserID:      userID,
			Category:    string(ref.Category),
			FileName:    ref.FileName,
			StoragePath: ref.StoragePath,
			Placeholder: ref.Placeholder,
			Status:      string(ref.Status),
		})
	}
	if err := p.docs.CreateBatch(ctx, records); err != nil {
		p.logger.Error("Failed to persist verification document metadata",
			zap.String("userID", userID.String()), zap.Error(err))
	}
}

func validCategory(category DocumentCategory) bool {
	switch category {
	case DocIDProof, DocDisabilityCertificate, DocInsurance, DocMedicalReport, DocOther:
		return true
	}
	return false
}

// deriveUsername prefers the explicit username, then a slug of the full
// name, then the local part of the email.
func deriveUsername(username, fullName, email string) string {
	if username != "" {
		return username
	}
	if s := slug.Make(fullName); s != "" {
		return s
	}
	if at := strings.Index(email, "@"); at > 0 {
		return strings.ToLower(email[:at])
	}
	return email
}

func validatePassword(password, confirmation string) map[string]string {
	fieldErrors := make(map[string]string)
	if len(password) < 8 {
		fieldErrors["password"] = "The password field must be at least 8 characters long."
	} else {
		var hasUpper, hasLower, hasDigit bool
		for _, r := range password {
			switch {
			case r >= 'A' && r <= 'Z':
				hasUpper = true
			case r >= 'a' && r <= 'z':
				hasLower = true
			case r >= '0' && r <= '9':
				hasDigit = true
			}
		}
		if !hasUpper || !hasLower || !hasDigit {
			fieldErrors["password"] = "The password field must contain an uppercase letter, a lowercase letter and a digit."
		}
	}
	if confirmation != password {
		fieldErrors["password_confirmation"] = "The password confirmation does not match."
	}
	return fieldErrors
}
