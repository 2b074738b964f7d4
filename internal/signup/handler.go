// File: internal/signup/handler.go
package signup

import (
	"errors"
	"mime/multipart"
	"strings"

	"nujum_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler exposes the signup pipeline over HTTP.
type Handler struct {
	pipeline *Pipeline
	logger   *zap.Logger
}

// NewHandler creates a new signup handler.
func NewHandler(pipeline *Pipeline, logger *zap.Logger) *Handler {
	return &Handler{pipeline: pipeline, logger: logger.Named("SignupHandler")}
}

// RegisterRoutes sets up the signup routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/signup")
	{
		group.POST("/basic", h.SubmitBasic)
		group.POST("/documents", h.SubmitDocuments)
		group.POST("/password", h.SubmitPassword)
		group.POST("/complete", h.Complete)
		group.GET("/state", h.State)
	}
}

// stageRoute maps a missing stage to the route the client should return to.
var stageRoute = map[Stage]string{
	StageBasic:     "/api/v1/signup/basic",
	StageDocuments: "/api/v1/signup/documents",
	StagePassword:  "/api/v1/signup/password",
}

// respondError translates stage-guard violations into a 409 with a
// redirect_to hint; everything else goes through the shared error responder.
func (h *Handler) respondError(c *gin.Context, err error) {
	var stageErr *StageIncompleteError
	if errors.As(err, &stageErr) {
		common.RespondWithError(c, common.ErrConflict.WithDetails(gin.H{
			"missing_stage": string(stageErr.Required),
			"redirect_to":   stageRoute[stageErr.Required],
		}))
		return
	}
	common.RespondWithError(c, err)
}

type basicPayload struct {
	DraftToken string `json:"draft_token" binding:"omitempty,uuid"`
	BasicRequest
}

// SubmitBasic handles POST /signup/basic. Omitting draft_token starts a new
// draft; the response always carries the token for the next stages.
func (h *Handler) SubmitBasic(c *gin.Context) {
	var payload basicPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.respondBindingError(c, err)
		return
	}

	token := uuid.Nil
	if payload.DraftToken != "" {
		token = uuid.MustParse(payload.DraftToken)
	}

	draft, err := h.pipeline.SubmitBasic(c.Request.Context(), token, payload.BasicRequest)
	if err != nil {
		h.respondError(c, err)
		return
	}
	common.RespondOK(c, "Basic information recorded.", draftView(draft))
}

// SubmitDocuments handles POST /signup/documents as a multipart form. File
// parts are named after their category (id_proof, disability_certificate,
// insurance, medical_report, other); the placeholders field declares
// categories whose files will arrive later.
func (h *Handler) SubmitDocuments(c *gin.Context) {
	token, ok := h.draftToken(c, c.PostForm("draft_token"))
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Expected a multipart form: "+err.Error()))
		return
	}

	uploads := make(map[DocumentCategory]*multipart.FileHeader)
	for field, files := range form.File {
		if len(files) == 0 {
			continue
		}
		uploads[DocumentCategory(field)] = files[0]
	}

	var placeholders []DocumentCategory
	for _, value := range form.Value["placeholders"] {
		for _, name := range strings.Split(value, ",") {
			if name = strings.TrimSpace(name); name != "" {
				placeholders = append(placeholders, DocumentCategory(name))
			}
		}
	}

	draft, err := h.pipeline.SubmitDocuments(c.Request.Context(), token, uploads, placeholders)
	if err != nil {
		h.respondError(c, err)
		return
	}
	common.RespondOK(c, "Documents recorded.", draftView(draft))
}

type passwordPayload struct {
	DraftToken           string `json:"draft_token" binding:"required,uuid"`
	Password             string `json:"password" binding:"required"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required"`
}

// SubmitPassword handles POST /signup/password.
func (h *Handler) SubmitPassword(c *gin.Context) {
	var payload passwordPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.respondBindingError(c, err)
		return
	}
	token := uuid.MustParse(payload.DraftToken)

	draft, err := h.pipeline.SubmitPassword(c.Request.Context(), token, payload.Password, payload.PasswordConfirmation)
	if err != nil {
		h.respondError(c, err)
		return
	}
	common.RespondOK(c, "Password recorded.", draftView(draft))
}

type completePayload struct {
	DraftToken string `json:"draft_token" binding:"required,uuid"`
	Extras
}

// Complete handles POST /signup/complete.
func (h *Handler) Complete(c *gin.Context) {
	var payload completePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.respondBindingError(c, err)
		return
	}
	token := uuid.MustParse(payload.DraftToken)

	userID, err := h.pipeline.Complete(c.Request.Context(), token, payload.Extras)
	if err != nil {
		h.respondError(c, err)
		return
	}
	common.RespondCreated(c, "Account created.", gin.H{"user_id": userID})
}

// State handles GET /signup/state?draft_token=...
func (h *Handler) State(c *gin.Context) {
	token, ok := h.draftToken(c, c.Query("draft_token"))
	if !ok {
		return
	}
	draft, err := h.pipeline.State(token)
	if err != nil {
		h.respondError(c, err)
		return
	}
	common.RespondOK(c, "Signup draft state.", draftView(draft))
}

// draftToken parses a required token parameter, responding on failure.
func (h *Handler) draftToken(c *gin.Context, raw string) (uuid.UUID, bool) {
	if raw == "" {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("The draft_token parameter is required."))
		return uuid.Nil, false
	}
	token, err := uuid.Parse(raw)
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("The draft_token parameter must be a valid UUID."))
		return uuid.Nil, false
	}
	return token, true
}

func (h *Handler) respondBindingError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
		return
	}
	common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload: "+err.Error()))
}

// draftView is the wire shape of a draft: the password never appears and the
// next stage is spelled out for the client.
func draftView(d *Draft) gin.H {
	return gin.H{
		"draft_token":  d.Token,
		"next_stage":   d.NextStage(),
		"basic":        d.Basic,
		"documents":    d.Documents,
		"has_password": d.HasPassword(),
		"expires_at":   d.ExpiresAt,
	}
}
