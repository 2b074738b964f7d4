// File: internal/session/handler.go
package session

import (
	"context"
	"errors"

	"nujum_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler exposes the session snapshot and the preference setters.
type Handler struct {
	manager *Manager
	logger  *zap.Logger
}

// NewHandler creates a new session handler.
func NewHandler(manager *Manager, logger *zap.Logger) *Handler {
	return &Handler{manager: manager, logger: logger.Named("SessionHandler")}
}

// RegisterRoutes sets up the session and preference routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/session", h.GetSession)
	preferences := router.Group("/preferences")
	{
		preferences.PUT("/language", h.SetLanguage)
		preferences.PUT("/accessibility-mode", h.SetAccessibilityMode)
		preferences.PUT("/theme", h.SetTheme)
	}
}

// GetSession handles GET /session.
func (h *Handler) GetSession(c *gin.Context) {
	common.RespondOK(c, "Current session.", h.manager.Snapshot())
}

type preferenceRequest struct {
	Value string `json:"value" binding:"required"`
}

// SetLanguage handles PUT /preferences/language.
func (h *Handler) SetLanguage(c *gin.Context) {
	h.setPreference(c, h.manager.SetLanguage)
}

// SetAccessibilityMode handles PUT /preferences/accessibility-mode.
func (h *Handler) SetAccessibilityMode(c *gin.Context) {
	h.setPreference(c, h.manager.SetAccessibilityMode)
}

// SetTheme handles PUT /preferences/theme.
func (h *Handler) SetTheme(c *gin.Context) {
	h.setPreference(c, h.manager.SetTheme)
}

// setPreference binds the {"value": ...} payload and applies the given
// manager setter. Invalid enum values come back as field errors.
func (h *Handler) setPreference(c *gin.Context, set func(ctx context.Context, v string) error) {
	var req preferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
		} else {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload: "+err.Error()))
		}
		return
	}

	if err := set(c.Request.Context(), req.Value); err != nil {
		common.RespondWithError(c, common.NewValidationAPIError(map[string]string{"value": err.Error()}))
		return
	}
	common.RespondOK(c, "Preference updated.", h.manager.Snapshot())
}
