// File: internal/gateway/handler.go
package gateway

import (
	"errors"

	"nujum_backend/internal/common"
	"nujum_backend/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler holds dependencies for the credential endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new credential gateway handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("GatewayHandler")}
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRoutes sets up the credential routes. requireSession guards the
// endpoints that only make sense with an authenticated session.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, requireSession gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
	}
	router.PATCH("/profile", requireSession, h.UpdateProfile)
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
		} else {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload: "+err.Error()))
		}
		return
	}

	if err := h.service.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Login successful.", nil)
}

// Logout handles POST /auth/logout.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context()); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Logged out.", nil)
}

// UpdateProfile handles PATCH /profile. The request body carries only the
// fields the caller wants changed.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req user.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
		} else {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload: "+err.Error()))
		}
		return
	}

	if err := h.service.UpdateProfile(c.Request.Context(), req); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile updated.", nil)
}
