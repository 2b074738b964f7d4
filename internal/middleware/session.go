// File: internal/middleware/session.go
package middleware

import (
	"nujum_backend/internal/common"
	"nujum_backend/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// SessionUserIDKey is the context key for the active session's user ID.
	SessionUserIDKey = "sessionUserID"
)

// RequireSession gates a route on the session manager being in the
// Authenticated state. The manager is the single source of truth here; no
// token parsing happens at the HTTP layer.
func RequireSession(manager *session.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		snapshot := manager.Snapshot()
		if !snapshot.IsAuthenticated || snapshot.User == nil {
			logger.Debug("Rejected request without an active session",
				zap.String("path", c.Request.URL.Path))
			common.RespondWithError(c, common.ErrNotAuthenticated)
			return
		}
		c.Set(SessionUserIDKey, snapshot.User.ID)
		c.Next()
	}
}
