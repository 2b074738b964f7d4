// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"nujum_backend/internal/config"
	"nujum_backend/internal/gateway"
	"nujum_backend/internal/jobs"
	"nujum_backend/internal/middleware"
	"nujum_backend/internal/session"
	"nujum_backend/internal/signup"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	sessionManager *session.Manager

	// Handlers
	sessionHandler *session.Handler
	gatewayHandler *gateway.Handler
	signupHandler  *signup.Handler

	// Jobs
	draftExpiryJob *jobs.DraftExpiryJob
}

// NewServer creates a new instance of the application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	sessionManager *session.Manager,
	sessionHandler *session.Handler,
	gatewayHandler *gateway.Handler,
	signupHandler *signup.Handler,
	draftExpiryJob *jobs.DraftExpiryJob,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	requireSession := middleware.RequireSession(sessionManager, logger.Named("RequireSession"))

	// --- Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Nujum session service is healthy!"})
	})

	v1 := router.Group("/api/v1")
	sessionHandler.RegisterRoutes(v1)
	gatewayHandler.RegisterRoutes(v1, requireSession)
	signupHandler.RegisterRoutes(v1)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:     httpServer,
		router:         router,
		cfg:            cfg,
		logger:         logger,
		sessionManager: sessionManager,
		sessionHandler: sessionHandler,
		gatewayHandler: gatewayHandler,
		signupHandler:  signupHandler,
		draftExpiryJob: draftExpiryJob,
	}, nil
}

// Start brings the session manager online, starts the background jobs and
// then serves HTTP until shutdown.
func (s *Server) Start() error {
	if err := s.sessionManager.Start(context.Background()); err != nil {
		s.logger.Error("Failed to start session manager", zap.Error(err))
		return err
	}

	if s.draftExpiryJob != nil {
		if err := s.draftExpiryJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start draft expiry job", zap.Error(err))
		}
	} else {
		s.logger.Info("Draft expiry job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
		zap.String("auth_backend", s.cfg.AuthBackend),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped gracefully or an error occurred")
	return nil
}

// Shutdown stops the jobs, closes the session manager and drains the HTTP
// server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.draftExpiryJob != nil {
		s.draftExpiryJob.Stop()
	}
	s.sessionManager.Close()
	return s.httpServer.Shutdown(ctx)
}
