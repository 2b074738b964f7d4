// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"nujum_backend/internal/app"
	"nujum_backend/internal/config"
	"nujum_backend/internal/gateway"
	"nujum_backend/internal/jobs"
	"nujum_backend/internal/platform/logger"
	"nujum_backend/internal/session"
	"nujum_backend/internal/signup"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		provideDatabase,

		// Identity provider strategy + stores
		provideProvider,
		providePrefsStore,
		provideDraftStore,
		provideDocumentRepo,
		provideFileStorage,
		provideDefaultCountry,

		// Session state machine
		session.NewManager,
		session.NewHandler,

		// Credential gateway
		gateway.NewService,
		gateway.NewHandler,

		// Signup pipeline
		signup.NewPipeline,
		signup.NewHandler,
		jobs.NewDraftExpiryJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}
