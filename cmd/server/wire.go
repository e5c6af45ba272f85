//go:build wireinject
// +build wireinject

package main

import (
	"coach_marketplace_backend/internal/app"
	"coach_marketplace_backend/internal/auth"
	"coach_marketplace_backend/internal/coachprofile"
	"coach_marketplace_backend/internal/coachsearch"
	"coach_marketplace_backend/internal/config"
	"coach_marketplace_backend/internal/firebase"
	"coach_marketplace_backend/internal/jobs"
	"coach_marketplace_backend/internal/notification"
	"coach_marketplace_backend/internal/platform/database"
	"coach_marketplace_backend/internal/platform/elasticsearch"
	"coach_marketplace_backend/internal/shared"
	"coach_marketplace_backend/internal/specialization"
	"coach_marketplace_backend/internal/user"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config, logger *zap.Logger) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		database.ProvideGORM,
		elasticsearch.NewClient,
		firebase.NewFirebaseService,

		// Users and sessions
		user.NewGORMRepository,
		user.NewService,
		wire.Bind(new(shared.Service), new(*user.ServiceImplementation)),
		user.NewHandler,
		auth.NewJWTService,
		wire.Bind(new(shared.TokenService), new(*auth.JWTService)),
		auth.NewSessionAuthenticator,
		wire.Bind(new(shared.SessionVerifier), new(*auth.SessionAuthenticator)),

		// Catalog and notifications
		specialization.NewGORMRepository,
		specialization.NewService,
		specialization.NewHandler,
		notification.NewGORMRepository,
		notification.NewService,
		notification.NewHandler,

		// Coach profiles and search
		coachsearch.NewIndexer,
		coachsearch.NewHandler,
		wire.Bind(new(coachprofile.SearchIndexer), new(*coachsearch.Indexer)),
		coachprofile.NewGORMRepository,
		coachprofile.NewService,
		wire.Bind(new(coachprofile.Service), new(*coachprofile.ServiceImplementation)),
		wire.Bind(new(coachsearch.PublishedSource), new(*coachprofile.ServiceImplementation)),
		coachprofile.NewHandler,
		coachprofile.NewOperatorHandler,
		jobs.NewSearchReindexJob,

		// Application Layer
		wire.Struct(new(app.Handlers), "*"),
		app.NewServer,
	)
	return nil, nil, nil
}
