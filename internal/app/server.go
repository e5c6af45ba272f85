package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"coach_marketplace_backend/internal/coachprofile"
	"coach_marketplace_backend/internal/coachsearch"
	"coach_marketplace_backend/internal/common"
	"coach_marketplace_backend/internal/config"
	"coach_marketplace_backend/internal/jobs"
	"coach_marketplace_backend/internal/middleware"
	"coach_marketplace_backend/internal/notification"
	"coach_marketplace_backend/internal/shared"
	"coach_marketplace_backend/internal/specialization"
	"coach_marketplace_backend/internal/user"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	indexer    *coachsearch.Indexer
	reindexJob *jobs.SearchReindexJob
}

// Handlers groups every route owner so the wire injector has one value to build.
type Handlers struct {
	User           *user.Handler
	Specialization *specialization.Handler
	Notification   *notification.Handler
	Coach          *coachprofile.Handler
	Operator       *coachprofile.OperatorHandler
	Search         *coachsearch.Handler
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	verifier shared.SessionVerifier,
	handlers Handlers,
	indexer *coachsearch.Indexer,
	reindexJob *jobs.SearchReindexJob,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg)))

	authMW := middleware.AuthMiddleware(verifier, logger.Named("AuthMiddleware"))
	coachRoleMW := middleware.RoleAuthMiddleware(common.RoleCoach)
	operatorMW := middleware.OperatorAuth(cfg.OperatorSharedSecret, logger.Named("OperatorAuth"))

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Coach marketplace API is healthy!"})
	})

	v1 := router.Group("/api/v1")

	handlers.User.RegisterRoutes(v1, authMW)
	handlers.Specialization.RegisterRoutes(v1)
	handlers.Coach.RegisterRoutes(v1, authMW, coachRoleMW)
	handlers.Coach.RegisterPublicRoutes(v1)
	handlers.Search.RegisterRoutes(v1)

	notificationGroup := v1.Group("/notifications", authMW)
	handlers.Notification.RegisterRoutes(notificationGroup)

	operator := v1.Group("/operator", operatorMW)
	handlers.Operator.RegisterRoutes(operator)
	handlers.Specialization.RegisterOperatorRoutes(operator)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		cfg:        cfg,
		logger:     logger,
		indexer:    indexer,
		reindexJob: reindexJob,
	}, nil
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsCfg.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}

	for _, origin := range cfg.CORSAllowedOrigins {
		if origin == "*" {
			corsCfg.AllowAllOrigins = true
			return corsCfg
		}
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}
	corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	corsCfg.AllowCredentials = true
	return corsCfg
}

// Router exposes the engine for in-process tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	if s.indexer.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := s.indexer.EnsureIndex(ctx); err != nil {
			s.logger.Error("Failed to create coaches index, indexing will fail until it exists", zap.Error(err))
		}
		cancel()
	}

	if s.reindexJob != nil {
		if err := s.reindexJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start search reindex job", zap.Error(err))
		}
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.reindexJob != nil {
		s.reindexJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
