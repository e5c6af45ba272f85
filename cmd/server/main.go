package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coach_marketplace_backend/internal/auth"
	"coach_marketplace_backend/internal/coachprofile"
	"coach_marketplace_backend/internal/coachsearch"
	"coach_marketplace_backend/internal/config"
	"coach_marketplace_backend/internal/platform/database"
	platformElasticsearch "coach_marketplace_backend/internal/platform/elasticsearch"
	"coach_marketplace_backend/internal/platform/logger"
	"coach_marketplace_backend/internal/specialization"
	"coach_marketplace_backend/internal/user"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	os.Exit(run())
}

// run owns every deferred cleanup so that they complete before the process exits.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("FATAL: Failed to load configuration: %v", err)
		return 1
	}
	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Printf("FATAL: Failed to initialize logger: %v", err)
		return 1
	}
	defer func() { _ = appLogger.Sync() }()

	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "sync-coaches":
		err = runSyncCoaches(cfg, appLogger, os.Args[2:])
	case "issue-token":
		err = runIssueToken(cfg, appLogger, os.Args[2:])
	case "seed-specializations":
		err = runSeedSpecializations(cfg, appLogger, os.Args[2:])
	case "", "serve":
		err = startServer(cfg, appLogger)
	default:
		err = fmt.Errorf("unknown command %q (expected serve, sync-coaches, issue-token or seed-specializations)", cmd)
	}
	if err != nil {
		appLogger.Error("Command failed", zap.String("command", cmd), zap.Error(err))
		return 1
	}
	return 0
}

func startServer(cfg *config.Config, appLogger *zap.Logger) error {
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			AttachStacktrace: true,
		}); err != nil {
			appLogger.Error("Sentry initialization failed", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	server, cleanup, err := initializeServer(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}
	defer cleanup()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed to start or crashed: %w", err)
		}
		return nil
	case sig := <-quit:
		appLogger.Info("Received signal, shutting down server...", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	appLogger.Info("Server shutdown complete.")
	return nil
}

func openDatabase(cfg *config.Config, appLogger *zap.Logger) (*gorm.DB, func(), error) {
	db, cleanup, err := database.ProvideGORM(cfg, appLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, cleanup, nil
}

// runSyncCoaches rebuilds the coaches index from every published profile.
func runSyncCoaches(cfg *config.Config, appLogger *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("sync-coaches", flag.ExitOnError)
	batchSize := fs.Int("batch-size", cfg.SearchReindexBatchSize, "Batch size for syncing coach profiles")
	esRefresh := fs.String("es-refresh", "false", "Elasticsearch refresh policy (true, false, wait_for)")
	_ = fs.Parse(args)

	db, cleanup, err := openDatabase(cfg, appLogger)
	if err != nil {
		return err
	}
	defer cleanup()

	esClient, err := platformElasticsearch.NewClient(cfg, appLogger)
	if err != nil {
		return err
	}
	if esClient == nil {
		return fmt.Errorf("ELASTICSEARCH_URL must be set to sync coaches")
	}

	indexer := coachsearch.NewIndexer(esClient, appLogger)
	ctx := context.Background()
	if err := indexer.EnsureIndex(ctx); err != nil {
		return err
	}

	specService := specialization.NewService(specialization.NewGORMRepository(db), appLogger, cfg)
	coachService := coachprofile.NewService(coachprofile.NewGORMRepository(db), specService, nil, indexer, cfg, appLogger)

	result, err := indexer.SyncAll(ctx, coachService, *batchSize, *esRefresh)
	if err != nil {
		return err
	}
	appLogger.Info("Coach synchronization completed successfully.", zap.Int("synced", result.Synced), zap.Int("batches", result.Batches))
	return nil
}

// runIssueToken prints a session token for an existing user. Meant for local testing
// against a database the account service does not manage.
func runIssueToken(cfg *config.Config, appLogger *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("issue-token", flag.ExitOnError)
	userID := fs.Uint("user-id", 0, "ID of the user to issue a token for")
	_ = fs.Parse(args)
	if *userID == 0 {
		return fmt.Errorf("--user-id is required")
	}

	db, cleanup, err := openDatabase(cfg, appLogger)
	if err != nil {
		return err
	}
	defer cleanup()

	users := user.NewService(user.NewGORMRepository(db), appLogger)
	u, err := users.GetUserByID(context.Background(), *userID)
	if err != nil {
		return err
	}

	token, expiresAt, err := auth.NewJWTService(cfg, appLogger).GenerateAccessToken(u)
	if err != nil {
		return err
	}
	fmt.Println(token)
	appLogger.Info("Issued session token", zap.Uint("userID", u.ID), zap.String("role", u.Role), zap.Time("expiresAt", expiresAt))
	return nil
}

// runSeedSpecializations upserts the catalog from a YAML file.
func runSeedSpecializations(cfg *config.Config, appLogger *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("seed-specializations", flag.ExitOnError)
	file := fs.String("file", "specializations.yaml", "Path to the YAML catalog")
	_ = fs.Parse(args)

	entries, err := specialization.LoadSeedFile(*file)
	if err != nil {
		return err
	}

	db, cleanup, err := openDatabase(cfg, appLogger)
	if err != nil {
		return err
	}
	defer cleanup()

	specService := specialization.NewService(specialization.NewGORMRepository(db), appLogger, cfg)
	n, err := specService.Seed(context.Background(), entries)
	if err != nil {
		return err
	}
	appLogger.Info("Specialization catalog seeded", zap.String("file", *file), zap.Int64("entries", n))
	return nil
}
