/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the fixed asset depreciation server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, flags)
  2. Open the store: PostgreSQL when DATABASE_URL is set, SQLite otherwise
  3. Seed calculation settings from the environment if none were saved
  4. Create API handler and start the schedule refresher
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port          HTTP server port (default: 8080)
  -db            SQLite database path (default: assets.db)
                 Use ":memory:" for in-memory database
  -database-url  PostgreSQL DSN (overrides -db)
  -env           local, dev, production
  -refresh       Schedule refresh interval in minutes, 0 disables

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the refresher
  4. Close database connection

EXAMPLES:
  ./server -db="./data/assets.db"
  ./server -db=":memory:" -refresh=0
  DATABASE_URL="postgres://localhost/assets?sslmode=disable" ./server

SEE ALSO:
  - config/config.go: All settings and their environment variables
  - api/server.go: Router configuration
  - store/sqlite, store/postgres: Database implementations
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/asset-engine/api"
	"github.com/warp/asset-engine/config"
	"github.com/warp/asset-engine/generic"
	"github.com/warp/asset-engine/logging"
	"github.com/warp/asset-engine/store/postgres"
	"github.com/warp/asset-engine/store/sqlcodec"
	"github.com/warp/asset-engine/store/sqlite"
)

type closingStore interface {
	generic.Store
	Close() error
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logging.New(cfg.Environment)

	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		log.WithError(err).Fatal("invalid calculation settings")
	}

	// Initialize store
	ctx := context.Background()
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer store.Close()

	if err := seedSettings(ctx, store, engineCfg); err != nil {
		log.WithError(err).Fatal("failed to seed settings")
	}

	// Initialize handler
	handler := api.NewHandler(store, logging.Component(log, "api"))
	handler.Refresher.Interval = cfg.RefreshInterval
	handler.Refresher.Start()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":        cfg.Port,
			"environment": cfg.Environment,
			"postgres":    cfg.UsePostgres(),
		}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	handler.Refresher.Stop()

	log.Info("server stopped")
}

func openStore(ctx context.Context, cfg config.Config, log *logrus.Logger) (closingStore, error) {
	if cfg.UsePostgres() {
		log.Info("using PostgreSQL store")
		return postgres.Open(ctx, cfg.DatabaseURL)
	}
	log.WithField("path", cfg.SQLitePath).Info("using SQLite store")
	return sqlite.New(cfg.SQLitePath)
}

// seedSettings saves the environment's settings when the store still holds
// the defaults. Settings saved through the API are never overwritten.
func seedSettings(ctx context.Context, store generic.Store, seed generic.Config) error {
	stored, err := store.LoadConfig(ctx)
	if err != nil {
		return err
	}
	same := func(a, b generic.Config) bool {
		ea, errA := sqlcodec.EncodeConfig(a)
		eb, errB := sqlcodec.EncodeConfig(b)
		return errA == nil && errB == nil && ea == eb
	}
	if !same(stored, generic.DefaultConfig()) || same(seed, stored) {
		return nil
	}
	return store.SaveConfig(ctx, seed)
}
