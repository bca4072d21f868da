package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/chrissnell/telemetrychart/internal/controllers/restserver"
	"github.com/chrissnell/telemetrychart/internal/database"
	"github.com/chrissnell/telemetrychart/internal/loader"
	"github.com/chrissnell/telemetrychart/internal/log"
	"github.com/chrissnell/telemetrychart/pkg/config"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// BuildSource returns the track source described by cfg: the data directory,
// merged with the database runs when a TimescaleDB connection is configured.
// Unset values take their defaults.
func BuildSource(cfg *config.ConfigData) (loader.Source, error) {
	cfg.FillDefaults()
	dir := loader.NewDirSource(cfg.Data.RootDir)

	ts := cfg.Storage.TimescaleDB
	if ts == nil || ts.ConnectionString == "" {
		return dir, nil
	}

	db, err := database.CreateConnection(ts.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	log.Infof("serving database runs under group %q", ts.Group)
	return loader.MultiSource{dir, database.NewTrackSource(db, ts.Group)}, nil
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	for _, key := range cfg.FillDefaults() {
		a.logger.Infof("%s not provided; using default", key)
	}

	source, err := BuildSource(cfg)
	if err != nil {
		return err
	}

	ctrl, err := restserver.NewController(ctx, &wg, *cfg, source, a.logger)
	if err != nil {
		return err
	}
	if err := ctrl.StartController(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
