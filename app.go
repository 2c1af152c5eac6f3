package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/rorycl/bizmanager/config"
	"github.com/rorycl/bizmanager/db"
	"github.com/rorycl/bizmanager/internal"
	"github.com/rorycl/bizmanager/web"
)

// App wires the configuration, database and web server together for
// the cli commands.
type App struct{}

// newLogger builds the application logger at the configured level.
func newLogger(cfg *config.Config) (*log.Logger, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	if cfg.LogLevel != "" {
		level, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
		}
		logger.SetLevel(level)
	}
	return logger, nil
}

// setup loads configuration and opens the database connection, which
// also applies the schema.
func (a *App) setup(cfgPath, sqlDir string) (*config.Config, *log.Logger, *db.DB, error) {

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("configuration error: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	// Use the embedded sql files unless an on-disk directory override
	// was provided.
	sqlFS, err := internal.NewFileMount("sql", db.SQLEmbeddedFS, sqlDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not mount sql files: %w", err)
	}

	thisDB, err := db.NewConnection(cfg.DatabasePath, sqlFS, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("database setup error: %w", err)
	}
	return cfg, logger, thisDB, nil
}

// Serve runs the web server until the context is cancelled.
func (a *App) Serve(ctx context.Context, cfgPath, sqlDir string) error {

	cfg, logger, thisDB, err := a.setup(cfgPath, sqlDir)
	if err != nil {
		return err
	}
	defer thisDB.Close()

	webApp, err := web.New(logger, cfg, thisDB)
	if err != nil {
		return fmt.Errorf("web server setup error: %w", err)
	}
	return webApp.StartServer(ctx)
}

// InitDB initialises the database file and schema, then exits. Opening
// the connection applies the schema idempotently.
func (a *App) InitDB(ctx context.Context, cfgPath, sqlDir string) error {

	cfg, logger, thisDB, err := a.setup(cfgPath, sqlDir)
	if err != nil {
		return err
	}
	defer thisDB.Close()

	if err := thisDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping error: %w", err)
	}
	logger.Info("database initialised", "path", cfg.DatabasePath)
	return nil
}
