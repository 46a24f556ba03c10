package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/steveyegge/partsbin/internal/config"
	"github.com/steveyegge/partsbin/internal/storage"
	"github.com/steveyegge/partsbin/internal/storage/postgres"
	"github.com/steveyegge/partsbin/internal/storage/sqlite"
)

// openStore opens the configured backend. An explicit --db path always means
// SQLite. With create set, a missing SQLite database is created under
// .partsbin/ in the working directory.
func openStore(ctx context.Context, cfg config.Config, explicitPath string, create bool) (storage.Storage, error) {
	backend := cfg.Database.Backend
	if explicitPath != "" {
		backend = "sqlite"
	}

	switch backend {
	case "sqlite":
		path, err := resolveSQLitePath(cfg, explicitPath, create)
		if err != nil {
			return nil, err
		}
		db, err := sqlite.New(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to open database %s: %w", path, err)
		}
		return db, nil

	case "postgres":
		pg := postgres.DefaultConfig()
		pg.Host = cfg.Database.Postgres.Host
		pg.Port = cfg.Database.Postgres.Port
		pg.Database = cfg.Database.Postgres.Database
		pg.User = cfg.Database.Postgres.User
		pg.Password = cfg.Database.Postgres.Password
		pg.SSLMode = cfg.Database.Postgres.SSLMode

		db, err := postgres.New(ctx, pg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return db, nil
	}

	return nil, fmt.Errorf("unknown database backend %q", backend)
}

func resolveSQLitePath(cfg config.Config, explicitPath string, create bool) (string, error) {
	if explicitPath != "" {
		return explicitPath, nil
	}
	if cfg.Database.Path != "" {
		return cfg.Database.Path, nil
	}

	path, err := storage.DiscoverDatabase()
	if err == nil {
		return path, nil
	}
	if !create {
		return "", err
	}

	cwd, cwdErr := os.Getwd()
	if cwdErr != nil {
		return "", fmt.Errorf("failed to get current directory: %w", cwdErr)
	}
	path = storage.DefaultDatabasePath(cwd)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	return path, nil
}
