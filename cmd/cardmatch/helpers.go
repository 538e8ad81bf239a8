package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cardmatch/internal/config"
	"cardmatch/internal/reconcile"
	"cardmatch/internal/storage"
)

// openEngine opens the decision store at the configured path, runs migrations,
// and wraps it in a reconciliation engine. The returned cleanup closes the store.
func openEngine(ctx context.Context) (*reconcile.Engine, func(), error) {
	dbPath := config.DatabasePath()

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database at %s: %w", dbPath, err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}

	return reconcile.New(store), cleanup, nil
}
