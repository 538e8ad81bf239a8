package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a fatal
// error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Decision ledger and non-match exclusions",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS decisions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					sell_id TEXT NOT NULL,
					sell_product_name TEXT,
					sell_set_name TEXT,
					buy_id TEXT NOT NULL,
					buy_card_name TEXT,
					buy_edition TEXT,
					similarity REAL NOT NULL,
					status TEXT NOT NULL DEFAULT 'pending',
					auto_accept_threshold REAL DEFAULT 0,
					notes TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(sell_id, buy_id)
				)`,
				`CREATE INDEX IF NOT EXISTS idx_decisions_sell_id ON decisions(sell_id)`,
				`CREATE INDEX IF NOT EXISTS idx_decisions_buy_id ON decisions(buy_id)`,
				`CREATE INDEX IF NOT EXISTS idx_decisions_status ON decisions(status)`,

				`CREATE TABLE IF NOT EXISTS non_matches (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					sell_id TEXT NOT NULL,
					buy_id TEXT NOT NULL,
					sell_product_name TEXT,
					sell_set_name TEXT,
					buy_card_name TEXT,
					buy_edition TEXT,
					reason TEXT,
					similarity REAL DEFAULT 0,
					rejected_by TEXT NOT NULL DEFAULT 'user',
					permanent BOOLEAN NOT NULL DEFAULT 1,
					rejected_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(sell_id, buy_id)
				)`,
				`CREATE INDEX IF NOT EXISTS idx_non_matches_permanent ON non_matches(permanent)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Conflict events and session audit log",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS conflict_events (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					conflict_type TEXT NOT NULL,
					sell_id TEXT NOT NULL,
					buy_id TEXT NOT NULL,
					existing_id INTEGER,
					attempted_score REAL DEFAULT 0,
					attempted_status TEXT,
					message TEXT,
					resolution TEXT NOT NULL DEFAULT 'unresolved',
					resolution_action TEXT,
					resolved_at DATETIME,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (existing_id) REFERENCES decisions(id)
				)`,
				`CREATE INDEX IF NOT EXISTS idx_conflict_events_resolution ON conflict_events(resolution)`,

				`CREATE TABLE IF NOT EXISTS sessions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					sell_items INTEGER DEFAULT 0,
					buy_items INTEGER DEFAULT 0,
					matches_found INTEGER DEFAULT 0,
					similarity_threshold REAL DEFAULT 0,
					max_matches_per_item INTEGER DEFAULT 0,
					auto_accept_threshold REAL DEFAULT 0,
					processing_seconds REAL DEFAULT 0,
					config_json TEXT
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Index decisions by similarity for statistics queries",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_decisions_similarity ON decisions(similarity)`)
			return err
		},
	},
}

// Migrate applies any outstanding schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
