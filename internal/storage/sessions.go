package storage

import (
	"context"
	"database/sql"
	"fmt"

	"cardmatch/internal/model"
	"cardmatch/internal/service"
)

// SaveSession appends an audit record for one reconciliation run.
func (s *SQLiteStorage) SaveSession(ctx context.Context, session *model.MatchSession) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateSession(session); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (
			sell_items, buy_items, matches_found,
			similarity_threshold, max_matches_per_item, auto_accept_threshold,
			processing_seconds, config_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		session.SellItems, session.BuyItems, session.MatchesFound,
		session.SimilarityThreshold, session.MaxMatchesPerItem, session.AutoAcceptThreshold,
		session.ProcessingSeconds, session.ConfigJSON,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read session id: %w", err)
	}
	session.ID = id
	return id, nil
}

// ListSessions returns the most recent sessions, newest first.
func (s *SQLiteStorage) ListSessions(ctx context.Context, limit int) ([]model.MatchSession, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, sell_items, buy_items, matches_found,
		       similarity_threshold, max_matches_per_item, auto_accept_threshold,
		       processing_seconds, config_json
		FROM sessions
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []model.MatchSession
	for rows.Next() {
		var sess model.MatchSession
		var configJSON sql.NullString
		if err := rows.Scan(
			&sess.ID, &sess.StartedAt, &sess.SellItems, &sess.BuyItems, &sess.MatchesFound,
			&sess.SimilarityThreshold, &sess.MaxMatchesPerItem, &sess.AutoAcceptThreshold,
			&sess.ProcessingSeconds, &configJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sess.ConfigJSON = configJSON.String
		sessions = append(sessions, sess)
	}

	return sessions, rows.Err()
}

// GetStatistics summarizes the decision ledger.
func (s *SQLiteStorage) GetStatistics(ctx context.Context) (*service.DecisionStatistics, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	stats := &service.DecisionStatistics{
		ByStatus: make(map[model.DecisionStatus]int),
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM decisions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to query status counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		stats.ByStatus[model.DecisionStatus(status)] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.Total > 0 {
		err = s.db.QueryRowContext(ctx, `
			SELECT MIN(similarity), MAX(similarity), AVG(similarity)
			FROM decisions
		`).Scan(&stats.MinSimilarity, &stats.MaxSimilarity, &stats.AvgSimilarity)
		if err != nil {
			return nil, fmt.Errorf("failed to query similarity stats: %w", err)
		}
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM decisions
		WHERE updated_at >= datetime('now', '-1 day')
	`).Scan(&stats.Recent)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent decisions: %w", err)
	}

	return stats, nil
}

// ClearAll resets every persisted table and reports what was removed.
func (s *SQLiteStorage) ClearAll(ctx context.Context) (*service.ClearResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result := &service.ClearResult{}
	// conflict_events goes first: it holds the foreign key into decisions.
	for _, target := range []struct {
		count *int64
		table string
	}{
		{&result.Conflicts, "conflict_events"},
		{&result.Decisions, "decisions"},
		{&result.NonMatches, "non_matches"},
		{&result.Sessions, "sessions"},
	} {
		res, execErr := tx.ExecContext(ctx, "DELETE FROM "+target.table)
		if execErr != nil {
			return nil, fmt.Errorf("failed to clear %s: %w", target.table, execErr)
		}
		if *target.count, execErr = res.RowsAffected(); execErr != nil {
			return nil, fmt.Errorf("failed to count cleared %s: %w", target.table, execErr)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reset: %w", err)
	}
	return result, nil
}
