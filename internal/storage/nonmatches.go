package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cardmatch/internal/common"
	"cardmatch/internal/model"
	"cardmatch/internal/service"
)

// AddNonMatch permanently excludes a pair from future matching. Idempotent:
// re-adding an existing pair refreshes the reason and score.
func (s *SQLiteStorage) AddNonMatch(ctx context.Context, nm *model.NonMatch) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateNonMatch(nm); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := addNonMatchTx(ctx, tx, nm); err != nil {
		return 0, err
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM non_matches WHERE sell_id = ? AND buy_id = ?`,
		nm.SellID, nm.BuyID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to read non-match id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit non-match: %w", err)
	}

	nm.ID = id
	return id, nil
}

func addNonMatchTx(ctx context.Context, tx *sql.Tx, nm *model.NonMatch) error {
	rejectedBy := nm.RejectedBy
	if rejectedBy == "" {
		rejectedBy = model.OriginUser
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO non_matches (
			sell_id, buy_id, sell_product_name, sell_set_name,
			buy_card_name, buy_edition, reason, similarity,
			rejected_by, permanent
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(sell_id, buy_id) DO UPDATE SET
			reason = excluded.reason,
			similarity = excluded.similarity,
			rejected_by = excluded.rejected_by,
			permanent = excluded.permanent,
			rejected_at = CURRENT_TIMESTAMP
	`,
		nm.SellID, nm.BuyID, nm.SellProductName, nm.SellSetName,
		nm.BuyCardName, nm.BuyEdition, nm.Reason, nm.Similarity,
		string(rejectedBy), nm.Permanent,
	)
	if err != nil {
		return fmt.Errorf("failed to save non-match: %w", err)
	}
	return nil
}

// RemoveNonMatch lifts a permanent exclusion. Returns ErrNotFound when the
// pair was never excluded.
func (s *SQLiteStorage) RemoveNonMatch(ctx context.Context, sellID, buyID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(sellID, "sellID"); err != nil {
		return err
	}
	if err := validateString(buyID, "buyID"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM non_matches WHERE sell_id = ? AND buy_id = ?`, sellID, buyID)
	if err != nil {
		return fmt.Errorf("failed to remove non-match: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: non-match (%s, %s)", common.ErrNotFound, sellID, buyID)
	}
	return nil
}

// GetNonMatches returns every permanently excluded pair keyed by (sell, buy).
func (s *SQLiteStorage) GetNonMatches(ctx context.Context) (map[service.Pair]model.NonMatch, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sell_id, buy_id, sell_product_name, sell_set_name,
		       buy_card_name, buy_edition, reason, similarity,
		       rejected_by, permanent, rejected_at
		FROM non_matches
		WHERE permanent = 1
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query non-matches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	nonMatches := make(map[service.Pair]model.NonMatch)
	for rows.Next() {
		var nm model.NonMatch
		var rejectedBy string
		var reason sql.NullString
		var rejectedAt time.Time
		if err := rows.Scan(
			&nm.ID, &nm.SellID, &nm.BuyID, &nm.SellProductName, &nm.SellSetName,
			&nm.BuyCardName, &nm.BuyEdition, &reason, &nm.Similarity,
			&rejectedBy, &nm.Permanent, &rejectedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan non-match: %w", err)
		}
		nm.Reason = reason.String
		nm.RejectedBy = model.NonMatchOrigin(rejectedBy)
		nm.RejectedAt = rejectedAt
		nonMatches[service.Pair{SellID: nm.SellID, BuyID: nm.BuyID}] = nm
	}

	return nonMatches, rows.Err()
}
