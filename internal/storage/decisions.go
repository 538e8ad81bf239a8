package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cardmatch/internal/common"
	"cardmatch/internal/model"
	"cardmatch/internal/service"
)

// SaveDecision persists a decision for a (sell, buy) pair with upsert
// semantics. For accepting statuses the 1:1 constraint is checked and the
// row written inside a single transaction, so concurrent saves for the same
// sell or buy identifier cannot race past the check. On a violation the
// decision is not written; a ConflictEvent is recorded and a ConflictError
// returned.
func (s *SQLiteStorage) SaveDecision(ctx context.Context, d *model.MatchDecision) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateDecision(d); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if d.Status.IsAccepting() {
		if conflictErr := s.checkConflictTx(ctx, tx, d); conflictErr != nil {
			// The conflict event must survive even though the decision
			// write is refused.
			if commitErr := tx.Commit(); commitErr != nil {
				return 0, fmt.Errorf("failed to commit conflict event: %w", commitErr)
			}
			return 0, conflictErr
		}
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO decisions (
			sell_id, sell_product_name, sell_set_name,
			buy_id, buy_card_name, buy_edition,
			similarity, status, auto_accept_threshold, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(sell_id, buy_id) DO UPDATE SET
			similarity = excluded.similarity,
			status = excluded.status,
			auto_accept_threshold = excluded.auto_accept_threshold,
			notes = excluded.notes,
			updated_at = CURRENT_TIMESTAMP
	`,
		d.SellID, d.SellProductName, d.SellSetName,
		d.BuyID, d.BuyCardName, d.BuyEdition,
		d.Similarity, string(d.Status), d.AutoAcceptThreshold, d.Notes,
	); err != nil {
		return 0, fmt.Errorf("failed to save decision: %w", err)
	}

	var decisionID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM decisions WHERE sell_id = ? AND buy_id = ?`,
		d.SellID, d.BuyID,
	).Scan(&decisionID)
	if err != nil {
		return 0, fmt.Errorf("failed to read decision id: %w", err)
	}

	// A rejection also permanently excludes the pair from future runs.
	if d.Status == model.StatusRejected {
		reason := d.Notes
		if reason == "" {
			reason = "match rejected"
		}
		if err = addNonMatchTx(ctx, tx, &model.NonMatch{
			SellID:          d.SellID,
			BuyID:           d.BuyID,
			SellProductName: d.SellProductName,
			SellSetName:     d.SellSetName,
			BuyCardName:     d.BuyCardName,
			BuyEdition:      d.BuyEdition,
			Reason:          reason,
			Similarity:      d.Similarity,
			RejectedBy:      model.OriginUser,
			Permanent:       true,
		}); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit decision: %w", err)
	}

	d.ID = decisionID
	return decisionID, nil
}

// checkConflictTx looks for an existing accepted decision that claims either
// side of the pair. If one exists it records a ConflictEvent in the same
// transaction and returns the ConflictError; nil means the pair is free.
func (s *SQLiteStorage) checkConflictTx(ctx context.Context, tx *sql.Tx, d *model.MatchDecision) error {
	checks := []struct {
		conflictType model.ConflictType
		query        string
		arg          string
	}{
		{
			conflictType: model.ConflictSell,
			query: `SELECT id, sell_id, buy_id FROM decisions
				WHERE sell_id = ? AND buy_id <> ? AND status IN ('accepted', 'auto_accepted')`,
			arg: d.SellID,
		},
		{
			conflictType: model.ConflictBuy,
			query: `SELECT id, sell_id, buy_id FROM decisions
				WHERE buy_id = ? AND sell_id <> ? AND status IN ('accepted', 'auto_accepted')`,
			arg: d.BuyID,
		},
	}

	for _, check := range checks {
		var existingID int64
		var existingSellID, existingBuyID string

		other := d.BuyID
		if check.conflictType == model.ConflictBuy {
			other = d.SellID
		}

		err := tx.QueryRowContext(ctx, check.query, check.arg, other).
			Scan(&existingID, &existingSellID, &existingBuyID)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", check.conflictType, err)
		}

		conflictErr := &common.ConflictError{
			Type:           string(check.conflictType),
			SellID:         d.SellID,
			BuyID:          d.BuyID,
			ExistingSellID: existingSellID,
			ExistingBuyID:  existingBuyID,
			ExistingID:     existingID,
		}

		if _, insErr := tx.ExecContext(ctx, `
			INSERT INTO conflict_events (
				conflict_type, sell_id, buy_id, existing_id,
				attempted_score, attempted_status, message
			) VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			string(check.conflictType), d.SellID, d.BuyID, existingID,
			d.Similarity, string(d.Status), conflictErr.Error(),
		); insErr != nil {
			return fmt.Errorf("failed to record conflict event: %w", insErr)
		}

		return conflictErr
	}

	return nil
}

// GetDecision returns the decision row for a pair, or ErrNotFound.
func (s *SQLiteStorage) GetDecision(ctx context.Context, sellID, buyID string) (*model.MatchDecision, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(sellID, "sellID"); err != nil {
		return nil, err
	}
	if err := validateString(buyID, "buyID"); err != nil {
		return nil, err
	}

	var d model.MatchDecision
	var status string
	var notes sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, sell_id, sell_product_name, sell_set_name,
		       buy_id, buy_card_name, buy_edition,
		       similarity, status, auto_accept_threshold, notes,
		       created_at, updated_at
		FROM decisions
		WHERE sell_id = ? AND buy_id = ?
	`, sellID, buyID).Scan(
		&d.ID, &d.SellID, &d.SellProductName, &d.SellSetName,
		&d.BuyID, &d.BuyCardName, &d.BuyEdition,
		&d.Similarity, &status, &d.AutoAcceptThreshold, &notes,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: decision (%s, %s)", common.ErrNotFound, sellID, buyID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load decision: %w", err)
	}
	d.Status = model.DecisionStatus(status)
	d.Notes = notes.String
	return &d, nil
}

// GetExistingDecisions returns every decided pair keyed by (sell, buy).
func (s *SQLiteStorage) GetExistingDecisions(ctx context.Context) (map[service.Pair]model.DecisionStatus, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT sell_id, buy_id, status FROM decisions
		WHERE status IN ('accepted', 'rejected', 'auto_accepted')
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	decisions := make(map[service.Pair]model.DecisionStatus)
	for rows.Next() {
		var sellID, buyID, status string
		if err := rows.Scan(&sellID, &buyID, &status); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		decisions[service.Pair{SellID: sellID, BuyID: buyID}] = model.DecisionStatus(status)
	}

	return decisions, rows.Err()
}

// GetAcceptedSellIDs returns sell identifiers that already hold an accepted
// or auto-accepted match.
func (s *SQLiteStorage) GetAcceptedSellIDs(ctx context.Context) (map[string]model.DecisionStatus, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT sell_id, status FROM decisions
		WHERE status IN ('accepted', 'auto_accepted')
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accepted sell ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	accepted := make(map[string]model.DecisionStatus)
	for rows.Next() {
		var sellID, status string
		if err := rows.Scan(&sellID, &status); err != nil {
			return nil, fmt.Errorf("failed to scan accepted sell id: %w", err)
		}
		accepted[sellID] = model.DecisionStatus(status)
	}

	return accepted, rows.Err()
}

// ListDecisions returns decisions, optionally filtered to the given statuses,
// newest first.
func (s *SQLiteStorage) ListDecisions(ctx context.Context, statuses []model.DecisionStatus) ([]model.MatchDecision, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, sell_id, sell_product_name, sell_set_name,
		       buy_id, buy_card_name, buy_edition,
		       similarity, status, auto_accept_threshold, notes,
		       created_at, updated_at
		FROM decisions`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, st := range statuses {
			placeholders[i] = "?"
			args = append(args, string(st))
		}
		query += " WHERE status IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY updated_at DESC, sell_id, similarity DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var decisions []model.MatchDecision
	for rows.Next() {
		var d model.MatchDecision
		var status string
		var notes sql.NullString
		var createdAt, updatedAt time.Time
		if err := rows.Scan(
			&d.ID, &d.SellID, &d.SellProductName, &d.SellSetName,
			&d.BuyID, &d.BuyCardName, &d.BuyEdition,
			&d.Similarity, &status, &d.AutoAcceptThreshold, &notes,
			&createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		d.Status = model.DecisionStatus(status)
		d.Notes = notes.String
		d.CreatedAt = createdAt
		d.UpdatedAt = updatedAt
		decisions = append(decisions, d)
	}

	return decisions, rows.Err()
}

// ClearPending removes all pending decisions, typically before a fresh run.
func (s *SQLiteStorage) ClearPending(ctx context.Context) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM decisions WHERE status = 'pending'`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear pending decisions: %w", err)
	}
	return result.RowsAffected()
}
