package storage

import (
	"context"
	"database/sql"
	"fmt"

	"cardmatch/internal/common"
	"cardmatch/internal/model"
)

// GetConflicts returns recorded conflict events, newest first. Pass an empty
// resolution to list everything.
func (s *SQLiteStorage) GetConflicts(ctx context.Context, resolution model.ConflictResolution) ([]model.ConflictEvent, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, conflict_type, sell_id, buy_id, existing_id,
		       attempted_score, attempted_status, message,
		       resolution, resolution_action, resolved_at, created_at
		FROM conflict_events`
	var args []any
	if resolution != "" {
		query += " WHERE resolution = ?"
		args = append(args, string(resolution))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conflicts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var conflicts []model.ConflictEvent
	for rows.Next() {
		var c model.ConflictEvent
		var conflictType, res string
		var attemptedStatus, message, action sql.NullString
		var existingID sql.NullInt64
		var resolvedAt sql.NullTime
		if err := rows.Scan(
			&c.ID, &conflictType, &c.SellID, &c.BuyID, &existingID,
			&c.AttemptedScore, &attemptedStatus, &message,
			&res, &action, &resolvedAt, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan conflict: %w", err)
		}
		c.Type = model.ConflictType(conflictType)
		c.Resolution = model.ConflictResolution(res)
		c.AttemptedStatus = model.DecisionStatus(attemptedStatus.String)
		c.Message = message.String
		c.ResolutionAction = action.String
		c.ExistingID = existingID.Int64
		c.ResolvedAt = resolvedAt.Time
		conflicts = append(conflicts, c)
	}

	return conflicts, rows.Err()
}

// ResolveConflict marks a conflict event resolved. With replaceExisting the
// prior winning decision is soft-deleted by flipping its status to
// "replaced", keeping the audit trail intact.
func (s *SQLiteStorage) ResolveConflict(ctx context.Context, id int64, action string, replaceExisting bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(action, "action"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existingID sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT existing_id FROM conflict_events WHERE id = ?`, id,
	).Scan(&existingID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: conflict event %d", common.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to load conflict event: %w", err)
	}

	if replaceExisting && existingID.Valid {
		if _, err = tx.ExecContext(ctx, `
			UPDATE decisions
			SET status = 'replaced',
			    notes = CASE WHEN notes IS NULL OR notes = ''
			                 THEN 'replaced during conflict resolution'
			                 ELSE notes || '; replaced during conflict resolution' END,
			    updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, existingID.Int64); err != nil {
			return fmt.Errorf("failed to replace existing decision: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE conflict_events
		SET resolution = 'resolved',
		    resolution_action = ?,
		    resolved_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, action, id); err != nil {
		return fmt.Errorf("failed to resolve conflict: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit conflict resolution: %w", err)
	}
	return nil
}
