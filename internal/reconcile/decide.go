package reconcile

import (
	"context"
	"errors"
	"fmt"

	"cardmatch/internal/common"
	"cardmatch/internal/model"
	"cardmatch/internal/service"
)

// Decide records a manual accept or reject for a pair. When the pair already
// has a decision row (usually pending from a run), its recorded similarity
// and display fields are kept; otherwise a bare row is created. Accepts go
// through the same atomic conflict check as auto-accepts and return a
// ConflictError on violation.
func (e *Engine) Decide(ctx context.Context, sellID, buyID string, accept bool, notes string) (*model.MatchDecision, error) {
	if sellID == "" || buyID == "" {
		return nil, fmt.Errorf("%w: sell and buy identifiers are required", common.ErrInvalidInput)
	}

	decision, err := e.store.GetDecision(ctx, sellID, buyID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		decision = &model.MatchDecision{SellID: sellID, BuyID: buyID}
	}

	if accept {
		decision.Status = model.StatusAccepted
	} else {
		decision.Status = model.StatusRejected
	}
	if notes != "" {
		decision.Notes = notes
	}

	if _, err := e.store.SaveDecision(ctx, decision); err != nil {
		return nil, err
	}
	return decision, nil
}

// ListConflicts returns conflict events, optionally filtered by resolution
// state.
func (e *Engine) ListConflicts(ctx context.Context, resolution model.ConflictResolution) ([]model.ConflictEvent, error) {
	return e.store.GetConflicts(ctx, resolution)
}

// ResolveConflict marks a conflict resolved, optionally replacing the prior
// winning decision.
func (e *Engine) ResolveConflict(ctx context.Context, id int64, action string, replaceExisting bool) error {
	return e.store.ResolveConflict(ctx, id, action, replaceExisting)
}

// ListDecisions returns decisions, optionally filtered by status.
func (e *Engine) ListDecisions(ctx context.Context, statuses []model.DecisionStatus) ([]model.MatchDecision, error) {
	return e.store.ListDecisions(ctx, statuses)
}

// ClearPending drops pending decisions so the next run re-proposes them.
func (e *Engine) ClearPending(ctx context.Context) (int64, error) {
	return e.store.ClearPending(ctx)
}

// ListNonMatches returns the permanent exclusion set.
func (e *Engine) ListNonMatches(ctx context.Context) (map[service.Pair]model.NonMatch, error) {
	return e.store.GetNonMatches(ctx)
}

// AddNonMatch excludes a pair from all future matching.
func (e *Engine) AddNonMatch(ctx context.Context, sellID, buyID, reason string) (int64, error) {
	if sellID == "" || buyID == "" {
		return 0, fmt.Errorf("%w: sell and buy identifiers are required", common.ErrInvalidInput)
	}
	return e.store.AddNonMatch(ctx, &model.NonMatch{
		SellID:     sellID,
		BuyID:      buyID,
		Reason:     reason,
		RejectedBy: model.OriginUser,
		Permanent:  true,
	})
}

// RemoveNonMatch lifts an exclusion.
func (e *Engine) RemoveNonMatch(ctx context.Context, sellID, buyID string) error {
	return e.store.RemoveNonMatch(ctx, sellID, buyID)
}

// Statistics summarizes the decision ledger.
func (e *Engine) Statistics(ctx context.Context) (*service.DecisionStatistics, error) {
	return e.store.GetStatistics(ctx)
}

// Sessions lists recent run audit records.
func (e *Engine) Sessions(ctx context.Context, limit int) ([]model.MatchSession, error) {
	return e.store.ListSessions(ctx, limit)
}

// ClearAll wipes all persisted reconciliation state.
func (e *Engine) ClearAll(ctx context.Context) (*service.ClearResult, error) {
	return e.store.ClearAll(ctx)
}
