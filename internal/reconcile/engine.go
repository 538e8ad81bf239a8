// Package reconcile orchestrates matching runs: it feeds both inventories
// through the matching core, filters against persisted state, applies the
// auto-accept policy and writes the outcome back to the decision store.
package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cardmatch/internal/common"
	"cardmatch/internal/match"
	"cardmatch/internal/model"
	"cardmatch/internal/service"
)

// Engine runs reconciliation over a (sell, buy) inventory snapshot. It holds
// no inventory state between runs; the decision store is the only memory.
// Runs against the same store must not overlap; serializing them is the
// caller's responsibility.
type Engine struct {
	store service.DecisionStore
}

// New creates a reconciliation engine backed by the given store.
func New(store service.DecisionStore) *Engine {
	return &Engine{store: store}
}

// FindMatches executes one full matching run and persists its decisions.
func (e *Engine) FindMatches(ctx context.Context, sell []model.SellRecord, buy []model.BuyRecord, opts Options) (*RunResult, error) {
	start := time.Now()

	if len(sell) == 0 {
		return nil, fmt.Errorf("%w: sell inventory", common.ErrEmptyInventory)
	}
	if len(buy) == 0 {
		return nil, fmt.Errorf("%w: buy inventory", common.ErrEmptyInventory)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	stats := RunStats{
		TotalSellItems:   len(sell),
		TotalBuyItems:    len(buy),
		ConfidenceCounts: make(map[model.Confidence]int),
	}

	// Filter stage: drop sell items that are already matched.
	working := sell
	if opts.SkipDecided {
		accepted, err := e.store.GetAcceptedSellIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load accepted sell ids: %w", err)
		}
		working = make([]model.SellRecord, 0, len(sell))
		for _, r := range sell {
			if _, ok := accepted[r.ID]; ok {
				stats.SkippedDecided++
				continue
			}
			working = append(working, r)
		}
	}
	stats.WorkingSell = len(working)

	if len(working) == 0 {
		slog.Info("All sell items already decided, nothing to match",
			"skipped", stats.SkippedDecided)
		stats.ProcessingSeconds = time.Since(start).Seconds()
		return &RunResult{Stats: stats}, nil
	}

	// Candidate stage: compose, fit one shared vector space, score.
	candidates, vocabSize := e.extractCandidates(working, buy, opts)
	stats.VocabularySize = vocabSize

	// Exclusion stage: drop permanently excluded pairs.
	nonMatches, err := e.store.GetNonMatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load non-matches: %w", err)
	}
	kept := candidates[:0]
	for _, c := range candidates {
		if _, excluded := nonMatches[service.Pair{SellID: c.Sell.ID, BuyID: c.Buy.ID}]; excluded {
			stats.ExcludedPairs++
			continue
		}
		kept = append(kept, c)
	}
	candidates = kept

	// Decision stage: per sell group, the leader is auto-accepted when it
	// clears the threshold and its siblings are auto-rejected. A leader
	// blocked by a conflict leaves its siblings pending so they remain
	// available once the conflict is resolved.
	if err := e.decideGroups(ctx, candidates, opts, &stats); err != nil {
		return nil, err
	}

	stats.MatchesFound = len(candidates)
	computeScoreStats(&stats, candidates)
	stats.ProcessingSeconds = time.Since(start).Seconds()

	sessionID := e.audit(ctx, opts, &stats)

	slog.Info("Matching run complete",
		"sell_items", stats.WorkingSell,
		"buy_items", stats.TotalBuyItems,
		"matches", stats.MatchesFound,
		"auto_accepted", stats.AutoAccepted,
		"conflicts", stats.ConflictBlocked,
		"seconds", stats.ProcessingSeconds)

	return &RunResult{Matches: candidates, Stats: stats, SessionID: sessionID}, nil
}

// extractCandidates runs the matching core over the working inventories.
// Composition and transformation of the two sides are independent, so each
// runs on its own goroutine; the vectorizer itself is fit once on the union
// corpus so both sides share one vocabulary.
func (e *Engine) extractCandidates(sell []model.SellRecord, buy []model.BuyRecord, opts Options) ([]model.MatchCandidate, int) {
	var sellTexts, buyTexts []string
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		sellTexts = match.ComposeSellAll(sell, opts.Features)
	}()
	go func() {
		defer wg.Done()
		buyTexts = match.ComposeBuyAll(buy, opts.Features)
	}()
	wg.Wait()

	corpus := make([]string, 0, len(sellTexts)+len(buyTexts))
	corpus = append(corpus, sellTexts...)
	corpus = append(corpus, buyTexts...)

	vectorizer := match.NewVectorizer(opts.Vectorizer)
	vectorizer.Fit(corpus)

	var sellVecs, buyVecs []match.Vector
	wg.Add(2)
	go func() {
		defer wg.Done()
		sellVecs = vectorizer.Transform(sellTexts)
	}()
	go func() {
		defer wg.Done()
		buyVecs = vectorizer.Transform(buyTexts)
	}()
	wg.Wait()

	matrix := match.SimilarityMatrix(sellVecs, buyVecs, opts.matrixThreshold())
	candidates := match.TopMatches(matrix, sell, buy, opts.MaxMatchesPerItem, opts.SimilarityThreshold)
	return candidates, vectorizer.VocabularySize()
}

// decideGroups applies the auto-accept policy and persists every candidate's
// resulting status. Uniqueness is enforced only here, through the store's
// atomic check-and-save; the earlier stages just narrow the search space.
func (e *Engine) decideGroups(ctx context.Context, candidates []model.MatchCandidate, opts Options, stats *RunStats) error {
	groups := groupBySell(candidates)

	for _, group := range groups {
		leader := &candidates[group[0]]
		autoAccept := opts.AutoAcceptThreshold > 0 && leader.Similarity >= opts.AutoAcceptThreshold

		if !autoAccept {
			for _, idx := range group {
				candidates[idx].Status = model.StatusPending
				stats.Pending++
			}
			if err := e.persistGroup(ctx, candidates, group, opts); err != nil {
				return err
			}
			continue
		}

		leader.Status = model.StatusAutoAccepted
		_, err := e.store.SaveDecision(ctx, decisionFromCandidate(*leader, opts))
		switch {
		case err == nil:
			stats.AutoAccepted++
			for _, idx := range group[1:] {
				candidates[idx].Status = model.StatusAutoRejected
				stats.AutoRejected++
			}
		case errors.Is(err, common.ErrConflict):
			leader.Status = model.StatusConflictBlocked
			stats.ConflictBlocked++
			for _, idx := range group[1:] {
				candidates[idx].Status = model.StatusPending
				stats.Pending++
			}
			slog.Warn("Auto-accept blocked by conflict",
				"sell_id", leader.Sell.ID,
				"buy_id", leader.Buy.ID,
				"similarity", leader.Similarity,
				"error", err)
		default:
			return fmt.Errorf("failed to save auto-accepted decision: %w", err)
		}

		if err := e.persistGroup(ctx, candidates, group, opts); err != nil {
			return err
		}
	}

	return nil
}

// persistGroup writes the non-accepting statuses of a group. The accepting
// leader was already saved through the conflict-checked path.
func (e *Engine) persistGroup(ctx context.Context, candidates []model.MatchCandidate, group []int, opts Options) error {
	for _, idx := range group {
		c := candidates[idx]
		if c.Status.IsAccepting() {
			continue
		}
		if _, err := e.store.SaveDecision(ctx, decisionFromCandidate(c, opts)); err != nil {
			return fmt.Errorf("failed to save %s decision for (%s, %s): %w",
				c.Status, c.Sell.ID, c.Buy.ID, err)
		}
	}
	return nil
}

// groupBySell clusters candidate indices by sell identifier, preserving the
// score-descending order TopMatches produced within each group.
func groupBySell(candidates []model.MatchCandidate) [][]int {
	order := make([]string, 0)
	index := make(map[string][]int)
	for i, c := range candidates {
		if _, ok := index[c.Sell.ID]; !ok {
			order = append(order, c.Sell.ID)
		}
		index[c.Sell.ID] = append(index[c.Sell.ID], i)
	}

	groups := make([][]int, len(order))
	for i, id := range order {
		groups[i] = index[id]
	}
	return groups
}

func decisionFromCandidate(c model.MatchCandidate, opts Options) *model.MatchDecision {
	return &model.MatchDecision{
		SellID:              c.Sell.ID,
		SellProductName:     c.Sell.ProductName,
		SellSetName:         c.Sell.SetName,
		BuyID:               c.Buy.ID,
		BuyCardName:         c.Buy.CardName,
		BuyEdition:          c.Buy.Edition,
		Similarity:          c.Similarity,
		Status:              c.Status,
		AutoAcceptThreshold: opts.AutoAcceptThreshold,
	}
}

// audit persists the session record. A failed audit write is logged but does
// not fail the run; the decisions themselves are already durable.
func (e *Engine) audit(ctx context.Context, opts Options, stats *RunStats) int64 {
	configJSON, err := json.Marshal(opts)
	if err != nil {
		slog.Warn("Failed to encode session config", "error", err)
		configJSON = []byte("{}")
	}

	id, err := e.store.SaveSession(ctx, &model.MatchSession{
		SellItems:           stats.TotalSellItems,
		BuyItems:            stats.TotalBuyItems,
		MatchesFound:        stats.MatchesFound,
		SimilarityThreshold: opts.SimilarityThreshold,
		MaxMatchesPerItem:   opts.MaxMatchesPerItem,
		AutoAcceptThreshold: opts.AutoAcceptThreshold,
		ProcessingSeconds:   stats.ProcessingSeconds,
		ConfigJSON:          string(configJSON),
	})
	if err != nil {
		slog.Warn("Failed to save match session", "error", err)
		return 0
	}
	return id
}
