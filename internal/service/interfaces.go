// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"cardmatch/internal/model"
)

// Pair identifies a (sell, buy) decision pair.
type Pair struct {
	SellID string
	BuyID  string
}

// DecisionStore defines the contract for the persistence layer that owns
// decisions, exclusions, conflicts and session audit records.
type DecisionStore interface {
	// Decision operations. SaveDecision enforces the 1:1 constraint for
	// accepting statuses atomically: on violation it records a
	// ConflictEvent, writes nothing else, and returns a ConflictError.
	SaveDecision(ctx context.Context, decision *model.MatchDecision) (int64, error)
	GetDecision(ctx context.Context, sellID, buyID string) (*model.MatchDecision, error)
	GetExistingDecisions(ctx context.Context) (map[Pair]model.DecisionStatus, error)
	GetAcceptedSellIDs(ctx context.Context) (map[string]model.DecisionStatus, error)
	ListDecisions(ctx context.Context, statuses []model.DecisionStatus) ([]model.MatchDecision, error)
	ClearPending(ctx context.Context) (int64, error)

	// Non-match exclusions.
	AddNonMatch(ctx context.Context, nonMatch *model.NonMatch) (int64, error)
	RemoveNonMatch(ctx context.Context, sellID, buyID string) error
	GetNonMatches(ctx context.Context) (map[Pair]model.NonMatch, error)

	// Conflict review.
	GetConflicts(ctx context.Context, resolution model.ConflictResolution) ([]model.ConflictEvent, error)
	ResolveConflict(ctx context.Context, id int64, action string, replaceExisting bool) error

	// Audit and housekeeping.
	SaveSession(ctx context.Context, session *model.MatchSession) (int64, error)
	ListSessions(ctx context.Context, limit int) ([]model.MatchSession, error)
	GetStatistics(ctx context.Context) (*DecisionStatistics, error)
	ClearAll(ctx context.Context) (*ClearResult, error)

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}

// DecisionStatistics summarizes the decision ledger.
type DecisionStatistics struct {
	ByStatus      map[model.DecisionStatus]int
	Total         int
	Recent        int // decisions touched in the last 24h
	MinSimilarity float64
	MaxSimilarity float64
	AvgSimilarity float64
}

// ClearResult reports rows removed by an administrative reset.
type ClearResult struct {
	Decisions  int64
	NonMatches int64
	Conflicts  int64
	Sessions   int64
}
