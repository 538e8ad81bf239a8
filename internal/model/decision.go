package model

import "time"

// DecisionStatus indicates how a match pair was decided.
type DecisionStatus string

// Decision status constants.
const (
	StatusPending         DecisionStatus = "pending"
	StatusAccepted        DecisionStatus = "accepted"
	StatusRejected        DecisionStatus = "rejected"
	StatusAutoAccepted    DecisionStatus = "auto_accepted"
	StatusAutoRejected    DecisionStatus = "auto_rejected"
	StatusConflictBlocked DecisionStatus = "conflict_blocked"
	StatusReplaced        DecisionStatus = "replaced"
)

// IsAccepting reports whether the status claims the pair as a live 1:1 match.
// Only these statuses participate in uniqueness enforcement.
func (s DecisionStatus) IsAccepting() bool {
	return s == StatusAccepted || s == StatusAutoAccepted
}

// Valid reports whether s is a known decision status.
func (s DecisionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusAutoAccepted,
		StatusAutoRejected, StatusConflictBlocked, StatusReplaced:
		return true
	}
	return false
}

// MatchDecision is the persisted decision for a (sell, buy) pair.
// At most one row exists per pair; writes are upserts.
type MatchDecision struct {
	CreatedAt           time.Time
	UpdatedAt           time.Time
	SellID              string
	SellProductName     string
	SellSetName         string
	BuyID               string
	BuyCardName         string
	BuyEdition          string
	Status              DecisionStatus
	Notes               string
	ID                  int64
	Similarity          float64
	AutoAcceptThreshold float64
}
