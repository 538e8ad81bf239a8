package model

import "time"

// ConflictType identifies which side of the 1:1 constraint was violated.
type ConflictType string

// Conflict type constants.
const (
	ConflictSell ConflictType = "sell_conflict"
	ConflictBuy  ConflictType = "buy_conflict"
)

// ConflictResolution is the review state of a recorded conflict.
type ConflictResolution string

// Conflict resolution constants.
const (
	ResolutionUnresolved ConflictResolution = "unresolved"
	ResolutionResolved   ConflictResolution = "resolved"
	ResolutionIgnored    ConflictResolution = "ignored"
)

// ConflictEvent records an attempted acceptance that would have violated the
// 1:1 matching invariant. The attempted write is refused; the event is the
// audit trail for later resolution.
type ConflictEvent struct {
	CreatedAt        time.Time
	ResolvedAt       time.Time
	Type             ConflictType
	SellID           string
	BuyID            string
	Message          string
	Resolution       ConflictResolution
	ResolutionAction string
	AttemptedStatus  DecisionStatus
	ID               int64
	ExistingID       int64 // decision row that holds the winning pair
	AttemptedScore   float64
}
