package model

import "time"

// MatchSession is the audit record for one reconciliation run.
type MatchSession struct {
	StartedAt           time.Time
	ConfigJSON          string
	ID                  int64
	SellItems           int
	BuyItems            int
	MatchesFound        int
	MaxMatchesPerItem   int
	SimilarityThreshold float64
	AutoAcceptThreshold float64
	ProcessingSeconds   float64
}
