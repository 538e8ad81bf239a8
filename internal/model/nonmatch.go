package model

import "time"

// NonMatchOrigin records who excluded a pair.
type NonMatchOrigin string

// Non-match origin constants.
const (
	OriginUser       NonMatchOrigin = "user"
	OriginSystem     NonMatchOrigin = "system"
	OriginAutoFilter NonMatchOrigin = "auto_filter"
)

// NonMatch is a permanently excluded (sell, buy) pair. While Permanent is
// set the pair is filtered out of every future matching run.
type NonMatch struct {
	RejectedAt      time.Time
	SellID          string
	SellProductName string
	SellSetName     string
	BuyID           string
	BuyCardName     string
	BuyEdition      string
	Reason          string
	RejectedBy      NonMatchOrigin
	ID              int64
	Similarity      float64
	Permanent       bool
}
