package model

// Confidence buckets for match candidates. Informational only; acceptance is
// gated on the raw similarity score, never the bucket.
type Confidence string

// Confidence constants.
const (
	ConfidenceHigh    Confidence = "high"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceLow     Confidence = "low"
	ConfidenceVeryLow Confidence = "very_low"
)

// ConfidenceFor buckets a cosine similarity score.
func ConfidenceFor(score float64) Confidence {
	switch {
	case score >= 0.8:
		return ConfidenceHigh
	case score >= 0.5:
		return ConfidenceMedium
	case score >= 0.3:
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}

// MatchCandidate is one proposed (sell, buy) pairing produced by a matching
// run. Candidates are ephemeral; only decisions are persisted.
type MatchCandidate struct {
	Sell       SellRecord
	Buy        BuyRecord
	Status     DecisionStatus
	Confidence Confidence
	Similarity float64
	Rank       int // 1-based rank within the sell item's candidate list
}
