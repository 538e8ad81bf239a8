package reconcile

import "cardmatch/internal/model"

// RunStats aggregates what a matching run did.
type RunStats struct {
	ConfidenceCounts map[model.Confidence]int

	TotalSellItems  int
	TotalBuyItems   int
	WorkingSell     int // sell items left after the filter stage
	SkippedDecided  int
	ExcludedPairs   int // candidates dropped by the non-match set
	MatchesFound    int
	ItemsWithMatch  int
	AutoAccepted    int
	AutoRejected    int
	ConflictBlocked int
	Pending         int

	// Coverage is the fraction of working sell items with at least one
	// candidate.
	Coverage float64

	MinScore  float64
	MaxScore  float64
	MeanScore float64

	VocabularySize    int
	ProcessingSeconds float64
}

// RunResult is what FindMatches hands back: every surviving candidate
// annotated with its final status, plus the aggregate statistics.
type RunResult struct {
	Matches   []model.MatchCandidate
	Stats     RunStats
	SessionID int64
}

func computeScoreStats(stats *RunStats, matches []model.MatchCandidate) {
	stats.ConfidenceCounts = make(map[model.Confidence]int)
	if len(matches) == 0 {
		return
	}

	seen := make(map[string]struct{})
	var sum float64
	stats.MinScore = matches[0].Similarity
	stats.MaxScore = matches[0].Similarity
	for _, m := range matches {
		stats.ConfidenceCounts[m.Confidence]++
		sum += m.Similarity
		if m.Similarity < stats.MinScore {
			stats.MinScore = m.Similarity
		}
		if m.Similarity > stats.MaxScore {
			stats.MaxScore = m.Similarity
		}
		seen[m.Sell.ID] = struct{}{}
	}
	stats.MeanScore = sum / float64(len(matches))
	stats.ItemsWithMatch = len(seen)
	if stats.WorkingSell > 0 {
		stats.Coverage = float64(stats.ItemsWithMatch) / float64(stats.WorkingSell)
	}
}
