package match

import (
	"runtime"
	"sort"
	"sync"

	"cardmatch/internal/model"
)

// SimilarityMatrix computes cosine similarity between every sell vector and
// every buy vector. Entries below matrixThreshold are zeroed to keep the
// matrix sparse in practice; the final acceptance cut happens in TopMatches.
// Rows are independent, so scoring is sharded across workers.
func SimilarityMatrix(sell, buy []Vector, matrixThreshold float64) [][]float64 {
	matrix := make([][]float64, len(sell))

	workers := runtime.NumCPU()
	if workers > len(sell) {
		workers = len(sell)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	rows := make(chan int)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rows {
				row := make([]float64, len(buy))
				for j := range buy {
					score := sell[i].Dot(buy[j])
					if score >= matrixThreshold {
						row[j] = score
					}
				}
				matrix[i] = row
			}
		}()
	}

	for i := range sell {
		rows <- i
	}
	close(rows)
	wg.Wait()

	return matrix
}

// TopMatches extracts, for each sell row, up to k buy candidates with
// similarity >= minSimilarity, ranked by descending score. Ties keep the
// original buy list order. Sell rows without qualifying entries contribute
// no candidates.
func TopMatches(matrix [][]float64, sell []model.SellRecord, buy []model.BuyRecord, k int, minSimilarity float64) []model.MatchCandidate {
	var candidates []model.MatchCandidate

	for i, row := range matrix {
		qualifying := make([]int, 0, k)
		for j, score := range row {
			if score >= minSimilarity && score > 0 {
				qualifying = append(qualifying, j)
			}
		}
		if len(qualifying) == 0 {
			continue
		}

		sort.SliceStable(qualifying, func(a, b int) bool {
			return row[qualifying[a]] > row[qualifying[b]]
		})
		if len(qualifying) > k {
			qualifying = qualifying[:k]
		}

		for rank, j := range qualifying {
			candidates = append(candidates, model.MatchCandidate{
				Sell:       sell[i],
				Buy:        buy[j],
				Similarity: row[j],
				Rank:       rank + 1,
				Confidence: model.ConfidenceFor(row[j]),
				Status:     model.StatusPending,
			})
		}
	}

	return candidates
}
