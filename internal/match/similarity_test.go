package match

import (
	"testing"

	"cardmatch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fitVectors(t *testing.T, sellTexts, buyTexts []string) ([]Vector, []Vector) {
	t.Helper()
	vec := NewVectorizer(looseConfig())
	vec.Fit(append(append([]string{}, sellTexts...), buyTexts...))
	return vec.Transform(sellTexts), vec.Transform(buyTexts)
}

func TestSimilarityMatrixShape(t *testing.T) {
	sellVecs, buyVecs := fitVectors(t,
		[]string{"black lotus", "goblin guide"},
		[]string{"black lotus", "lightning bolt", "goblin guide"},
	)

	matrix := SimilarityMatrix(sellVecs, buyVecs, 0)
	require.Len(t, matrix, 2)
	for _, row := range matrix {
		require.Len(t, row, 3)
	}

	assert.InDelta(t, 1.0, matrix[0][0], 1e-9)
	assert.Zero(t, matrix[0][1])
	assert.InDelta(t, 1.0, matrix[1][2], 1e-9)
}

func TestSimilarityMatrixThresholdZeroes(t *testing.T) {
	sellVecs, buyVecs := fitVectors(t,
		[]string{"black lotus alpha"},
		[]string{"black lotus unlimited"},
	)

	unthresholded := SimilarityMatrix(sellVecs, buyVecs, 0)
	score := unthresholded[0][0]
	require.Greater(t, score, 0.0)

	// a threshold just above the real score zeroes the entry
	matrix := SimilarityMatrix(sellVecs, buyVecs, score+0.001)
	assert.Zero(t, matrix[0][0])
}

func TestSimilarityMatrixEmptySides(t *testing.T) {
	assert.Empty(t, SimilarityMatrix(nil, nil, 0))

	sellVecs, _ := fitVectors(t, []string{"black lotus"}, nil)
	matrix := SimilarityMatrix(sellVecs, nil, 0)
	require.Len(t, matrix, 1)
	assert.Empty(t, matrix[0])
}

func makeSellRecords(names ...string) []model.SellRecord {
	records := make([]model.SellRecord, len(names))
	for i, n := range names {
		records[i] = model.SellRecord{ID: n, ProductName: n}
	}
	return records
}

func makeBuyRecords(names ...string) []model.BuyRecord {
	records := make([]model.BuyRecord, len(names))
	for i, n := range names {
		records[i] = model.BuyRecord{ID: n, CardName: n}
	}
	return records
}

func TestTopMatchesOrderingAndCap(t *testing.T) {
	sell := makeSellRecords("s1")
	buy := makeBuyRecords("b1", "b2", "b3", "b4")
	matrix := [][]float64{{0.4, 0.9, 0.6, 0.1}}

	got := TopMatches(matrix, sell, buy, 2, 0.2)
	require.Len(t, got, 2)

	assert.Equal(t, "b2", got[0].Buy.ID)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, "b3", got[1].Buy.ID)
	assert.Equal(t, 2, got[1].Rank)
}

func TestTopMatchesTiesKeepBuyOrder(t *testing.T) {
	sell := makeSellRecords("s1")
	buy := makeBuyRecords("b1", "b2", "b3")
	matrix := [][]float64{{0.5, 0.5, 0.5}}

	got := TopMatches(matrix, sell, buy, 3, 0)
	require.Len(t, got, 3)
	assert.Equal(t, "b1", got[0].Buy.ID)
	assert.Equal(t, "b2", got[1].Buy.ID)
	assert.Equal(t, "b3", got[2].Buy.ID)
}

func TestTopMatchesMinSimilarityFilters(t *testing.T) {
	sell := makeSellRecords("s1", "s2")
	buy := makeBuyRecords("b1")
	matrix := [][]float64{{0.15}, {0.35}}

	got := TopMatches(matrix, sell, buy, 5, 0.2)
	require.Len(t, got, 1)
	assert.Equal(t, "s2", got[0].Sell.ID)
}

func TestTopMatchesZeroScoresNeverQualify(t *testing.T) {
	sell := makeSellRecords("s1")
	buy := makeBuyRecords("b1", "b2")
	matrix := [][]float64{{0, 0}}

	// even with minSimilarity 0, zeroed entries are not candidates
	assert.Empty(t, TopMatches(matrix, sell, buy, 5, 0))
}

func TestTopMatchesConfidenceBuckets(t *testing.T) {
	sell := makeSellRecords("s1")
	buy := makeBuyRecords("b1", "b2", "b3", "b4")
	matrix := [][]float64{{0.85, 0.6, 0.35, 0.25}}

	got := TopMatches(matrix, sell, buy, 4, 0)
	require.Len(t, got, 4)
	assert.Equal(t, model.ConfidenceHigh, got[0].Confidence)
	assert.Equal(t, model.ConfidenceMedium, got[1].Confidence)
	assert.Equal(t, model.ConfidenceLow, got[2].Confidence)
	assert.Equal(t, model.ConfidenceVeryLow, got[3].Confidence)
}
