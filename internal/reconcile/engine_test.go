package reconcile

import (
	"context"
	"path/filepath"
	"testing"

	"cardmatch/internal/common"
	"cardmatch/internal/match"
	"cardmatch/internal/model"
	"cardmatch/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestEngine(t *testing.T) (*Engine, *storage.SQLiteStorage) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "engine.db")

	store, err := storage.NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	return New(store), store
}

// testOptions relaxes the vectorizer's document-frequency bounds, which the
// tiny corpora used here would otherwise trip over.
func testOptions() Options {
	opts := DefaultOptions()
	opts.SimilarityThreshold = 0.1
	opts.Vectorizer = match.VectorizerConfig{
		MaxFeatures:     10000,
		NGramMin:        1,
		NGramMax:        3,
		MinDocFreq:      1,
		MaxDocFreqRatio: 1.0,
	}
	return opts
}

func sellItem(id, name, set string) model.SellRecord {
	return model.SellRecord{
		ID:          id,
		ProductName: name,
		SetName:     set,
		Rarity:      "Rare",
		MarketPrice: decimal.NewFromFloat(100),
		Quantity:    1,
	}
}

func buyItem(id, name, edition string) model.BuyRecord {
	return model.BuyRecord{
		ID:       id,
		CardName: name,
		Edition:  edition,
		Rarity:   "Rare",
		Price:    decimal.NewFromFloat(80),
		Quantity: 4,
	}
}

func TestFindMatches_AutoAcceptsExactMatch(t *testing.T) {
	engine, store := createTestEngine(t)
	ctx := context.Background()

	sell := []model.SellRecord{
		sellItem("s1", "Black Lotus", "Alpha"),
		sellItem("s2", "Shivan Dragon", "Alpha"),
	}
	buy := []model.BuyRecord{
		buyItem("b1", "Black Lotus", "Alpha"),
		buyItem("b2", "Black Lotus", "Unlimited"),
		buyItem("b3", "Goblin Guide", "Zendikar"),
	}

	result, err := engine.FindMatches(ctx, sell, buy, testOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.AutoAccepted)
	assert.Equal(t, 2, result.Stats.TotalSellItems)
	assert.Equal(t, 3, result.Stats.TotalBuyItems)
	assert.Positive(t, result.Stats.VocabularySize)
	assert.Positive(t, result.SessionID)

	// the exact copy wins and its sibling is swept aside
	d, err := store.GetDecision(ctx, "s1", "b1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusAutoAccepted, d.Status)
	assert.InDelta(t, 1.0, d.Similarity, 1e-6)

	d, err = store.GetDecision(ctx, "s1", "b2")
	require.NoError(t, err)
	assert.Equal(t, model.StatusAutoRejected, d.Status)

	// the dragon has no strong candidate; whatever it got is pending
	for _, m := range result.Matches {
		if m.Sell.ID == "s2" {
			assert.Equal(t, model.StatusPending, m.Status)
		}
	}
}

func TestFindMatches_EmptyInventories(t *testing.T) {
	engine, _ := createTestEngine(t)
	ctx := context.Background()

	_, err := engine.FindMatches(ctx, nil, []model.BuyRecord{buyItem("b1", "x", "y")}, testOptions())
	assert.ErrorIs(t, err, common.ErrEmptyInventory)

	_, err = engine.FindMatches(ctx, []model.SellRecord{sellItem("s1", "x", "y")}, nil, testOptions())
	assert.ErrorIs(t, err, common.ErrEmptyInventory)
}

func TestFindMatches_InvalidOptions(t *testing.T) {
	engine, _ := createTestEngine(t)
	ctx := context.Background()

	sell := []model.SellRecord{sellItem("s1", "Black Lotus", "Alpha")}
	buy := []model.BuyRecord{buyItem("b1", "Black Lotus", "Alpha")}

	opts := testOptions()
	opts.SimilarityThreshold = 1.5
	_, err := engine.FindMatches(ctx, sell, buy, opts)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	opts = testOptions()
	opts.MaxMatchesPerItem = -1
	_, err = engine.FindMatches(ctx, sell, buy, opts)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestFindMatches_ConflictBlocksAutoAccept(t *testing.T) {
	engine, store := createTestEngine(t)
	ctx := context.Background()

	// another sell item already owns b1
	_, err := store.SaveDecision(ctx, &model.MatchDecision{
		SellID: "s9", BuyID: "b1", Status: model.StatusAccepted, Similarity: 0.95,
	})
	require.NoError(t, err)

	sell := []model.SellRecord{sellItem("s1", "Black Lotus", "Alpha")}
	buy := []model.BuyRecord{buyItem("b1", "Black Lotus", "Alpha")}

	result, err := engine.FindMatches(ctx, sell, buy, testOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.ConflictBlocked)
	assert.Zero(t, result.Stats.AutoAccepted)

	d, err := store.GetDecision(ctx, "s1", "b1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConflictBlocked, d.Status)

	// the collision left an audit trail
	conflicts, err := store.GetConflicts(ctx, model.ResolutionUnresolved)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, model.ConflictBuy, conflicts[0].Type)

	// the prior winner is untouched
	existing, err := store.GetDecision(ctx, "s9", "b1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusAccepted, existing.Status)
}

func TestFindMatches_ConflictBetweenSellItemsInOneRun(t *testing.T) {
	engine, store := createTestEngine(t)
	ctx := context.Background()

	// two sell rows are exact copies, so both score 1.0 against the one buy
	// item and both clear the auto-accept bar
	sell := []model.SellRecord{
		sellItem("s1", "Black Lotus", "Alpha"),
		sellItem("s2", "Black Lotus", "Alpha"),
	}
	buy := []model.BuyRecord{buyItem("b1", "Black Lotus", "Alpha")}

	result, err := engine.FindMatches(ctx, sell, buy, testOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.AutoAccepted)
	assert.Equal(t, 1, result.Stats.ConflictBlocked)
	assert.Zero(t, result.Stats.Pending)

	// first come, first served
	first, err := store.GetDecision(ctx, "s1", "b1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusAutoAccepted, first.Status)

	second, err := store.GetDecision(ctx, "s2", "b1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConflictBlocked, second.Status)

	conflicts, err := store.GetConflicts(ctx, model.ResolutionUnresolved)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, model.ConflictBuy, conflicts[0].Type)
	assert.Equal(t, "s2", conflicts[0].SellID)
	assert.Equal(t, "b1", conflicts[0].BuyID)
}

func TestFindMatches_SkipsAlreadyAcceptedSellItems(t *testing.T) {
	engine, _ := createTestEngine(t)
	ctx := context.Background()

	sell := []model.SellRecord{sellItem("s1", "Black Lotus", "Alpha")}
	buy := []model.BuyRecord{buyItem("b1", "Black Lotus", "Alpha")}

	first, err := engine.FindMatches(ctx, sell, buy, testOptions())
	require.NoError(t, err)
	require.Equal(t, 1, first.Stats.AutoAccepted)

	// the second run finds nothing left to do
	second, err := engine.FindMatches(ctx, sell, buy, testOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, second.Stats.SkippedDecided)
	assert.Zero(t, second.Stats.WorkingSell)
	assert.Empty(t, second.Matches)
}

func TestFindMatches_NoSkipRematchesEverything(t *testing.T) {
	engine, _ := createTestEngine(t)
	ctx := context.Background()

	sell := []model.SellRecord{sellItem("s1", "Black Lotus", "Alpha")}
	buy := []model.BuyRecord{buyItem("b1", "Black Lotus", "Alpha")}

	opts := testOptions()
	_, err := engine.FindMatches(ctx, sell, buy, opts)
	require.NoError(t, err)

	opts.SkipDecided = false
	result, err := engine.FindMatches(ctx, sell, buy, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.WorkingSell)
	assert.Equal(t, 1, result.Stats.AutoAccepted)
}

func TestFindMatches_HonorsNonMatchExclusions(t *testing.T) {
	engine, store := createTestEngine(t)
	ctx := context.Background()

	_, err := store.AddNonMatch(ctx, &model.NonMatch{
		SellID: "s1", BuyID: "b1", Reason: "condition mismatch",
		RejectedBy: model.OriginUser, Permanent: true,
	})
	require.NoError(t, err)

	sell := []model.SellRecord{sellItem("s1", "Black Lotus", "Alpha")}
	buy := []model.BuyRecord{buyItem("b1", "Black Lotus", "Alpha")}

	result, err := engine.FindMatches(ctx, sell, buy, testOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.ExcludedPairs)
	assert.Empty(t, result.Matches)

	_, err = store.GetDecision(ctx, "s1", "b1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestFindMatches_AutoAcceptDisabled(t *testing.T) {
	engine, store := createTestEngine(t)
	ctx := context.Background()

	sell := []model.SellRecord{sellItem("s1", "Black Lotus", "Alpha")}
	buy := []model.BuyRecord{buyItem("b1", "Black Lotus", "Alpha")}

	opts := testOptions()
	opts.AutoAcceptThreshold = 0
	result, err := engine.FindMatches(ctx, sell, buy, opts)
	require.NoError(t, err)

	assert.Zero(t, result.Stats.AutoAccepted)
	assert.Equal(t, 1, result.Stats.Pending)

	d, err := store.GetDecision(ctx, "s1", "b1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, d.Status)
}

func TestFindMatches_PersistsPendingCandidates(t *testing.T) {
	engine, store := createTestEngine(t)
	ctx := context.Background()

	sell := []model.SellRecord{sellItem("s1", "Shivan Dragon", "Alpha")}
	buy := []model.BuyRecord{
		buyItem("b1", "Shivan Dragon", "Revised"),
		buyItem("b2", "Shivan Dragon", "Fourth Edition"),
	}

	result, err := engine.FindMatches(ctx, sell, buy, testOptions())
	require.NoError(t, err)
	require.NotEmpty(t, result.Matches)

	// neither edition matches exactly, so both proposals are durably pending
	pending, err := store.ListDecisions(ctx, []model.DecisionStatus{model.StatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, len(result.Matches))
}
