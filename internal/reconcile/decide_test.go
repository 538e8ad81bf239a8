package reconcile

import (
	"context"
	"testing"

	"cardmatch/internal/common"
	"cardmatch/internal/model"
	"cardmatch/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide_AcceptPendingCandidate(t *testing.T) {
	engine, store := createTestEngine(t)
	ctx := context.Background()

	sell := []model.SellRecord{sellItem("s1", "Shivan Dragon", "Alpha")}
	buy := []model.BuyRecord{buyItem("b1", "Shivan Dragon", "Revised")}
	result, err := engine.FindMatches(ctx, sell, buy, testOptions())
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	require.Equal(t, model.StatusPending, result.Matches[0].Status)

	decision, err := engine.Decide(ctx, "s1", "b1", true, "close enough")
	require.NoError(t, err)
	assert.Equal(t, model.StatusAccepted, decision.Status)

	// the run's similarity survives the manual decision
	saved, err := store.GetDecision(ctx, "s1", "b1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusAccepted, saved.Status)
	assert.InDelta(t, result.Matches[0].Similarity, saved.Similarity, 1e-9)
	assert.Equal(t, "close enough", saved.Notes)
}

func TestDecide_RejectCreatesExclusion(t *testing.T) {
	engine, store := createTestEngine(t)
	ctx := context.Background()

	_, err := engine.Decide(ctx, "s1", "b1", false, "different card entirely")
	require.NoError(t, err)

	nonMatches, err := store.GetNonMatches(ctx)
	require.NoError(t, err)
	nm, ok := nonMatches[service.Pair{SellID: "s1", BuyID: "b1"}]
	require.True(t, ok)
	assert.Equal(t, "different card entirely", nm.Reason)
}

func TestDecide_AcceptConflictsWithExisting(t *testing.T) {
	engine, _ := createTestEngine(t)
	ctx := context.Background()

	_, err := engine.Decide(ctx, "s1", "b1", true, "")
	require.NoError(t, err)

	// b1 is taken
	_, err = engine.Decide(ctx, "s2", "b1", true, "")
	require.ErrorIs(t, err, common.ErrConflict)

	var conflict *common.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "s1", conflict.ExistingSellID)
}

func TestDecide_RequiresIdentifiers(t *testing.T) {
	engine, _ := createTestEngine(t)
	ctx := context.Background()

	_, err := engine.Decide(ctx, "", "b1", true, "")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = engine.Decide(ctx, "s1", "", false, "")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestAddAndRemoveNonMatch(t *testing.T) {
	engine, _ := createTestEngine(t)
	ctx := context.Background()

	id, err := engine.AddNonMatch(ctx, "s1", "b1", "wrong printing")
	require.NoError(t, err)
	assert.Positive(t, id)

	nonMatches, err := engine.ListNonMatches(ctx)
	require.NoError(t, err)
	assert.Len(t, nonMatches, 1)

	require.NoError(t, engine.RemoveNonMatch(ctx, "s1", "b1"))

	nonMatches, err = engine.ListNonMatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, nonMatches)
}

func TestResolveConflictFreesPairForNewDecision(t *testing.T) {
	engine, _ := createTestEngine(t)
	ctx := context.Background()

	_, err := engine.Decide(ctx, "s1", "b1", true, "")
	require.NoError(t, err)
	_, err = engine.Decide(ctx, "s2", "b1", true, "")
	require.ErrorIs(t, err, common.ErrConflict)

	conflicts, err := engine.ListConflicts(ctx, model.ResolutionUnresolved)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)

	require.NoError(t, engine.ResolveConflict(ctx, conflicts[0].ID, "prefer s2", true))

	// now the new pairing goes through
	_, err = engine.Decide(ctx, "s2", "b1", true, "")
	assert.NoError(t, err)
}
