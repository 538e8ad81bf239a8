package storage

import (
	"context"
	"testing"

	"cardmatch/internal/common"
	"cardmatch/internal/model"
	"cardmatch/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNonMatch(sellID, buyID, reason string) *model.NonMatch {
	return &model.NonMatch{
		SellID:          sellID,
		BuyID:           buyID,
		SellProductName: "Product " + sellID,
		BuyCardName:     "Card " + buyID,
		Reason:          reason,
		RejectedBy:      model.OriginUser,
		Permanent:       true,
	}
}

func TestAddNonMatch_Idempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	id, err := store.AddNonMatch(ctx, testNonMatch("s1", "b1", "first"))
	require.NoError(t, err)
	require.Positive(t, id)

	// re-adding refreshes the reason, same row
	id2, err := store.AddNonMatch(ctx, testNonMatch("s1", "b1", "second"))
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	nonMatches, err := store.GetNonMatches(ctx)
	require.NoError(t, err)
	require.Len(t, nonMatches, 1)
	assert.Equal(t, "second", nonMatches[service.Pair{SellID: "s1", BuyID: "b1"}].Reason)
}

func TestAddNonMatch_DefaultOrigin(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	nm := testNonMatch("s1", "b1", "manual")
	nm.RejectedBy = ""
	_, err := store.AddNonMatch(ctx, nm)
	require.NoError(t, err)

	nonMatches, err := store.GetNonMatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.OriginUser, nonMatches[service.Pair{SellID: "s1", BuyID: "b1"}].RejectedBy)
}

func TestAddNonMatch_Validation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.AddNonMatch(ctx, nil)
	assert.Error(t, err)

	_, err = store.AddNonMatch(ctx, testNonMatch("", "b1", ""))
	assert.Error(t, err)

	_, err = store.AddNonMatch(ctx, testNonMatch("s1", "", ""))
	assert.Error(t, err)
}

func TestRemoveNonMatch(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.AddNonMatch(ctx, testNonMatch("s1", "b1", "oops"))
	require.NoError(t, err)

	require.NoError(t, store.RemoveNonMatch(ctx, "s1", "b1"))

	nonMatches, err := store.GetNonMatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, nonMatches)

	// removing again reports not found
	err = store.RemoveNonMatch(ctx, "s1", "b1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetNonMatches_SurvivesReopen(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := tmpDir + "/nonmatch.db"
	ctx := context.Background()

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	_, err = store.AddNonMatch(ctx, testNonMatch("s1", "b1", "permanent"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	require.NoError(t, store.Migrate(ctx))

	nonMatches, err := store.GetNonMatches(ctx)
	require.NoError(t, err)
	require.Len(t, nonMatches, 1)
	assert.Equal(t, "permanent", nonMatches[service.Pair{SellID: "s1", BuyID: "b1"}].Reason)
}
