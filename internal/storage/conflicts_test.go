package storage

import (
	"context"
	"testing"

	"cardmatch/internal/common"
	"cardmatch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedConflict provokes one conflict event and returns its id.
func seedConflict(t *testing.T, store *SQLiteStorage) int64 {
	t.Helper()
	ctx := context.Background()

	_, err := store.SaveDecision(ctx, testDecision("s1", "b1", model.StatusAccepted, 0.9))
	require.NoError(t, err)
	_, err = store.SaveDecision(ctx, testDecision("s1", "b2", model.StatusAccepted, 0.8))
	require.ErrorIs(t, err, common.ErrConflict)

	conflicts, err := store.GetConflicts(ctx, model.ResolutionUnresolved)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	return conflicts[0].ID
}

func TestGetConflicts_ResolutionFilter(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	id := seedConflict(t, store)
	require.NoError(t, store.ResolveConflict(ctx, id, "kept existing", false))

	unresolved, err := store.GetConflicts(ctx, model.ResolutionUnresolved)
	require.NoError(t, err)
	assert.Empty(t, unresolved)

	resolved, err := store.GetConflicts(ctx, model.ResolutionResolved)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, "kept existing", resolved[0].ResolutionAction)
	assert.False(t, resolved[0].ResolvedAt.IsZero())

	all, err := store.GetConflicts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestResolveConflict_WithoutReplaceKeepsDecision(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	id := seedConflict(t, store)
	require.NoError(t, store.ResolveConflict(ctx, id, "reviewed", false))

	d, err := store.GetDecision(ctx, "s1", "b1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusAccepted, d.Status)
}

func TestResolveConflict_ReplaceDemotesExisting(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	id := seedConflict(t, store)
	require.NoError(t, store.ResolveConflict(ctx, id, "prefer new match", true))

	// the old winner is soft-deleted, not removed
	d, err := store.GetDecision(ctx, "s1", "b1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusReplaced, d.Status)
	assert.Contains(t, d.Notes, "replaced during conflict resolution")

	// both sides are free again
	_, err = store.SaveDecision(ctx, testDecision("s1", "b2", model.StatusAccepted, 0.8))
	assert.NoError(t, err)
}

func TestResolveConflict_NotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	err := store.ResolveConflict(context.Background(), 9999, "reviewed", false)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestResolveConflict_RequiresAction(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	err := store.ResolveConflict(context.Background(), 1, "  ", false)
	assert.ErrorIs(t, err, ErrEmptyString)
}
