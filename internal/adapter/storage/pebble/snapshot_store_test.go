package pebble

import (
	"testing"
	"time"

	"asset-marketplace/internal/core/domain"
	"asset-marketplace/internal/core/ledger"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	store, err := Open(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSnapshotStore_LoadEmpty(t *testing.T) {
	store := openTestStore(t)

	state, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, state, "no snapshot saved yet")
}

func TestSnapshotStore_SaveAndLoad(t *testing.T) {
	store := openTestStore(t)

	sellerA := uuid.New()
	sellerB := uuid.New()
	state := &ledger.State{
		Listings: []domain.Listing{
			{Asset: "punks", TokenID: 0, Seller: sellerA, Price: 100, ListedAt: time.Now().UTC().Truncate(time.Second)},
			{Asset: "punks", TokenID: 1, Seller: sellerB, Price: 250, ListedAt: time.Now().UTC().Truncate(time.Second)},
			{Asset: "cats", TokenID: 0, Seller: sellerA, Price: 75, ListedAt: time.Now().UTC().Truncate(time.Second)},
		},
		Proceeds: []ledger.ProceedsEntry{
			{Seller: sellerA, Balance: 500},
			{Seller: sellerB, Balance: 0},
		},
	}

	require.NoError(t, store.Save(state))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Len(t, loaded.Listings, 3)
	assert.Len(t, loaded.Proceeds, 2)

	assert.ElementsMatch(t, state.Listings, loaded.Listings)
	assert.ElementsMatch(t, state.Proceeds, loaded.Proceeds)
}

func TestSnapshotStore_SaveReplacesPrevious(t *testing.T) {
	store := openTestStore(t)

	seller := uuid.New()
	first := &ledger.State{
		Listings: []domain.Listing{
			{Asset: "punks", TokenID: 0, Seller: seller, Price: 100, ListedAt: time.Now().UTC().Truncate(time.Second)},
			{Asset: "punks", TokenID: 1, Seller: seller, Price: 200, ListedAt: time.Now().UTC().Truncate(time.Second)},
		},
		Proceeds: []ledger.ProceedsEntry{{Seller: seller, Balance: 50}},
	}
	require.NoError(t, store.Save(first))

	second := &ledger.State{
		Listings: []domain.Listing{
			{Asset: "cats", TokenID: 3, Seller: seller, Price: 10, ListedAt: time.Now().UTC().Truncate(time.Second)},
		},
	}
	require.NoError(t, store.Save(second))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Listings, 1)
	assert.Equal(t, "cats", loaded.Listings[0].Asset)
	assert.Empty(t, loaded.Proceeds, "stale proceeds must be cleared")
}

func TestSnapshotStore_SaveEmptyState(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Save(&ledger.State{}))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded, "an empty snapshot is still a snapshot")
	assert.Empty(t, loaded.Listings)
	assert.Empty(t, loaded.Proceeds)
}
