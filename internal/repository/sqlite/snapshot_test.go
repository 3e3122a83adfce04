package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockscan/internal/domain/models"
)

func TestSnapshot_ReplaceWholesale(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := []models.Product{
		{ID: 1, Name: "Widget", Barcode: "11", Quantity: 3},
		{ID: 2, Name: "Gadget", Barcode: "22", Quantity: 0},
	}
	require.NoError(t, store.ReplaceSnapshot(ctx, first))

	second := []models.Product{
		{ID: 3, Name: "Sprocket", Barcode: "33", Quantity: 9, InternalReference: "SPR-3"},
	}
	require.NoError(t, store.ReplaceSnapshot(ctx, second))

	products, err := store.SnapshotProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, second[0], products[0])
}

func TestSnapshot_RefreshedAt(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ts, err := store.SnapshotRefreshedAt(ctx)
	require.NoError(t, err)
	assert.True(t, ts.IsZero())

	before := time.Now().Add(-time.Second)
	require.NoError(t, store.ReplaceSnapshot(ctx, nil))

	ts, err = store.SnapshotRefreshedAt(ctx)
	require.NoError(t, err)
	assert.True(t, ts.After(before))
}

func TestSnapshot_EmptyReplaceClears(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceSnapshot(ctx, []models.Product{{ID: 1, Name: "Widget", Quantity: 1}}))
	require.NoError(t, store.ReplaceSnapshot(ctx, nil))

	products, err := store.SnapshotProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}
