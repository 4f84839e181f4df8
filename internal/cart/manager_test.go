package cart

import (
	"context"
	"testing"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() (*Manager, store.Store) {
	st := store.NewMemoryStore()
	return NewManager(st, "sid"), st
}

func TestAdd_WriteThrough(t *testing.T) {
	mgr, st := newTestManager()
	ctx := context.Background()

	added, err := mgr.Add(ctx, domain.CartItem{ID: 1, Title: "Robbery report", Price: 100, Quantity: 1})
	require.NoError(t, err)
	assert.True(t, added)

	// The mutation must already be durable, not just in memory.
	assert.Len(t, store.Cart(ctx, st, "sid"), 1)
}

func TestAdd_DuplicateIDIsNoOp(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	_, err := mgr.Add(ctx, domain.CartItem{ID: 1, Price: 100, Quantity: 1})
	require.NoError(t, err)

	added, err := mgr.Add(ctx, domain.CartItem{ID: 1, Price: 999, Quantity: 5})
	require.NoError(t, err)
	assert.False(t, added)

	items := mgr.Items(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, float64(100), items[0].Price)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestCountAndTotal(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	_, err := mgr.Add(ctx, domain.CartItem{ID: 1, Price: 100, Quantity: 1})
	require.NoError(t, err)
	_, err = mgr.Add(ctx, domain.CartItem{ID: 2, Price: 50, Quantity: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, mgr.Count(ctx))
	assert.Equal(t, float64(200), mgr.Total(ctx))
}

func TestRemove(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	_, err := mgr.Add(ctx, domain.CartItem{ID: 1, Price: 100, Quantity: 1})
	require.NoError(t, err)
	_, err = mgr.Add(ctx, domain.CartItem{ID: 2, Price: 50, Quantity: 2})
	require.NoError(t, err)

	removed, err := mgr.Remove(ctx, 1)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, float64(100), mgr.Total(ctx))
	assert.Equal(t, 2, mgr.Count(ctx))

	// Removing an absent id is a no-op.
	removed, err = mgr.Remove(ctx, 42)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Len(t, mgr.Items(ctx), 1)
}

func TestTotalsTrackMutations(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	items := []domain.CartItem{
		{ID: 1, Price: 10, Quantity: 1},
		{ID: 2, Price: 20, Quantity: 3},
		{ID: 3, Price: 5.5, Quantity: 2},
	}
	for _, item := range items {
		_, err := mgr.Add(ctx, item)
		require.NoError(t, err)
	}

	assert.Equal(t, 6, mgr.Count(ctx))
	assert.InDelta(t, 81, mgr.Total(ctx), 1e-9)

	_, err := mgr.Remove(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, mgr.Count(ctx))
	assert.InDelta(t, 21, mgr.Total(ctx), 1e-9)
}

func TestItems_OrderPreserved(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	for _, id := range []int64{5, 3, 9, 1} {
		_, err := mgr.Add(ctx, domain.CartItem{ID: id, Price: 1, Quantity: 1})
		require.NoError(t, err)
	}

	assert.Equal(t, []int64{5, 3, 9, 1}, domain.CartLeadIDs(mgr.Items(ctx)))
}

func TestItems_CorruptStoreYieldsEmpty(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, store.CartKey("sid"), []byte("{broken")))

	mgr := NewManager(st, "sid")
	assert.Empty(t, mgr.Items(ctx))
	assert.Zero(t, mgr.Count(ctx))
	assert.Zero(t, mgr.Total(ctx))
}

func TestClear(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	_, err := mgr.Add(ctx, domain.CartItem{ID: 1, Price: 100, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, mgr.Clear(ctx))
	assert.Empty(t, mgr.Items(ctx))
}
