package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fjod/go_storefront/internal/backend"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCart(t *testing.T, st store.Store) {
	t.Helper()
	items := []domain.CartItem{
		{ID: 1, Title: "Robbery report", Price: 100, Quantity: 1},
		{ID: 2, Title: "Fire report", Price: 50, Quantity: 2},
	}
	require.NoError(t, store.SaveCart(context.Background(), st, "sid", items))
}

func TestReconcile_AlreadyProcessed(t *testing.T) {
	st := store.NewMemoryStore()
	committer := &MockCommitter{}
	ctx := context.Background()

	seedCart(t, st)
	require.NoError(t, st.Set(ctx, store.MarkerKey("cs_1"), []byte("true")))

	r := NewReconciler(st, committer, nil)
	result := r.Reconcile(ctx, "cs_1", "sid")

	assert.Equal(t, domain.ReconcileStatusSuccess, result.Status)
	assert.Equal(t, "payment already processed", result.Message)
	assert.Zero(t, committer.CallCount())
	// Cart is untouched; only the marker short-circuited the flow.
	assert.Len(t, store.Cart(ctx, st, "sid"), 2)
}

func TestReconcile_EmptyCart(t *testing.T) {
	st := store.NewMemoryStore()
	committer := &MockCommitter{}

	r := NewReconciler(st, committer, nil)
	result := r.Reconcile(context.Background(), "cs_1", "sid")

	assert.Equal(t, domain.ReconcileStatusSuccess, result.Status)
	assert.Equal(t, "nothing to record", result.Message)
	assert.Zero(t, committer.CallCount())
}

func TestReconcile_HappyPath(t *testing.T) {
	st := store.NewMemoryStore()
	committer := &MockCommitter{}
	led := &MockLedger{}
	ctx := context.Background()

	seedCart(t, st)
	require.NoError(t, store.SaveLoggedUser(ctx, st, "sid", &domain.LoggedUser{ID: 9, Username: "ana"}))

	r := NewReconciler(st, committer, led)
	result := r.Reconcile(ctx, "cs_1", "sid")

	assert.Equal(t, domain.ReconcileStatusSuccess, result.Status)
	assert.Equal(t, "/profile", result.Redirect)
	assert.Positive(t, result.RedirectAfter)

	assert.Equal(t, 1, committer.CallCount())
	assert.Equal(t, int64(9), committer.UserID)
	assert.Equal(t, float64(200), committer.Amount)
	assert.Equal(t, []int64{1, 2}, committer.LeadIDs)

	assert.True(t, store.Processed(ctx, st, "cs_1"))
	assert.Empty(t, store.Cart(ctx, st, "sid"))

	require.Len(t, led.Records, 1)
	assert.Equal(t, "cs_1", led.Records[0].SessionID)
	assert.Equal(t, "ana", led.Records[0].Username)

	// A second invocation with the same session makes zero further calls.
	again := r.Reconcile(ctx, "cs_1", "sid")
	assert.Equal(t, domain.ReconcileStatusSuccess, again.Status)
	assert.Equal(t, 1, committer.CallCount())
}

func TestReconcile_GuestCheckout(t *testing.T) {
	st := store.NewMemoryStore()
	committer := &MockCommitter{}

	seedCart(t, st)
	r := NewReconciler(st, committer, nil)
	result := r.Reconcile(context.Background(), "cs_1", "sid")

	assert.Equal(t, domain.ReconcileStatusSuccess, result.Status)
	assert.Zero(t, committer.UserID)
}

func TestReconcile_BackendError(t *testing.T) {
	st := store.NewMemoryStore()
	committer := &MockCommitter{
		Err: &backend.APIError{Status: 500, Body: "database unavailable"},
	}
	ctx := context.Background()

	seedCart(t, st)
	r := NewReconciler(st, committer, nil)
	result := r.Reconcile(ctx, "cs_1", "sid")

	assert.Equal(t, domain.ReconcileStatusError, result.Status)
	assert.Equal(t, "database unavailable", result.Message)
	assert.Empty(t, result.Redirect)

	// Cart and marker are untouched so a fresh checkout can retry.
	assert.False(t, store.Processed(ctx, st, "cs_1"))
	assert.Len(t, store.Cart(ctx, st, "sid"), 2)
}

func TestReconcile_TransportErrorUsesGenericMessage(t *testing.T) {
	st := store.NewMemoryStore()
	committer := &MockCommitter{Err: errors.New("connection refused")}

	seedCart(t, st)
	r := NewReconciler(st, committer, nil)
	result := r.Reconcile(context.Background(), "cs_1", "sid")

	assert.Equal(t, domain.ReconcileStatusError, result.Status)
	assert.Equal(t, "could not record the purchase, please try again", result.Message)
}

func TestReconcile_ConcurrentSameSessionCommitsOnce(t *testing.T) {
	st := store.NewMemoryStore()
	committer := &MockCommitter{
		Entered: make(chan struct{}, 1),
		Release: make(chan struct{}),
	}
	ctx := context.Background()

	seedCart(t, st)
	r := NewReconciler(st, committer, nil)

	var wg sync.WaitGroup
	results := make([]Result, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = r.Reconcile(ctx, "cs_1", "sid")
	}()

	// Wait until the first commit is in flight, then race a second mount.
	<-committer.Entered
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1] = r.Reconcile(ctx, "cs_1", "sid")
	}()

	close(committer.Release)
	wg.Wait()

	assert.Equal(t, 1, committer.CallCount())
	for _, result := range results {
		assert.Equal(t, domain.ReconcileStatusSuccess, result.Status)
	}
}

func TestStatusMachine(t *testing.T) {
	assert.True(t, domain.CanTransitionTo(domain.ReconcileStatusIdle, domain.ReconcileStatusProcessing))
	assert.True(t, domain.CanTransitionTo(domain.ReconcileStatusProcessing, domain.ReconcileStatusSuccess))
	assert.True(t, domain.CanTransitionTo(domain.ReconcileStatusProcessing, domain.ReconcileStatusError))
	assert.False(t, domain.CanTransitionTo(domain.ReconcileStatusIdle, domain.ReconcileStatusSuccess))
	assert.False(t, domain.CanTransitionTo(domain.ReconcileStatusSuccess, domain.ReconcileStatusProcessing))
	assert.False(t, domain.CanTransitionTo(domain.ReconcileStatusError, domain.ReconcileStatusProcessing))
	assert.True(t, domain.ReconcileStatusSuccess.IsTerminal())
	assert.True(t, domain.ReconcileStatusError.IsTerminal())
	assert.False(t, domain.ReconcileStatusProcessing.IsTerminal())
}
