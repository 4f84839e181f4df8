package checkout

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/fjod/go_storefront/internal/backend"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/ledger"
	"github.com/fjod/go_storefront/internal/store"
	"golang.org/x/sync/singleflight"
)

// PurchaseCommitter is the one backend call the reconciliation makes.
// Consumers define this interface, not the REST client.
type PurchaseCommitter interface {
	CreatePurchase(ctx context.Context, userID int64, amount float64, leadIDs []int64) error
}

// PurchaseLedger records committed purchases locally for the outbox.
// Best-effort: a ledger failure never fails the reconciliation.
type PurchaseLedger interface {
	RecordPurchase(ctx context.Context, rec *ledger.PurchaseRecord) error
}

// Result is what the success route renders: a terminal status, a user
// message, and where to send the user next.
type Result struct {
	Status        domain.ReconcileStatus `json:"status"`
	Message       string                 `json:"message"`
	Redirect      string                 `json:"redirect,omitempty"`
	RedirectAfter time.Duration          `json:"-"`
}

const (
	profilePath   = "/profile"
	redirectDelay = 2500 * time.Millisecond
)

// Reconciler converts the local cart into a durable purchase exactly once
// per payment session. The marker is checked strictly before the commit and
// set strictly after it; concurrent invocations for the same session are
// collapsed into one execution.
type Reconciler struct {
	store   store.Store
	backend PurchaseCommitter
	ledger  PurchaseLedger
	sfg     singleflight.Group
}

// NewReconciler wires the flow. ledger may be nil when the purchase ledger
// is disabled.
func NewReconciler(s store.Store, b PurchaseCommitter, l PurchaseLedger) *Reconciler {
	return &Reconciler{store: s, backend: b, ledger: l}
}

// Reconcile drives Idle -> Processing -> {Success, Error} for one payment
// session. checkoutSessionID comes from the provider's redirect;
// sessionID is the storefront session whose cart is drained.
func (r *Reconciler) Reconcile(ctx context.Context, checkoutSessionID, sessionID string) Result {
	v, _, _ := r.sfg.Do(checkoutSessionID, func() (interface{}, error) {
		return r.reconcile(ctx, checkoutSessionID, sessionID), nil
	})
	return v.(Result)
}

func (r *Reconciler) reconcile(ctx context.Context, checkoutSessionID, sessionID string) Result {
	status := domain.ReconcileStatusIdle
	if !domain.CanTransitionTo(status, domain.ReconcileStatusProcessing) {
		// Unreachable with a fresh status; kept as a guard on the machine.
		return Result{Status: domain.ReconcileStatusError, Message: "checkout is not in a startable state"}
	}
	status = domain.ReconcileStatusProcessing

	// Marker first: a processed session must never hit the backend again.
	if store.Processed(ctx, r.store, checkoutSessionID) {
		return r.terminal(status, domain.ReconcileStatusSuccess, "payment already processed", true)
	}

	items := store.Cart(ctx, r.store, sessionID)
	if len(items) == 0 {
		// The cart was already drained by a previous commit; replays land
		// here when the marker write was lost.
		return r.terminal(status, domain.ReconcileStatusSuccess, "nothing to record", true)
	}

	total := domain.CartTotal(items)
	leadIDs := domain.CartLeadIDs(items)

	var userID int64
	var username string
	if user := store.LoggedUser(ctx, r.store, sessionID); user != nil {
		userID = user.ID
		username = user.Username
	}

	if err := r.backend.CreatePurchase(ctx, userID, total, leadIDs); err != nil {
		// Cart and marker stay untouched so a fresh checkout can retry.
		log.Printf("purchase commit failed for checkout session %s: %v", checkoutSessionID, err)
		return r.terminal(status, domain.ReconcileStatusError, commitErrorMessage(err), false)
	}

	if err := r.store.CompleteCheckout(ctx, store.MarkerKey(checkoutSessionID), store.CartKey(sessionID)); err != nil {
		// The purchase is committed; losing the marker only re-opens the
		// replay guard, so log loudly and still report success.
		log.Printf("failed to persist checkout completion for session %s: %v", checkoutSessionID, err)
	}

	if r.ledger != nil {
		rec := &ledger.PurchaseRecord{
			SessionID: checkoutSessionID,
			UserID:    userID,
			Username:  username,
			Amount:    total,
			LeadIDs:   leadIDs,
		}
		if err := r.ledger.RecordPurchase(ctx, rec); err != nil {
			log.Printf("failed to record purchase %s in ledger: %v", checkoutSessionID, err)
		}
	}

	return r.terminal(status, domain.ReconcileStatusSuccess, "purchase recorded", true)
}

func (r *Reconciler) terminal(from, to domain.ReconcileStatus, message string, redirect bool) Result {
	if !domain.CanTransitionTo(from, to) {
		log.Printf("illegal reconcile transition %s -> %s", from, to)
	}
	result := Result{Status: to, Message: message}
	if redirect {
		result.Redirect = profilePath
		result.RedirectAfter = redirectDelay
	}
	return result
}

func commitErrorMessage(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	return "could not record the purchase, please try again"
}
