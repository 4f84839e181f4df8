package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/backend"
	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/store"
)

// SessionCreator is the payment-handoff slice of the backend client.
type SessionCreator interface {
	CreateCheckoutSession(ctx context.Context, items []domain.CartItem) (*backend.CheckoutSession, error)
}

type CheckoutHandler struct {
	store      store.Store
	payments   SessionCreator
	reconciler *checkout.Reconciler
	timeout    time.Duration
}

func NewCheckoutHandler(s store.Store, payments SessionCreator, reconciler *checkout.Reconciler, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		store:      s,
		payments:   payments,
		reconciler: reconciler,
		timeout:    timeout,
	}
}

// Create starts the external payment handoff for the session's cart and
// returns the provider URL to redirect the user to.
func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	mgr := cart.NewManager(h.store, getSessionID(ctx))
	items := mgr.Items(ctx)
	if len(items) == 0 {
		respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty, nothing to check out")
		return
	}

	session, err := h.payments.CreateCheckoutSession(ctx, items)
	if err != nil {
		handleBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

type ReconcileResponseDTO struct {
	Status          domain.ReconcileStatus `json:"status"`
	Message         string                 `json:"message"`
	Redirect        string                 `json:"redirect,omitempty"`
	RedirectAfterMs int64                  `json:"redirect_after_ms,omitempty"`
}

// Success is the return leg of the payment redirect. The flow only
// activates when the provider handed back a session id.
func (h *CheckoutHandler) Success(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	checkoutSessionID := r.URL.Query().Get("session_id")
	if checkoutSessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session_id", "session_id query parameter is required")
		return
	}

	result := h.reconciler.Reconcile(ctx, checkoutSessionID, getSessionID(ctx))

	status := http.StatusOK
	if result.Status == domain.ReconcileStatusError {
		status = http.StatusBadGateway
	}
	respondJSON(w, status, ReconcileResponseDTO{
		Status:          result.Status,
		Message:         result.Message,
		Redirect:        result.Redirect,
		RedirectAfterMs: result.RedirectAfter.Milliseconds(),
	})
}

// Cancel is the abandoned-payment leg; the cart is deliberately preserved.
func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "CANCELLED",
		"message": "payment cancelled, your cart is unchanged",
	})
}
