package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/backend"
	"github.com/fjod/go_storefront/internal/store"
)

type PurchasesHandler struct {
	store   store.Store
	client  *backend.Client
	timeout time.Duration
}

func NewPurchasesHandler(s store.Store, client *backend.Client, timeout time.Duration) *PurchasesHandler {
	return &PurchasesHandler{
		store:   s,
		client:  client,
		timeout: timeout,
	}
}

func (h *PurchasesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	token := store.AuthToken(ctx, h.store, getSessionID(ctx))
	purchases, err := h.client.ListPurchases(ctx, token)
	if err != nil {
		handleBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, purchases)
}

// Incidents serves the locally tracked owned-report ids, fed by the
// purchase-events poller.
func (h *PurchasesHandler) Incidents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := getUser(ctx)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"lead_ids": store.PurchasedIncidents(ctx, h.store, user.Username),
	})
}
