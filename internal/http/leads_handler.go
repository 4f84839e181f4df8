package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/backend"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/store"
)

type LeadsHandler struct {
	store   store.Store
	client  *backend.Client
	timeout time.Duration
}

func NewLeadsHandler(s store.Store, client *backend.Client, timeout time.Duration) *LeadsHandler {
	return &LeadsHandler{
		store:   s,
		client:  client,
		timeout: timeout,
	}
}

// List serves the catalog. A backend failure on this read-only path is
// logged and rendered as an empty catalog, not a blocking error.
func (h *LeadsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	leads, err := h.client.ListLeads(ctx)
	if err != nil {
		log.Printf("leads listing failed: %v", err)
		respondJSON(w, http.StatusOK, []domain.Lead{})
		return
	}
	respondJSON(w, http.StatusOK, leads)
}

// Scrape triggers the backend's scraping run. Admin only.
func (h *LeadsHandler) Scrape(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req struct {
		Username string `json:"Username"`
		Password string `json:"Password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	token := store.AuthToken(ctx, h.store, getSessionID(ctx))
	if err := h.client.ScrapeLeads(ctx, token, req.Username, req.Password); err != nil {
		handleBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"message": "scrape started"})
}
