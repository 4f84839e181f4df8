package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_storefront/internal/backend"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/store"
	"github.com/go-chi/chi/v5"
)

type ZonesHandler struct {
	store   store.Store
	client  *backend.Client
	timeout time.Duration
}

func NewZonesHandler(s store.Store, client *backend.Client, timeout time.Duration) *ZonesHandler {
	return &ZonesHandler{
		store:   s,
		client:  client,
		timeout: timeout,
	}
}

func (h *ZonesHandler) token(ctx context.Context) string {
	return store.AuthToken(ctx, h.store, getSessionID(ctx))
}

func (h *ZonesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := getUser(ctx)
	zones, err := h.client.MyZones(ctx, h.token(ctx), user.ID)
	if err != nil {
		handleBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, zones)
}

func (h *ZonesHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var zone domain.ZoneInterest
	if err := json.NewDecoder(r.Body).Decode(&zone); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	zone.UserID = getUser(ctx).ID

	created, err := h.client.AddZone(ctx, h.token(ctx), zone)
	if err != nil {
		if errors.Is(err, backend.ErrNoZoneFilter) {
			respondError(w, http.StatusBadRequest, "no_filter", "at least one of state, city, zip or address_contains is required")
			return
		}
		handleBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *ZonesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}

	if err := h.client.DeleteZone(ctx, h.token(ctx), id); err != nil {
		handleBackendError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TestEmail triggers the backend's notification test. Admin only.
func (h *ZonesHandler) TestEmail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	to := r.URL.Query().Get("to")
	if to == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "to query parameter is required")
		return
	}

	if err := h.client.SendZoneTestEmail(ctx, h.token(ctx), to); err != nil {
		handleBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "test email sent"})
}
