package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/store"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	store   store.Store
	timeout time.Duration
}

func NewCartHandler(s store.Store, timeout time.Duration) *CartHandler {
	return &CartHandler{
		store:   s,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// CartResponseDTO always carries count and total alongside the items so
// the header badge and the cart page render from one response.
type CartResponseDTO struct {
	Items []domain.CartItem `json:"items"`
	Count int               `json:"count"`
	Total float64           `json:"total"`
}

func cartResponse(items []domain.CartItem) CartResponseDTO {
	return CartResponseDTO{
		Items: items,
		Count: domain.CartCount(items),
		Total: domain.CartTotal(items),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	mgr := cart.NewManager(h.store, getSessionID(ctx))
	respondJSON(w, http.StatusOK, cartResponse(mgr.Items(ctx)))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_id", "id must be positive")
		return
	}
	if req.Price < 0 {
		respondError(w, http.StatusBadRequest, "invalid_price", "price must not be negative")
		return
	}
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	mgr := cart.NewManager(h.store, getSessionID(ctx))
	added, err := mgr.Add(ctx, domain.CartItem{
		ID:       req.ID,
		Title:    req.Title,
		Price:    req.Price,
		Quantity: req.Quantity,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", "could not save the cart")
		return
	}

	status := http.StatusOK // duplicate id: no-op, cart unchanged
	if added {
		status = http.StatusCreated
	}
	respondJSON(w, status, cartResponse(mgr.Items(ctx)))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	leadIDStr := chi.URLParam(r, "lead_id")
	leadID, err := strconv.ParseInt(leadIDStr, 10, 64)
	if err != nil || leadID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_id", "lead_id must be a positive integer")
		return
	}

	mgr := cart.NewManager(h.store, getSessionID(ctx))
	if _, err := mgr.Remove(ctx, leadID); err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", "could not save the cart")
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(mgr.Items(ctx)))
}
