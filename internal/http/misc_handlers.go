package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_storefront/internal/backend"
	"github.com/fjod/go_storefront/internal/store"
	"github.com/go-chi/chi/v5"
)

type ChatHandler struct {
	client  *backend.Client
	timeout time.Duration
}

func NewChatHandler(client *backend.Client, timeout time.Duration) *ChatHandler {
	return &ChatHandler{client: client, timeout: timeout}
}

func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "message is required")
		return
	}

	var userID int64
	if user := getUser(ctx); user != nil {
		userID = user.ID
	}

	reply, err := h.client.Ask(ctx, req.Message, userID)
	if err != nil {
		handleBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reply)
}

type ContactHandler struct {
	client  *backend.Client
	timeout time.Duration
}

func NewContactHandler(client *backend.Client, timeout time.Duration) *ContactHandler {
	return &ContactHandler{client: client, timeout: timeout}
}

func (h *ContactHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req struct {
		Name    string `json:"Name"`
		Email   string `json:"Email"`
		Message string `json:"Message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Message == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "Name, Email and Message are required")
		return
	}

	if err := h.client.SendContact(ctx, req.Name, req.Email, req.Message); err != nil {
		handleBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "message sent"})
}

type ThemeHandler struct {
	store   store.Store
	timeout time.Duration
}

func NewThemeHandler(s store.Store, timeout time.Duration) *ThemeHandler {
	return &ThemeHandler{store: s, timeout: timeout}
}

func (h *ThemeHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	respondJSON(w, http.StatusOK, map[string]string{
		"theme": store.Theme(ctx, h.store, getSessionID(ctx)),
	})
}

func (h *ThemeHandler) Put(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Theme != "light" && req.Theme != "dark" {
		respondError(w, http.StatusBadRequest, "invalid_theme", "theme must be light or dark")
		return
	}

	if err := store.SaveTheme(ctx, h.store, getSessionID(ctx), req.Theme); err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", "could not save the theme")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"theme": req.Theme})
}

// AdminHandler fronts the back-office user management. All routes sit
// behind RequireAdmin.
type AdminHandler struct {
	store   store.Store
	client  *backend.Client
	timeout time.Duration
}

func NewAdminHandler(s store.Store, client *backend.Client, timeout time.Duration) *AdminHandler {
	return &AdminHandler{store: s, client: client, timeout: timeout}
}

func (h *AdminHandler) token(ctx context.Context) string {
	return store.AuthToken(ctx, h.store, getSessionID(ctx))
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	users, err := h.client.ListUsers(ctx, h.token(ctx))
	if err != nil {
		handleBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var user backend.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if user.ID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_id", "id must be positive")
		return
	}

	if err := h.client.UpdateUser(ctx, h.token(ctx), user); err != nil {
		handleBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}

	if err := h.client.DeleteUser(ctx, h.token(ctx), id); err != nil {
		handleBackendError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
