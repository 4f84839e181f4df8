package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/backend"
	"github.com/fjod/go_storefront/internal/store"
)

type AuthHandler struct {
	store   store.Store
	client  *backend.Client
	timeout time.Duration
}

func NewAuthHandler(s store.Store, client *backend.Client, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		store:   s,
		client:  client,
		timeout: timeout,
	}
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	user, err := h.client.Login(ctx, req.Email, req.Password)
	if err != nil {
		handleBackendError(w, err)
		return
	}

	sessionID := getSessionID(ctx)
	if err := store.SaveLoggedUser(ctx, h.store, sessionID, user); err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", "could not persist the session")
		return
	}
	if err := store.SaveAuthToken(ctx, h.store, sessionID, user.Token); err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", "could not persist the session")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(ctx)
	if token := store.AuthToken(ctx, h.store, sessionID); token != "" {
		// Best effort: the local session is cleared even when the backend
		// cannot be reached.
		if err := h.client.Logout(ctx, token); err != nil {
			log.Printf("backend logout failed: %v", err)
		}
	}

	if err := store.ClearLoggedUser(ctx, h.store, sessionID); err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", "could not clear the session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req backend.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	if err := h.client.Register(ctx, req); err != nil {
		handleBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"message": "registered, check your email for verification"})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	h.emailAction(w, r, h.client.ForgotPassword, "reset code sent")
}

func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	h.emailAction(w, r, h.client.ResendVerification, "verification email sent")
}

// emailAction handles the forgot-password/resend-verification pair, both
// bare {email} posts.
func (h *AuthHandler) emailAction(w http.ResponseWriter, r *http.Request, call func(context.Context, string) error, okMessage string) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email is required")
		return
	}

	if err := call(ctx, req.Email); err != nil {
		handleBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": okMessage})
}

func (h *AuthHandler) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Code == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and code are required")
		return
	}

	if err := h.client.VerifyResetCode(ctx, req.Email, req.Code); err != nil {
		handleBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "code accepted"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email, code and newPassword are required")
		return
	}

	if err := h.client.ResetPassword(ctx, req.Email, req.Code, req.NewPassword); err != nil {
		handleBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "oldPassword and newPassword are required")
		return
	}

	token := store.AuthToken(ctx, h.store, getSessionID(ctx))
	if err := h.client.ChangePassword(ctx, token, req.OldPassword, req.NewPassword); err != nil {
		handleBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "token query parameter is required")
		return
	}

	if err := h.client.VerifyEmail(ctx, token); err != nil {
		handleBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "email verified"})
}
