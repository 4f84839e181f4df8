package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fjod/go_storefront/internal/backend"
	"github.com/sony/gobreaker/v2"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleBackendError maps client errors onto the storefront's surface.
// 401s are distinguished so the UI can offer the resend-verification path.
func handleBackendError(w http.ResponseWriter, err error) {
	if errors.Is(err, backend.ErrUnauthorized) {
		var apiErr *backend.APIError
		message := "authentication failed"
		if errors.As(err, &apiErr) {
			message = apiErr.Message()
		}
		respondJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   message,
			Code:    "unauthenticated",
			Details: "resend_verification_available",
		})
		return
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		respondError(w, apiErr.Status, "backend_error", apiErr.Message())
		return
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		respondError(w, http.StatusServiceUnavailable, "backend_overloaded", "the service is temporarily unavailable, please retry shortly")
		return
	}

	respondError(w, http.StatusBadGateway, "backend_unavailable", "could not reach the service, please retry")
}
