package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/go_storefront/internal/backend"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/store"
)

type PaymentsMock struct {
	Session *backend.CheckoutSession
	Err     error
	Calls   int
}

func (m *PaymentsMock) CreateCheckoutSession(ctx context.Context, items []domain.CartItem) (*backend.CheckoutSession, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Session, nil
}

type CommitterMock struct {
	Err   error
	Calls int
}

func (m *CommitterMock) CreatePurchase(ctx context.Context, userID int64, amount float64, leadIDs []int64) error {
	m.Calls++
	return m.Err
}

func seedCart(t *testing.T, st store.Store) {
	t.Helper()
	items := []domain.CartItem{
		{ID: 1, Price: 100, Quantity: 1},
		{ID: 2, Price: 50, Quantity: 2},
	}
	if err := store.SaveCart(context.Background(), st, "sid", items); err != nil {
		t.Fatalf("Failed to seed cart: %v", err)
	}
}

func TestCheckoutCreate_EmptyCart(t *testing.T) {
	st := store.NewMemoryStore()
	payments := &PaymentsMock{}
	handler := NewCheckoutHandler(st, payments, checkout.NewReconciler(st, &CommitterMock{}, nil), 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.Create(recorder, withSession(httptest.NewRequest("POST", "/api/checkout", nil), "sid"))

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
	if payments.Calls != 0 {
		t.Errorf("Expected no payment calls for an empty cart, got %d", payments.Calls)
	}
}

func TestCheckoutCreate_ReturnsProviderSession(t *testing.T) {
	st := store.NewMemoryStore()
	seedCart(t, st)
	payments := &PaymentsMock{Session: &backend.CheckoutSession{ID: "cs_123", URL: "https://pay.example/cs_123"}}
	handler := NewCheckoutHandler(st, payments, checkout.NewReconciler(st, &CommitterMock{}, nil), 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.Create(recorder, withSession(httptest.NewRequest("POST", "/api/checkout", nil), "sid"))

	if recorder.Code != http.StatusCreated {
		t.Fatalf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}

	var session backend.CheckoutSession
	if err := json.NewDecoder(recorder.Body).Decode(&session); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if session.URL != "https://pay.example/cs_123" {
		t.Errorf("Expected provider URL, got %q", session.URL)
	}
}

func TestCheckoutSuccess_MissingSessionID(t *testing.T) {
	st := store.NewMemoryStore()
	committer := &CommitterMock{}
	handler := NewCheckoutHandler(st, &PaymentsMock{}, checkout.NewReconciler(st, committer, nil), 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.Success(recorder, withSession(httptest.NewRequest("GET", "/checkout/success", nil), "sid"))

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
	if committer.Calls != 0 {
		t.Errorf("Expected no commit without a session id, got %d calls", committer.Calls)
	}
}

func TestCheckoutSuccess_CommitsAndRedirects(t *testing.T) {
	st := store.NewMemoryStore()
	seedCart(t, st)
	committer := &CommitterMock{}
	handler := NewCheckoutHandler(st, &PaymentsMock{}, checkout.NewReconciler(st, committer, nil), 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.Success(recorder, withSession(httptest.NewRequest("GET", "/checkout/success?session_id=cs_123", nil), "sid"))

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if committer.Calls != 1 {
		t.Errorf("Expected exactly one commit, got %d", committer.Calls)
	}

	var response ReconcileResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Status != domain.ReconcileStatusSuccess {
		t.Errorf("Expected status %s, got %s", domain.ReconcileStatusSuccess, response.Status)
	}
	if response.Redirect != "/profile" {
		t.Errorf("Expected redirect to /profile, got %q", response.Redirect)
	}
	if response.RedirectAfterMs != 2500 {
		t.Errorf("Expected a 2500ms redirect delay, got %d", response.RedirectAfterMs)
	}

	if items := store.Cart(context.Background(), st, "sid"); len(items) != 0 {
		t.Errorf("Expected the cart to be cleared, got %d items", len(items))
	}
	if !store.Processed(context.Background(), st, "cs_123") {
		t.Error("Expected the session marker to be set")
	}
}

func TestCheckoutSuccess_ReplayDoesNotRecommit(t *testing.T) {
	st := store.NewMemoryStore()
	seedCart(t, st)
	committer := &CommitterMock{}
	handler := NewCheckoutHandler(st, &PaymentsMock{}, checkout.NewReconciler(st, committer, nil), 5*time.Second)

	for i := 0; i < 2; i++ {
		recorder := httptest.NewRecorder()
		handler.Success(recorder, withSession(httptest.NewRequest("GET", "/checkout/success?session_id=cs_123", nil), "sid"))
		if recorder.Code != http.StatusOK {
			t.Fatalf("Expected status code %d on attempt %d, got %d", http.StatusOK, i+1, recorder.Code)
		}
	}

	if committer.Calls != 1 {
		t.Errorf("Expected exactly one commit across replays, got %d", committer.Calls)
	}
}

func TestCheckoutSuccess_BackendFailure(t *testing.T) {
	st := store.NewMemoryStore()
	seedCart(t, st)
	committer := &CommitterMock{Err: errors.New("connection refused")}
	handler := NewCheckoutHandler(st, &PaymentsMock{}, checkout.NewReconciler(st, committer, nil), 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.Success(recorder, withSession(httptest.NewRequest("GET", "/checkout/success?session_id=cs_123", nil), "sid"))

	if recorder.Code != http.StatusBadGateway {
		t.Fatalf("Expected status code %d, got %d", http.StatusBadGateway, recorder.Code)
	}
	if items := store.Cart(context.Background(), st, "sid"); len(items) != 2 {
		t.Errorf("Expected the cart to be preserved for retry, got %d items", len(items))
	}
}

func TestCheckoutCancel_PreservesCart(t *testing.T) {
	st := store.NewMemoryStore()
	seedCart(t, st)
	handler := NewCheckoutHandler(st, &PaymentsMock{}, checkout.NewReconciler(st, &CommitterMock{}, nil), 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.Cancel(recorder, withSession(httptest.NewRequest("GET", "/checkout/cancel", nil), "sid"))

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if items := store.Cart(context.Background(), st, "sid"); len(items) != 2 {
		t.Errorf("Expected the cart to be preserved, got %d items", len(items))
	}
}
