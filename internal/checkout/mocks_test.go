package checkout

import (
	"context"
	"sync"

	"github.com/fjod/go_storefront/internal/ledger"
)

// MockCommitter implements PurchaseCommitter for testing
type MockCommitter struct {
	mu      sync.Mutex
	Err     error
	Calls   int
	UserID  int64
	Amount  float64
	LeadIDs []int64

	// Entered/Release make the commit block so tests can hold a request
	// in flight. Nil channels mean no blocking.
	Entered chan struct{}
	Release chan struct{}
}

func (m *MockCommitter) CreatePurchase(_ context.Context, userID int64, amount float64, leadIDs []int64) error {
	m.mu.Lock()
	m.Calls++
	m.UserID = userID
	m.Amount = amount
	m.LeadIDs = leadIDs
	m.mu.Unlock()

	if m.Entered != nil {
		m.Entered <- struct{}{}
	}
	if m.Release != nil {
		<-m.Release
	}
	return m.Err
}

func (m *MockCommitter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// MockLedger implements PurchaseLedger for testing
type MockLedger struct {
	Err     error
	Records []*ledger.PurchaseRecord
}

func (m *MockLedger) RecordPurchase(_ context.Context, rec *ledger.PurchaseRecord) error {
	if m.Err != nil {
		return m.Err
	}
	m.Records = append(m.Records, rec)
	return nil
}
