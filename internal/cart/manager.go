package cart

import (
	"context"
	"log"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/store"
)

// Manager is the single source of truth for one session's cart. Every
// mutation writes through to the store immediately so an abrupt teardown
// loses nothing; derived totals are computed fresh from the stored items.
type Manager struct {
	store     store.Store
	sessionID string
}

func NewManager(s store.Store, sessionID string) *Manager {
	return &Manager{store: s, sessionID: sessionID}
}

// Items reads the current cart. A missing or corrupt entry yields an empty
// cart, never an error.
func (m *Manager) Items(ctx context.Context) []domain.CartItem {
	return store.Cart(ctx, m.store, m.sessionID)
}

// Add inserts the item unless an entry with the same id already exists, in
// which case it is a no-op (not a quantity increment). Returns whether the
// cart changed.
func (m *Manager) Add(ctx context.Context, item domain.CartItem) (bool, error) {
	items := m.Items(ctx)
	for _, existing := range items {
		if existing.ID == item.ID {
			return false, nil
		}
	}

	if item.Quantity < 1 {
		item.Quantity = 1
	}
	items = append(items, item)

	if err := store.SaveCart(ctx, m.store, m.sessionID, items); err != nil {
		log.Printf("cart write-through failed for session %s: %v", m.sessionID, err)
		return false, err
	}
	return true, nil
}

// Remove deletes the entry with the matching id; no-op if absent.
func (m *Manager) Remove(ctx context.Context, id int64) (bool, error) {
	items := m.Items(ctx)
	kept := make([]domain.CartItem, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return false, nil
	}

	if err := store.SaveCart(ctx, m.store, m.sessionID, kept); err != nil {
		log.Printf("cart write-through failed for session %s: %v", m.sessionID, err)
		return false, err
	}
	return true, nil
}

func (m *Manager) Clear(ctx context.Context) error {
	return m.store.Remove(ctx, store.CartKey(m.sessionID))
}

// Count is the sum of quantities, not the number of entries.
func (m *Manager) Count(ctx context.Context) int {
	return domain.CartCount(m.Items(ctx))
}

func (m *Manager) Total(ctx context.Context) float64 {
	return domain.CartTotal(m.Items(ctx))
}
