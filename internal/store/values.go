package store

import (
	"context"
	"encoding/json"
	"log"

	"github.com/fjod/go_storefront/internal/domain"
)

// Typed accessors over Store. Reads degrade on missing keys and malformed
// JSON: the caller gets the documented default, never a decode error. This
// is the only place decode failures are swallowed, so callers must not
// assume the returned value reflects what a corrupted store actually held.

func Cart(ctx context.Context, s Store, sessionID string) []domain.CartItem {
	raw, err := s.Get(ctx, CartKey(sessionID))
	if err != nil {
		return []domain.CartItem{}
	}

	var items []domain.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Printf("corrupt cart for session %s, falling back to empty: %v", sessionID, err)
		return []domain.CartItem{}
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	return items
}

func SaveCart(ctx context.Context, s Store, sessionID string, items []domain.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.Set(ctx, CartKey(sessionID), data)
}

func LoggedUser(ctx context.Context, s Store, sessionID string) *domain.LoggedUser {
	raw, err := s.Get(ctx, UserKey(sessionID))
	if err != nil {
		return nil
	}

	var user domain.LoggedUser
	if err := json.Unmarshal(raw, &user); err != nil {
		log.Printf("corrupt logged user for session %s, treating as anonymous: %v", sessionID, err)
		return nil
	}
	return &user
}

func SaveLoggedUser(ctx context.Context, s Store, sessionID string, user *domain.LoggedUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.Set(ctx, UserKey(sessionID), data)
}

// ClearLoggedUser removes the identity and the raw token together.
func ClearLoggedUser(ctx context.Context, s Store, sessionID string) error {
	if err := s.Remove(ctx, UserKey(sessionID)); err != nil {
		return err
	}
	return s.Remove(ctx, TokenKey(sessionID))
}

func AuthToken(ctx context.Context, s Store, sessionID string) string {
	raw, err := s.Get(ctx, TokenKey(sessionID))
	if err != nil {
		return ""
	}
	return string(raw)
}

func SaveAuthToken(ctx context.Context, s Store, sessionID, token string) error {
	return s.Set(ctx, TokenKey(sessionID), []byte(token))
}

func Theme(ctx context.Context, s Store, sessionID string) string {
	raw, err := s.Get(ctx, ThemeKey(sessionID))
	if err != nil {
		return "light"
	}
	theme := string(raw)
	if theme != "light" && theme != "dark" {
		return "light"
	}
	return theme
}

func SaveTheme(ctx context.Context, s Store, sessionID, theme string) error {
	return s.Set(ctx, ThemeKey(sessionID), []byte(theme))
}

// Processed reports whether the checkout marker for the given payment
// session has been set.
func Processed(ctx context.Context, s Store, checkoutSessionID string) bool {
	_, err := s.Get(ctx, MarkerKey(checkoutSessionID))
	return err == nil
}

func PurchasedIncidents(ctx context.Context, s Store, username string) []int64 {
	raw, err := s.Get(ctx, PurchasedKey(username))
	if err != nil {
		return []int64{}
	}

	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		log.Printf("corrupt purchased incidents for %s, falling back to empty: %v", username, err)
		return []int64{}
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids
}

// AddPurchasedIncidents appends lead ids to the user's owned set,
// dropping duplicates while preserving first-seen order.
func AddPurchasedIncidents(ctx context.Context, s Store, username string, leadIDs []int64) error {
	existing := PurchasedIncidents(ctx, s, username)
	seen := make(map[int64]bool, len(existing))
	for _, id := range existing {
		seen[id] = true
	}
	for _, id := range leadIDs {
		if !seen[id] {
			existing = append(existing, id)
			seen[id] = true
		}
	}

	data, err := json.Marshal(existing)
	if err != nil {
		return err
	}
	return s.Set(ctx, PurchasedKey(username), data)
}
