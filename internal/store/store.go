package store

import (
	"context"
	"errors"
	"fmt"
)

// Store is the durable key-value store behind all session state: one
// value per key, JSON payloads, no TTL.
// Consumers define this interface, not the redis implementation.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error

	// CompleteCheckout sets the processed marker and removes the cart key
	// in one step. The redis and memory backends do this atomically; the
	// mongo backend writes the marker first so a crash between the two
	// writes can leave a stale cart but never an unguarded replay.
	CompleteCheckout(ctx context.Context, markerKey, cartKey string) error
}

var ErrNotFound = errors.New("key not found")

// processedValue is what a set checkout marker holds.
var processedValue = []byte("true")

func CartKey(sessionID string) string {
	return fmt.Sprintf("sess:%s:cart", sessionID)
}

func UserKey(sessionID string) string {
	return fmt.Sprintf("sess:%s:loggedUser", sessionID)
}

func TokenKey(sessionID string) string {
	return fmt.Sprintf("sess:%s:authToken", sessionID)
}

func ThemeKey(sessionID string) string {
	return fmt.Sprintf("sess:%s:theme", sessionID)
}

// MarkerKey is global, not session scoped: the payment provider's session
// id is the idempotency key regardless of which tab comes back.
func MarkerKey(checkoutSessionID string) string {
	return "stripeSessionProcessed_" + checkoutSessionID
}

func PurchasedKey(username string) string {
	return "purchasedIncidents_" + username
}

func PaymentMethodsKey(username string) string {
	return "paymentMethods_" + username
}
