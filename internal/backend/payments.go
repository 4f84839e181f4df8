package backend

import (
	"context"
	"net/http"

	"github.com/fjod/go_storefront/internal/domain"
)

// CheckoutSession is the payment provider's handoff: the storefront
// redirects the user to URL and the provider redirects back to
// /checkout/success?session_id=<ID> or /checkout/cancel.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (c *Client) CreateCheckoutSession(ctx context.Context, items []domain.CartItem) (*CheckoutSession, error) {
	var session CheckoutSession
	err := c.do(ctx, http.MethodPost, "/api/Payments/create-checkout-session", nil, "", map[string]interface{}{
		"items": items,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}
