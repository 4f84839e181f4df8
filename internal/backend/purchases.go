package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fjod/go_storefront/internal/domain"
)

func (c *Client) ListPurchases(ctx context.Context, token string) ([]domain.Purchase, error) {
	var purchases []domain.Purchase
	if err := c.do(ctx, http.MethodGet, "/Purchase/List", nil, token, nil, &purchases); err != nil {
		return nil, err
	}
	if purchases == nil {
		purchases = []domain.Purchase{}
	}
	return purchases, nil
}

// CreatePurchase commits one purchase record. The lead ids travel as a
// repeated query parameter and the owner/amount as the body, matching the
// backend's contract. userID is 0 for guest checkouts.
func (c *Client) CreatePurchase(ctx context.Context, userID int64, amount float64, leadIDs []int64) error {
	query := url.Values{}
	for _, id := range leadIDs {
		query.Add("leadIds", strconv.FormatInt(id, 10))
	}

	body := map[string]interface{}{
		"user_id": userID,
		"amount":  amount,
	}
	return c.do(ctx, http.MethodPut, "/Purchase/Create", query, "", body, nil)
}
