package backend

import (
	"context"
	"net/http"

	"github.com/fjod/go_storefront/internal/domain"
)

func (c *Client) ListLeads(ctx context.Context) ([]domain.Lead, error) {
	var leads []domain.Lead
	if err := c.do(ctx, http.MethodGet, "/Leads/List", nil, "", nil, &leads); err != nil {
		return nil, err
	}
	if leads == nil {
		leads = []domain.Lead{}
	}
	return leads, nil
}

// ScrapeLeads triggers the backend's scraping run. Fire-and-forget from the
// storefront's point of view; the backend replies once the run is queued.
func (c *Client) ScrapeLeads(ctx context.Context, token, username, password string) error {
	return c.do(ctx, http.MethodPost, "/Leads/ScrapeWithPlaywright", nil, token, map[string]string{
		"Username": username,
		"Password": password,
	}, nil)
}
