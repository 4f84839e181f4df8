package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fjod/go_storefront/internal/domain"
)

// ErrNoZoneFilter rejects a zone subscription with every filter field
// empty, before any network call. This is a UX courtesy, not a security
// boundary: the backend validates independently.
var ErrNoZoneFilter = errors.New("zone needs at least one filter field")

func (c *Client) MyZones(ctx context.Context, token string, userID int64) ([]domain.ZoneInterest, error) {
	query := url.Values{"userId": {strconv.FormatInt(userID, 10)}}

	var zones []domain.ZoneInterest
	if err := c.do(ctx, http.MethodGet, "/Zones/My", query, token, nil, &zones); err != nil {
		return nil, err
	}
	if zones == nil {
		zones = []domain.ZoneInterest{}
	}
	return zones, nil
}

func (c *Client) AddZone(ctx context.Context, token string, zone domain.ZoneInterest) (*domain.ZoneInterest, error) {
	if !zone.HasFilter() {
		return nil, ErrNoZoneFilter
	}

	var created domain.ZoneInterest
	if err := c.do(ctx, http.MethodPost, "/Zones/Add", nil, token, zone, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeleteZone(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/Zones/Delete/%d", id), nil, token, nil, nil)
}

func (c *Client) SendZoneTestEmail(ctx context.Context, token, to string) error {
	query := url.Values{"to": {to}}
	return c.do(ctx, http.MethodPost, "/Zones/TestEmail", query, token, nil, nil)
}
