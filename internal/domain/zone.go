package domain

import "time"

// ZoneInterest is a notification subscription: the backend emails the user
// when new leads match the filter fields. All filters are optional but at
// least one must be non-empty at creation.
type ZoneInterest struct {
	ID              int64     `json:"id,omitempty"`
	UserID          int64     `json:"user_id"`
	State           string    `json:"state,omitempty"`
	City            string    `json:"city,omitempty"`
	Zip             string    `json:"zip,omitempty"`
	AddressContains string    `json:"address_contains,omitempty"`
	EmailTo         string    `json:"email_to,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
}

// HasFilter reports whether at least one filter field is non-empty.
func (z ZoneInterest) HasFilter() bool {
	return z.State != "" || z.City != "" || z.Zip != "" || z.AddressContains != ""
}
