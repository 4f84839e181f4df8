package domain

import "time"

// Lead is a purchasable incident report as served by the backend catalog.
type Lead struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Category string    `json:"category,omitempty"`
	Price    float64   `json:"price"`
	State    string    `json:"state,omitempty"`
	City     string    `json:"city,omitempty"`
	Zip      string    `json:"zip,omitempty"`
	Address  string    `json:"address,omitempty"`
	Date     time.Time `json:"date,omitempty"`
	Verified bool      `json:"verified,omitempty"`
}

// Purchase is a committed purchase record as returned by the backend.
type Purchase struct {
	ID        int64     `json:"id,omitempty"`
	UserID    int64     `json:"user_id"`
	Amount    float64   `json:"amount"`
	LeadIDs   []int64   `json:"lead_ids,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
