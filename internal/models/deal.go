// internal/models/deal.go
package models

import "time"

// Deal is a row of the daily_deals table.
type Deal struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Price     float64   `json:"price"`
	ImageURL  string    `json:"imageUrl"`
	Link      string    `json:"link"`
	Source    string    `json:"source"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
}
