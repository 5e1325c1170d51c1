package models

import "time"

// Product is the canonical deal entity every backing table normalizes into.
// It is request-scoped: built from raw rows on the way out, never persisted.
// The ID is globally unique across tables, formed as "<source>_<nativeID>".
type Product struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Brand           *string        `json:"brand"`
	Store           string         `json:"store"`
	Source          string         `json:"source"`
	ImageURL        *string        `json:"image_url"`
	CurrentPrice    *float64       `json:"current_price"`
	OriginalPrice   *float64       `json:"original_price"`
	DiscountPercent float64        `json:"discount_percent"`
	Category        *string        `json:"category"`
	Region          string         `json:"region,omitempty"`
	AffiliateURL    string         `json:"affiliate_url"`
	IsActive        bool           `json:"is_active"`
	FirstSeenAt     *time.Time     `json:"first_seen_at"`
	LastSeenAt      *time.Time     `json:"last_seen_at"`
	Description     *string        `json:"description,omitempty"`
	Extra           map[string]any `json:"extra,omitempty"`
}

// PricePoint is one observation in a product's price history.
type PricePoint struct {
	Price         *float64   `json:"price"`
	OriginalPrice *float64   `json:"original_price"`
	ScrapedAt     *time.Time `json:"scraped_at"`
	IsOnSale      bool       `json:"is_on_sale"`
}

// HistoryStats summarizes a price history series.
type HistoryStats struct {
	LowestPrice     float64    `json:"lowest_price"`
	HighestPrice    float64    `json:"highest_price"`
	AvgPrice        float64    `json:"avg_price"`
	TotalDataPoints int        `json:"total_data_points"`
	PriceChangePct  float64    `json:"price_change_pct"`
	FirstRecorded   *time.Time `json:"first_recorded"`
	LastRecorded    *time.Time `json:"last_recorded"`
}
