package models

import "time"

// ProductListResponse is the paginated listing payload.
// Approximate is set when one or more sources failed mid-aggregation, in
// which case Total undercounts the true union and FailedSources names the
// missing contributions.
type ProductListResponse struct {
	Products       []Product      `json:"products"`
	Total          int            `json:"total"`
	Page           int            `json:"page"`
	PerPage        int            `json:"per_page"`
	TotalPages     int            `json:"total_pages"`
	Approximate    bool           `json:"approximate"`
	FailedSources  []string       `json:"failed_sources,omitempty"`
	AppliedFilters map[string]any `json:"applied_filters"`
	QueryTimeMs    int64          `json:"query_time_ms"`
}

// ProductDetailResponse is a single product plus its price history.
type ProductDetailResponse struct {
	Product
	PriceHistory []PricePoint `json:"price_history"`
}

// HistoryResponse pairs a price history series with its derived stats.
// Stats is null when no point in the series carries a price.
type HistoryResponse struct {
	History []PricePoint  `json:"history"`
	Stats   *HistoryStats `json:"stats"`
}

// StoreFacet is one entry of the filter UI facet list.
type StoreFacet struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// FiltersResponse feeds the filter sidebar.
type FiltersResponse struct {
	Stores      []StoreFacet `json:"stores"`
	TotalActive int64        `json:"total_active"`
	LastScraped *time.Time   `json:"last_scraped"`
}

// StatsResponse is the lightweight aggregate counter payload.
type StatsResponse struct {
	TotalActive int64     `json:"total_active"`
	OnSale      int64     `json:"on_sale"`
	Timestamp   time.Time `json:"timestamp"`
}
