package query

import (
	"strings"
	"time"

	"dealview/internal/validation"
)

const (
	// DefaultPerPage matches the frontend's card grid.
	DefaultPerPage = 24
	// MaxPerPage is the hard cap on page size.
	MaxPerPage = 100
	// MaxRowsPerSource bounds the per-source prefix fetch no matter how deep
	// the requested page is.
	MaxRowsPerSource = 500
	// MaxPage caps pagination depth; pages past the per-source fetch cap
	// cannot be filled anyway, and an unbounded page would overflow the
	// offset arithmetic.
	MaxPage = MaxRowsPerSource
)

// SortFields are the logical sort targets a request may name.
var SortFields = map[string]bool{
	"last_seen_at":     true,
	"first_seen_at":    true,
	"current_price":    true,
	"discount_percent": true,
}

// FilterSpec is one logical filter/sort/page request, immutable once parsed.
type FilterSpec struct {
	Sources    []string
	Stores     []string
	Regions    []string
	Brands     []string
	Categories []string

	Search string

	MinDiscount *float64
	MaxDiscount *float64
	MinPrice    *float64
	MaxPrice    *float64

	DateFrom *time.Time
	DateTo   *time.Time

	OnSaleOnly   bool
	HasPriceDrop bool
	ActiveOnly   bool

	SortBy    string
	SortOrder string

	Page    int
	PerPage int
}

// ParseFilterSpec builds a FilterSpec from raw query parameters. Unknown
// sort fields fall back to last_seen_at; page and per_page are clamped; a
// "days" shortcut becomes DateFrom unless date_from was given explicitly.
func ParseFilterSpec(params map[string]string, now time.Time) FilterSpec {
	spec := FilterSpec{
		Sources:    validation.SplitList(params["sources"]),
		Stores:     validation.SplitList(params["stores"]),
		Regions:    validation.SplitList(params["regions"]),
		Brands:     validation.SplitList(params["brands"]),
		Categories: validation.SplitList(params["categories"]),

		Search: strings.TrimSpace(params["search"]),

		MinDiscount: validation.ParseFloat(params["min_discount"]),
		MaxDiscount: validation.ParseFloat(params["max_discount"]),
		MinPrice:    validation.ParseFloat(params["min_price"]),
		MaxPrice:    validation.ParseFloat(params["max_price"]),

		OnSaleOnly:   validation.ParseBool(params["on_sale_only"]),
		HasPriceDrop: validation.ParseBool(params["has_price_drop"]),
		ActiveOnly:   validation.ParseBool(params["active_only"]),

		SortBy:    params["sort_by"],
		SortOrder: params["sort_order"],

		Page:    1,
		PerPage: DefaultPerPage,
	}

	if !SortFields[spec.SortBy] {
		spec.SortBy = "last_seen_at"
	}
	if spec.SortOrder != "asc" {
		spec.SortOrder = "desc"
	}

	if p := validation.ParseInt(params["page"]); p != nil && *p > 1 {
		spec.Page = validation.Clamp(*p, 1, MaxPage)
	}
	if pp := validation.ParseInt(params["per_page"]); pp != nil {
		spec.PerPage = validation.Clamp(*pp, 1, MaxPerPage)
	}

	spec.DateFrom = parseDate(params["date_from"])
	spec.DateTo = parseDate(params["date_to"])
	if spec.DateFrom == nil {
		if days := validation.ParseInt(params["days"]); days != nil && *days > 0 {
			from := now.UTC().AddDate(0, 0, -*days)
			spec.DateFrom = &from
		}
	}

	return spec
}

// Ascending reports whether the sort direction was explicitly ascending.
func (s FilterSpec) Ascending() bool { return s.SortOrder == "asc" }

// Applied summarizes the non-default filters for the response envelope.
func (s FilterSpec) Applied() map[string]any {
	applied := map[string]any{
		"sort_by":    s.SortBy,
		"sort_order": s.SortOrder,
	}
	if len(s.Sources) > 0 {
		applied["sources"] = s.Sources
	}
	if len(s.Stores) > 0 {
		applied["stores"] = s.Stores
	}
	if len(s.Regions) > 0 {
		applied["regions"] = s.Regions
	}
	if len(s.Brands) > 0 {
		applied["brands"] = s.Brands
	}
	if len(s.Categories) > 0 {
		applied["categories"] = s.Categories
	}
	if s.Search != "" {
		applied["search"] = s.Search
	}
	if s.MinDiscount != nil {
		applied["min_discount"] = *s.MinDiscount
	}
	if s.MaxDiscount != nil {
		applied["max_discount"] = *s.MaxDiscount
	}
	if s.MinPrice != nil {
		applied["min_price"] = *s.MinPrice
	}
	if s.MaxPrice != nil {
		applied["max_price"] = *s.MaxPrice
	}
	if s.DateFrom != nil {
		applied["date_from"] = s.DateFrom.Format("2006-01-02")
	}
	if s.DateTo != nil {
		applied["date_to"] = s.DateTo.Format("2006-01-02")
	}
	if s.OnSaleOnly {
		applied["on_sale_only"] = true
	}
	if s.HasPriceDrop {
		applied["has_price_drop"] = true
	}
	if s.ActiveOnly {
		applied["active_only"] = true
	}
	return applied
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
