package query

import (
	"sort"
	"strings"
	"time"

	"dealview/internal/models"
	"dealview/internal/sources"
	"dealview/internal/validation"
)

// item is one normalized product tagged with its origin descriptor.
type item struct {
	product models.Product
	desc    *sources.Descriptor
}

// applyResidual evaluates every filter a given item's source could not push
// down. Null handling is permissive: an item with no data for a dimension
// passes that dimension instead of being excluded.
func applyResidual(items []item, spec FilterSpec) []item {
	out := items[:0]
	for _, it := range items {
		if residualPass(it, spec) {
			out = append(out, it)
		}
	}
	return out
}

func residualPass(it item, spec FilterSpec) bool {
	p := it.product
	push := it.desc.Pushdown

	// Source allow-lists always get a residual pass: tables hosting several
	// per-row sources are fetched whole and trimmed here.
	if len(spec.Sources) > 0 {
		if !validation.ContainsFold(spec.Sources, p.Source) && !validation.ContainsFold(spec.Sources, it.desc.Key) {
			return false
		}
	}

	if len(spec.Stores) > 0 && !push.Stores {
		if p.Store != "" && !validation.ContainsFold(spec.Stores, p.Store) {
			return false
		}
	}

	if len(spec.Regions) > 0 {
		if p.Region != "" && !validation.ContainsFold(spec.Regions, p.Region) {
			return false
		}
	}

	if len(spec.Brands) > 0 && !push.Brands {
		if p.Brand != nil && *p.Brand != "" && !validation.ContainsFold(spec.Brands, *p.Brand) {
			return false
		}
	}

	if len(spec.Categories) > 0 && !push.Categories {
		if p.Category != nil && *p.Category != "" && !validation.ContainsFold(spec.Categories, *p.Category) {
			return false
		}
	}

	if !push.Search && spec.Search != "" {
		if !strings.Contains(strings.ToLower(p.Title), strings.ToLower(spec.Search)) {
			return false
		}
	}

	if !push.PriceRange && p.CurrentPrice != nil {
		if spec.MinPrice != nil && *p.CurrentPrice < *spec.MinPrice {
			return false
		}
		if spec.MaxPrice != nil && *p.CurrentPrice > *spec.MaxPrice {
			return false
		}
	}

	// Both discount bounds re-check the derived value regardless of
	// push-down; the store-side column can disagree with it for rows whose
	// stored discount was absent.
	if spec.MinDiscount != nil && p.DiscountPercent < *spec.MinDiscount {
		return false
	}
	if spec.MaxDiscount != nil && p.DiscountPercent > *spec.MaxDiscount {
		return false
	}

	if !push.DateRange {
		if spec.DateFrom != nil && p.FirstSeenAt != nil && p.FirstSeenAt.Before(*spec.DateFrom) {
			return false
		}
		if spec.DateTo != nil && p.FirstSeenAt != nil && p.FirstSeenAt.After(*spec.DateTo) {
			return false
		}
	}

	if spec.OnSaleOnly {
		if hasDiscountData(p) && p.DiscountPercent <= 0 {
			return false
		}
	}

	if spec.HasPriceDrop {
		if p.CurrentPrice != nil && p.OriginalPrice != nil && *p.CurrentPrice >= *p.OriginalPrice {
			return false
		}
	}

	if spec.ActiveOnly && !push.ActiveFlag {
		if !p.IsActive {
			return false
		}
	}

	return true
}

func hasDiscountData(p models.Product) bool {
	return p.DiscountPercent != 0 || p.CurrentPrice != nil || p.OriginalPrice != nil
}

// sortItems orders the merged set by the requested field. Missing values
// sort lowest; ties keep their merge order (the sort is stable).
func sortItems(items []item, sortBy string, ascending bool) {
	sort.SliceStable(items, func(i, j int) bool {
		c := compareBy(items[i].product, items[j].product, sortBy)
		if c == 0 {
			return false
		}
		if ascending {
			return c < 0
		}
		return c > 0
	})
}

func compareBy(a, b models.Product, field string) int {
	switch field {
	case "current_price":
		return compareFloatPtr(a.CurrentPrice, b.CurrentPrice)
	case "discount_percent":
		return compareFloat(a.DiscountPercent, b.DiscountPercent)
	case "first_seen_at":
		return compareTimePtr(a.FirstSeenAt, b.FirstSeenAt)
	default:
		return compareTimePtr(a.LastSeenAt, b.LastSeenAt)
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloatPtr(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return compareFloat(*a, *b)
}

func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case a.Before(*b):
		return -1
	case a.After(*b):
		return 1
	}
	return 0
}
