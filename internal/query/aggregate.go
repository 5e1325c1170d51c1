package query

import (
	"context"
	"encoding/json"
	"time"

	"dealview/internal/models"
	"dealview/internal/sources"
	"dealview/internal/supabase"
)

// countOpts narrows a per-source count probe.
type countOpts struct {
	activeOnly bool
	onSaleOnly bool
	urlPattern string
}

// count runs one exact-count probe against a source. The row window is
// minimal; only the Content-Range total matters.
func (p *Planner) count(ctx context.Context, desc *sources.Descriptor, opts countOpts) (int64, error) {
	q := supabase.NewQuery(p.client, desc.Table).Select("id")
	if desc.Base != nil {
		q = desc.Base(q)
	}
	if opts.activeOnly && desc.Columns.Active != "" {
		q = q.Eq(desc.Columns.Active, "true")
	}
	if opts.onSaleOnly && desc.Columns.Discount != "" {
		q = q.Gt(desc.Columns.Discount, 0)
	}
	if opts.urlPattern != "" {
		q = q.Ilike("affiliate_url", opts.urlPattern)
	}

	_, total, err := q.Count().Range(0, 1).Execute(ctx)
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// Probe counts a source's active rows; used by the health endpoint and the
// background source monitor.
func (p *Planner) Probe(ctx context.Context, desc *sources.Descriptor) (int64, error) {
	return p.count(ctx, desc, countOpts{activeOnly: true})
}

// Facets builds the store facet list for the filter UI. The retailer table
// hosts several stores, so it is split by outbound-URL pattern with the
// unrecognized remainder grouped as "Other"; every dedicated table counts
// as itself. Per-count failures are skipped, not fatal.
func (p *Planner) Facets(ctx context.Context) (*models.FiltersResponse, error) {
	resp := &models.FiltersResponse{Stores: []models.StoreFacet{}}

	for _, desc := range p.registry {
		if desc.Key == "retailer" {
			p.retailerFacets(ctx, desc, resp)
			continue
		}
		c, err := p.count(ctx, desc, countOpts{activeOnly: true})
		if err != nil {
			p.log.Warn("facet count failed", "source", desc.Key, "error", err)
			continue
		}
		if c > 0 {
			resp.Stores = append(resp.Stores, models.StoreFacet{Value: desc.Key, Label: desc.Label, Count: c})
			resp.TotalActive += c
		}
	}

	resp.LastScraped = p.lastScraped(ctx)
	return resp, nil
}

func (p *Planner) retailerFacets(ctx context.Context, desc *sources.Descriptor, resp *models.FiltersResponse) {
	active, err := p.count(ctx, desc, countOpts{activeOnly: true})
	if err != nil {
		p.log.Warn("retailer total count failed", "error", err)
		return
	}
	resp.TotalActive += active

	var recognized int64
	for _, pat := range sources.RetailerURLPatterns {
		c, err := p.count(ctx, desc, countOpts{activeOnly: true, urlPattern: pat.Pattern})
		if err != nil {
			p.log.Warn("facet count failed", "store", pat.Key, "error", err)
			continue
		}
		if c > 0 {
			resp.Stores = append(resp.Stores, models.StoreFacet{Value: pat.Key, Label: pat.Label, Count: c})
			recognized += c
		}
	}

	// Whatever the URL patterns did not claim is Flipp flyer data.
	if other := active - recognized; other > 0 {
		resp.Stores = append(resp.Stores, models.StoreFacet{Value: "flipp", Label: "Other", Count: other})
	}
}

// lastScraped finds the most recent observation across the two tables that
// track freshness columns.
func (p *Planner) lastScraped(ctx context.Context) *time.Time {
	var latest *time.Time
	for _, probe := range []struct{ table, column string }{
		{"retailer_products", "last_seen_at"},
		{"keepa_deals", "price_checked_at"},
	} {
		rows, _, err := supabase.NewQuery(p.client, probe.table).
			Select(probe.column).
			Order(probe.column, true).
			Range(0, 1).
			Execute(ctx)
		if err != nil || len(rows) == 0 {
			continue
		}
		var row map[string]*string
		if err := json.Unmarshal(rows[0], &row); err != nil {
			continue
		}
		if s := row[probe.column]; s != nil {
			if t := sources.ParseTimestamp(*s); t != nil && (latest == nil || t.After(*latest)) {
				latest = t
			}
		}
	}
	return latest
}

// Stats sums active and on-sale counts across every source. Individual
// failures degrade the totals instead of failing the response.
func (p *Planner) Stats(ctx context.Context) (*models.StatsResponse, error) {
	resp := &models.StatsResponse{Timestamp: time.Now().UTC()}
	for _, desc := range p.registry {
		active, err := p.count(ctx, desc, countOpts{activeOnly: true})
		if err != nil {
			p.log.Warn("stats count failed", "source", desc.Key, "error", err)
			continue
		}
		resp.TotalActive += active

		if desc.Columns.Discount == "" {
			continue
		}
		onSale, err := p.count(ctx, desc, countOpts{activeOnly: true, onSaleOnly: true})
		if err != nil {
			p.log.Warn("stats on-sale count failed", "source", desc.Key, "error", err)
			continue
		}
		resp.OnSale += onSale
	}
	return resp, nil
}
