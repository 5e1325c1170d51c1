package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"dealview/internal/metrics"
	"dealview/internal/models"
	"dealview/internal/sources"
	"dealview/internal/supabase"
	"dealview/internal/validation"
)

// ErrNotFound indicates a single-entity lookup matched nothing.
var ErrNotFound = errors.New("product not found")

// PartialAggregationError is returned when every eligible source failed
// during a federated fetch, leaving nothing to serve. Partial failures are
// reported through the response's Approximate flag instead.
type PartialAggregationError struct {
	Sources []string
}

func (e *PartialAggregationError) Error() string {
	return fmt.Sprintf("all sources failed: %s", strings.Join(e.Sources, ", "))
}

// Planner fans one logical request out across every eligible source,
// normalizes and merges the contributions, finishes the filtering the
// stores could not do, and globally sorts and paginates the union.
//
// The backing protocol filters and counts per table only; there is no
// cross-table join or global order-by. Correct global pagination therefore
// fetches a bounded prefix from each source and merges in memory, trading
// wasted fetch volume for a source-agnostic, correct ordering.
type Planner struct {
	client        *supabase.Client
	registry      sources.Registry
	log           *slog.Logger
	sourceTimeout time.Duration
}

// NewPlanner wires a planner over an explicit client and registry.
func NewPlanner(client *supabase.Client, registry sources.Registry, log *slog.Logger, sourceTimeout time.Duration) *Planner {
	return &Planner{client: client, registry: registry, log: log, sourceTimeout: sourceTimeout}
}

// Registry exposes the source set (read-only) for facet and monitor code.
func (p *Planner) Registry() sources.Registry { return p.registry }

type sourceResult struct {
	desc     *sources.Descriptor
	products []models.Product
	err      error
}

// Search executes one federated listing query.
func (p *Planner) Search(ctx context.Context, spec FilterSpec) (*models.ProductListResponse, error) {
	start := time.Now()
	defer func() { metrics.ObservePlannerDuration(time.Since(start)) }()

	// Re-bound pagination here as well; the offset arithmetic below must
	// not overflow for callers that build a FilterSpec directly.
	if spec.PerPage < 1 || spec.PerPage > MaxPerPage {
		spec.PerPage = DefaultPerPage
	}
	spec.Page = validation.Clamp(spec.Page, 1, MaxPage)

	eligible := p.eligible(spec)

	// One bounded window per source: enough rows that this page is correct
	// even if one source supplies the whole page, plus one page of slack,
	// capped so deep pages cannot amplify fan-out cost.
	fetchLimit := spec.Page*spec.PerPage + spec.PerPage
	if fetchLimit > MaxRowsPerSource {
		fetchLimit = MaxRowsPerSource
	}

	results := make([]sourceResult, len(eligible))
	var wg sync.WaitGroup
	for i, desc := range eligible {
		wg.Add(1)
		go func(i int, desc *sources.Descriptor) {
			defer wg.Done()
			results[i] = p.fetchSource(ctx, desc, spec, fetchLimit)
		}(i, desc)
	}
	// Merge must not begin until every fetch completed or definitively failed.
	wg.Wait()

	var merged []item
	var failed []string
	for _, res := range results {
		if res.err != nil {
			metrics.RecordSourceFetch(res.desc.Key, "error")
			p.log.Warn("source fetch failed, contribution dropped",
				"source", res.desc.Key, "table", res.desc.Table, "error", res.err)
			failed = append(failed, res.desc.Key)
			continue
		}
		metrics.RecordSourceFetch(res.desc.Key, "ok")
		for _, product := range res.products {
			merged = append(merged, item{product: product, desc: res.desc})
		}
	}

	if len(eligible) > 0 && len(failed) == len(eligible) {
		return nil, &PartialAggregationError{Sources: failed}
	}

	merged = applyResidual(merged, spec)
	sortItems(merged, spec.SortBy, spec.Ascending())

	total := len(merged)
	totalPages := (total + spec.PerPage - 1) / spec.PerPage
	if totalPages < 1 {
		totalPages = 1
	}

	lo := (spec.Page - 1) * spec.PerPage
	hi := lo + spec.PerPage
	if lo > total {
		lo = total
	}
	if hi > total {
		hi = total
	}

	page := make([]models.Product, 0, hi-lo)
	for _, it := range merged[lo:hi] {
		page = append(page, it.product)
	}

	return &models.ProductListResponse{
		Products:       page,
		Total:          total,
		Page:           spec.Page,
		PerPage:        spec.PerPage,
		TotalPages:     totalPages,
		Approximate:    len(failed) > 0,
		FailedSources:  failed,
		AppliedFilters: spec.Applied(),
		QueryTimeMs:    time.Since(start).Milliseconds(),
	}, nil
}

// eligible filters the registry by the source allow-list and static regions.
func (p *Planner) eligible(spec FilterSpec) []*sources.Descriptor {
	var out []*sources.Descriptor
	for _, desc := range p.registry {
		if !desc.Matches(spec.Sources) {
			continue
		}
		if len(spec.Regions) > 0 && !validation.ContainsFold(spec.Regions, desc.Region) {
			continue
		}
		out = append(out, desc)
	}
	return out
}

func (p *Planner) fetchSource(ctx context.Context, desc *sources.Descriptor, spec FilterSpec, limit int) sourceResult {
	ctx, cancel := context.WithTimeout(ctx, p.sourceTimeout)
	defer cancel()

	q := p.buildQuery(desc, spec).Range(0, limit)

	rows, _, err := q.Execute(ctx)
	if err != nil {
		return sourceResult{desc: desc, err: err}
	}

	products := make([]models.Product, 0, len(rows))
	for _, raw := range rows {
		product, err := desc.Normalize(raw)
		if err != nil {
			p.log.Warn("skipping row that failed to normalize", "source", desc.Key, "error", err)
			continue
		}
		products = append(products, product)
	}
	return sourceResult{desc: desc, products: products}
}

// buildQuery translates the logical spec into this source's own columns and
// operators, attaching only the predicates the descriptor marks as
// push-down-capable. Everything else is left for the residual pass.
func (p *Planner) buildQuery(desc *sources.Descriptor, spec FilterSpec) supabase.Query {
	q := supabase.NewQuery(p.client, desc.Table)
	if desc.Base != nil {
		q = desc.Base(q)
	}

	cols := desc.Columns
	push := desc.Pushdown

	if push.Search && spec.Search != "" {
		q = q.Ilike(cols.Title, "*"+spec.Search+"*")
	}
	if push.PriceRange && cols.Price != "" {
		if spec.MinPrice != nil {
			q = q.Gte(cols.Price, *spec.MinPrice)
		}
		if spec.MaxPrice != nil {
			q = q.Lte(cols.Price, *spec.MaxPrice)
		}
	}
	// Only the lower discount bound is pushed: the derived discount can
	// exceed a null stored column, so the upper bound stays residual.
	if push.DiscountRange && cols.Discount != "" && spec.MinDiscount != nil {
		q = q.Gte(cols.Discount, *spec.MinDiscount)
	}
	if push.DateRange && cols.Date != "" {
		if spec.DateFrom != nil {
			q = q.Gte(cols.Date, spec.DateFrom.Format("2006-01-02"))
		}
		if spec.DateTo != nil {
			q = q.Lte(cols.Date, spec.DateTo.Format("2006-01-02"))
		}
	}
	if push.Stores && cols.Store != "" && len(spec.Stores) > 0 {
		q = q.In(cols.Store, spec.Stores)
	}
	if push.Brands && cols.Brand != "" && len(spec.Brands) > 0 {
		q = q.In(cols.Brand, spec.Brands)
	}
	if push.Categories && cols.Category != "" && len(spec.Categories) > 0 {
		q = q.In(cols.Category, spec.Categories)
	}
	if spec.ActiveOnly && push.ActiveFlag && cols.Active != "" {
		q = q.Eq(cols.Active, "true")
	}
	// on_sale_only is never pushed: a store-side discount > 0 check drops
	// rows whose stored discount is null but whose price pair derives a
	// positive one. The residual pass evaluates it for every row.

	return q.Order(desc.SortColumn(spec.SortBy), !spec.Ascending())
}
