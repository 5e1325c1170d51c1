package query

import (
	"context"

	"dealview/internal/models"
	"dealview/internal/sources"
	"dealview/internal/supabase"
)

// Get resolves one product by its prefixed ID and attaches its price
// history: real price_history rows for retailer products, a synthesized
// series for everything else.
func (p *Planner) Get(ctx context.Context, id string) (*models.ProductDetailResponse, error) {
	product, desc, nativeID, err := p.fetchProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.ProductDetailResponse{
		Product:      product,
		PriceHistory: p.fetchHistory(ctx, desc, nativeID, product),
	}, nil
}

// History returns a product's price series plus derived statistics.
func (p *Planner) History(ctx context.Context, id string) (*models.HistoryResponse, error) {
	product, desc, nativeID, err := p.fetchProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	history := p.fetchHistory(ctx, desc, nativeID, product)
	return &models.HistoryResponse{
		History: history,
		Stats:   sources.ComputeHistoryStats(history),
	}, nil
}

func (p *Planner) fetchProduct(ctx context.Context, id string) (models.Product, *sources.Descriptor, string, error) {
	desc, nativeID, ok := p.registry.Resolve(id)
	if !ok {
		return models.Product{}, nil, "", ErrNotFound
	}

	rows, _, err := supabase.NewQuery(p.client, desc.Table).Eq("id", nativeID).Range(0, 1).Execute(ctx)
	if err != nil {
		return models.Product{}, nil, "", err
	}
	if len(rows) == 0 {
		return models.Product{}, nil, "", ErrNotFound
	}

	product, err := desc.Normalize(rows[0])
	if err != nil {
		return models.Product{}, nil, "", err
	}
	return product, desc, nativeID, nil
}

// fetchHistory loads the stored price series where one exists. A failed or
// empty lookup degrades to a synthesized series rather than an error; the
// detail endpoints always have something to chart.
func (p *Planner) fetchHistory(ctx context.Context, desc *sources.Descriptor, nativeID string, product models.Product) []models.PricePoint {
	if desc.Key == "retailer" {
		rows, _, err := supabase.NewQuery(p.client, "price_history").
			Select("price,original_price,scraped_at,is_on_sale").
			Eq("retailer_product_id", nativeID).
			Order("scraped_at", false).
			Execute(ctx)
		if err != nil {
			p.log.Warn("price history lookup failed, synthesizing", "id", product.ID, "error", err)
		} else if len(rows) > 0 {
			points, err := sources.NormalizeHistory(rows)
			if err == nil {
				return points
			}
			p.log.Warn("price history rows undecodable, synthesizing", "id", product.ID, "error", err)
		}
	}
	return sources.SynthesizeHistory(product)
}
