package sources

import (
	"encoding/json"
	"fmt"
	"math"

	"dealview/internal/models"
)

// historyRow is the raw shape of the price_history table, which only
// retailer products have.
type historyRow struct {
	Price         *float64 `json:"price"`
	OriginalPrice *float64 `json:"original_price"`
	ScrapedAt     *string  `json:"scraped_at"`
	IsOnSale      *bool    `json:"is_on_sale"`
}

// NormalizeHistory maps raw price_history rows into PricePoints, keeping
// the stored order (callers fetch ordered by scraped_at).
func NormalizeHistory(rows []json.RawMessage) ([]models.PricePoint, error) {
	points := make([]models.PricePoint, 0, len(rows))
	for _, raw := range rows {
		var row historyRow
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("price_history row: %w", err)
		}
		points = append(points, models.PricePoint{
			Price:         row.Price,
			OriginalPrice: row.OriginalPrice,
			ScrapedAt:     parseTime(row.ScrapedAt),
			IsOnSale:      row.IsOnSale != nil && *row.IsOnSale,
		})
	}
	return points, nil
}

// SynthesizeHistory builds a price series from a product that has no stored
// history: a two-point original->current drop when the product is on sale,
// otherwise a single point at the current price.
func SynthesizeHistory(p models.Product) []models.PricePoint {
	if p.OriginalPrice != nil && p.CurrentPrice != nil && *p.OriginalPrice > *p.CurrentPrice {
		return []models.PricePoint{
			{Price: p.OriginalPrice, OriginalPrice: p.OriginalPrice, ScrapedAt: p.FirstSeenAt, IsOnSale: false},
			{Price: p.CurrentPrice, OriginalPrice: p.OriginalPrice, ScrapedAt: p.LastSeenAt, IsOnSale: true},
		}
	}
	return []models.PricePoint{
		{Price: p.CurrentPrice, OriginalPrice: p.OriginalPrice, ScrapedAt: p.FirstSeenAt, IsOnSale: p.DiscountPercent > 0},
	}
}

// ComputeHistoryStats derives summary statistics from a price series.
// Returns nil when no point carries a price.
func ComputeHistoryStats(points []models.PricePoint) *models.HistoryStats {
	var prices []float64
	for _, p := range points {
		if p.Price != nil {
			prices = append(prices, *p.Price)
		}
	}
	if len(prices) == 0 {
		return nil
	}

	lowest, highest, sum := prices[0], prices[0], 0.0
	for _, v := range prices {
		if v < lowest {
			lowest = v
		}
		if v > highest {
			highest = v
		}
		sum += v
	}

	first, last := prices[0], prices[len(prices)-1]
	changePct := 0.0
	if first > 0 {
		changePct = (last - first) / first * 100
	}

	return &models.HistoryStats{
		LowestPrice:     round2(lowest),
		HighestPrice:    round2(highest),
		AvgPrice:        round2(sum / float64(len(prices))),
		TotalDataPoints: len(prices),
		PriceChangePct:  math.Round(changePct*10) / 10,
		FirstRecorded:   points[0].ScrapedAt,
		LastRecorded:    points[len(points)-1].ScrapedAt,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
