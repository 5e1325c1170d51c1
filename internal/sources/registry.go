package sources

import "dealview/internal/supabase"

// DefaultRegistry describes every backing table the planner federates over.
// Each scraper pipeline writes to its own independently-shaped table; the
// descriptors here are the only place those shapes are spelled out.
func DefaultRegistry() Registry {
	retailer := &Descriptor{
		Key:    "retailer",
		Table:  "retailer_products",
		Label:  "Retailer",
		Region: "CA",
		Columns: Columns{
			Date:          "first_seen_at",
			LastSeen:      "last_seen_at",
			Title:         "title",
			Price:         "current_price",
			OriginalPrice: "original_price",
			Discount:      "sale_percentage",
			Active:        "is_active",
			Brand:         "brand",
			Category:      "retailer_category",
		},
		Pushdown: Pushdown{
			Search:        true,
			PriceRange:    true,
			DiscountRange: true,
			DateRange:     true,
			Brands:        true,
			Categories:    true,
			ActiveFlag:    true,
		},
		Aliases: []string{
			"amazon_ca", "leons", "the_brick", "frank_and_oak",
			"reebok_ca", "mastermind_toys", "cabelas_ca", "flipp",
		},
		// CocoPriceTracker rows share this table but belong to a different
		// product entirely.
		Base: func(q supabase.Query) supabase.Query {
			return q.NotContains("extra_data", map[string]string{"source": "cocopricetracker.ca"})
		},
		Normalize: NormalizeRetailer,
	}

	keepa := &Descriptor{
		Key:    "keepa",
		Table:  "keepa_deals",
		Label:  "Keepa (Amazon.ca)",
		Region: "CA",
		Columns: Columns{
			Date:          "discovered_at",
			LastSeen:      "price_checked_at",
			Title:         "title",
			Price:         "current_price",
			OriginalPrice: "original_price",
			Discount:      "discount_percent",
			Brand:         "brand",
			Category:      "category",
		},
		Pushdown: Pushdown{
			Search:        true,
			PriceRange:    true,
			DiscountRange: true,
			DateRange:     true,
			Brands:        true,
			Categories:    true,
		},
		Base: func(q supabase.Query) supabase.Query {
			return q.Neq("status", "expired").Neq("status", "rejected")
		},
		Normalize: NormalizeKeepa,
	}

	registry := Registry{retailer, keepa,
		// The shared "deals" table carries RedFlagDeals rows with a source
		// column of its own and an older date_added column.
		scraped("rfd", "deals", "RedFlagDeals", "CA", Columns{
			Date:          "date_added",
			Title:         "title",
			Store:         "store",
			Price:         "price",
			OriginalPrice: "original_price",
			Discount:      "discount_percent",
		}),
	}

	for _, s := range []struct{ key, table, label string }{
		{"amazon_ca", "amazon_ca_deals", "Amazon CA"},
		{"cabelas_ca", "cabelas_ca_deals", "Cabela's"},
		{"frank_and_oak", "frank_and_oak_deals", "Frank And Oak"},
		{"leons", "leons_deals", "Leon's"},
		{"mastermind_toys", "mastermind_toys_deals", "Mastermind Toys"},
		{"reebok_ca", "reebok_ca_deals", "Reebok CA"},
		{"the_brick", "the_brick_deals", "The Brick"},
		{"cocowest", "cocowest_deals", "CocoWest (Canada)"},
	} {
		registry = append(registry, scraped(s.key, s.table, s.label, "CA", Columns{
			Date:          "created_at",
			Title:         "title",
			Store:         "store",
			Price:         "price",
			OriginalPrice: "original_price",
			Discount:      "discount_percent",
		}))
	}

	registry = append(registry,
		scraped("yepsavings", "yepsavings_deals", "YepSavings", "CA", Columns{
			Date:          "created_date",
			Title:         "title",
			Store:         "store_name",
			Price:         "sale_price",
			OriginalPrice: "regular_price",
			Discount:      "savings_percent",
		}),
		scraped("warehouse_runner", "warehouse_runner_deals", "WarehouseRunner (USA)", "US", Columns{
			Date:          "created_at",
			Title:         "title",
			Store:         "store",
			Price:         "price",
			OriginalPrice: "original_price",
			Discount:      "discount_percent",
		}),
	)

	return registry
}

// scraped builds a descriptor for one per-store scraper table. They all get
// the same push-down surface; only the column names differ.
func scraped(key, table, label, region string, cols Columns) *Descriptor {
	d := &Descriptor{
		Key:     key,
		Table:   table,
		Label:   label,
		Region:  region,
		Columns: cols,
		Pushdown: Pushdown{
			Search:        true,
			PriceRange:    true,
			DiscountRange: true,
			DateRange:     true,
			Stores:        cols.Store != "",
		},
	}
	d.Normalize = NewScrapedAdapter(d)
	return d
}
