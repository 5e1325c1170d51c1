package sources

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"dealview/internal/models"
)

// RetailerURLPatterns maps each recognized store inside retailer_products
// to the affiliate_url domain pattern that selects its rows at the store
// side. Patterns match the domain only, never product slugs.
var RetailerURLPatterns = []struct {
	Key     string
	Label   string
	Pattern string
}{
	{"amazon_ca", "Amazon", "*amazon.ca*"},
	{"leons", "Leon's", "*leons.ca*"},
	{"the_brick", "The Brick", "*thebrick.com*"},
	{"frank_and_oak", "Frank & Oak", "*frankandoak.com*"},
	{"reebok_ca", "Reebok", "*reebok.ca*"},
	{"mastermind_toys", "Mastermind Toys", "*mastermindtoys.com*"},
	{"cabelas_ca", "Cabela's", "*cabelas.ca*"},
}

// Hostname fragment -> (store display name, per-row source key) for rows in
// retailer_products, which mixes several scrapers in one table.
var hostSourceMap = []struct {
	fragment string
	store    string
	source   string
}{
	{"amazon", "Amazon", "amazon_ca"},
	{"leons", "Leon's", "leons"},
	{"thebrick", "The Brick", "the_brick"},
	{"frankandoak", "Frank & Oak", "frank_and_oak"},
	{"reebok", "Reebok", "reebok_ca"},
	{"mastermindtoys", "Mastermind Toys", "mastermind_toys"},
	{"cabelas", "Cabela's", "cabelas_ca"},
}

// retailerRow is the raw shape of retailer_products.
type retailerRow struct {
	ID              int64          `json:"id"`
	Title           *string        `json:"title"`
	Brand           *string        `json:"brand"`
	Images          []string       `json:"images"`
	ThumbnailURL    *string        `json:"thumbnail_url"`
	CurrentPrice    *float64       `json:"current_price"`
	OriginalPrice   *float64       `json:"original_price"`
	SalePercentage  *float64       `json:"sale_percentage"`
	DiscountPercent *float64       `json:"discount_percent"`
	Category        *string        `json:"retailer_category"`
	RetailerSKU     *string        `json:"retailer_sku"`
	AffiliateURL    *string        `json:"affiliate_url"`
	RetailerURL     *string        `json:"retailer_url"`
	IsActive        *bool          `json:"is_active"`
	FirstSeenAt     *string        `json:"first_seen_at"`
	LastSeenAt      *string        `json:"last_seen_at"`
	Description     *string        `json:"description"`
	ExtraData       map[string]any `json:"extra_data"`
}

// NormalizeRetailer maps a retailer_products row into a Product.
// Fallback chains: image = images[0], else thumbnail unless it is the
// generic "LogoMobile" placeholder; link = affiliate_url, else retailer_url;
// last seen = last_seen_at, else first_seen_at. Store and per-row source are
// derived from the SKU prefix or the outbound URL hostname.
func NormalizeRetailer(raw json.RawMessage) (models.Product, error) {
	var row retailerRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return models.Product{}, fmt.Errorf("retailer row: %w", err)
	}

	var image *string
	if len(row.Images) > 0 {
		image = &row.Images[0]
	} else if row.ThumbnailURL != nil && *row.ThumbnailURL != "" && !strings.Contains(*row.ThumbnailURL, "LogoMobile") {
		image = row.ThumbnailURL
	}

	link := strValue(row.AffiliateURL)
	if link == "" {
		link = strValue(row.RetailerURL)
	}
	if link == "" {
		link = "#"
	}

	store, source := deriveStoreSource(strValue(row.RetailerSKU), strValue(row.AffiliateURL))

	stored := row.SalePercentage
	if stored == nil {
		stored = row.DiscountPercent
	}

	firstSeen := parseTime(row.FirstSeenAt)
	lastSeen := parseTime(row.LastSeenAt)
	if lastSeen == nil {
		lastSeen = firstSeen
	}

	active := true
	if row.IsActive != nil {
		active = *row.IsActive
	}

	return models.Product{
		ID:    fmt.Sprintf("retailer_%d", row.ID),
		Title: CleanTitle(strValue(row.Title), retailerFallback(row)),
		Brand: row.Brand,
		Store: store,
		// The per-row source is more specific than the table key, so the
		// alias wins for display and residual source filtering.
		Source:          source,
		ImageURL:        image,
		CurrentPrice:    row.CurrentPrice,
		OriginalPrice:   row.OriginalPrice,
		DiscountPercent: DeriveDiscount(row.CurrentPrice, row.OriginalPrice, stored),
		Category:        row.Category,
		Region:          "CA",
		AffiliateURL:    link,
		IsActive:        active,
		FirstSeenAt:     firstSeen,
		LastSeenAt:      lastSeen,
		Description:     row.Description,
	}, nil
}

func retailerFallback(row retailerRow) TitleFallback {
	asin := ""
	if v, ok := row.ExtraData["asin"].(string); ok {
		asin = v
	}
	return TitleFallback{
		Brand: strValue(row.Brand),
		ASIN:  asin,
		URL:   strValue(row.AffiliateURL),
		ID:    fmt.Sprint(row.ID),
	}
}

// deriveStoreSource works out the store label and per-row source key from a
// "store_sku" prefix or, failing that, the outbound URL's hostname.
// Unrecognized hostnames are Flipp flyer data.
func deriveStoreSource(sku, affiliateURL string) (string, string) {
	if idx := strings.Index(sku, "_"); idx > 0 {
		store := sku[:idx]
		lower := strings.ToLower(store)
		switch {
		case strings.Contains(lower, "amazon"):
			return store, "amazon_ca"
		case strings.Contains(lower, "leons"):
			return store, "leons"
		}
		return store, "flipp"
	}

	if affiliateURL != "" {
		if u, err := url.Parse(affiliateURL); err == nil && u.Hostname() != "" {
			host := strings.TrimPrefix(u.Hostname(), "www.")
			for _, m := range hostSourceMap {
				if strings.Contains(host, m.fragment) {
					return m.store, m.source
				}
			}
			domain, _, _ := strings.Cut(host, ".")
			if domain != "" {
				return strings.ToUpper(domain[:1]) + domain[1:], "flipp"
			}
		}
	}

	return "Unknown", "flipp"
}

// keepaRow is the raw shape of keepa_deals: Amazon.ca products tracked via
// the Keepa API, with richer metadata than the scraped tables.
type keepaRow struct {
	ID              int64    `json:"id"`
	ASIN            *string  `json:"asin"`
	Title           *string  `json:"title"`
	Brand           *string  `json:"brand"`
	MainImageURL    *string  `json:"main_image_url"`
	ExtraImages     *string  `json:"extra_images"` // JSON-encoded string array
	CurrentPrice    *float64 `json:"current_price"`
	OriginalPrice   *float64 `json:"original_price"`
	DiscountPercent *float64 `json:"discount_percent"`
	Category        *string  `json:"category"`
	AffiliateURL    *string  `json:"affiliate_url"`
	Status          *string  `json:"status"`
	DiscoveredAt    *string  `json:"discovered_at"`
	CreatedAt       *string  `json:"created_at"`
	PriceCheckedAt  *string  `json:"price_checked_at"`
	UpdatedAt       *string  `json:"updated_at"`
	Rating          *float64 `json:"rating"`
	ReviewCount     *int64   `json:"review_count"`
	MonthlySold     *int64   `json:"monthly_sold"`
	DealScore       *float64 `json:"deal_score"`
	IsLowest        *bool    `json:"is_lowest"`
	HasCoupon       *bool    `json:"has_coupon"`
}

// NormalizeKeepa maps a keepa_deals row into a Product. Image falls back
// from main_image_url to the first extra image; first seen = discovered_at
// else created_at; last seen = price_checked_at else updated_at. Keepa
// metadata rides along in Extra.
func NormalizeKeepa(raw json.RawMessage) (models.Product, error) {
	var row keepaRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return models.Product{}, fmt.Errorf("keepa row: %w", err)
	}

	image := row.MainImageURL
	if image == nil && row.ExtraImages != nil {
		var extras []string
		if err := json.Unmarshal([]byte(*row.ExtraImages), &extras); err == nil && len(extras) > 0 {
			image = &extras[0]
		}
	}

	title := strValue(row.Title)
	if title == "" {
		asin := strValue(row.ASIN)
		if asin == "" {
			asin = "?"
		}
		title = fmt.Sprintf("Amazon Deal (%s)", asin)
	}

	link := strValue(row.AffiliateURL)
	if link == "" {
		link = "#"
	}

	firstSeen := parseTime(row.DiscoveredAt)
	if firstSeen == nil {
		firstSeen = parseTime(row.CreatedAt)
	}
	lastSeen := parseTime(row.PriceCheckedAt)
	if lastSeen == nil {
		lastSeen = parseTime(row.UpdatedAt)
	}

	status := strValue(row.Status)

	extra := map[string]any{}
	if row.ASIN != nil {
		extra["asin"] = *row.ASIN
	}
	if row.Rating != nil {
		extra["rating"] = *row.Rating
	}
	if row.ReviewCount != nil {
		extra["review_count"] = *row.ReviewCount
	}
	if row.MonthlySold != nil {
		extra["monthly_sold"] = *row.MonthlySold
	}
	if row.DealScore != nil {
		extra["deal_score"] = *row.DealScore
	}
	if row.IsLowest != nil {
		extra["is_lowest"] = *row.IsLowest
	}
	if row.HasCoupon != nil {
		extra["has_coupon"] = *row.HasCoupon
	}
	if len(extra) == 0 {
		extra = nil
	}

	return models.Product{
		ID:              fmt.Sprintf("keepa_%d", row.ID),
		Title:           title,
		Brand:           row.Brand,
		Store:           "Amazon",
		Source:          "keepa",
		ImageURL:        image,
		CurrentPrice:    row.CurrentPrice,
		OriginalPrice:   row.OriginalPrice,
		DiscountPercent: DeriveDiscount(row.CurrentPrice, row.OriginalPrice, row.DiscountPercent),
		Category:        row.Category,
		Region:          "CA",
		AffiliateURL:    link,
		IsActive:        status != "expired" && status != "rejected",
		FirstSeenAt:     firstSeen,
		LastSeenAt:      lastSeen,
		Extra:           extra,
	}, nil
}

// scrapedDealRow covers the per-store scraper tables, which share one rough
// shape but disagree on column names (created_at vs created_date vs
// date_added, store vs store_name, price vs sale_price).
type scrapedDealRow struct {
	ID              int64    `json:"id"`
	Title           *string  `json:"title"`
	Brand           *string  `json:"brand"`
	Store           *string  `json:"store"`
	StoreName       *string  `json:"store_name"`
	Source          *string  `json:"source"`
	ImageURL        *string  `json:"image_url"`
	Price           *float64 `json:"price"`
	SalePrice       *float64 `json:"sale_price"`
	OriginalPrice   *float64 `json:"original_price"`
	RegularPrice    *float64 `json:"regular_price"`
	DiscountPercent *float64 `json:"discount_percent"`
	SavingsPercent  *float64 `json:"savings_percent"`
	Category        *string  `json:"category"`
	Region          *string  `json:"region"`
	URL             *string  `json:"url"`
	DealURL         *string  `json:"deal_url"`
	CreatedAt       *string  `json:"created_at"`
	CreatedDate     *string  `json:"created_date"`
	DateAdded       *string  `json:"date_added"`
	LastSeenAt      *string  `json:"last_seen_at"`
	UpdatedAt       *string  `json:"updated_at"`
	IsExpired       *bool    `json:"is_expired"`
}

// NewScrapedAdapter builds the adapter for one scraper table. Fallback
// chains: store = store, else store_name, else the descriptor label; source
// = the row's own source column (the shared "deals" table), else the
// descriptor key; price = price else sale_price; original = original_price
// else regular_price; discount = discount_percent else savings_percent;
// first seen = created_at, else created_date, else date_added.
func NewScrapedAdapter(d *Descriptor) Adapter {
	return func(raw json.RawMessage) (models.Product, error) {
		var row scrapedDealRow
		if err := json.Unmarshal(raw, &row); err != nil {
			return models.Product{}, fmt.Errorf("%s row: %w", d.Table, err)
		}

		store := strValue(row.Store)
		if store == "" {
			store = strValue(row.StoreName)
		}
		if store == "" {
			store = d.Label
		}

		source := strValue(row.Source)
		if source == "" {
			source = d.Key
		}

		price := row.Price
		if price == nil {
			price = row.SalePrice
		}
		original := row.OriginalPrice
		if original == nil {
			original = row.RegularPrice
		}
		stored := row.DiscountPercent
		if stored == nil {
			stored = row.SavingsPercent
		}

		link := strValue(row.DealURL)
		if link == "" {
			link = strValue(row.URL)
		}
		if link == "" {
			link = "#"
		}

		firstSeen := parseTime(row.CreatedAt)
		if firstSeen == nil {
			firstSeen = parseTime(row.CreatedDate)
		}
		if firstSeen == nil {
			firstSeen = parseTime(row.DateAdded)
		}
		lastSeen := parseTime(row.LastSeenAt)
		if lastSeen == nil {
			lastSeen = parseTime(row.UpdatedAt)
		}
		if lastSeen == nil {
			lastSeen = firstSeen
		}

		region := d.Region
		if row.Region != nil && *row.Region != "" {
			region = *row.Region
		}

		return models.Product{
			ID:              fmt.Sprintf("%s_%d", d.Key, row.ID),
			Title:           CleanTitle(strValue(row.Title), TitleFallback{Brand: strValue(row.Brand), URL: link, ID: fmt.Sprint(row.ID)}),
			Brand:           row.Brand,
			Store:           store,
			Source:          source,
			ImageURL:        row.ImageURL,
			CurrentPrice:    price,
			OriginalPrice:   original,
			DiscountPercent: DeriveDiscount(price, original, stored),
			Category:        row.Category,
			Region:          region,
			AffiliateURL:    link,
			IsActive:        row.IsExpired == nil || !*row.IsExpired,
			FirstSeenAt:     firstSeen,
			LastSeenAt:      lastSeen,
		}, nil
	}
}

// timeLayouts covers the timestamp shapes PostgREST emits, including
// timezone-less "timestamp without time zone" columns and bare dates.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a PostgREST timestamp string, returning nil when it
// is empty or in none of the known layouts.
func ParseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func parseTime(s *string) *time.Time {
	if s == nil {
		return nil
	}
	return ParseTimestamp(*s)
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
