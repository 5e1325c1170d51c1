package sources

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// The Amazon scraper frequently captures deal badge text instead of the real
// product name: "75% offLimited-time deal", "Lightning Deal", "Ends in01:37:10".
// These patterns classify and strip that noise.
var (
	badgePrefix = regexp.MustCompile(`(?i)^\d+%\s*off`)
	badgeSuffix = regexp.MustCompile(`(?i)(Limited[- ]time deal|Lightning Deal|Best Seller|Prime Early Access|Deal of the Day|Climate Pledge Friendly|Amazon'?s?\s*Choice|Sponsored|Top Deal|Overall Pick|Ends in\d+:\d+:\d+)$`)
	junkTitle   = regexp.MustCompile(`(?i)^(\d+%\s*off)?\s*(Limited[- ]time deal|Lightning Deal|Deal of the Day|Top Deal|Best Seller|Sponsored|Overall Pick|Ends in\d+:\d+:\d+)\s*$`)
	timerToken  = regexp.MustCompile(`Ends in\d+:\d+:\d+`)
	asinInURL   = regexp.MustCompile(`/dp/([A-Z0-9]{10})`)
)

// TitleFallback carries the row fields used to build a display title when
// the scraped title is missing or pure badge text.
type TitleFallback struct {
	Brand string
	ASIN  string
	URL   string
	ID    string
}

// CleanTitle strips deal badge noise from a scraped title. If nothing real
// remains it falls back to "<brand> (<ASIN>)", the brand alone, or
// "Deal #<id>", in that order.
func CleanTitle(raw string, fb TitleFallback) string {
	title := strings.TrimSpace(raw)

	if title == "" || junkTitle.MatchString(title) {
		return fb.title()
	}

	cleaned := strings.TrimSpace(badgePrefix.ReplaceAllString(title, ""))
	cleaned = strings.TrimSpace(timerToken.ReplaceAllString(cleaned, ""))
	cleaned = strings.TrimSpace(badgeSuffix.ReplaceAllString(cleaned, ""))

	if len(cleaned) < 3 {
		return fb.title()
	}
	return cleaned
}

func (fb TitleFallback) title() string {
	asin := fb.ASIN
	if asin == "" {
		if m := asinInURL.FindStringSubmatch(fb.URL); m != nil {
			asin = m[1]
		}
	}

	brand := strings.TrimSpace(fb.Brand)
	if asin != "" {
		prefix := brand
		if prefix == "" {
			prefix = "Amazon Deal"
		}
		return fmt.Sprintf("%s (%s)", prefix, asin)
	}
	if brand != "" {
		return brand
	}
	return fmt.Sprintf("Deal #%s", fb.ID)
}

// DeriveDiscount picks the discount percent for a row. A stored positive
// value always wins; otherwise the discount is computed from the price pair
// when both are present and current < original. A stored non-positive value
// is preserved as-is so upstream data is never silently rewritten.
func DeriveDiscount(current, original, stored *float64) float64 {
	if stored != nil && *stored > 0 {
		return *stored
	}
	if current != nil && original != nil && *original > 0 && *current > 0 && *current < *original {
		return math.Round(((*original-*current)/(*original))*100*10) / 10
	}
	if stored != nil {
		return *stored
	}
	return 0
}
