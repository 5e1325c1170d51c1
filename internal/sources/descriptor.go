package sources

import (
	"encoding/json"
	"strings"

	"dealview/internal/models"
	"dealview/internal/supabase"
)

// Adapter maps one raw row from a backing table into the canonical Product.
type Adapter func(raw json.RawMessage) (models.Product, error)

// Pushdown declares which logical filters a source's table can evaluate
// itself. Anything not marked here is applied in-process after the fetch.
type Pushdown struct {
	Search        bool
	PriceRange    bool
	DiscountRange bool
	DateRange     bool
	Stores        bool
	Brands        bool
	Categories    bool
	ActiveFlag    bool
}

// Columns maps logical fields onto a source's actual column names.
// An empty name means the table has no such column.
type Columns struct {
	Date          string // first-seen / created date, also the date-filter target
	LastSeen      string // last-seen / freshness column; falls back to Date
	Title         string
	Store         string
	Price         string
	OriginalPrice string
	Discount      string
	Active        string
	Brand         string
	Category      string
}

// Descriptor is the static, read-only description of one backing table:
// where it lives, how its columns map onto the canonical model, what it can
// filter itself, and how to normalize its rows. Built once at startup,
// never mutated.
type Descriptor struct {
	Key       string
	Table     string
	Label     string
	Region    string
	Columns   Columns
	Pushdown  Pushdown
	Aliases   []string // per-row source keys that live inside this table
	Base      func(supabase.Query) supabase.Query
	Normalize Adapter
}

// SortColumn maps a logical sort field onto this source's column,
// defaulting to the freshness column.
func (d *Descriptor) SortColumn(field string) string {
	switch field {
	case "first_seen_at":
		return d.Columns.Date
	case "current_price":
		if d.Columns.Price != "" {
			return d.Columns.Price
		}
	case "discount_percent":
		if d.Columns.Discount != "" {
			return d.Columns.Discount
		}
	}
	if d.Columns.LastSeen != "" {
		return d.Columns.LastSeen
	}
	return d.Columns.Date
}

// Matches reports whether this source should participate given a source
// allow-list. A table matches on its own key or on any per-row alias it
// hosts; precise alias filtering happens in-process after normalization.
func (d *Descriptor) Matches(allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == d.Key {
			return true
		}
		for _, alias := range d.Aliases {
			if a == alias {
				return true
			}
		}
	}
	return false
}

// Registry is the process-wide set of source descriptors.
type Registry []*Descriptor

// ByKey returns the descriptor with the given key.
func (r Registry) ByKey(key string) (*Descriptor, bool) {
	for _, d := range r {
		if d.Key == key {
			return d, true
		}
	}
	return nil, false
}

// Resolve splits a prefixed product ID ("<source>_<nativeID>") into its
// descriptor and native ID. Source keys may themselves contain underscores,
// so the longest matching key prefix wins.
func (r Registry) Resolve(id string) (*Descriptor, string, bool) {
	var match *Descriptor
	for _, d := range r {
		if strings.HasPrefix(id, d.Key+"_") {
			if match == nil || len(d.Key) > len(match.Key) {
				match = d
			}
		}
	}
	if match == nil {
		return nil, "", false
	}
	return match, id[len(match.Key)+1:], true
}
