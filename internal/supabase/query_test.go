package supabase

import (
	"testing"
)

func TestQueryParams(t *testing.T) {
	tests := []struct {
		name  string
		build func(Query) Query
		key   string
		want  string
	}{
		{"eq", func(q Query) Query { return q.Eq("status", "active") }, "status", "eq.active"},
		{"neq", func(q Query) Query { return q.Neq("status", "expired") }, "status", "neq.expired"},
		{"gt", func(q Query) Query { return q.Gt("discount_percent", 0) }, "discount_percent", "gt.0"},
		{"gte float", func(q Query) Query { return q.Gte("price", 10.5) }, "price", "gte.10.5"},
		{"lte", func(q Query) Query { return q.Lte("price", 200) }, "price", "lte.200"},
		{"ilike", func(q Query) Query { return q.Ilike("title", "*lego*") }, "title", "ilike.*lego*"},
		{"in", func(q Query) Query { return q.In("store", []string{"Amazon", "Leon's"}) }, "store", "in.(Amazon,Leon's)"},
		{"in with comma value", func(q Query) Query { return q.In("store", []string{"Smith, Jones", "Other"}) }, "store", `in.("Smith, Jones",Other)`},
		{"in with paren value", func(q Query) Query { return q.In("store", []string{"Toys (Canada)"}) }, "store", `in.("Toys (Canada)")`},
		{"in with quote value", func(q Query) Query { return q.In("store", []string{`The "Best" Store`}) }, "store", `in.("The \"Best\" Store")`},
		{"is null", func(q Query) Query { return q.Is("brand", "null") }, "brand", "is.null"},
		{"contains", func(q Query) Query { return q.Contains("extra_data", map[string]string{"source": "x"}) }, "extra_data", `cs.{"source":"x"}`},
		{"not contains", func(q Query) Query { return q.NotContains("extra_data", map[string]string{"source": "x"}) }, "extra_data", `not.cs.{"source":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.build(NewQuery(nil, "deals"))
			got := q.Params().Get(tt.key)
			if got != tt.want {
				t.Errorf("param %s = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestQueryOrder(t *testing.T) {
	q := NewQuery(nil, "deals").Order("created_at", true)
	if got := q.Params().Get("order"); got != "created_at.desc.nullslast" {
		t.Errorf("order = %q, want created_at.desc.nullslast", got)
	}

	q = NewQuery(nil, "deals").Order("price", false)
	if got := q.Params().Get("order"); got != "price.asc.nullslast" {
		t.Errorf("order = %q, want price.asc.nullslast", got)
	}
}

func TestQueryHeaders(t *testing.T) {
	q := NewQuery(nil, "deals").Range(48, 24).Count()
	headers := q.Headers()

	if headers["Range"] != "48-71" {
		t.Errorf("Range = %q, want 48-71", headers["Range"])
	}
	if headers["Range-Unit"] != "items" {
		t.Errorf("Range-Unit = %q, want items", headers["Range-Unit"])
	}
	if headers["Prefer"] != "count=exact" {
		t.Errorf("Prefer = %q, want count=exact", headers["Prefer"])
	}

	bare := NewQuery(nil, "deals").Headers()
	if len(bare) != 0 {
		t.Errorf("unranged query headers = %v, want empty", bare)
	}
}

func TestQueryImmutable(t *testing.T) {
	base := NewQuery(nil, "deals").Eq("is_active", "true")

	cheap := base.Lte("price", 20)
	expensive := base.Gte("price", 100)

	if got := base.Params()["price"]; got != nil {
		t.Errorf("base gained price predicate %v after branching", got)
	}
	if got := cheap.Params().Get("price"); got != "lte.20" {
		t.Errorf("cheap branch price = %q, want lte.20", got)
	}
	if got := expensive.Params().Get("price"); got != "gte.100" {
		t.Errorf("expensive branch price = %q, want gte.100", got)
	}
	if got := cheap.Params().Get("is_active"); got != "eq.true" {
		t.Errorf("branch lost shared predicate, is_active = %q", got)
	}
}

func TestQueryParamsPure(t *testing.T) {
	q := NewQuery(nil, "deals").Eq("a", "1").Order("a", false).Range(0, 10)

	first := q.Params().Encode()
	second := q.Params().Encode()
	if first != second {
		t.Errorf("Params not pure: %q vs %q", first, second)
	}
}
