package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// predicate is one column filter in PostgREST's column=op.value syntax.
type predicate struct {
	column string
	op     string
	value  string
}

// Query is an immutable builder for a single table read. Every chain step
// returns a copy, so a partially built query can be shared and extended in
// two directions without the branches seeing each other's predicates.
// The builder does no schema validation; callers attach only predicates the
// target table supports.
type Query struct {
	client  *Client
	table   string
	selects string
	preds   []predicate
	order   string
	offset  int
	limit   int
	ranged  bool
	count   bool
}

// NewQuery starts a query against the given table, selecting all columns.
func NewQuery(client *Client, table string) Query {
	return Query{client: client, table: table, selects: "*", limit: -1}
}

func (q Query) clone() Query {
	preds := make([]predicate, len(q.preds), len(q.preds)+1)
	copy(preds, q.preds)
	q.preds = preds
	return q
}

func (q Query) with(column, op, value string) Query {
	c := q.clone()
	c.preds = append(c.preds, predicate{column: column, op: op, value: value})
	return c
}

// Select limits the returned columns (default "*").
func (q Query) Select(columns string) Query {
	c := q.clone()
	c.selects = columns
	return c
}

func (q Query) Eq(col string, v any) Query  { return q.with(col, "eq", fmt.Sprint(v)) }
func (q Query) Neq(col string, v any) Query { return q.with(col, "neq", fmt.Sprint(v)) }
func (q Query) Gt(col string, v any) Query  { return q.with(col, "gt", fmt.Sprint(v)) }
func (q Query) Gte(col string, v any) Query { return q.with(col, "gte", fmt.Sprint(v)) }
func (q Query) Lt(col string, v any) Query  { return q.with(col, "lt", fmt.Sprint(v)) }
func (q Query) Lte(col string, v any) Query { return q.with(col, "lte", fmt.Sprint(v)) }

// Ilike adds a case-insensitive pattern match ("*" wildcards).
func (q Query) Ilike(col, pattern string) Query { return q.with(col, "ilike", pattern) }

// In adds a set-membership filter: col=in.(v1,v2,...). Values carrying
// list delimiters are double-quoted so they cannot break the expression.
func (q Query) In(col string, values []string) Query {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quoteListValue(v)
	}
	return q.with(col, "in", "("+strings.Join(quoted, ",")+")")
}

// quoteListValue double-quotes an in.(...) value containing a delimiter,
// escaping embedded backslashes and quotes.
func quoteListValue(v string) string {
	if !strings.ContainsAny(v, `,()"\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}

// Is adds a null/bool identity filter (value "null", "true", "false").
func (q Query) Is(col, value string) Query { return q.with(col, "is", value) }

// Contains filters a JSONB column on containment of the given object.
func (q Query) Contains(col string, obj any) Query {
	b, _ := json.Marshal(obj)
	return q.with(col, "cs", string(b))
}

// NotContains is the negated JSONB containment filter.
func (q Query) NotContains(col string, obj any) Query {
	b, _ := json.Marshal(obj)
	return q.with(col, "not.cs", string(b))
}

// Order sets the single ordering clause. Nulls sort last regardless of
// direction, so rows missing the sort column never lead a page.
func (q Query) Order(col string, desc bool) Query {
	c := q.clone()
	dir := "asc"
	if desc {
		dir = "desc"
	}
	c.order = fmt.Sprintf("%s.%s.nullslast", col, dir)
	return c
}

// Range requests the half-open row window [offset, offset+limit).
func (q Query) Range(offset, limit int) Query {
	c := q.clone()
	c.offset = offset
	c.limit = limit
	c.ranged = true
	return c
}

// Count opts into an exact total row count via the Prefer header.
func (q Query) Count() Query {
	c := q.clone()
	c.count = true
	return c
}

// Params renders the accumulated predicates and ordering as PostgREST query
// parameters. Pure; calling it twice yields identical values.
func (q Query) Params() url.Values {
	params := url.Values{}
	params.Set("select", q.selects)
	for _, p := range q.preds {
		params.Add(p.column, p.op+"."+p.value)
	}
	if q.order != "" {
		params.Set("order", q.order)
	}
	return params
}

// Headers renders the pagination window and count preference.
func (q Query) Headers() map[string]string {
	headers := map[string]string{}
	if q.ranged && q.limit > 0 {
		headers["Range"] = fmt.Sprintf("%d-%d", q.offset, q.offset+q.limit-1)
		headers["Range-Unit"] = "items"
	}
	if q.count {
		headers["Prefer"] = "count=exact"
	}
	return headers
}

// Execute issues the query. It is side-effect-free on the builder; running
// the same query twice re-issues the same request.
func (q Query) Execute(ctx context.Context) ([]json.RawMessage, *int64, error) {
	return q.client.Execute(ctx, q.table, q.Params(), q.Headers())
}
