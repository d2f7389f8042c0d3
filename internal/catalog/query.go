package catalog

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Query combines the engine's operations: text search, field filters
// (AND-combined), optional sort, then a page window.
type Query struct {
	Text    string
	Filters map[string]string
	Sort    string
	Offset  int
	Limit   int
}

type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Fold is the case folding used by Search, FilterByField and SortBy.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Search returns the records whose search fields contain q, compared
// case-insensitively. A blank q returns items unchanged.
func Search[T any](items []T, schema Schema[T], q string) []T {
	q = strings.TrimSpace(q)
	if q == "" {
		return items
	}
	needle := Fold(q)
	return Filter(items, func(v T) bool {
		return strings.Contains(schema.searchKey(v), needle)
	})
}

// FilterByField keeps records whose field equals value, ignoring case.
func FilterByField[T any](items []T, schema Schema[T], field, value string) ([]T, error) {
	get, err := schema.field(field)
	if err != nil {
		return nil, err
	}
	want := Fold(strings.TrimSpace(value))
	return Filter(items, func(v T) bool { return Fold(get(v)) == want }), nil
}

// Filter keeps records matching pred, in source order.
func Filter[T any](items []T, pred func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, v := range items {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out
}

// SortBy sorts a copy of items by field; a leading "-" sorts descending.
// Equal keys keep their source order.
func SortBy[T any](items []T, schema Schema[T], field string) ([]T, error) {
	desc := strings.HasPrefix(field, "-")
	field = strings.TrimPrefix(field, "-")

	compare, ok := schema.Compare[field]
	if !ok {
		get, err := schema.field(field)
		if err != nil {
			return nil, err
		}
		compare = func(a, b T) int { return cmp.Compare(Fold(get(a)), Fold(get(b))) }
	}

	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		if desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return out, nil
}

// Paginate returns the window [offset, offset+limit). A zero limit means no
// limit.
func Paginate[T any](items []T, offset, limit int) ([]T, error) {
	if offset < 0 {
		return nil, Invalid("offset", "must not be negative")
	}
	if limit < 0 {
		return nil, Invalid("limit", "must not be negative")
	}
	if offset >= len(items) {
		return []T{}, nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end], nil
}

// Apply runs q over items.
func Apply[T any](items []T, schema Schema[T], q Query) (Page[T], error) {
	out := Search(items, schema, q.Text)

	// map order is random; filter in key order so errors are deterministic
	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		var err error
		if out, err = FilterByField(out, schema, k, q.Filters[k]); err != nil {
			return Page[T]{}, err
		}
	}

	if q.Sort != "" {
		var err error
		if out, err = SortBy(out, schema, q.Sort); err != nil {
			return Page[T]{}, err
		}
	}

	window, err := Paginate(out, q.Offset, q.Limit)
	if err != nil {
		return Page[T]{}, err
	}
	return Page[T]{Items: window, Total: len(out), Offset: q.Offset, Limit: q.Limit}, nil
}
