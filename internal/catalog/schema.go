package catalog

import (
	"errors"
	"strings"
)

// Schema tells the engine how to handle one entity type.
type Schema[T any] struct {
	// Kind names the collection ("city", "notification"); used in errors,
	// metrics and the SQL collection column.
	Kind string

	ID    func(T) string
	SetID func(T, string) T

	// Clone deep-copies a record. Nil means a plain value copy is enough.
	Clone func(T) T

	// Validate is run on every Add and Update result.
	Validate func(T) error

	// Fields exposes named string views used by FilterByField and SortBy.
	Fields map[string]func(T) string

	// Search names the Fields matched by free-text search.
	Search []string

	// Compare optionally overrides string ordering for a sortable field.
	Compare map[string]func(a, b T) int
}

func (s Schema[T]) clone(v T) T {
	if s.Clone == nil {
		return v
	}
	return s.Clone(v)
}

func (s Schema[T]) cloneAll(in []T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = s.clone(v)
	}
	return out
}

func (s Schema[T]) validate(v T) error {
	if strings.TrimSpace(s.ID(v)) == "" {
		return &ValidationError{Kind: s.Kind, Field: "id", Reason: "is required"}
	}
	if s.Validate == nil {
		return nil
	}
	if err := s.Validate(v); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) && ve.Kind == "" {
			ve.Kind = s.Kind
		}
		return err
	}
	return nil
}

func (s Schema[T]) field(name string) (func(T) string, error) {
	get, ok := s.Fields[name]
	if !ok {
		return nil, &ValidationError{Kind: s.Kind, Field: name, Reason: "is not a filterable field"}
	}
	return get, nil
}

// searchKey is the folded text matched by Search.
func (s Schema[T]) searchKey(v T) string {
	var b strings.Builder
	for i, name := range s.Search {
		get, ok := s.Fields[name]
		if !ok {
			continue
		}
		if i > 0 {
			// separator keeps a query from matching across two fields
			b.WriteByte(0)
		}
		b.WriteString(Fold(get(v)))
	}
	return b.String()
}

// Require fails when value is blank.
func Require(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return Invalid(field, "is required")
	}
	return nil
}

// OneOf fails when value is not one of allowed.
func OneOf[S ~string](field string, value S, allowed ...S) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	parts := make([]string, len(allowed))
	for i, a := range allowed {
		parts[i] = string(a)
	}
	return Invalid(field, "must be one of "+strings.Join(parts, ", "))
}
