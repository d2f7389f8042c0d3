package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemStore keeps a collection in process memory, in insertion order. Every
// record carries a precomputed folded search key.
type MemStore[T any] struct {
	schema Schema[T]
	ids    IDFunc

	mu    sync.RWMutex
	items []T
	keys  []string
	index map[string]int
	seq   int64
}

// NewMemStore loads seed into a new store. Seed records must carry unique,
// non-empty ids and pass validation.
func NewMemStore[T any](schema Schema[T], seed []T, opts ...StoreOption) (*MemStore[T], error) {
	o := buildStoreOptions(opts)
	s := &MemStore[T]{
		schema: schema,
		ids:    o.ids,
		items:  make([]T, 0, len(seed)),
		keys:   make([]string, 0, len(seed)),
		index:  make(map[string]int, len(seed)),
		seq:    seedSequence(schema, seed),
	}

	for i, v := range seed {
		if err := schema.validate(v); err != nil {
			return nil, fmt.Errorf("seed %s #%d: %w", schema.Kind, i, err)
		}
		id := schema.ID(v)
		if _, dup := s.index[id]; dup {
			return nil, fmt.Errorf("seed %s #%d: duplicate id %q: %w", schema.Kind, i, id, ErrConflict)
		}
		s.append(schema.clone(v))
	}
	return s, nil
}

func (s *MemStore[T]) Ping(ctx context.Context) error { return nil }

func (s *MemStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *MemStore[T]) All(ctx context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schema.cloneAll(s.items), nil
}

func (s *MemStore[T]) Get(ctx context.Context, id string) (T, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		var zero T
		return zero, false, nil
	}
	return s.schema.clone(s.items[i]), true, nil
}

func (s *MemStore[T]) Search(ctx context.Context, q string) ([]T, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.All(ctx)
	}
	needle := Fold(q)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0)
	for i, key := range s.keys {
		if strings.Contains(key, needle) {
			out = append(out, s.schema.clone(s.items[i]))
		}
	}
	return out, nil
}

func (s *MemStore[T]) Add(ctx context.Context, v T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	v = s.schema.SetID(s.schema.clone(v), s.ids(s.seq+1))
	if err := s.schema.validate(v); err != nil {
		return zero, err
	}
	id := s.schema.ID(v)
	if _, dup := s.index[id]; dup {
		return zero, fmt.Errorf("%s %q: %w", s.schema.Kind, id, ErrConflict)
	}

	s.seq++
	s.append(v)
	return s.schema.clone(v), nil
}

func (s *MemStore[T]) Update(ctx context.Context, id string, fn func(T) (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	i, ok := s.index[id]
	if !ok {
		return zero, notFound(s.schema.Kind, id)
	}

	next, err := fn(s.schema.clone(s.items[i]))
	if err != nil {
		return zero, err
	}
	if got := s.schema.ID(next); got != id {
		return zero, &ValidationError{Kind: s.schema.Kind, Field: "id", Reason: "is immutable"}
	}
	if err := s.schema.validate(next); err != nil {
		return zero, err
	}

	next = s.schema.clone(next)
	s.items[i] = next
	s.keys[i] = s.schema.searchKey(next)
	return s.schema.clone(next), nil
}

func (s *MemStore[T]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return notFound(s.schema.Kind, id)
	}

	s.items = append(s.items[:i], s.items[i+1:]...)
	s.keys = append(s.keys[:i], s.keys[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.items); j++ {
		s.index[s.schema.ID(s.items[j])] = j
	}
	return nil
}

// append must be called with mu held (or before the store is shared).
func (s *MemStore[T]) append(v T) {
	s.index[s.schema.ID(v)] = len(s.items)
	s.items = append(s.items, v)
	s.keys = append(s.keys, s.schema.searchKey(v))
}
