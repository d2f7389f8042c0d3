package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"SportHub/internal/async"
)

// Service is the asynchronous facade over one collection. Every call
// returns a future that resolves after the configured latency; the store is
// only touched once the delay has elapsed.
type Service[T any] struct {
	repo    Repository[T]
	schema  Schema[T]
	latency async.Latency
	log     *zap.Logger
	metrics *Metrics
}

type serviceOptions struct {
	latency async.Latency
	log     *zap.Logger
	metrics *Metrics
}

type Option func(*serviceOptions)

func WithLatency(l async.Latency) Option {
	return func(o *serviceOptions) { o.latency = l }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *serviceOptions) { o.log = l }
}

func WithMetrics(m *Metrics) Option {
	return func(o *serviceOptions) { o.metrics = m }
}

func NewService[T any](repo Repository[T], schema Schema[T], opts ...Option) *Service[T] {
	o := serviceOptions{latency: async.None, log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.latency == nil {
		o.latency = async.None
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}

	return &Service[T]{
		repo:    repo,
		schema:  schema,
		latency: o.latency,
		log:     o.log.With(zap.String("collection", schema.Kind)),
		metrics: o.metrics,
	}
}

func (s *Service[T]) Schema() Schema[T] { return s.schema }

func (s *Service[T]) Kind() string { return s.schema.Kind }

// Ping checks the backing store without simulated latency.
func (s *Service[T]) Ping(ctx context.Context) error { return s.repo.Ping(ctx) }

func (s *Service[T]) All(ctx context.Context) *async.Future[[]T] {
	return run(s, ctx, "all", "", func(ctx context.Context) ([]T, error) {
		return s.repo.All(ctx)
	})
}

// Get resolves with ErrNotFound when id is absent.
func (s *Service[T]) Get(ctx context.Context, id string) *async.Future[T] {
	return run(s, ctx, "get", id, func(ctx context.Context) (T, error) {
		v, ok, err := s.repo.Get(ctx, id)
		if err != nil {
			return v, err
		}
		if !ok {
			return v, notFound(s.schema.Kind, id)
		}
		return v, nil
	})
}

func (s *Service[T]) Search(ctx context.Context, q string) *async.Future[[]T] {
	return run(s, ctx, "search", "", func(ctx context.Context) ([]T, error) {
		return s.search(ctx, q)
	})
}

func (s *Service[T]) FilterBy(ctx context.Context, field, value string) *async.Future[[]T] {
	return run(s, ctx, "filter", "", func(ctx context.Context) ([]T, error) {
		items, err := s.repo.All(ctx)
		if err != nil {
			return nil, err
		}
		return FilterByField(items, s.schema, field, value)
	})
}

// Where resolves with the records matching pred, in collection order.
func (s *Service[T]) Where(ctx context.Context, pred func(T) bool) *async.Future[[]T] {
	return run(s, ctx, "where", "", func(ctx context.Context) ([]T, error) {
		items, err := s.repo.All(ctx)
		if err != nil {
			return nil, err
		}
		return Filter(items, pred), nil
	})
}

func (s *Service[T]) Query(ctx context.Context, q Query) *async.Future[Page[T]] {
	return run(s, ctx, "query", "", func(ctx context.Context) (Page[T], error) {
		items, err := s.search(ctx, q.Text)
		if err != nil {
			return Page[T]{}, err
		}
		q.Text = ""
		return Apply(items, s.schema, q)
	})
}

// Add ignores any id already set on v; the store assigns one.
func (s *Service[T]) Add(ctx context.Context, v T) *async.Future[T] {
	return run(s, ctx, "add", "", func(ctx context.Context) (T, error) {
		return s.repo.Add(ctx, v)
	})
}

func (s *Service[T]) Update(ctx context.Context, id string, fn func(T) (T, error)) *async.Future[T] {
	return run(s, ctx, "update", id, func(ctx context.Context) (T, error) {
		return s.repo.Update(ctx, id, fn)
	})
}

// UpdateFields merges fields (JSON names) into the record. Unknown fields
// and id changes are validation errors.
func (s *Service[T]) UpdateFields(ctx context.Context, id string, fields map[string]any) *async.Future[T] {
	return run(s, ctx, "patch", id, func(ctx context.Context) (T, error) {
		return s.repo.Update(ctx, id, func(cur T) (T, error) {
			return MergeFields(cur, fields)
		})
	})
}

func (s *Service[T]) Delete(ctx context.Context, id string) *async.Future[struct{}] {
	return run(s, ctx, "delete", id, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repo.Delete(ctx, id)
	})
}

// Do runs fn against the repository as a single facade operation: one
// latency delay and one metrics sample, however many records fn touches.
func Do[T, V any](s *Service[T], ctx context.Context, op string, fn func(context.Context, Repository[T]) (V, error)) *async.Future[V] {
	return run(s, ctx, op, "", func(ctx context.Context) (V, error) {
		return fn(ctx, s.repo)
	})
}

func (s *Service[T]) search(ctx context.Context, q string) ([]T, error) {
	if sr, ok := s.repo.(Searcher[T]); ok {
		return sr.Search(ctx, q)
	}
	items, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	return Search(items, s.schema, q), nil
}

func run[T, V any](s *Service[T], ctx context.Context, op, id string, fn func(context.Context) (V, error)) *async.Future[V] {
	start := time.Now()
	return async.Go(ctx, s.latency, func(ctx context.Context) (V, error) {
		v, err := fn(ctx)
		s.metrics.observe(s.schema.Kind, op, start, err)
		if err != nil {
			s.logFailure(op, id, err)
		}
		return v, err
	})
}

func (s *Service[T]) logFailure(op, id string, err error) {
	fields := []zap.Field{zap.String("op", op), zap.String("outcome", Outcome(err)), zap.Error(err)}
	if id != "" {
		fields = append(fields, zap.String("id", id))
	}

	switch Outcome(err) {
	case "not_found", "invalid", "canceled":
		s.log.Debug("catalog op rejected", fields...)
	case "transient", "conflict":
		s.log.Warn("catalog op failed", fields...)
	default:
		s.log.Error("catalog op failed", fields...)
	}
}

// MergeFields overlays fields onto cur through its JSON form.
func MergeFields[T any](cur T, fields map[string]any) (T, error) {
	var zero T

	raw, err := json.Marshal(cur)
	if err != nil {
		return zero, fmt.Errorf("encode record: %w", err)
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return zero, fmt.Errorf("record is not a JSON object: %w", err)
	}

	for k, v := range fields {
		if k == "id" {
			if id, _ := v.(string); id == doc["id"] {
				continue
			}
			return zero, Invalid("id", "is immutable")
		}
		doc[k] = v
	}

	merged, err := json.Marshal(doc)
	if err != nil {
		return zero, fmt.Errorf("encode patch: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(merged))
	dec.DisallowUnknownFields()
	var out T
	if err := dec.Decode(&out); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			return zero, Invalid(te.Field, "must be "+te.Type.String())
		}
		if name, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			return zero, Invalid(strings.Trim(name, `"`), "is not a known field")
		}
		return zero, Invalid("body", err.Error())
	}
	return out, nil
}
