// Package catalog is a query service over ordered collections of typed
// records: a store per entity type, stateless search and filter functions,
// and a latency-bearing asynchronous facade in front of both.
package catalog

import (
	"context"
	"strconv"

	"github.com/google/uuid"
)

// Repository holds the authoritative records of one collection. Reads return
// copies; every write goes through Add, Update or Delete.
type Repository[T any] interface {
	Ping(ctx context.Context) error
	All(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, bool, error)

	// Add assigns a fresh id to v, appends it and returns the stored record.
	Add(ctx context.Context, v T) (T, error)
	// Update applies fn to the record atomically. fn errors abort the update.
	Update(ctx context.Context, id string, fn func(T) (T, error)) (T, error)
	Delete(ctx context.Context, id string) error
}

// Searcher is implemented by repositories that can answer text search
// without scanning a fresh copy of the collection.
type Searcher[T any] interface {
	Search(ctx context.Context, q string) ([]T, error)
}

// IDFunc turns a store's next sequence number into a record id.
type IDFunc func(seq int64) string

// Sequence uses the sequence number itself: "1", "2", ...
func Sequence(seq int64) string { return strconv.FormatInt(seq, 10) }

// UUIDs ignores the sequence and issues random ids with prefix.
func UUIDs(prefix string) IDFunc {
	return func(int64) string { return prefix + uuid.NewString() }
}

type storeOptions struct {
	ids IDFunc
}

type StoreOption func(*storeOptions)

func WithIDs(f IDFunc) StoreOption {
	return func(o *storeOptions) {
		if f != nil {
			o.ids = f
		}
	}
}

func buildStoreOptions(opts []StoreOption) storeOptions {
	o := storeOptions{ids: Sequence}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// seedSequence is the counter value after loading seed: the larger of the
// seed size and the highest numeric id, so generated ids never collide.
func seedSequence[T any](schema Schema[T], seed []T) int64 {
	seq := int64(len(seed))
	for _, v := range seed {
		if n, err := strconv.ParseInt(schema.ID(v), 10, 64); err == nil && n > seq {
			seq = n
		}
	}
	return seq
}
