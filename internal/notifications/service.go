package notifications

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"SportHub/internal/async"
	"SportHub/internal/catalog"
)

//go:embed seed.yaml
var seedYAML []byte

func Seed() []Notification { return catalog.MustLoadSeed[Notification](seedYAML) }

// IDs issues ids for notifications pushed at runtime; seeded ones keep
// their numeric ids.
var IDs = catalog.UUIDs("n_")

func NewMemStore(opts ...catalog.StoreOption) (*catalog.MemStore[Notification], error) {
	opts = append([]catalog.StoreOption{catalog.WithIDs(IDs)}, opts...)
	return catalog.NewMemStore(Schema, Seed(), opts...)
}

type Service struct {
	*catalog.Service[Notification]
	now func() time.Time
}

func NewService(repo catalog.Repository[Notification], opts ...catalog.Option) *Service {
	return &Service{
		Service: catalog.NewService(repo, Schema, opts...),
		now:     time.Now,
	}
}

func (s *Service) Unread(ctx context.Context) *async.Future[[]Notification] {
	return s.Where(ctx, func(n Notification) bool { return !n.IsRead })
}

func (s *Service) UnreadCount(ctx context.Context) *async.Future[int] {
	return async.Then(s.Unread(ctx), func(items []Notification) (int, error) {
		return len(items), nil
	})
}

// MarkRead is idempotent.
func (s *Service) MarkRead(ctx context.Context, id string) *async.Future[Notification] {
	return s.Update(ctx, id, func(n Notification) (Notification, error) {
		n.IsRead = true
		return n, nil
	})
}

// MarkAllRead resolves with the number of notifications it changed.
func (s *Service) MarkAllRead(ctx context.Context) *async.Future[int] {
	return catalog.Do(s.Service, ctx, "mark_all_read", func(ctx context.Context, repo catalog.Repository[Notification]) (int, error) {
		items, err := repo.All(ctx)
		if err != nil {
			return 0, err
		}
		changed := 0
		for _, n := range items {
			if n.IsRead {
				continue
			}
			_, err := repo.Update(ctx, n.ID, func(cur Notification) (Notification, error) {
				cur.IsRead = true
				return cur, nil
			})
			if errors.Is(err, catalog.ErrNotFound) {
				continue
			}
			if err != nil {
				return changed, err
			}
			changed++
		}
		return changed, nil
	})
}

// Push stores a new unread notification, stamping CreatedAt when unset.
func (s *Service) Push(ctx context.Context, n Notification) *async.Future[Notification] {
	n.IsRead = false
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}
	return s.Add(ctx, n)
}

func (s *Service) Dismiss(ctx context.Context, id string) *async.Future[struct{}] {
	return s.Delete(ctx, id)
}
