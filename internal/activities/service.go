package activities

import (
	"context"
	_ "embed"
	"fmt"
	"slices"

	"SportHub/internal/async"
	"SportHub/internal/catalog"
)

//go:embed seed.yaml
var seedYAML []byte

func Seed() []Activity { return catalog.MustLoadSeed[Activity](seedYAML) }

func NewMemStore(opts ...catalog.StoreOption) (*catalog.MemStore[Activity], error) {
	return catalog.NewMemStore(Schema, Seed(), opts...)
}

// Stats summarises the collection. Totals only count completed activities.
type Stats struct {
	Completed       int            `json:"completed"`
	Upcoming        int            `json:"upcoming"`
	Cancelled       int            `json:"cancelled"`
	TotalMinutes    int            `json:"totalMinutes"`
	TotalDistanceKm float64        `json:"totalDistanceKm"`
	TotalCalories   int            `json:"totalCalories"`
	BySport         map[string]int `json:"bySport"`
}

type Service struct {
	*catalog.Service[Activity]
}

func NewService(repo catalog.Repository[Activity], opts ...catalog.Option) *Service {
	return &Service{Service: catalog.NewService(repo, Schema, opts...)}
}

// History resolves with completed activities, most recent first.
func (s *Service) History(ctx context.Context) *async.Future[[]Activity] {
	return async.Then(s.FilterBy(ctx, "status", string(Completed)), func(items []Activity) ([]Activity, error) {
		slices.SortStableFunc(items, func(a, b Activity) int { return b.StartsAt.Compare(a.StartsAt) })
		return items, nil
	})
}

// Upcoming resolves with scheduled activities, soonest first.
func (s *Service) Upcoming(ctx context.Context) *async.Future[[]Activity] {
	return async.Then(s.FilterBy(ctx, "status", string(Upcoming)), func(items []Activity) ([]Activity, error) {
		slices.SortStableFunc(items, func(a, b Activity) int { return a.StartsAt.Compare(b.StartsAt) })
		return items, nil
	})
}

func (s *Service) Complete(ctx context.Context, id string) *async.Future[Activity] {
	return s.transition(ctx, id, Completed)
}

func (s *Service) Cancel(ctx context.Context, id string) *async.Future[Activity] {
	return s.transition(ctx, id, Cancelled)
}

func (s *Service) transition(ctx context.Context, id string, to Status) *async.Future[Activity] {
	return s.Update(ctx, id, func(a Activity) (Activity, error) {
		if a.Status != Upcoming {
			return a, &catalog.ValidationError{
				Kind:   Schema.Kind,
				Field:  "status",
				Reason: fmt.Sprintf("cannot become %s from %s", to, a.Status),
			}
		}
		a.Status = to
		return a, nil
	})
}

func (s *Service) Stats(ctx context.Context) *async.Future[Stats] {
	return catalog.Do(s.Service, ctx, "stats", func(ctx context.Context, repo catalog.Repository[Activity]) (Stats, error) {
		items, err := repo.All(ctx)
		if err != nil {
			return Stats{}, err
		}
		return Summarize(items), nil
	})
}

func Summarize(items []Activity) Stats {
	st := Stats{BySport: map[string]int{}}
	for _, a := range items {
		switch a.Status {
		case Upcoming:
			st.Upcoming++
		case Cancelled:
			st.Cancelled++
		case Completed:
			st.Completed++
			st.TotalMinutes += a.DurationMinutes
			st.TotalDistanceKm += a.DistanceKm
			st.TotalCalories += a.Calories
			st.BySport[a.Sport]++
		}
	}
	return st
}
