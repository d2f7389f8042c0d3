package cities

import (
	"context"
	_ "embed"
	"slices"

	"SportHub/internal/async"
	"SportHub/internal/catalog"
)

//go:embed seed.yaml
var seedYAML []byte

// Seed returns a fresh copy of the embedded city fixture.
func Seed() []City { return catalog.MustLoadSeed[City](seedYAML) }

func NewMemStore(opts ...catalog.StoreOption) (*catalog.MemStore[City], error) {
	return catalog.NewMemStore(Schema, Seed(), opts...)
}

// PopularNames is the allow-list behind Popular, most popular first.
var PopularNames = []string{
	"Casablanca", "Marrakech", "Rabat", "Fès", "Tanger",
	"Agadir", "Meknès", "Oujda", "Tétouan", "Chefchaouen",
}

type Service struct {
	*catalog.Service[City]
}

func NewService(repo catalog.Repository[City], opts ...catalog.Option) *Service {
	return &Service{Service: catalog.NewService(repo, Schema, opts...)}
}

// Popular resolves with at most n allow-listed cities in allow-list order.
// n <= 0 returns every popular city.
func (s *Service) Popular(ctx context.Context, n int) *async.Future[[]City] {
	rank := make(map[string]int, len(PopularNames))
	for i, name := range PopularNames {
		rank[catalog.Fold(name)] = i
	}
	f := s.Where(ctx, func(c City) bool {
		_, ok := rank[catalog.Fold(c.Name)]
		return ok
	})
	return async.Then(f, func(items []City) ([]City, error) {
		slices.SortStableFunc(items, func(a, b City) int {
			return rank[catalog.Fold(a.Name)] - rank[catalog.Fold(b.Name)]
		})
		if n > 0 && len(items) > n {
			items = items[:n]
		}
		return items, nil
	})
}

func (s *Service) ByCountry(ctx context.Context, country string) *async.Future[[]City] {
	return s.FilterBy(ctx, "country", country)
}
