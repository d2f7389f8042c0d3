package sports

import (
	"context"
	_ "embed"

	"SportHub/internal/async"
	"SportHub/internal/catalog"
)

//go:embed seed.yaml
var seedYAML []byte

func Seed() []Sport { return catalog.MustLoadSeed[Sport](seedYAML) }

func NewMemStore(opts ...catalog.StoreOption) (*catalog.MemStore[Sport], error) {
	return catalog.NewMemStore(Schema, Seed(), opts...)
}

// Preference is the user's choice for one sport. Deselecting clears the
// level.
type Preference struct {
	Selected bool  `json:"selected"`
	Level    Level `json:"level,omitempty"`
}

type Service struct {
	*catalog.Service[Sport]
}

func NewService(repo catalog.Repository[Sport], opts ...catalog.Option) *Service {
	return &Service{Service: catalog.NewService(repo, Schema, opts...)}
}

func (s *Service) Selected(ctx context.Context) *async.Future[[]Sport] {
	return s.Where(ctx, func(sp Sport) bool { return sp.Selected })
}

func (s *Service) SetPreference(ctx context.Context, id string, p Preference) *async.Future[Sport] {
	return s.Update(ctx, id, func(sp Sport) (Sport, error) {
		sp.Selected = p.Selected
		sp.Level = p.Level
		if !p.Selected {
			sp.Level = ""
		} else if sp.Level == "" {
			sp.Level = Beginner
		}
		return sp, nil
	})
}
