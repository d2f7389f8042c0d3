package friends

import (
	"context"
	_ "embed"
	"fmt"

	"SportHub/internal/async"
	"SportHub/internal/catalog"
)

//go:embed seed.yaml
var seedYAML []byte

func Seed() []Friend { return catalog.MustLoadSeed[Friend](seedYAML) }

func NewMemStore(opts ...catalog.StoreOption) (*catalog.MemStore[Friend], error) {
	return catalog.NewMemStore(Schema, Seed(), opts...)
}

type Service struct {
	*catalog.Service[Friend]
}

func NewService(repo catalog.Repository[Friend], opts ...catalog.Option) *Service {
	return &Service{Service: catalog.NewService(repo, Schema, opts...)}
}

func (s *Service) Connected(ctx context.Context) *async.Future[[]Friend] {
	return s.FilterBy(ctx, "connection", string(Connected))
}

func (s *Service) Suggestions(ctx context.Context) *async.Future[[]Friend] {
	return s.FilterBy(ctx, "connection", string(Suggested))
}

func (s *Service) Pending(ctx context.Context) *async.Future[[]Friend] {
	return s.FilterBy(ctx, "connection", string(Pending))
}

// SendRequest moves a suggestion to pending.
func (s *Service) SendRequest(ctx context.Context, id string) *async.Future[Friend] {
	return s.transition(ctx, id, Pending, Suggested)
}

// Accept confirms a pending request.
func (s *Service) Accept(ctx context.Context, id string) *async.Future[Friend] {
	return s.transition(ctx, id, Connected, Pending)
}

// Remove drops a connection or withdraws a request; the person goes back to
// the suggestions list.
func (s *Service) Remove(ctx context.Context, id string) *async.Future[Friend] {
	return s.transition(ctx, id, Suggested, Connected, Pending)
}

func (s *Service) transition(ctx context.Context, id string, to Connection, from ...Connection) *async.Future[Friend] {
	return s.Update(ctx, id, func(f Friend) (Friend, error) {
		if err := catalog.OneOf("connection", f.Connection, from...); err != nil {
			return f, &catalog.ValidationError{
				Kind:   Schema.Kind,
				Field:  "connection",
				Reason: fmt.Sprintf("cannot become %s from %s", to, f.Connection),
			}
		}
		f.Connection = to
		return f, nil
	})
}
