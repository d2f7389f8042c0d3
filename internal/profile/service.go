package profile

import (
	"context"
	_ "embed"

	"golang.org/x/sync/errgroup"

	"SportHub/internal/activities"
	"SportHub/internal/async"
	"SportHub/internal/catalog"
	"SportHub/internal/friends"
	"SportHub/internal/notifications"
	"SportHub/internal/sports"
)

//go:embed seed.yaml
var seedYAML []byte

func Seed() []Profile { return catalog.MustLoadSeed[Profile](seedYAML) }

func NewMemStore(opts ...catalog.StoreOption) (*catalog.MemStore[Profile], error) {
	return catalog.NewMemStore(Schema, Seed(), opts...)
}

// Sources are the collections Overview reads from.
type Sources struct {
	Friends       *friends.Service
	Notifications *notifications.Service
	Activities    *activities.Service
	Sports        *sports.Service
}

// Overview is the home screen summary for one profile.
type Overview struct {
	Profile             Profile              `json:"profile"`
	Friends             int                  `json:"friends"`
	PendingRequests     int                  `json:"pendingRequests"`
	UnreadNotifications int                  `json:"unreadNotifications"`
	Activities          activities.Stats     `json:"activities"`
	NextActivity        *activities.Activity `json:"nextActivity,omitempty"`
	Sports              []sports.Sport       `json:"sports"`
}

// Editable lists the fields UpdateProfile accepts.
var Editable = map[string]bool{
	"name": true, "username": true, "email": true, "bio": true, "city": true, "avatar": true,
}

type Service struct {
	*catalog.Service[Profile]
	src Sources
}

func NewService(repo catalog.Repository[Profile], src Sources, opts ...catalog.Option) *Service {
	return &Service{Service: catalog.NewService(repo, Schema, opts...), src: src}
}

// UpdateProfile merges fields into the profile. Fields outside Editable are
// rejected before the store is touched.
func (s *Service) UpdateProfile(ctx context.Context, id string, fields map[string]any) *async.Future[Profile] {
	for k := range fields {
		if !Editable[k] {
			return async.Resolved(Profile{}, &catalog.ValidationError{Kind: Schema.Kind, Field: k, Reason: "is not editable"})
		}
	}
	return s.UpdateFields(ctx, id, fields)
}

// Overview loads the profile and every summary in parallel; the first error
// cancels the rest.
func (s *Service) Overview(ctx context.Context, id string) *async.Future[Overview] {
	return async.Go(ctx, async.None, func(ctx context.Context) (Overview, error) {
		var ov Overview
		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			p, err := s.Get(gctx, id).Await(gctx)
			ov.Profile = p
			return err
		})
		if s.src.Friends != nil {
			g.Go(func() error {
				fs, err := s.src.Friends.Connected(gctx).Await(gctx)
				ov.Friends = len(fs)
				return err
			})
			g.Go(func() error {
				fs, err := s.src.Friends.Pending(gctx).Await(gctx)
				ov.PendingRequests = len(fs)
				return err
			})
		}
		if s.src.Notifications != nil {
			g.Go(func() error {
				n, err := s.src.Notifications.UnreadCount(gctx).Await(gctx)
				ov.UnreadNotifications = n
				return err
			})
		}
		if s.src.Activities != nil {
			g.Go(func() error {
				st, err := s.src.Activities.Stats(gctx).Await(gctx)
				ov.Activities = st
				return err
			})
			g.Go(func() error {
				up, err := s.src.Activities.Upcoming(gctx).Await(gctx)
				if len(up) > 0 {
					ov.NextActivity = &up[0]
				}
				return err
			})
		}
		if s.src.Sports != nil {
			g.Go(func() error {
				sp, err := s.src.Sports.Selected(gctx).Await(gctx)
				ov.Sports = sp
				return err
			})
		}

		if err := g.Wait(); err != nil {
			return Overview{}, err
		}
		return ov, nil
	})
}
