package api

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"SportHub/internal/activities"
	"SportHub/internal/catalog"
	"SportHub/internal/cities"
	"SportHub/internal/config"
	"SportHub/internal/friends"
	"SportHub/internal/notifications"
	"SportHub/internal/profile"
	"SportHub/internal/sports"
)

// Backend is where the collections live: process memory, a SQL database or
// a remote SportHub instance.
type Backend struct {
	kind    string
	db      *sql.DB
	dialect catalog.Dialect
	remote  string
	token   catalog.TokenSource
}

// OpenBackend connects to cfg's store. token authorises writes against a
// remote backend and is ignored otherwise.
func OpenBackend(ctx context.Context, cfg config.StoreConfig, token catalog.TokenSource) (*Backend, error) {
	b := &Backend{kind: cfg.Kind}

	switch cfg.Kind {
	case config.StoreMemory:
	case config.StorePostgres, config.StoreSQLite:
		d, err := catalog.DialectFor(cfg.Kind)
		if err != nil {
			return nil, err
		}
		db, err := catalog.OpenDB(ctx, d, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := catalog.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		b.db, b.dialect = db, d
	case config.StoreRemote:
		b.remote = strings.TrimRight(cfg.DSN, "/")
		b.token = token
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}
	return b, nil
}

func (b *Backend) Kind() string { return b.kind }

func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Services holds one facade per collection.
type Services struct {
	Cities        *cities.Service
	Notifications *notifications.Service
	Friends       *friends.Service
	Activities    *activities.Service
	Sports        *sports.Service
	Profiles      *profile.Service

	// Seeded names the SQL collections that were empty and got fixtures.
	Seeded []string
}

func NewServices(ctx context.Context, b *Backend, log *zap.Logger, opts ...catalog.Option) (*Services, error) {
	s := &Services{}

	cityRepo, err := open(ctx, b, s, "cities", cities.Schema, cities.Seed)
	if err != nil {
		return nil, err
	}
	notifRepo, err := open(ctx, b, s, "notifications", notifications.Schema, notifications.Seed, catalog.WithIDs(notifications.IDs))
	if err != nil {
		return nil, err
	}
	friendRepo, err := open(ctx, b, s, "friends", friends.Schema, friends.Seed)
	if err != nil {
		return nil, err
	}
	activityRepo, err := open(ctx, b, s, "activities", activities.Schema, activities.Seed)
	if err != nil {
		return nil, err
	}
	sportRepo, err := open(ctx, b, s, "sports", sports.Schema, sports.Seed)
	if err != nil {
		return nil, err
	}
	profileRepo, err := open(ctx, b, s, "profiles", profile.Schema, profile.Seed)
	if err != nil {
		return nil, err
	}

	s.Cities = cities.NewService(cityRepo, opts...)
	s.Notifications = notifications.NewService(notifRepo, opts...)
	s.Friends = friends.NewService(friendRepo, opts...)
	s.Activities = activities.NewService(activityRepo, opts...)
	s.Sports = sports.NewService(sportRepo, opts...)
	s.Profiles = profile.NewService(profileRepo, profile.Sources{
		Friends:       s.Friends,
		Notifications: s.Notifications,
		Activities:    s.Activities,
		Sports:        s.Sports,
	}, opts...)

	if len(s.Seeded) > 0 && log != nil {
		log.Info("seeded empty collections", zap.Strings("collections", s.Seeded))
	}
	return s, nil
}

// Pingers returns a readiness check per collection.
func (s *Services) Pingers() map[string]func(context.Context) error {
	return map[string]func(context.Context) error{
		"cities":        s.Cities.Ping,
		"notifications": s.Notifications.Ping,
		"friends":       s.Friends.Ping,
		"activities":    s.Activities.Ping,
		"sports":        s.Sports.Ping,
		"profiles":      s.Profiles.Ping,
	}
}

func open[T any](ctx context.Context, b *Backend, s *Services, path string, schema catalog.Schema[T], seed func() []T, opts ...catalog.StoreOption) (catalog.Repository[T], error) {
	switch b.kind {
	case config.StoreMemory:
		store, err := catalog.NewMemStore(schema, seed(), opts...)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StorePostgres, config.StoreSQLite:
		store := catalog.NewSQLStore(b.db, b.dialect, schema, opts...)
		seeded, err := store.Seed(ctx, seed())
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", path, err)
		}
		if seeded {
			s.Seeded = append(s.Seeded, path)
		}
		return store, nil
	case config.StoreRemote:
		rs := catalog.NewRemoteStore(b.remote+"/"+path, schema)
		rs.Token = b.token
		return rs, nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", b.kind)
	}
}
