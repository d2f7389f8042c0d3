// Package api assembles the collection services into the public HTTP API.
package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"SportHub/internal/activities"
	"SportHub/internal/auth"
	"SportHub/internal/cities"
	"SportHub/internal/friends"
	"SportHub/internal/notifications"
	"SportHub/internal/profile"
	"SportHub/internal/sports"
	"SportHub/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

type Deps struct {
	Tokens *auth.TokenMaker
	// Limiter throttles write routes per client IP. Nil disables it.
	Limiter *kit.IPRateLimiter
}

const (
	readyTimeout      = 2 * time.Second
	readyProbeTimeout = 700 * time.Millisecond
)

func NewHandler(svc *Services, deps Deps, httpDeps HTTPDeps) http.Handler {
	log := httpDeps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	setupMiddleware(r, log)
	setupMetrics(r, httpDeps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(svc.Pingers(), log))

	authn := auth.AuthJWT(deps.Tokens)
	writes := authn
	if deps.Limiter != nil {
		writes = func(next http.Handler) http.Handler {
			return deps.Limiter.Middleware(authn(next))
		}
	}

	r.Mount("/cities", (&cities.Server{Svc: svc.Cities, Log: log, Guard: writes}).Routes())
	r.Mount("/notifications", (&notifications.Server{Svc: svc.Notifications, Log: log, Guard: writes}).Routes())
	r.Mount("/friends", (&friends.Server{Svc: svc.Friends, Log: log, Guard: writes}).Routes())
	r.Mount("/activities", (&activities.Server{Svc: svc.Activities, Log: log, Guard: writes}).Routes())
	r.Mount("/sports", (&sports.Server{Svc: svc.Sports, Log: log, Guard: writes}).Routes())

	// Users edit their own profile through /me; the collection is admin-only.
	admin := auth.RequireRole(auth.RoleAdmin)
	profiles := &profile.Server{Svc: svc.Profiles, Log: log, Guard: func(next http.Handler) http.Handler {
		return writes(admin(next))
	}}
	r.Mount("/profiles", profiles.Routes())
	me := &profile.Server{Svc: svc.Profiles, Log: log, Guard: authn}
	r.Mount("/me", me.MeRoutes())

	return r
}

func setupMiddleware(r *chi.Mux, log *zap.Logger) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(pingers map[string]func(context.Context) error, log *zap.Logger) http.HandlerFunc {
	names := make([]string, 0, len(pingers))
	for name := range pingers {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		for _, name := range names {
			if err := checkReady(ctx, pingers[name]); err != nil {
				log.Warn("readyz failed", zap.String("collection", name), zap.Error(err))
				kit.WriteError(w, r, http.StatusServiceUnavailable, name+" not ready", nil)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
	}
}

func checkReady(ctx context.Context, ping func(context.Context) error) error {
	cctx, cancel := context.WithTimeout(ctx, readyProbeTimeout)
	defer cancel()
	return ping(cctx)
}
