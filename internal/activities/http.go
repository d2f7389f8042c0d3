package activities

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"SportHub/internal/async"
	"SportHub/internal/catalog"
)

type Server struct {
	Svc   *Service
	Log   *zap.Logger
	Guard func(http.Handler) http.Handler
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/history", s.list(s.Svc.History))
	r.Get("/upcoming", s.list(s.Svc.Upcoming))
	r.Get("/stats", s.stats)

	r.Group(func(wr chi.Router) {
		if s.Guard != nil {
			wr.Use(s.Guard)
		}
		wr.Post("/{id}/complete", s.move(s.Svc.Complete))
		wr.Post("/{id}/cancel", s.move(s.Svc.Cancel))
	})

	h := &catalog.Handler[Activity]{Svc: s.Svc.Service, Log: s.Log, Guard: s.Guard}
	h.Mount(r)
	return r
}

func (s *Server) list(fn func(context.Context) *async.Future[[]Activity]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog.Respond(w, r, s.Log, http.StatusOK, fn(r.Context()))
	}
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	catalog.Respond(w, r, s.Log, http.StatusOK, s.Svc.Stats(r.Context()))
}

func (s *Server) move(fn func(context.Context, string) *async.Future[Activity]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog.Respond(w, r, s.Log, http.StatusOK, fn(r.Context(), chi.URLParam(r, "id")))
	}
}
