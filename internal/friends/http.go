package friends

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
	r.Get("/connected", s.list(s.Svc.Connected))
	r.Get("/suggestions", s.list(s.Svc.Suggestions))
	r.Get("/pending", s.list(s.Svc.Pending))

	r.Group(func(wr chi.Router) {
		if s.Guard != nil {
			wr.Use(s.Guard)
		}
		wr.Post("/{id}/request", s.move(s.Svc.SendRequest))
		wr.Post("/{id}/accept", s.move(s.Svc.Accept))
		wr.Post("/{id}/remove", s.move(s.Svc.Remove))
	})

	h := &catalog.Handler[Friend]{Svc: s.Svc.Service, Log: s.Log, Guard: s.Guard}
	h.Mount(r)
	return r
}

func (s *Server) list(fn func(context.Context) *async.Future[[]Friend]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog.Respond(w, r, s.Log, http.StatusOK, fn(r.Context()))
	}
}

func (s *Server) move(fn func(context.Context, string) *async.Future[Friend]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog.Respond(w, r, s.Log, http.StatusOK, fn(r.Context(), chi.URLParam(r, "id")))
	}
}
