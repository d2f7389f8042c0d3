package cities

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"SportHub/internal/catalog"
)

type Server struct {
	Svc   *Service
	Log   *zap.Logger
	Guard func(http.Handler) http.Handler
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/popular", s.popular)

	h := &catalog.Handler[City]{Svc: s.Svc.Service, Log: s.Log, Guard: s.Guard}
	h.Mount(r)
	return r
}

func (s *Server) popular(w http.ResponseWriter, r *http.Request) {
	n, err := catalog.IntParam(r.URL.Query().Get("n"), "n")
	if err != nil {
		catalog.WriteError(w, r, s.Log, err)
		return
	}
	catalog.Respond(w, r, s.Log, http.StatusOK, s.Svc.Popular(r.Context(), n))
}
