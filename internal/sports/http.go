package sports

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
	r.Get("/selected", s.selected)
	r.Group(func(wr chi.Router) {
		if s.Guard != nil {
			wr.Use(s.Guard)
		}
		wr.Put("/{id}/preference", s.setPreference)
	})

	h := &catalog.Handler[Sport]{Svc: s.Svc.Service, Log: s.Log, Guard: s.Guard}
	h.Mount(r)
	return r
}

func (s *Server) selected(w http.ResponseWriter, r *http.Request) {
	catalog.Respond(w, r, s.Log, http.StatusOK, s.Svc.Selected(r.Context()))
}

func (s *Server) setPreference(w http.ResponseWriter, r *http.Request) {
	var p Preference
	if err := catalog.DecodeJSON(w, r, &p); err != nil {
		catalog.WriteError(w, r, s.Log, err)
		return
	}
	catalog.Respond(w, r, s.Log, http.StatusOK, s.Svc.SetPreference(r.Context(), chi.URLParam(r, "id"), p))
}
