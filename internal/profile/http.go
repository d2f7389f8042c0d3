package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"SportHub/internal/auth"
	"SportHub/internal/catalog"
	"SportHub/pkg/kit"
)

type Server struct {
	Svc   *Service
	Log   *zap.Logger
	Guard func(http.Handler) http.Handler
}

// Routes serves the /profiles collection.
func (s *Server) Routes() http.Handler {
	h := &catalog.Handler[Profile]{Svc: s.Svc.Service, Log: s.Log, Guard: s.Guard}
	return h.Routes()
}

// MeRoutes serves the caller's own profile. The caller comes from the
// request context, so Guard must authenticate.
func (s *Server) MeRoutes() http.Handler {
	r := chi.NewRouter()
	if s.Guard != nil {
		r.Use(s.Guard)
	}
	r.Get("/", s.me)
	r.Patch("/", s.updateMe)
	r.Get("/overview", s.overview)
	return r
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no user", nil)
		return
	}
	catalog.Respond(w, r, s.Log, http.StatusOK, s.Svc.Get(r.Context(), u.ID))
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no user", nil)
		return
	}

	var fields map[string]any
	if err := catalog.DecodeJSON(w, r, &fields); err != nil {
		catalog.WriteError(w, r, s.Log, err)
		return
	}
	catalog.Respond(w, r, s.Log, http.StatusOK, s.Svc.UpdateProfile(r.Context(), u.ID, fields))
}

func (s *Server) overview(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no user", nil)
		return
	}
	catalog.Respond(w, r, s.Log, http.StatusOK, s.Svc.Overview(r.Context(), u.ID))
}
