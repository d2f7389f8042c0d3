package notifications

import (
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

type countResp struct {
	Count int `json:"count"`
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/unread", s.unread)
	r.Get("/unread/count", s.unreadCount)

	h := &catalog.Handler[Notification]{Svc: s.Svc.Service, Log: s.Log, Guard: s.Guard, Create: s.Svc.Push}
	r.Group(func(wr chi.Router) {
		if s.Guard != nil {
			wr.Use(s.Guard)
		}
		wr.Post("/read-all", s.markAllRead)
		wr.Post("/{id}/read", s.markRead)
	})
	h.Mount(r)
	return r
}

func (s *Server) unread(w http.ResponseWriter, r *http.Request) {
	catalog.Respond(w, r, s.Log, http.StatusOK, s.Svc.Unread(r.Context()))
}

func (s *Server) unreadCount(w http.ResponseWriter, r *http.Request) {
	catalog.Respond(w, r, s.Log, http.StatusOK, toCount(s.Svc.UnreadCount(r.Context())))
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	catalog.Respond(w, r, s.Log, http.StatusOK, s.Svc.MarkRead(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) markAllRead(w http.ResponseWriter, r *http.Request) {
	catalog.Respond(w, r, s.Log, http.StatusOK, toCount(s.Svc.MarkAllRead(r.Context())))
}

func toCount(f *async.Future[int]) *async.Future[countResp] {
	return async.Then(f, func(n int) (countResp, error) { return countResp{Count: n}, nil })
}
