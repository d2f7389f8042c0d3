package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"SportHub/internal/async"
	"SportHub/pkg/kit"
)

const maxBodyBytes = 1 << 20

// Handler serves one collection over HTTP. Guard, when set, wraps every
// write route. Create replaces Svc.Add for POST when a collection stamps
// extra fields on new records.
type Handler[T any] struct {
	Svc    *Service[T]
	Log    *zap.Logger
	Guard  func(http.Handler) http.Handler
	Create func(ctx context.Context, v T) *async.Future[T]
}

func (h *Handler[T]) Routes() http.Handler {
	r := chi.NewRouter()
	h.Mount(r)
	return r
}

// Mount registers the collection routes on r so callers can add their own
// routes next to them.
func (h *Handler[T]) Mount(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)

	r.Group(func(wr chi.Router) {
		wr.Use(h.guard())
		wr.Post("/", h.add)
		wr.Put("/{id}", h.replace)
		wr.Patch("/{id}", h.patch)
		wr.Delete("/{id}", h.delete)
	})
}

func (h *Handler[T]) guard() func(http.Handler) http.Handler {
	if h.Guard == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return h.Guard
}

func (h *Handler[T]) list(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r)
	if err != nil {
		WriteError(w, r, h.Log, err)
		return
	}
	Respond(w, r, h.Log, http.StatusOK, h.Svc.Query(r.Context(), q))
}

func (h *Handler[T]) get(w http.ResponseWriter, r *http.Request) {
	Respond(w, r, h.Log, http.StatusOK, h.Svc.Get(r.Context(), chi.URLParam(r, "id")))
}

func (h *Handler[T]) add(w http.ResponseWriter, r *http.Request) {
	var v T
	if err := DecodeJSON(w, r, &v); err != nil {
		WriteError(w, r, h.Log, err)
		return
	}
	create := h.Svc.Add
	if h.Create != nil {
		create = h.Create
	}
	Respond(w, r, h.Log, http.StatusCreated, create(r.Context(), v))
}

func (h *Handler[T]) replace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var v T
	if err := DecodeJSON(w, r, &v); err != nil {
		WriteError(w, r, h.Log, err)
		return
	}
	schema := h.Svc.Schema()
	if got := schema.ID(v); got != "" && got != id {
		WriteError(w, r, h.Log, &ValidationError{Kind: schema.Kind, Field: "id", Reason: "does not match the path"})
		return
	}

	Respond(w, r, h.Log, http.StatusOK, h.Svc.Update(r.Context(), id, func(T) (T, error) {
		return schema.SetID(v, id), nil
	}))
}

func (h *Handler[T]) patch(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := DecodeJSON(w, r, &fields); err != nil {
		WriteError(w, r, h.Log, err)
		return
	}
	Respond(w, r, h.Log, http.StatusOK, h.Svc.UpdateFields(r.Context(), chi.URLParam(r, "id"), fields))
}

func (h *Handler[T]) delete(w http.ResponseWriter, r *http.Request) {
	_, err := h.Svc.Delete(r.Context(), chi.URLParam(r, "id")).Await(r.Context())
	if err != nil {
		WriteError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

var reservedParams = map[string]bool{"q": true, "sort": true, "offset": true, "limit": true}

// ParseQuery reads q, sort, offset and limit; every other parameter is a
// field filter.
func ParseQuery(r *http.Request) (Query, error) {
	vals := r.URL.Query()
	q := Query{Text: vals.Get("q"), Sort: vals.Get("sort")}

	var err error
	if q.Offset, err = IntParam(vals.Get("offset"), "offset"); err != nil {
		return Query{}, err
	}
	if q.Limit, err = IntParam(vals.Get("limit"), "limit"); err != nil {
		return Query{}, err
	}

	for k := range vals {
		if reservedParams[k] {
			continue
		}
		if q.Filters == nil {
			q.Filters = map[string]string{}
		}
		q.Filters[k] = vals.Get(k)
	}
	return q, nil
}

// IntParam parses an optional integer query parameter; blank is 0.
func IntParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, Invalid(name, "must be an integer")
	}
	return n, nil
}

// DecodeJSON reads exactly one JSON value from the request body.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return Invalid("body", "bad json: "+err.Error())
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return Invalid("body", "extra data after json object")
	}
	return nil
}

// Respond awaits f and writes its value, or the matching error response.
func Respond[V any](w http.ResponseWriter, r *http.Request, log *zap.Logger, status int, f *async.Future[V]) {
	v, err := f.Await(r.Context())
	if err != nil {
		WriteError(w, r, log, err)
		return
	}
	kit.WriteJSON(w, status, v)
}

// WriteError maps catalog error classes onto HTTP statuses.
func WriteError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		kit.WriteError(w, r, http.StatusBadRequest, "invalid request", ve)
	case errors.Is(err, ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "not found", nil)
	case errors.Is(err, ErrConflict):
		kit.WriteError(w, r, http.StatusConflict, "conflict", nil)
	case errors.Is(err, ErrTransient):
		if log != nil {
			log.Warn("backing store unavailable", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusServiceUnavailable, "unavailable", nil)
	case errors.Is(err, ErrUnauthorized):
		if log != nil {
			log.Error("backing store rejected credentials", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusBadGateway, "upstream rejected credentials", nil)
	case isContextErr(err):
		kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
	default:
		if log != nil {
			log.Error("request failed", zap.Error(err), zap.String("path", r.URL.Path))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
