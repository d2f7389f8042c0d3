package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"SportHub/pkg/kit"
)

func newRemote(t *testing.T) (*RemoteStore[place], *MemStore[place]) {
	t.Helper()
	mem := newMem(t)

	r := chi.NewRouter()
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Mount("/places", (&Handler[place]{Svc: NewService[place](mem, placeSchema), Log: zap.NewNop()}).Routes())
	r.Get("/broken", func(w http.ResponseWriter, r *http.Request) {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	})

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return NewRemoteStore(ts.URL+"/places/", placeSchema), mem
}

func TestRemoteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	rs, mem := newRemote(t)

	require.NoError(t, rs.Ping(ctx))

	all, err := rs.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, fixture(), all)

	found, err := rs.Search(ctx, "fès")
	require.NoError(t, err)
	assert.Equal(t, []string{"Fès"}, names(found))

	added, err := rs.Add(ctx, place{Name: "Agadir"})
	require.NoError(t, err)
	assert.Equal(t, "4", added.ID)
	assert.Equal(t, 4, mem.Len())

	updated, err := rs.Update(ctx, "4", func(p place) (place, error) {
		p.Rank = 7
		return p, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Rank)

	require.NoError(t, rs.Delete(ctx, "4"))
	_, ok, err := rs.Get(ctx, "4")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoteStoreErrorClasses(t *testing.T) {
	ctx := context.Background()
	rs, _ := newRemote(t)

	assert.ErrorIs(t, rs.Delete(ctx, "999"), ErrNotFound)

	_, err := rs.Add(ctx, place{Name: "Bad", Rank: -1})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "rank", ve.Field)
	assert.Equal(t, "place", ve.Kind)

	broken := NewRemoteStore(rs.BaseURL[:len(rs.BaseURL)-len("/places")]+"/broken", placeSchema)
	_, err = broken.All(ctx)
	assert.ErrorIs(t, err, ErrTransient)
}

func TestRemoteStoreCanceled(t *testing.T) {
	rs, _ := newRemote(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rs.All(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTransient)
}

func TestRemoteStoreRejectedCredentials(t *testing.T) {
	ctx := context.Background()

	var seen []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		if r.Method == http.MethodDelete {
			kit.WriteError(w, r, http.StatusForbidden, "forbidden", nil)
			return
		}
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
	}))
	defer ts.Close()

	calls := 0
	rs := NewRemoteStore(ts.URL+"/places", placeSchema)
	rs.Token = func() (string, error) {
		calls++
		return fmt.Sprintf("tok-%d", calls), nil
	}

	_, err := rs.Add(ctx, place{Name: "Agadir"})
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrTransient)
	assert.Equal(t, "unauthorized", Outcome(err))

	err = rs.Delete(ctx, "1")
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.Equal(t, []string{"Bearer tok-1", "Bearer tok-2"}, seen)
}

func TestRemoteStoreTokenError(t *testing.T) {
	rs, _ := newRemote(t)
	rs.Token = func() (string, error) { return "", errors.New("no signing key") }

	_, err := rs.All(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no signing key")
}
