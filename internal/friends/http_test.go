package friends

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFriendRoutes(t *testing.T) {
	srv := httptest.NewServer((&Server{Svc: newService(t), Log: zap.NewNop()}).Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/4/accept", "application/json", nil)
	require.NoError(t, err)
	var f Friend
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&f))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, Connected, f.Connection)

	resp, err = http.Get(srv.URL + "/connected")
	require.NoError(t, err)
	var connected []Friend
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&connected))
	resp.Body.Close()
	assert.Len(t, connected, 4)

	resp, err = http.Post(srv.URL+"/4/accept", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
