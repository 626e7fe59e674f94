package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const championJSON = `{
	"type": "champion",
	"data": {
		"Aatrox": {"id": "Aatrox", "key": "266", "name": "Aatrox"},
		"Ahri":   {"id": "Ahri",   "key": "103", "name": "Ahri"},
		"Zed":    {"id": "Zed",    "key": "238", "name": "Zed"}
	}
}`

func TestRefreshPopulatesCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(championJSON))
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop())
	require.NoError(t, c.Refresh(context.Background()))
	require.Equal(t, 3, c.Len())
	require.True(t, c.Valid("Aatrox"))
	require.False(t, c.Valid("NotAChampion"))
}

func TestValidDegradesOpenBeforeFirstLoad(t *testing.T) {
	c := New("http://unused", zap.NewNop())
	require.True(t, c.Valid("Anything"))
}

func TestRefreshFailureKeepsLastGoodCatalog(t *testing.T) {
	fail := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(championJSON))
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop())
	require.NoError(t, c.Refresh(context.Background()))

	fail = true
	require.Error(t, c.Refresh(context.Background()))
	require.Equal(t, 3, c.Len())
	require.True(t, c.Valid("Zed"))
	require.False(t, c.Valid("NotAChampion"))
}

func TestRefreshRejectsEmptyCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data": {}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop())
	require.Error(t, c.Refresh(context.Background()))
	require.True(t, c.Valid("Anything"), "still degraded open")
}
