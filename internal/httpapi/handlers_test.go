package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/draftarena/backend/internal/draft"
	"github.com/draftarena/backend/internal/hub"
	"github.com/draftarena/backend/internal/models"
	"github.com/draftarena/backend/internal/store"
)

func newServer(t *testing.T) (http.Handler, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	orc := draft.NewOrchestrator(mem, nil, zap.NewNop())
	h := hub.New(ctx, orc, clockwork.NewFakeClock(), 30, zap.NewNop())
	return SetupRoutes(h, mem, zap.NewNop()), mem
}

func TestCreateSeries(t *testing.T) {
	handler, _ := newServer(t)

	body := bytes.NewBufferString(`{"team1":"Cloud9","team2":"Fnatic","name":"LCS Finals","format":"bo5","fearless":true}`)
	req := httptest.NewRequest(http.MethodPost, "/series", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Series       models.Series `json:"series"`
		Team1Token   string        `json:"team1_token"`
		Team2Token   string        `json:"team2_token"`
		Team1URL     string        `json:"team1_url"`
		Team2URL     string        `json:"team2_url"`
		SpectatorURL string        `json:"spectator_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Series.ID)
	require.Equal(t, models.FormatBo5, resp.Series.Format)
	require.True(t, resp.Series.Fearless)
	require.Equal(t, "lcs-finals", resp.Series.Slug)
	require.Len(t, resp.Series.Games, 1)
	require.NotEmpty(t, resp.Team1Token)
	require.NotEmpty(t, resp.Team2Token)

	// Join URLs target game 1; team links carry their private token,
	// the spectator link carries none.
	gameID := resp.Series.Games[0].ID
	require.Equal(t, "/ws?"+url.Values{"game": {gameID}, "token": {resp.Team1Token}}.Encode(), resp.Team1URL)
	require.Equal(t, "/ws?"+url.Values{"game": {gameID}, "token": {resp.Team2Token}}.Encode(), resp.Team2URL)
	require.Equal(t, "/ws?"+url.Values{"game": {gameID}}.Encode(), resp.SpectatorURL)
	require.NotContains(t, resp.SpectatorURL, "token")
}

func TestCreateSeries_Validation(t *testing.T) {
	handler, _ := newServer(t)

	cases := []struct {
		name string
		body string
	}{
		{name: "bad json", body: `{`},
		{name: "missing team", body: `{"team1":"Cloud9"}`},
		{name: "same team twice", body: `{"team1":"Cloud9","team2":"Cloud9"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/series", bytes.NewBufferString(tc.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetSeries_RoleFromToken(t *testing.T) {
	handler, mem := newServer(t)
	series, err := mem.CreateSeries(context.Background(), store.CreateSeriesParams{
		Team1: "Cloud9", Team2: "Fnatic", Name: "Scrim", Format: models.FormatBo3,
	})
	require.NoError(t, err)

	// Spectator: no token.
	req := httptest.NewRequest(http.MethodGet, "/series/"+series.ID, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Series models.Series `json:"series"`
		Role   string        `json:"role"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "spectator", resp.Role)
	require.Len(t, resp.Series.Games, 1)

	// Team token echoes the seat and never leaks tokens back out.
	req = httptest.NewRequest(http.MethodGet, "/series/"+series.ID+"?token="+series.Team2Token, nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Fnatic", resp.Role)
	require.NotContains(t, rec.Body.String(), series.Team1Token)
	require.NotContains(t, rec.Body.String(), series.Team2Token)
}

func TestGetSeries_NotFound(t *testing.T) {
	handler, _ := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/series/unknown", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetGame(t *testing.T) {
	handler, mem := newServer(t)
	series, err := mem.CreateSeries(context.Background(), store.CreateSeriesParams{
		Team1: "Cloud9", Team2: "Fnatic", Name: "Scrim", Format: models.FormatBo1,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/series/"+series.ID+"/games/1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var game models.Game
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &game))
	require.Equal(t, 1, game.Number)

	req = httptest.NewRequest(http.MethodGet, "/series/"+series.ID+"/games/9", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/series/"+series.ID+"/games/zero", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
