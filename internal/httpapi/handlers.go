package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/draftarena/backend/internal/models"
	"github.com/draftarena/backend/internal/store"
)

type createSeriesRequest struct {
	Team1      string `json:"team1"`
	Team2      string `json:"team2"`
	Name       string `json:"name"`
	Format     string `json:"format"`
	Fearless   bool   `json:"fearless"`
	ScrimBlock bool   `json:"scrim_block"`
}

type createSeriesResponse struct {
	Series       *models.Series `json:"series"`
	Team1Token   string         `json:"team1_token"`
	Team2Token   string         `json:"team2_token"`
	Team1URL     string         `json:"team1_url"`
	Team2URL     string         `json:"team2_url"`
	SpectatorURL string         `json:"spectator_url"`
}

// joinURL builds the websocket join path for game 1. Paths are relative;
// the frontend prefixes its own origin.
func joinURL(gameID, token string) string {
	q := url.Values{"game": {gameID}}
	if token != "" {
		q.Set("token", token)
	}
	return "/ws?" + q.Encode()
}

// CreateSeries makes a series plus its first game and returns the two
// private team tokens (and their join URLs) exactly once. Reads never
// echo them again.
func CreateSeries(st store.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSeriesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Team1 == "" || req.Team2 == "" || req.Team1 == req.Team2 {
			http.Error(w, "two distinct team names required", http.StatusBadRequest)
			return
		}
		format, ok := models.ParseFormat(req.Format)
		if !ok {
			format = models.FormatBo1
		}
		if req.Name == "" {
			req.Name = req.Team1 + " vs " + req.Team2
		}

		series, err := st.CreateSeries(r.Context(), store.CreateSeriesParams{
			Team1:      req.Team1,
			Team2:      req.Team2,
			Name:       req.Name,
			Format:     format,
			Fearless:   req.Fearless,
			ScrimBlock: req.ScrimBlock,
		})
		if err != nil {
			log.Error("create series failed", zap.Error(err))
			http.Error(w, "create failed", http.StatusInternalServerError)
			return
		}

		gameID := ""
		if len(series.Games) > 0 {
			gameID = series.Games[0].ID
		}
		writeJSON(w, http.StatusCreated, createSeriesResponse{
			Series:       series,
			Team1Token:   series.Team1Token,
			Team2Token:   series.Team2Token,
			Team1URL:     joinURL(gameID, series.Team1Token),
			Team2URL:     joinURL(gameID, series.Team2Token),
			SpectatorURL: joinURL(gameID, ""),
		})
	}
}

type seriesResponse struct {
	Series *models.Series `json:"series"`
	// Role echoes which seat the supplied token holds: the team name, or
	// "spectator" when no/invalid token was given.
	Role string `json:"role"`
}

func GetSeries(st store.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		series, err := st.GetSeries(r.Context(), chi.URLParam(r, "seriesID"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "series not found", http.StatusNotFound)
				return
			}
			log.Error("get series failed", zap.Error(err))
			http.Error(w, "lookup failed", http.StatusInternalServerError)
			return
		}
		role := "spectator"
		if team, ok := series.TeamForToken(r.URL.Query().Get("token")); ok {
			role = team
		}
		writeJSON(w, http.StatusOK, seriesResponse{Series: series, Role: role})
	}
}

func GetGame(st store.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, err := strconv.Atoi(chi.URLParam(r, "number"))
		if err != nil || number < 1 {
			http.Error(w, "bad game number", http.StatusBadRequest)
			return
		}
		game, err := st.GetGame(r.Context(), chi.URLParam(r, "seriesID"), number)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "game not found", http.StatusNotFound)
				return
			}
			log.Error("get game failed", zap.Error(err))
			http.Error(w, "lookup failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, game)
	}
}

func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
