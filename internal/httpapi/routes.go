package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/draftarena/backend/internal/hub"
	"github.com/draftarena/backend/internal/store"
	"github.com/draftarena/backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, st store.Store, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/series", CreateSeries(st, log))
	r.Get("/series/{seriesID}", GetSeries(st, log))
	r.Get("/series/{seriesID}/games/{number}", GetGame(st, log))
	r.Get("/ws", ws.Handler(h, st, log))
	r.Get("/healthz", Healthz)
	return r
}
