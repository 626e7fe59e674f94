package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/draftarena/backend/internal/hub"
	"github.com/draftarena/backend/internal/room"
	"github.com/draftarena/backend/internal/store"
	"github.com/draftarena/backend/internal/types"
)

const (
	writeTimeout = 3 * time.Second
	pingInterval = 30 * time.Second
)

// Handler upgrades /ws?game=<id>&token=<optional> into a room session.
// The token query param rides along on every intent so team clients
// don't have to repeat it per message; spectators simply omit it.
func Handler(h *hub.Hub, st store.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := r.URL.Query().Get("game")
		if gameID == "" {
			http.Error(w, "missing game", http.StatusBadRequest)
			return
		}
		token := r.URL.Query().Get("token")

		game, err := st.GetGameByID(r.Context(), gameID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "game not found", http.StatusNotFound)
				return
			}
			http.Error(w, "lookup failed", http.StatusInternalServerError)
			return
		}
		series, err := st.GetSeries(r.Context(), game.SeriesID)
		if err != nil {
			http.Error(w, "lookup failed", http.StatusInternalServerError)
			return
		}

		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.Ensure{Series: series, Game: game, Reply: reply}
		rm := <-reply

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan types.ServerMessage, 16)
		clientID := uuid.NewString()

		rm.Inbox() <- room.Join{ClientID: clientID, Outbox: out}
		defer func() { rm.Inbox() <- room.Leave{ClientID: clientID} }()
		log.Debug("client joined room",
			zap.String("game", gameID),
			zap.String("client", clientID))

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go writer(writeCtx, conn, out)
		go keepalive(writeCtx, conn, writeCancel)

		// Reads block on the connection context alone. Spectators may
		// never send anything; liveness comes from the keepalive pings,
		// not a read deadline.
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeJSON(r.Context(), conn, types.ServerMessage{Type: types.EvtError, Reason: "bad json"})
				continue
			}
			if cm.Token == "" {
				cm.Token = token
			}
			rm.Inbox() <- room.Intent{ClientID: clientID, Msg: cm}
		}
	}
}

// keepalive pings on an interval to detect dead peers; a failed ping
// tears the connection down via cancel.
func keepalive(ctx context.Context, conn *websocket.Conn, cancel context.CancelFunc) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		pctx, pcancel := context.WithTimeout(ctx, writeTimeout)
		err := conn.Ping(pctx)
		pcancel()
		if err != nil {
			cancel()
			return
		}
	}
}

func writer(ctx context.Context, conn *websocket.Conn, out <-chan types.ServerMessage) {
	for msg := range out {
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		_ = writeJSON(wctx, conn, msg)
		cancel()
	}
}

func writeJSON(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, payload)
}
