// Package hub is the room registry: an actor mapping game IDs to live
// rooms. Lookups and creation are serialized through its inbox so two
// connects for the same game always land in the same room.
package hub

import (
	"context"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/draftarena/backend/internal/draft"
	"github.com/draftarena/backend/internal/models"
	"github.com/draftarena/backend/internal/room"
)

type Msg interface{ isHubMsg() }

// Ensure returns the room for Game, creating it from the supplied
// durable state if absent. Callers load Series/Game from the store
// first so the hub loop never blocks on IO.
type Ensure struct {
	Series *models.Series
	Game   *models.Game
	Reply  chan *room.Room
}

type Get struct {
	GameID string
	Reply  chan *room.Room
}

type Remove struct{ GameID string }

type Shutdown struct{}

func (Ensure) isHubMsg()   {}
func (Get) isHubMsg()      {}
func (Remove) isHubMsg()   {}
func (Shutdown) isHubMsg() {}

type Hub struct {
	inbox       chan Msg
	rooms       map[string]*room.Room
	orc         *draft.Orchestrator
	clock       clockwork.Clock
	turnSeconds int
	log         *zap.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

func New(parent context.Context, orc *draft.Orchestrator, clock clockwork.Clock, turnSeconds int, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:       make(chan Msg, 64),
		rooms:       make(map[string]*room.Room),
		orc:         orc,
		clock:       clock,
		turnSeconds: turnSeconds,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- Msg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Ensure:
				if rm := h.rooms[msg.Game.ID]; rm != nil {
					msg.Reply <- rm
					break
				}
				gameID := msg.Game.ID
				rm := room.New(h.ctx, h.orc, h.clock, h.turnSeconds, msg.Series, msg.Game,
					func() {
						select {
						case h.inbox <- Remove{GameID: gameID}:
						default:
						}
					},
					h.log.With(zap.String("game", gameID)))
				h.rooms[gameID] = rm
				h.log.Info("room opened", zap.String("game", gameID))
				msg.Reply <- rm

			case Get:
				msg.Reply <- h.rooms[msg.GameID] // may be nil

			case Remove:
				if rm := h.rooms[msg.GameID]; rm != nil {
					delete(h.rooms, msg.GameID)
					select {
					case rm.Inbox() <- room.Shutdown{}:
					default:
					}
					h.log.Info("room closed", zap.String("game", msg.GameID))
				}

			case Shutdown:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for id, rm := range h.rooms {
		select {
		case rm.Inbox() <- room.Shutdown{}:
		default:
		}
		delete(h.rooms, id)
	}
	h.cancel()
}
