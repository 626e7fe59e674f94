// Package room hosts the per-game actor. One goroutine owns a game's
// ephemeral state (ready flags, previews, turn timer, connected sessions)
// and serializes every intent for that game, so two racing commits can
// never both pass validation against a stale read. Different rooms run
// independently.
package room

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/draftarena/backend/internal/draft"
	"github.com/draftarena/backend/internal/engine"
	"github.com/draftarena/backend/internal/models"
	"github.com/draftarena/backend/internal/timer"
	"github.com/draftarena/backend/internal/types"
)

type Msg interface{ isRoomMsg() }

type Join struct {
	ClientID string
	Outbox   chan types.ServerMessage
}

type Leave struct{ ClientID string }

// Intent carries one decoded client message into the room loop.
type Intent struct {
	ClientID string
	Msg      types.ClientMessage
}

type Shutdown struct{}

// GetState reflects internal state without data races; used by tests.
type GetState struct{ Reply chan View }

type timerTick struct{ remaining int }

func (Join) isRoomMsg()      {}
func (Leave) isRoomMsg()     {}
func (Intent) isRoomMsg()    {}
func (Shutdown) isRoomMsg()  {}
func (GetState) isRoomMsg()  {}
func (timerTick) isRoomMsg() {}

type View struct {
	Version    int
	NumClients int
	GameStatus engine.GameStatus
	Ready      map[engine.Side]bool
	Previews   map[int]string
	Remaining  int
}

type Room struct {
	inbox    chan Msg
	orc      *draft.Orchestrator
	clock    clockwork.Clock
	series   *models.Series
	game     *models.Game
	ready    map[engine.Side]bool
	previews map[int]string
	turn     *timer.Timer
	version  int
	clients  map[string]chan types.ServerMessage
	onEmpty  func()
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

// New spawns the room loop. onEmpty runs (inside the loop) when the last
// session leaves; the hub uses it to discard the room.
func New(parent context.Context, orc *draft.Orchestrator, clock clockwork.Clock, turnSeconds int, series *models.Series, game *models.Game, onEmpty func(), log *zap.Logger) *Room {
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		inbox:    make(chan Msg, 64),
		orc:      orc,
		clock:    clock,
		series:   series,
		game:     game,
		ready:    make(map[engine.Side]bool),
		previews: make(map[int]string),
		clients:  make(map[string]chan types.ServerMessage),
		onEmpty:  onEmpty,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
	r.turn = timer.New(clock, turnSeconds, r.postTick)
	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) GameID() string { return r.game.ID }

// postTick runs on the timer goroutine; it only forwards the tick into
// the inbox so all state access stays on the loop.
func (r *Room) postTick(remaining int) {
	select {
	case r.inbox <- timerTick{remaining: remaining}:
	case <-r.ctx.Done():
	}
}

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.clients[msg.ClientID] = msg.Outbox
				r.sendTo(msg.ClientID, types.ServerMessage{
					Type:     types.EvtSnapshot,
					Version:  r.version,
					GameID:   r.game.ID,
					Snapshot: r.snapshot(),
				})

			case Leave:
				delete(r.clients, msg.ClientID)
				if len(r.clients) == 0 && r.onEmpty != nil {
					r.onEmpty()
				}

			case Intent:
				r.handleIntent(msg)

			case timerTick:
				remaining := msg.remaining
				r.broadcast(types.ServerMessage{
					Type:      types.EvtTimeRemaining,
					GameID:    r.game.ID,
					Remaining: &remaining,
				})
				if remaining <= 0 {
					// Expiry is a signal only; nothing is forfeited.
					r.log.Info("turn timer expired", zap.String("game", r.game.ID))
				}

			case GetState:
				msg.Reply <- View{
					Version:    r.version,
					NumClients: len(r.clients),
					GameStatus: r.game.Status,
					Ready:      copyReady(r.ready),
					Previews:   copyPreviews(r.previews),
					Remaining:  r.turn.Remaining(),
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) handleIntent(m Intent) {
	cm := m.Msg
	switch cm.Type {
	case types.MsgSelectSide:
		r.handleSelectSide(m)
	case types.MsgReady:
		r.handleReady(m)
	case types.MsgPreview:
		r.handlePreview(m)
	case types.MsgAction:
		r.handleAction(m)
	case types.MsgSetResult:
		r.handleSetResult(m)
	default:
		r.reject(m.ClientID, "unknown intent")
	}
}

func (r *Room) handleSelectSide(m Intent) {
	color := m.Msg.Color
	if color != engine.SideBlue && color != engine.SideRed {
		r.reject(m.ClientID, "invalid color choice")
		return
	}
	game, err := r.orc.SelectSide(r.ctx, r.series.ID, r.game.Number, m.Msg.Token, color)
	if err != nil {
		r.rejectErr(m.ClientID, err)
		return
	}
	r.game.BlueTeam = game.BlueTeam
	r.game.RedTeam = game.RedTeam
	r.version++
	r.broadcast(types.ServerMessage{
		Type:     types.EvtSnapshot,
		Version:  r.version,
		GameID:   r.game.ID,
		Snapshot: r.snapshot(),
	})
}

func (r *Room) handleReady(m Intent) {
	team, ok := r.series.TeamForToken(m.Msg.Token)
	if !ok {
		r.reject(m.ClientID, "invalid team token")
		return
	}
	side, ok := r.game.TeamSide(team)
	if !ok {
		r.reject(m.ClientID, "sides not assigned yet")
		return
	}
	if r.game.Status != engine.GamePending {
		// Draft already started (or further along); ready map was
		// consumed, extra ready intents are inert.
		return
	}

	r.ready[side] = m.Msg.Ready
	r.version++
	r.broadcast(types.ServerMessage{
		Type:    types.EvtReadyState,
		Version: r.version,
		GameID:  r.game.ID,
		Ready:   copyReady(r.ready),
	})

	if !r.ready[engine.SideBlue] || !r.ready[engine.SideRed] {
		return
	}

	game, err := r.orc.StartDraft(r.ctx, r.series, r.game.ID)
	if err != nil {
		r.log.Error("draft start failed", zap.String("game", r.game.ID), zap.Error(err))
		r.reject(m.ClientID, "draft start failed")
		return
	}
	r.game.Status = game.Status
	r.ready = make(map[engine.Side]bool)
	r.turn.Start()

	now := r.clock.Now()
	r.version++
	r.broadcast(types.ServerMessage{
		Type:      types.EvtDraftStarted,
		Version:   r.version,
		GameID:    r.game.ID,
		StartedAt: &now,
	})
}

func (r *Room) handlePreview(m Intent) {
	if _, ok := r.authSide(m.Msg.Token); !ok {
		r.reject(m.ClientID, "invalid team token")
		return
	}
	pos := m.Msg.Position
	if _, ok := engine.EntryAt(pos); !ok {
		r.reject(m.ClientID, "invalid slot")
		return
	}
	if m.Msg.Champion == "" {
		delete(r.previews, pos)
	} else {
		r.previews[pos] = m.Msg.Champion
	}
	// One-way to peers: the previewing client already renders its own
	// hover locally.
	r.broadcastExcept(m.ClientID, types.ServerMessage{
		Type:     types.EvtPreview,
		GameID:   r.game.ID,
		Position: &pos,
		Champion: m.Msg.Champion,
	})
}

func (r *Room) handleAction(m Intent) {
	side, ok := r.authSide(m.Msg.Token)
	if !ok {
		r.reject(m.ClientID, "invalid team token")
		return
	}
	if m.Msg.Side != "" && m.Msg.Side != side {
		r.reject(m.ClientID, "token does not hold that side")
		return
	}

	cand := engine.Candidate{Side: side, Champion: m.Msg.Champion, Position: m.Msg.Position}
	action, game, err := r.orc.CommitAction(r.ctx, r.series, r.game, cand)
	switch {
	case err == nil:
	case isLegality(err):
		r.rejectErr(m.ClientID, err)
		return
	default:
		// Durable write failed: the transition did not happen, so no
		// broadcast either.
		r.log.Error("commit failed", zap.String("game", r.game.ID), zap.Error(err))
		r.sendTo(m.ClientID, types.ServerMessage{Type: types.EvtError, Reason: "internal error"})
		return
	}

	r.game.Actions = append(r.game.Actions, *action)
	delete(r.previews, action.Position)
	r.version++
	r.broadcast(types.ServerMessage{
		Type:    types.EvtActionCommitted,
		Version: r.version,
		GameID:  r.game.ID,
		Action:  action,
	})

	if game.Status == engine.GameDraftComplete {
		r.game.Status = game.Status
		r.turn.Cancel()
		r.version++
		r.broadcast(types.ServerMessage{
			Type:    types.EvtGameUpdated,
			Version: r.version,
			GameID:  r.game.ID,
			Status:  string(game.Status),
		})
		return
	}
	r.turn.Reset()
}

func (r *Room) handleSetResult(m Intent) {
	if _, ok := r.authSide(m.Msg.Token); !ok {
		r.reject(m.ClientID, "invalid team token")
		return
	}
	winner := m.Msg.Winner
	if winner != engine.SideBlue && winner != engine.SideRed {
		r.reject(m.ClientID, "invalid winner")
		return
	}

	game, progress, err := r.orc.SetResult(r.ctx, r.series, r.game, winner)
	if err != nil {
		if errors.Is(err, draft.ErrResultNotReady) {
			r.rejectErr(m.ClientID, err)
			return
		}
		r.log.Error("set result failed", zap.String("game", r.game.ID), zap.Error(err))
		r.sendTo(m.ClientID, types.ServerMessage{Type: types.EvtError, Reason: "internal error"})
		return
	}

	r.game.Status = game.Status
	r.game.Winner = game.Winner
	r.version++
	r.broadcast(types.ServerMessage{
		Type:    types.EvtGameUpdated,
		Version: r.version,
		GameID:  r.game.ID,
		Status:  string(game.Status),
		Winner:  string(game.Winner),
	})

	r.series = progress.Series
	if progress.NextGame != nil {
		r.version++
		r.broadcast(types.ServerMessage{
			Type:       types.EvtGameCreated,
			Version:    r.version,
			SeriesID:   r.series.ID,
			GameNumber: progress.NextGame.Number,
		})
	}
	if progress.Series.Status == models.SeriesCompleted {
		r.version++
		r.broadcast(types.ServerMessage{
			Type:     types.EvtSeriesUpdated,
			Version:  r.version,
			SeriesID: r.series.ID,
			Status:   string(progress.Series.Status),
			Winner:   progress.Series.Winner,
		})
	}
}

// authSide resolves a team token to the color that team holds in this
// game.
func (r *Room) authSide(token string) (engine.Side, bool) {
	team, ok := r.series.TeamForToken(token)
	if !ok {
		return "", false
	}
	return r.game.TeamSide(team)
}

func isLegality(err error) bool {
	return errors.Is(err, engine.ErrNotActive) ||
		errors.Is(err, engine.ErrChampionUsed) ||
		errors.Is(err, engine.ErrFearlessUsed) ||
		errors.Is(err, engine.ErrWrongTurn) ||
		errors.Is(err, engine.ErrWrongSlot) ||
		errors.Is(err, engine.ErrUnknownChampion)
}

func (r *Room) snapshot() *types.Snapshot {
	return &types.Snapshot{
		SeriesID:     r.series.ID,
		SeriesStatus: r.series.Status,
		SeriesWinner: r.series.Winner,
		GameID:       r.game.ID,
		GameNumber:   r.game.Number,
		BlueTeam:     r.game.BlueTeam,
		RedTeam:      r.game.RedTeam,
		Status:       r.game.Status,
		Winner:       r.game.Winner,
		Fearless:     r.series.Fearless,
		Actions:      append([]models.DraftAction(nil), r.game.Actions...),
		Ready:        copyReady(r.ready),
		Previews:     copyPreviews(r.previews),
		Remaining:    r.turn.Remaining(),
	}
}

// reject tells only the originating session why its intent was refused.
func (r *Room) reject(clientID, reason string) {
	r.sendTo(clientID, types.ServerMessage{
		Type:   types.EvtRejected,
		GameID: r.game.ID,
		Reason: reason,
	})
}

func (r *Room) rejectErr(clientID string, err error) {
	r.reject(clientID, err.Error())
}

func (r *Room) sendTo(clientID string, msg types.ServerMessage) {
	ch, ok := r.clients[clientID]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		close(ch)
		delete(r.clients, clientID)
	}
}

func (r *Room) broadcast(msg types.ServerMessage) {
	r.broadcastExcept("", msg)
}

func (r *Room) broadcastExcept(skipID string, msg types.ServerMessage) {
	for id, ch := range r.clients {
		if id == skipID {
			continue
		}
		select {
		case ch <- msg:
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(r.clients, id)
		}
	}
}

func (r *Room) shutdown() {
	r.turn.Cancel()
	for id, ch := range r.clients {
		close(ch)
		delete(r.clients, id)
	}
	r.cancel()
}

func copyReady(m map[engine.Side]bool) map[engine.Side]bool {
	out := make(map[engine.Side]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyPreviews(m map[int]string) map[int]string {
	out := make(map[int]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
