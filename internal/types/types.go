package types

import (
	"time"

	"github.com/draftarena/backend/internal/engine"
	"github.com/draftarena/backend/internal/models"
)

// Client -> server intents.
const (
	MsgReady      = "ready"
	MsgPreview    = "previewChampion"
	MsgAction     = "draftAction"
	MsgSetResult  = "setResult"
	MsgSelectSide = "selectSide"
)

// Server -> client events.
const (
	EvtSnapshot        = "snapshot"
	EvtReadyState      = "readyStateUpdate"
	EvtDraftStarted    = "draftStarted"
	EvtActionCommitted = "draftActionCommitted"
	EvtTimeRemaining   = "timeRemaining"
	EvtGameUpdated     = "gameUpdated"
	EvtGameCreated     = "gameCreated"
	EvtSeriesUpdated   = "seriesUpdated"
	EvtPreview         = "championPreview"
	EvtRejected        = "rejected"
	EvtError           = "error"
)

// ClientMessage is the envelope every websocket intent arrives in. Which
// fields matter depends on Type; Token may also come from the connect URL.
type ClientMessage struct {
	Type     string      `json:"type"`
	Token    string      `json:"token,omitempty"`
	Side     engine.Side `json:"side,omitempty"`
	Ready    bool        `json:"ready,omitempty"`
	Kind     engine.Kind `json:"kind,omitempty"`
	Champion string      `json:"champion,omitempty"`
	Position int         `json:"position"`
	Winner   engine.Side `json:"winner,omitempty"`
	Color    engine.Side `json:"color,omitempty"`
}

// ServerMessage is the envelope for every room broadcast. Version is the
// room's monotonic event counter so clients can spot missed updates.
type ServerMessage struct {
	Type       string               `json:"type"`
	Version    int                  `json:"version,omitempty"`
	GameID     string               `json:"game_id,omitempty"`
	SeriesID   string               `json:"series_id,omitempty"`
	GameNumber int                  `json:"game_number,omitempty"`
	Ready      map[engine.Side]bool `json:"ready,omitempty"`
	StartedAt  *time.Time           `json:"started_at,omitempty"`
	Action     *models.DraftAction  `json:"action,omitempty"`
	Remaining  *int                 `json:"remaining,omitempty"`
	Status     string               `json:"status,omitempty"`
	Winner     string               `json:"winner,omitempty"`
	Position   *int                 `json:"position,omitempty"`
	Champion   string               `json:"champion,omitempty"`
	Snapshot   *Snapshot            `json:"snapshot,omitempty"`
	Reason     string               `json:"reason,omitempty"`
}

// Snapshot is the full room view sent on join and after side selection.
type Snapshot struct {
	SeriesID     string               `json:"series_id"`
	SeriesStatus models.SeriesStatus  `json:"series_status"`
	SeriesWinner string               `json:"series_winner,omitempty"`
	GameID       string               `json:"game_id"`
	GameNumber   int                  `json:"game_number"`
	BlueTeam     string               `json:"blue_team"`
	RedTeam      string               `json:"red_team"`
	Status       engine.GameStatus    `json:"status"`
	Winner       engine.Side          `json:"winner,omitempty"`
	Fearless     bool                 `json:"fearless"`
	Actions      []models.DraftAction `json:"actions"`
	Ready        map[engine.Side]bool `json:"ready,omitempty"`
	Previews     map[int]string       `json:"previews,omitempty"`
	Remaining    int                  `json:"remaining"`
}
