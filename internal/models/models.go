package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/draftarena/backend/internal/engine"
)

type Format string

const (
	FormatBo1 Format = "bo1"
	FormatBo3 Format = "bo3"
	FormatBo5 Format = "bo5"
)

func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case FormatBo1, FormatBo3, FormatBo5:
		return Format(s), true
	default:
		return "", false
	}
}

// GamesNeeded is the win count that closes a series of this format.
func (f Format) GamesNeeded() int {
	switch f {
	case FormatBo5:
		return 3
	case FormatBo3:
		return 2
	default:
		return 1
	}
}

// MaxGames is the most games a series of this format can hold.
func (f Format) MaxGames() int {
	switch f {
	case FormatBo5:
		return 5
	case FormatBo3:
		return 3
	default:
		return 1
	}
}

type SeriesStatus string

const (
	SeriesPending    SeriesStatus = "pending"
	SeriesInProgress SeriesStatus = "in_progress"
	SeriesCompleted  SeriesStatus = "completed"
)

// Series is a best-of-N match between two named teams. The two tokens are
// the per-team shared secrets embedded in each team's private URL; they are
// issued once at creation and never rotated.
type Series struct {
	ID         string       `gorm:"primaryKey;type:uuid" json:"id"`
	Name       string       `gorm:"not null" json:"name"`
	Slug       string       `gorm:"index" json:"slug"`
	Team1      string       `gorm:"not null" json:"team1"`
	Team2      string       `gorm:"not null" json:"team2"`
	Team1Token string       `gorm:"not null" json:"-"`
	Team2Token string       `gorm:"not null" json:"-"`
	Format     Format       `gorm:"type:varchar(8);default:'bo1'" json:"format"`
	Fearless   bool         `json:"fearless"`
	ScrimBlock bool         `json:"scrim_block"`
	Status     SeriesStatus `gorm:"type:varchar(16);default:'pending'" json:"status"`
	Winner     string       `json:"winner,omitempty"`
	Games      []Game       `gorm:"foreignKey:SeriesID" json:"games,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// NewSeries builds an unsaved series plus its first game.
func NewSeries(team1, team2, name string, format Format, fearless, scrimBlock bool) *Series {
	s := &Series{
		ID:         uuid.NewString(),
		Name:       name,
		Slug:       slug.Make(name),
		Team1:      team1,
		Team2:      team2,
		Team1Token: uuid.NewString(),
		Team2Token: uuid.NewString(),
		Format:     format,
		Fearless:   fearless,
		ScrimBlock: scrimBlock,
		Status:     SeriesPending,
	}
	s.Games = []Game{{
		ID:       uuid.NewString(),
		SeriesID: s.ID,
		Number:   1,
		Status:   engine.GamePending,
	}}
	return s
}

// TeamForToken resolves a token to the team name it authorizes.
func (s *Series) TeamForToken(token string) (string, bool) {
	switch {
	case token == "" || s == nil:
		return "", false
	case token == s.Team1Token:
		return s.Team1, true
	case token == s.Team2Token:
		return s.Team2, true
	default:
		return "", false
	}
}

// OtherTeam returns the opponent of team within the series.
func (s *Series) OtherTeam(team string) string {
	if team == s.Team1 {
		return s.Team2
	}
	return s.Team1
}

// Game is one drafted contest within a series. Blue/red team names start
// empty and are filled by side selection or by the progressor.
type Game struct {
	ID        string            `gorm:"primaryKey;type:uuid" json:"id"`
	SeriesID  string            `gorm:"index;not null;uniqueIndex:idx_series_game" json:"series_id"`
	Number    int               `gorm:"not null;uniqueIndex:idx_series_game" json:"number"`
	BlueTeam  string            `json:"blue_team"`
	RedTeam   string            `json:"red_team"`
	Status    engine.GameStatus `gorm:"type:varchar(16);default:'pending'" json:"status"`
	Winner    engine.Side       `gorm:"type:varchar(8)" json:"winner,omitempty"`
	Actions   []DraftAction     `gorm:"foreignKey:GameID" json:"actions,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// SidesAssigned reports whether side selection already happened.
func (g *Game) SidesAssigned() bool {
	return g.BlueTeam != "" || g.RedTeam != ""
}

// TeamSide maps a team name to the color it holds in this game.
func (g *Game) TeamSide(team string) (engine.Side, bool) {
	switch team {
	case "":
		return "", false
	case g.BlueTeam:
		return engine.SideBlue, true
	case g.RedTeam:
		return engine.SideRed, true
	default:
		return "", false
	}
}

// WinnerTeam resolves the winning side to a team name, empty if unset.
func (g *Game) WinnerTeam() string {
	switch g.Winner {
	case engine.SideBlue:
		return g.BlueTeam
	case engine.SideRed:
		return g.RedTeam
	default:
		return ""
	}
}

// Committed projects the game's actions into the validator's shape,
// ordered by position.
func (g *Game) Committed() []engine.Committed {
	out := make([]engine.Committed, 0, len(g.Actions))
	for _, a := range g.Actions {
		out = append(out, engine.Committed{
			Kind:     a.Kind,
			Side:     a.Side,
			Champion: a.Champion,
			Position: a.Position,
		})
	}
	return out
}

// DraftAction is one committed ban or pick. Immutable once written.
type DraftAction struct {
	ID        string      `gorm:"primaryKey;type:uuid" json:"id"`
	GameID    string      `gorm:"index;not null;uniqueIndex:idx_game_position" json:"game_id"`
	Kind      engine.Kind `gorm:"type:varchar(8);not null" json:"kind"`
	Phase     int         `gorm:"not null" json:"phase"`
	Side      engine.Side `gorm:"type:varchar(8);not null" json:"side"`
	Champion  string      `gorm:"not null" json:"champion"`
	Position  int         `gorm:"not null;uniqueIndex:idx_game_position" json:"position"`
	CreatedAt time.Time   `json:"created_at"`
}
