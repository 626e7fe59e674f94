// Package store is the durable boundary of the draft service. The
// orchestrator only sees the Store interface; Gorm is the production
// implementation and Memory backs tests.
package store

import (
	"context"
	"errors"

	"github.com/draftarena/backend/internal/engine"
	"github.com/draftarena/backend/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict covers writes that lost a race: slot already filled,
	// champion already used, sides already assigned.
	ErrConflict = errors.New("conflict")
)

type CreateSeriesParams struct {
	Team1      string
	Team2      string
	Name       string
	Format     models.Format
	Fearless   bool
	ScrimBlock bool
}

type Store interface {
	// CreateSeries persists a new series together with its first game.
	CreateSeries(ctx context.Context, p CreateSeriesParams) (*models.Series, error)
	// GetSeries loads a series with its games and their actions nested.
	GetSeries(ctx context.Context, id string) (*models.Series, error)
	// GetGame loads one game of a series by its 1-based number.
	GetGame(ctx context.Context, seriesID string, number int) (*models.Game, error)
	// GetGameByID loads a game with its actions.
	GetGameByID(ctx context.Context, id string) (*models.Game, error)
	// CreateGame appends the next game of a series.
	CreateGame(ctx context.Context, seriesID string, number int, blueTeam, redTeam string) (*models.Game, error)
	// UpdateGameSides assigns blue/red team names. Fails with ErrConflict
	// once either side is set.
	UpdateGameSides(ctx context.Context, gameID, blueTeam, redTeam string) (*models.Game, error)
	// UpdateGameStatus moves a game forward; winner only applies on the
	// completed transition.
	UpdateGameStatus(ctx context.Context, gameID string, status engine.GameStatus, winner engine.Side) (*models.Game, error)
	// CreateDraftAction commits one ban or pick. It re-checks slot
	// continuity and champion uniqueness inside the write so a duplicate
	// submission that slipped past the room layer still fails.
	CreateDraftAction(ctx context.Context, gameID string, kind engine.Kind, phase int, side engine.Side, champion string, position int) (*models.DraftAction, error)
	// UpdateSeriesStatus moves a series forward; winner is the team name
	// on the completed transition.
	UpdateSeriesStatus(ctx context.Context, seriesID string, status models.SeriesStatus, winner string) (*models.Series, error)
}
