package draft

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/draftarena/backend/internal/engine"
	"github.com/draftarena/backend/internal/models"
)

// Progress is the outcome of advancing a series after a game result:
// either the series closed (Series.Status completed, NextGame nil) or a
// next game was created with sides swapped, or neither when the series
// simply continues on games already present.
type Progress struct {
	Series   *models.Series
	NextGame *models.Game
}

// AdvanceSeries recomputes win counts from completed games and either
// closes the series or spawns the next game. Wins accumulate per team
// name, not per color, since sides swap between games. The computation
// is re-invocable: a retry after a transient store failure closes the
// series or hands back the game an earlier run already created, never
// a duplicate.
func (o *Orchestrator) AdvanceSeries(ctx context.Context, seriesID string) (*Progress, error) {
	series, err := o.store.GetSeries(ctx, seriesID)
	if err != nil {
		return nil, fmt.Errorf("advance series: %w", err)
	}

	wins := map[string]int{}
	var last *models.Game
	for i := range series.Games {
		g := &series.Games[i]
		if g.Status != engine.GameCompleted {
			continue
		}
		if team := g.WinnerTeam(); team != "" {
			wins[team]++
		}
		last = g
	}

	needed := series.Format.GamesNeeded()
	for _, team := range []string{series.Team1, series.Team2} {
		if wins[team] >= needed {
			closed, err := o.store.UpdateSeriesStatus(ctx, series.ID, models.SeriesCompleted, team)
			if err != nil {
				return nil, fmt.Errorf("advance series: %w", err)
			}
			o.log.Info("series completed",
				zap.String("series", series.ID),
				zap.String("winner", team))
			return &Progress{Series: closed}, nil
		}
	}

	if last == nil {
		return &Progress{Series: series}, nil
	}

	// A game newer than the last completed one means an earlier advance
	// already spawned it; hand it back instead of duplicating it.
	if tail := series.Games[len(series.Games)-1]; tail.Number > last.Number {
		return &Progress{Series: series, NextGame: &tail}, nil
	}

	if len(series.Games) >= series.Format.MaxGames() {
		return &Progress{Series: series}, nil
	}

	// Swap colors from the game that just finished.
	next, err := o.store.CreateGame(ctx, series.ID, len(series.Games)+1, last.RedTeam, last.BlueTeam)
	if err != nil {
		return nil, fmt.Errorf("advance series: %w", err)
	}
	o.log.Info("next game created",
		zap.String("series", series.ID),
		zap.Int("number", next.Number))
	return &Progress{Series: series, NextGame: next}, nil
}
