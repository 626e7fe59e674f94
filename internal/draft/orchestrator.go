// Package draft holds the durable half of the draft state machine: side
// selection, draft start, action commits and result recording, plus the
// series progressor. The room actor serializes calls per game, so every
// method here runs with at-most-one writer for its game.
package draft

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/draftarena/backend/internal/engine"
	"github.com/draftarena/backend/internal/models"
	"github.com/draftarena/backend/internal/store"
)

var (
	ErrUnauthorized   = errors.New("invalid team token")
	ErrSidesAssigned  = errors.New("sides already assigned")
	ErrResultNotReady = errors.New("draft not complete")
	ErrNotFound       = errors.New("not found")
)

// ChampionCheck reports whether an identifier names a known champion.
type ChampionCheck func(id string) bool

type Orchestrator struct {
	store      store.Store
	knownChamp ChampionCheck
	log        *zap.Logger
}

func NewOrchestrator(st store.Store, knownChamp ChampionCheck, log *zap.Logger) *Orchestrator {
	if knownChamp == nil {
		knownChamp = func(string) bool { return true }
	}
	return &Orchestrator{store: st, knownChamp: knownChamp, log: log}
}

// SelectSide assigns blue/red team names on a game whose sides are still
// unset. The token holder takes the chosen color, the opponent the other.
func (o *Orchestrator) SelectSide(ctx context.Context, seriesID string, gameNumber int, token string, color engine.Side) (*models.Game, error) {
	series, err := o.store.GetSeries(ctx, seriesID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	team, ok := series.TeamForToken(token)
	if !ok {
		return nil, ErrUnauthorized
	}

	game, err := o.store.GetGame(ctx, seriesID, gameNumber)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if game.SidesAssigned() {
		return nil, ErrSidesAssigned
	}

	blue, red := team, series.OtherTeam(team)
	if color == engine.SideRed {
		blue, red = red, blue
	}
	updated, err := o.store.UpdateGameSides(ctx, game.ID, blue, red)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrSidesAssigned
		}
		return nil, fmt.Errorf("select side: %w", err)
	}
	o.log.Info("sides assigned",
		zap.String("game", game.ID),
		zap.String("blue", blue),
		zap.String("red", red))
	return updated, nil
}

// StartDraft moves a game to in-progress once both sides are ready. The
// series follows on its first started game. The series write lands
// first: if the game write then fails, an in-progress series with a
// pending game is harmless and a retried ready intent finishes the job.
func (o *Orchestrator) StartDraft(ctx context.Context, series *models.Series, gameID string) (*models.Game, error) {
	if series.Status == models.SeriesPending {
		if _, err := o.store.UpdateSeriesStatus(ctx, series.ID, models.SeriesInProgress, ""); err != nil {
			return nil, fmt.Errorf("start draft: %w", err)
		}
		series.Status = models.SeriesInProgress
	}
	game, err := o.store.UpdateGameStatus(ctx, gameID, engine.GameInProgress, "")
	if err != nil {
		return nil, fmt.Errorf("start draft: %w", err)
	}
	o.log.Info("draft started", zap.String("game", gameID))
	return game, nil
}

// CommitAction validates and persists one ban or pick. The returned game
// reflects any draft-complete transition.
func (o *Orchestrator) CommitAction(ctx context.Context, series *models.Series, game *models.Game, cand engine.Candidate) (*models.DraftAction, *models.Game, error) {
	if !o.knownChamp(cand.Champion) {
		return nil, nil, engine.ErrUnknownChampion
	}
	if err := engine.Validate(game.Status, game.Committed(), series.Fearless, o.fearlessPicks(series, game.Number), cand); err != nil {
		return nil, nil, err
	}

	step, _ := engine.EntryAt(cand.Position)
	action, err := o.store.CreateDraftAction(ctx, game.ID, step.Kind, step.Phase, cand.Side, cand.Champion, cand.Position)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, nil, engine.ErrWrongSlot
		}
		return nil, nil, fmt.Errorf("commit action: %w", err)
	}

	updated := game
	if cand.Position == engine.TotalSteps-1 {
		updated, err = o.store.UpdateGameStatus(ctx, game.ID, engine.GameDraftComplete, "")
		if err != nil {
			return nil, nil, fmt.Errorf("commit action: %w", err)
		}
	}
	return action, updated, nil
}

// fearlessPicks collects champions picked in games numbered below
// gameNumber. Bans never count.
func (o *Orchestrator) fearlessPicks(series *models.Series, gameNumber int) map[string]bool {
	picks := make(map[string]bool)
	for _, g := range series.Games {
		if g.Number >= gameNumber {
			continue
		}
		for _, a := range g.Actions {
			if a.Kind == engine.KindPick {
				picks[a.Champion] = true
			}
		}
	}
	return picks
}

// SetResult records a game winner and advances the series. A game
// already completed is accepted as a retry: the durable winner stands
// and only the series advance re-runs, so a transient advance failure
// never strands the series behind a recorded result.
func (o *Orchestrator) SetResult(ctx context.Context, series *models.Series, game *models.Game, winner engine.Side) (*models.Game, *Progress, error) {
	var updated *models.Game
	switch game.Status {
	case engine.GameDraftComplete:
		var err error
		updated, err = o.store.UpdateGameStatus(ctx, game.ID, engine.GameCompleted, winner)
		if err != nil {
			return nil, nil, fmt.Errorf("set result: %w", err)
		}
		o.log.Info("game result recorded",
			zap.String("game", game.ID),
			zap.String("winner", string(winner)))
	case engine.GameCompleted:
		updated = game
	default:
		return nil, nil, ErrResultNotReady
	}

	progress, err := o.AdvanceSeries(ctx, series.ID)
	if err != nil {
		return nil, nil, err
	}
	return updated, progress, nil
}
