package draft

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/draftarena/backend/internal/engine"
	"github.com/draftarena/backend/internal/models"
	"github.com/draftarena/backend/internal/store"
)

func setup(t *testing.T, format models.Format, fearless bool) (*Orchestrator, *store.Memory, *models.Series) {
	t.Helper()
	mem := store.NewMemory()
	series, err := mem.CreateSeries(context.Background(), store.CreateSeriesParams{
		Team1:    "Cloud9",
		Team2:    "Fnatic",
		Name:     "Weekly Scrim",
		Format:   format,
		Fearless: fearless,
	})
	require.NoError(t, err)
	orc := NewOrchestrator(mem, nil, zap.NewNop())
	return orc, mem, series
}

func TestSelectSide(t *testing.T) {
	cases := []struct {
		name     string
		token    func(s *models.Series) string
		color    engine.Side
		wantBlue string
		wantRed  string
	}{
		{
			name:     "team1 takes blue",
			token:    func(s *models.Series) string { return s.Team1Token },
			color:    engine.SideBlue,
			wantBlue: "Cloud9",
			wantRed:  "Fnatic",
		},
		{
			name:     "team1 takes red",
			token:    func(s *models.Series) string { return s.Team1Token },
			color:    engine.SideRed,
			wantBlue: "Fnatic",
			wantRed:  "Cloud9",
		},
		{
			name:     "team2 takes blue",
			token:    func(s *models.Series) string { return s.Team2Token },
			color:    engine.SideBlue,
			wantBlue: "Fnatic",
			wantRed:  "Cloud9",
		},
		{
			name:     "team2 takes red",
			token:    func(s *models.Series) string { return s.Team2Token },
			color:    engine.SideRed,
			wantBlue: "Cloud9",
			wantRed:  "Fnatic",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orc, _, series := setup(t, models.FormatBo1, false)
			game, err := orc.SelectSide(context.Background(), series.ID, 1, tc.token(series), tc.color)
			require.NoError(t, err)
			require.Equal(t, tc.wantBlue, game.BlueTeam)
			require.Equal(t, tc.wantRed, game.RedTeam)
		})
	}
}

func TestSelectSide_BadToken(t *testing.T) {
	orc, _, series := setup(t, models.FormatBo1, false)
	_, err := orc.SelectSide(context.Background(), series.ID, 1, "forged", engine.SideBlue)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestSelectSide_RejectedOnceAssigned(t *testing.T) {
	orc, _, series := setup(t, models.FormatBo1, false)
	ctx := context.Background()

	_, err := orc.SelectSide(ctx, series.ID, 1, series.Team1Token, engine.SideBlue)
	require.NoError(t, err)

	_, err = orc.SelectSide(ctx, series.ID, 1, series.Team2Token, engine.SideBlue)
	require.ErrorIs(t, err, ErrSidesAssigned)
}

func TestSelectSide_UnknownSeries(t *testing.T) {
	orc, _, _ := setup(t, models.FormatBo1, false)
	_, err := orc.SelectSide(context.Background(), "nope", 1, "x", engine.SideBlue)
	require.ErrorIs(t, err, ErrNotFound)
}

// startGame drives a game to in-progress with sides assigned.
func startGame(t *testing.T, orc *Orchestrator, mem *store.Memory, series *models.Series, blue, red string) *models.Game {
	t.Helper()
	ctx := context.Background()
	fresh, err := mem.GetSeries(ctx, series.ID)
	require.NoError(t, err)
	game := &fresh.Games[len(fresh.Games)-1]
	if !game.SidesAssigned() {
		_, err = mem.UpdateGameSides(ctx, game.ID, blue, red)
		require.NoError(t, err)
	}
	started, err := orc.StartDraft(ctx, fresh, game.ID)
	require.NoError(t, err)
	started.Actions = game.Actions
	return started
}

// runDraft commits all 20 actions using champs[i] at position i.
func runDraft(t *testing.T, orc *Orchestrator, series *models.Series, game *models.Game, champs []string) *models.Game {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < engine.TotalSteps; i++ {
		step, _ := engine.EntryAt(i)
		action, updated, err := orc.CommitAction(ctx, series, game, engine.Candidate{
			Side: step.Side, Champion: champs[i], Position: i,
		})
		require.NoError(t, err, "position %d", i)
		game.Actions = append(game.Actions, *action)
		game.Status = updated.Status
	}
	require.Equal(t, engine.GameDraftComplete, game.Status)
	return game
}

func draftChamps(offset int) []string {
	out := make([]string, engine.TotalSteps)
	roster := []string{
		"Aatrox", "Ahri", "Akali", "Alistar", "Amumu", "Anivia", "Annie",
		"Ashe", "Azir", "Bard", "Blitzcrank", "Brand", "Braum", "Caitlyn",
		"Camille", "Corki", "Darius", "Diana", "Draven", "Ekko", "Elise",
		"Evelynn", "Ezreal", "Fiddlesticks", "Fiora", "Fizz", "Galio",
		"Gangplank", "Garen", "Gnar", "Gragas", "Graves", "Gwen", "Hecarim",
		"Heimerdinger", "Illaoi", "Irelia", "Ivern", "Janna", "JarvanIV",
	}
	for i := range out {
		out[i] = roster[(offset+i)%len(roster)]
	}
	return out
}

func TestCommitAction_FullDraft(t *testing.T) {
	orc, mem, series := setup(t, models.FormatBo1, false)
	game := startGame(t, orc, mem, series, "Cloud9", "Fnatic")
	runDraft(t, orc, series, game, draftChamps(0))

	stored, err := mem.GetGameByID(context.Background(), game.ID)
	require.NoError(t, err)
	require.Len(t, stored.Actions, engine.TotalSteps)
	for i, a := range stored.Actions {
		step, _ := engine.EntryAt(i)
		require.Equal(t, i, a.Position)
		require.Equal(t, step.Kind, a.Kind)
		require.Equal(t, step.Side, a.Side)
		require.Equal(t, step.Phase, a.Phase)
	}
}

func TestCommitAction_RejectsWrongTurnAndDuplicates(t *testing.T) {
	orc, mem, series := setup(t, models.FormatBo1, false)
	game := startGame(t, orc, mem, series, "Cloud9", "Fnatic")
	ctx := context.Background()

	// Red does not open the draft.
	_, _, err := orc.CommitAction(ctx, series, game, engine.Candidate{
		Side: engine.SideRed, Champion: "Aatrox", Position: 0,
	})
	require.ErrorIs(t, err, engine.ErrWrongTurn)

	action, _, err := orc.CommitAction(ctx, series, game, engine.Candidate{
		Side: engine.SideBlue, Champion: "Aatrox", Position: 0,
	})
	require.NoError(t, err)
	game.Actions = append(game.Actions, *action)

	// Duplicate submission for the filled slot fails legality.
	_, _, err = orc.CommitAction(ctx, series, game, engine.Candidate{
		Side: engine.SideBlue, Champion: "Ahri", Position: 0,
	})
	require.ErrorIs(t, err, engine.ErrWrongSlot)

	// Same champion cannot appear twice in a game.
	_, _, err = orc.CommitAction(ctx, series, game, engine.Candidate{
		Side: engine.SideRed, Champion: "Aatrox", Position: 1,
	})
	require.ErrorIs(t, err, engine.ErrChampionUsed)
}

func TestCommitAction_UnknownChampion(t *testing.T) {
	orc, mem, series := setup(t, models.FormatBo1, false)
	orc.knownChamp = func(id string) bool { return id != "NotAChampion" }
	game := startGame(t, orc, mem, series, "Cloud9", "Fnatic")

	_, _, err := orc.CommitAction(context.Background(), series, game, engine.Candidate{
		Side: engine.SideBlue, Champion: "NotAChampion", Position: 0,
	})
	require.ErrorIs(t, err, engine.ErrUnknownChampion)
}

func TestFearless_BlocksGameOnePicksInGameTwo(t *testing.T) {
	orc, mem, series := setup(t, models.FormatBo3, true)
	ctx := context.Background()

	game1 := startGame(t, orc, mem, series, "Cloud9", "Fnatic")
	champs := draftChamps(0)
	runDraft(t, orc, series, game1, champs)

	_, progress, err := orc.SetResult(ctx, series, game1, engine.SideBlue)
	require.NoError(t, err)
	require.NotNil(t, progress.NextGame)

	fresh, err := mem.GetSeries(ctx, series.ID)
	require.NoError(t, err)
	game2 := startGame(t, orc, mem, fresh, "Fnatic", "Cloud9")

	// champs[6] was a pick in game 1: banned from picking again...
	pickedEarlier := champs[6]
	for i := 0; i < 6; i++ {
		step, _ := engine.EntryAt(i)
		action, _, err := orc.CommitAction(ctx, fresh, game2, engine.Candidate{
			Side: step.Side, Champion: draftChamps(25)[i], Position: i,
		})
		require.NoError(t, err)
		game2.Actions = append(game2.Actions, *action)
	}
	_, _, err = orc.CommitAction(ctx, fresh, game2, engine.Candidate{
		Side: engine.SideBlue, Champion: pickedEarlier, Position: 6,
	})
	require.ErrorIs(t, err, engine.ErrFearlessUsed)

	// ...but game-one bans are fair game again, and picks may be banned.
	bannedEarlier := champs[0]
	require.NotEqual(t, pickedEarlier, bannedEarlier)
	action, _, err := orc.CommitAction(ctx, fresh, game2, engine.Candidate{
		Side: engine.SideBlue, Champion: bannedEarlier, Position: 6,
	})
	require.NoError(t, err)
	require.Equal(t, engine.KindPick, action.Kind)
}

func TestSetResult_RequiresDraftComplete(t *testing.T) {
	orc, mem, series := setup(t, models.FormatBo1, false)
	game := startGame(t, orc, mem, series, "Cloud9", "Fnatic")

	_, _, err := orc.SetResult(context.Background(), series, game, engine.SideBlue)
	require.ErrorIs(t, err, ErrResultNotReady)
}
