package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/draftarena/backend/internal/engine"
	"github.com/draftarena/backend/internal/models"
)

// Memory is an in-process Store used by tests. It applies the same
// write-time checks as the gorm implementation.
type Memory struct {
	mu      sync.Mutex
	series  map[string]*models.Series
	games   map[string]*models.Game
	actions map[string][]models.DraftAction // gameID -> ordered by position
}

func NewMemory() *Memory {
	return &Memory{
		series:  make(map[string]*models.Series),
		games:   make(map[string]*models.Game),
		actions: make(map[string][]models.DraftAction),
	}
}

func (m *Memory) CreateSeries(_ context.Context, p CreateSeriesParams) (*models.Series, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	series := models.NewSeries(p.Team1, p.Team2, p.Name, p.Format, p.Fearless, p.ScrimBlock)
	m.series[series.ID] = series
	for i := range series.Games {
		g := series.Games[i]
		m.games[g.ID] = &g
	}
	out := *series
	return &out, nil
}

func (m *Memory) GetSeries(_ context.Context, id string) (*models.Series, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	series, ok := m.series[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *series
	out.Games = nil
	var games []*models.Game
	for _, g := range m.games {
		if g.SeriesID == id {
			games = append(games, g)
		}
	}
	sort.Slice(games, func(i, j int) bool { return games[i].Number < games[j].Number })
	for _, g := range games {
		cp := *g
		cp.Actions = append([]models.DraftAction(nil), m.actions[g.ID]...)
		out.Games = append(out.Games, cp)
	}
	return &out, nil
}

func (m *Memory) GetGame(_ context.Context, seriesID string, number int) (*models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.games {
		if g.SeriesID == seriesID && g.Number == number {
			return m.copyGame(g), nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) GetGameByID(_ context.Context, id string) (*models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return m.copyGame(g), nil
}

func (m *Memory) CreateGame(_ context.Context, seriesID string, number int, blueTeam, redTeam string) (*models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.series[seriesID]; !ok {
		return nil, ErrNotFound
	}
	game := &models.Game{
		ID:       uuid.NewString(),
		SeriesID: seriesID,
		Number:   number,
		BlueTeam: blueTeam,
		RedTeam:  redTeam,
		Status:   engine.GamePending,
	}
	m.games[game.ID] = game
	out := *game
	return &out, nil
}

func (m *Memory) UpdateGameSides(_ context.Context, gameID, blueTeam, redTeam string) (*models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	if g.SidesAssigned() {
		return nil, ErrConflict
	}
	g.BlueTeam = blueTeam
	g.RedTeam = redTeam
	return m.copyGame(g), nil
}

func (m *Memory) UpdateGameStatus(_ context.Context, gameID string, status engine.GameStatus, winner engine.Side) (*models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	g.Status = status
	if winner != "" {
		g.Winner = winner
	}
	return m.copyGame(g), nil
}

func (m *Memory) CreateDraftAction(_ context.Context, gameID string, kind engine.Kind, phase int, side engine.Side, champion string, position int) (*models.DraftAction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	if g.Status != engine.GameInProgress {
		return nil, ErrConflict
	}
	committed := m.actions[gameID]
	if len(committed) != position {
		return nil, ErrConflict
	}
	for _, a := range committed {
		if a.Champion == champion {
			return nil, ErrConflict
		}
	}
	action := models.DraftAction{
		ID:       uuid.NewString(),
		GameID:   gameID,
		Kind:     kind,
		Phase:    phase,
		Side:     side,
		Champion: champion,
		Position: position,
	}
	m.actions[gameID] = append(committed, action)
	out := action
	return &out, nil
}

func (m *Memory) UpdateSeriesStatus(ctx context.Context, seriesID string, status models.SeriesStatus, winner string) (*models.Series, error) {
	m.mu.Lock()
	s, ok := m.series[seriesID]
	if !ok {
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	s.Status = status
	if winner != "" {
		s.Winner = winner
	}
	m.mu.Unlock()
	return m.GetSeries(ctx, seriesID)
}

func (m *Memory) copyGame(g *models.Game) *models.Game {
	out := *g
	out.Actions = append([]models.DraftAction(nil), m.actions[g.ID]...)
	return &out
}
