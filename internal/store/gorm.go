package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/draftarena/backend/internal/engine"
	"github.com/draftarena/backend/internal/models"
)

// Gorm is the postgres-backed Store.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// Migrate creates/updates the schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Series{}, &models.Game{}, &models.DraftAction{})
}

func (s *Gorm) CreateSeries(ctx context.Context, p CreateSeriesParams) (*models.Series, error) {
	series := models.NewSeries(p.Team1, p.Team2, p.Name, p.Format, p.Fearless, p.ScrimBlock)
	if err := s.db.WithContext(ctx).Create(series).Error; err != nil {
		return nil, fmt.Errorf("create series: %w", err)
	}
	return series, nil
}

func (s *Gorm) GetSeries(ctx context.Context, id string) (*models.Series, error) {
	var series models.Series
	err := s.db.WithContext(ctx).
		Preload("Games", func(db *gorm.DB) *gorm.DB { return db.Order("number ASC") }).
		Preload("Games.Actions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&series, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get series: %w", err)
	}
	return &series, nil
}

func (s *Gorm) GetGame(ctx context.Context, seriesID string, number int) (*models.Game, error) {
	var game models.Game
	err := s.db.WithContext(ctx).
		Preload("Actions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&game, "series_id = ? AND number = ?", seriesID, number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	return &game, nil
}

func (s *Gorm) GetGameByID(ctx context.Context, id string) (*models.Game, error) {
	var game models.Game
	err := s.db.WithContext(ctx).
		Preload("Actions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&game, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	return &game, nil
}

func (s *Gorm) CreateGame(ctx context.Context, seriesID string, number int, blueTeam, redTeam string) (*models.Game, error) {
	game := &models.Game{
		ID:       uuid.NewString(),
		SeriesID: seriesID,
		Number:   number,
		BlueTeam: blueTeam,
		RedTeam:  redTeam,
		Status:   engine.GamePending,
	}
	if err := s.db.WithContext(ctx).Create(game).Error; err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	return game, nil
}

func (s *Gorm) UpdateGameSides(ctx context.Context, gameID, blueTeam, redTeam string) (*models.Game, error) {
	var game models.Game
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&game, "id = ?", gameID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if game.SidesAssigned() {
			return ErrConflict
		}
		game.BlueTeam = blueTeam
		game.RedTeam = redTeam
		return tx.Model(&game).Updates(map[string]any{
			"blue_team": blueTeam,
			"red_team":  redTeam,
		}).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("update game sides: %w", err)
	}
	return &game, nil
}

func (s *Gorm) UpdateGameStatus(ctx context.Context, gameID string, status engine.GameStatus, winner engine.Side) (*models.Game, error) {
	var game models.Game
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&game, "id = ?", gameID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		updates := map[string]any{"status": status}
		if winner != "" {
			updates["winner"] = winner
		}
		game.Status = status
		if winner != "" {
			game.Winner = winner
		}
		return tx.Model(&game).Updates(updates).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update game status: %w", err)
	}
	return &game, nil
}

func (s *Gorm) CreateDraftAction(ctx context.Context, gameID string, kind engine.Kind, phase int, side engine.Side, champion string, position int) (*models.DraftAction, error) {
	action := &models.DraftAction{
		ID:       uuid.NewString(),
		GameID:   gameID,
		Kind:     kind,
		Phase:    phase,
		Side:     side,
		Champion: champion,
		Position: position,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var game models.Game
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&game, "id = ?", gameID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if game.Status != engine.GameInProgress {
			return ErrConflict
		}
		var committed int64
		if err := tx.Model(&models.DraftAction{}).
			Where("game_id = ?", gameID).Count(&committed).Error; err != nil {
			return err
		}
		if int(committed) != position {
			return ErrConflict
		}
		var used int64
		if err := tx.Model(&models.DraftAction{}).
			Where("game_id = ? AND champion = ?", gameID, champion).
			Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			return ErrConflict
		}
		return tx.Create(action).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("create draft action: %w", err)
	}
	return action, nil
}

func (s *Gorm) UpdateSeriesStatus(ctx context.Context, seriesID string, status models.SeriesStatus, winner string) (*models.Series, error) {
	updates := map[string]any{"status": status}
	if winner != "" {
		updates["winner"] = winner
	}
	res := s.db.WithContext(ctx).Model(&models.Series{}).
		Where("id = ?", seriesID).Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("update series: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetSeries(ctx, seriesID)
}
