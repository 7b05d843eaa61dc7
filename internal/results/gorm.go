package results

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type gameRecord struct {
	ID         uint      `gorm:"primaryKey"`
	Code       string    `gorm:"size:16;index"`
	FinishedAt time.Time `gorm:"index"`
	Tied       bool
	Players    []playerRecord `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE"`
}

func (gameRecord) TableName() string { return "games" }

type playerRecord struct {
	ID        uint `gorm:"primaryKey"`
	GameID    uint `gorm:"index"`
	Seat      int
	Name      string `gorm:"size:64"`
	Score     int
	Winner    bool
	Scorecard string `gorm:"type:text"`
}

func (playerRecord) TableName() string { return "game_players" }

// GormStore persists results in Postgres.
type GormStore struct {
	db *gorm.DB
}

func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	return db, nil
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&gameRecord{}, &playerRecord{}); err != nil {
		return nil, fmt.Errorf("migrating results tables: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) RecordGame(ctx context.Context, g GameResult) error {
	rec, err := toRecord(g)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("inserting game %s: %w", g.Code, err)
	}
	return nil
}

func (s *GormStore) RecentGames(ctx context.Context, limit int) ([]GameResult, error) {
	var recs []gameRecord
	err := s.db.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB { return db.Order("seat") }).
		Order("finished_at desc").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}

	out := make([]GameResult, 0, len(recs))
	for _, rec := range recs {
		g, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func toRecord(g GameResult) (gameRecord, error) {
	rec := gameRecord{Code: g.Code, FinishedAt: g.FinishedAt, Tied: g.Tied}
	for seat, p := range g.Players {
		card, err := json.Marshal(p.Scorecard)
		if err != nil {
			return gameRecord{}, fmt.Errorf("encoding scorecard: %w", err)
		}
		rec.Players = append(rec.Players, playerRecord{
			Seat:      seat,
			Name:      p.Name,
			Score:     p.Score,
			Winner:    p.Winner,
			Scorecard: string(card),
		})
	}
	return rec, nil
}

func fromRecord(rec gameRecord) (GameResult, error) {
	g := GameResult{Code: rec.Code, FinishedAt: rec.FinishedAt, Tied: rec.Tied}
	for _, p := range rec.Players {
		card := map[string]int{}
		if p.Scorecard != "" {
			if err := json.Unmarshal([]byte(p.Scorecard), &card); err != nil {
				return GameResult{}, fmt.Errorf("decoding scorecard for game %d: %w", rec.ID, err)
			}
		}
		g.Players = append(g.Players, PlayerResult{
			Name:      p.Name,
			Score:     p.Score,
			Scorecard: card,
			Winner:    p.Winner,
		})
	}
	return g, nil
}
