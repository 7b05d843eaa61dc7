// Package results keeps a history of finished games. It is a record for
// leaderboards only; live rooms are never rebuilt from it.
package results

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/yahtzee-backend/internal/engine"
)

type PlayerResult struct {
	Name      string         `json:"name"`
	Score     int            `json:"score"`
	Scorecard map[string]int `json:"scorecard"`
	Winner    bool           `json:"winner"`
}

type GameResult struct {
	Code       string         `json:"code"`
	FinishedAt time.Time      `json:"finishedAt"`
	Tied       bool           `json:"tied"`
	Players    []PlayerResult `json:"players"`
}

type Store interface {
	RecordGame(ctx context.Context, g GameResult) error
	// RecentGames returns up to limit games, newest first.
	RecentGames(ctx context.Context, limit int) ([]GameResult, error)
}

// FromView builds the record of a finished game. Players keep join order.
func FromView(code string, finishedAt time.Time, v engine.View) GameResult {
	g := GameResult{Code: code, FinishedAt: finishedAt.UTC(), Tied: v.Tied}
	for _, p := range v.Players {
		card := make(map[string]int, len(p.Scorecard))
		for c, pts := range p.Scorecard {
			card[string(c)] = pts
		}
		g.Players = append(g.Players, PlayerResult{
			Name:      p.Name,
			Score:     p.Total,
			Scorecard: card,
			Winner:    v.Winner != nil && v.Winner.ID == p.ID,
		})
	}
	return g
}

// Recorder adapts a Store to the hub's game-over hook.
func Recorder(store Store, log *zap.Logger, timeout time.Duration) func(code string, final engine.View) {
	return func(code string, final engine.View) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := store.RecordGame(ctx, FromView(code, time.Now(), final)); err != nil {
			log.Error("recording game result", zap.String("room", code), zap.Error(err))
			return
		}
		log.Debug("game result recorded", zap.String("room", code))
	}
}
