package results

import (
	"context"
	"sync"
)

// MemoryStore keeps the most recent games in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	games []GameResult
	max   int
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryStore{max: capacity}
}

func (m *MemoryStore) RecordGame(_ context.Context, g GameResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.games = append(m.games, g)
	if len(m.games) > m.max {
		m.games = m.games[len(m.games)-m.max:]
	}
	return nil
}

func (m *MemoryStore) RecentGames(_ context.Context, limit int) ([]GameResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]GameResult, 0, min(limit, len(m.games)))
	for i := len(m.games) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.games[i])
	}
	return out, nil
}
