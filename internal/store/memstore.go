package store

import (
	"context"
	"sort"
	"sync"

	"gander/internal/config"
)

// MemStore is a complete in-memory Store. It backs tests and runs without a
// database path configured.
type MemStore struct {
	mu        sync.RWMutex
	positions map[string]Position
	trades    []Trade
	equity    []EquitySample
	settings  *config.Settings
	status    *BotStatus
}

func NewMemStore() *MemStore {
	return &MemStore{positions: make(map[string]Position)}
}

func (m *MemStore) CreatePosition(_ context.Context, p Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[p.ID] = p
	return nil
}

func (m *MemStore) UpdatePosition(_ context.Context, p Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[p.ID] = p
	return nil
}

func (m *MemStore) DeletePosition(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.positions, id)
	return nil
}

func (m *MemStore) ListPositions(_ context.Context) ([]Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Position, 0, len(m.positions))
	for _, p := range m.positions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenTime < out[j].OpenTime })
	return out, nil
}

func (m *MemStore) CreateTrade(_ context.Context, t Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades = append(m.trades, t)
	return nil
}

func (m *MemStore) ListTrades(_ context.Context, f TradeFilter) ([]Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Trade, 0, len(m.trades))
	for _, t := range m.trades {
		if f.Symbol != "" && t.Symbol != f.Symbol {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		out = append(out, t)
	}
	// Newest first, like the API serves them.
	sort.Slice(out, func(i, j int) bool { return out[i].TS > out[j].TS })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *MemStore) CreateEquitySample(_ context.Context, s EquitySample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.equity = append(m.equity, s)
	return nil
}

func (m *MemStore) ListEquity(_ context.Context, limit int) ([]EquitySample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]EquitySample, len(m.equity))
	copy(out, m.equity)
	sort.Slice(out, func(i, j int) bool { return out[i].TS < out[j].TS })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (m *MemStore) LatestEquity(_ context.Context) (EquitySample, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.equity) == 0 {
		return EquitySample{}, false, nil
	}
	latest := m.equity[0]
	for _, s := range m.equity[1:] {
		if s.TS >= latest.TS {
			latest = s
		}
	}
	return latest, true, nil
}

func (m *MemStore) GetSettings(_ context.Context) (config.Settings, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return config.Settings{}, false, nil
	}
	return *m.settings, true, nil
}

func (m *MemStore) SaveSettings(_ context.Context, s config.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = &s
	return nil
}

func (m *MemStore) GetStatus(_ context.Context) (BotStatus, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.status == nil {
		return BotStatus{}, false, nil
	}
	return *m.status, true, nil
}

func (m *MemStore) SetStatus(_ context.Context, s BotStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = &s
	return nil
}

func (m *MemStore) Close() error { return nil }

var _ Store = (*MemStore)(nil)
