package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gander/internal/config"
)

func TestMemStorePositions(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	require.NoError(t, m.CreatePosition(ctx, Position{ID: "a", Symbol: "BTC/USDT", OpenTime: 2}))
	require.NoError(t, m.CreatePosition(ctx, Position{ID: "b", Symbol: "ETH/USDT", OpenTime: 1}))

	positions, err := m.ListPositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, "b", positions[0].ID, "ordered by open time")

	require.NoError(t, m.UpdatePosition(ctx, Position{ID: "a", Symbol: "BTC/USDT", OpenTime: 2, StopLoss: 99}))
	positions, _ = m.ListPositions(ctx)
	assert.InDelta(t, 99.0, positions[1].StopLoss, 1e-9)

	require.NoError(t, m.DeletePosition(ctx, "a"))
	positions, _ = m.ListPositions(ctx)
	assert.Len(t, positions, 1)
}

func TestMemStoreTradesFilterAndOrder(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	require.NoError(t, m.CreateTrade(ctx, Trade{ID: "1", TS: 10, Symbol: "BTC/USDT", Status: TradeStatusOpen}))
	require.NoError(t, m.CreateTrade(ctx, Trade{ID: "2", TS: 20, Symbol: "BTC/USDT", Status: TradeStatusClosed}))
	require.NoError(t, m.CreateTrade(ctx, Trade{ID: "3", TS: 30, Symbol: "ETH/USDT", Status: TradeStatusClosed}))

	all, err := m.ListTrades(ctx, TradeFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "3", all[0].ID, "newest first")

	btc, _ := m.ListTrades(ctx, TradeFilter{Symbol: "BTC/USDT"})
	assert.Len(t, btc, 2)

	closed, _ := m.ListTrades(ctx, TradeFilter{Status: TradeStatusClosed, Limit: 1})
	require.Len(t, closed, 1)
	assert.Equal(t, "3", closed[0].ID)
}

func TestMemStoreEquitySeries(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	_, ok, err := m.LatestEquity(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.CreateEquitySample(ctx, EquitySample{ID: "1", TS: 10, Equity: 10000}))
	require.NoError(t, m.CreateEquitySample(ctx, EquitySample{ID: "2", TS: 30, Equity: 10100}))
	require.NoError(t, m.CreateEquitySample(ctx, EquitySample{ID: "3", TS: 20, Equity: 10050}))

	latest, ok, err := m.LatestEquity(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 10100.0, latest.Equity, 1e-9)

	// Oldest first, limit keeps the tail.
	series, err := m.ListEquity(ctx, 2)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, int64(20), series[0].TS)
	assert.Equal(t, int64(30), series[1].TS)
}

func TestMemStoreSingletons(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	_, ok, err := m.GetSettings(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.SaveSettings(ctx, config.Settings{Exchange: "okx", Symbols: "BTC/USDT"}))
	settings, ok, err := m.GetSettings(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "okx", settings.Exchange)

	require.NoError(t, m.SetStatus(ctx, BotStatus{IsRunning: true, Exchange: "okx"}))
	status, ok, err := m.GetStatus(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, status.IsRunning)
}
