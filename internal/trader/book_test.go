package trader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gander/internal/config"
	"gander/internal/store"
	"gander/internal/strategy"
)

func testSettings() config.Settings {
	return config.Settings{
		Exchange:         "binance",
		Symbols:          "BTC/USDT",
		Timeframe:        "1m",
		RiskPerTrade:     0.01,
		DailyMaxDrawdown: 0.03,
		MaxConcurrentPos: 2,
		HHVLen:           5,
		ATRLen:           3,
		VolZLookback:     10,
		ATRMultSL:        2.5,
		ATRMultTrail:     3.0,
		VolZMin:          2.0,
	}
}

func newTestBook(t *testing.T) (*Book, *store.MemStore, *RiskController) {
	t.Helper()
	st := store.NewMemStore()
	risk := NewRiskController(10000)
	return NewBook(st, nil, risk), st, risk
}

func entrySignal(stop float64) strategy.Signal {
	return strategy.Signal{ShouldEnter: true, ATR: 2, StopLoss: stop, VolumeZ: 3}
}

func TestOpenSizesByRisk(t *testing.T) {
	book, st, _ := newTestBook(t)
	ctx := context.Background()

	pos, err := book.Open(ctx, "BTC/USDT", entrySignal(95), 100, testSettings())
	require.NoError(t, err)

	// 1% of 10000 over a 5-unit stop distance.
	assert.InDelta(t, 20.0, pos.Qty, 1e-9)
	assert.InDelta(t, 100.0, pos.Entry, 1e-9)
	assert.InDelta(t, 95.0, pos.StopLoss, 1e-9)
	assert.Equal(t, "long", pos.Side)
	assert.False(t, pos.TrailingActive)
	assert.Equal(t, 1, book.Count())

	trades, err := st.ListTrades(ctx, store.TradeFilter{})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, store.TradeStatusOpen, trades[0].Status)
	assert.NotEmpty(t, trades[0].Signal)

	positions, err := st.ListPositions(ctx)
	require.NoError(t, err)
	assert.Len(t, positions, 1)
}

func TestOpenRejectsBadInputs(t *testing.T) {
	book, _, _ := newTestBook(t)
	ctx := context.Background()

	// Stop at or above entry means no measurable risk.
	_, err := book.Open(ctx, "BTC/USDT", entrySignal(100), 100, testSettings())
	assert.Error(t, err)
	_, err = book.Open(ctx, "BTC/USDT", entrySignal(105), 100, testSettings())
	assert.Error(t, err)
	assert.Zero(t, book.Count())

	// No doubling up on a symbol.
	_, err = book.Open(ctx, "BTC/USDT", entrySignal(95), 100, testSettings())
	require.NoError(t, err)
	_, err = book.Open(ctx, "BTC/USDT", entrySignal(96), 101, testSettings())
	assert.Error(t, err)
	assert.Equal(t, 1, book.Count())
}

func TestOpenEnforcesPositionCap(t *testing.T) {
	book, _, _ := newTestBook(t)
	ctx := context.Background()
	settings := testSettings() // cap 2

	_, err := book.Open(ctx, "BTC/USDT", entrySignal(95), 100, settings)
	require.NoError(t, err)
	_, err = book.Open(ctx, "ETH/USDT", entrySignal(95), 100, settings)
	require.NoError(t, err)

	_, err = book.Open(ctx, "SOL/USDT", entrySignal(95), 100, settings)
	assert.Error(t, err)
	assert.Equal(t, 2, book.Count())

	// Closing one frees a slot.
	_, err = book.Close(ctx, "ETH/USDT", "manual stop", 0, 0)
	require.NoError(t, err)
	_, err = book.Open(ctx, "SOL/USDT", entrySignal(95), 100, settings)
	assert.NoError(t, err)
	assert.Equal(t, 2, book.Count())
}

func TestTrailingStopWaitsForOneRiskUnit(t *testing.T) {
	book, _, _ := newTestBook(t)
	ctx := context.Background()
	settings := testSettings() // trail multiple 3.0

	_, err := book.Open(ctx, "BTC/USDT", entrySignal(95), 100, settings)
	require.NoError(t, err)

	// +0.8R: trailing must not arm yet.
	book.UpdateTrailingStop(ctx, "BTC/USDT", 104, 2, settings)
	pos, _ := book.Get("BTC/USDT")
	assert.InDelta(t, 95.0, pos.StopLoss, 1e-9)
	assert.False(t, pos.TrailingActive)

	// +2R: stop ratchets to price - mult*atr.
	book.UpdateTrailingStop(ctx, "BTC/USDT", 110, 2, settings)
	pos, _ = book.Get("BTC/USDT")
	assert.InDelta(t, 104.0, pos.StopLoss, 1e-9)
	assert.True(t, pos.TrailingActive)
}

func TestTrailingStopIsMonotone(t *testing.T) {
	book, _, _ := newTestBook(t)
	ctx := context.Background()
	settings := testSettings()

	_, err := book.Open(ctx, "BTC/USDT", entrySignal(95), 100, settings)
	require.NoError(t, err)

	book.UpdateTrailingStop(ctx, "BTC/USDT", 110, 2, settings)
	pos, _ := book.Get("BTC/USDT")
	require.InDelta(t, 104.0, pos.StopLoss, 1e-9)

	// A pullback must never lower the stop.
	book.UpdateTrailingStop(ctx, "BTC/USDT", 108, 2, settings)
	pos, _ = book.Get("BTC/USDT")
	assert.InDelta(t, 104.0, pos.StopLoss, 1e-9)

	// A new high keeps ratcheting.
	book.UpdateTrailingStop(ctx, "BTC/USDT", 112, 2, settings)
	pos, _ = book.Get("BTC/USDT")
	assert.InDelta(t, 106.0, pos.StopLoss, 1e-9)
}

func TestTrailingGateAnchorsOnEntryStop(t *testing.T) {
	book, _, _ := newTestBook(t)
	ctx := context.Background()
	settings := testSettings()

	// Entry 100, initial stop 95: one risk unit is 5.
	_, err := book.Open(ctx, "BTC/USDT", entrySignal(95), 100, settings)
	require.NoError(t, err)

	book.UpdateTrailingStop(ctx, "BTC/USDT", 110, 2, settings)
	pos, _ := book.Get("BTC/USDT")
	require.InDelta(t, 104.0, pos.StopLoss, 1e-9)
	require.True(t, pos.TrailingActive)

	// Price back under entry+1R with a collapsed ATR: without the entry-stop
	// anchor the stop would ratchet to 104.9 - 3*0.1 = 104.6.
	book.UpdateTrailingStop(ctx, "BTC/USDT", 104.9, 0.1, settings)
	pos, _ = book.Get("BTC/USDT")
	assert.InDelta(t, 104.0, pos.StopLoss, 1e-9)

	// Back above the gate the ratchet resumes.
	book.UpdateTrailingStop(ctx, "BTC/USDT", 106, 0.5, settings)
	pos, _ = book.Get("BTC/USDT")
	assert.InDelta(t, 104.5, pos.StopLoss, 1e-9)
}

func TestEvaluateExitUsesStopAsFill(t *testing.T) {
	pos := store.Position{Symbol: "BTC/USDT", Entry: 100, StopLoss: 104}

	d := EvaluateExit(pos, 103.9)
	assert.True(t, d.Exit)
	assert.Equal(t, "stop loss triggered", d.Reason)
	assert.InDelta(t, 104.0, d.ExitPrice, 1e-9)

	d = EvaluateExit(pos, 104.1)
	assert.False(t, d.Exit)
}

func TestResolveExitPriceFallbackChain(t *testing.T) {
	assert.InDelta(t, 104.0, ResolveExitPrice(104, 103, 102, 100), 1e-9)
	assert.InDelta(t, 103.0, ResolveExitPrice(0, 103, 102, 100), 1e-9)
	assert.InDelta(t, 102.0, ResolveExitPrice(0, 0, 102, 100), 1e-9)
	// Fully degraded: close flat at entry.
	assert.InDelta(t, 100.0, ResolveExitPrice(0, 0, 0, 100), 1e-9)
}

func TestCloseRealizesPnLAndRecords(t *testing.T) {
	book, st, risk := newTestBook(t)
	ctx := context.Background()

	_, err := book.Open(ctx, "BTC/USDT", entrySignal(95), 100, testSettings())
	require.NoError(t, err)

	pnl, err := book.Close(ctx, "BTC/USDT", "stop loss triggered", 104, 103.9)
	require.NoError(t, err)
	assert.InDelta(t, 80.0, pnl, 1e-9) // (104-100)*20
	assert.InDelta(t, 10080.0, risk.Equity(), 1e-9)
	assert.Zero(t, book.Count())

	trades, err := st.ListTrades(ctx, store.TradeFilter{Status: store.TradeStatusClosed})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.InDelta(t, 80.0, trades[0].Pnl, 1e-9)
	assert.InDelta(t, 104.0, trades[0].ExitPrice, 1e-9)
	assert.Equal(t, "stop loss triggered", trades[0].Reason)

	sample, ok, err := st.LatestEquity(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 10080.0, sample.Equity, 1e-9)

	positions, err := st.ListPositions(ctx)
	require.NoError(t, err)
	assert.Empty(t, positions)

	_, err = book.Close(ctx, "BTC/USDT", "stop loss triggered", 104, 0)
	assert.Error(t, err, "closing twice must fail")
}

func TestCloseFallsBackToCachedPrice(t *testing.T) {
	book, _, risk := newTestBook(t)
	ctx := context.Background()

	_, err := book.Open(ctx, "BTC/USDT", entrySignal(95), 100, testSettings())
	require.NoError(t, err)
	book.RefreshPrice(ctx, "BTC/USDT", 102)

	pnl, err := book.Close(ctx, "BTC/USDT", "manual stop", 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, pnl, 1e-9) // (102-100)*20
	assert.InDelta(t, 10040.0, risk.Equity(), 1e-9)
}
