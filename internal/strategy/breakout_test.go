package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"gander/internal/config"
	"gander/internal/market"
)

type stubGate struct {
	healthy bool
	calls   int
}

func (g *stubGate) IsHealthy(context.Context) bool {
	g.calls++
	return g.healthy
}

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

// breakoutSeries builds a quiet base with a final wide-range, high-volume
// breakout bar that satisfies every numeric entry condition.
func breakoutSeries() []market.Candle {
	candles := make([]market.Candle, 0, 12)
	for i := 0; i < 11; i++ {
		candles = append(candles, market.Candle{
			Open: 100, High: 101, Low: 99, Close: 100.5,
			Volume: 10 + float64(i%2),
		})
	}
	candles = append(candles, market.Candle{
		Open: 100, High: 106, Low: 100, Close: 105.5,
		Volume: 100,
	})
	return candles
}

func TestEvaluateInsufficientData(t *testing.T) {
	gate := &stubGate{healthy: true}
	e := NewEngine(gate)
	sig := e.Evaluate(context.Background(), "BTC/USDT", breakoutSeries()[:5], testSettings())
	assert.Equal(t, Signal{}, sig)
	assert.Zero(t, gate.calls)
}

func TestEvaluateFullBreakout(t *testing.T) {
	gate := &stubGate{healthy: true}
	e := NewEngine(gate)
	sig := e.Evaluate(context.Background(), "BTC/USDT", breakoutSeries(), testSettings())

	assert.True(t, sig.ShouldEnter)
	assert.InDelta(t, 101.0, sig.HighestHigh, 1e-9)
	assert.InDelta(t, 10.0/3, sig.ATR, 1e-9)
	assert.Greater(t, sig.VolumeZ, 2.0)
	// Stop is a full ATR multiple below the close, above the 2.5% floor.
	assert.InDelta(t, 105.5-2.5*10.0/3, sig.StopLoss, 1e-9)
	assert.Contains(t, sig.Flags, "breakout")
	assert.Contains(t, sig.Flags, "healthy")
	assert.Equal(t, 1, gate.calls)
}

func TestEvaluateUnhealthyMarketVetoes(t *testing.T) {
	gate := &stubGate{healthy: false}
	e := NewEngine(gate)
	sig := e.Evaluate(context.Background(), "BTC/USDT", breakoutSeries(), testSettings())

	assert.False(t, sig.ShouldEnter)
	assert.NotContains(t, sig.Flags, "healthy")
	assert.Contains(t, sig.Flags, "breakout")
}

func TestEvaluateWeakCloseVetoesWithoutGateCall(t *testing.T) {
	candles := breakoutSeries()
	last := &candles[len(candles)-1]
	last.Close = last.Low + 0.2*(last.High-last.Low)

	gate := &stubGate{healthy: true}
	e := NewEngine(gate)
	sig := e.Evaluate(context.Background(), "BTC/USDT", candles, testSettings())

	assert.False(t, sig.ShouldEnter)
	assert.NotContains(t, sig.Flags, "strong_close")
	assert.Zero(t, gate.calls, "gate must not be consulted when numeric checks fail")
}

func TestStopLossFloor(t *testing.T) {
	// Near-zero ATR falls back to the price-fraction floor.
	assert.InDelta(t, 97.5, stopLoss(100, 0, 2.5), 1e-9)
	// A wide ATR dominates the floor.
	assert.InDelta(t, 90.0, stopLoss(100, 4, 2.5), 1e-9)
}
