package health

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gander/internal/market"
)

type fakeSource struct {
	mu      sync.Mutex
	candles []market.Candle
	err     error
}

func (f *fakeSource) FetchCandles(context.Context, string, string, int) ([]market.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.candles, nil
}

func (f *fakeSource) Close() error { return nil }

func (f *fakeSource) set(candles []market.Candle, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.candles, f.err = candles, err
}

func trendSeries(n int, up bool) []market.Candle {
	out := make([]market.Candle, n)
	for i := range out {
		px := 1000.0 + float64(i)*2
		if !up {
			px = 1000.0 - float64(i)*2
		}
		out[i] = market.Candle{Open: px, High: px + 1, Low: px - 1, Close: px, Volume: 5}
	}
	return out
}

func TestGateHealthyOnUptrend(t *testing.T) {
	src := &fakeSource{candles: trendSeries(100, true)}
	g := NewGate(src, "BTC/USDT", "15m")

	g.Refresh(context.Background())
	snap := g.Snapshot()
	assert.True(t, snap.Healthy)
	assert.Zero(t, snap.ConsecutiveErrors)
	assert.True(t, g.IsHealthy(context.Background()))
}

func TestGateUnhealthyOnDowntrend(t *testing.T) {
	src := &fakeSource{candles: trendSeries(100, false)}
	g := NewGate(src, "BTC/USDT", "15m")

	g.Refresh(context.Background())
	assert.False(t, g.Snapshot().Healthy)
}

func TestGateFailsSafeOnFetchError(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	g := NewGate(src, "BTC/USDT", "15m")

	g.Refresh(context.Background())
	snap := g.Snapshot()
	assert.False(t, snap.Healthy)
	assert.Equal(t, 1, snap.ConsecutiveErrors)
}

func TestGateFailsSafeOnShortHistory(t *testing.T) {
	src := &fakeSource{candles: trendSeries(30, true)}
	g := NewGate(src, "BTC/USDT", "15m")

	g.Refresh(context.Background())
	snap := g.Snapshot()
	assert.False(t, snap.Healthy)
	assert.Equal(t, 1, snap.ConsecutiveErrors)
}

func TestGateCircuitSuppressesRefreshAfterRepeatedErrors(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	g := NewGate(src, "BTC/USDT", "15m")

	for i := 0; i < failureThreshold; i++ {
		g.Refresh(context.Background())
	}
	assert.Equal(t, failureThreshold, g.Snapshot().ConsecutiveErrors)

	// Good data arrives, but the circuit holds refreshes back for the whole
	// cool-off; the verdict stays fail-safe unhealthy.
	src.set(trendSeries(100, true), nil)
	g.Refresh(context.Background())
	assert.False(t, g.Snapshot().Healthy)
	assert.False(t, g.IsHealthy(context.Background()))
}

func TestGateStaleCacheRefreshesSynchronously(t *testing.T) {
	now := time.Now()
	src := &fakeSource{candles: trendSeries(100, true)}
	g := NewGate(src, "BTC/USDT", "15m")
	g.nowFn = func() time.Time { return now }

	assert.True(t, g.IsHealthy(context.Background()))

	// Within the staleness window the cached verdict is served even though
	// the market has turned.
	src.set(trendSeries(100, false), nil)
	assert.True(t, g.IsHealthy(context.Background()))

	// Past the window the read itself refreshes.
	now = now.Add(stalenessWindow + time.Second)
	assert.False(t, g.IsHealthy(context.Background()))
}
