// Package health maintains the shared market-health signal that gates new
// entries. One gate instance serves every symbol cycle.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gander/internal/analysis/indicator"
	"gander/internal/logger"
	"gander/internal/market"
	"gander/internal/pkg/circuit"
)

const (
	// Cached health older than this triggers a synchronous refresh on read.
	stalenessWindow = 2 * time.Minute
	// After failureThreshold consecutive errors, refreshes are suppressed
	// for the cool-off window.
	failureThreshold = 5
	coolOffWindow    = 5 * time.Minute

	emaFastLen = 20
	emaSlowLen = 50
	fetchLimit = 120
)

// State is the externally visible health snapshot.
type State struct {
	Healthy           bool      `json:"healthy"`
	LastUpdate        time.Time `json:"lastUpdate"`
	ConsecutiveErrors int       `json:"consecutiveErrors"`
}

// Gate computes "market healthy" from a reference instrument on a higher
// timeframe: healthy when close > EMA20 and EMA20 > EMA50. Any fetch or
// compute error fails safe to unhealthy, never open.
type Gate struct {
	source   market.Source
	symbol   string
	interval string
	breaker  *circuit.Breaker

	refreshMu sync.Mutex // serializes refreshes

	mu         sync.Mutex // guards the cached state
	healthy    bool
	lastUpdate time.Time

	nowFn func() time.Time
}

func NewGate(source market.Source, symbol, interval string) *Gate {
	return &Gate{
		source:   source,
		symbol:   symbol,
		interval: interval,
		breaker:  circuit.NewBreaker("health", failureThreshold, coolOffWindow),
		nowFn:    time.Now,
	}
}

// IsHealthy returns the cached verdict while it is fresh; a stale cache
// triggers a synchronous refresh first.
func (g *Gate) IsHealthy(ctx context.Context) bool {
	g.mu.Lock()
	fresh := !g.lastUpdate.IsZero() && g.nowFn().Sub(g.lastUpdate) < stalenessWindow
	healthy := g.healthy
	g.mu.Unlock()
	if fresh {
		return healthy
	}
	g.Refresh(ctx)
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.healthy
}

// Refresh fetches and re-evaluates the reference instrument. During the
// circuit cool-off the attempt is suppressed and the last computed value
// (default unhealthy) stands.
func (g *Gate) Refresh(ctx context.Context) {
	g.refreshMu.Lock()
	defer g.refreshMu.Unlock()

	if !g.breaker.Allow() {
		logger.Debugf("health: refresh suppressed, circuit open")
		return
	}

	healthy, err := g.evaluate(ctx)
	now := g.nowFn()

	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastUpdate = now
	if err != nil {
		g.breaker.RecordFailure()
		g.healthy = false
		logger.Warnf("health: refresh failed (errors=%d): %v", g.breaker.Failures(), err)
		return
	}
	g.breaker.RecordSuccess()
	if healthy != g.healthy {
		logger.Infof("health: market %s -> %s", verdict(g.healthy), verdict(healthy))
	}
	g.healthy = healthy
}

func (g *Gate) evaluate(ctx context.Context) (bool, error) {
	candles, err := g.source.FetchCandles(ctx, g.symbol, g.interval, fetchLimit)
	if err != nil {
		return false, err
	}
	if len(candles) < emaSlowLen {
		return false, fmt.Errorf("insufficient candles for health check: %d", len(candles))
	}
	lastClose := market.LastClose(candles)
	emaFast := indicator.EMA(candles, emaFastLen)
	emaSlow := indicator.EMA(candles, emaSlowLen)
	return lastClose > emaFast && emaFast > emaSlow, nil
}

// Snapshot reports the current health state for the status API.
func (g *Gate) Snapshot() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return State{
		Healthy:           g.healthy,
		LastUpdate:        g.lastUpdate,
		ConsecutiveErrors: g.breaker.Failures(),
	}
}

func verdict(healthy bool) string {
	if healthy {
		return "healthy"
	}
	return "unhealthy"
}
