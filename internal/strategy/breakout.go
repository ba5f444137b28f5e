// Package strategy evaluates breakout entry signals. Evaluation is free of
// side effects: the result is fully determined by the candles, the settings
// and the current health verdict.
package strategy

import (
	"context"

	"gander/internal/analysis/indicator"
	"gander/internal/config"
	"gander/internal/market"
)

const (
	// Small buffer above the prior high so marginal breaks don't trigger.
	breakoutBufferFraction = 0.001
	// Current bar's true range must exceed this multiple of ATR.
	rangeExpansionMult = 1.3
	// Close must sit in the upper part of the bar, and the previous bar
	// must already have closed firmly.
	strongCloseMin = 0.7
	prevStrongMin  = 0.6
	// Stop distance floor as a fraction of price, against near-zero ATR.
	minStopFraction = 0.025
)

// Signal is the per-cycle evaluation result for one symbol. It is ephemeral;
// only the snapshot attached to an entry trade record outlives the cycle.
type Signal struct {
	ShouldEnter bool     `json:"shouldEnter"`
	ATR         float64  `json:"atr"`
	StopLoss    float64  `json:"stopLoss"`
	VolumeZ     float64  `json:"volumeZ"`
	HighestHigh float64  `json:"hhv"`
	Flags       []string `json:"flags,omitempty"`
}

// HealthChecker is the market-health gate consulted as the final entry
// condition.
type HealthChecker interface {
	IsHealthy(ctx context.Context) bool
}

type Engine struct {
	gate HealthChecker
}

func NewEngine(gate HealthChecker) *Engine {
	return &Engine{gate: gate}
}

// Evaluate computes the breakout signal for one symbol. With fewer candles
// than the largest lookback it returns a zero-valued, non-entering signal.
// All conditions must hold for ShouldEnter:
// breakout above the buffered prior high, range expansion vs ATR, a volume
// z-score spike, a strong close, momentum continuation on the previous bar,
// and a healthy market.
func (e *Engine) Evaluate(ctx context.Context, symbol string, candles []market.Candle, settings config.Settings) Signal {
	if len(candles) < settings.MinCandles() {
		return Signal{}
	}

	current := candles[len(candles)-1]
	previous := candles[len(candles)-2]

	atr := indicator.ATR(candles, settings.ATRLen)
	volumeZ := indicator.VolumeZScore(candles, settings.VolZLookback)
	hhv := indicator.HighestHigh(candles, settings.HHVLen)

	sig := Signal{
		ATR:         atr,
		VolumeZ:     volumeZ,
		HighestHigh: hhv,
		StopLoss:    stopLoss(current.Close, atr, settings.ATRMultSL),
	}

	checks := []struct {
		name string
		ok   bool
	}{
		{"breakout", current.Close > hhv*(1+breakoutBufferFraction)},
		{"range_expansion", indicator.TrueRange(current, previous) >= rangeExpansionMult*atr},
		{"volume", volumeZ >= settings.VolZMin},
		{"strong_close", current.ClosePositionRatio() >= strongCloseMin},
		{"momentum", previous.ClosePositionRatio() >= prevStrongMin},
	}
	enter := true
	for _, c := range checks {
		if !c.ok {
			enter = false
			continue
		}
		sig.Flags = append(sig.Flags, c.name)
	}
	if enter && e.gate.IsHealthy(ctx) {
		sig.Flags = append(sig.Flags, "healthy")
	} else {
		enter = false
	}
	sig.ShouldEnter = enter
	return sig
}

// stopLoss places the stop a full ATR multiple below the close, floored at
// minStopFraction of price.
func stopLoss(price, atr, atrMultSL float64) float64 {
	dist := atrMultSL * atr
	if floor := minStopFraction * price; dist < floor {
		dist = floor
	}
	return price - dist
}
