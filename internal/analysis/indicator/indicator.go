// Package indicator holds the stateless numeric building blocks of the
// breakout strategy. All functions are pure over a candle slice and return 0
// when there is not enough data; they never error.
package indicator

import (
	"math"

	"gander/internal/market"
)

// TrueRange computes max(high-low, |high-prevClose|, |low-prevClose|).
func TrueRange(cur, prev market.Candle) float64 {
	tr := cur.High - cur.Low
	if v := math.Abs(cur.High - prev.Close); v > tr {
		tr = v
	}
	if v := math.Abs(cur.Low - prev.Close); v > tr {
		tr = v
	}
	return tr
}

// ATR is the simple mean of the last period true-range values.
// Requires at least period+1 candles.
func ATR(candles []market.Candle, period int) float64 {
	if period <= 0 || len(candles) < period+1 {
		return 0
	}
	sum := 0.0
	for i := len(candles) - period; i < len(candles); i++ {
		sum += TrueRange(candles[i], candles[i-1])
	}
	return sum / float64(period)
}

// EMA is an exponential moving average over closes, seeded with the first
// candle's close and applied forward with multiplier 2/(period+1).
// Requires at least period candles.
func EMA(candles []market.Candle, period int) float64 {
	if period <= 0 || len(candles) < period {
		return 0
	}
	mult := 2.0 / float64(period+1)
	ema := candles[0].Close
	for i := 1; i < len(candles); i++ {
		ema = candles[i].Close*mult + ema*(1-mult)
	}
	return ema
}

// VolumeZScore measures how many standard deviations the most recent bar's
// volume sits from the mean of the preceding lookback-1 bars. Returns 0 on a
// zero stddev (constant volume) or insufficient data.
func VolumeZScore(candles []market.Candle, lookback int) float64 {
	if lookback < 2 || len(candles) < lookback {
		return 0
	}
	window := candles[len(candles)-lookback:]
	current := window[len(window)-1].Volume
	hist := window[:len(window)-1]

	mean := 0.0
	for _, c := range hist {
		mean += c.Volume
	}
	mean /= float64(len(hist))

	variance := 0.0
	for _, c := range hist {
		d := c.Volume - mean
		variance += d * d
	}
	variance /= float64(len(hist))
	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return (current - mean) / std
}

// HighestHigh returns the max high of the last length candles, excluding the
// final (forming) candle from the max.
func HighestHigh(candles []market.Candle, length int) float64 {
	if length <= 0 || len(candles) < 2 {
		return 0
	}
	end := len(candles) - 1
	start := len(candles) - length
	if start < 0 {
		start = 0
	}
	hh := 0.0
	for _, c := range candles[start:end] {
		if c.High > hh {
			hh = c.High
		}
	}
	return hh
}
