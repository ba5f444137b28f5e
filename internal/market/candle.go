package market

// Candle is a single OHLCV bar. Sources return candles ordered ascending by
// open time; the engine only ever reads them.
type Candle struct {
	OpenTime  int64   `json:"open_time"`
	CloseTime int64   `json:"close_time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Range returns high-low for the bar.
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// ClosePositionRatio reports where the close sits inside the bar's range,
// 0 at the low and 1 at the high. A zero-range bar counts as a strong close.
func (c Candle) ClosePositionRatio() float64 {
	r := c.Range()
	if r <= 0 {
		return 1
	}
	return (c.Close - c.Low) / r
}

// LastClose returns the close of the final candle, or 0 for an empty series.
func LastClose(candles []Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	return candles[len(candles)-1].Close
}
