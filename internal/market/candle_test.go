package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClosePositionRatio(t *testing.T) {
	c := Candle{High: 110, Low: 100, Close: 108}
	assert.InDelta(t, 0.8, c.ClosePositionRatio(), 1e-9)

	c = Candle{High: 110, Low: 100, Close: 100}
	assert.Zero(t, c.ClosePositionRatio())

	// Zero-range bar counts as a strong close rather than dividing by zero.
	c = Candle{High: 100, Low: 100, Close: 100}
	assert.InDelta(t, 1.0, c.ClosePositionRatio(), 1e-9)
}

func TestLastClose(t *testing.T) {
	assert.Zero(t, LastClose(nil))
	candles := []Candle{{Close: 1}, {Close: 2.5}}
	assert.InDelta(t, 2.5, LastClose(candles), 1e-9)
}
