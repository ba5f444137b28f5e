package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntryAlert(t *testing.T) {
	msg := EntryAlert("BTC/USDT", 100.5, 95.25, 3.2, 0.01)
	assert.Contains(t, msg, "LONG BTC/USDT")
	assert.Contains(t, msg, "Entry: 100.5000")
	assert.Contains(t, msg, "Stop: 95.2500")
	assert.Contains(t, msg, "Volume z: 3.20")
	assert.Contains(t, msg, "Risk: 1.0%")
}

func TestExitAlert(t *testing.T) {
	msg := ExitAlert("ETH/USDT", 104.0, 80.0, 10080.0, "stop loss triggered")
	assert.Contains(t, msg, "CLOSED ETH/USDT")
	assert.Contains(t, msg, "Exit: 104.0000")
	assert.Contains(t, msg, "PnL: 80.00")
	assert.Contains(t, msg, "Equity: 10080.00")
	assert.Contains(t, msg, "Reason: stop loss triggered")
}
