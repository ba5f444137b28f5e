package notifier

import "fmt"

// EntryAlert formats the push message for a freshly opened long.
func EntryAlert(symbol string, entry, stop, volZ, riskFraction float64) string {
	return fmt.Sprintf("LONG %s\nEntry: %.4f\nStop: %.4f\nVolume z: %.2f\nRisk: %.1f%%",
		symbol, entry, stop, volZ, riskFraction*100)
}

// ExitAlert formats the push message for a closed position.
func ExitAlert(symbol string, exitPrice, pnl, equity float64, reason string) string {
	return fmt.Sprintf("CLOSED %s\nExit: %.4f\nPnL: %.2f\nEquity: %.2f\nReason: %s",
		symbol, exitPrice, pnl, equity, reason)
}
