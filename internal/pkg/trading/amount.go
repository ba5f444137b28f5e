// Package trading provides position-size calculation helpers.
package trading

import (
	"math"

	"github.com/shopspring/decimal"
)

// QtyPrecision is the number of decimal places quantities are quantized to
// before they are recorded. Fills are simulated, so one shared precision is
// enough; a live executor would look this up per instrument.
const QtyPrecision = 6

// RiskQuantity sizes a position so that a stop-out loses riskAmount:
// qty = riskAmount / stopDistance, truncated to QtyPrecision.
// Returns 0 for non-positive or non-finite inputs.
func RiskQuantity(riskAmount, stopDistance float64) float64 {
	if riskAmount <= 0 || stopDistance <= 0 {
		return 0
	}
	raw := riskAmount / stopDistance
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0
	}
	return Quantize(raw)
}

// Quantize truncates a quantity to QtyPrecision decimal places. Truncation
// (not rounding) keeps the risked amount at or below the budget.
func Quantize(qty float64) float64 {
	if qty <= 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return 0
	}
	d := decimal.NewFromFloat(qty).Truncate(QtyPrecision)
	f, _ := d.Float64()
	return f
}
