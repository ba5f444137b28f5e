package gateway

import (
	"strings"
	"time"

	"gander/internal/gateway/binance"
	"gander/internal/gateway/okx"
	"gander/internal/logger"
	"gander/internal/market"
)

// NewSource builds the candle source for an exchange id. Unknown exchanges
// fall back to binance, which is also the preset default.
func NewSource(exchange string, timeout time.Duration) market.Source {
	switch strings.ToLower(strings.TrimSpace(exchange)) {
	case "okx":
		return okx.New(okx.Config{HTTPTimeout: timeout})
	case "", "binance", "binance-futures":
		return binance.New(binance.Config{HTTPTimeout: timeout})
	default:
		logger.Warnf("gateway: unknown exchange %q, using binance", exchange)
		return binance.New(binance.Config{HTTPTimeout: timeout})
	}
}
