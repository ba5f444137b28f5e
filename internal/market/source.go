package market

import "context"

// Source supplies recent candle history for a symbol and timeframe.
// Implementations live under internal/gateway; fetch failures are recoverable
// and surface as plain errors, never panics.
type Source interface {
	FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]Candle, error)

	Close() error
}
