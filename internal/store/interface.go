package store

import (
	"context"

	"gander/internal/config"
)

// Store is the persistence collaborator of the trading engine. Every method
// may fail with a recoverable error; the engine logs and continues rather
// than crashing on a single persistence failure.
type Store interface {
	// Positions (live working set, mirrored from the trader's memory).
	CreatePosition(ctx context.Context, p Position) error
	UpdatePosition(ctx context.Context, p Position) error
	DeletePosition(ctx context.Context, id string) error
	ListPositions(ctx context.Context) ([]Position, error)

	// Trades (append-only audit log).
	CreateTrade(ctx context.Context, t Trade) error
	ListTrades(ctx context.Context, f TradeFilter) ([]Trade, error)

	// Equity series.
	CreateEquitySample(ctx context.Context, s EquitySample) error
	ListEquity(ctx context.Context, limit int) ([]EquitySample, error)
	LatestEquity(ctx context.Context) (EquitySample, bool, error)

	// Settings and status singletons.
	GetSettings(ctx context.Context) (config.Settings, bool, error)
	SaveSettings(ctx context.Context, s config.Settings) error
	GetStatus(ctx context.Context) (BotStatus, bool, error)
	SetStatus(ctx context.Context, s BotStatus) error

	Close() error
}
