package store

import "encoding/json"

// Position is a live long position. The trader mutates it on every trailing
// update and price refresh and deletes it on close; it is never soft-deleted.
type Position struct {
	ID             string  `json:"id"`
	Symbol         string  `json:"symbol"`
	Side           string  `json:"side"`
	Qty            float64 `json:"qty"`
	Entry          float64 `json:"entry"`
	CurrentPrice   float64 `json:"currentPrice"`
	StopLoss       float64 `json:"sl"`
	InitialStop    float64 `json:"initialSl"`
	TrailingActive bool    `json:"trailingActive"`
	UnrealizedPnl  float64 `json:"unrealizedPnl"`
	OpenTime       int64   `json:"openTime"`
}

// Trade is an immutable audit record: one row at entry (status open) and a
// second terminal row at exit carrying realized PnL.
type Trade struct {
	ID        string          `json:"id"`
	TS        int64           `json:"ts"`
	Symbol    string          `json:"symbol"`
	Side      string          `json:"side"`
	Qty       float64         `json:"qty"`
	Entry     float64         `json:"entry"`
	StopLoss  float64         `json:"sl,omitempty"`
	Status    string          `json:"status"`
	Pnl       float64         `json:"pnl"`
	ExitPrice float64         `json:"exitPrice,omitempty"`
	ExitTime  int64           `json:"exitTime,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	Signal    json.RawMessage `json:"signal,omitempty"`
}

const (
	TradeStatusOpen   = "open"
	TradeStatusClosed = "closed"
)

// EquitySample is one point of the realized-equity series.
type EquitySample struct {
	ID     string  `json:"id"`
	TS     int64   `json:"ts"`
	Equity float64 `json:"equity"`
}

// BotStatus is the engine's externally visible run state.
type BotStatus struct {
	IsRunning  bool   `json:"isRunning"`
	LastUpdate int64  `json:"lastUpdate"`
	Exchange   string `json:"exchange"`
	Symbols    string `json:"symbols"`
	Timeframe  string `json:"timeframe"`
	DryRun     bool   `json:"dryRun"`
}

// TradeFilter narrows ListTrades. Zero values mean "no filter".
type TradeFilter struct {
	Symbol string
	Status string
	Limit  int
}
