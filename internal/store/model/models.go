// Package model holds the gorm table definitions for the sqlite store.
package model

import "gorm.io/datatypes"

type PositionModel struct {
	ID             string  `gorm:"column:id;primaryKey"`
	Symbol         string  `gorm:"column:symbol;index"`
	Side           string  `gorm:"column:side"`
	Qty            float64 `gorm:"column:qty"`
	Entry          float64 `gorm:"column:entry"`
	CurrentPrice   float64 `gorm:"column:current_price"`
	StopLoss       float64 `gorm:"column:sl"`
	InitialStop    float64 `gorm:"column:initial_sl"`
	TrailingActive bool    `gorm:"column:trailing_active"`
	UnrealizedPnl  float64 `gorm:"column:unrealized_pnl"`
	OpenTime       int64   `gorm:"column:open_time"`
}

func (PositionModel) TableName() string { return "positions" }

type TradeModel struct {
	ID        string         `gorm:"column:id;primaryKey"`
	TS        int64          `gorm:"column:ts;index"`
	Symbol    string         `gorm:"column:symbol;index"`
	Side      string         `gorm:"column:side"`
	Qty       float64        `gorm:"column:qty"`
	Entry     float64        `gorm:"column:entry"`
	StopLoss  float64        `gorm:"column:sl"`
	Status    string         `gorm:"column:status;index"`
	Pnl       float64        `gorm:"column:pnl"`
	ExitPrice float64        `gorm:"column:exit_price"`
	ExitTime  int64          `gorm:"column:exit_time"`
	Reason    string         `gorm:"column:reason"`
	Signal    datatypes.JSON `gorm:"column:signal;type:TEXT"`
}

func (TradeModel) TableName() string { return "trades" }

type EquityModel struct {
	ID     string  `gorm:"column:id;primaryKey"`
	TS     int64   `gorm:"column:ts;index"`
	Equity float64 `gorm:"column:equity"`
}

func (EquityModel) TableName() string { return "equity" }

// SettingsModel is a single-row table (id=1).
type SettingsModel struct {
	ID               int     `gorm:"column:id;primaryKey"`
	Exchange         string  `gorm:"column:exchange"`
	Symbols          string  `gorm:"column:symbols"`
	Timeframe        string  `gorm:"column:timeframe"`
	RiskPerTrade     float64 `gorm:"column:risk_per_trade"`
	DailyMaxDrawdown float64 `gorm:"column:daily_max_dd"`
	MaxConcurrentPos int     `gorm:"column:max_concurrent_pos"`
	HHVLen           int     `gorm:"column:hhv_len"`
	ATRLen           int     `gorm:"column:atr_len"`
	VolZLookback     int     `gorm:"column:vol_z_lookback"`
	ATRMultSL        float64 `gorm:"column:atr_mult_sl"`
	ATRMultTrail     float64 `gorm:"column:atr_mult_trail"`
	VolZMin          float64 `gorm:"column:vol_z_min"`
	DryRun           bool    `gorm:"column:dry_run"`
}

func (SettingsModel) TableName() string { return "bot_settings" }

// StatusModel is a single-row table (id=1).
type StatusModel struct {
	ID         int    `gorm:"column:id;primaryKey"`
	IsRunning  bool   `gorm:"column:is_running"`
	LastUpdate int64  `gorm:"column:last_update"`
	Exchange   string `gorm:"column:exchange"`
	Symbols    string `gorm:"column:symbols"`
	Timeframe  string `gorm:"column:timeframe"`
	DryRun     bool   `gorm:"column:dry_run"`
}

func (StatusModel) TableName() string { return "bot_status" }
