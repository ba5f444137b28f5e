package config

import "time"

// Config is the file-level configuration. The trading section seeds the
// persisted Settings record on first run; after that the store copy wins.
type Config struct {
	App     AppConfig     `toml:"app"`
	Store   StoreConfig   `toml:"store"`
	Notify  NotifyConfig  `toml:"notify"`
	Trading TradingConfig `toml:"trading"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

type StoreConfig struct {
	// Path is the sqlite file. Empty selects the in-memory store.
	Path string `toml:"path"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `toml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
}

// TradingConfig carries the default Settings values plus engine pacing.
type TradingConfig struct {
	Exchange          string  `toml:"exchange"`
	Symbols           string  `toml:"symbols"`
	Timeframe         string  `toml:"timeframe"`
	RiskPerTrade      float64 `toml:"risk_per_trade"`
	DailyMaxDrawdown  float64 `toml:"daily_max_drawdown"`
	MaxConcurrentPos  int     `toml:"max_concurrent_pos"`
	HHVLen            int     `toml:"hhv_len"`
	ATRLen            int     `toml:"atr_len"`
	VolZLookback      int     `toml:"vol_z_lookback"`
	ATRMultSL         float64 `toml:"atr_mult_sl"`
	ATRMultTrail      float64 `toml:"atr_mult_trail"`
	VolZMin           float64 `toml:"vol_z_min"`
	DryRun            bool    `toml:"dry_run"`
	InitialEquity     float64 `toml:"initial_equity"`
	PollIntervalSec   int     `toml:"poll_interval_sec"`
	HealthIntervalSec int     `toml:"health_interval_sec"`
}

// Settings is the per-run configuration snapshot the engine trades with.
// It is persisted in the store and treated as immutable during a cycle.
type Settings struct {
	Exchange         string  `json:"exchange" validate:"required"`
	Symbols          string  `json:"symbols" validate:"required"`
	Timeframe        string  `json:"timeframe" validate:"required"`
	RiskPerTrade     float64 `json:"riskPerTrade" validate:"gt=0,lte=0.2"`
	DailyMaxDrawdown float64 `json:"dailyMaxDD" validate:"gt=0,lt=1"`
	MaxConcurrentPos int     `json:"maxConcurrentPos" validate:"gte=1"`
	HHVLen           int     `json:"hhvLen" validate:"gte=2"`
	ATRLen           int     `json:"atrLen" validate:"gte=1"`
	VolZLookback     int     `json:"volZLookback" validate:"gte=2"`
	ATRMultSL        float64 `json:"atrMultSL" validate:"gt=0"`
	ATRMultTrail     float64 `json:"atrMultTrail" validate:"gt=0"`
	VolZMin          float64 `json:"volZMin" validate:"gte=0"`
	DryRun           bool    `json:"dryRun"`
}

// Settings builds the Settings record from the trading section with the
// exchange preset applied.
func (t TradingConfig) Settings() Settings {
	s := Settings{
		Exchange:         t.Exchange,
		Symbols:          t.Symbols,
		Timeframe:        t.Timeframe,
		RiskPerTrade:     t.RiskPerTrade,
		DailyMaxDrawdown: t.DailyMaxDrawdown,
		MaxConcurrentPos: t.MaxConcurrentPos,
		HHVLen:           t.HHVLen,
		ATRLen:           t.ATRLen,
		VolZLookback:     t.VolZLookback,
		ATRMultSL:        t.ATRMultSL,
		ATRMultTrail:     t.ATRMultTrail,
		VolZMin:          t.VolZMin,
		DryRun:           t.DryRun,
	}
	return ApplyPreset(s)
}

// PollInterval is the per-symbol cycle interval.
func (t TradingConfig) PollInterval() time.Duration {
	return time.Duration(t.PollIntervalSec) * time.Second
}

// HealthInterval is the shared health-refresh cycle interval.
func (t TradingConfig) HealthInterval() time.Duration {
	return time.Duration(t.HealthIntervalSec) * time.Second
}

// MinCandles is the minimum history SignalEngine needs for a full evaluation.
func (s Settings) MinCandles() int {
	n := s.HHVLen
	if s.ATRLen+1 > n {
		n = s.ATRLen + 1
	}
	if s.VolZLookback > n {
		n = s.VolZLookback
	}
	return n
}
