package config

// Defaults mirror the original bot's tuned values.
const (
	defaultAppEnv      = "dev"
	defaultAppLogLevel = "info"
	defaultAppHTTPAddr = ":9991"

	defaultExchange       = "binance"
	defaultSymbols        = "BTC/USDT,ETH/USDT,SOL/USDT"
	defaultTimeframe      = "1m"
	defaultRiskPerTrade   = 0.01
	defaultDailyMaxDD     = 0.03
	defaultMaxConcurrent  = 2
	defaultHHVLen         = 35
	defaultATRLen         = 12
	defaultVolZLookback   = 60
	defaultATRMultSL      = 2.5
	defaultATRMultTrail   = 3.0
	defaultVolZMin        = 2.0
	defaultInitialEquity  = 10000
	defaultPollIntervalS  = 10
	defaultHealthInterval = 60
)

func (c *Config) applyDefaults() {
	c.App.applyDefaults()
	c.Trading.applyDefaults()
}

func (a *AppConfig) applyDefaults() {
	if a.Env == "" {
		a.Env = defaultAppEnv
	}
	if a.LogLevel == "" {
		a.LogLevel = defaultAppLogLevel
	}
	if a.HTTPAddr == "" {
		a.HTTPAddr = defaultAppHTTPAddr
	}
}

func (t *TradingConfig) applyDefaults() {
	if t.Exchange == "" {
		t.Exchange = defaultExchange
	}
	if t.Symbols == "" {
		t.Symbols = defaultSymbols
	}
	if t.Timeframe == "" {
		t.Timeframe = defaultTimeframe
	}
	if t.RiskPerTrade <= 0 {
		t.RiskPerTrade = defaultRiskPerTrade
	}
	if t.DailyMaxDrawdown <= 0 {
		t.DailyMaxDrawdown = defaultDailyMaxDD
	}
	if t.MaxConcurrentPos <= 0 {
		t.MaxConcurrentPos = defaultMaxConcurrent
	}
	if t.HHVLen <= 0 {
		t.HHVLen = defaultHHVLen
	}
	if t.ATRLen <= 0 {
		t.ATRLen = defaultATRLen
	}
	if t.VolZLookback <= 0 {
		t.VolZLookback = defaultVolZLookback
	}
	if t.ATRMultSL <= 0 {
		t.ATRMultSL = defaultATRMultSL
	}
	if t.ATRMultTrail <= 0 {
		t.ATRMultTrail = defaultATRMultTrail
	}
	if t.VolZMin <= 0 {
		t.VolZMin = defaultVolZMin
	}
	if t.InitialEquity <= 0 {
		t.InitialEquity = defaultInitialEquity
	}
	if t.PollIntervalSec <= 0 {
		t.PollIntervalSec = defaultPollIntervalS
	}
	if t.HealthIntervalSec <= 0 {
		t.HealthIntervalSec = defaultHealthInterval
	}
}
