package config

import "strings"

// Preset is a per-exchange settings override. Only non-zero fields are
// applied, and application is deterministic: the preset for the settings'
// exchange id, or the binance preset when the exchange is unknown.
type Preset struct {
	// Timeframe overrides an empty timeframe.
	Timeframe string
	// CandleLimit caps how much history one fetch may request.
	CandleLimit int
	// HealthSymbol is the reference instrument for the market-health gate.
	HealthSymbol string
	// HealthTimeframe is the higher timeframe the gate evaluates.
	HealthTimeframe string
}

var exchangePresets = map[string]Preset{
	"binance": {
		Timeframe:       "1m",
		CandleLimit:     1500,
		HealthSymbol:    "BTC/USDT",
		HealthTimeframe: "15m",
	},
	"okx": {
		Timeframe:       "1m",
		CandleLimit:     300,
		HealthSymbol:    "BTC/USDT",
		HealthTimeframe: "15m",
	},
}

// PresetFor resolves the preset for an exchange id; unknown ids fall back to
// the binance preset.
func PresetFor(exchange string) Preset {
	if p, ok := exchangePresets[strings.ToLower(strings.TrimSpace(exchange))]; ok {
		return p
	}
	return exchangePresets["binance"]
}

// ApplyPreset fills preset-covered fields that the settings leave empty.
func ApplyPreset(s Settings) Settings {
	p := PresetFor(s.Exchange)
	if strings.TrimSpace(s.Timeframe) == "" {
		s.Timeframe = p.Timeframe
	}
	return s
}
