package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	symbolpkg "gander/internal/pkg/symbol"
)

var validate = validator.New()

// Validate checks a loaded config: struct tags on the derived Settings plus
// the cross-field rules tags cannot express.
func Validate(c *Config) error {
	if c == nil {
		return fmt.Errorf("nil config")
	}
	s := c.Trading.Settings()
	if err := ValidateSettings(s); err != nil {
		return err
	}
	if c.Trading.InitialEquity <= 0 {
		return fmt.Errorf("trading.initial_equity must be > 0")
	}
	if c.Notify.Telegram.Enabled {
		if c.Notify.Telegram.BotToken == "" || c.Notify.Telegram.ChatID == "" {
			return fmt.Errorf("notify.telegram requires bot_token and chat_id when enabled")
		}
	}
	return nil
}

// ValidateSettings applies the Settings struct tags and symbol-list checks.
// The HTTP layer reuses it for settings updates.
func ValidateSettings(s Settings) error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	symbols := symbolpkg.SplitList(s.Symbols)
	if len(symbols) == 0 {
		return fmt.Errorf("settings.symbols contains no parseable symbol: %q", s.Symbols)
	}
	return nil
}
