// Package symbol normalizes market symbols between the internal "BASE/QUOTE"
// form and the per-exchange wire formats.
package symbol

import "strings"

type Symbol struct {
	Base  string
	Quote string
}

func (s Symbol) Internal() string {
	if s.Base == "" || s.Quote == "" {
		return ""
	}
	return s.Base + "/" + s.Quote
}

// Parse accepts "BTC/USDT", "BTCUSDT" or "BTC-USDT" and splits it into base
// and quote. Unknown quote currencies in the joined form yield a zero Symbol.
func Parse(s string) Symbol {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Symbol{}
	}
	if idx := strings.Index(s, ":"); idx >= 0 {
		s = s[:idx]
	}
	for _, sep := range []string{"/", "-"} {
		if parts := strings.SplitN(s, sep, 2); len(parts) == 2 {
			return Symbol{
				Base:  strings.TrimSpace(parts[0]),
				Quote: strings.TrimSpace(parts[1]),
			}
		}
	}
	quoteCurrencies := []string{"USDT", "USDC", "BUSD", "TUSD", "BTC", "ETH", "BNB"}
	for _, quote := range quoteCurrencies {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return Symbol{
				Base:  s[:len(s)-len(quote)],
				Quote: quote,
			}
		}
	}
	return Symbol{}
}

// Normalize returns the internal "BASE/QUOTE" form, or "" if unparseable.
func Normalize(s string) string {
	return Parse(s).Internal()
}

// NormalizeList normalizes and deduplicates, preserving order.
func NormalizeList(symbols []string) []string {
	if len(symbols) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		norm := Normalize(s)
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
	}
	return out
}

// SplitList parses a comma-separated symbol list into normalized symbols.
func SplitList(csv string) []string {
	parts := strings.Split(csv, ",")
	return NormalizeList(parts)
}

// ToBinance renders the exchange form without a separator, e.g. "BTCUSDT".
func ToBinance(internal string) string {
	s := strings.ToUpper(strings.TrimSpace(internal))
	return strings.ReplaceAll(s, "/", "")
}

// ToOKX renders the OKX instrument id form, e.g. "BTC-USDT".
func ToOKX(internal string) string {
	s := strings.ToUpper(strings.TrimSpace(internal))
	return strings.ReplaceAll(s, "/", "-")
}
