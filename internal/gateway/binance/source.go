package binance

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"gander/internal/market"
	symbolpkg "gander/internal/pkg/symbol"

	"github.com/adshao/go-binance/v2/futures"
)

const maxHistoryLimit = 1500

// Source implements market.Source on top of the Binance USD-M futures REST
// API via the go-binance SDK. Only public kline endpoints are used; no keys.
type Source struct {
	cfg    Config
	client *futures.Client
}

func New(cfg Config) *Source {
	final := cfg.withDefaults()
	client := futures.NewClient("", "")
	client.BaseURL = strings.TrimSpace(final.RESTBaseURL)
	client.HTTPClient = &http.Client{Timeout: final.HTTPTimeout}
	return &Source{cfg: final, client: client}
}

func (s *Source) FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	interval = strings.ToLower(strings.TrimSpace(interval))
	if interval == "" {
		return nil, fmt.Errorf("interval is required")
	}
	// Binance wants symbols without slashes (ETHUSDT).
	clean := symbolpkg.ToBinance(symbol)

	kls, err := s.client.NewKlinesService().Symbol(clean).Interval(interval).Limit(limit).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance klines %s %s: %w", clean, interval, err)
	}
	out := make([]market.Candle, 0, len(kls))
	for _, kl := range kls {
		if kl == nil {
			continue
		}
		out = append(out, market.Candle{
			OpenTime:  kl.OpenTime,
			CloseTime: kl.CloseTime,
			Open:      parseFloat(kl.Open),
			High:      parseFloat(kl.High),
			Low:       parseFloat(kl.Low),
			Close:     parseFloat(kl.Close),
			Volume:    parseFloat(kl.Volume),
		})
	}
	return out, nil
}

func (s *Source) Close() error { return nil }

func parseFloat(v string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return f
}
