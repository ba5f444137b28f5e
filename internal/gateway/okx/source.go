// Package okx implements market.Source against the OKX v5 public REST API.
// No SDK is needed: the candle endpoint is a single unauthenticated GET.
package okx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gander/internal/market"
	symbolpkg "gander/internal/pkg/symbol"

	"github.com/tidwall/gjson"
)

const (
	defaultRESTBaseURL = "https://www.okx.com"
	maxHistoryLimit    = 300
)

type Config struct {
	RESTBaseURL string
	HTTPTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.RESTBaseURL == "" {
		c.RESTBaseURL = defaultRESTBaseURL
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 10 * time.Second
	}
	return c
}

type Source struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) *Source {
	final := cfg.withDefaults()
	return &Source{
		cfg:    final,
		client: &http.Client{Timeout: final.HTTPTimeout},
	}
}

func (s *Source) FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	instID := symbolpkg.ToOKX(symbol)
	if instID == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	bar, ok := toBar(interval)
	if !ok {
		return nil, fmt.Errorf("unsupported okx interval: %s", interval)
	}

	q := url.Values{}
	q.Set("instId", instID)
	q.Set("bar", bar)
	q.Set("limit", strconv.Itoa(limit))
	endpoint := strings.TrimRight(s.cfg.RESTBaseURL, "/") + "/api/v5/market/candles?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("okx candles %s %s: %w", instID, bar, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("okx candles %s: status=%d", instID, resp.StatusCode)
	}
	return parseCandles(body, bar)
}

func (s *Source) Close() error { return nil }

// parseCandles decodes the OKX payload. OKX returns rows newest-first as
// string arrays [ts, open, high, low, close, vol, ...]; the engine wants
// ascending order.
func parseCandles(body []byte, bar string) ([]market.Candle, error) {
	root := gjson.ParseBytes(body)
	if code := root.Get("code").String(); code != "" && code != "0" {
		return nil, fmt.Errorf("okx error code=%s msg=%s", code, root.Get("msg").String())
	}
	rows := root.Get("data")
	if !rows.IsArray() {
		return nil, fmt.Errorf("okx payload missing data array")
	}
	barDur := barDuration(bar)
	items := rows.Array()
	out := make([]market.Candle, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		row := items[i].Array()
		if len(row) < 6 {
			continue
		}
		openTime := row[0].Int()
		out = append(out, market.Candle{
			OpenTime:  openTime,
			CloseTime: openTime + barDur.Milliseconds() - 1,
			Open:      row[1].Float(),
			High:      row[2].Float(),
			Low:       row[3].Float(),
			Close:     row[4].Float(),
			Volume:    row[5].Float(),
		})
	}
	return out, nil
}

// toBar maps internal lowercase intervals to OKX bar ids (hours and above are
// uppercase on OKX).
func toBar(interval string) (string, bool) {
	interval = strings.ToLower(strings.TrimSpace(interval))
	switch interval {
	case "1m", "3m", "5m", "15m", "30m":
		return interval, true
	case "1h", "2h", "4h", "6h", "12h":
		return strings.ToUpper(interval), true
	case "1d":
		return "1D", true
	case "1w":
		return "1W", true
	default:
		return "", false
	}
}

func barDuration(bar string) time.Duration {
	n, err := strconv.Atoi(bar[:len(bar)-1])
	if err != nil || n <= 0 {
		return time.Minute
	}
	switch bar[len(bar)-1] {
	case 'm':
		return time.Duration(n) * time.Minute
	case 'H':
		return time.Duration(n) * time.Hour
	case 'D':
		return time.Duration(n) * 24 * time.Hour
	case 'W':
		return time.Duration(n) * 7 * 24 * time.Hour
	default:
		return time.Minute
	}
}
