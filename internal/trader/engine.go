package trader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gander/internal/analysis/indicator"
	"gander/internal/config"
	"gander/internal/gateway"
	"gander/internal/gateway/notifier"
	"gander/internal/health"
	"gander/internal/logger"
	"gander/internal/market"
	"gander/internal/pkg/symbol"
	"gander/internal/scheduler"
	"gander/internal/store"
	"gander/internal/strategy"
)

const httpTimeout = 10 * time.Second

var engineLog = logger.NewScope("engine")

// SourceFactory builds the candle source for an exchange id.
type SourceFactory func(exchange string, timeout time.Duration) market.Source

// Engine is the trading controller: it owns the polling cycles, the health
// gate, the risk state and the position book for one run. Start and Stop are
// idempotent and safe to call from the HTTP layer at any time.
type Engine struct {
	cfg       config.Config
	store     store.Store
	notify    notifier.TextNotifier
	newSource SourceFactory

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// Built on Start, valid while running.
	settings config.Settings
	preset   config.Preset
	source   market.Source
	gate     *health.Gate
	strat    *strategy.Engine
	risk     *RiskController
	book     *Book
}

func NewEngine(cfg config.Config, st store.Store, notify notifier.TextNotifier) *Engine {
	if notify == nil {
		notify = notifier.Noop{}
	}
	return &Engine{
		cfg:       cfg,
		store:     st,
		notify:    notify,
		newSource: gateway.NewSource,
	}
}

// Start brings the engine up: it resolves settings (store copy wins, the
// config seeds the store on first run), restores equity and open positions,
// and launches the health cycle plus one polling cycle per symbol. Calling
// Start on a running engine is a no-op.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		engineLog.Infof("start requested but already running")
		return nil
	}

	settings, err := e.resolveSettings(ctx)
	if err != nil {
		return err
	}
	symbols := symbol.NormalizeList(symbol.SplitList(settings.Symbols))
	if len(symbols) == 0 {
		return fmt.Errorf("engine: no tradable symbols in %q", settings.Symbols)
	}

	equity := e.cfg.Trading.InitialEquity
	if sample, ok, err := e.store.LatestEquity(ctx); err != nil {
		engineLog.Warnf("load equity failed, using initial: %v", err)
	} else if ok {
		equity = sample.Equity
	}

	e.settings = settings
	e.preset = config.PresetFor(settings.Exchange)
	e.source = e.newSource(settings.Exchange, httpTimeout)
	e.gate = health.NewGate(e.source, e.preset.HealthSymbol, e.preset.HealthTimeframe)
	e.strat = strategy.NewEngine(e.gate)
	e.risk = NewRiskController(equity)
	e.book = NewBook(e.store, e.notify, e.risk)

	if positions, err := e.store.ListPositions(ctx); err != nil {
		engineLog.Warnf("restore positions failed: %v", err)
	} else if len(positions) > 0 {
		e.book.Restore(positions)
		engineLog.Infof("restored %d open position(s)", len(positions))
	}

	runCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.running = true
	e.persistStatus(ctx, true)

	healthCycle := scheduler.Cycle{
		Name:           "health",
		Interval:       e.cfg.Trading.HealthInterval(),
		RunImmediately: true,
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		healthCycle.Run(runCtx, e.gate.Refresh)
	}()

	for _, sym := range symbols {
		sym := sym
		cycle := scheduler.Cycle{
			Name:           "symbol:" + sym,
			Interval:       e.cfg.Trading.PollInterval(),
			RunImmediately: true,
		}
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			cycle.Run(runCtx, func(tickCtx context.Context) {
				e.processSymbol(tickCtx, sym)
			})
		}()
	}

	engineLog.Infof("started exchange=%s timeframe=%s symbols=%v dryRun=%v",
		settings.Exchange, settings.Timeframe, symbols, settings.DryRun)
	return nil
}

// Stop cancels the cycles, waits for in-flight ticks to finish, then closes
// every remaining position at its last known price. Calling Stop on a
// stopped engine is a no-op.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return nil
	}
	e.cancel()
	e.wg.Wait()
	e.running = false

	for _, sym := range e.book.Symbols() {
		if _, err := e.book.Close(ctx, sym, "manual stop", 0, 0); err != nil {
			engineLog.Errorf("close %s on stop failed: %v", sym, err)
		}
	}
	if err := e.source.Close(); err != nil {
		engineLog.Warnf("source close failed: %v", err)
	}
	e.persistStatus(ctx, false)
	engineLog.Infof("stopped")
	return nil
}

// Running reports whether the engine cycles are live.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Positions returns the live position set, empty when stopped.
func (e *Engine) Positions() []store.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.book == nil {
		return nil
	}
	return e.book.List()
}

// Health returns the gate snapshot, zero when the engine never started.
func (e *Engine) Health() health.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gate == nil {
		return health.State{}
	}
	return e.gate.Snapshot()
}

// Equity returns current realized equity; the configured initial value when
// the engine never started.
func (e *Engine) Equity() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.risk == nil {
		return e.cfg.Trading.InitialEquity
	}
	return e.risk.Equity()
}

// Status assembles the externally visible run state.
func (e *Engine) Status() store.BotStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	settings := e.settings
	if settings.Exchange == "" {
		settings = e.cfg.Trading.Settings()
	}
	return store.BotStatus{
		IsRunning:  e.running,
		LastUpdate: time.Now().UnixMilli(),
		Exchange:   settings.Exchange,
		Symbols:    settings.Symbols,
		Timeframe:  settings.Timeframe,
		DryRun:     settings.DryRun,
	}
}

// processSymbol is one polling tick for one symbol: fetch history, manage a
// live position (trail then exit check), or evaluate a new entry. Every
// failure path logs and returns; the next tick retries from scratch.
func (e *Engine) processSymbol(ctx context.Context, sym string) {
	e.risk.MaybeDailyReset()

	limit := e.settings.MinCandles() + 50
	if limit > e.preset.CandleLimit {
		limit = e.preset.CandleLimit
	}
	candles, err := e.source.FetchCandles(ctx, sym, e.settings.Timeframe, limit)
	if err != nil {
		if ctx.Err() == nil {
			engineLog.Warnf("fetch %s failed: %v", sym, err)
		}
		return
	}
	if len(candles) == 0 {
		return
	}
	price := market.LastClose(candles)

	if _, held := e.book.Get(sym); held {
		e.book.RefreshPrice(ctx, sym, price)
		if atr := indicator.ATR(candles, e.settings.ATRLen); atr > 0 {
			e.book.UpdateTrailingStop(ctx, sym, price, atr, e.settings)
		}
		pos, ok := e.book.Get(sym)
		if !ok {
			return
		}
		if d := EvaluateExit(pos, price); d.Exit {
			if _, err := e.book.Close(ctx, sym, d.Reason, d.ExitPrice, price); err != nil {
				engineLog.Errorf("close %s failed: %v", sym, err)
			}
		}
		return
	}

	// Drawdown breach only suppresses new entries; positions above keep
	// being managed.
	if e.risk.DrawdownExceeded(e.settings.DailyMaxDrawdown) {
		engineLog.Debugf("%s entry suppressed, daily drawdown limit hit", sym)
		return
	}
	if !e.risk.AdmitNewPosition(e.book.Count(), e.settings.MaxConcurrentPos) {
		return
	}

	sig := e.strat.Evaluate(ctx, sym, candles, e.settings)
	if !sig.ShouldEnter {
		return
	}
	if e.settings.DryRun {
		engineLog.Infof("[dry run] LONG %s @ %.4f sl=%.4f volZ=%.2f",
			sym, price, sig.StopLoss, sig.VolumeZ)
		return
	}
	if _, err := e.book.Open(ctx, sym, sig, price, e.settings); err != nil {
		engineLog.Warnf("open %s rejected: %v", sym, err)
	}
}

func (e *Engine) resolveSettings(ctx context.Context) (config.Settings, error) {
	settings, ok, err := e.store.GetSettings(ctx)
	if err != nil {
		return config.Settings{}, fmt.Errorf("engine: load settings: %w", err)
	}
	if !ok {
		settings = e.cfg.Trading.Settings()
		if err := e.store.SaveSettings(ctx, settings); err != nil {
			engineLog.Warnf("seed settings failed: %v", err)
		}
	}
	settings = config.ApplyPreset(settings)
	if err := config.ValidateSettings(settings); err != nil {
		return config.Settings{}, fmt.Errorf("engine: invalid settings: %w", err)
	}
	return settings, nil
}

func (e *Engine) persistStatus(ctx context.Context, running bool) {
	status := store.BotStatus{
		IsRunning:  running,
		LastUpdate: time.Now().UnixMilli(),
		Exchange:   e.settings.Exchange,
		Symbols:    e.settings.Symbols,
		Timeframe:  e.settings.Timeframe,
		DryRun:     e.settings.DryRun,
	}
	if err := e.store.SetStatus(ctx, status); err != nil {
		engineLog.Warnf("persist status failed: %v", err)
	}
}
