package trader

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"gander/internal/config"
	"gander/internal/gateway/notifier"
	"gander/internal/logger"
	"gander/internal/pkg/trading"
	"gander/internal/store"
	"gander/internal/strategy"
)

var bookLog = logger.NewScope("book")

// Book owns the live position set: it is the only component that writes
// positions, and every mutation happens under its lock. The store mirrors
// the set for the API and for crash inspection; store failures are logged
// and the in-memory set stays authoritative.
type Book struct {
	mu        sync.Mutex
	positions map[string]store.Position

	store  store.Store
	notify notifier.TextNotifier
	risk   *RiskController
	nowFn  func() time.Time
}

func NewBook(st store.Store, notify notifier.TextNotifier, risk *RiskController) *Book {
	if notify == nil {
		notify = notifier.Noop{}
	}
	return &Book{
		positions: make(map[string]store.Position),
		store:     st,
		notify:    notify,
		risk:      risk,
		nowFn:     time.Now,
	}
}

// Count returns the number of live positions.
func (b *Book) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.positions)
}

// Get returns the live position for a symbol, if any.
func (b *Book) Get(symbol string) (store.Position, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.positions[symbol]
	return p, ok
}

// List returns a copy of all live positions.
func (b *Book) List() []store.Position {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]store.Position, 0, len(b.positions))
	for _, p := range b.positions {
		out = append(out, p)
	}
	return out
}

// Symbols returns the symbols with a live position.
func (b *Book) Symbols() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.positions))
	for s := range b.positions {
		out = append(out, s)
	}
	return out
}

// Restore seeds the book with positions persisted by a previous run.
func (b *Book) Restore(positions []store.Position) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range positions {
		b.positions[p.Symbol] = p
	}
}

// Open sizes and creates a long position from an entry signal. It refuses
// non-positive stop distances and non-finite or non-positive quantities,
// never doubles up on a symbol, and enforces the concurrent position cap.
// The cap check happens under the book lock because symbol cycles run in
// parallel; the engine's admission check is only a pre-filter. The fill is
// simulated at the given price.
func (b *Book) Open(ctx context.Context, symbol string, sig strategy.Signal, price float64, settings config.Settings) (store.Position, error) {
	stopDistance := price - sig.StopLoss
	if stopDistance <= 0 {
		return store.Position{}, fmt.Errorf("invalid stop distance %.6f for %s", stopDistance, symbol)
	}
	riskAmount := b.risk.Equity() * settings.RiskPerTrade
	qty := trading.RiskQuantity(riskAmount, stopDistance)
	if qty <= 0 {
		return store.Position{}, fmt.Errorf("invalid quantity %.6f for %s", qty, symbol)
	}

	now := b.nowFn().UnixMilli()
	pos := store.Position{
		ID:           uuid.NewString(),
		Symbol:       symbol,
		Side:         "long",
		Qty:          qty,
		Entry:        price,
		CurrentPrice: price,
		StopLoss:     sig.StopLoss,
		InitialStop:  sig.StopLoss,
		OpenTime:     now,
	}

	b.mu.Lock()
	if _, exists := b.positions[symbol]; exists {
		b.mu.Unlock()
		return store.Position{}, fmt.Errorf("position already open for %s", symbol)
	}
	if settings.MaxConcurrentPos > 0 && len(b.positions) >= settings.MaxConcurrentPos {
		b.mu.Unlock()
		return store.Position{}, fmt.Errorf("position cap %d reached, rejecting %s", settings.MaxConcurrentPos, symbol)
	}
	b.positions[symbol] = pos
	b.mu.Unlock()

	if err := b.store.CreatePosition(ctx, pos); err != nil {
		bookLog.Errorf("persist position %s failed: %v", symbol, err)
	}
	snapshot, _ := json.Marshal(sig)
	trade := store.Trade{
		ID:       uuid.NewString(),
		TS:       now,
		Symbol:   symbol,
		Side:     "long",
		Qty:      qty,
		Entry:    price,
		StopLoss: sig.StopLoss,
		Status:   store.TradeStatusOpen,
		Signal:   snapshot,
	}
	if err := b.store.CreateTrade(ctx, trade); err != nil {
		bookLog.Errorf("persist entry trade %s failed: %v", symbol, err)
	}

	bookLog.Infof("ENTER LONG %s qty=%.6f @ %.4f sl=%.4f volZ=%.2f",
		symbol, qty, price, sig.StopLoss, sig.VolumeZ)
	b.sendAlert(notifier.EntryAlert(symbol, price, sig.StopLoss, sig.VolumeZ, settings.RiskPerTrade))
	return pos, nil
}

// ExitDecision is the outcome of EvaluateExit.
type ExitDecision struct {
	Exit      bool
	Reason    string
	ExitPrice float64
}

// EvaluateExit checks exit conditions for a live position. A stop hit exits
// at the stop level itself, not the touched market price: the stop is
// treated as the fill for PnL accounting. Additional exit reasons slot in
// here without changing the shape.
func EvaluateExit(pos store.Position, currentPrice float64) ExitDecision {
	if pos.StopLoss > 0 && currentPrice <= pos.StopLoss {
		return ExitDecision{Exit: true, Reason: "stop loss triggered", ExitPrice: pos.StopLoss}
	}
	return ExitDecision{}
}

// UpdateTrailingStop raises the stop to currentPrice - atrMultTrail*atr while
// unrealized profit stands at one initial risk unit or more. The profit gate
// is measured against the stop set at entry, which the position carries for
// its whole life, so the gate keeps applying after the stop has trailed. The
// stop only ever moves up.
func (b *Book) UpdateTrailingStop(ctx context.Context, symbol string, currentPrice, atr float64, settings config.Settings) {
	b.mu.Lock()
	pos, ok := b.positions[symbol]
	if !ok {
		b.mu.Unlock()
		return
	}
	anchor := pos.InitialStop
	if anchor <= 0 {
		// Rows persisted before the entry stop was recorded.
		anchor = pos.StopLoss
	}
	if initialRisk := pos.Entry - anchor; initialRisk > 0 {
		profitMultiple := (currentPrice - pos.Entry) / initialRisk
		if profitMultiple < 1.0 {
			b.mu.Unlock()
			return
		}
	}
	newStop := currentPrice - settings.ATRMultTrail*atr
	if newStop <= pos.StopLoss {
		b.mu.Unlock()
		return
	}
	oldStop := pos.StopLoss
	pos.StopLoss = newStop
	pos.TrailingActive = true
	pos.CurrentPrice = currentPrice
	pos.UnrealizedPnl = (currentPrice - pos.Entry) * pos.Qty
	b.positions[symbol] = pos
	b.mu.Unlock()

	bookLog.Infof("trail %s stop %.4f -> %.4f", symbol, oldStop, newStop)
	if err := b.store.UpdatePosition(ctx, pos); err != nil {
		bookLog.Errorf("persist trailing update %s failed: %v", symbol, err)
	}
}

// RefreshPrice updates the mark price and unrealized PnL of a live position.
func (b *Book) RefreshPrice(ctx context.Context, symbol string, currentPrice float64) {
	b.mu.Lock()
	pos, ok := b.positions[symbol]
	if !ok {
		b.mu.Unlock()
		return
	}
	pos.CurrentPrice = currentPrice
	pos.UnrealizedPnl = (currentPrice - pos.Entry) * pos.Qty
	b.positions[symbol] = pos
	b.mu.Unlock()

	if err := b.store.UpdatePosition(ctx, pos); err != nil {
		bookLog.Errorf("persist price refresh %s failed: %v", symbol, err)
	}
}

// ResolveExitPrice picks the fill price for a close from the ordered
// fallback chain: explicit caller price (e.g. the stop level), then the
// freshest fetched close, then the position's cached mark price, then entry.
// The fully degraded case therefore closes flat.
func ResolveExitPrice(explicit, freshClose, cachedPrice, entry float64) float64 {
	switch {
	case explicit > 0:
		return explicit
	case freshClose > 0:
		return freshClose
	case cachedPrice > 0:
		return cachedPrice
	default:
		return entry
	}
}

// Close removes the live position, applies realized PnL to equity, appends
// the terminal trade record and an equity sample, and alerts. explicit and
// freshClose may be zero; see ResolveExitPrice.
func (b *Book) Close(ctx context.Context, symbol, reason string, explicit, freshClose float64) (float64, error) {
	b.mu.Lock()
	pos, ok := b.positions[symbol]
	if !ok {
		b.mu.Unlock()
		return 0, fmt.Errorf("no live position for %s", symbol)
	}
	delete(b.positions, symbol)
	b.mu.Unlock()

	exitPrice := ResolveExitPrice(explicit, freshClose, pos.CurrentPrice, pos.Entry)
	pnl := (exitPrice - pos.Entry) * pos.Qty
	equity := b.risk.ApplyPnL(pnl)
	now := b.nowFn().UnixMilli()

	if err := b.store.DeletePosition(ctx, pos.ID); err != nil {
		bookLog.Errorf("delete position %s failed: %v", symbol, err)
	}
	trade := store.Trade{
		ID:        uuid.NewString(),
		TS:        now,
		Symbol:    symbol,
		Side:      "long",
		Qty:       pos.Qty,
		Entry:     pos.Entry,
		Status:    store.TradeStatusClosed,
		Pnl:       pnl,
		ExitPrice: exitPrice,
		ExitTime:  now,
		Reason:    reason,
	}
	if err := b.store.CreateTrade(ctx, trade); err != nil {
		bookLog.Errorf("persist exit trade %s failed: %v", symbol, err)
	}
	if err := b.store.CreateEquitySample(ctx, store.EquitySample{
		ID:     uuid.NewString(),
		TS:     now,
		Equity: equity,
	}); err != nil {
		bookLog.Errorf("persist equity sample failed: %v", err)
	}

	bookLog.Infof("CLOSE %s @ %.4f pnl=%.2f equity=%.2f reason=%s",
		symbol, exitPrice, pnl, equity, reason)
	b.sendAlert(notifier.ExitAlert(symbol, exitPrice, pnl, equity, reason))
	return pnl, nil
}

func (b *Book) sendAlert(text string) {
	if err := b.notify.SendText(text); err != nil {
		bookLog.Warnf("notification failed: %v", err)
	}
}
