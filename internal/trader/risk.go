package trader

import (
	"sync"
	"time"

	"gander/internal/logger"
)

var riskLog = logger.NewScope("risk")

// RiskController owns running equity and the daily drawdown baseline. All
// equity mutation funnels through ApplyPnL so closes serialize cleanly even
// when symbol cycles run concurrently.
type RiskController struct {
	mu         sync.Mutex
	equity     float64
	dailyStart float64
	lastDayUTC string
	nowFn      func() time.Time
}

func NewRiskController(initialEquity float64) *RiskController {
	now := time.Now
	return &RiskController{
		equity:     initialEquity,
		dailyStart: initialEquity,
		lastDayUTC: dayKey(now()),
		nowFn:      now,
	}
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Equity returns the current realized equity.
func (r *RiskController) Equity() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.equity
}

// DailyStartEquity returns today's drawdown baseline.
func (r *RiskController) DailyStartEquity() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dailyStart
}

// ApplyPnL adds realized PnL and returns the new equity.
func (r *RiskController) ApplyPnL(pnl float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.equity += pnl
	return r.equity
}

// MaybeDailyReset re-baselines dailyStart at the first tick of a new UTC
// calendar day. Cheap enough to call once per cycle instead of via a timer.
func (r *RiskController) MaybeDailyReset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := dayKey(r.nowFn())
	if day == r.lastDayUTC {
		return
	}
	r.lastDayUTC = day
	r.dailyStart = r.equity
	riskLog.Infof("daily equity baseline reset to %.2f", r.equity)
}

// DrawdownExceeded reports whether today's loss has reached maxDrawdown
// (a fraction of the daily start equity). While true, new entries are
// suppressed for the rest of the UTC day; open positions are still managed.
func (r *RiskController) DrawdownExceeded(maxDrawdown float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dailyStart <= 0 {
		return false
	}
	dd := (r.dailyStart - r.equity) / r.dailyStart
	return dd >= maxDrawdown
}

// AdmitNewPosition denies entry once the live position count has reached the
// configured cap.
func (r *RiskController) AdmitNewPosition(liveCount, maxConcurrent int) bool {
	return liveCount < maxConcurrent
}
