package circuit

import (
	"sync"
	"time"

	"gander/internal/logger"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

// Breaker trips after threshold consecutive failures and suppresses further
// attempts for the cool-off duration. The first attempt after the cool-off
// runs half-open: one more failure reopens it, a success closes it.
type Breaker struct {
	mu          sync.Mutex
	state       State
	failures    int
	threshold   int
	coolOff     time.Duration
	lastFailure time.Time
	name        string
	nowFn       func() time.Time
}

func NewBreaker(name string, threshold int, coolOff time.Duration) *Breaker {
	return &Breaker{
		name:      name,
		threshold: threshold,
		coolOff:   coolOff,
		state:     StateClosed,
		nowFn:     time.Now,
	}
}

// Allow reports whether an attempt may proceed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if b.nowFn().Sub(b.lastFailure) > b.coolOff {
			b.transition(StateHalfOpen)
			return true
		}
		return false
	default:
		return true
	}
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.transition(StateClosed)
		b.failures = 0
	case StateClosed:
		b.failures = 0
	}
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailure = b.nowFn()

	switch b.state {
	case StateClosed:
		if b.failures >= b.threshold {
			b.transition(StateOpen)
		}
	case StateHalfOpen:
		b.transition(StateOpen)
	}
}

// Failures returns the current consecutive-failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

func (b *Breaker) transition(to State) {
	from := b.state
	b.state = to
	logger.Warnf("circuit %s: %s -> %s (failures=%d/%d, cooloff=%s)",
		b.name, from, to, b.failures, b.threshold, b.coolOff)
}
