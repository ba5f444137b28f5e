// Package scheduler runs the periodic cycles that drive the engine: one per
// symbol plus the shared health refresh.
package scheduler

import (
	"context"
	"runtime/debug"
	"time"

	"gander/internal/logger"
)

// Cycle executes a task on a fixed interval until its context is canceled.
// Each tick is isolated: a panic inside the task is logged and the loop keeps
// going, so one bad cycle can never take down the scheduler.
type Cycle struct {
	Name           string
	Interval       time.Duration
	RunImmediately bool
}

// Run blocks until ctx is done. The task receives the cycle context so that
// in-flight fetches are abandoned on shutdown.
func (c Cycle) Run(ctx context.Context, task func(context.Context)) {
	if task == nil || c.Interval <= 0 {
		logger.Warnf("scheduler %s: invalid cycle (interval=%s), exit", c.Name, c.Interval)
		return
	}
	logger.Infof("scheduler %s: started interval=%s", c.Name, c.Interval)

	if c.RunImmediately {
		c.tick(ctx, task)
	}
	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Infof("scheduler %s: stopped", c.Name)
			return
		case <-ticker.C:
			c.tick(ctx, task)
		}
	}
}

func (c Cycle) tick(ctx context.Context, task func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("scheduler %s: cycle panic: %v\n%s", c.Name, r, debug.Stack())
		}
	}()
	if ctx.Err() != nil {
		return
	}
	task(ctx)
}
