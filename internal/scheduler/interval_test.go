package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCycleRunsImmediatelyAndOnTicks(t *testing.T) {
	var ticks atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := Cycle{Name: "test", Interval: 20 * time.Millisecond, RunImmediately: true}
	done := make(chan struct{})
	go func() {
		c.Run(ctx, func(context.Context) { ticks.Add(1) })
		close(done)
	}()

	assert.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestCycleSurvivesPanics(t *testing.T) {
	var ticks atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := Cycle{Name: "test", Interval: 10 * time.Millisecond, RunImmediately: true}
	done := make(chan struct{})
	go func() {
		c.Run(ctx, func(context.Context) {
			ticks.Add(1)
			panic("bad tick")
		})
		close(done)
	}()

	assert.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, 5*time.Millisecond,
		"a panicking task must not kill the cycle")
	cancel()
	<-done
}

func TestCycleRejectsInvalidInterval(t *testing.T) {
	c := Cycle{Name: "test", Interval: 0}
	done := make(chan struct{})
	go func() {
		c.Run(context.Background(), func(context.Context) {})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cycle with zero interval must return immediately")
	}
}

func TestCycleStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := Cycle{Name: "test", Interval: 5 * time.Millisecond}
	done := make(chan struct{})
	go func() {
		c.Run(ctx, func(context.Context) {})
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cycle must stop on context cancel")
	}
}
