// Package app wires configuration, storage, the trading engine and the HTTP
// server into one runnable unit.
package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"gander/internal/config"
	"gander/internal/logger"
	"gander/internal/store"
	"gander/internal/trader"
	livehttp "gander/internal/transport/http/live"
)

const stopTimeout = 15 * time.Second

type App struct {
	cfg     *config.Config
	cfgPath string
	store   store.Store
	engine  *trader.Engine
	http    *livehttp.Server
}

// Engine exposes the trading engine, mainly for test harnesses.
func (a *App) Engine() *trader.Engine {
	if a == nil {
		return nil
	}
	return a.engine
}

// Run starts the HTTP server and the trading engine and blocks until ctx
// cancels or either part fails. On shutdown the engine gets a bounded grace
// period to close its positions before the store is released.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	defer a.store.Close()

	a.watchConfig()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Infof("app: http listening on %s", a.http.Addr())
		if err := a.http.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		if err := a.engine.Start(ctx); err != nil {
			return fmt.Errorf("engine start error: %w", err)
		}
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		return a.engine.Stop(stopCtx)
	})

	return group.Wait()
}

// watchConfig hot-reloads the parts that are safe to change at runtime. Only
// the log level applies live; trading changes go through the settings API
// and take effect on the next engine start.
func (a *App) watchConfig() {
	if a.cfgPath == "" {
		return
	}
	_, err := config.Watch(a.cfgPath,
		func(next *config.Config) {
			if next.App.LogLevel != a.cfg.App.LogLevel {
				logger.Infof("app: log level changed to %s", next.App.LogLevel)
				logger.SetLevel(next.App.LogLevel)
			}
			a.cfg.App.LogLevel = next.App.LogLevel
		},
		func(err error) {
			logger.Warnf("app: config reload failed: %v", err)
		},
	)
	if err != nil {
		logger.Warnf("app: config watch unavailable: %v", err)
	}
}
