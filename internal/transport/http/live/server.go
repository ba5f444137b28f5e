// Package livehttp exposes the controller's REST surface: run state,
// positions, trade history, equity, settings and start/stop control.
package livehttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gander/internal/config"
	"gander/internal/health"
	"gander/internal/logger"
	"gander/internal/store"
)

// BotController is the engine surface the HTTP layer drives. *trader.Engine
// implements it.
type BotController interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Running() bool
	Status() store.BotStatus
	Positions() []store.Position
	Health() health.State
	Equity() float64
}

// Server serves the REST API for one engine instance.
type Server struct {
	addr   string
	router *gin.Engine
}

// ServerConfig describes the HTTP server dependencies.
type ServerConfig struct {
	Addr            string
	Store           store.Store
	Bot             BotController
	DefaultSettings config.Settings
}

// NewServer builds the HTTP server and registers all routes.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Store == nil || cfg.Bot == nil {
		return nil, errors.New("live http server requires a store and a bot controller")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9991"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	h := &handlers{store: cfg.Store, bot: cfg.Bot, defaults: cfg.DefaultSettings}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.GET("/status", h.handleStatus)
	api.GET("/positions", h.handlePositions)
	api.GET("/trades", h.handleTrades)
	api.GET("/equity", h.handleEquity)
	api.GET("/settings", h.handleGetSettings)
	api.PUT("/settings", h.handlePutSettings)
	api.POST("/bot/start", h.handleBotStart)
	api.POST("/bot/stop", h.handleBotStop)

	router.GET("/chart/equity", h.handleEquityChart)

	return &Server{addr: cfg.Addr, router: router}, nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx cancels or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		c.Next()
		fullPath := path
		if query != "" {
			fullPath = path + "?" + query
		}
		logger.Debugf("HTTP %s %s status=%d dur=%s", method, fullPath, c.Writer.Status(), time.Since(start))
	}
}
