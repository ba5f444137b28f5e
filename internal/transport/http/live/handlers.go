package livehttp

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gander/internal/config"
	"gander/internal/store"
)

const (
	defaultTradeLimit  = 100
	defaultEquityLimit = 500
	maxListLimit       = 2000
)

type handlers struct {
	store    store.Store
	bot      BotController
	defaults config.Settings
}

func (h *handlers) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"bot":           h.bot.Status(),
		"health":        h.bot.Health(),
		"equity":        h.bot.Equity(),
		"openPositions": len(h.bot.Positions()),
	})
}

// handlePositions serves the live set while the engine runs and the
// persisted mirror otherwise.
func (h *handlers) handlePositions(c *gin.Context) {
	if h.bot.Running() {
		positions := h.bot.Positions()
		if positions == nil {
			positions = []store.Position{}
		}
		c.JSON(http.StatusOK, positions)
		return
	}
	positions, err := h.store.ListPositions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if positions == nil {
		positions = []store.Position{}
	}
	c.JSON(http.StatusOK, positions)
}

func (h *handlers) handleTrades(c *gin.Context) {
	filter := store.TradeFilter{
		Symbol: c.Query("symbol"),
		Status: c.Query("status"),
		Limit:  parseLimit(c.Query("limit"), defaultTradeLimit),
	}
	trades, err := h.store.ListTrades(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if trades == nil {
		trades = []store.Trade{}
	}
	c.JSON(http.StatusOK, trades)
}

func (h *handlers) handleEquity(c *gin.Context) {
	samples, err := h.store.ListEquity(c.Request.Context(), parseLimit(c.Query("limit"), defaultEquityLimit))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if samples == nil {
		samples = []store.EquitySample{}
	}
	c.JSON(http.StatusOK, samples)
}

func (h *handlers) handleGetSettings(c *gin.Context) {
	settings, ok, err := h.store.GetSettings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		settings = h.defaults
	}
	c.JSON(http.StatusOK, settings)
}

// handlePutSettings applies a partial update on top of the current record.
// The body is schema-checked first so unknown keys and wrong types fail with
// a clear message, then the merged record passes the struct validation. A
// running engine keeps trading on its old snapshot until restarted.
func (h *handlers) handlePutSettings(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	if err := validateSettingsPayload(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, ok, err := h.store.GetSettings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		settings = h.defaults
	}
	if err := json.Unmarshal(body, &settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	settings = config.ApplyPreset(settings)
	if err := config.ValidateSettings(settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.SaveSettings(c.Request.Context(), settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"settings":        settings,
		"restartRequired": h.bot.Running(),
	})
}

func (h *handlers) handleBotStart(c *gin.Context) {
	if err := h.bot.Start(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.bot.Status())
}

func (h *handlers) handleBotStop(c *gin.Context) {
	if err := h.bot.Stop(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.bot.Status())
}

func parseLimit(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}
