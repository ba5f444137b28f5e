package livehttp

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"gander/internal/logger"
)

// handleEquityChart renders the realized-equity series as a standalone HTML
// page, handy for eyeballing a run without a frontend.
func (h *handlers) handleEquityChart(c *gin.Context) {
	samples, err := h.store.ListEquity(c.Request.Context(), parseLimit(c.Query("limit"), defaultEquityLimit))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	xAxis := make([]string, 0, len(samples))
	points := make([]opts.LineData, 0, len(samples))
	for _, s := range samples {
		xAxis = append(xAxis, time.UnixMilli(s.TS).UTC().Format("01-02 15:04"))
		points = append(points, opts.LineData{Value: s.Equity})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Equity", Width: "1200px", Height: "520px"}),
		charts.WithTitleOpts(opts.Title{Title: "Realized equity"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
	)
	line.SetXAxis(xAxis).AddSeries("equity", points,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := line.Render(c.Writer); err != nil {
		logger.Warnf("chart: render equity failed: %v", err)
	}
}
