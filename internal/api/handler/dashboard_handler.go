package handler

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/core/ports"
	"github.com/chaldal/admin-console/internal/infrastructure/apiclient"
)

const defaultSalesPeriod = "week"

var salesPeriods = []string{"today", "week", "month", "year"}

type DashboardHandler struct {
	api ports.DashboardAPI
	log zerolog.Logger
}

func NewDashboardHandler(api ports.DashboardAPI, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{api: api, log: log}
}

type dashboardData struct {
	Stats   *domain.DashboardStats
	Chart   []domain.SalesPoint
	Period  string
	Periods []string
}

// Show loads the statistics and the sales chart concurrently. Each panel
// degrades on its own; a rejected token stops the view.
func (h *DashboardHandler) Show(c echo.Context) error {
	period := c.QueryParam("period")
	if !slices.Contains(salesPeriods, period) {
		period = defaultSalesPeriod
	}
	data := dashboardData{Period: period, Periods: salesPeriods}

	ctx := c.Request().Context()
	var g errgroup.Group
	var statsErr, chartErr error
	g.Go(func() error {
		data.Stats, statsErr = h.api.DashboardStats(ctx)
		return statsErr
	})
	g.Go(func() error {
		data.Chart, chartErr = h.api.SalesChart(ctx, period)
		return chartErr
	})
	err := g.Wait()
	if expired(c, statsErr, chartErr) {
		return nil
	}

	p := newPage(c, "Dashboard", "dashboard")
	if err != nil {
		h.log.Warn().Err(err).Msg("dashboard: partial data")
		p.Error = apiclient.UserMessage(err, "Some dashboard data could not be loaded")
	}
	p.Data = data
	return c.Render(http.StatusOK, "dashboard", p)
}
