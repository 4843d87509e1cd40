package apiclient

import (
	"context"
	"net/url"

	"github.com/chaldal/admin-console/internal/core/domain"
	"github.com/chaldal/admin-console/internal/core/ports"
)

var _ ports.DashboardAPI = (*Client)(nil)

func (c *Client) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	data, err := c.get(ctx, "dashboard.stats", "/dashboard/stats", nil)
	if err != nil {
		return nil, err
	}
	var stats domain.DashboardStats
	if err := decodeInto(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SalesChart returns the chart buckets for period (today, week, month, year).
func (c *Client) SalesChart(ctx context.Context, period string) ([]domain.SalesPoint, error) {
	var q url.Values
	if period != "" {
		q = url.Values{"period": {period}}
	}
	data, err := c.get(ctx, "dashboard.sales_chart", "/dashboard/sales-chart", q)
	if err != nil {
		return nil, err
	}
	var points []domain.SalesPoint
	if err := field(data, "chart_data", &points); err != nil {
		return nil, err
	}
	return points, nil
}
