package service

import (
	"context"

	"trends-dashboard/pkg/dashboard"
	"trends-dashboard/pkg/trends"
)

// DashboardService builds a dashboard report from raw user input.
type DashboardService interface {
	Run(ctx context.Context, raw string) (*dashboard.Report, error)
	Geos() []trends.GeoScope
}

var _ DashboardService = (*dashboard.Dashboard)(nil)
