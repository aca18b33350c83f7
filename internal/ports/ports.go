package ports

import (
	"context"
	"ozondash/internal/analytics"
	"ozondash/internal/domain"
)

type AnalyticsFetcher interface {
	FetchAnalytics(ctx context.Context, deviceID string, days int) (domain.AnalyticsResponse, error)
}

type FleetSource interface {
	ListDevices(ctx context.Context, onlineOnly bool) ([]domain.Device, error)
	ListOutlets(ctx context.Context, activeOnly bool) ([]domain.Outlet, error)
	ListMachines(ctx context.Context, activeOnly bool) ([]domain.Machine, error)
}

// Backend is the telemetry REST API.
type Backend interface {
	AnalyticsFetcher
	FleetSource
}

type ViewRepository interface {
	Save(ctx context.Context, view domain.ViewState) (domain.ViewState, error)
	FindByID(ctx context.Context, id string) (domain.ViewState, error)
	Delete(ctx context.Context, id string) error
}

// DashboardService serves the dashboard and charts pages. viewer identifies
// whose in-flight selection a new request replaces.
type DashboardService interface {
	Aggregated(ctx context.Context, viewer string, scope domain.Scope, period analytics.PeriodSpec) (*domain.AggregatedAnalytics, error)
	Chart(ctx context.Context, viewer string, scope domain.Scope, period analytics.PeriodSpec) (domain.ChartView, error)
	CurrentCounts(ctx context.Context, scope domain.Scope) (domain.Counts, error)
	Fleet(ctx context.Context) (domain.Fleet, error)
}
