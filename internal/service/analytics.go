// Package service implements the dashboard use cases on top of the directory,
// the collector and the pure analytics functions.
package service

import (
	"context"

	"ozondash/internal/analytics"
	"ozondash/internal/collector"
	"ozondash/internal/directory"
	"ozondash/internal/domain"
	"ozondash/internal/metrics"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type AnalyticsService struct {
	log       *zap.SugaredLogger
	dir       *directory.Directory
	collector *collector.Collector
	seq       *collector.Sequencer
}

func NewAnalyticsService(log *zap.SugaredLogger, dir *directory.Directory, c *collector.Collector, seq *collector.Sequencer) *AnalyticsService {
	return &AnalyticsService{
		log:       log,
		dir:       dir,
		collector: c,
		seq:       seq,
	}
}

// Aggregated fetches and merges the analytics of every device in scope. A
// scope without devices yields nil and no error. When viewer starts another
// aggregation before this one finishes, this one returns ErrSuperseded; an
// empty viewer is never sequenced.
func (s *AnalyticsService) Aggregated(ctx context.Context, viewer string, scope domain.Scope, period analytics.PeriodSpec) (*domain.AggregatedAnalytics, error) {
	current := func() bool { return true }
	if viewer != "" {
		var ticket *collector.Ticket
		ctx, ticket = s.seq.Begin(ctx, viewer)
		defer ticket.Done()
		current = ticket.Current
	}
	superseded := func() error {
		metrics.SupersededAggregations.Inc()
		s.log.Debugw("discarding superseded aggregation", "viewer", viewer, "scope", scope.String())
		return collector.ErrSuperseded
	}

	ids, err := s.resolve(ctx, scope)
	if !current() {
		return nil, superseded()
	}
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	responses, err := s.collector.Collect(ctx, ids, period.FetchDays())
	if !current() {
		return nil, superseded()
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to collect analytics for %s", scope)
	}

	metrics.AggregatedDevices.Set(float64(len(responses)))
	return analytics.Aggregate(scope, responses), nil
}

// Chart builds the full charts page payload for one selection.
func (s *AnalyticsService) Chart(ctx context.Context, viewer string, scope domain.Scope, period analytics.PeriodSpec) (domain.ChartView, error) {
	agg, err := s.Aggregated(ctx, viewer, scope, period)
	if err != nil {
		return domain.ChartView{}, err
	}

	return domain.ChartView{
		Scope:       scope,
		Period:      period.String(),
		Analytics:   agg,
		Buckets:     analytics.Bucketize(agg, period),
		TotalSeries: analytics.BucketizeTotalOnly(agg, period),
		Breakdown:   analytics.Breakdown(agg),
	}, nil
}

// CurrentCounts sums the live counters of the devices in scope.
func (s *AnalyticsService) CurrentCounts(ctx context.Context, scope domain.Scope) (domain.Counts, error) {
	snap, err := s.dir.Snapshot(ctx)
	if err != nil {
		return domain.Counts{}, err
	}

	devices := snap.InScope(scope)
	return domain.Counts{
		Basic:    lo.SumBy(devices, func(d domain.Device) int { return d.CurrentCountBasic }),
		Standard: lo.SumBy(devices, func(d domain.Device) int { return d.CurrentCountStandard }),
		Premium:  lo.SumBy(devices, func(d domain.Device) int { return d.CurrentCountPremium }),
		Devices:  len(devices),
	}, nil
}

func (s *AnalyticsService) Fleet(ctx context.Context) (domain.Fleet, error) {
	snap, err := s.dir.Snapshot(ctx)
	if err != nil {
		return domain.Fleet{}, err
	}
	return snap.Fleet, nil
}

// A single device needs no directory lookup.
func (s *AnalyticsService) resolve(ctx context.Context, scope domain.Scope) ([]string, error) {
	if scope.Kind == domain.ScopeDevice {
		if scope.DeviceID == "" {
			return nil, nil
		}
		return []string{scope.DeviceID}, nil
	}

	snap, err := s.dir.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.DeviceIDs(scope), nil
}
