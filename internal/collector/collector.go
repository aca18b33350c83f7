// Package collector fans analytics requests out over the devices of a scope and
// joins the results.
package collector

import (
	"context"
	"fmt"
	"time"

	"ozondash/internal/domain"
	"ozondash/internal/ports"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// JoinPolicy decides what happens when some of the requests fail.
type JoinPolicy string

const (
	// FailFast cancels outstanding requests on the first failure and returns no
	// partial result.
	FailFast JoinPolicy = "fail-fast"
	// BestEffort waits for every request and returns the successful subset. It
	// fails only when every request failed.
	BestEffort JoinPolicy = "best-effort"
)

// ParseJoinPolicy maps a configuration value to a JoinPolicy.
func ParseJoinPolicy(s string) (JoinPolicy, error) {
	switch JoinPolicy(s) {
	case FailFast, "":
		return FailFast, nil
	case BestEffort:
		return BestEffort, nil
	default:
		return "", fmt.Errorf("unknown join policy %q", s)
	}
}

type Collector struct {
	log     *zap.SugaredLogger
	fetcher ports.AnalyticsFetcher
	policy  JoinPolicy
	timeout time.Duration
	limit   int
}

// New returns a collector issuing at most limit concurrent requests, each
// bounded by timeout. A zero limit or timeout means unbounded.
func New(log *zap.SugaredLogger, fetcher ports.AnalyticsFetcher, policy JoinPolicy, timeout time.Duration, limit int) *Collector {
	return &Collector{
		log:     log,
		fetcher: fetcher,
		policy:  policy,
		timeout: timeout,
		limit:   limit,
	}
}

// Collect fetches the analytics of every device over the last days days.
// Results keep the order of deviceIDs; under BestEffort failed devices are left
// out.
func (c *Collector) Collect(ctx context.Context, deviceIDs []string, days int) ([]domain.AnalyticsResponse, error) {
	if len(deviceIDs) == 0 {
		return nil, nil
	}

	if c.policy == BestEffort {
		return c.collectBestEffort(ctx, deviceIDs, days)
	}
	return c.collectFailFast(ctx, deviceIDs, days)
}

func (c *Collector) collectFailFast(ctx context.Context, deviceIDs []string, days int) ([]domain.AnalyticsResponse, error) {
	results := make([]domain.AnalyticsResponse, len(deviceIDs))

	g, gctx := errgroup.WithContext(ctx)
	if c.limit > 0 {
		g.SetLimit(c.limit)
	}

	for i, id := range deviceIDs {
		i, id := i, id
		g.Go(func() error {
			r, err := c.fetch(gctx, id, days)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Collector) collectBestEffort(ctx context.Context, deviceIDs []string, days int) ([]domain.AnalyticsResponse, error) {
	results := make([]domain.AnalyticsResponse, len(deviceIDs))
	errs := make([]error, len(deviceIDs))

	var g errgroup.Group
	if c.limit > 0 {
		g.SetLimit(c.limit)
	}

	for i, id := range deviceIDs {
		i, id := i, id
		g.Go(func() error {
			results[i], errs[i] = c.fetch(ctx, id, days)
			return nil
		})
	}
	g.Wait()

	var combined error
	kept := make([]domain.AnalyticsResponse, 0, len(deviceIDs))
	for i := range deviceIDs {
		if errs[i] != nil {
			combined = multierr.Append(combined, errs[i])
			continue
		}
		kept = append(kept, results[i])
	}

	if len(kept) == 0 {
		return nil, errors.Wrap(combined, "every analytics request failed")
	}
	if combined != nil {
		c.log.Warnw("partial analytics result",
			"requested", len(deviceIDs),
			"failed", len(multierr.Errors(combined)),
			"error", combined,
		)
	}
	return kept, nil
}

func (c *Collector) fetch(ctx context.Context, deviceID string, days int) (domain.AnalyticsResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.fetcher.FetchAnalytics(ctx, deviceID, days)
}
