// Package directory keeps a periodically refreshed view of the fleet: devices,
// outlets and the machines linking them.
package directory

import (
	"context"
	"sync"
	"time"

	"ozondash/internal/domain"
	"ozondash/internal/metrics"
	"ozondash/internal/ports"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultRefresh matches the polling interval of the dashboard front-end.
const DefaultRefresh = "@every 30s"

// Snapshot is an immutable copy of the fleet.
type Snapshot struct {
	domain.Fleet
}

// DeviceIDs resolves a scope to the device ids it covers. An outlet covers the
// known devices currently attached to its machines; a device scope covers that
// device whether or not it is known.
func (s *Snapshot) DeviceIDs(scope domain.Scope) []string {
	if scope.Kind == domain.ScopeDevice {
		if scope.DeviceID == "" {
			return nil
		}
		return []string{scope.DeviceID}
	}

	return lo.Map(s.InScope(scope), func(d domain.Device, _ int) string {
		return d.DeviceID
	})
}

// InScope returns the status records of the devices in scope.
func (s *Snapshot) InScope(scope domain.Scope) []domain.Device {
	switch scope.Kind {
	case domain.ScopeDevice:
		return lo.Filter(s.Devices, func(d domain.Device, _ int) bool {
			return d.DeviceID == scope.DeviceID
		})
	case domain.ScopeOutlet:
		attached := lo.FilterMap(s.Machines, func(m domain.Machine, _ int) (string, bool) {
			return m.CurrentDeviceID, m.OutletID == scope.OutletID && m.CurrentDeviceID != ""
		})
		return lo.Filter(s.Devices, func(d domain.Device, _ int) bool {
			return lo.Contains(attached, d.DeviceID)
		})
	default:
		return s.Devices
	}
}

// Directory serves the latest Snapshot and refreshes it on a schedule.
type Directory struct {
	log    *zap.SugaredLogger
	source ports.FleetSource

	mu   sync.RWMutex
	snap *Snapshot

	loads singleflight.Group

	cron *cron.Cron
}

func New(log *zap.SugaredLogger, source ports.FleetSource) *Directory {
	return &Directory{
		log:    log,
		source: source,
	}
}

// Refresh loads devices, outlets and machines concurrently and replaces the
// snapshot only when all three succeed.
func (d *Directory) Refresh(ctx context.Context) error {
	var next Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		next.Devices, err = d.source.ListDevices(gctx, false)
		return err
	})
	g.Go(func() (err error) {
		next.Outlets, err = d.source.ListOutlets(gctx, false)
		return err
	})
	g.Go(func() (err error) {
		next.Machines, err = d.source.ListMachines(gctx, false)
		return err
	})

	if err := g.Wait(); err != nil {
		metrics.DirectoryRefreshes.WithLabelValues("error").Inc()
		return errors.Wrap(err, "failed to refresh directory")
	}
	next.LoadedAt = time.Now()

	d.mu.Lock()
	d.snap = &next
	d.mu.Unlock()

	metrics.DirectoryRefreshes.WithLabelValues("ok").Inc()
	d.log.Debugw("directory refreshed",
		"devices", len(next.Devices),
		"outlets", len(next.Outlets),
		"machines", len(next.Machines),
	)
	return nil
}

func (d *Directory) current() *Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap
}

// Snapshot returns the current snapshot, loading it first if nothing has been
// loaded yet. Concurrent callers share one load.
func (d *Directory) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := d.current(); snap != nil {
		return snap, nil
	}

	v, err, _ := d.loads.Do("initial", func() (interface{}, error) {
		if snap := d.current(); snap != nil {
			return snap, nil
		}
		if err := d.Refresh(ctx); err != nil {
			return nil, err
		}
		return d.current(), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Start schedules refreshes using a cron spec such as "@every 30s".
func (d *Directory) Start(spec string, timeout time.Duration) error {
	if spec == "" {
		spec = DefaultRefresh
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := d.Refresh(ctx); err != nil {
			d.log.Errorf("scheduled directory refresh: %v", err)
		}
	})
	if err != nil {
		return errors.Wrapf(err, "invalid refresh schedule %q", spec)
	}

	d.cron = c
	c.Start()
	d.log.Infow("directory refresh scheduled", "schedule", spec)
	return nil
}

// Stop halts scheduled refreshes and waits for a running one to finish.
func (d *Directory) Stop() {
	if d.cron == nil {
		return
	}
	<-d.cron.Stop().Done()
}
