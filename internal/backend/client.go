package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ozondash/internal/domain"
	"ozondash/internal/metrics"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const userAgent = "ozondash/1.0"

// Options configures the backend client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	RPS     float64
	Burst   int
}

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status code %d: %s", e.Endpoint, e.Status, e.Body)
}

// Client talks to the telemetry REST API.
type Client struct {
	log     *zap.SugaredLogger
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(log *zap.SugaredLogger, opts Options) *Client {
	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		log:     log,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(limit, burst),
	}
}

// BaseURL is the endpoint root every request is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchAnalytics returns the analytics of one device over the last days days.
func (c *Client) FetchAnalytics(ctx context.Context, deviceID string, days int) (domain.AnalyticsResponse, error) {
	query := url.Values{}
	query.Set("device_id", deviceID)
	query.Set("days", strconv.Itoa(days))

	var payload analyticsPayload
	if err := c.get(ctx, "analytics", "/events/analytics/", query, &payload); err != nil {
		return domain.AnalyticsResponse{}, errors.Wrapf(err, "failed to fetch analytics for device %s", deviceID)
	}

	return payload.toDomain(deviceID), nil
}

// ListDevices returns device status records, only the online ones when
// onlineOnly is set.
func (c *Client) ListDevices(ctx context.Context, onlineOnly bool) ([]domain.Device, error) {
	path := "/devices/all/"
	if onlineOnly {
		path = "/devices/online/"
	}

	var payload []devicePayload
	if err := c.get(ctx, "devices", path, nil, &payload); err != nil {
		return nil, errors.Wrap(err, "failed to list devices")
	}

	devices := make([]domain.Device, 0, len(payload))
	for _, p := range payload {
		if p.DeviceID == "" {
			continue
		}
		devices = append(devices, p.toDomain())
	}
	return devices, nil
}

func (c *Client) ListOutlets(ctx context.Context, activeOnly bool) ([]domain.Outlet, error) {
	var payload []outletPayload
	if err := c.get(ctx, "outlets", "/outlets/", activeQuery(activeOnly), &payload); err != nil {
		return nil, errors.Wrap(err, "failed to list outlets")
	}

	outlets := make([]domain.Outlet, len(payload))
	for i, p := range payload {
		outlets[i] = p.toDomain()
	}
	return outlets, nil
}

func (c *Client) ListMachines(ctx context.Context, activeOnly bool) ([]domain.Machine, error) {
	var payload []machinePayload
	if err := c.get(ctx, "machines", "/machines/", activeQuery(activeOnly), &payload); err != nil {
		return nil, errors.Wrap(err, "failed to list machines")
	}

	machines := make([]domain.Machine, len(payload))
	for i, p := range payload {
		machines[i] = p.toDomain()
	}
	return machines, nil
}

func activeQuery(activeOnly bool) url.Values {
	if !activeOnly {
		return nil
	}
	return url.Values{"is_active": []string{"true"}}
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limiter")
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	status := "error"
	defer func() {
		metrics.BackendRequests.WithLabelValues(endpoint, status).Inc()
		metrics.BackendDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "making request")
	}
	defer resp.Body.Close()
	status = strconv.Itoa(resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "reading response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warnw("backend request failed", "endpoint", endpoint, "status", resp.StatusCode)
		return &StatusError{Endpoint: endpoint, Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "decoding response")
	}

	c.log.Debugw("backend request", "endpoint", endpoint, "path", path, "duration", time.Since(start))
	return nil
}
