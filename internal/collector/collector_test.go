package collector

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"ozondash/internal/domain"
	"ozondash/internal/mocks"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fetcherFunc func(ctx context.Context, deviceID string, days int) (domain.AnalyticsResponse, error)

func (f fetcherFunc) FetchAnalytics(ctx context.Context, deviceID string, days int) (domain.AnalyticsResponse, error) {
	return f(ctx, deviceID, days)
}

var errBoom = errors.New("boom")

func TestParseJoinPolicy(t *testing.T) {
	testCases := []struct {
		in      string
		want    JoinPolicy
		wantErr bool
	}{
		{in: "", want: FailFast},
		{in: "fail-fast", want: FailFast},
		{in: "best-effort", want: BestEffort},
		{in: "sometimes", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseJoinPolicy(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCollect_UsesBackendAndKeepsOrder(t *testing.T) {
	backend := new(mocks.Backend)
	for _, id := range []string{"a", "b", "c"} {
		backend.On("FetchAnalytics", mock.Anything, id, 7).
			Return(domain.AnalyticsResponse{EntityID: id}, nil).Once()
	}

	c := New(zap.NewNop().Sugar(), backend, FailFast, time.Second, 0)
	results, err := c.Collect(context.Background(), []string{"a", "b", "c"}, 7)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].EntityID)
	assert.Equal(t, "b", results[1].EntityID)
	assert.Equal(t, "c", results[2].EntityID)
	backend.AssertExpectations(t)
}

func TestCollect_OrderIndependentOfCompletion(t *testing.T) {
	delays := map[string]time.Duration{"slow": 40 * time.Millisecond, "mid": 20 * time.Millisecond, "fast": 0}
	f := fetcherFunc(func(ctx context.Context, id string, days int) (domain.AnalyticsResponse, error) {
		time.Sleep(delays[id])
		return domain.AnalyticsResponse{EntityID: id}, nil
	})

	for _, policy := range []JoinPolicy{FailFast, BestEffort} {
		c := New(zap.NewNop().Sugar(), f, policy, time.Second, 0)
		results, err := c.Collect(context.Background(), []string{"slow", "mid", "fast"}, 1)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "slow", results[0].EntityID, string(policy))
		assert.Equal(t, "fast", results[2].EntityID, string(policy))
	}
}

func TestCollect_Empty(t *testing.T) {
	c := New(zap.NewNop().Sugar(), new(mocks.Backend), FailFast, time.Second, 0)

	results, err := c.Collect(context.Background(), nil, 7)
	assert.NoError(t, err)
	assert.Nil(t, results)
}

func TestCollect_FailFastCancelsOthers(t *testing.T) {
	var cancelled int32
	f := fetcherFunc(func(ctx context.Context, id string, days int) (domain.AnalyticsResponse, error) {
		if id == "bad" {
			return domain.AnalyticsResponse{}, errBoom
		}
		select {
		case <-ctx.Done():
			atomic.AddInt32(&cancelled, 1)
			return domain.AnalyticsResponse{}, ctx.Err()
		case <-time.After(5 * time.Second):
			return domain.AnalyticsResponse{EntityID: id}, nil
		}
	})

	c := New(zap.NewNop().Sugar(), f, FailFast, 0, 0)

	start := time.Now()
	results, err := c.Collect(context.Background(), []string{"a", "bad", "b"}, 7)

	assert.Nil(t, results)
	assert.True(t, errors.Is(err, errBoom))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, int32(2), atomic.LoadInt32(&cancelled))
}

func TestCollect_BestEffortReturnsSubset(t *testing.T) {
	f := fetcherFunc(func(ctx context.Context, id string, days int) (domain.AnalyticsResponse, error) {
		if id == "bad" {
			return domain.AnalyticsResponse{}, errBoom
		}
		return domain.AnalyticsResponse{EntityID: id}, nil
	})

	c := New(zap.NewNop().Sugar(), f, BestEffort, time.Second, 0)
	results, err := c.Collect(context.Background(), []string{"a", "bad", "b"}, 7)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].EntityID)
	assert.Equal(t, "b", results[1].EntityID)
}

func TestCollect_BestEffortAllFailed(t *testing.T) {
	f := fetcherFunc(func(ctx context.Context, id string, days int) (domain.AnalyticsResponse, error) {
		return domain.AnalyticsResponse{}, fmt.Errorf("%s: %w", id, errBoom)
	})

	c := New(zap.NewNop().Sugar(), f, BestEffort, time.Second, 0)
	results, err := c.Collect(context.Background(), []string{"a", "b"}, 7)

	assert.Nil(t, results)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a: boom")
	assert.Contains(t, err.Error(), "b: boom")
}

func TestCollect_PerRequestTimeout(t *testing.T) {
	f := fetcherFunc(func(ctx context.Context, id string, days int) (domain.AnalyticsResponse, error) {
		<-ctx.Done()
		return domain.AnalyticsResponse{}, ctx.Err()
	})

	c := New(zap.NewNop().Sugar(), f, FailFast, 20*time.Millisecond, 0)
	_, err := c.Collect(context.Background(), []string{"a"}, 7)

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestCollect_ConcurrencyLimit(t *testing.T) {
	var inFlight, peak int32
	f := fetcherFunc(func(ctx context.Context, id string, days int) (domain.AnalyticsResponse, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return domain.AnalyticsResponse{EntityID: id}, nil
	})

	ids := make([]string, 12)
	for i := range ids {
		ids[i] = fmt.Sprintf("dev-%d", i)
	}

	c := New(zap.NewNop().Sugar(), f, FailFast, time.Second, 3)
	results, err := c.Collect(context.Background(), ids, 7)
	require.NoError(t, err)

	assert.Len(t, results, 12)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}
