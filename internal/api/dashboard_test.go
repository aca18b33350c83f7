package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ozondash/internal/analytics"
	"ozondash/internal/collector"
	"ozondash/internal/domain"
	"ozondash/internal/mocks"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func periodOf(kind analytics.PeriodKind, anchor string) interface{} {
	return mock.MatchedBy(func(p analytics.PeriodSpec) bool {
		return p.Kind == kind && analytics.DateKey(p.Anchor) == anchor
	})
}

func TestGetAnalytics(t *testing.T) {
	sample := &domain.AggregatedAnalytics{
		EntityID: "all_devices",
		Totals:   domain.Totals{Total: 3, Basic: 3},
	}

	testCases := []struct {
		name        string
		query       string
		setupMock   func(m *mocks.DashboardService)
		expectCode  int
		expectNull  bool
		expectError bool
	}{
		{
			name:  "Defaults To Current Week Of All Devices",
			query: "",
			setupMock: func(m *mocks.DashboardService) {
				m.On("Aggregated", mock.Anything, "tab-1/analytics", domain.Scope{Kind: domain.ScopeAll}, periodOf(analytics.PeriodWeek, "2024-06-12")).
					Return(sample, nil)
			},
			expectCode: http.StatusOK,
		},
		{
			name:  "Outlet Month",
			query: "scope=outlet:4&period=month&date=2024-02-10",
			setupMock: func(m *mocks.DashboardService) {
				m.On("Aggregated", mock.Anything, "tab-1/analytics", domain.Scope{Kind: domain.ScopeOutlet, OutletID: 4}, periodOf(analytics.PeriodMonth, "2024-02-10")).
					Return(sample, nil)
			},
			expectCode: http.StatusOK,
		},
		{
			name:  "Dotted Date",
			query: "scope=device:dev-1&period=day&date=01.03.2024",
			setupMock: func(m *mocks.DashboardService) {
				m.On("Aggregated", mock.Anything, "tab-1/analytics", domain.Scope{Kind: domain.ScopeDevice, DeviceID: "dev-1"}, periodOf(analytics.PeriodDay, "2024-03-01")).
					Return(sample, nil)
			},
			expectCode: http.StatusOK,
		},
		{
			name:  "Custom Range Swapped",
			query: "period=custom&start=2024-06-20&end=2024-06-01",
			setupMock: func(m *mocks.DashboardService) {
				m.On("Aggregated", mock.Anything, "tab-1/analytics", domain.Scope{Kind: domain.ScopeAll}, mock.MatchedBy(func(p analytics.PeriodSpec) bool {
					return p.Kind == analytics.PeriodCustom && p.CustomDays() == 20
				})).Return(sample, nil)
			},
			expectCode: http.StatusOK,
		},
		{
			name:  "Empty Scope Is Null",
			query: "scope=outlet:99",
			setupMock: func(m *mocks.DashboardService) {
				m.On("Aggregated", mock.Anything, "tab-1/analytics", domain.Scope{Kind: domain.ScopeOutlet, OutletID: 99}, mock.Anything).
					Return(nil, nil)
			},
			expectCode: http.StatusOK,
			expectNull: true,
		},
		{
			name:        "Invalid Scope",
			query:       "scope=machine:1",
			setupMock:   func(m *mocks.DashboardService) {},
			expectCode:  http.StatusBadRequest,
			expectError: true,
		},
		{
			name:        "Invalid Period",
			query:       "period=decade",
			setupMock:   func(m *mocks.DashboardService) {},
			expectCode:  http.StatusBadRequest,
			expectError: true,
		},
		{
			name:        "Custom Range Too Long",
			query:       "period=custom&start=0001-01-01&end=9999-12-31",
			setupMock:   func(m *mocks.DashboardService) {},
			expectCode:  http.StatusBadRequest,
			expectError: true,
		},
		{
			name:        "Unknown View Id Format",
			query:       "view=latest",
			setupMock:   func(m *mocks.DashboardService) {},
			expectCode:  http.StatusBadRequest,
			expectError: true,
		},
		{
			name:        "Invalid Date",
			query:       "date=June%2015",
			setupMock:   func(m *mocks.DashboardService) {},
			expectCode:  http.StatusBadRequest,
			expectError: true,
		},
		{
			name:  "Superseded",
			query: "scope=all",
			setupMock: func(m *mocks.DashboardService) {
				m.On("Aggregated", mock.Anything, "tab-1/analytics", mock.Anything, mock.Anything).
					Return(nil, collector.ErrSuperseded)
			},
			expectCode:  http.StatusConflict,
			expectError: true,
		},
		{
			name:  "Upstream Failure",
			query: "scope=all",
			setupMock: func(m *mocks.DashboardService) {
				m.On("Aggregated", mock.Anything, "tab-1/analytics", mock.Anything, mock.Anything).
					Return(nil, errors.New("dial tcp 10.0.0.5:8000: connection refused"))
			},
			expectCode:  http.StatusBadGateway,
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			apiInstance := setupAPI(nil)
			dashboard := apiInstance.dashboard.(*mocks.DashboardService)
			tc.setupMock(dashboard)

			req, err := http.NewRequest("GET", "/dashboard/analytics?"+tc.query, nil)
			assert.NoError(t, err)
			req.Header.Set(ViewerHeader, "tab-1")

			w := serve(apiInstance, req)

			assert.Equal(t, tc.expectCode, w.Code)
			if tc.expectError {
				assert.NotContains(t, w.Body.String(), "10.0.0.5", "upstream details stay in the log")
				return
			}

			var response AnalyticsResult
			err = json.NewDecoder(w.Body).Decode(&response)
			assert.NoError(t, err)
			if tc.expectNull {
				assert.Nil(t, response.Analytics)
			} else {
				assert.Equal(t, 3, response.Analytics.Totals.Total)
			}
			dashboard.AssertExpectations(t)
		})
	}
}

func TestGetChart(t *testing.T) {
	apiInstance := setupAPI(nil)
	dashboard := apiInstance.dashboard.(*mocks.DashboardService)

	view := domain.ChartView{
		Scope:       domain.Scope{Kind: domain.ScopeAll},
		Period:      "year 2024-06-12",
		Buckets:     analytics.Bucketize(nil, analytics.Yearly(fixedNow)),
		TotalSeries: analytics.BucketizeTotalOnly(nil, analytics.Yearly(fixedNow)),
	}
	dashboard.On("Chart", mock.Anything, mock.Anything, domain.Scope{Kind: domain.ScopeAll}, periodOf(analytics.PeriodYear, "2024-06-12")).
		Return(view, nil)

	req, err := http.NewRequest("GET", "/dashboard/chart?period=year", nil)
	assert.NoError(t, err)

	w := serve(apiInstance, req)
	assert.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	var response domain.ChartView
	err = json.NewDecoder(w.Body).Decode(&response)
	assert.NoError(t, err)
	assert.Len(t, response.Buckets, 12)
	assert.Equal(t, "Jan", response.Buckets[0].Label)
	assert.Nil(t, response.Analytics)
	assert.True(t, strings.Contains(body, `"analytics":null`))
}

func TestGetChart_SavedView(t *testing.T) {
	testCases := []struct {
		name       string
		setupMock  func(d *mocks.DashboardService, v *mocks.ViewRepository)
		expectCode int
	}{
		{
			name: "Replays Selection",
			setupMock: func(d *mocks.DashboardService, v *mocks.ViewRepository) {
				v.On("FindByID", mock.Anything, viewID).Return(domain.ViewState{
					ID:     viewID,
					Scope:  domain.Scope{Kind: domain.ScopeOutlet, OutletID: 3},
					Period: "custom",
					Start:  "2024-06-01",
					End:    "2024-06-05",
				}, nil)
				d.On("Chart", mock.Anything, "", domain.Scope{Kind: domain.ScopeOutlet, OutletID: 3}, mock.MatchedBy(func(p analytics.PeriodSpec) bool {
					return p.Kind == analytics.PeriodCustom && p.CustomDays() == 5
				})).Return(domain.ChartView{Period: "custom 2024-06-01..2024-06-05"}, nil)
			},
			expectCode: http.StatusOK,
		},
		{
			name: "Missing View",
			setupMock: func(d *mocks.DashboardService, v *mocks.ViewRepository) {
				v.On("FindByID", mock.Anything, viewID).Return(domain.ViewState{}, domain.ErrViewNotFound)
			},
			expectCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			apiInstance := setupAPI(nil)
			dashboard := apiInstance.dashboard.(*mocks.DashboardService)
			views := apiInstance.views.(*mocks.ViewRepository)
			tc.setupMock(dashboard, views)

			req, err := http.NewRequest("GET", "/dashboard/chart?view="+viewID+"&period=year", nil)
			assert.NoError(t, err)

			w := serve(apiInstance, req)
			assert.Equal(t, tc.expectCode, w.Code)
			dashboard.AssertExpectations(t)
			views.AssertExpectations(t)
		})
	}
}

func TestDashboard_RequestsWithoutViewerAreNotSequenced(t *testing.T) {
	apiInstance := setupAPI(nil)
	dashboard := apiInstance.dashboard.(*mocks.DashboardService)
	dashboard.On("Aggregated", mock.Anything, "", domain.Scope{Kind: domain.ScopeAll}, mock.Anything).
		Return(&domain.AggregatedAnalytics{EntityID: "all_devices"}, nil).Twice()

	codes := make(chan int, 2)
	for _, port := range []string{"5000", "5001"} {
		go func(port string) {
			req := httptest.NewRequest("GET", "/dashboard/analytics", nil)
			req.RemoteAddr = "10.0.0.1:" + port
			codes <- serve(apiInstance, req).Code
		}(port)
	}

	assert.Equal(t, http.StatusOK, <-codes)
	assert.Equal(t, http.StatusOK, <-codes)
	dashboard.AssertExpectations(t)
}

func TestDashboard_EndpointsSequenceSeparately(t *testing.T) {
	apiInstance := setupAPI(nil)
	dashboard := apiInstance.dashboard.(*mocks.DashboardService)
	dashboard.On("Aggregated", mock.Anything, "tab-1/analytics", mock.Anything, mock.Anything).
		Return(&domain.AggregatedAnalytics{}, nil).Once()
	dashboard.On("Chart", mock.Anything, "tab-1/chart", mock.Anything, mock.Anything).
		Return(domain.ChartView{}, nil).Once()

	for _, path := range []string{"/dashboard/analytics", "/dashboard/chart"} {
		req := httptest.NewRequest("GET", path, nil)
		req.Header.Set(ViewerHeader, "tab-1")
		assert.Equal(t, http.StatusOK, serve(apiInstance, req).Code)
	}
	dashboard.AssertExpectations(t)
}

func TestGetCounts(t *testing.T) {
	testCases := []struct {
		name       string
		query      string
		setupMock  func(m *mocks.DashboardService)
		expectCode int
	}{
		{
			name:  "Outlet",
			query: "scope=outlet:2",
			setupMock: func(m *mocks.DashboardService) {
				m.On("CurrentCounts", mock.Anything, domain.Scope{Kind: domain.ScopeOutlet, OutletID: 2}).
					Return(domain.Counts{Basic: 3, Standard: 1, Devices: 2}, nil)
			},
			expectCode: http.StatusOK,
		},
		{
			name:       "Invalid Scope",
			query:      "scope=outlet:x",
			setupMock:  func(m *mocks.DashboardService) {},
			expectCode: http.StatusBadRequest,
		},
		{
			name:  "Backend Down",
			query: "",
			setupMock: func(m *mocks.DashboardService) {
				m.On("CurrentCounts", mock.Anything, domain.Scope{Kind: domain.ScopeAll}).
					Return(domain.Counts{}, errors.New("backend down"))
			},
			expectCode: http.StatusBadGateway,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			apiInstance := setupAPI(nil)
			tc.setupMock(apiInstance.dashboard.(*mocks.DashboardService))

			req, err := http.NewRequest("GET", "/dashboard/counts?"+tc.query, nil)
			assert.NoError(t, err)

			w := serve(apiInstance, req)
			assert.Equal(t, tc.expectCode, w.Code)

			if tc.expectCode == http.StatusOK {
				var counts domain.Counts
				assert.NoError(t, json.NewDecoder(w.Body).Decode(&counts))
				assert.Equal(t, domain.Counts{Basic: 3, Standard: 1, Devices: 2}, counts)
			}
		})
	}
}

func TestGetDevices(t *testing.T) {
	apiInstance := setupAPI(nil)
	dashboard := apiInstance.dashboard.(*mocks.DashboardService)
	dashboard.On("Fleet", mock.Anything).Return(domain.Fleet{
		Devices: []domain.Device{{DeviceID: "a"}, {DeviceID: "b"}},
		Outlets: []domain.Outlet{{ID: 1, Name: "North"}},
	}, nil)

	req, err := http.NewRequest("GET", "/dashboard/devices", nil)
	assert.NoError(t, err)

	w := serve(apiInstance, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var fleet domain.Fleet
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&fleet))
	assert.Len(t, fleet.Devices, 2)
	assert.Equal(t, "North", fleet.Outlets[0].Name)
}

func TestGetDevices_Error(t *testing.T) {
	apiInstance := setupAPI(nil)
	dashboard := apiInstance.dashboard.(*mocks.DashboardService)
	dashboard.On("Fleet", mock.Anything).Return(domain.Fleet{}, errors.New("backend down"))

	req, err := http.NewRequest("GET", "/dashboard/devices", nil)
	assert.NoError(t, err)

	w := serve(apiInstance, req)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Failed to fetch devices\n", w.Body.String())
}
