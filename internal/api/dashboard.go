package api

import (
	"net/http"
	"ozondash/internal/analytics"
	"ozondash/internal/collector"
	"ozondash/internal/domain"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const defaultPeriod = analytics.PeriodWeek

// DashboardParams are the query parameters selecting a chart view. View names
// a saved selection that replaces the other parameters.
type DashboardParams struct {
	View   string `validate:"omitempty,uuid"`
	Scope  string `validate:"omitempty,scope"`
	Period string `validate:"omitempty,oneof=day week month year custom"`
	Date   string `validate:"omitempty,civildate"`
	Start  string `validate:"omitempty,civildate"`
	End    string `validate:"omitempty,civildate"`
}

// AnalyticsResult wraps an aggregate. Analytics is null when the scope has no
// devices.
type AnalyticsResult struct {
	Scope     domain.Scope                `json:"scope"`
	Period    string                      `json:"period"`
	Analytics *domain.AggregatedAnalytics `json:"analytics"`
}

func dashboardParams(r *http.Request) DashboardParams {
	q := r.URL.Query()
	return DashboardParams{
		View:   q.Get("view"),
		Scope:  q.Get("scope"),
		Period: q.Get("period"),
		Date:   q.Get("date"),
		Start:  q.Get("start"),
		End:    q.Get("end"),
	}
}

// selection turns validated params into a scope and period. Missing dates
// default to today and, for a custom range, the seven days before it.
func (api *API) selection(params DashboardParams) (domain.Scope, analytics.PeriodSpec, error) {
	scope, err := domain.ParseScope(params.Scope)
	if err != nil {
		return domain.Scope{}, analytics.PeriodSpec{}, err
	}

	today := api.now().In(api.loc)
	anchor, err := api.dateOr(params.Date, today)
	if err != nil {
		return domain.Scope{}, analytics.PeriodSpec{}, err
	}
	start, err := api.dateOr(params.Start, today.AddDate(0, 0, -7))
	if err != nil {
		return domain.Scope{}, analytics.PeriodSpec{}, err
	}
	end, err := api.dateOr(params.End, today)
	if err != nil {
		return domain.Scope{}, analytics.PeriodSpec{}, err
	}

	kind := params.Period
	if kind == "" {
		kind = string(defaultPeriod)
	}
	period, err := analytics.NewPeriod(kind, anchor, start, end)
	if err != nil {
		return domain.Scope{}, analytics.PeriodSpec{}, err
	}
	return scope, period, nil
}

func viewParams(view domain.ViewState) DashboardParams {
	return DashboardParams{
		Scope:  view.Scope.String(),
		Period: view.Period,
		Date:   view.Anchor,
		Start:  view.Start,
		End:    view.End,
	}
}

func (api *API) dateOr(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	return analytics.ParseDate(s, api.loc)
}

// parseSelection validates the request and writes a 400 on failure.
func (api *API) parseSelection(w http.ResponseWriter, r *http.Request, log *zap.SugaredLogger) (domain.Scope, analytics.PeriodSpec, bool) {
	params := dashboardParams(r)

	err := api.validate.Struct(params)
	if err != nil {
		log.Errorf("validation error: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return domain.Scope{}, analytics.PeriodSpec{}, false
	}

	if params.View != "" {
		view, err := api.views.FindByID(r.Context(), params.View)
		if err != nil {
			respondWithViewError(w, api, err)
			return domain.Scope{}, analytics.PeriodSpec{}, false
		}
		params = viewParams(view)
	}

	scope, period, err := api.selection(params)
	if err != nil {
		log.Errorf("invalid selection: %v", err)
		http.Error(w, "Invalid selection: "+err.Error(), http.StatusBadRequest)
		return domain.Scope{}, analytics.PeriodSpec{}, false
	}
	return scope, period, true
}

// respondWithServiceError maps a dashboard failure to a status. Upstream
// details stay in the log; the client gets one generic message.
func respondWithServiceError(w http.ResponseWriter, log *zap.SugaredLogger, err error, message string) {
	if errors.Is(err, collector.ErrSuperseded) {
		log.Debugw("request superseded", "error", err)
		http.Error(w, "Superseded by a newer request", http.StatusConflict)
		return
	}

	log.Errorf("%s: %v", message, err)
	http.Error(w, message, http.StatusBadGateway)
}

func (api *API) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	log := api.log.With("method", "GetAnalytics")

	scope, period, ok := api.parseSelection(w, r, log)
	if !ok {
		return
	}

	agg, err := api.dashboard.Aggregated(r.Context(), sequenceKey(r, "analytics"), scope, period)
	if err != nil {
		respondWithServiceError(w, log, err, "Failed to fetch aggregated analytics")
		return
	}

	respondWithJSON(w, AnalyticsResult{
		Scope:     scope,
		Period:    period.String(),
		Analytics: agg,
	})
}

func (api *API) GetChart(w http.ResponseWriter, r *http.Request) {
	log := api.log.With("method", "GetChart")

	scope, period, ok := api.parseSelection(w, r, log)
	if !ok {
		return
	}

	view, err := api.dashboard.Chart(r.Context(), sequenceKey(r, "chart"), scope, period)
	if err != nil {
		respondWithServiceError(w, log, err, "Failed to fetch aggregated analytics")
		return
	}

	respondWithJSON(w, view)
}

func (api *API) GetCounts(w http.ResponseWriter, r *http.Request) {
	log := api.log.With("method", "GetCounts")

	params := DashboardParams{Scope: r.URL.Query().Get("scope")}
	err := api.validate.Struct(params)
	if err != nil {
		log.Errorf("validation error: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	scope, _ := domain.ParseScope(params.Scope)

	counts, err := api.dashboard.CurrentCounts(r.Context(), scope)
	if err != nil {
		respondWithServiceError(w, log, err, "Failed to fetch devices")
		return
	}

	respondWithJSON(w, counts)
}

func (api *API) GetDevices(w http.ResponseWriter, r *http.Request) {
	log := api.log.With("method", "GetDevices")

	fleet, err := api.dashboard.Fleet(r.Context())
	if err != nil {
		respondWithServiceError(w, log, err, "Failed to fetch devices")
		return
	}

	respondWithJSON(w, fleet)
}
