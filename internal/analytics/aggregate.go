// Package analytics combines per-device analytics payloads and maps them onto
// fixed-length chart series.
package analytics

import (
	"sort"
	"time"

	"ozondash/internal/domain"
)

// RecentEventsCap is the number of events kept in an aggregate.
const RecentEventsCap = 50

// Aggregate merges the responses of every device in scope. It returns nil when
// there is nothing to aggregate so callers can show a "no data" state.
//
// Totals are summed field by field as reported, including the server's total,
// which is not recomputed from the tier counts.
func Aggregate(scope domain.Scope, responses []domain.AnalyticsResponse) *domain.AggregatedAnalytics {
	if len(responses) == 0 {
		return nil
	}

	agg := &domain.AggregatedAnalytics{
		EntityID: scope.Label(),
		Period:   responses[0].Period,
	}

	for _, r := range responses {
		agg.Totals.Total += r.Totals.Total
		agg.Totals.Basic += r.Totals.Basic
		agg.Totals.Standard += r.Totals.Standard
		agg.Totals.Premium += r.Totals.Premium
	}

	agg.DailyStats = mergeDailyStats(responses)
	agg.RecentEvents = mergeRecentEvents(responses, scope.MultiEntity())

	return agg
}

func mergeDailyStats(responses []domain.AnalyticsResponse) []domain.DailyStat {
	byDay := make(map[string]*domain.DailyStat)

	for _, r := range responses {
		for _, stat := range r.DailyStats {
			dayKey := DateKey(stat.Date)
			merged, exists := byDay[dayKey]
			if !exists {
				merged = &domain.DailyStat{Date: Civil(stat.Date)}
				byDay[dayKey] = merged
			}
			merged.BasicCount += stat.BasicCount
			merged.StandardCount += stat.StandardCount
			merged.PremiumCount += stat.PremiumCount
			merged.TotalEvents += stat.TotalEvents
		}
	}

	stats := make([]domain.DailyStat, 0, len(byDay))
	for _, stat := range byDay {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Date.Before(stats[j].Date)
	})

	return stats
}

func mergeRecentEvents(responses []domain.AnalyticsResponse, tag bool) []domain.Event {
	var events []domain.Event
	for _, r := range responses {
		for _, ev := range r.RecentEvents {
			if tag {
				ev.DeviceID = r.EntityID
			}
			events = append(events, ev)
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt.After(events[j].OccurredAt)
	})

	if len(events) > RecentEventsCap {
		events = events[:RecentEventsCap]
	}
	return events
}

// Breakdown returns the per-tier share of the aggregate totals, dropping empty
// tiers.
func Breakdown(agg *domain.AggregatedAnalytics) []domain.Slice {
	if agg == nil {
		return nil
	}

	slices := []domain.Slice{
		{Name: "Basic", Value: agg.Totals.Basic},
		{Name: "Standard", Value: agg.Totals.Standard},
		{Name: "Premium", Value: agg.Totals.Premium},
	}

	sum := 0
	kept := slices[:0]
	for _, s := range slices {
		if s.Value > 0 {
			kept = append(kept, s)
			sum += s.Value
		}
	}
	for i := range kept {
		kept[i].Percent = float64(kept[i].Value) * 100 / float64(sum)
	}
	return kept
}

// occurredIn returns the event time in loc, and false when the timestamp could
// not be parsed upstream.
func occurredIn(ev domain.Event, loc *time.Location) (time.Time, bool) {
	if ev.OccurredAt.IsZero() {
		return time.Time{}, false
	}
	return ev.OccurredAt.In(loc), true
}
