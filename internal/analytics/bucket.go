package analytics

import (
	"fmt"
	"time"

	"ozondash/internal/domain"
)

const (
	weekLabel  = "Mon 02/01"
	dayLabel   = "02/01"
	monthLabel = "Jan"
)

// Bucketize maps an aggregate onto the chart series for period. The length of
// the result depends on period alone; a nil aggregate yields zero buckets of
// the same length.
func Bucketize(agg *domain.AggregatedAnalytics, period PeriodSpec) []domain.ChartBucket {
	var stats []domain.DailyStat
	var events []domain.Event
	if agg != nil {
		stats = agg.DailyStats
		events = agg.RecentEvents
	}

	switch period.Kind {
	case PeriodDay:
		return hourlyBuckets(events, period.Anchor.Location())
	case PeriodYear:
		return monthlyBuckets(stats, period.Anchor.Year())
	default:
		days := periodDays(period)
		buckets := make([]domain.ChartBucket, len(days))
		byDay := indexByDay(stats)
		for i, d := range days {
			buckets[i].Label = d.label
			if stat, ok := byDay[DateKey(d.day)]; ok {
				fill(&buckets[i], stat)
			}
		}
		return buckets
	}
}

// BucketizeTotalOnly is the single-series variant of Bucketize. For the hourly
// period it covers the seven calendar days ending at the anchor day instead of
// the hours of that day.
func BucketizeTotalOnly(agg *domain.AggregatedAnalytics, period PeriodSpec) []domain.TotalBucket {
	if period.Kind == PeriodDay {
		var stats []domain.DailyStat
		if agg != nil {
			stats = agg.DailyStats
		}
		byDay := indexByDay(stats)
		end := Civil(period.Anchor)
		buckets := make([]domain.TotalBucket, 7)
		for i := range buckets {
			d := end.AddDate(0, 0, i-6)
			buckets[i].Label = d.Format(dayLabel)
			if stat, ok := byDay[DateKey(d)]; ok {
				buckets[i].Total = statTotal(stat)
			}
		}
		return buckets
	}

	full := Bucketize(agg, period)
	buckets := make([]domain.TotalBucket, len(full))
	for i, b := range full {
		buckets[i] = domain.TotalBucket{Label: b.Label, Total: b.Total}
	}
	return buckets
}

type bucketDay struct {
	day   time.Time
	label string
}

// periodDays lists the calendar days of a week, month or custom period.
func periodDays(period PeriodSpec) []bucketDay {
	var (
		start time.Time
		n     int
		label = dayLabel
	)

	switch period.Kind {
	case PeriodWeek:
		start, n, label = StartOfWeek(period.Anchor), 7, weekLabel
	case PeriodMonth:
		start, n = StartOfMonth(period.Anchor), DaysInMonth(period.Anchor)
	case PeriodCustom:
		start, n = Civil(period.Start), period.CustomDays()
	}

	days := make([]bucketDay, 0, n)
	for i := 0; i < n; i++ {
		d := start.AddDate(0, 0, i)
		days = append(days, bucketDay{day: d, label: d.Format(label)})
	}
	return days
}

func hourlyBuckets(events []domain.Event, loc *time.Location) []domain.ChartBucket {
	if loc == nil {
		loc = time.Local
	}

	buckets := make([]domain.ChartBucket, 24)
	for h := range buckets {
		buckets[h].Label = fmt.Sprintf("%02d:00", h)
	}

	for _, ev := range events {
		at, ok := occurredIn(ev, loc)
		if !ok {
			continue
		}
		b := &buckets[at.Hour()]
		b.Total++
		switch ev.EventType {
		case domain.EventBasic:
			b.Basic++
		case domain.EventStandard:
			b.Standard++
		case domain.EventPremium:
			b.Premium++
		}
	}
	return buckets
}

func monthlyBuckets(stats []domain.DailyStat, year int) []domain.ChartBucket {
	buckets := make([]domain.ChartBucket, 12)
	for m := range buckets {
		buckets[m].Label = time.Date(year, time.Month(m+1), 1, 0, 0, 0, 0, time.UTC).Format(monthLabel)
	}

	for _, stat := range stats {
		if stat.Date.Year() != year {
			continue
		}
		b := &buckets[stat.Date.Month()-1]
		b.Basic += stat.BasicCount
		b.Standard += stat.StandardCount
		b.Premium += stat.PremiumCount
		b.Total += statTotal(stat)
	}
	return buckets
}

// indexByDay keeps the first stat seen for each calendar day.
func indexByDay(stats []domain.DailyStat) map[string]domain.DailyStat {
	byDay := make(map[string]domain.DailyStat, len(stats))
	for _, stat := range stats {
		key := DateKey(stat.Date)
		if _, seen := byDay[key]; !seen {
			byDay[key] = stat
		}
	}
	return byDay
}

func fill(b *domain.ChartBucket, stat domain.DailyStat) {
	b.Basic = stat.BasicCount
	b.Standard = stat.StandardCount
	b.Premium = stat.PremiumCount
	b.Total = statTotal(stat)
}

// statTotal falls back to the tier sum when the record reports no total.
func statTotal(stat domain.DailyStat) int {
	if stat.TotalEvents != 0 {
		return stat.TotalEvents
	}
	return stat.BasicCount + stat.StandardCount + stat.PremiumCount
}
