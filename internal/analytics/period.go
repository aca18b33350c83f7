package analytics

import (
	"fmt"
	"time"
)

// PeriodKind is the chart granularity selector.
type PeriodKind string

const (
	PeriodDay    PeriodKind = "day"
	PeriodWeek   PeriodKind = "week"
	PeriodMonth  PeriodKind = "month"
	PeriodYear   PeriodKind = "year"
	PeriodCustom PeriodKind = "custom"
)

// MaxCustomDays bounds a custom range. Every device is asked for this many days
// and the chart gets one bucket per day.
const MaxCustomDays = 3660

// PeriodSpec describes the window a chart covers. Anchor selects the day, week,
// month or year; Start and End bound a custom range. For the hourly view the
// anchor's location decides the local hour of each event.
type PeriodSpec struct {
	Kind   PeriodKind
	Anchor time.Time
	Start  time.Time
	End    time.Time
}

func Hourly(day time.Time) PeriodSpec {
	return PeriodSpec{Kind: PeriodDay, Anchor: day}
}

func Weekly(anchor time.Time) PeriodSpec {
	return PeriodSpec{Kind: PeriodWeek, Anchor: anchor}
}

func Monthly(anchor time.Time) PeriodSpec {
	return PeriodSpec{Kind: PeriodMonth, Anchor: anchor}
}

func Yearly(anchor time.Time) PeriodSpec {
	return PeriodSpec{Kind: PeriodYear, Anchor: anchor}
}

// Custom covers start to end inclusive. Reversed bounds are swapped.
func Custom(start, end time.Time) PeriodSpec {
	if Civil(end).Before(Civil(start)) {
		start, end = end, start
	}
	return PeriodSpec{Kind: PeriodCustom, Anchor: end, Start: start, End: end}
}

// NewPeriod builds a PeriodSpec from its selector name.
func NewPeriod(kind string, anchor, start, end time.Time) (PeriodSpec, error) {
	switch PeriodKind(kind) {
	case PeriodDay:
		return Hourly(anchor), nil
	case PeriodWeek:
		return Weekly(anchor), nil
	case PeriodMonth:
		return Monthly(anchor), nil
	case PeriodYear:
		return Yearly(anchor), nil
	case PeriodCustom:
		if start.IsZero() || end.IsZero() {
			return PeriodSpec{}, fmt.Errorf("custom period needs start and end dates")
		}
		p := Custom(start, end)
		if days := p.CustomDays(); days > MaxCustomDays {
			return PeriodSpec{}, fmt.Errorf("custom range of %d days exceeds %d", days, MaxCustomDays)
		}
		return p, nil
	default:
		return PeriodSpec{}, fmt.Errorf("unknown period %q", kind)
	}
}

// CustomDays is the inclusive number of days in a custom range.
func (p PeriodSpec) CustomDays() int {
	return DaysBetween(p.Start, p.End) + 1
}

// FetchDays is the analytics window requested from the backend for this period.
func (p PeriodSpec) FetchDays() int {
	switch p.Kind {
	case PeriodDay:
		return 1
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return 30
	case PeriodCustom:
		return p.CustomDays()
	default:
		return 365
	}
}

func (p PeriodSpec) String() string {
	if p.Kind == PeriodCustom {
		return fmt.Sprintf("custom %s..%s", DateKey(p.Start), DateKey(p.End))
	}
	return fmt.Sprintf("%s %s", p.Kind, DateKey(p.Anchor))
}
