package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	testCases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2024-02-29", want: "2024-02-29"},
		{in: "29.02.2024", want: "2024-02-29"},
		{in: "29/02/2024", want: "2024-02-29"},
		{in: "2023-02-29", wantErr: true},
		{in: "Feb 29", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDate(tc.in, time.UTC)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, DateKey(got))
		})
	}
}

func TestCivilUsesOwnLocation(t *testing.T) {
	plus3 := time.FixedZone("UTC+3", 3*3600)
	late := time.Date(2024, 6, 10, 22, 30, 0, 0, time.UTC)

	assert.Equal(t, "2024-06-10", DateKey(Civil(late)))
	assert.Equal(t, "2024-06-11", DateKey(Civil(late.In(plus3))))
	assert.False(t, SameDay(late, late.In(plus3)))
}

func TestStartOfWeek(t *testing.T) {
	testCases := []struct {
		day  string
		want string
	}{
		{day: "2024-06-10", want: "2024-06-10"},
		{day: "2024-06-12", want: "2024-06-10"},
		{day: "2024-06-16", want: "2024-06-10"},
		{day: "2024-01-03", want: "2024-01-01"},
		{day: "2023-01-01", want: "2022-12-26"},
	}

	for _, tc := range testCases {
		t.Run(tc.day, func(t *testing.T) {
			d, err := ParseDate(tc.day, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, tc.want, DateKey(StartOfWeek(d)))
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, DaysInMonth(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 28, DaysInMonth(time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 31, DaysInMonth(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, 30, DaysInMonth(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 3, 30, 23, 0, 0, 0, time.UTC)
	b := time.Date(2024, 4, 2, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, 3, DaysBetween(a, b))
	assert.Equal(t, -3, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}

func TestDaysBetweenSpansCenturies(t *testing.T) {
	first := time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 3652058, DaysBetween(first, last))
	assert.Equal(t, 3652059, Custom(first, last).CustomDays())
}

func TestNewPeriod(t *testing.T) {
	anchor := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		kind      string
		start     time.Time
		end       time.Time
		fetchDays int
		wantErr   bool
	}{
		{kind: "day", fetchDays: 1},
		{kind: "week", fetchDays: 7},
		{kind: "month", fetchDays: 30},
		{kind: "year", fetchDays: 365},
		{kind: "custom", start: start, end: anchor, fetchDays: 12},
		{kind: "custom", start: anchor, end: start, fetchDays: 12},
		{kind: "custom", start: start, wantErr: true},
		{kind: "custom", start: anchor.AddDate(0, 0, -(MaxCustomDays - 1)), end: anchor, fetchDays: MaxCustomDays},
		{kind: "custom", start: anchor.AddDate(0, 0, -MaxCustomDays), end: anchor, wantErr: true},
		{kind: "custom", start: time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC), end: time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC), wantErr: true},
		{kind: "fortnight", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.kind, func(t *testing.T) {
			p, err := NewPeriod(tc.kind, anchor, tc.start, tc.end)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.fetchDays, p.FetchDays())
		})
	}
}

func TestCustomSwapsReversedBounds(t *testing.T) {
	early := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)

	p := Custom(late, early)

	assert.Equal(t, early, p.Start)
	assert.Equal(t, late, p.End)
	assert.Equal(t, late, p.Anchor)
	assert.Equal(t, "custom 2024-06-01..2024-06-05", p.String())
}
