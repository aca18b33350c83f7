package backend

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"ozondash/internal/analytics"
	"ozondash/internal/domain"
)

// count decodes a JSON count that may be missing, null, a float or a numeric
// string. Anything else decodes to zero.
type count int

func (c *count) UnmarshalJSON(b []byte) error {
	*c = 0
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*c = count(n)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		*c = count(int(f))
	}
	return nil
}

var stampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	analytics.DateLayout,
}

// stamp decodes a timestamp or calendar date. Values without a zone are UTC;
// unparseable values decode to the zero time.
type stamp time.Time

func (s *stamp) UnmarshalJSON(b []byte) error {
	*s = stamp(time.Time{})
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil || raw == "" {
		return nil
	}
	for _, layout := range stampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			*s = stamp(t)
			return nil
		}
	}
	return nil
}

func (s stamp) time() time.Time {
	return time.Time(s)
}

// date resolves a stamp to its calendar day, keeping the zero time for
// unparseable input.
func (s stamp) date() time.Time {
	if time.Time(s).IsZero() {
		return time.Time{}
	}
	return analytics.Civil(time.Time(s))
}

type analyticsPayload struct {
	DeviceID string `json:"device_id"`
	Period   *struct {
		StartDate stamp `json:"start_date"`
		EndDate   stamp `json:"end_date"`
		Days      count `json:"days"`
	} `json:"period"`
	Totals *struct {
		Total    count `json:"total"`
		Basic    count `json:"basic"`
		Standard count `json:"standard"`
		Premium  count `json:"premium"`
	} `json:"totals"`
	DailyStats []struct {
		Date          stamp `json:"date"`
		BasicCount    count `json:"basic_count"`
		StandardCount count `json:"standard_count"`
		PremiumCount  count `json:"premium_count"`
		TotalEvents   count `json:"total_events"`
	} `json:"daily_stats"`
	RecentEvents []struct {
		EventType       string `json:"event_type"`
		OccurredAt      stamp  `json:"occurred_at"`
		DeviceTimestamp string `json:"device_timestamp"`
		CountBasic      count  `json:"count_basic"`
		CountStandard   count  `json:"count_standard"`
		CountPremium    count  `json:"count_premium"`
	} `json:"recent_events"`
}

func (p analyticsPayload) toDomain(deviceID string) domain.AnalyticsResponse {
	r := domain.AnalyticsResponse{EntityID: p.DeviceID}
	if r.EntityID == "" {
		r.EntityID = deviceID
	}

	if p.Period != nil {
		r.Period = domain.Period{
			StartDate: p.Period.StartDate.date(),
			EndDate:   p.Period.EndDate.date(),
			Days:      int(p.Period.Days),
		}
	}

	if p.Totals != nil {
		r.Totals = domain.Totals{
			Total:    int(p.Totals.Total),
			Basic:    int(p.Totals.Basic),
			Standard: int(p.Totals.Standard),
			Premium:  int(p.Totals.Premium),
		}
	}

	r.DailyStats = make([]domain.DailyStat, 0, len(p.DailyStats))
	for _, s := range p.DailyStats {
		r.DailyStats = append(r.DailyStats, domain.DailyStat{
			Date:          s.Date.date(),
			BasicCount:    int(s.BasicCount),
			StandardCount: int(s.StandardCount),
			PremiumCount:  int(s.PremiumCount),
			TotalEvents:   int(s.TotalEvents),
		})
	}

	r.RecentEvents = make([]domain.Event, 0, len(p.RecentEvents))
	for _, e := range p.RecentEvents {
		r.RecentEvents = append(r.RecentEvents, domain.Event{
			EventType:       domain.EventType(strings.ToUpper(e.EventType)),
			OccurredAt:      e.OccurredAt.time(),
			DeviceTimestamp: e.DeviceTimestamp,
			CountBasic:      int(e.CountBasic),
			CountStandard:   int(e.CountStandard),
			CountPremium:    int(e.CountPremium),
		})
	}

	return r
}

type devicePayload struct {
	DeviceID             string `json:"device_id"`
	LastSeen             stamp  `json:"last_seen"`
	WifiConnected        bool   `json:"wifi_connected"`
	RTCAvailable         bool   `json:"rtc_available"`
	SDCardAvailable      *bool  `json:"sd_card_available"`
	SDAvailable          *bool  `json:"sd_available"`
	CurrentCountBasic    count  `json:"current_count_basic"`
	CurrentCountStandard count  `json:"current_count_standard"`
	CurrentCountPremium  count  `json:"current_count_premium"`
	DeviceTimestamp      string `json:"device_timestamp"`
}

func (p devicePayload) toDomain() domain.Device {
	d := domain.Device{
		DeviceID:             p.DeviceID,
		LastSeen:             p.LastSeen.time(),
		WifiConnected:        p.WifiConnected,
		RTCAvailable:         p.RTCAvailable,
		CurrentCountBasic:    int(p.CurrentCountBasic),
		CurrentCountStandard: int(p.CurrentCountStandard),
		CurrentCountPremium:  int(p.CurrentCountPremium),
		DeviceTimestamp:      p.DeviceTimestamp,
	}
	// older backends report the SD card flag as sd_available
	switch {
	case p.SDCardAvailable != nil:
		d.SDCardAvailable = *p.SDCardAvailable
	case p.SDAvailable != nil:
		d.SDCardAvailable = *p.SDAvailable
	}
	return d
}

type outletPayload struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Location     string `json:"location"`
	IsActive     *bool  `json:"is_active"`
	MachineCount count  `json:"machine_count"`
}

func (p outletPayload) toDomain() domain.Outlet {
	return domain.Outlet{
		ID:           p.ID,
		Name:         p.Name,
		Location:     p.Location,
		IsActive:     p.IsActive == nil || *p.IsActive,
		MachineCount: int(p.MachineCount),
	}
}

type machinePayload struct {
	ID              int     `json:"id"`
	Outlet          int     `json:"outlet"`
	Name            string  `json:"name"`
	MachineType     string  `json:"machine_type"`
	IsActive        *bool   `json:"is_active"`
	CurrentDeviceID *string `json:"current_device_id"`
	DeviceID        *string `json:"device_id"`
}

func (p machinePayload) toDomain() domain.Machine {
	m := domain.Machine{
		ID:          p.ID,
		OutletID:    p.Outlet,
		Name:        p.Name,
		MachineType: p.MachineType,
		IsActive:    p.IsActive == nil || *p.IsActive,
	}
	switch {
	case p.CurrentDeviceID != nil:
		m.CurrentDeviceID = *p.CurrentDeviceID
	case p.DeviceID != nil:
		m.CurrentDeviceID = *p.DeviceID
	}
	return m
}
