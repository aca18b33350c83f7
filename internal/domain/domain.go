package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrViewNotFound is returned when a saved view does not exist.
var ErrViewNotFound = errors.New("view not found")

// EventType is the treatment tier recorded by a machine.
type EventType string

const (
	EventBasic    EventType = "BASIC"
	EventStandard EventType = "STANDARD"
	EventPremium  EventType = "PREMIUM"
)

// Period is the time window an analytics payload covers.
type Period struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Days      int       `json:"days"`
}

// Totals holds treatment counts for a whole period.
type Totals struct {
	Total    int `json:"total"`
	Basic    int `json:"basic"`
	Standard int `json:"standard"`
	Premium  int `json:"premium"`
}

// DailyStat holds the treatment counts of one calendar day. Date is midnight UTC
// of that day.
type DailyStat struct {
	Date          time.Time `json:"date"`
	BasicCount    int       `json:"basic_count"`
	StandardCount int       `json:"standard_count"`
	PremiumCount  int       `json:"premium_count"`
	TotalEvents   int       `json:"total_events"`
}

// Event is a single treatment reported by a device.
type Event struct {
	EventType       EventType `json:"event_type"`
	OccurredAt      time.Time `json:"occurred_at"`
	DeviceTimestamp string    `json:"device_timestamp"`
	CountBasic      int       `json:"count_basic"`
	CountStandard   int       `json:"count_standard"`
	CountPremium    int       `json:"count_premium"`
	DeviceID        string    `json:"device_id,omitempty"`
}

// AnalyticsResponse is the analytics payload of one device.
type AnalyticsResponse struct {
	EntityID     string      `json:"device_id"`
	Period       Period      `json:"period"`
	Totals       Totals      `json:"totals"`
	DailyStats   []DailyStat `json:"daily_stats"`
	RecentEvents []Event     `json:"recent_events"`
}

// AggregatedAnalytics has the shape of AnalyticsResponse with EntityID set to the
// scope label.
type AggregatedAnalytics AnalyticsResponse

// ChartBucket is one slot of a chart series.
type ChartBucket struct {
	Label    string `json:"label"`
	Total    int    `json:"Total"`
	Basic    int    `json:"Basic"`
	Standard int    `json:"Standard"`
	Premium  int    `json:"Premium"`
}

// TotalBucket is one slot of a total-only line series.
type TotalBucket struct {
	Label string `json:"label"`
	Total int    `json:"Total"`
}

// Slice is one segment of the per-tier breakdown.
type Slice struct {
	Name    string  `json:"name"`
	Value   int     `json:"value"`
	Percent float64 `json:"percent"`
}

// ScopeKind selects which devices a view covers.
type ScopeKind string

const (
	ScopeAll    ScopeKind = "all"
	ScopeOutlet ScopeKind = "outlet"
	ScopeDevice ScopeKind = "device"
)

// Scope is a view selection: every device, the devices of one outlet, or a
// single device.
type Scope struct {
	Kind     ScopeKind `json:"kind" bson:"kind"`
	OutletID int       `json:"outlet_id,omitempty" bson:"outlet_id,omitempty"`
	DeviceID string    `json:"device_id,omitempty" bson:"device_id,omitempty"`
}

// Label returns the entity id used for an aggregate of this scope.
func (s Scope) Label() string {
	switch s.Kind {
	case ScopeOutlet:
		return fmt.Sprintf("outlet_%d", s.OutletID)
	case ScopeDevice:
		return s.DeviceID
	default:
		return "all_devices"
	}
}

// MultiEntity reports whether the scope may span more than one device.
func (s Scope) MultiEntity() bool {
	return s.Kind != ScopeDevice
}

func (s Scope) String() string {
	switch s.Kind {
	case ScopeOutlet:
		return fmt.Sprintf("outlet:%d", s.OutletID)
	case ScopeDevice:
		return "device:" + s.DeviceID
	default:
		return string(ScopeAll)
	}
}

// ParseScope reads the "all", "outlet:<id>" and "device:<id>" forms produced by
// Scope.String. An empty string selects all devices.
func ParseScope(s string) (Scope, error) {
	kind, id, _ := strings.Cut(strings.TrimSpace(s), ":")
	switch ScopeKind(kind) {
	case "", ScopeAll:
		if id != "" {
			return Scope{}, fmt.Errorf("invalid scope %q", s)
		}
		return Scope{Kind: ScopeAll}, nil
	case ScopeOutlet:
		outletID, err := strconv.Atoi(id)
		if err != nil || outletID <= 0 {
			return Scope{}, fmt.Errorf("invalid outlet id in scope %q", s)
		}
		return Scope{Kind: ScopeOutlet, OutletID: outletID}, nil
	case ScopeDevice:
		if id == "" {
			return Scope{}, fmt.Errorf("missing device id in scope %q", s)
		}
		return Scope{Kind: ScopeDevice, DeviceID: id}, nil
	default:
		return Scope{}, fmt.Errorf("unknown scope %q", s)
	}
}

// Device is a device status record as reported by the backend.
type Device struct {
	DeviceID             string    `json:"device_id"`
	LastSeen             time.Time `json:"last_seen"`
	WifiConnected        bool      `json:"wifi_connected"`
	RTCAvailable         bool      `json:"rtc_available"`
	SDCardAvailable      bool      `json:"sd_card_available"`
	CurrentCountBasic    int       `json:"current_count_basic"`
	CurrentCountStandard int       `json:"current_count_standard"`
	CurrentCountPremium  int       `json:"current_count_premium"`
	DeviceTimestamp      string    `json:"device_timestamp"`
}

// Outlet is a site hosting machines.
type Outlet struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Location     string `json:"location"`
	IsActive     bool   `json:"is_active"`
	MachineCount int    `json:"machine_count"`
}

// Machine is a treatment machine installed at an outlet. CurrentDeviceID is
// empty when no device is attached.
type Machine struct {
	ID              int    `json:"id"`
	OutletID        int    `json:"outlet"`
	Name            string `json:"name"`
	MachineType     string `json:"machine_type"`
	IsActive        bool   `json:"is_active"`
	CurrentDeviceID string `json:"current_device_id"`
}

// Fleet is the set of devices, outlets and machines known at LoadedAt.
type Fleet struct {
	Devices  []Device  `json:"devices"`
	Outlets  []Outlet  `json:"outlets"`
	Machines []Machine `json:"machines"`
	LoadedAt time.Time `json:"loaded_at"`
}

// ChartView is everything the charts page renders for one selection.
type ChartView struct {
	Scope       Scope                `json:"scope"`
	Period      string               `json:"period"`
	Analytics   *AggregatedAnalytics `json:"analytics"`
	Buckets     []ChartBucket        `json:"buckets"`
	TotalSeries []TotalBucket        `json:"total_series"`
	Breakdown   []Slice              `json:"breakdown"`
}

// Counts is the live counter total of a set of devices.
type Counts struct {
	Basic    int `json:"basic"`
	Standard int `json:"standard"`
	Premium  int `json:"premium"`
	Devices  int `json:"devices"`
}

// ViewState is a saved chart selection.
type ViewState struct {
	ID        string    `json:"id" bson:"_id"`
	Scope     Scope     `json:"scope" bson:"scope"`
	Period    string    `json:"period" bson:"period"`
	Anchor    string    `json:"anchor,omitempty" bson:"anchor,omitempty"`
	Start     string    `json:"start,omitempty" bson:"start,omitempty"`
	End       string    `json:"end,omitempty" bson:"end,omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
