package models

import (
	"time"

	"github.com/st3v3nmw/focusguard/internal/types"
)

const dateLayout = "2006-01-02"

// Browsing sessions

// BrowsingSession is one recorded stretch of time on a domain. Times are
// unix milliseconds; Date and Hour are the UTC calendar slot of StartTime.
type BrowsingSession struct {
	Domain            string `json:"domain"`
	StartTime         int64  `json:"startTime"`
	EndTime           int64  `json:"endTime"`
	Duration          int64  `json:"duration"`
	IsBlockingEnabled bool   `json:"isBlockingEnabled"`
	Date              string `json:"date"`
	Hour              int    `json:"hour"`
}

func NewBrowsingSession(domain string, start, end time.Time, blocking bool) BrowsingSession {
	utc := start.UTC()
	return BrowsingSession{
		Domain:            domain,
		StartTime:         start.UnixMilli(),
		EndTime:           end.UnixMilli(),
		Duration:          end.Sub(start).Milliseconds(),
		IsBlockingEnabled: blocking,
		Date:              utc.Format(dateLayout),
		Hour:              utc.Hour(),
	}
}

// Patience events

// PatienceEvent records the user leaving a blocked page.
type PatienceEvent struct {
	Domain    string `json:"domain"`
	Timestamp int64  `json:"timestamp"`
	Date      string `json:"date"`
}

func NewPatienceEvent(domain string, at time.Time) PatienceEvent {
	return PatienceEvent{
		Domain:    domain,
		Timestamp: at.UnixMilli(),
		Date:      at.UTC().Format(dateLayout),
	}
}

// Recording settings

type RecordingSettings struct {
	Enabled               bool               `json:"enabled"`
	RecordPatienceCount   bool               `json:"recordPatienceCount"`
	RecordBrowsingTime    bool               `json:"recordBrowsingTime"`
	RecordSnsTimeOnly     bool               `json:"recordSnsTimeOnly"`
	HasShownInitialPrompt bool               `json:"hasShownInitialPrompt"`
	TimezoneMode          types.TimezoneMode `json:"timezoneMode" validate:"omitempty,oneof=auto region manual"`
	TimezoneRegion        string             `json:"timezoneRegion"`
	TimezoneManual        string             `json:"timezoneManual"`
	DebugMode             bool               `json:"debugMode"`
}

func DefaultRecordingSettings() RecordingSettings {
	return RecordingSettings{TimezoneMode: types.TimezoneAuto}
}

// Normalize enforces that SNS-only recording is off whenever all browsing
// time is recorded.
func (r *RecordingSettings) Normalize() {
	if r.RecordBrowsingTime {
		r.RecordSnsTimeOnly = false
	}
	if r.TimezoneMode == "" {
		r.TimezoneMode = types.TimezoneAuto
	}
}

// Timezone is the zone statistics are displayed in: an offset, an IANA name,
// or "auto".
func (r RecordingSettings) Timezone() string {
	switch {
	case r.TimezoneMode == types.TimezoneManual && r.TimezoneManual != "":
		return r.TimezoneManual
	case r.TimezoneMode == types.TimezoneRegion && r.TimezoneRegion != "":
		return r.TimezoneRegion
	default:
		return string(types.TimezoneAuto)
	}
}
