package heartbeat

import (
	"fmt"
	"time"
)

// Activity is the idle state reported by a sample source.
type Activity string

const (
	Active        Activity = "active"
	MayBeInactive Activity = "may_be_inactive"
	Inactive      Activity = "inactive"
)

// AppWindow identifies the focused window at sample time.
type AppWindow struct {
	App   string `json:"app"`
	Title string `json:"title"`
}

// Meeting identifies a conferencing meeting the user is attending.
type Meeting struct {
	Title string `json:"title"`
}

// Heartbeat is one raw sample. It is immutable once appended; the log
// only ever adds new ones.
type Heartbeat struct {
	Timestamp int64      `json:"timestamp"` // epoch milliseconds
	Activity  Activity   `json:"userActivity"`
	AppWindow *AppWindow `json:"appWindow,omitempty"`
	Meeting   *Meeting   `json:"teamsMeeting,omitempty"`
}

// Validate rejects malformed heartbeats at the append boundary.
func (h Heartbeat) Validate() error {
	if h.Timestamp < 0 {
		return fmt.Errorf("heartbeat has negative timestamp %d", h.Timestamp)
	}
	switch h.Activity {
	case Active, MayBeInactive, Inactive, "":
	default:
		return fmt.Errorf("heartbeat has unknown activity %q", h.Activity)
	}
	return nil
}

// Time converts the millisecond timestamp to a local time.Time.
func (h Heartbeat) Time() time.Time {
	return time.UnixMilli(h.Timestamp)
}

// DayKey returns the bucket key for a timestamp: the calendar date in
// local time at capture. The key is fixed at write time and never
// renormalized, even if the machine's timezone changes later.
func DayKey(timestamp int64) string {
	return time.UnixMilli(timestamp).Format("2006-01-02")
}
