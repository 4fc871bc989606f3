package ipc

import (
	"encoding/json"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/ferncreek/daytrace/internal/store"
)

const (
	ObjectPath    = "/io/github/ferncreek/daytrace"
	InterfaceName = "io.github.ferncreek.daytrace.Tracker"
	ServiceName   = "io.github.ferncreek.daytrace"
)

// Tracker is the D-Bus object the daemon exports. Query methods return
// pretty-printed JSON so dtctl (or any other client) can print or parse
// the result without sharing Go types.
type Tracker struct {
	Manager *store.Manager
}

func (t *Tracker) GetStatus() (string, *dbus.Error) {
	return "Service is running, store at " + t.Manager.Path(), nil
}

// GetDaySummary returns the merged timeline for a date (YYYY-MM-DD,
// empty for today) as a JSON array of entries.
func (t *Tracker) GetDaySummary(date string) (string, *dbus.Error) {
	summary := t.Manager.DaySummary(orToday(date))
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return string(data), nil
}

// GetDayTotals returns the tracked/active/inactive durations for a date
// as a JSON object.
func (t *Tracker) GetDayTotals(date string) (string, *dbus.Error) {
	totals := t.Manager.DayTotals(orToday(date))
	data, err := json.MarshalIndent(totals, "", "  ")
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return string(data), nil
}

// Relocate switches persistence to a new directory, e.g. a folder
// watched by a sync tool. The old store file is left behind.
func (t *Tracker) Relocate(dir string) (string, *dbus.Error) {
	if err := t.Manager.Relocate(dir); err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return "Store relocated to " + t.Manager.Path(), nil
}

func orToday(date string) string {
	if date == "" {
		return time.Now().Format("2006-01-02")
	}
	return date
}
