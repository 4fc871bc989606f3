package reduce

import (
	"sort"

	"github.com/ferncreek/daytrace/internal/heartbeat"
)

// Merge overlays the three reduced lists into the day summary under
// strict priority meeting > inactive > primaryWindow. The sweep works
// on elementary intervals: the ranges between consecutive distinct
// event boundaries across all lists. Within one elementary interval the
// highest-priority covering event wins and lower-priority events are
// truncated or split around it; higher-priority intervals are never
// shortened. A second pass re-joins adjacent entries with identical
// type and payload, undoing splits that turned out not to conflict.
// Intervals covered by nothing are omitted: the summary is sparse, not
// a total partition of the day.
func Merge(meetings, inactive, windows []Event) []Event {
	// Priority order, highest first.
	lists := [][]Event{meetings, inactive, windows}

	boundarySet := make(map[int64]struct{})
	for _, list := range lists {
		for _, e := range list {
			boundarySet[e.Start] = struct{}{}
			boundarySet[e.End] = struct{}{}
		}
	}
	if len(boundarySet) == 0 {
		return nil
	}
	boundaries := make([]int64, 0, len(boundarySet))
	for b := range boundarySet {
		boundaries = append(boundaries, b)
	}
	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i] < boundaries[j] })

	var out []Event
	for i := 0; i+1 < len(boundaries); i++ {
		lo, hi := boundaries[i], boundaries[i+1]
		win, ok := covering(lists, lo, hi)
		if !ok {
			continue
		}
		entry := win
		entry.Start = lo
		entry.End = hi
		if n := len(out); n > 0 && samePayload(out[n-1], entry) && out[n-1].End == entry.Start {
			out[n-1].End = entry.End
		} else {
			out = append(out, entry)
		}
	}
	for i := range out {
		out[i].Duration = out[i].End - out[i].Start
	}
	return out
}

// covering returns the highest-priority event spanning [lo, hi).
// Elementary intervals never straddle an event boundary, so an event
// either covers the whole interval or none of it.
func covering(lists [][]Event, lo, hi int64) (Event, bool) {
	for _, list := range lists {
		for _, e := range list {
			if e.Start <= lo && e.End >= hi {
				return e, true
			}
			if e.Start >= hi {
				break
			}
		}
	}
	return Event{}, false
}

// Summarize computes the day summary for one day's heartbeats. It is a
// pure function: no state survives between invocations, so a reducer
// fix retroactively improves every historical day with no migration.
// Heartbeats must be sorted ascending by timestamp.
func Summarize(hbs []heartbeat.Heartbeat, sampleInterval int64) []Event {
	return Merge(
		Meetings(hbs, sampleInterval),
		Inactivity(hbs, sampleInterval),
		PrimaryWindows(hbs),
	)
}

// Totals aggregates a day summary into the durations the UI reports.
type Totals struct {
	Tracked  int64 `json:"trackedDuration"`
	Active   int64 `json:"activeDuration"`
	Inactive int64 `json:"inactiveDuration"`
}

// DayTotals computes totals for one day. Tracked is the span of
// observed heartbeats plus one sampling interval for the final gap;
// inactive is the summed duration of inactive summary entries; active
// is the remainder, floored at zero.
func DayTotals(hbs []heartbeat.Heartbeat, summary []Event, sampleInterval int64) Totals {
	var t Totals
	if len(hbs) == 0 {
		return t
	}
	t.Tracked = hbs[len(hbs)-1].Timestamp - hbs[0].Timestamp + sampleInterval
	for _, e := range summary {
		if e.Type == InactiveEvent {
			t.Inactive += e.Duration
		}
	}
	t.Active = t.Tracked - t.Inactive
	if t.Active < 0 {
		t.Active = 0
	}
	return t
}
