package reduce

import "github.com/ferncreek/daytrace/internal/heartbeat"

// Inactivity reduces a day's heartbeats into inactivity events by
// run-length encoding consecutive inactive samples. MayBeInactive is a
// transitional state used only by the source and counts as not
// inactive here. Run ends are extended by one sampling interval so the
// final gap is not under-counted, then both boundaries are rounded to
// the nearest 5-minute mark to absorb sampling jitter. Runs that
// collapse to zero or negative length are dropped; runs that touch
// after rounding are merged.
func Inactivity(hbs []heartbeat.Heartbeat, sampleInterval int64) []Event {
	var runs []Event
	runStart := int64(-1)
	runEnd := int64(-1)

	flush := func() {
		if runStart < 0 {
			return
		}
		start := roundNearest(runStart, roundMillis)
		end := roundNearest(runEnd+sampleInterval, roundMillis)
		if end > start {
			runs = append(runs, Event{
				Start:    start,
				End:      end,
				Duration: end - start,
				Type:     InactiveEvent,
			})
		}
		runStart = -1
	}

	for _, hb := range hbs {
		if hb.Activity != heartbeat.Inactive {
			flush()
			continue
		}
		if runStart < 0 {
			runStart = hb.Timestamp
		}
		runEnd = hb.Timestamp
	}
	flush()

	return mergeTouching(runs)
}
