package reduce

import "github.com/ferncreek/daytrace/internal/heartbeat"

// Meetings reduces a day's heartbeats into meeting events by run-length
// encoding consecutive samples that report the same meeting title. A
// title change starts a new run even with no gap in between. Runs whose
// raw duration is under five minutes are detection noise (window focus
// flicker) and are discarded entirely, never merged into a neighbor.
// Surviving runs get the same nearest-5-minute boundary rounding as
// inactivity runs.
func Meetings(hbs []heartbeat.Heartbeat, sampleInterval int64) []Event {
	var runs []Event
	var title string
	runStart := int64(-1)
	runEnd := int64(-1)

	flush := func() {
		if runStart < 0 {
			return
		}
		rawEnd := runEnd + sampleInterval
		if rawEnd-runStart >= minMeetingMillis {
			start := roundNearest(runStart, roundMillis)
			end := roundNearest(rawEnd, roundMillis)
			if end > start {
				runs = append(runs, Event{
					Start:    start,
					End:      end,
					Duration: end - start,
					Type:     MeetingEvent,
					Title:    title,
				})
			}
		}
		runStart = -1
	}

	for _, hb := range hbs {
		if hb.Meeting == nil {
			flush()
			continue
		}
		if runStart >= 0 && hb.Meeting.Title != title {
			flush()
		}
		if runStart < 0 {
			runStart = hb.Timestamp
			title = hb.Meeting.Title
		}
		runEnd = hb.Timestamp
	}
	flush()

	return mergeTouching(runs)
}
