package reduce

// EventType discriminates the three reduced-event kinds. Consumers are
// expected to branch exhaustively on it; there is no shared behavior
// beyond the data shape.
type EventType string

const (
	PrimaryWindow EventType = "primaryWindow"
	InactiveEvent EventType = "inactive"
	MeetingEvent  EventType = "meeting"
)

// Event is a contiguous, type-tagged interval derived from one source's
// heartbeat series. The same shape is used for final day-summary entries.
// Payload fields are empty when not applicable to the type.
type Event struct {
	Start    int64     `json:"start"` // epoch milliseconds
	End      int64     `json:"end"`
	Duration int64     `json:"duration"`
	Type     EventType `json:"type"`
	App      string    `json:"app,omitempty"`
	Title    string    `json:"title,omitempty"`
	SubTitle string    `json:"subTitle,omitempty"`
}

const (
	slotMillis  = 15 * 60 * 1000 // quarter-hour primary-window slots
	roundMillis = 5 * 60 * 1000  // boundary rounding for idle/meeting runs

	// Meeting runs shorter than this (raw, before rounding) are window
	// focus flicker and are discarded outright.
	minMeetingMillis = 5 * 60 * 1000
)

// samePayload reports whether two events could be merged into one if
// they were adjacent: identical type and identical type-specific fields.
func samePayload(a, b Event) bool {
	return a.Type == b.Type && a.App == b.App && a.Title == b.Title && a.SubTitle == b.SubTitle
}

// roundNearest rounds ts to the nearest multiple of unit, halves up.
// All real UTC offsets are whole multiples of 15 minutes, so rounding
// epoch milliseconds lands on local wall-clock boundaries too.
func roundNearest(ts, unit int64) int64 {
	return (ts + unit/2) / unit * unit
}

// mergeTouching collapses runs that touch or overlap after rounding.
// Runs with differing payloads are never combined; input must be sorted.
func mergeTouching(events []Event) []Event {
	var out []Event
	for _, e := range events {
		if n := len(out); n > 0 && samePayload(out[n-1], e) && e.Start <= out[n-1].End {
			if e.End > out[n-1].End {
				out[n-1].End = e.End
				out[n-1].Duration = out[n-1].End - out[n-1].Start
			}
			continue
		}
		out = append(out, e)
	}
	return out
}
