package reduce

import (
	"reflect"
	"testing"
	"time"

	"github.com/ferncreek/daytrace/internal/heartbeat"
)

func minutes(m int) int64 {
	return int64(m) * 60 * 1000
}

func checkInvariants(t *testing.T, summary []Event) {
	t.Helper()
	for i, e := range summary {
		if e.End <= e.Start {
			t.Errorf("entry %d has non-positive span [%d, %d]", i, e.Start, e.End)
		}
		if e.Duration != e.End-e.Start {
			t.Errorf("entry %d duration %d != span %d", i, e.Duration, e.End-e.Start)
		}
		if i > 0 && summary[i-1].End > e.Start {
			t.Errorf("entries %d and %d overlap or are unsorted", i-1, i)
		}
		if i > 0 && summary[i-1].End == e.Start && samePayload(summary[i-1], e) {
			t.Errorf("entries %d and %d are equal and adjacent but not merged", i-1, i)
		}
	}
}

func TestMerge_PriorityLaw(t *testing.T) {
	base := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC).UnixMilli()
	windows := []Event{{Start: base, End: base + minutes(60), Type: PrimaryWindow, App: "vim", Title: "main.go"}}
	inactive := []Event{{Start: base + minutes(10), End: base + minutes(40), Type: InactiveEvent}}
	meetings := []Event{{Start: base + minutes(20), End: base + minutes(30), Type: MeetingEvent, Title: "Standup"}}

	summary := Merge(meetings, inactive, windows)
	checkInvariants(t, summary)

	// Expect: window / inactive / meeting / inactive / window.
	types := make([]EventType, len(summary))
	for i, e := range summary {
		types[i] = e.Type
	}
	want := []EventType{PrimaryWindow, InactiveEvent, MeetingEvent, InactiveEvent, PrimaryWindow}
	if !reflect.DeepEqual(types, want) {
		t.Fatalf("got layering %v, want %v", types, want)
	}

	// The meeting keeps its full interval; the lower-priority events
	// are the ones truncated around it.
	if summary[2].Start != base+minutes(20) || summary[2].End != base+minutes(30) {
		t.Errorf("meeting was shortened to [%d, %d]", summary[2].Start, summary[2].End)
	}
}

func TestMerge_RejoinsArtificialSplits(t *testing.T) {
	// An inactive run buried inside a meeting contributes boundaries
	// that split the meeting into three elementary intervals, but the
	// meeting wins all of them; pass 2 must emit it as one entry.
	base := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC).UnixMilli()
	meetings := []Event{{Start: base, End: base + minutes(30), Type: MeetingEvent, Title: "Planning"}}
	inactive := []Event{{Start: base + minutes(10), End: base + minutes(20), Type: InactiveEvent}}

	summary := Merge(meetings, inactive, nil)
	checkInvariants(t, summary)
	if len(summary) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(summary))
	}
	if summary[0].Type != MeetingEvent || summary[0].Duration != minutes(30) {
		t.Errorf("meeting fragmented or shortened: %+v", summary[0])
	}
}

func TestMerge_GapsAreOmitted(t *testing.T) {
	base := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC).UnixMilli()
	windows := []Event{
		{Start: base, End: base + minutes(15), Type: PrimaryWindow, App: "vim", Title: "main.go"},
		{Start: base + minutes(45), End: base + minutes(60), Type: PrimaryWindow, App: "vim", Title: "main.go"},
	}

	summary := Merge(nil, nil, windows)
	checkInvariants(t, summary)
	if len(summary) != 2 {
		t.Fatalf("expected the gap to stay open, got %d entries", len(summary))
	}
}

func TestMerge_Empty(t *testing.T) {
	if summary := Merge(nil, nil, nil); len(summary) != 0 {
		t.Errorf("merging nothing should produce nothing")
	}
}

func TestSummarize_Idempotent(t *testing.T) {
	// Recomputing from the same heartbeats must give identical results;
	// the pipeline has no hidden state.
	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC).UnixMilli()
	var hbs []heartbeat.Heartbeat
	for i := 0; i < 120; i++ {
		ts := start + int64(i)*stepMillis
		switch {
		case i >= 30 && i < 60:
			hbs = append(hbs, meetingHB(ts, "Planning"))
		case i >= 80 && i < 110:
			hbs = append(hbs, activityHB(ts, heartbeat.Inactive))
		default:
			hbs = append(hbs, windowHB(ts, "vim", "main.go"))
		}
	}

	first := Summarize(hbs, stepMillis)
	second := Summarize(hbs, stepMillis)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("summaries differ across recomputation")
	}
	checkInvariants(t, first)
	if len(first) == 0 {
		t.Fatalf("expected a non-empty summary")
	}
}

func TestDayTotals(t *testing.T) {
	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC).UnixMilli()
	var hbs []heartbeat.Heartbeat
	for i := 0; i < 60; i++ {
		ts := start + int64(i)*stepMillis
		if i >= 20 && i < 50 {
			hbs = append(hbs, activityHB(ts, heartbeat.Inactive))
		} else {
			hbs = append(hbs, windowHB(ts, "vim", "main.go"))
		}
	}

	summary := Summarize(hbs, stepMillis)
	totals := DayTotals(hbs, summary, stepMillis)

	if totals.Tracked != minutes(30) {
		t.Errorf("tracked = %d, want %d", totals.Tracked, minutes(30))
	}
	if totals.Inactive != minutes(15) {
		t.Errorf("inactive = %d, want %d", totals.Inactive, minutes(15))
	}
	if totals.Active != totals.Tracked-totals.Inactive {
		t.Errorf("active = %d, want %d", totals.Active, totals.Tracked-totals.Inactive)
	}
}

func TestDayTotals_EmptyDay(t *testing.T) {
	totals := DayTotals(nil, nil, stepMillis)
	if totals != (Totals{}) {
		t.Errorf("empty day should yield zero totals, got %+v", totals)
	}
}
