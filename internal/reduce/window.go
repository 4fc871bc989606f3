package reduce

import (
	"sort"

	"github.com/ferncreek/daytrace/internal/heartbeat"
)

// windowSlot accumulates the per-slot vote for one quarter-hour bucket.
type windowSlot struct {
	slotStart int64
	first     int64 // first heartbeat timestamp seen in the slot
	last      int64 // last heartbeat timestamp seen in the slot
	votes     map[heartbeat.AppWindow]*windowVote
}

type windowVote struct {
	count     int
	firstSeen int64 // timestamp of the identity's first occurrence in the slot
}

// PrimaryWindows reduces a day's heartbeats into quarter-hour-aligned
// primary-window events. Slots are aligned to the wall clock (:00, :15,
// :30, :45), not to session start, so granularity is stable regardless
// of when sampling began. Heartbeats with a nil AppWindow abstain: they
// cast no vote but do not break a block either. A slot with no votes
// emits nothing and is left as a gap for the merger.
func PrimaryWindows(hbs []heartbeat.Heartbeat) []Event {
	slots := make(map[int64]*windowSlot)
	for _, hb := range hbs {
		start := hb.Timestamp - hb.Timestamp%slotMillis
		s, ok := slots[start]
		if !ok {
			s = &windowSlot{
				slotStart: start,
				first:     hb.Timestamp,
				last:      hb.Timestamp,
				votes:     make(map[heartbeat.AppWindow]*windowVote),
			}
			slots[start] = s
		}
		if hb.Timestamp < s.first {
			s.first = hb.Timestamp
		}
		if hb.Timestamp > s.last {
			s.last = hb.Timestamp
		}
		if hb.AppWindow == nil {
			continue
		}
		v, ok := s.votes[*hb.AppWindow]
		if !ok {
			s.votes[*hb.AppWindow] = &windowVote{count: 1, firstSeen: hb.Timestamp}
			continue
		}
		v.count++
	}

	var order []int64
	for start, s := range slots {
		if len(s.votes) > 0 {
			order = append(order, start)
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	var events []Event
	var prevSlot int64
	for _, start := range order {
		s := slots[start]
		win := s.winner()
		// Clip to the observed heartbeats so leading or trailing dead
		// time inside the slot is not claimed.
		e := Event{
			Start: s.first,
			End:   s.last,
			Type:  PrimaryWindow,
			App:   win.App,
			Title: win.Title,
		}
		// Merge with the previous event only when the slots are
		// consecutive; merging across an empty slot would claim
		// unobserved time.
		if n := len(events); n > 0 && samePayload(events[n-1], e) && start == prevSlot+slotMillis {
			events[n-1].End = e.End
		} else {
			events = append(events, e)
		}
		prevSlot = start
	}
	for i := range events {
		events[i].Duration = events[i].End - events[i].Start
	}
	return events
}

// winner picks the identity with the highest vote count; ties break by
// earliest first occurrence within the slot, which is deterministic and
// stable under re-reduction.
func (s *windowSlot) winner() heartbeat.AppWindow {
	var best heartbeat.AppWindow
	var bestVote *windowVote
	for id, v := range s.votes {
		if bestVote == nil || v.count > bestVote.count ||
			(v.count == bestVote.count && v.firstSeen < bestVote.firstSeen) {
			best = id
			bestVote = v
		}
	}
	return best
}
