package store

import (
	"time"

	"github.com/ferncreek/daytrace/internal/heartbeat"
)

// RetentionDays is the rolling window of day buckets kept on disk.
// Buckets strictly older than this are removed by Cleanup; the bucket
// exactly at the boundary is retained.
const RetentionDays = 30

// Day is one calendar day's bucket of raw heartbeats.
type Day struct {
	Heartbeats []heartbeat.Heartbeat `json:"heartbeats"`
}

// Store is the top-level structure persisted as a single JSON document.
// Only raw heartbeats are stored; day summaries are derived on read so
// raw and derived state can never drift apart.
type Store struct {
	Version     int             `json:"version"`
	StartTime   int64           `json:"startTime"`   // epoch ms of first initialization
	LastCleanup int64           `json:"lastCleanup"` // epoch ms of the last retention pass
	Days        map[string]*Day `json:"days"`
}

func newStore() *Store {
	return &Store{
		Version:   1,
		StartTime: time.Now().UnixMilli(),
		Days:      make(map[string]*Day),
	}
}

// heartbeatCount is used by Relocate to verify a copied store is
// equivalent to the in-memory one.
func (s *Store) heartbeatCount() int {
	var n int
	for _, day := range s.Days {
		n += len(day.Heartbeats)
	}
	return n
}
