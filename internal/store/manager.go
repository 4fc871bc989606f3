package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ferncreek/daytrace/internal/heartbeat"
	"github.com/ferncreek/daytrace/internal/reduce"
)

// ErrCorrupt is wrapped into the load warning when the persisted store
// could not be parsed and was replaced with a fresh one.
var ErrCorrupt = errors.New("store file is corrupt")

// Manager owns the on-disk store exclusively. All mutation goes through
// it; reducers only ever see copies of a day's heartbeats.
type Manager struct {
	mu             sync.Mutex
	path           string
	store          *Store
	dirty          bool
	sampleInterval int64 // ms, used when deriving summaries and totals
	loadWarning    error
}

// NewManager loads the store at path or initializes a fresh one. A
// missing file is normal first-run behavior. A corrupt file is not
// fatal: the original is renamed aside for inspection, an empty store
// takes its place, and the condition is reported via LoadWarning.
func NewManager(path string, sampleInterval time.Duration) (*Manager, error) {
	m := &Manager{path: path, sampleInterval: sampleInterval.Milliseconds()}

	if err := m.load(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.store = newStore()
			m.dirty = true
			if err := m.Save(); err != nil {
				return nil, err
			}
			return m, nil
		}

		// Unparsable file: preserve it, start fresh, keep running.
		aside := fmt.Sprintf("%s.corrupt-%d", path, time.Now().Unix())
		if renameErr := os.Rename(path, aside); renameErr != nil {
			log.Println("failed to preserve corrupt store file:", renameErr)
		} else {
			log.Println("corrupt store file preserved at", aside)
		}
		m.loadWarning = fmt.Errorf("%w: %v", ErrCorrupt, err)
		m.store = newStore()
		m.dirty = true
		if err := m.Save(); err != nil {
			return nil, err
		}
		return m, nil
	}

	return m, nil
}

// LoadWarning reports a recoverable problem encountered while loading,
// such as a corrupt file that was replaced. Nil on a clean load.
func (m *Manager) LoadWarning() error {
	return m.loadWarning
}

// Path returns the current store file location.
func (m *Manager) Path() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.path
}

// load reads the store file into memory.
func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return err
	}

	var s Store
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s.Days == nil {
		s.Days = make(map[string]*Day)
	}

	m.store = &s
	return nil
}

// Append validates a heartbeat and routes it into the day bucket for
// its local capture date, creating the bucket if absent. Out-of-order
// timestamps are accepted; ordering is restored at read time.
func (m *Manager) Append(hb heartbeat.Heartbeat) error {
	if err := hb.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := heartbeat.DayKey(hb.Timestamp)
	day, ok := m.store.Days[key]
	if !ok {
		day = &Day{}
		m.store.Days[key] = day
	}
	day.Heartbeats = append(day.Heartbeats, hb)
	m.dirty = true
	return nil
}

// HeartbeatsForDay returns a sorted copy of the day's heartbeats.
// Sorting on read keeps the write path cheap and self-corrects
// out-of-order appends. An unknown day yields an empty slice.
func (m *Manager) HeartbeatsForDay(date string) []heartbeat.Heartbeat {
	m.mu.Lock()
	day, ok := m.store.Days[date]
	if !ok || len(day.Heartbeats) == 0 {
		m.mu.Unlock()
		return nil
	}
	hbs := make([]heartbeat.Heartbeat, len(day.Heartbeats))
	copy(hbs, day.Heartbeats)
	m.mu.Unlock()

	sort.SliceStable(hbs, func(i, j int) bool { return hbs[i].Timestamp < hbs[j].Timestamp })
	return hbs
}

// DaySummary recomputes the prioritized timeline for a day from its raw
// heartbeats. Nothing derived is cached or persisted.
func (m *Manager) DaySummary(date string) []reduce.Event {
	return reduce.Summarize(m.HeartbeatsForDay(date), m.sampleInterval)
}

// DayTotals computes the tracked/active/inactive durations for a day.
// A day with no heartbeats yields zero totals, not an error.
func (m *Manager) DayTotals(date string) reduce.Totals {
	hbs := m.HeartbeatsForDay(date)
	return reduce.DayTotals(hbs, reduce.Summarize(hbs, m.sampleInterval), m.sampleInterval)
}

// Days returns the bucket keys currently held, sorted ascending.
func (m *Manager) Days() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.store.Days))
	for k := range m.store.Days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Save atomically writes the store to disk: serialize to a temp file,
// then rename over the target, so a crash mid-write never leaves a
// half-written document in place of a good one. Saves are serialized by
// the manager lock and coalesced: a clean store is not rewritten. On
// failure the in-memory store is untouched and stays dirty, so the next
// scheduled save retries.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked()
}

func (m *Manager) saveLocked() error {
	if !m.dirty {
		return nil
	}

	data, err := json.MarshalIndent(m.store, "", "  ")
	if err != nil {
		return err
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return err
	}

	m.dirty = false
	return nil
}

// Cleanup removes day buckets whose date is strictly more than
// RetentionDays before now's local date and records the pass. Returns
// the number of buckets removed. Bucket keys are YYYY-MM-DD, so the
// comparison is a plain string compare.
func (m *Manager) Cleanup(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := now.AddDate(0, 0, -RetentionDays).Format("2006-01-02")
	var removed int
	for key := range m.store.Days {
		if key < cutoff {
			delete(m.store.Days, key)
			removed++
		}
	}
	m.store.LastCleanup = now.UnixMilli()
	m.dirty = true
	return removed
}

// Relocate moves persistence to a new directory, e.g. a synchronized
// folder. The store is written to the new location as the same single
// document, read back and verified to parse to an equivalent store, and
// only then do subsequent reads and writes switch over. The old file is
// left in place as a safety net.
func (m *Manager) Relocate(newDir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	newPath := filepath.Join(newDir, filepath.Base(m.path))
	if newPath == m.path {
		return nil
	}

	data, err := json.MarshalIndent(m.store, "", "  ")
	if err != nil {
		return err
	}
	tmp := newPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write store copy: %w", err)
	}
	if err := os.Rename(tmp, newPath); err != nil {
		return fmt.Errorf("failed to place store copy: %w", err)
	}

	// Verify the copy before switching over.
	copied, err := os.ReadFile(newPath)
	if err != nil {
		return fmt.Errorf("failed to read back store copy: %w", err)
	}
	var check Store
	if err := json.Unmarshal(copied, &check); err != nil {
		return fmt.Errorf("store copy does not parse: %w", err)
	}
	if check.Version != m.store.Version || len(check.Days) != len(m.store.Days) ||
		check.heartbeatCount() != m.store.heartbeatCount() {
		return fmt.Errorf("store copy at %s is not equivalent to the original", newPath)
	}

	m.path = newPath
	return nil
}
