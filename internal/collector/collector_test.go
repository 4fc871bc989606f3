package collector

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ferncreek/daytrace/internal/config"
	"github.com/ferncreek/daytrace/internal/heartbeat"
	"github.com/ferncreek/daytrace/internal/source"
	"github.com/ferncreek/daytrace/internal/store"
)

func testCollector(t *testing.T, sources ...source.Source) (*Collector, *store.Manager) {
	t.Helper()
	cfg, err := config.LoadConfigFromBytes(nil)
	if err != nil {
		t.Fatalf("default config failed: %v", err)
	}
	mgr, err := store.NewManager(filepath.Join(t.TempDir(), "store.json"), cfg.SampleInterval.Std())
	if err != nil {
		t.Fatalf("store init failed: %v", err)
	}
	return NewCollector(mgr, cfg, sources...), mgr
}

func TestCollectOnce_ComposesFromAllSources(t *testing.T) {
	activity := source.NewFakeSource("activity",
		source.Sample{Activity: heartbeat.Active})
	window := source.NewFakeSource("window",
		source.Sample{AppWindow: &heartbeat.AppWindow{App: "vim", Title: "main.go"}})
	meeting := source.NewFakeSource("meeting",
		source.Sample{Meeting: &heartbeat.Meeting{Title: "Standup"}})

	c, mgr := testCollector(t, activity, window, meeting)
	now := time.Date(2024, 6, 3, 9, 0, 0, 0, time.Local)
	c.CollectOnce(context.Background(), now)

	hbs := mgr.HeartbeatsForDay("2024-06-03")
	if len(hbs) != 1 {
		t.Fatalf("expected 1 heartbeat, got %d", len(hbs))
	}
	hb := hbs[0]
	if hb.Activity != heartbeat.Active {
		t.Errorf("activity not composed: %q", hb.Activity)
	}
	if hb.AppWindow == nil || hb.AppWindow.App != "vim" {
		t.Errorf("app window not composed: %+v", hb.AppWindow)
	}
	if hb.Meeting == nil || hb.Meeting.Title != "Standup" {
		t.Errorf("meeting not composed: %+v", hb.Meeting)
	}
}

func TestCollectOnce_FailingSourceLeavesFieldNull(t *testing.T) {
	activity := source.NewFakeSource("activity",
		source.Sample{Activity: heartbeat.Active})
	window := source.NewFakeSource("window")
	window.SampleError = errors.New("window inspection unavailable")

	c, mgr := testCollector(t, activity, window)
	c.CollectOnce(context.Background(), time.Date(2024, 6, 3, 9, 0, 0, 0, time.Local))

	hbs := mgr.HeartbeatsForDay("2024-06-03")
	if len(hbs) != 1 {
		t.Fatalf("a failing source must not block the tick, got %d heartbeats", len(hbs))
	}
	if hbs[0].AppWindow != nil {
		t.Errorf("failed source should contribute a null field")
	}
	if hbs[0].Activity != heartbeat.Active {
		t.Errorf("other sources should still be recorded")
	}
}

func TestCollectOnce_FirstValueWinsPerField(t *testing.T) {
	first := source.NewFakeSource("primary",
		source.Sample{AppWindow: &heartbeat.AppWindow{App: "vim", Title: "main.go"}})
	second := source.NewFakeSource("fallback",
		source.Sample{AppWindow: &heartbeat.AppWindow{App: "firefox", Title: "docs"}})

	c, mgr := testCollector(t, first, second)
	c.CollectOnce(context.Background(), time.Date(2024, 6, 3, 9, 0, 0, 0, time.Local))

	hbs := mgr.HeartbeatsForDay("2024-06-03")
	if hbs[0].AppWindow == nil || hbs[0].AppWindow.App != "vim" {
		t.Errorf("expected the first source's value to win, got %+v", hbs[0].AppWindow)
	}
}

func TestRunCleanup_RemovesExpiredBuckets(t *testing.T) {
	c, mgr := testCollector(t)
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.Local)
	old := now.AddDate(0, 0, -40)
	if err := mgr.Append(heartbeat.Heartbeat{Timestamp: old.UnixMilli(), Activity: heartbeat.Active}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	c.RunCleanup(now)
	for _, d := range mgr.Days() {
		if d == old.Format("2006-01-02") {
			t.Errorf("expired bucket survived cleanup")
		}
	}
}
