// Package collector drives the collection loop: one logical worker
// whose sampling, autosave, and retention-cleanup work are all
// timer-driven tasks on a single cooperative timeline.
package collector

import (
	"context"
	"log"
	"time"

	"github.com/ferncreek/daytrace/internal/config"
	"github.com/ferncreek/daytrace/internal/heartbeat"
	"github.com/ferncreek/daytrace/internal/source"
	"github.com/ferncreek/daytrace/internal/store"
)

// Collector polls the sample sources on every tick and forwards the
// composed heartbeat to the store. Sources never touch persistence
// themselves.
type Collector struct {
	mgr     *store.Manager
	cfg     *config.Config
	sources []source.Source
}

func NewCollector(mgr *store.Manager, cfg *config.Config, sources ...source.Source) *Collector {
	return &Collector{
		mgr:     mgr,
		cfg:     cfg,
		sources: sources,
	}
}

// Run starts the periodic sampler and blocks until ctx is cancelled.
// Shutdown forces one final synchronous save, so an ungraceful
// termination loses at most one autosave interval of heartbeats.
func (c *Collector) Run(ctx context.Context) error {
	sampleTicker := time.NewTicker(c.cfg.SampleInterval.Std())
	defer sampleTicker.Stop()
	saveTicker := time.NewTicker(c.cfg.AutosaveInterval.Std())
	defer saveTicker.Stop()
	cleanupTicker := time.NewTicker(24 * time.Hour)
	defer cleanupTicker.Stop()

	log.Println("Collector started - sampling every", c.cfg.SampleInterval.Std())

	// Run immediately on start.
	c.RunCleanup(time.Now())
	c.CollectOnce(ctx, time.Now())

	for {
		select {
		case <-ctx.Done():
			log.Println("Collector shutting down...")
			if err := c.mgr.Save(); err != nil {
				log.Println("final save failed:", err)
				return err
			}
			return nil
		case <-sampleTicker.C:
			c.CollectOnce(ctx, time.Now())
		case <-saveTicker.C:
			if err := c.mgr.Save(); err != nil {
				// Keep the in-memory store; the next tick retries.
				log.Println("autosave failed:", err)
			}
		case <-cleanupTicker.C:
			c.RunCleanup(time.Now())
		}
	}
}

// CollectOnce polls every source, composes one heartbeat, and appends
// it. A failing source contributes nothing for the tick and never
// blocks the others; for each field the first source that reports a
// value wins. Exported so tests can drive ticks deterministically.
func (c *Collector) CollectOnce(ctx context.Context, now time.Time) {
	hb := heartbeat.Heartbeat{Timestamp: now.UnixMilli()}

	for _, src := range c.sources {
		sample, err := src.Sample(ctx)
		if err != nil {
			log.Printf("source %s failed: %v", src.Name(), err)
			continue
		}
		if hb.Activity == "" && sample.Activity != "" {
			hb.Activity = sample.Activity
		}
		if hb.AppWindow == nil && sample.AppWindow != nil {
			hb.AppWindow = sample.AppWindow
		}
		if hb.Meeting == nil && sample.Meeting != nil {
			hb.Meeting = sample.Meeting
		}
	}

	if err := c.mgr.Append(hb); err != nil {
		// Malformed heartbeats are rejected at the append boundary
		// and logged; they never abort collection.
		log.Println("dropping malformed heartbeat:", err)
	}
}

// RunCleanup removes day buckets past the retention window.
func (c *Collector) RunCleanup(now time.Time) {
	if removed := c.mgr.Cleanup(now); removed > 0 {
		log.Printf("cleanup removed %d expired day bucket(s)", removed)
	}
}
