// Package source defines the sample-source contract and its
// implementations. Sources are opaque producers: each tick the
// collector asks every source for whatever fields it can currently
// determine, and a source that fails or knows nothing simply
// contributes empty fields. How a source observes the OS is its own
// business.
package source

import (
	"context"

	"github.com/ferncreek/daytrace/internal/heartbeat"
)

// Sample is a partial heartbeat: any field may be unset when the source
// cannot determine it this tick.
type Sample struct {
	Activity  heartbeat.Activity
	AppWindow *heartbeat.AppWindow
	Meeting   *heartbeat.Meeting
}

// Source produces one Sample per tick. Implementations must not block
// beyond the context deadline and must treat their own failures as
// recoverable; an error never stops other sources from being sampled.
type Source interface {
	Name() string
	Sample(ctx context.Context) (Sample, error)
}
