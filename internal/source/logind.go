package source

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/ferncreek/daytrace/internal/heartbeat"
)

// LogindSource derives the user-activity state from systemd-logind's
// idle hint on the caller's own session. logind flips IdleHint once the
// session has been idle past its threshold and records the flip time in
// IdleSinceHint (microseconds since the epoch).
type LogindSource struct {
	conn *dbus.Conn

	// mayBeInactiveAfter is the grace period during which an idle
	// session is reported as may_be_inactive rather than inactive.
	mayBeInactiveAfter time.Duration
	inactiveAfter      time.Duration
}

const sessionSelfPath = "/org/freedesktop/login1/session/auto"

func NewLogindSource(mayBeInactiveAfter, inactiveAfter time.Duration) (*LogindSource, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	return &LogindSource{
		conn:               conn,
		mayBeInactiveAfter: mayBeInactiveAfter,
		inactiveAfter:      inactiveAfter,
	}, nil
}

func (s *LogindSource) Name() string {
	return "logind"
}

func (s *LogindSource) Close() error {
	return s.conn.Close()
}

// Sample reads IdleHint and IdleSinceHint from the current session and
// maps them onto the activity enum.
func (s *LogindSource) Sample(ctx context.Context) (Sample, error) {
	obj := s.conn.Object("org.freedesktop.login1", sessionSelfPath)

	idleVariant, err := obj.GetProperty("org.freedesktop.login1.Session.IdleHint")
	if err != nil {
		return Sample{}, fmt.Errorf("failed to get IdleHint: %w", err)
	}
	idle, ok := idleVariant.Value().(bool)
	if !ok {
		return Sample{}, fmt.Errorf("unexpected type for IdleHint")
	}

	if !idle {
		return Sample{Activity: heartbeat.Active}, nil
	}

	sinceVariant, err := obj.GetProperty("org.freedesktop.login1.Session.IdleSinceHint")
	if err != nil {
		return Sample{}, fmt.Errorf("failed to get IdleSinceHint: %w", err)
	}
	sinceUsec, ok := sinceVariant.Value().(uint64)
	if !ok {
		return Sample{}, fmt.Errorf("unexpected type for IdleSinceHint")
	}

	return Sample{Activity: s.classifyIdle(time.UnixMicro(int64(sinceUsec)), time.Now())}, nil
}

func (s *LogindSource) classifyIdle(idleSince, now time.Time) heartbeat.Activity {
	idleFor := now.Sub(idleSince)
	switch {
	case idleFor >= s.inactiveAfter:
		return heartbeat.Inactive
	case idleFor >= s.mayBeInactiveAfter:
		return heartbeat.MayBeInactive
	default:
		return heartbeat.Active
	}
}
