package tracking

import (
	"context"
	"log/slog"

	"github.com/srgjo27/tripdesk/internal/core/domain"
	"github.com/srgjo27/tripdesk/internal/core/ports"
)

type LogTracker struct {
	log *slog.Logger
}

func NewLogTracker(log *slog.Logger) *LogTracker {
	return &LogTracker{log: log}
}

func (t *LogTracker) Track(ctx context.Context, ev domain.TrackingEvent) {
	t.log.InfoContext(ctx, "tracking event",
		"event", ev.Name,
		"session_id", ev.SessionID,
		"trip_id", ev.TripID,
		"step", ev.Step.String(),
		"at", ev.At,
	)
}

// Multi fans an event out to several trackers.
type Multi []ports.Tracker

func (m Multi) Track(ctx context.Context, ev domain.TrackingEvent) {
	for _, t := range m {
		t.Track(ctx, ev)
	}
}
