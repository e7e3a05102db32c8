package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/srgjo27/tripdesk/internal/core/domain"
	"github.com/srgjo27/tripdesk/internal/platform/logger"
)

const eventCounterTTL = 90 * 24 * time.Hour

// EventCounter keeps per-day counts of booking tracking events in a hash
// per day.
type EventCounter struct {
	rdb goredis.Cmdable
	log *slog.Logger
}

func NewEventCounter(rdb goredis.Cmdable, log *slog.Logger) *EventCounter {
	if log == nil {
		log = logger.Discard()
	}
	return &EventCounter{rdb: rdb, log: log}
}

func eventsKey(day time.Time) string {
	return "tracking:booking:" + day.UTC().Format(time.DateOnly)
}

func (c *EventCounter) Track(ctx context.Context, ev domain.TrackingEvent) {
	key := eventsKey(ev.At)
	pipe := c.rdb.TxPipeline()
	pipe.HIncrBy(ctx, key, string(ev.Name), 1)
	pipe.Expire(ctx, key, eventCounterTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("tracking counter not updated", "event", ev.Name, "error", err)
	}
}

func (c *EventCounter) Counts(ctx context.Context, day time.Time) (map[string]int64, error) {
	raw, err := c.rdb.HGetAll(ctx, eventsKey(day)).Result()
	if err != nil {
		return nil, fmt.Errorf("read tracking counters: %w", err)
	}
	out := make(map[string]int64, len(raw))
	for name, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[name] = n
	}
	return out, nil
}
