package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/srgjo27/tripdesk/internal/core/domain"
	"github.com/srgjo27/tripdesk/internal/core/ports"
	"github.com/srgjo27/tripdesk/internal/platform/logger"
)

const defaultTripTTL = 5 * time.Minute

var _ ports.TripCatalog = (*TripCache)(nil)

// TripCache is a read-through cache in front of the trip catalog. Cache
// failures fall back to the catalog.
type TripCache struct {
	next ports.TripCatalog
	rdb  goredis.Cmdable
	ttl  time.Duration
	log  *slog.Logger
}

func NewTripCache(next ports.TripCatalog, rdb goredis.Cmdable, ttl time.Duration, log *slog.Logger) *TripCache {
	if ttl <= 0 {
		ttl = defaultTripTTL
	}
	if log == nil {
		log = logger.Discard()
	}
	return &TripCache{next: next, rdb: rdb, ttl: ttl, log: log}
}

func tripKey(id string) string {
	return fmt.Sprintf("trips:%s", id)
}

func (c *TripCache) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	key := tripKey(tripID)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var trip domain.Trip
		if jerr := json.Unmarshal(raw, &trip); jerr == nil {
			return &trip, nil
		}
		c.log.Warn("corrupt trip cache entry", "key", key)
	case !errors.Is(err, goredis.Nil):
		c.log.Warn("trip cache read failed", "key", key, "error", err)
	}

	trip, err := c.next.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(trip); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.Warn("trip cache write failed", "key", key, "error", err)
		}
	}
	return trip, nil
}
