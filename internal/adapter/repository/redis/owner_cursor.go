package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/srgjo27/tripdesk/internal/core/ports"
)

const ownerCursorKey = "leads:owner_cursor"

var _ ports.OwnerCursor = (*OwnerCursor)(nil)

// OwnerCursor is the lead rotation position, shared by every process
// through a single INCR counter.
type OwnerCursor struct {
	rdb goredis.Cmdable
	key string
}

func NewOwnerCursor(rdb goredis.Cmdable) *OwnerCursor {
	return &OwnerCursor{rdb: rdb, key: ownerCursorKey}
}

func (c *OwnerCursor) Next(ctx context.Context) (int64, error) {
	n, err := c.rdb.Incr(ctx, c.key).Result()
	if err != nil {
		return 0, fmt.Errorf("advance owner cursor: %w", err)
	}
	return n, nil
}
