// README: Read-through Redis cache in front of the checklist store.
package checklist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"opsgate/internal/types"
)

const cacheKeyPrefix = "checklist:%s"

var _ Repository = (*Cache)(nil)

// Cache serves Get from Redis and invalidates on every write. Redis failures
// degrade to reading the wrapped repository.
type Cache struct {
	next  Repository
	redis *redis.Client
	ttl   time.Duration
	log   logrus.FieldLogger
}

func NewCache(next Repository, rdb *redis.Client, ttl time.Duration, log logrus.FieldLogger) *Cache {
	return &Cache{next: next, redis: rdb, ttl: ttl, log: log}
}

func (c *Cache) Get(ctx context.Context, id types.ID) (*Checklist, error) {
	key := cacheKey(id)
	raw, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cl Checklist
		if jsonErr := json.Unmarshal(raw, &cl); jsonErr == nil {
			return &cl, nil
		}
		c.log.WithField("checklist_id", id).Warn("dropping undecodable cache entry")
	case !errors.Is(err, redis.Nil):
		c.log.WithError(err).WithField("checklist_id", id).Warn("checklist cache read failed")
	}

	cl, err := c.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(cl); err == nil {
		if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.WithError(err).WithField("checklist_id", id).Warn("checklist cache write failed")
		}
	}
	return cl, nil
}

func (c *Cache) Create(ctx context.Context, cl *Checklist) error {
	return c.next.Create(ctx, cl)
}

func (c *Cache) Update(ctx context.Context, cl *Checklist) error {
	if err := c.next.Update(ctx, cl); err != nil {
		return err
	}
	c.invalidate(ctx, cl.ID)
	return nil
}

func (c *Cache) Delete(ctx context.Context, id types.ID) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *Cache) List(ctx context.Context, plantID types.ID) ([]Checklist, error) {
	return c.next.List(ctx, plantID)
}

func (c *Cache) ClearLocation(ctx context.Context, id types.ID) error {
	if err := c.next.ClearLocation(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *Cache) invalidate(ctx context.Context, id types.ID) {
	if err := c.redis.Del(ctx, cacheKey(id)).Err(); err != nil {
		c.log.WithError(err).WithField("checklist_id", id).Warn("checklist cache invalidation failed")
	}
}

func cacheKey(id types.ID) string {
	return fmt.Sprintf(cacheKeyPrefix, string(id))
}
