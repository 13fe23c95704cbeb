package service

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/connection-monitor/internal/store"
)

// CacheInvalidator bumps the response cache generation on every store
// change, UI changes included, because cached lists depend on the UI state.
type CacheInvalidator struct {
	rdb *redis.Client
	key string
}

func NewCacheInvalidator(rdb *redis.Client, generationKey string) *CacheInvalidator {
	return &CacheInvalidator{rdb: rdb, key: generationKey}
}

func (c *CacheInvalidator) StateChanged(change store.Change, _ store.Snapshot) {
	if c.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.rdb.Incr(ctx, c.key).Err(); err != nil {
		log.Warnf("cache: bump generation after %s: %v", change.Kind, err)
	}
}
