package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"branded-email-workers/internal/common/database"
	"branded-email-workers/internal/common/logger"
	"branded-email-workers/internal/common/metrics"
)

const (
	keyTemplatePrefix = "email:tpl:"
	keyActiveBranding = "email:branding:active"
	keyDefaultLayout  = "email:layout:default"
)

func templateKey(slug string) string {
	return keyTemplatePrefix + slug
}

// Cache is a read-through JSON cache in redis. A nil *Cache, a nil client or a
// zero TTL disables it. Redis failures are logged and treated as misses.
type Cache struct {
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewCache(redis *database.RedisClient, ttl time.Duration, log logger.Logger) *Cache {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Cache{redis: redis, ttl: ttl, logger: log}
}

func (c *Cache) enabled() bool {
	return c != nil && c.redis != nil && c.ttl > 0
}

// get reports whether dst was filled from the cache.
func (c *Cache) get(ctx context.Context, kind, key string, dst interface{}) bool {
	if !c.enabled() {
		return false
	}

	raw, err := c.redis.Get(ctx, key)
	switch {
	case errors.Is(err, database.ErrCacheMiss):
		metrics.EmailCacheLookups.WithLabelValues(kind, "miss").Inc()
		return false
	case err != nil:
		metrics.EmailCacheLookups.WithLabelValues(kind, "error").Inc()
		c.logger.Warn("Cache read failed, falling back to database", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return false
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		metrics.EmailCacheLookups.WithLabelValues(kind, "error").Inc()
		c.logger.Warn("Discarding undecodable cache entry", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		c.invalidate(ctx, key)
		return false
	}

	metrics.EmailCacheLookups.WithLabelValues(kind, "hit").Inc()
	return true
}

func (c *Cache) set(ctx context.Context, key string, v interface{}) {
	if !c.enabled() {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("Cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func (c *Cache) invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.redis == nil || len(keys) == 0 {
		return
	}
	if err := c.redis.Del(ctx, keys...); err != nil {
		c.logger.Warn("Cache invalidation failed", map[string]interface{}{
			"keys":  keys,
			"error": err.Error(),
		})
	}
}

// invalidateAll drops every cached rendering input. Used when a shared
// reference such as a font or media item changes.
func (c *Cache) invalidateAll(ctx context.Context) {
	if c == nil || c.redis == nil {
		return
	}

	keys := []string{keyActiveBranding, keyDefaultLayout}
	iter := c.redis.GetClient().Scan(ctx, 0, keyTemplatePrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("Cache scan failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	c.invalidate(ctx, keys...)
}
