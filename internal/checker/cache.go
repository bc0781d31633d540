package checker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/certwatch-io/certwatch/internal/core"
)

// Cache keeps recent snapshots in redis so listing the watch list does
// not hammer the same endpoints. Misses and redis failures both fall
// through to a live fetch.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCache(redisURL string, ttl time.Duration, logger *zap.Logger) *Cache {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	return &Cache{
		client: redis.NewClient(opt),
		ttl:    ttl,
		logger: logger,
	}
}

func snapshotKey(domain string) string {
	return fmt.Sprintf("cert:snapshot:%s", domain)
}

func (c *Cache) GetSnapshot(ctx context.Context, domain string) (*core.CertificateSnapshot, bool) {
	data, err := c.client.Get(ctx, snapshotKey(domain)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Snapshot cache read failed", zap.String("domain", domain), zap.Error(err))
		}
		return nil, false
	}

	var snap core.CertificateSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, false
	}
	return &snap, true
}

func (c *Cache) SetSnapshot(ctx context.Context, domain string, snap *core.CertificateSnapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, snapshotKey(domain), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Snapshot cache write failed", zap.String("domain", domain), zap.Error(err))
	}
}

func (c *Cache) Invalidate(ctx context.Context, domain string) {
	if err := c.client.Del(ctx, snapshotKey(domain)).Err(); err != nil {
		c.logger.Warn("Snapshot cache invalidate failed", zap.String("domain", domain), zap.Error(err))
	}
}

func (c *Cache) Close() error {
	return c.client.Close()
}
