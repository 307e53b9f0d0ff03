package notify

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"studyhub/pkg/metrics"
)

const redisKeyPrefix = "dedup:"

// RedisTracker is a Tracker on redis SET NX with a TTL, for deployments
// that want dedup state to survive a restart. Redis errors fail open:
// the claim is granted and at worst a duplicate notification goes out.
type RedisTracker struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisTracker(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisTracker {
	return &RedisTracker{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

func (t *RedisTracker) TryClaim(ctx context.Context, key Key) bool {
	ok, err := t.rdb.SetNX(ctx, redisKeyPrefix+key.String(), 1, t.ttl).Result()
	if err != nil {
		t.logger.Warn("Redis dedup check failed, allowing notification",
			zap.String("dedup_key", key.String()),
			zap.Error(err),
		)
		return true
	}

	if !ok {
		metrics.IncrementDedupRejections(key.Kind)
	}
	return ok
}

// Purge scans the dedup keyspace and deletes keys the predicate marks
// stale. Keys that no longer parse are deleted too. Errors are logged
// and the purge gives up for this tick; the TTL bounds leakage anyway.
func (t *RedisTracker) Purge(ctx context.Context, stale func(Key) bool) int {
	removed := 0

	iter := t.rdb.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw := iter.Val()

		key, err := ParseKey(strings.TrimPrefix(raw, redisKeyPrefix))
		if err == nil && !stale(key) {
			continue
		}

		if err := t.rdb.Del(ctx, raw).Err(); err != nil {
			t.logger.Warn("Failed to delete stale dedup key",
				zap.String("dedup_key", raw),
				zap.Error(err),
			)
			continue
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		t.logger.Warn("Dedup purge scan failed", zap.Error(err))
	}

	return removed
}
