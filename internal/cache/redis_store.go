package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store backed by a Redis instance. Expiry is handled
// server-side via the key TTL, so Get never has to reason about timestamps.
// Useful when several gateway instances should share one analysis cache.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool) {
	val, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		log.Printf("WARNING: Redis cache read failed for %s: %v", key, err)
		return "", false
	}
	return val, true
}

// Set implements Store. A write failure is logged and ignored: the cache is
// an optimization, never a correctness requirement.
func (s *RedisStore) Set(ctx context.Context, key, val string) {
	if err := s.rdb.Set(ctx, key, val, s.ttl).Err(); err != nil {
		log.Printf("WARNING: Redis cache write failed for %s: %v", key, err)
	}
}

// Len implements Store. DBSize counts the whole keyspace; this is only used
// for the stats endpoint, where an approximation is acceptable.
func (s *RedisStore) Len() int {
	n, err := s.rdb.DBSize(context.Background()).Result()
	if err != nil {
		return 0
	}
	return int(n)
}
