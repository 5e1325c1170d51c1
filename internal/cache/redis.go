package cache

import (
	"time"

	"github.com/gofiber/storage/redis/v3"

	"dealview/internal/metrics"
)

// Redis is a Store backed by a shared Redis instance, for deployments that
// run more than one replica and want the aggregate caches to line up.
// Expiry is delegated to Redis itself.
type Redis struct {
	storage *redis.Storage
}

// NewRedis connects to the Redis instance named by url
// (e.g. "redis://localhost:6379").
func NewRedis(url string) *Redis {
	return &Redis{storage: redis.New(redis.Config{URL: url})}
}

func (r *Redis) Get(key string) ([]byte, bool) {
	value, err := r.storage.Get(key)
	if err != nil || len(value) == 0 {
		metrics.RecordCacheEvent(key, "miss")
		return nil, false
	}
	metrics.RecordCacheEvent(key, "hit")
	return value, true
}

func (r *Redis) Set(key string, value []byte, ttl time.Duration) {
	_ = r.storage.Set(key, value, ttl)
}

func (r *Redis) Invalidate(key string) {
	_ = r.storage.Delete(key)
}

func (r *Redis) Reset() {
	_ = r.storage.Reset()
}

// Close releases the underlying connection.
func (r *Redis) Close() error {
	return r.storage.Close()
}
