package queue

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisQueueKey = "storefront:queue:jobs"

// RedisDriver backs the queue with a Redis list so jobs survive process
// restarts and can be shared across nodes.
type RedisDriver struct {
	rdb *redis.Client
}

// NewRedisDriver wraps an existing Redis client as a queue driver.
func NewRedisDriver(rdb *redis.Client) *RedisDriver {
	return &RedisDriver{rdb: rdb}
}

func (d *RedisDriver) Push(payload []byte) error {
	return d.rdb.RPush(context.Background(), redisQueueKey, payload).Err()
}

// Pop blocks for up to two seconds waiting for a job, then returns
// (nil, nil) so the worker loop can observe context cancellation.
func (d *RedisDriver) Pop(ctx context.Context) ([]byte, error) {
	res, err := d.rdb.BLPop(ctx, 2*time.Second, redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	// BLPOP returns [key, value].
	if len(res) < 2 {
		return nil, nil
	}
	return []byte(res[1]), nil
}
