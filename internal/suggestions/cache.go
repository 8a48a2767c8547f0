package suggestions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "suggestions:trending:"

// RedisCache は提案一覧を件数ごとに Redis へ保存します。
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache は RedisCache を作成します。
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// Get はキャッシュ済みの提案を返します。存在しない場合は ok=false です。
func (c *RedisCache) Get(ctx context.Context, count int) ([]Suggestion, bool, error) {
	data, err := c.rdb.Get(ctx, cacheKey(count)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	var items []Suggestion
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

// Set は提案を保存します。
func (c *RedisCache) Set(ctx context.Context, count int, items []Suggestion) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, cacheKey(count), payload, c.ttl).Err()
}

func cacheKey(count int) string {
	return fmt.Sprintf("%s%d", cacheKeyPrefix, count)
}
