package flash

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const flashKeyPrefix = "flash:"

// RedisStore はセッションごとのリストとして Redis に保持する Store です。
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore は RedisStore を作成します。
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// Push はメッセージをリスト末尾に追加します。
func (s *RedisStore) Push(ctx context.Context, sessionID string, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	key := flashKey(sessionID)
	tx := s.rdb.TxPipeline()
	tx.RPush(ctx, key, payload)
	if s.ttl > 0 {
		tx.Expire(ctx, key, s.ttl)
	}
	_, err = tx.Exec(ctx)
	return err
}

// Drain は MULTI/EXEC で LRANGE と DEL をまとめて実行します。
func (s *RedisStore) Drain(ctx context.Context, sessionID string) ([]Message, error) {
	key := flashKey(sessionID)
	tx := s.rdb.TxPipeline()
	items := tx.LRange(ctx, key, 0, -1)
	tx.Del(ctx, key)
	if _, err := tx.Exec(ctx); err != nil {
		return nil, err
	}

	raw, err := items.Result()
	if err != nil {
		return nil, err
	}
	msgs := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("decode flash message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func flashKey(sessionID string) string {
	return flashKeyPrefix + sessionID
}
