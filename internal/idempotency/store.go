package idempotency

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/frahmantamala/travel-booking/internal/transport/middleware"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "idempotency:"

// RedisStore keeps idempotency entries in Redis as JSON documents.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func Key(idempotencyKey string) string {
	return keyPrefix + idempotencyKey
}

func (s *RedisStore) Reserve(ctx context.Context, key string, entry *middleware.IdempotencyEntry, ttl time.Duration) (bool, error) {
	doc, err := json.Marshal(entry)
	if err != nil {
		return false, fmt.Errorf("encode idempotency entry: %w", err)
	}
	ok, err := s.client.SetNX(ctx, Key(key), doc, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (*middleware.IdempotencyEntry, bool, error) {
	raw, err := s.client.Get(ctx, Key(key)).Bytes()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var entry middleware.IdempotencyEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, fmt.Errorf("decode idempotency entry: %w", err)
	}
	return &entry, true, nil
}

// Complete replaces the reservation with the finished response and extends
// its lifetime to ttl.
func (s *RedisStore) Complete(ctx context.Context, key string, entry *middleware.IdempotencyEntry, ttl time.Duration) error {
	doc, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode idempotency entry: %w", err)
	}
	if err := s.client.Set(ctx, Key(key), doc, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, Key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Connect builds a client and checks it answers PING.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}
