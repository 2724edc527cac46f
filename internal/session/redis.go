package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:  client,
		baseTTL: 30 * time.Minute,
	}
}

// RedisStore keeps sessions in Redis so the BFF can run more than one
// replica. TTLs carry a small jitter to avoid synchronized expiry.
type RedisStore struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var s Session
	if err2 := json.Unmarshal(data, &s); err2 != nil {
		return nil, fmt.Errorf("unmarshal session failed: %w", err2)
	}
	return &s, nil
}

func (r *RedisStore) Put(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(s.ID), string(data), r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisStore) GetCartCount(ctx context.Context, userID string) (int, error) {
	data, err := r.client.Get(ctx, countKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get failed: %w", err)
	}
	count, err := strconv.Atoi(data)
	if err != nil {
		return 0, fmt.Errorf("parse cart count: %w", err)
	}
	return count, nil
}

func (r *RedisStore) SetCartCount(ctx context.Context, userID string, count int) error {
	if err := r.client.Set(ctx, countKey(userID), strconv.Itoa(count), r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) ttl() time.Duration {
	jitter := time.Duration(rand.Intn(5)) * time.Minute
	return r.baseTTL + jitter
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func countKey(userID string) string {
	return fmt.Sprintf("cartcount:%s", userID)
}
