package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// KVStore is the Redis-backed local store. It holds the bearer token, the
// signed-in user, and the results_<assessmentId> hint lists, so state
// survives across CLI invocations the way browser local storage survives
// reloads.
type KVStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewKVStore wraps a Redis client. ttl of zero stores entries without
// expiry.
func NewKVStore(client *redis.Client, ttl time.Duration) *KVStore {
	return &KVStore{client: client, ttl: ttl}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, s.ttl).Err()
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *KVStore) DeleteMatching(ctx context.Context, prefix string) error {
	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
