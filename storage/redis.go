package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const seenSetKey = "clipbot:seen_videos"

// RedisSeenStore keeps the seen set in Redis so multiple workers can share
// one view of which videos have been processed.
type RedisSeenStore struct {
	client *redis.Client
}

// NewRedisSeenStore connects to the given address and verifies the
// connection with a ping.
func NewRedisSeenStore(ctx context.Context, addr string) (*RedisSeenStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisSeenStore{client: client}, nil
}

func (s *RedisSeenStore) Contains(ctx context.Context, videoID string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, seenSetKey, videoID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check seen set: %w", err)
	}
	return ok, nil
}

func (s *RedisSeenStore) Add(ctx context.Context, videoID string) error {
	if err := s.client.SAdd(ctx, seenSetKey, videoID).Err(); err != nil {
		return fmt.Errorf("failed to add to seen set: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *RedisSeenStore) Close() error {
	return s.client.Close()
}
