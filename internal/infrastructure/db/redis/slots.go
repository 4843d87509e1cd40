package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chaldal/admin-console/internal/infrastructure/tokenstore"
)

// SlotStore is the Redis backend of the token store. Each browser session is
// one string key whose expiry is refreshed on every write.
type SlotStore struct {
	client *redis.Client
}

var _ tokenstore.Backend = (*SlotStore)(nil)

// NewSlotStore creates a SlotStore wrapping the given Redis client.
func NewSlotStore(client *redis.Client) *SlotStore {
	return &SlotStore{client: client}
}

func (s *SlotStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, tokenstore.ErrMissing
	}
	if err != nil {
		return nil, fmt.Errorf("redis get slot: %w", err)
	}
	return b, nil
}

func (s *SlotStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set slot: %w", err)
	}
	return nil
}

func (s *SlotStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete slot: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *SlotStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
