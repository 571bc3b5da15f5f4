package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/signalsfoundry/skylight/model"
)

// RedisSlot stores the slot payload under a single Redis key. The key is
// written with a TTL matching the staleness window, so Redis itself drops
// fixes nobody would accept anyway; the Store still applies the age rule
// on load for payloads read just before expiry.
type RedisSlot struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisSlot returns a slot backed by the given client and key.
func NewRedisSlot(client *redis.Client, key string) *RedisSlot {
	return &RedisSlot{
		client: client,
		key:    key,
		ttl:    model.MaxPositionAge,
	}
}

// Read returns the stored payload, or ErrSlotEmpty when the key is absent.
func (r *RedisSlot) Read(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSlotEmpty
		}
		return nil, err
	}
	return data, nil
}

// Write replaces the stored payload and refreshes the TTL.
func (r *RedisSlot) Write(ctx context.Context, data []byte) error {
	return r.client.Set(ctx, r.key, data, r.ttl).Err()
}

// Clear deletes the key; deleting a missing key is not an error.
func (r *RedisSlot) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
