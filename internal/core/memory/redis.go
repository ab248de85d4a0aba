package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agenthands/finsage/internal/core/model"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one list per key. RPUSH is atomic, so concurrent appends
// from several processes are serialized by the server.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	return NewRedisStoreWithClient(client, prefix), nil
}

func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Append(ctx context.Context, key string, entry model.MemoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return persistErr(OpAppend, key, err)
	}
	return persistErr(OpAppend, key, s.client.RPush(ctx, s.prefix+key, data).Err())
}

func (s *RedisStore) ReadAll(ctx context.Context, key string) ([]model.MemoryEntry, error) {
	raw, err := s.client.LRange(ctx, s.prefix+key, 0, -1).Result()
	if err != nil {
		return nil, persistErr(OpRead, key, err)
	}

	entries := make([]model.MemoryEntry, 0, len(raw))
	for _, item := range raw {
		var e model.MemoryEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, persistErr(OpRead, key, fmt.Errorf("corrupt entry: %w", err))
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *RedisStore) Close(ctx context.Context) error {
	return s.client.Close()
}
