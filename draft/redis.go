package draft

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore is a Store implementation backed by Redis, suitable for
// multi-node deployments where editing sessions move between nodes.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore constructs a RedisStore on an existing client. Drafts expire
// after ttl; a zero ttl keeps them until removed.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: "draft:", ttl: ttl}
}

func redisStoreCompileCheck() Store {
	return &RedisStore{}
}

// Get returns the draft stored under key, or nil when absent.
func (s *RedisStore) Get(ctx context.Context, key string) (*Draft, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Set stores a draft under key.
func (s *RedisStore) Set(ctx context.Context, key string, draft *Draft) error {
	draft.Key = key
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+key, data, s.ttl).Err()
}

// Remove deletes the draft and its use-for-save flag.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key, s.prefix+key+useForSaveSuffix).Err()
}

// MarkUseForSave flags the draft under key for the next save.
func (s *RedisStore) MarkUseForSave(ctx context.Context, key string) error {
	return s.client.Set(ctx, s.prefix+key+useForSaveSuffix, "1", s.ttl).Err()
}

// ConsumeForSave clears the flag and returns the draft if flagged. A flagged
// but missing draft reports no draft without error.
func (s *RedisStore) ConsumeForSave(ctx context.Context, key string) (*Draft, bool, error) {
	removed, err := s.client.Del(ctx, s.prefix+key+useForSaveSuffix).Result()
	if err != nil {
		return nil, false, err
	}
	if removed == 0 {
		return nil, false, nil
	}
	d, err := s.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if d == nil {
		return nil, false, nil
	}
	return d, true, nil
}
