package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"watchroom/internal/library"
)

// DefaultKey is the redis key the snapshot blob lives under.
const DefaultKey = "watchroom:state"

// RedisStore keeps the snapshot as a single value under one key. The blob
// never expires; it is the durable copy of the session state.
type RedisStore struct {
	rdb *redis.Client
	key string
}

func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) Load(ctx context.Context) (library.Snapshot, bool, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return library.Snapshot{}, false, nil
	}
	if err != nil {
		return library.Snapshot{}, false, fmt.Errorf("read state key: %w", err)
	}
	snap, err := Decode(data)
	if err != nil {
		return library.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (s *RedisStore) Save(ctx context.Context, snap library.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("write state key: %w", err)
	}
	return nil
}
