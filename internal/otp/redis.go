package otp

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

const keyPrefix = "otp:"

// RedisStore shares entries between instances. Each key is a hash holding the
// code and expiry, and Redis drops it once the expiry passes.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore parses url (redis://[:password@]host:port/db) and pings the server.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{rdb: rdb}, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// Get returns the entry for key. Redis drops entries once they expire.
func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	fields, err := s.rdb.HGetAll(ctx, keyPrefix+key).Result()
	if err != nil {
		return Entry{}, false, fmt.Errorf("get otp: %w", err)
	}
	code, ok := fields["code"]
	if !ok {
		return Entry{}, false, nil
	}
	ms, err := strconv.ParseInt(fields["expiresAt"], 10, 64)
	if err != nil {
		return Entry{}, false, fmt.Errorf("decode otp expiry: %w", err)
	}
	return Entry{Code: code, ExpiresAt: time.UnixMilli(ms)}, true, nil
}

// Set replaces any entry for key and expires it at entry.ExpiresAt.
func (s *RedisStore) Set(ctx context.Context, key string, entry Entry) error {
	k := keyPrefix + key
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k, "code", entry.Code, "expiresAt", entry.ExpiresAt.UnixMilli())
		pipe.PExpireAt(ctx, k, entry.ExpiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("set otp: %w", err)
	}
	return nil
}

// Delete removes the entry for key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}
