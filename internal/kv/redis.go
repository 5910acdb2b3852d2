// README: Redis-backed key-value store (GET/MGET reads, MULTI/EXEC writes).
package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Redis struct {
	redis *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{redis: client}
}

func (s *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *Redis) GetMany(ctx context.Context, keys ...string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	vals, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		switch raw := v.(type) {
		case nil:
		case string:
			out[keys[i]] = []byte(raw)
		default:
			return nil, fmt.Errorf("redis mget %s: unexpected type %T", keys[i], v)
		}
	}
	return out, nil
}

func (s *Redis) Set(ctx context.Context, key string, value []byte) error {
	return s.redis.Set(ctx, key, value, 0).Err()
}

func (s *Redis) SetMany(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range entries {
			pipe.Set(ctx, k, v, 0)
		}
		return nil
	})
	return err
}

func (s *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.redis.Del(ctx, keys...).Err()
}
