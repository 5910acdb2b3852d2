// README: Key-value backend contract shared by the Redis, Postgres and in-memory stores.
package kv

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("kv: key not found")

// Backend is a flat string-keyed byte store. Implementations must make
// SetMany atomic (all entries visible or none) and Delete idempotent.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// GetMany omits missing keys from the result instead of failing.
	GetMany(ctx context.Context, keys ...string) (map[string][]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, entries map[string][]byte) error
	Delete(ctx context.Context, keys ...string) error
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
