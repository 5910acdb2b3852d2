// README: LRU read cache in front of a Backend (writes invalidate, reads fill).
package kv

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached fills on reads only. Every write bumps gen and drops the written
// keys, and a read caches its result only if gen did not move while it was
// talking to the backend, so a slow read never reinstates a replaced value.
type Cached struct {
	inner Backend
	cache *lru.Cache[string, []byte]

	mu  sync.Mutex
	gen uint64
}

func NewCached(inner Backend, size int) (*Cached, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &Cached{inner: inner, cache: cache}, nil
}

func (c *Cached) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// fill caches entries read under generation g, unless a write happened since.
func (c *Cached) fill(g uint64, entries map[string][]byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != g {
		return
	}
	for k, v := range entries {
		c.cache.Add(k, clone(v))
	}
}

func (c *Cached) invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	for _, k := range keys {
		c.cache.Remove(k)
	}
}

func (c *Cached) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := c.cache.Get(key); ok {
		return clone(v), nil
	}
	g := c.generation()
	v, err := c.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	c.fill(g, map[string][]byte{key: v})
	return v, nil
}

func (c *Cached) GetMany(ctx context.Context, keys ...string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	var missing []string
	for _, k := range keys {
		if v, ok := c.cache.Get(k); ok {
			out[k] = clone(v)
			continue
		}
		missing = append(missing, k)
	}
	if len(missing) == 0 {
		return out, nil
	}
	g := c.generation()
	got, err := c.inner.GetMany(ctx, missing...)
	if err != nil {
		return nil, err
	}
	c.fill(g, got)
	for k, v := range got {
		out[k] = v
	}
	return out, nil
}

func (c *Cached) Set(ctx context.Context, key string, value []byte) error {
	err := c.inner.Set(ctx, key, value)
	c.invalidate(key)
	return err
}

func (c *Cached) SetMany(ctx context.Context, entries map[string][]byte) error {
	err := c.inner.SetMany(ctx, entries)
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	c.invalidate(keys...)
	return err
}

func (c *Cached) Delete(ctx context.Context, keys ...string) error {
	err := c.inner.Delete(ctx, keys...)
	c.invalidate(keys...)
	return err
}

// Len reports the number of cached entries.
func (c *Cached) Len() int {
	return c.cache.Len()
}
