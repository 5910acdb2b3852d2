// README: Key prefixing so several owners share one backend without touching logical keys.
package kv

import (
	"context"
	"strings"
)

type namespaced struct {
	inner  Backend
	prefix string
}

// Namespace scopes every key of inner under prefix. Nested namespaces concatenate.
func Namespace(inner Backend, prefix string) Backend {
	if prefix == "" {
		return inner
	}
	if n, ok := inner.(*namespaced); ok {
		return &namespaced{inner: n.inner, prefix: n.prefix + prefix}
	}
	return &namespaced{inner: inner, prefix: prefix}
}

func (n *namespaced) key(k string) string {
	return n.prefix + k
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	return n.inner.Get(ctx, n.key(key))
}

func (n *namespaced) GetMany(ctx context.Context, keys ...string) (map[string][]byte, error) {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = n.key(k)
	}
	got, err := n.inner.GetMany(ctx, full...)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(got))
	for k, v := range got {
		out[strings.TrimPrefix(k, n.prefix)] = v
	}
	return out, nil
}

func (n *namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.inner.Set(ctx, n.key(key), value)
}

func (n *namespaced) SetMany(ctx context.Context, entries map[string][]byte) error {
	full := make(map[string][]byte, len(entries))
	for k, v := range entries {
		full[n.key(k)] = v
	}
	return n.inner.SetMany(ctx, full)
}

func (n *namespaced) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = n.key(k)
	}
	return n.inner.Delete(ctx, full...)
}
