// README: Backend contract tests run against every implementation that is reachable.
package kv

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// runBackendContract exercises the behaviour every Backend must share.
func runBackendContract(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	t.Run("get_missing", func(t *testing.T) {
		if _, err := b.Get(ctx, "contract:missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("set_then_get", func(t *testing.T) {
		if err := b.Set(ctx, "contract:a", []byte("alpha")); err != nil {
			t.Fatalf("Set: %v", err)
		}
		got, err := b.Get(ctx, "contract:a")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !bytes.Equal(got, []byte("alpha")) {
			t.Fatalf("Get = %q, want alpha", got)
		}
	})

	t.Run("set_many_get_many", func(t *testing.T) {
		err := b.SetMany(ctx, map[string][]byte{
			"contract:x": []byte("1"),
			"contract:y": []byte("2"),
		})
		if err != nil {
			t.Fatalf("SetMany: %v", err)
		}
		got, err := b.GetMany(ctx, "contract:x", "contract:y", "contract:none")
		if err != nil {
			t.Fatalf("GetMany: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("GetMany returned %d entries, want 2", len(got))
		}
		if string(got["contract:x"]) != "1" || string(got["contract:y"]) != "2" {
			t.Fatalf("GetMany = %v", got)
		}
		if _, ok := got["contract:none"]; ok {
			t.Fatalf("missing key should be omitted")
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		_ = b.Set(ctx, "contract:a", []byte("first"))
		_ = b.Set(ctx, "contract:a", []byte("second"))
		got, err := b.Get(ctx, "contract:a")
		if err != nil || string(got) != "second" {
			t.Fatalf("Get after overwrite = %q, %v", got, err)
		}
	})

	t.Run("delete_idempotent", func(t *testing.T) {
		if err := b.Delete(ctx, "contract:a", "contract:x", "contract:y"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if err := b.Delete(ctx, "contract:a", "contract:x", "contract:y"); err != nil {
			t.Fatalf("second Delete: %v", err)
		}
		if _, err := b.Get(ctx, "contract:x"); !IsNotFound(err) {
			t.Fatalf("Get after delete error = %v, want ErrNotFound", err)
		}
	})

	t.Run("empty_calls", func(t *testing.T) {
		if err := b.SetMany(ctx, nil); err != nil {
			t.Fatalf("SetMany(nil): %v", err)
		}
		if err := b.Delete(ctx); err != nil {
			t.Fatalf("Delete(): %v", err)
		}
		got, err := b.GetMany(ctx)
		if err != nil || len(got) != 0 {
			t.Fatalf("GetMany() = %v, %v", got, err)
		}
	})
}

func TestMemoryBackend(t *testing.T) {
	runBackendContract(t, NewMemory())
}

func TestNamespacedBackend(t *testing.T) {
	inner := NewMemory()
	runBackendContract(t, Namespace(inner, "rider:42:"))
}

func TestCachedBackend(t *testing.T) {
	c, err := NewCached(NewMemory(), 16)
	if err != nil {
		t.Fatalf("NewCached: %v", err)
	}
	runBackendContract(t, c)
}

func TestRedisBackend(t *testing.T) {
	addr := os.Getenv("COMMUTE_REDIS_ADDR")
	if addr == "" {
		t.Skip("COMMUTE_REDIS_ADDR not set; skipping integration test")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	runBackendContract(t, Namespace(NewRedis(rdb), "kvtest:"))
}

func TestPostgresBackend(t *testing.T) {
	dsn := os.Getenv("COMMUTE_TEST_DB_DSN")
	if dsn == "" {
		t.Skip("COMMUTE_TEST_DB_DSN not set; skipping integration test")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()
	pg := NewPostgres(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	runBackendContract(t, Namespace(pg, "kvtest:"))
}

func TestNamespace_IsolatesOwners(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	a := Namespace(inner, "rider:a:")
	b := Namespace(inner, "rider:b:")

	if err := a.Set(ctx, "flexibleSchedule", []byte("A")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := b.Get(ctx, "flexibleSchedule"); !IsNotFound(err) {
		t.Fatalf("rider b should not see rider a's key, err = %v", err)
	}
	raw, err := inner.Get(ctx, "rider:a:flexibleSchedule")
	if err != nil || string(raw) != "A" {
		t.Fatalf("inner key = %q, %v", raw, err)
	}

	nested := Namespace(Namespace(inner, "app:"), "rider:c:")
	if err := nested.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("nested Set: %v", err)
	}
	if _, err := inner.Get(ctx, "app:rider:c:k"); err != nil {
		t.Fatalf("nested namespace key not concatenated: %v", err)
	}
}

func TestCached_ServesFromCacheAndEvicts(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	c, err := NewCached(inner, 4)
	if err != nil {
		t.Fatalf("NewCached: %v", err)
	}

	if err := c.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("writes must not fill the cache, Len = %d", c.Len())
	}

	// Mutating the returned slice must not corrupt the cached copy.
	got, _ := c.Get(ctx, "k")
	if c.Len() != 1 {
		t.Fatalf("cache Len after read = %d, want 1", c.Len())
	}
	got[0] = 'X'
	again, _ := c.Get(ctx, "k")
	if string(again) != "v1" {
		t.Fatalf("cached value mutated through caller slice: %q", again)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("cache Len after delete = %d, want 0", c.Len())
	}
	if _, err := c.Get(ctx, "k"); !IsNotFound(err) {
		t.Fatalf("Get after delete error = %v", err)
	}
}

func TestCached_WriteFailureDropsEntry(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	c, _ := NewCached(inner, 4)

	_ = c.Set(ctx, "k", []byte("old"))
	boom := errors.New("disk full")
	inner.FailWrites(boom)
	if err := c.SetMany(ctx, map[string][]byte{"k": []byte("new")}); !errors.Is(err, boom) {
		t.Fatalf("SetMany error = %v, want %v", err, boom)
	}
	inner.FailWrites(nil)

	got, err := c.Get(ctx, "k")
	if err != nil || string(got) != "old" {
		t.Fatalf("Get after failed write = %q, %v; want old value from backend", got, err)
	}
}

// gatedBackend pauses Get after the backend read until release is closed.
type gatedBackend struct {
	*Memory
	read    chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedBackend) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := g.Memory.Get(ctx, key)
	g.once.Do(func() {
		close(g.read)
		<-g.release
	})
	return v, err
}

func TestCached_SlowReadDoesNotReinstateReplacedValue(t *testing.T) {
	ctx := context.Background()
	inner := &gatedBackend{Memory: NewMemory(), read: make(chan struct{}), release: make(chan struct{})}
	if err := inner.Memory.Set(ctx, "k", []byte("old")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	c, _ := NewCached(inner, 4)

	done := make(chan []byte)
	go func() {
		v, _ := c.Get(ctx, "k")
		done <- v
	}()

	<-inner.read
	if err := c.Set(ctx, "k", []byte("new")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	close(inner.release)
	if first := <-done; string(first) != "old" {
		t.Fatalf("in-flight Get = %q, want the value it read (old)", first)
	}

	got, err := c.Get(ctx, "k")
	if err != nil || string(got) != "new" {
		t.Fatalf("Get after write = %q, %v; want new", got, err)
	}
}

func TestCached_SlowGetManyDoesNotReinstateReplacedValue(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	_ = inner.Set(ctx, "k", []byte("old"))
	c, _ := NewCached(inner, 4)

	g := c.generation()
	stale, _ := inner.GetMany(ctx, "k")
	if err := c.SetMany(ctx, map[string][]byte{"k": []byte("new")}); err != nil {
		t.Fatalf("SetMany: %v", err)
	}
	c.fill(g, stale)

	got, err := c.GetMany(ctx, "k")
	if err != nil || string(got["k"]) != "new" {
		t.Fatalf("GetMany after write = %q, %v; want new", got["k"], err)
	}
}

func TestMemory_FailWrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	boom := errors.New("quota exceeded")
	m.FailWrites(boom)
	if err := m.Set(ctx, "k", []byte("v")); !errors.Is(err, boom) {
		t.Fatalf("Set error = %v, want %v", err, boom)
	}
	if m.Len() != 0 {
		t.Fatalf("failed write should not store anything")
	}
}
