package sessions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(context.Background(), RedisConfig{Addr: mr.Addr(), Prefix: "career-booster-test:", TTL: ttl})
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, time.Minute)

	id := uuid.NewString()
	if err := store.Save(ctx, id, []byte(`{}`)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound saving unknown session, got %v", err)
	}
	if err := store.Create(ctx, id, []byte(`{"page":"home"}`)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Create(ctx, id, []byte(`{}`)); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if !mr.Exists("career-booster-test:" + id) {
		t.Fatalf("expected prefixed key in redis")
	}
	if err := store.Save(ctx, id, []byte(`{"page":"feedback"}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"page":"feedback"}` {
		t.Fatalf("unexpected payload %s", got)
	}
	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisStoreSaveRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, time.Minute)
	id := uuid.NewString()

	if err := store.Create(ctx, id, []byte(`{}`)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	mr.FastForward(40 * time.Second)
	if err := store.Save(ctx, id, []byte(`{"page":"interview"}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	mr.FastForward(40 * time.Second)
	if _, err := store.Get(ctx, id); err != nil {
		t.Fatalf("expected session alive after save refreshed ttl, got %v", err)
	}

	mr.FastForward(time.Minute)
	if _, err := store.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}
	if err := store.Save(ctx, id, []byte(`{}`)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound saving expired session, got %v", err)
	}
}

func TestRedisStorePing(t *testing.T) {
	store, mr := newTestRedisStore(t, time.Minute)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	mr.Close()
	if err := store.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping to fail after server stops")
	}
}

func TestNewRedisStoreFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	if _, err := NewRedisStore(context.Background(), RedisConfig{Addr: addr}); err == nil {
		t.Fatalf("expected connection error")
	}
}
