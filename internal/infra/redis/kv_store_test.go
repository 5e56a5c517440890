package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, ttl time.Duration) (*KVStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewKVStore(client, ttl), mr
}

func TestKVStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, 0)

	if _, ok, err := store.Get(ctx, "token"); ok || err != nil {
		t.Fatalf("expected clean miss, ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "token", "tok-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := store.Get(ctx, "token")
	if err != nil || !ok || value != "tok-1" {
		t.Fatalf("get: %q ok=%v err=%v", value, ok, err)
	}
	if err := store.Delete(ctx, "token"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "token"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestKVStoreHintKeys(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, 0)

	if err := store.Set(ctx, "results_a1", `["r1","r2"]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := store.Get(ctx, "results_a1")
	if err != nil || !ok || value != `["r1","r2"]` {
		t.Fatalf("expected hint list round-trip, got %q ok=%v err=%v", value, ok, err)
	}
}

func TestKVStoreDeleteMatching(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, 0)
	_ = store.Set(ctx, "results_a1", `["r1"]`)
	_ = store.Set(ctx, "results_a2", `["r2"]`)
	_ = store.Set(ctx, "token", "tok-1")

	if err := store.DeleteMatching(ctx, "results_"); err != nil {
		t.Fatalf("delete matching: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "results_a1"); ok {
		t.Fatal("expected results_a1 gone")
	}
	if _, ok, _ := store.Get(ctx, "results_a2"); ok {
		t.Fatal("expected results_a2 gone")
	}
	if _, ok, _ := store.Get(ctx, "token"); !ok {
		t.Fatal("expected token untouched")
	}
}

func TestKVStoreTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, time.Minute)

	if err := store.Set(ctx, "token", "tok-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, ok, _ := store.Get(ctx, "token"); ok {
		t.Fatal("expected entry to expire")
	}
}
