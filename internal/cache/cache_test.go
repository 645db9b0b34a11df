package cache

import (
	"bytes"
	"context"
	"sort"
	"testing"
	"time"
)

func TestMemoryStoreSetGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if !store.Set(ctx, "video_1", []byte("payload"), 0) {
		t.Fatal("Set returned false")
	}

	got, ok := store.Get(ctx, "video_1")
	if !ok {
		t.Fatal("Get miss for existing key")
	}
	if !bytes.Equal(got, []byte("payload")) {
		t.Errorf("Get = %q", got)
	}

	if _, ok := store.Get(ctx, "video_missing"); ok {
		t.Error("Get hit for missing key")
	}
}

func TestMemoryStoreCopiesValue(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	value := []byte("original")
	store.Set(ctx, "k", value, 0)
	value[0] = 'X'

	got, _ := store.Get(ctx, "k")
	if !bytes.Equal(got, []byte("original")) {
		t.Errorf("stored value aliases caller's buffer: %q", got)
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.Set(ctx, "video_1", []byte("x"), time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	if _, ok := store.Get(ctx, "video_1"); ok {
		t.Error("expired entry still readable")
	}
	if keys := store.Keys(ctx, VideoKeyPrefix); len(keys) != 0 {
		t.Errorf("expired entry still enumerated: %v", keys)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.Set(ctx, "video_1", []byte("x"), 0)
	if !store.Delete(ctx, "video_1") {
		t.Fatal("Delete returned false")
	}

	if _, ok := store.Get(ctx, "video_1"); ok {
		t.Error("deleted entry still readable")
	}
	if keys := store.Keys(ctx, VideoKeyPrefix); len(keys) != 0 {
		t.Errorf("deleted entry still enumerated: %v", keys)
	}
}

func TestMemoryStoreKeysPrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.Set(ctx, "video_a", []byte("x"), 0)
	store.Set(ctx, "video_b", []byte("x"), 0)
	store.Set(ctx, "session_c", []byte("x"), 0)

	keys := store.Keys(ctx, VideoKeyPrefix)
	sort.Strings(keys)

	if len(keys) != 2 || keys[0] != "video_a" || keys[1] != "video_b" {
		t.Errorf("Keys = %v, want [video_a video_b]", keys)
	}
}
