package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// exerciseKV runs the shared Get/Set/Remove contract against a backend.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, "missing.key"); err != nil || ok {
		t.Fatalf("Get(missing): ok=%v err=%v", ok, err)
	}
	if err := kv.Set(ctx, "a.key", `{"x":1}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Set(ctx, "a.key", `{"x":2}`); err != nil {
		t.Fatalf("Set (overwrite): %v", err)
	}
	v, ok, err := kv.Get(ctx, "a.key")
	if err != nil || !ok || v != `{"x":2}` {
		t.Fatalf("Get: v=%q ok=%v err=%v", v, ok, err)
	}
	if err := kv.Remove(ctx, "a.key"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := kv.Remove(ctx, "a.key"); err != nil {
		t.Fatalf("Remove (absent): %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "a.key"); ok {
		t.Fatalf("expected key to be gone")
	}
}

func TestMemoryKV(t *testing.T) {
	t.Parallel()
	exerciseKV(t, NewMemoryKV())
}

func TestFileKV(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "nested")
	kv := &FileKV{Dir: dir}
	exerciseKV(t, kv)

	if err := kv.Set(context.Background(), "flowboard.demo.v2", "{}"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "flowboard.demo.v2.json" {
		t.Fatalf("expected a single value file, got %v", entries)
	}
}

func TestFileKV_RejectsPathKeys(t *testing.T) {
	t.Parallel()
	kv := &FileKV{Dir: t.TempDir()}
	for _, key := range []string{"", "../escape", ".hidden", "a/b"} {
		if err := kv.Set(context.Background(), key, "x"); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

func TestSQLiteKV(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	kv, err := OpenSQLiteKV(context.Background(), dir)
	if err != nil {
		t.Fatalf("OpenSQLiteKV: %v", err)
	}
	exerciseKV(t, kv)

	if err := kv.Set(context.Background(), "k", "persisted"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenSQLiteKV(context.Background(), dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if v, ok, err := reopened.Get(context.Background(), "k"); err != nil || !ok || v != "persisted" {
		t.Fatalf("after reopen: v=%q ok=%v err=%v", v, ok, err)
	}
}

func TestRedisKV(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	kv := NewRedisKV(client, "test:")
	defer kv.Close()
	exerciseKV(t, kv)

	if err := kv.Set(context.Background(), "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, _ := mr.Get("test:k"); got != "v" {
		t.Fatalf("expected prefixed key in redis, got %q", got)
	}
}

func TestOpenRedisKV_ConnectionString(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	for _, conn := range []string{"redis://" + mr.Addr() + "/0", mr.Addr() + ",ssl=false"} {
		kv, err := OpenRedisKV(context.Background(), conn, "")
		if err != nil {
			t.Fatalf("OpenRedisKV(%q): %v", conn, err)
		}
		_ = kv.Close()
	}
	if _, err := OpenRedisKV(context.Background(), "  ", ""); err == nil {
		t.Fatalf("expected error for blank connection string")
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	for _, kind := range []BackendKind{BackendFile, BackendSQLite, BackendMemory} {
		b, err := Open(ctx, Options{Kind: kind, Dir: dir})
		if err != nil {
			t.Fatalf("Open(%s): %v", kind, err)
		}
		exerciseKV(t, b)
		_ = b.Close()
	}
	if _, err := ParseBackendKind("mongo"); err == nil {
		t.Fatalf("expected unknown backend error")
	}
	if k, err := ParseBackendKind(" SQLite "); err != nil || k != BackendSQLite {
		t.Fatalf("ParseBackendKind: %v %v", k, err)
	}
}
