package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// KV is the durable string key-value primitive the board state is persisted through.
type KV interface {
	// Get returns ok=false (and no error) when key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove is a no-op for absent keys.
	Remove(ctx context.Context, key string) error
}

// Backend is a KV that owns resources.
type Backend interface {
	KV
	Close() error
}

type BackendKind string

const (
	BackendFile   BackendKind = "file"
	BackendSQLite BackendKind = "sqlite"
	BackendRedis  BackendKind = "redis"
	BackendMemory BackendKind = "memory"
)

func ParseBackendKind(s string) (BackendKind, error) {
	switch BackendKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackendFile:
		return BackendFile, nil
	case BackendSQLite:
		return BackendSQLite, nil
	case BackendRedis:
		return BackendRedis, nil
	case BackendMemory:
		return BackendMemory, nil
	default:
		return "", fmt.Errorf("unknown storage backend %q (expected file|sqlite|redis|memory)", s)
	}
}

type Options struct {
	Kind BackendKind
	// Dir holds the file and sqlite backends.
	Dir         string
	RedisURL    string
	RedisPrefix string
}

// Open builds the configured backend.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Kind {
	case "", BackendFile:
		if strings.TrimSpace(opts.Dir) == "" {
			return nil, fmt.Errorf("file backend: missing dir")
		}
		return &FileKV{Dir: opts.Dir}, nil
	case BackendSQLite:
		return OpenSQLiteKV(ctx, opts.Dir)
	case BackendRedis:
		return OpenRedisKV(ctx, opts.RedisURL, opts.RedisPrefix)
	case BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Kind)
	}
}

// MemoryKV keeps values in process memory.
type MemoryKV struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: map[string]string{}}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.m[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m[key] = value
	return nil
}

func (m *MemoryKV) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.m, key)
	return nil
}

func (m *MemoryKV) Close() error { return nil }
