// Package prefs is the best-effort preference capability: string values
// keyed per session, where a failing backend is invisible to the caller.
// Failures are swallowed by contract so the core keeps functioning without
// persisted preferences.
package prefs

import (
	"context"
	"log/slog"
	"sync"

	"basketwise/internal/platform/redis"
)

// Well-known preference keys.
const (
	KeySelectedRegion = "selected_region"
	KeySavedProducts  = "saved_products"
)

// Store is the capability interface. Get reports absence via ok=false;
// Set never reports failure to the caller.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

// Memory is the in-process implementation, also the default when redis is
// not configured.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory preference store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *Memory) Set(_ context.Context, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Failing drops every write and reports every read absent. Tests inject it
// to assert the core keeps functioning without working persistence.
type Failing struct{}

func (Failing) Get(context.Context, string) (string, bool) { return "", false }
func (Failing) Set(context.Context, string, string)        {}

// Redis persists preferences in redis. Errors are logged at debug and
// otherwise swallowed.
type Redis struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedis creates a redis-backed preference store.
func NewRedis(client *redis.Client, logger *slog.Logger) *Redis {
	return &Redis{client: client, logger: logger}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool) {
	raw, err := r.client.GetCached(ctx, "prefs:"+key)
	if err != nil {
		r.logger.DebugContext(ctx, "preference read failed", "key", key, "error", err.Error())
		return "", false
	}
	if raw == nil {
		return "", false
	}
	return string(raw), true
}

func (r *Redis) Set(ctx context.Context, key, value string) {
	if err := r.client.SetCached(ctx, "prefs:"+key, []byte(value), 0); err != nil {
		r.logger.DebugContext(ctx, "preference write failed", "key", key, "error", err.Error())
	}
}
