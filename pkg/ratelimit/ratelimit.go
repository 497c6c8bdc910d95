// Package ratelimit implements a fixed-window request throttle keyed by
// caller identity and action category. State lives behind a small Store
// interface so the in-memory map used for single-process deployments can be
// swapped for a shared store without changing call sites. Limits are not
// persisted; a restart clears them. This is a coarse throttle, not a
// security boundary.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Category identifies an action category with its own window configuration.
type Category string

const (
	CategoryLinkGeneration Category = "link_generation"
	CategoryVoting         Category = "voting"
	CategoryAPI            Category = "api"
)

// Limit configures one category's fixed window.
type Limit struct {
	Window      time.Duration
	MaxRequests int
}

// Config maps categories to their limits.
type Config map[Category]Limit

// DefaultConfig returns the standard per-category limits.
func DefaultConfig() Config {
	return Config{
		CategoryLinkGeneration: {Window: time.Minute, MaxRequests: 5},
		CategoryVoting:         {Window: time.Minute, MaxRequests: 10},
		CategoryAPI:            {Window: time.Minute, MaxRequests: 30},
	}
}

// Window is the mutable state of one (category, caller) pair.
type Window struct {
	Count   int
	ResetAt time.Time
}

// Store persists rate-limit windows. Implementations do not need to be
// atomic; the Limiter serializes access.
type Store interface {
	Get(key string) (Window, bool)
	Put(key string, w Window)
	Delete(key string)
	// Keys returns all stored keys, for sweeping.
	Keys() []string
}

// MemoryStore is the in-memory Store used for single-process deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	windows map[string]Window
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]Window)}
}

func (s *MemoryStore) Get(key string) (Window, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.windows[key]
	return w, ok
}

func (s *MemoryStore) Put(key string, w Window) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows[key] = w
}

func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
}

func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.windows))
	for k := range s.windows {
		keys = append(keys, k)
	}
	return keys
}

// Result is the outcome of a limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter checks requests against per-category fixed windows.
type Limiter struct {
	mu    sync.Mutex
	cfg   Config
	store Store
	now   func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New creates a Limiter over the given config and store.
func New(cfg Config, store Store, opts ...Option) *Limiter {
	l := &Limiter{
		cfg:   cfg,
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check records one request for (category, callerKey) and reports whether it
// is allowed. The first request in a window (or after expiry) opens a fresh
// window with count 1. Requests beyond the category maximum are rejected
// without resetting the window early.
func (l *Limiter) Check(callerKey string, category Category) Result {
	limit, ok := l.cfg[category]
	if !ok {
		limit = l.cfg[CategoryAPI]
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	key := string(category) + ":" + callerKey

	w, exists := l.store.Get(key)
	if !exists || now.After(w.ResetAt) {
		w = Window{Count: 1, ResetAt: now.Add(limit.Window)}
		l.store.Put(key, w)
		return Result{
			Allowed:   true,
			Remaining: limit.MaxRequests - 1,
			ResetAt:   w.ResetAt,
		}
	}

	w.Count++
	l.store.Put(key, w)

	if w.Count > limit.MaxRequests {
		return Result{
			Allowed:   false,
			Remaining: 0,
			ResetAt:   w.ResetAt,
		}
	}

	return Result{
		Allowed:   true,
		Remaining: limit.MaxRequests - w.Count,
		ResetAt:   w.ResetAt,
	}
}

// Sweep purges every window whose reset time has passed, to bound memory.
func (l *Limiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for _, key := range l.store.Keys() {
		if w, ok := l.store.Get(key); ok && w.ResetAt.Before(now) {
			l.store.Delete(key)
		}
	}
}

// StartSweeper runs Sweep on the given interval until ctx is cancelled.
func (l *Limiter) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Sweep()
			}
		}
	}()
}
