// Package cache is the entity cache and query layer. It holds a derived,
// invalidatable projection of server state keyed by structured query
// keys. Invalidation-driven refetch is the sole synchronization
// mechanism after mutations; there is no server push.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// FetchFunc loads fresh data for a key through the gateway.
type FetchFunc func(ctx context.Context) (any, error)

// flight is one in-progress fetch, shared by every concurrent caller of
// the same key.
type flight struct {
	done chan struct{}
	err  error
}

type entry struct {
	key    Key
	data   any
	valid  bool
	stale  bool
	gen    uint64
	flight *flight
}

// Store is the keyed cache. Safe for concurrent use; fetches run on the
// caller's goroutine while the lock is released.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	notify  func(Prefix)
	logger  *slog.Logger
}

// New creates a cache store. notify is called (never under the lock)
// after an invalidation so mounted consumers can refetch; it may be nil.
func New(notify func(Prefix), logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		entries: make(map[string]*entry),
		notify:  notify,
		logger:  logger,
	}
}

// Query returns cached data for the key if fresh, otherwise fetches
// through fetch and stores the result. Concurrent callers of the same
// key share one in-flight fetch. A result overtaken by an invalidation
// while in flight is not stored as fresh; the query fetches again. A
// disabled key (incomplete scope) returns (nil, nil) without fetching.
func (s *Store) Query(ctx context.Context, key Key, fetch FetchFunc) (any, error) {
	if !key.Enabled() {
		return nil, nil
	}

	for {
		s.mu.Lock()
		e := s.ensure(key)
		if e.valid && !e.stale {
			data := e.data
			s.mu.Unlock()
			return data, nil
		}
		if e.flight != nil {
			fl := e.flight
			s.mu.Unlock()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-fl.done:
			}
			if fl.err != nil {
				return nil, fl.err
			}
			// re-check the slot: an invalidation may have landed while
			// the shared fetch was in flight
			continue
		}
		fl := &flight{done: make(chan struct{})}
		e.flight = fl
		gen := e.gen
		s.mu.Unlock()

		data, err := fetch(ctx)

		s.mu.Lock()
		fl.err = err
		close(fl.done)
		if e.flight == fl {
			e.flight = nil
		}
		// an Invalidate or Seed during the fetch bumps gen; this result
		// predates it and must not be stored as fresh
		superseded := e.gen != gen
		if err == nil && !superseded {
			e.data = data
			e.valid = true
			e.stale = false
		}
		s.mu.Unlock()

		if err != nil {
			s.logger.Debug("fetch failed", "key", key.id(), "error", err)
			return data, err
		}
		if superseded {
			continue
		}
		return data, nil
	}
}

// Peek returns the cached data for a key without fetching. Stale data is
// still returned: it is the last authoritative state and stays on screen
// until a refetch lands.
func (s *Store) Peek(key Key) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key.id()]
	if !ok || !e.valid {
		return nil, false
	}
	return e.data, true
}

// Seed writes a server-returned entity directly into the key's slot,
// marking it fresh. This is the direct-write reconciliation path after a
// mutation response, distinct from Invalidate's refetch path.
func (s *Store) Seed(key Key, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.ensure(key)
	e.data = data
	e.valid = true
	e.stale = false
	e.gen++
}

// Invalidate marks every entry under the prefix stale and notifies the
// registered listener. The next Query for a stale key refetches.
func (s *Store) Invalidate(prefix Prefix) {
	s.mu.Lock()
	n := 0
	for _, e := range s.entries {
		if prefix.Matches(e.key) {
			e.stale = true
			e.gen++
			n++
		}
	}
	notify := s.notify
	s.mu.Unlock()

	s.logger.Debug("invalidated", "resource", string(prefix.Resource), "entries", n)
	if notify != nil {
		notify(prefix)
	}
}

// Evict drops every entry under the prefix. Used when a scope is torn
// down (workspace switch, logout).
func (s *Store) Evict(prefix Prefix) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if prefix.Matches(e.key) {
			delete(s.entries, id)
		}
	}
}

// Clear drops everything. Called on session teardown.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry)
}

func (s *Store) ensure(key Key) *entry {
	id := key.id()
	e, ok := s.entries[id]
	if !ok {
		e = &entry{key: key}
		s.entries[id] = e
	}
	return e
}

// Fetch is the typed convenience wrapper over Query. A disabled key
// yields the zero value and no error.
func Fetch[T any](ctx context.Context, s *Store, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	data, err := s.Query(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil || data == nil {
		return zero, err
	}
	v, ok := data.(T)
	if !ok {
		return zero, fmt.Errorf("cache: slot %q holds %T", key.id(), data)
	}
	return v, nil
}
