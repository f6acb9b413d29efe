// Package interceptor implements ordered interceptor pipelines with a
// rejection and recovery path.
//
// A Manager holds entries in registration order. Ejected entries become
// tombstones: they are skipped but keep their slot, so ids are never reused
// and an in-flight walk's snapshot stays valid.
//
//	id := m.Use(func(ctx context.Context, cfg *core.Config) (*core.Config, error) {
//	    cfg = cfg.Clone()
//	    cfg.Headers.Set("Authorization", "Bearer "+token)
//	    return cfg, nil
//	}, nil)
//	defer m.Eject(id)
package interceptor

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kbukum/anyhttp/core"
)

// Fulfilled transforms a value on the forward path.
type Fulfilled[T any] func(ctx context.Context, v T) (T, error)

// Rejected handles a failure. Returning a nil error recovers with the
// returned value; returning an error passes the failure on.
type Rejected[T any] func(ctx context.Context, err *core.Error) (T, error)

// Normalizer converts a raw handler error into a canonical error.
type Normalizer func(err error) *core.Error

// Option configures a single entry.
type Option[T any] func(*entry[T])

// RunWhen skips the entry's fulfilled handler when pred returns false.
func RunWhen[T any](pred func(T) bool) Option[T] {
	return func(e *entry[T]) { e.runWhen = pred }
}

type entry[T any] struct {
	id        int
	fulfilled Fulfilled[T]
	rejected  Rejected[T]
	runWhen   func(T) bool
	ejected   atomic.Bool
}

// Manager is an ordered interceptor pipeline. It is safe for concurrent use.
type Manager[T any] struct {
	mu      sync.Mutex
	entries []*entry[T]
	live    int
}

// NewManager creates an empty Manager.
func NewManager[T any]() *Manager[T] {
	return &Manager[T]{}
}

// Use registers a handler pair and returns its id. Either handler may be nil.
func (m *Manager[T]) Use(onFulfilled Fulfilled[T], onRejected Rejected[T], opts ...Option[T]) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := &entry[T]{id: len(m.entries), fulfilled: onFulfilled, rejected: onRejected}
	for _, opt := range opts {
		opt(e)
	}
	m.entries = append(m.entries, e)
	m.live++
	return e.id
}

// Eject tombstones the entry with the given id. It reports whether a live
// entry was ejected.
func (m *Manager[T]) Eject(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id < 0 || id >= len(m.entries) {
		return false
	}
	if m.entries[id].ejected.Swap(true) {
		return false
	}
	m.live--
	return true
}

// Clear tombstones every entry. Ids already handed out stay retired.
func (m *Manager[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries {
		e.ejected.Store(true)
	}
	m.live = 0
}

// Len returns the number of live entries.
func (m *Manager[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live
}

// Chain is a frozen view of a Manager's entries. Entries registered after
// the snapshot are not visited; ejections still apply.
type Chain[T any] struct {
	entries []*entry[T]
}

// Snapshot freezes the entries registered so far.
func (m *Manager[T]) Snapshot() Chain[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.entries)
	return Chain[T]{entries: m.entries[:n:n]}
}

// Run walks a fresh snapshot of the manager. See Chain.Run.
func (m *Manager[T]) Run(ctx context.Context, v T, err error, normalize Normalizer) (T, error) {
	return m.Snapshot().Run(ctx, v, err, normalize)
}

// Run walks the live entries in registration order starting from (v, err).
//
// While there is no error each fulfilled handler is applied. Once a stage
// fails, the following entries' rejected handlers are offered the canonical
// error in order; the first that returns a value recovers and the forward
// walk resumes at the next entry. A nil normalize uses core.From without
// extra context.
//
// ctx is checked before every stage. Once it is done the remaining entries
// only see the cancellation on their rejected path, and the walk never ends
// in a success.
func (c Chain[T]) Run(ctx context.Context, v T, err error, normalize Normalizer) (T, error) {
	if normalize == nil {
		normalize = func(err error) *core.Error { return core.From(err, "", nil, nil, nil) }
	}

	var cur *core.Error
	if err != nil {
		cur = normalize(err)
	}

	for _, e := range c.entries {
		if e.ejected.Load() {
			continue
		}
		cur = interrupted(ctx, cur, normalize)
		if cur == nil {
			if e.fulfilled == nil || (e.runWhen != nil && !e.runWhen(v)) {
				continue
			}
			next, ferr := e.fulfilled(ctx, v)
			if ferr != nil {
				cur = normalize(ferr)
				continue
			}
			v = next
			continue
		}
		if e.rejected == nil {
			continue
		}
		recovered, rerr := e.rejected(ctx, cur)
		if rerr != nil {
			cur = normalize(rerr)
			continue
		}
		v, cur = recovered, nil
	}

	if cur = interrupted(ctx, cur, normalize); cur != nil {
		var zero T
		return zero, cur
	}
	return v, nil
}

// interrupted replaces cur with the context's cancellation once ctx is done,
// unless cur already reports a cancellation or timeout.
func interrupted(ctx context.Context, cur *core.Error, normalize Normalizer) *core.Error {
	if ctx == nil || ctx.Err() == nil {
		return cur
	}
	if cur != nil && (cur.Code == core.CodeCanceled || cur.Code == core.CodeTimeout) {
		return cur
	}
	return normalize(core.ContextError(ctx, nil, nil))
}
