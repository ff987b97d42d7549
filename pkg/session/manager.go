package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/agentwizard/internal/logging"
	"github.com/aretw0/agentwizard/pkg/ports"
)

// lockEntry holds the lock slot and the reference count.
type lockEntry struct {
	slot chan struct{}
	refs int
}

// Locks hands out one lock per session key.
// It uses Reference Counting to garbage collect unused locks.
type Locks struct {
	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	logger *slog.Logger
}

var _ ports.SessionLocker = (*Locks)(nil)

// Option configures Locks.
type Option func(*Locks)

// WithLogger configures a logger for lock contention events.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Locks) {
		l.logger = logger
	}
}

// NewLocks creates an empty lock table.
func NewLocks(opts ...Option) *Locks {
	l := &Locks{
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST call release(sessionID) when done with the entry.
func (l *Locks) acquire(sessionID string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.locks[sessionID]
	if !exists {
		entry = &lockEntry{slot: make(chan struct{}, 1)}
		l.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (l *Locks) release(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(l.locks, sessionID)
	}
}

// Len returns the number of keys with a live lock entry.
func (l *Locks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// WithLock executes fn while holding the lock for the session.
func (l *Locks) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := l.acquire(sessionID)
	defer l.release(sessionID)

	select {
	case entry.slot <- struct{}{}:
	default:
		l.logger.Debug("Waiting for session lock", "session_id", sessionID)
		select {
		case entry.slot <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	defer func() { <-entry.slot }()

	return fn(ctx)
}
