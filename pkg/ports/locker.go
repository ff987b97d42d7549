package ports

import "context"

// SessionLocker serializes operations on one session key.
type SessionLocker interface {
	// WithLock runs fn while holding the lock for sessionID. It returns the
	// context error if ctx ends before the lock is acquired.
	WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error
}
