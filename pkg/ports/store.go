package ports

import (
	"context"

	"github.com/aretw0/agentwizard/pkg/domain"
)

// SessionStore holds wizard sessions by key.
// Implementations must be safe for concurrent use without external locking.
type SessionStore interface {
	// Save stores the session under its SessionID, replacing any previous value.
	Save(ctx context.Context, session *domain.WizardSession) error

	// Load retrieves the session for a given ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.WizardSession, error)

	// Delete removes the session and reports whether it existed.
	Delete(ctx context.Context, sessionID string) (bool, error)

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
