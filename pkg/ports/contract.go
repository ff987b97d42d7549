package ports

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/agentwizard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		session := domain.NewWizardSession(sessionID, time.Now())
		session.Plan = domain.NewPlan("Agent for x", "x")

		require.NoError(t, store.Save(ctx, session), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sessionID, loaded.SessionID)
		assert.Equal(t, domain.StateInitial, loaded.State)
		require.NotNil(t, loaded.Plan)
		assert.Equal(t, session.Plan.ID, loaded.Plan.ID)
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.State = domain.StateFailed

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateInitial, again.State, "mutating a loaded session must not change the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewWizardSession(sessionID, time.Now())))

		existed, err := store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")
		assert.True(t, existed)

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		existed, err = store.Delete(ctx, sessionID)
		require.NoError(t, err)
		assert.False(t, existed, "second Delete should report absence")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, domain.NewWizardSession(id1, time.Now()))
		_ = store.Save(ctx, domain.NewWizardSession(id2, time.Now()))

		defer func() {
			_, _ = store.Delete(ctx, id1)
			_, _ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})

	t.Run("Concurrent access", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := fmt.Sprintf("%s-c%d", sessionID, i)
				assert.NoError(t, store.Save(ctx, domain.NewWizardSession(id, time.Now())))
				_, err := store.Load(ctx, id)
				assert.NoError(t, err)
				_, err = store.Delete(ctx, id)
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()
	})
}
