package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/agentwizard/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocks_Serializes(t *testing.T) {
	locks := session.NewLocks()
	ctx := context.Background()

	// Unsynchronized read-modify-write; only the lock keeps it consistent.
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locks.WithLock(ctx, "race-test", func(ctx context.Context) error {
				v := counter
				time.Sleep(time.Millisecond)
				counter = v + 1
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, locks.Len())
}

func TestLocks_IndependentKeys(t *testing.T) {
	locks := session.NewLocks()
	ctx := context.Background()

	entered := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = locks.WithLock(ctx, "a", func(ctx context.Context) error {
			close(entered)
			<-done
			return nil
		})
	}()
	<-entered

	// "b" must not wait for "a".
	err := locks.WithLock(ctx, "b", func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	close(done)
}

func TestLocks_NoLeak(t *testing.T) {
	locks := session.NewLocks()
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_ = locks.WithLock(ctx, sid, func(ctx context.Context) error { return nil })
	}

	assert.Equal(t, 0, locks.Len())
}

func TestLocks_ContextCanceledWhileWaiting(t *testing.T) {
	locks := session.NewLocks()

	held := make(chan struct{})
	releaseHeld := make(chan struct{})
	go func() {
		_ = locks.WithLock(context.Background(), "s", func(ctx context.Context) error {
			close(held)
			<-releaseHeld
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ran := false
	err := locks.WithLock(ctx, "s", func(ctx context.Context) error {
		ran = true
		return nil
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, ran)
	close(releaseHeld)
}

func TestLocks_PropagatesError(t *testing.T) {
	locks := session.NewLocks()
	boom := errors.New("boom")

	err := locks.WithLock(context.Background(), "s", func(ctx context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, locks.Len())
}
