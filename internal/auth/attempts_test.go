package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryAttemptStore struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
}

func newMemoryAttemptStore() *memoryAttemptStore {
	return &memoryAttemptStore{attempts: make(map[string][]time.Time)}
}

func (s *memoryAttemptStore) InsertLoginAttempt(_ context.Context, email, _ string, attemptedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[email] = append(s.attempts[email], attemptedAt)
	return nil
}

func (s *memoryAttemptStore) CountLoginAttempts(_ context.Context, email string, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, at := range s.attempts[email] {
		if !at.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *memoryAttemptStore) DeleteLoginAttempts(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, email)
	return nil
}

func TestTrackerLocksAtThreshold(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(newMemoryAttemptStore(), 15*time.Minute, 5)

	for i := 0; i < 4; i++ {
		locked, err := tracker.RecordFailure(ctx, "a@example.com", "10.0.0.1")
		require.NoError(t, err)
		require.False(t, locked, "attempt %d should not lock", i+1)
	}

	locked, err := tracker.RecordFailure(ctx, "a@example.com", "10.0.0.1")
	require.NoError(t, err)
	require.True(t, locked, "fifth failure should lock")

	locked, err = tracker.IsLocked(ctx, "a@example.com")
	require.NoError(t, err)
	require.True(t, locked)

	// A different email is unaffected.
	locked, err = tracker.IsLocked(ctx, "b@example.com")
	require.NoError(t, err)
	require.False(t, locked)
}

func TestTrackerSuccessPurges(t *testing.T) {
	ctx := context.Background()
	store := newMemoryAttemptStore()
	tracker := NewTracker(store, 15*time.Minute, 5)

	for i := 0; i < 5; i++ {
		_, err := tracker.RecordFailure(ctx, "a@example.com", "10.0.0.1")
		require.NoError(t, err)
	}
	locked, err := tracker.IsLocked(ctx, "a@example.com")
	require.NoError(t, err)
	require.True(t, locked)

	require.NoError(t, tracker.RecordSuccess(ctx, "a@example.com"))

	locked, err = tracker.IsLocked(ctx, "a@example.com")
	require.NoError(t, err)
	require.False(t, locked)

	count, err := store.CountLoginAttempts(ctx, "a@example.com", time.Time{})
	require.NoError(t, err)
	require.Zero(t, count, "records should be gone, not just out of window")
}

func TestTrackerWindowDecay(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(newMemoryAttemptStore(), 15*time.Minute, 5)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		_, err := tracker.RecordFailure(ctx, "a@example.com", "10.0.0.1")
		require.NoError(t, err)
	}
	locked, err := tracker.IsLocked(ctx, "a@example.com")
	require.NoError(t, err)
	require.True(t, locked)

	// The window slides past the failures and the lock self-heals.
	now = now.Add(16 * time.Minute)
	locked, err = tracker.IsLocked(ctx, "a@example.com")
	require.NoError(t, err)
	require.False(t, locked)

	// One fresh failure does not re-lock.
	locked, err = tracker.RecordFailure(ctx, "a@example.com", "10.0.0.1")
	require.NoError(t, err)
	require.False(t, locked)
}
