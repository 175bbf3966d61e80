package auth

import (
	"context"
	"time"
)

// AttemptStore is the persistence capability the tracker needs. The pgx
// repository implements it in production; tests use an in-memory fake.
type AttemptStore interface {
	InsertLoginAttempt(ctx context.Context, email, ip string, attemptedAt time.Time) error
	CountLoginAttempts(ctx context.Context, email string, since time.Time) (int64, error)
	DeleteLoginAttempts(ctx context.Context, email string) error
}

// Tracker counts failed logins per email inside a trailing window. Lock
// state is always computed from the stored records, never cached, so it
// decays on its own once the window slides past the oldest failures.
type Tracker struct {
	store     AttemptStore
	window    time.Duration
	threshold int
	now       func() time.Time
}

func NewTracker(store AttemptStore, window time.Duration, threshold int) *Tracker {
	return &Tracker{
		store:     store,
		window:    window,
		threshold: threshold,
		now:       time.Now,
	}
}

// RecordFailure appends a failure record and reports whether the email is
// now locked. The check-then-record sequence is not atomic against
// concurrent attempts; one extra attempt past the threshold is tolerated.
func (t *Tracker) RecordFailure(ctx context.Context, email, ip string) (bool, error) {
	now := t.now().UTC()
	if err := t.store.InsertLoginAttempt(ctx, email, ip, now); err != nil {
		return false, err
	}
	count, err := t.store.CountLoginAttempts(ctx, email, now.Add(-t.window))
	if err != nil {
		return false, err
	}
	return count >= int64(t.threshold), nil
}

// RecordSuccess purges every record for the email so one early mistake is
// not held against the user after a later successful login.
func (t *Tracker) RecordSuccess(ctx context.Context, email string) error {
	return t.store.DeleteLoginAttempts(ctx, email)
}

func (t *Tracker) IsLocked(ctx context.Context, email string) (bool, error) {
	count, err := t.store.CountLoginAttempts(ctx, email, t.now().UTC().Add(-t.window))
	if err != nil {
		return false, err
	}
	return count >= int64(t.threshold), nil
}
