package service

import (
	"context"
	"sync"
	"time"

	appErrors "github.com/schoolware/result-portal-api/pkg/errors"
)

// CohortLocker serialises recomputation per cohort key so concurrent
// writes to the same (subject, class, term) or (class, term) scope never
// interleave. Waiters give up after the configured timeout instead of
// queueing unboundedly.
type CohortLocker struct {
	mu      sync.Mutex
	locks   map[string]chan struct{}
	timeout time.Duration
}

// NewCohortLocker creates a locker with the given wait timeout.
func NewCohortLocker(timeout time.Duration) *CohortLocker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CohortLocker{
		locks:   make(map[string]chan struct{}),
		timeout: timeout,
	}
}

// Acquire takes the lock for key, blocking up to the timeout. It returns
// a release function on success and ErrConcurrency when the cohort stays
// busy past the deadline.
func (l *CohortLocker) Acquire(ctx context.Context, key string) (func(), error) {
	ch := l.channel(key)

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, appErrors.Wrap(ctx.Err(), appErrors.ErrConcurrency.Code, appErrors.ErrConcurrency.Status, appErrors.ErrConcurrency.Message)
	case <-timer.C:
		return nil, appErrors.ErrConcurrency
	}
}

func (l *CohortLocker) channel(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	return ch
}
