package core

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyTransfers is returned when no transfer slot frees up within the
// limiter's wait time.
var ErrTooManyTransfers = errors.New("too many concurrent transfers, please try again later")

const (
	DefaultMaxConcurrentTransfers = 4
	DefaultMaxWaitTime            = 30 * time.Second
)

// TransferLimiter bounds how many transfers run at once. Callers wait up to
// maxWait for a slot; WaitForDrain holds every slot, so nothing new starts
// while the server shuts down.
type TransferLimiter struct {
	sem     *semaphore.Weighted
	max     int64
	maxWait time.Duration

	active  atomic.Int64
	waiting atomic.Int64
}

// NewTransferLimiter allows maxConcurrent transfers; values <= 0 use the
// defaults.
func NewTransferLimiter(maxConcurrent int, maxWait time.Duration) *TransferLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentTransfers
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &TransferLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		max:     int64(maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting at most maxWait. A cancelled ctx returns
// ctx.Err(); an expired wait returns ErrTooManyTransfers. Every successful
// Acquire must be paired with Release.
func (l *TransferLimiter) Acquire(ctx context.Context) error {
	if l.TryAcquire() {
		return nil
	}

	l.waiting.Add(1)
	defer l.waiting.Add(-1)

	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyTransfers
	}
	l.active.Add(1)
	return nil
}

// TryAcquire takes a slot only if one is free right now.
func (l *TransferLimiter) TryAcquire() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.active.Add(1)
	return true
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *TransferLimiter) Release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// Do runs fn while holding a slot.
func (l *TransferLimiter) Do(ctx context.Context, fn func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}

// ActiveCount returns the number of transfers holding a slot.
func (l *TransferLimiter) ActiveCount() int { return int(l.active.Load()) }

// MaxConcurrent returns the slot count.
func (l *TransferLimiter) MaxConcurrent() int { return int(l.max) }

// Available returns the number of free slots.
func (l *TransferLimiter) Available() int {
	n := l.max - l.active.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}

// WaitForDrain blocks until every running transfer has released its slot or
// ctx is done. It holds all slots while waiting and releases them on return,
// so transfers queued behind it start only after the drain.
func (l *TransferLimiter) WaitForDrain(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, l.max); err != nil {
		return err
	}
	l.sem.Release(l.max)
	return nil
}

// TransferLimiterStatus is a snapshot for the status endpoint.
type TransferLimiterStatus struct {
	Active        int `json:"active"`
	Waiting       int `json:"waiting"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state.
func (l *TransferLimiter) Status() TransferLimiterStatus {
	return TransferLimiterStatus{
		Active:        l.ActiveCount(),
		Waiting:       int(l.waiting.Load()),
		Available:     l.Available(),
		MaxConcurrent: l.MaxConcurrent(),
	}
}
