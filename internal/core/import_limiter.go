package core

// import_limiter.go bounds how many imports write to storage at once.
//
// Each import holds one slot of a buffered-channel semaphore for the duration
// of its bulk insert. A request that cannot get a slot within maxWait fails
// with ErrTooManyImports so the HTTP layer can answer 429 instead of queueing
// without bound. Drain blocks shutdown until in-flight imports finish.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyImports is returned when every import slot stays busy for the
// whole wait period.
var ErrTooManyImports = errors.New("too many imports in progress, please try again later")

// Limiter defaults.
const (
	DefaultMaxConcurrentImports = 4
	DefaultImportMaxWait        = 15 * time.Second
)

// ImportLimiter is a counting semaphore for imports.
type ImportLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewImportLimiter allows maxConcurrent simultaneous imports. Non-positive
// arguments fall back to the defaults.
func NewImportLimiter(maxConcurrent int, maxWait time.Duration) *ImportLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentImports
	}
	if maxWait <= 0 {
		maxWait = DefaultImportMaxWait
	}
	return &ImportLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting up to maxWait. The caller must Release a
// slot it acquired.
func (l *ImportLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyImports
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *ImportLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return true
	default:
		return false
	}
}

// Release frees a slot taken by Acquire or TryAcquire.
func (l *ImportLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// ActiveCount returns the number of imports holding a slot.
func (l *ImportLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// Available returns the number of free slots.
func (l *ImportLimiter) Available() int {
	return cap(l.slots) - len(l.slots)
}

// Drain blocks until no import holds a slot or ctx ends.
func (l *ImportLimiter) Drain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for l.ActiveCount() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// LimiterStatus is a snapshot for health endpoints.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state.
func (l *ImportLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: cap(l.slots),
	}
}
