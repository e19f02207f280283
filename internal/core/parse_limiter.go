package core

// parse_limiter.go bounds how many uploaded files are read and tokenized at
// once. A parse holds the whole file text and its data matrix in memory, so
// slots are scarce; callers that cannot get one within maxWait fail with
// ErrTooManyUploads.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyUploads is returned when every parse slot stays busy for the
// whole wait period.
var ErrTooManyUploads = errors.New("too many uploads in progress, please try again later")

const (
	DefaultMaxConcurrentParses = 5
	DefaultMaxParseWait        = 30 * time.Second
)

// ParseLimiter is a counting semaphore around file parsing.
type ParseLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.RWMutex
	active int
}

// NewParseLimiter allows at most maxConcurrent parses at a time. Zero or
// negative arguments fall back to the defaults.
func NewParseLimiter(maxConcurrent int, maxWait time.Duration) *ParseLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentParses
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxParseWait
	}

	return &ParseLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting up to the limiter's maxWait. The caller
// must Release the slot when its parse finishes.
func (l *ParseLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.track(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyUploads
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *ParseLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.track(1)
		return true
	default:
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *ParseLimiter) Release() {
	l.track(-1)
	<-l.slots
}

func (l *ParseLimiter) track(delta int) {
	l.mu.Lock()
	l.active += delta
	l.mu.Unlock()
}

// ActiveCount returns the number of parses in flight.
func (l *ParseLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// Available returns the number of free slots.
func (l *ParseLimiter) Available() int {
	return cap(l.slots) - len(l.slots)
}

// WaitForDrain blocks until no parse is in flight or ctx ends. Used on
// shutdown.
func (l *ParseLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ParseLimiterStatus is a point-in-time view of the limiter.
type ParseLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"maxConcurrent"`
}

func (l *ParseLimiter) Status() ParseLimiterStatus {
	return ParseLimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: cap(l.slots),
	}
}
