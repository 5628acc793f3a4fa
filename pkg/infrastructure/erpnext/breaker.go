package erpnext

import (
	"log/slog"
	"sync"
	"time"
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerClosed:
		return "closed"
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// circuitBreaker stops requests to ERPNext after repeated failures and
// probes for recovery once the cooldown has passed.
type circuitBreaker struct {
	mu          sync.Mutex
	threshold   int
	cooldown    time.Duration
	failures    int
	lastFailure time.Time
	state       breakerState
}

func newCircuitBreaker(threshold int, cooldown time.Duration) *circuitBreaker {
	return &circuitBreaker{threshold: threshold, cooldown: cooldown}
}

// allow reports whether a request may proceed. Moves the breaker to
// half-open once the cooldown since the last failure has elapsed.
func (b *circuitBreaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != breakerOpen {
		return true
	}
	if time.Since(b.lastFailure) > b.cooldown {
		b.state = breakerHalfOpen
		b.failures = 0
		slog.Info("circuit breaker half-open, attempting recovery")
		return true
	}
	return false
}

func (b *circuitBreaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.state = breakerClosed
}

func (b *circuitBreaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.lastFailure = time.Now()
	if b.failures >= b.threshold {
		b.state = breakerOpen
		slog.Warn("circuit breaker opened", "failures", b.failures)
	}
}

// Status reports the breaker state for monitoring
func (b *circuitBreaker) Status() (string, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.String(), b.failures
}
