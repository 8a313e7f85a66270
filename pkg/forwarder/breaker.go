package forwarder

import (
	"sync"
	"time"
)

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

// circuitBreaker stops hammering a dead endpoint. It opens after a run of
// consecutive failures, rejects requests while open, and lets a single probe
// request through once the probe delay has elapsed. The probe's outcome
// decides between closing again and re-opening.
type circuitBreaker struct {
	mu         sync.Mutex
	state      breakerState
	failures   int
	threshold  int
	probeDelay time.Duration
	openedAt   time.Time
	probing    bool
	now        func() time.Time
}

func newCircuitBreaker(threshold int, probeDelay time.Duration) *circuitBreaker {
	return &circuitBreaker{
		threshold:  threshold,
		probeDelay: probeDelay,
		now:        time.Now,
	}
}

// Allow reports whether a request may proceed. While open it returns
// ErrCircuitOpen until the probe delay has elapsed; then exactly one caller
// is admitted as the recovery probe.
func (b *circuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateClosed:
		return nil
	case stateOpen:
		if b.now().Sub(b.openedAt) < b.probeDelay {
			return ErrCircuitOpen
		}

		b.state = stateHalfOpen
		b.probing = true

		return nil
	default: // half-open
		if b.probing {
			return ErrCircuitOpen
		}

		b.probing = true

		return nil
	}
}

// Success resets the breaker to closed.
func (b *circuitBreaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = stateClosed
	b.failures = 0
	b.probing = false
}

// Failure records a failed request. A failed probe re-opens immediately; in
// the closed state the breaker opens once the failure run reaches the
// threshold.
func (b *circuitBreaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateHalfOpen:
		b.state = stateOpen
		b.openedAt = b.now()
		b.probing = false
	case stateClosed:
		b.failures++
		if b.failures >= b.threshold {
			b.state = stateOpen
			b.openedAt = b.now()
			b.failures = 0
		}
	case stateOpen:
	}
}
