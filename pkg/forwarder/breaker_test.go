package forwarder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerStaysClosedUnderThreshold(t *testing.T) {
	b := newCircuitBreaker(3, 30*time.Second)

	b.Failure()
	b.Failure()
	require.NoError(t, b.Allow())

	b.Success()
	b.Failure()
	b.Failure()
	require.NoError(t, b.Allow())
}

func TestBreakerOpensAndProbes(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	b := newCircuitBreaker(2, 30*time.Second)
	b.now = func() time.Time { return now }

	b.Failure()
	b.Failure()
	require.ErrorIs(t, b.Allow(), ErrCircuitOpen)

	// Still open just before the probe delay elapses.
	now = now.Add(29 * time.Second)
	require.ErrorIs(t, b.Allow(), ErrCircuitOpen)

	// One probe is admitted, concurrent requests are not.
	now = now.Add(2 * time.Second)
	require.NoError(t, b.Allow())
	require.ErrorIs(t, b.Allow(), ErrCircuitOpen)

	// Probe success closes the breaker.
	b.Success()
	assert.NoError(t, b.Allow())
}

func TestBreakerProbeFailureReopens(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	b := newCircuitBreaker(1, 30*time.Second)
	b.now = func() time.Time { return now }

	b.Failure()
	require.ErrorIs(t, b.Allow(), ErrCircuitOpen)

	now = now.Add(31 * time.Second)
	require.NoError(t, b.Allow())

	b.Failure()
	require.ErrorIs(t, b.Allow(), ErrCircuitOpen)

	// The probe timer restarts from the failed probe.
	now = now.Add(31 * time.Second)
	assert.NoError(t, b.Allow())
}
