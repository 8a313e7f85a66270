package forwarder

import "errors"

var (
	// ErrCircuitOpen is returned while the breaker is rejecting requests
	// after repeated endpoint failures.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	errForwardingDisabled = errors.New("forwarding is not enabled")
	errEndpointRequired   = errors.New("forwarding endpoint is required")
	errUnsupportedAuth    = errors.New("unsupported auth type")
	errMissingCredential  = errors.New("missing credential")
)
