package converter

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedPayload wraps decode failures on wire bytes. It is the only
	// converter error a protocol front-end sees synchronously.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrSchemaMismatch is returned when an Arrow batch does not carry the
	// fixed column set for its record kind.
	ErrSchemaMismatch = errors.New("unexpected batch schema")
)

func errMissingColumn(name string) error {
	return fmt.Errorf("%w: missing column %q", ErrSchemaMismatch, name)
}
