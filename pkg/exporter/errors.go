package exporter

import "errors"

var (
	// ErrExporterShutdown is returned by export calls once Shutdown has begun.
	ErrExporterShutdown = errors.New("exporter is shut down")

	// ErrBufferFull is returned when an append would exceed the configured
	// buffer capacity. The rejected records are dropped; buffered records are
	// unaffected.
	ErrBufferFull = errors.New("buffer full")
)
