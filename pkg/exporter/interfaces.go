package exporter

//go:generate mockgen -destination=mock_exporter.go -package=exporter github.com/carverauto/otelsink/pkg/exporter Clock,Ticker,Forwarder

import (
	"context"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
)

// Clock abstracts time-related operations.
type Clock interface {
	Now() time.Time
	Ticker(d time.Duration) Ticker
}

// Ticker abstracts the ticker behavior.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

// Forwarder sends a flushed batch to an upstream endpoint. Implementations
// are best-effort: the exporter logs and counts failures but never acts on
// them.
type Forwarder interface {
	ForwardTraces(ctx context.Context, rec arrow.RecordBatch) error
	ForwardMetrics(ctx context.Context, rec arrow.RecordBatch) error
}
