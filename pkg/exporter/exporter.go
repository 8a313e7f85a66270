// Package exporter buffers telemetry records and flushes them to Arrow IPC
// stream files on a timer or on demand. Flushed batches are also handed to an
// optional forwarder; forwarding is best-effort and never affects local
// persistence.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/carverauto/otelsink/pkg/converter"
	"github.com/carverauto/otelsink/pkg/logger"
	"github.com/carverauto/otelsink/pkg/models"
)

const (
	kindTraces  = "traces"
	kindMetrics = "metrics"
)

// Exporter is the ingestion surface of the sink. Export calls append to
// per-kind accumulators and return once buffered; background tasks drain,
// convert, persist, and forward on the configured intervals.
type Exporter struct {
	cfg       *models.SinkConfig
	log       logger.Logger
	clock     Clock
	forwarder Forwarder

	traces  *accumulator[models.SpanRecord]
	metrics *accumulator[models.ResourceMetricsRecord]

	traceWriter  *fileWriter
	metricWriter *fileWriter

	counters statsCounters

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	fwdWg     sync.WaitGroup
	closed    atomic.Bool
}

// New validates the configuration, creates the output directory tree, and
// starts the periodic flush and cleanup tasks. A nil clock selects the real
// one; a nil forwarder disables forwarding.
func New(cfg *models.SinkConfig, clock Clock, forwarder Forwarder, log logger.Logger) (*Exporter, error) {
	if cfg == nil {
		return nil, errors.New("exporter config is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid exporter config: %w", err)
	}

	if clock == nil {
		clock = realClock{}
	}

	traceWriter, err := newFileWriter(cfg.OutputDir, kindTraces, clock, log)
	if err != nil {
		return nil, err
	}

	metricWriter, err := newFileWriter(cfg.OutputDir, kindMetrics, clock, log)
	if err != nil {
		return nil, err
	}

	e := &Exporter{
		cfg:          cfg,
		log:          log,
		clock:        clock,
		forwarder:    forwarder,
		traces:       newAccumulator[models.SpanRecord](cfg.MaxTraceBufferSize),
		metrics:      newAccumulator[models.ResourceMetricsRecord](cfg.MaxMetricBufferSize),
		traceWriter:  traceWriter,
		metricWriter: metricWriter,
		done:         make(chan struct{}),
	}

	e.wg.Add(3)

	go e.flushLoop()
	go e.cleanupLoop(e.traceWriter, time.Duration(cfg.TraceCleanupInterval))
	go e.cleanupLoop(e.metricWriter, time.Duration(cfg.MetricCleanupInterval))

	return e, nil
}

// ExportTrace buffers one span record. It returns once the record is
// buffered and never waits on disk or network.
func (e *Exporter) ExportTrace(record models.SpanRecord) error {
	return e.ExportTraceBatch([]models.SpanRecord{record})
}

// ExportTraceBatch buffers span records in order. The batch is accepted or
// rejected as a whole.
func (e *Exporter) ExportTraceBatch(records []models.SpanRecord) error {
	if e.closed.Load() {
		return ErrExporterShutdown
	}

	e.counters.messagesReceived.Add(uint64(len(records)))

	if err := e.traces.Append(records...); err != nil {
		e.counters.errorsCount.Add(1)

		return fmt.Errorf("buffer trace records: %w", err)
	}

	return nil
}

// ExportMetrics buffers one resource-metrics record.
func (e *Exporter) ExportMetrics(record models.ResourceMetricsRecord) error {
	return e.ExportMetricsBatch([]models.ResourceMetricsRecord{record})
}

// ExportMetricsBatch buffers resource-metrics records in order. The batch is
// accepted or rejected as a whole.
func (e *Exporter) ExportMetricsBatch(records []models.ResourceMetricsRecord) error {
	if e.closed.Load() {
		return ErrExporterShutdown
	}

	e.counters.messagesReceived.Add(uint64(len(records)))

	if err := e.metrics.Append(records...); err != nil {
		e.counters.errorsCount.Add(1)

		return fmt.Errorf("buffer metric records: %w", err)
	}

	return nil
}

// Flush drains both buffers and blocks until the resulting files are
// written. Forwarding of the flushed batches is started but not awaited. A
// failure on one kind does not stop the other kind's cycle.
func (e *Exporter) Flush(ctx context.Context) error {
	return errors.Join(e.flushTraces(ctx), e.flushMetrics(ctx))
}

func (e *Exporter) flushTraces(_ context.Context) error {
	records := e.traces.Drain()
	if len(records) == 0 {
		return nil
	}

	rec, err := converter.SpansToArrow(records)
	if err != nil {
		e.counters.errorsCount.Add(1)

		return fmt.Errorf("convert trace batch: %w", err)
	}

	e.counters.formatConversions.Add(1)

	if _, err := e.traceWriter.Write(rec); err != nil {
		rec.Release()
		e.counters.errorsCount.Add(1)

		return err
	}

	e.counters.filesWritten.Add(1)
	e.forward(rec, kindTraces)

	return nil
}

func (e *Exporter) flushMetrics(_ context.Context) error {
	records := e.metrics.Drain()
	if len(records) == 0 {
		return nil
	}

	rec, err := converter.MetricsToArrow(records)
	if err != nil {
		e.counters.errorsCount.Add(1)

		return fmt.Errorf("convert metric batch: %w", err)
	}

	e.counters.formatConversions.Add(1)

	if rec.NumRows() == 0 {
		rec.Release()

		return nil
	}

	if _, err := e.metricWriter.Write(rec); err != nil {
		rec.Release()
		e.counters.errorsCount.Add(1)

		return err
	}

	e.counters.filesWritten.Add(1)
	e.forward(rec, kindMetrics)

	return nil
}

// forward hands a flushed batch to the forwarder in the background and takes
// over the batch's lifetime. Failures are logged and counted only.
func (e *Exporter) forward(rec arrow.RecordBatch, kind string) {
	if e.forwarder == nil {
		rec.Release()
		return
	}

	e.fwdWg.Add(1)

	go func() {
		defer e.fwdWg.Done()
		defer rec.Release()

		var err error
		if kind == kindTraces {
			err = e.forwarder.ForwardTraces(context.Background(), rec)
		} else {
			err = e.forwarder.ForwardMetrics(context.Background(), rec)
		}

		if err != nil {
			e.counters.errorsCount.Add(1)
			e.log.Warn().Err(err).Str("kind", kind).Msg("Forwarding failed")
		}
	}()
}

// Stats returns a snapshot of the exporter counters.
func (e *Exporter) Stats() Stats {
	return e.counters.snapshot()
}

// Shutdown stops the periodic tasks, performs a final drain so buffered
// records are not lost, and waits for in-flight forwarding to settle within
// the context deadline. Idempotent.
func (e *Exporter) Shutdown(ctx context.Context) error {
	if e.closed.Swap(true) {
		return nil
	}

	e.closeOnce.Do(func() {
		close(e.done)
	})

	e.wg.Wait()

	err := e.Flush(ctx)

	settled := make(chan struct{})

	go func() {
		e.fwdWg.Wait()
		close(settled)
	}()

	select {
	case <-settled:
	case <-ctx.Done():
		e.log.Warn().Msg("Shutdown finished with forwarding still in flight")
	}

	e.log.Info().Msg("Exporter shut down")

	return err
}

func (e *Exporter) flushLoop() {
	defer e.wg.Done()

	ticker := e.clock.Ticker(time.Duration(e.cfg.WriteInterval))
	defer ticker.Stop()

	for {
		select {
		case <-e.done:
			return
		case <-ticker.Chan():
			if err := e.Flush(context.Background()); err != nil {
				e.log.Error().Err(err).Msg("Periodic flush failed")
			}
		}
	}
}

// cleanupLoop deletes expired batch files. The configured interval doubles
// as the retention window.
func (e *Exporter) cleanupLoop(w *fileWriter, retention time.Duration) {
	defer e.wg.Done()

	ticker := e.clock.Ticker(retention)
	defer ticker.Stop()

	for {
		select {
		case <-e.done:
			return
		case <-ticker.Chan():
			w.RemoveExpired(retention)
		}
	}
}
