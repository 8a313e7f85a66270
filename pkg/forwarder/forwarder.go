// Package forwarder re-transmits flushed batches to an upstream OTLP
// endpoint, either as Protobuf over HTTP or over Arrow Flight. Delivery is
// best-effort: a circuit breaker sheds load from a dead endpoint, and the
// caller is expected to treat every error as non-fatal.
package forwarder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"google.golang.org/protobuf/proto"

	"github.com/carverauto/otelsink/pkg/converter"
	"github.com/carverauto/otelsink/pkg/logger"
	"github.com/carverauto/otelsink/pkg/models"
)

const (
	defaultTimeout   = 10 * time.Second
	failureThreshold = 5
	probeDelay       = 30 * time.Second

	contentTypeProtobuf = "application/x-protobuf"
	tracesPath          = "/v1/traces"
	metricsPath         = "/v1/metrics"
)

// Client sends flushed batches upstream. It satisfies the exporter's
// Forwarder interface.
type Client struct {
	cfg     *models.ForwardingConfig
	log     logger.Logger
	http    *http.Client
	breaker *circuitBreaker
}

// New builds a forwarding client from the sink configuration. Forwarding
// must be enabled and carry an endpoint.
func New(cfg *models.ForwardingConfig, log logger.Logger) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errForwardingDisabled
	}

	if cfg.Endpoint == "" {
		return nil, errEndpointRequired
	}

	timeout := time.Duration(cfg.Timeout)
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	log.Info().
		Str("endpoint", cfg.Endpoint).
		Str("protocol", string(cfg.Protocol)).
		Msg("Created forwarder")

	return &Client{
		cfg:     cfg,
		log:     log,
		http:    &http.Client{Timeout: timeout},
		breaker: newCircuitBreaker(failureThreshold, probeDelay),
	}, nil
}

// ForwardTraces re-serializes a trace batch per the configured protocol and
// sends it upstream.
func (c *Client) ForwardTraces(ctx context.Context, rec arrow.RecordBatch) error {
	return c.send(ctx, rec, tracesPath, func(rec arrow.RecordBatch) (proto.Message, error) {
		return converter.ArrowToProtoTraces(rec)
	})
}

// ForwardMetrics re-serializes a metric batch per the configured protocol
// and sends it upstream.
func (c *Client) ForwardMetrics(ctx context.Context, rec arrow.RecordBatch) error {
	return c.send(ctx, rec, metricsPath, func(rec arrow.RecordBatch) (proto.Message, error) {
		return converter.ArrowToProtoMetrics(rec)
	})
}

func (c *Client) send(ctx context.Context, rec arrow.RecordBatch, path string, toProto func(arrow.RecordBatch) (proto.Message, error)) error {
	if rec.NumRows() == 0 {
		return nil
	}

	if err := c.breaker.Allow(); err != nil {
		return err
	}

	var err error
	if c.cfg.Protocol == models.ForwardingProtocolArrowFlight {
		err = c.putFlight(ctx, rec, path)
	} else {
		err = c.postProtobuf(ctx, rec, path, toProto)
	}

	if err != nil {
		c.breaker.Failure()
		return err
	}

	c.breaker.Success()

	return nil
}

func (c *Client) postProtobuf(ctx context.Context, rec arrow.RecordBatch, path string, toProto func(arrow.RecordBatch) (proto.Message, error)) error {
	msg, err := toProto(rec)
	if err != nil {
		return fmt.Errorf("convert batch for forwarding: %w", err)
	}

	payload, err := proto.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode forwarded batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build forwarding request: %w", err)
	}

	req.Header.Set("Content-Type", contentTypeProtobuf)

	if err := applyAuthHeader(req, c.cfg.Auth); err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send forwarded batch: %w", err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("upstream returned %s", resp.Status)
	}

	c.log.Debug().Str("path", path).Int64("rows", rec.NumRows()).Msg("Forwarded batch")

	return nil
}
