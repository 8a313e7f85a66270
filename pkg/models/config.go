package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/otelsink/pkg/logger"
)

type Duration time.Duration

var errInvalidDuration = errors.New("invalid duration")

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// ForwardingProtocol selects the wire format used when re-emitting batches
// upstream.
type ForwardingProtocol string

const (
	ForwardingProtocolProtobuf    ForwardingProtocol = "protobuf"
	ForwardingProtocolArrowFlight ForwardingProtocol = "arrow_flight"
)

// AuthConfig describes the credentials attached to forwarded requests.
// Type is one of "api_key", "bearer_token", or "basic"; Credentials carries
// the type-specific fields (key/header_name, token, username/password).
type AuthConfig struct {
	Type        string            `json:"type"`
	Credentials map[string]string `json:"credentials"`
}

// ForwardingConfig enables best-effort re-transmission of flushed batches to
// an upstream OTLP endpoint.
type ForwardingConfig struct {
	Enabled  bool               `json:"enabled"`
	Endpoint string             `json:"endpoint"`
	Protocol ForwardingProtocol `json:"protocol"`
	Timeout  Duration           `json:"timeout,omitempty"`
	Auth     *AuthConfig        `json:"auth,omitempty"`
}

// ProtocolConfig carries the front-end listener flags. The sink core does not
// act on these; the protocol servers that sit in front of it do.
type ProtocolConfig struct {
	ProtobufEnabled    bool `json:"protobuf_enabled"`
	ProtobufPort       int  `json:"protobuf_port"`
	ArrowFlightEnabled bool `json:"arrow_flight_enabled"`
	ArrowFlightPort    int  `json:"arrow_flight_port"`
}

// SinkConfig is the full configuration of the file sink.
type SinkConfig struct {
	OutputDir             string            `json:"output_dir"`
	WriteInterval         Duration          `json:"write_interval"`
	TraceCleanupInterval  Duration          `json:"trace_cleanup_interval"`
	MetricCleanupInterval Duration          `json:"metric_cleanup_interval"`
	MaxTraceBufferSize    int               `json:"max_trace_buffer_size"`
	MaxMetricBufferSize   int               `json:"max_metric_buffer_size"`
	Protocols             ProtocolConfig    `json:"protocols"`
	Forwarding            *ForwardingConfig `json:"forwarding,omitempty"`
	Logging               *logger.Config    `json:"logging,omitempty"`
}

const (
	defaultWriteInterval       = 10 * time.Second
	defaultCleanupInterval     = time.Hour
	defaultMaxTraceBufferSize  = 10000
	defaultMaxMetricBufferSize = 1000
)

// DefaultSinkConfig returns a config with the stock intervals and buffer caps.
func DefaultSinkConfig(outputDir string) *SinkConfig {
	return &SinkConfig{
		OutputDir:             outputDir,
		WriteInterval:         Duration(defaultWriteInterval),
		TraceCleanupInterval:  Duration(defaultCleanupInterval),
		MetricCleanupInterval: Duration(defaultCleanupInterval),
		MaxTraceBufferSize:    defaultMaxTraceBufferSize,
		MaxMetricBufferSize:   defaultMaxMetricBufferSize,
	}
}

var (
	errOutputDirRequired      = errors.New("output_dir is required")
	errWriteIntervalRequired  = errors.New("write_interval must be positive")
	errCleanupIntervalInvalid = errors.New("cleanup intervals must be positive")
	errBufferSizeInvalid      = errors.New("buffer sizes must be positive")
	errForwardEndpointMissing = errors.New("forwarding endpoint is required when forwarding is enabled")
	errForwardProtocolInvalid = errors.New("forwarding protocol must be protobuf or arrow_flight")
	errAuthTypeInvalid        = errors.New("auth type must be api_key, bearer_token, or basic")
)

// Validate checks the configuration, applying defaults for zero-valued sizes.
func (c *SinkConfig) Validate() error {
	if c.OutputDir == "" {
		return errOutputDirRequired
	}

	if c.WriteInterval <= 0 {
		return errWriteIntervalRequired
	}

	if c.TraceCleanupInterval <= 0 || c.MetricCleanupInterval <= 0 {
		return errCleanupIntervalInvalid
	}

	if c.MaxTraceBufferSize == 0 {
		c.MaxTraceBufferSize = defaultMaxTraceBufferSize
	}

	if c.MaxMetricBufferSize == 0 {
		c.MaxMetricBufferSize = defaultMaxMetricBufferSize
	}

	if c.MaxTraceBufferSize < 0 || c.MaxMetricBufferSize < 0 {
		return errBufferSizeInvalid
	}

	if c.Forwarding != nil && c.Forwarding.Enabled {
		if err := c.Forwarding.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks an enabled forwarding configuration.
func (f *ForwardingConfig) Validate() error {
	if f.Endpoint == "" {
		return errForwardEndpointMissing
	}

	switch f.Protocol {
	case ForwardingProtocolProtobuf, ForwardingProtocolArrowFlight:
	default:
		return errForwardProtocolInvalid
	}

	if f.Auth != nil {
		switch f.Auth.Type {
		case "api_key", "bearer_token", "basic":
		default:
			return errAuthTypeInvalid
		}
	}

	return nil
}
