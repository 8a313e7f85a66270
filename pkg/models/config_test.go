package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationUnmarshalString(t *testing.T) {
	var d Duration

	require.NoError(t, json.Unmarshal([]byte(`"10s"`), &d))
	assert.Equal(t, Duration(10*time.Second), d)

	require.NoError(t, json.Unmarshal([]byte(`"1h30m"`), &d))
	assert.Equal(t, Duration(90*time.Minute), d)
}

func TestDurationUnmarshalNanoseconds(t *testing.T) {
	var d Duration

	require.NoError(t, json.Unmarshal([]byte(`5000000000`), &d))
	assert.Equal(t, Duration(5*time.Second), d)
}

func TestDurationUnmarshalInvalid(t *testing.T) {
	var d Duration

	assert.Error(t, json.Unmarshal([]byte(`"not-a-duration"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
}

func TestDurationMarshalRoundTrip(t *testing.T) {
	out, err := json.Marshal(Duration(10 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"10s"`, string(out))
}

func TestDefaultSinkConfig(t *testing.T) {
	cfg := DefaultSinkConfig("/tmp/out")

	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, Duration(10*time.Second), cfg.WriteInterval)
	assert.Equal(t, Duration(time.Hour), cfg.TraceCleanupInterval)
	assert.Equal(t, Duration(time.Hour), cfg.MetricCleanupInterval)
	assert.Equal(t, 10000, cfg.MaxTraceBufferSize)
	assert.Equal(t, 1000, cfg.MaxMetricBufferSize)
	require.NoError(t, cfg.Validate())
}

func TestSinkConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*SinkConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(*SinkConfig) {}},
		{name: "missing output dir", mutate: func(c *SinkConfig) { c.OutputDir = "" }, wantErr: true},
		{name: "zero write interval", mutate: func(c *SinkConfig) { c.WriteInterval = 0 }, wantErr: true},
		{name: "negative cleanup", mutate: func(c *SinkConfig) { c.TraceCleanupInterval = -1 }, wantErr: true},
		{name: "negative buffer", mutate: func(c *SinkConfig) { c.MaxTraceBufferSize = -1 }, wantErr: true},
		{
			name: "forwarding without endpoint",
			mutate: func(c *SinkConfig) {
				c.Forwarding = &ForwardingConfig{Enabled: true, Protocol: ForwardingProtocolProtobuf}
			},
			wantErr: true,
		},
		{
			name: "forwarding bad protocol",
			mutate: func(c *SinkConfig) {
				c.Forwarding = &ForwardingConfig{Enabled: true, Endpoint: "http://u", Protocol: "smoke-signals"}
			},
			wantErr: true,
		},
		{
			name: "forwarding bad auth type",
			mutate: func(c *SinkConfig) {
				c.Forwarding = &ForwardingConfig{
					Enabled:  true,
					Endpoint: "http://u",
					Protocol: ForwardingProtocolArrowFlight,
					Auth:     &AuthConfig{Type: "carrier-pigeon"},
				}
			},
			wantErr: true,
		},
		{
			name: "forwarding disabled is not validated",
			mutate: func(c *SinkConfig) {
				c.Forwarding = &ForwardingConfig{Enabled: false}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultSinkConfig(t.TempDir())
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDefaultsBufferSizes(t *testing.T) {
	cfg := DefaultSinkConfig("/tmp/out")
	cfg.MaxTraceBufferSize = 0
	cfg.MaxMetricBufferSize = 0

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10000, cfg.MaxTraceBufferSize)
	assert.Equal(t, 1000, cfg.MaxMetricBufferSize)
}

func TestSinkConfigJSON(t *testing.T) {
	raw := `{
		"output_dir": "/var/lib/otelsink",
		"write_interval": "15s",
		"trace_cleanup_interval": "2h",
		"metric_cleanup_interval": 3600000000000,
		"max_trace_buffer_size": 500,
		"forwarding": {
			"enabled": true,
			"endpoint": "http://upstream:4318",
			"protocol": "protobuf",
			"auth": {"type": "api_key", "credentials": {"key": "k"}}
		}
	}`

	var cfg SinkConfig

	require.NoError(t, json.Unmarshal([]byte(raw), &cfg))
	assert.Equal(t, "/var/lib/otelsink", cfg.OutputDir)
	assert.Equal(t, Duration(15*time.Second), cfg.WriteInterval)
	assert.Equal(t, Duration(2*time.Hour), cfg.TraceCleanupInterval)
	assert.Equal(t, Duration(time.Hour), cfg.MetricCleanupInterval)
	assert.Equal(t, 500, cfg.MaxTraceBufferSize)
	require.NotNil(t, cfg.Forwarding)
	assert.Equal(t, ForwardingProtocolProtobuf, cfg.Forwarding.Protocol)
	require.NoError(t, cfg.Validate())
}
