package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/otelsink/pkg/models"
)

const validSinkJSON = `{
	"output_dir": "/var/lib/otelsink",
	"write_interval": "10s",
	"trace_cleanup_interval": "1h",
	"metric_cleanup_interval": "1h"
}`

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "otelsink.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadAndValidateFromFile(t *testing.T) {
	path := writeConfigFile(t, validSinkJSON)

	var cfg models.SinkConfig

	require.NoError(t, NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg))
	assert.Equal(t, "/var/lib/otelsink", cfg.OutputDir)
	assert.Equal(t, models.Duration(10*time.Second), cfg.WriteInterval)
}

func TestLoadAndValidateMissingFile(t *testing.T) {
	var cfg models.SinkConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), "/nonexistent/otelsink.json", &cfg)
	require.Error(t, err)
}

func TestLoadAndValidateInvalidJSON(t *testing.T) {
	path := writeConfigFile(t, "{not json")

	var cfg models.SinkConfig

	require.Error(t, NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg))
}

func TestLoadAndValidateRejectsInvalidConfig(t *testing.T) {
	// Parses fine but fails the config's own validation.
	path := writeConfigFile(t, `{"output_dir": ""}`)

	var cfg models.SinkConfig

	require.Error(t, NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg))
}

func TestLoadAndValidateFromEnv(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("OTELSINK_CONFIG_JSON", validSinkJSON)

	var cfg models.SinkConfig

	require.NoError(t, NewConfig(nil).LoadAndValidate(context.Background(), "", &cfg))
	assert.Equal(t, "/var/lib/otelsink", cfg.OutputDir)
}

func TestLoadAndValidateEnvMissingVariable(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("OTELSINK_CONFIG_JSON", "")

	var cfg models.SinkConfig

	require.Error(t, NewConfig(nil).LoadAndValidate(context.Background(), "", &cfg))
}

func TestLoadAndValidateBadSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "carrier-pigeon")

	var cfg models.SinkConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), "ignored", &cfg)
	require.ErrorIs(t, err, errInvalidConfigSource)
}

func TestValidateConfigSkipsNonValidators(t *testing.T) {
	type plain struct{ Name string }

	assert.NoError(t, ValidateConfig(&plain{}))
}
