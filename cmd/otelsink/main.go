/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/otelsink/pkg/config"
	"github.com/carverauto/otelsink/pkg/exporter"
	"github.com/carverauto/otelsink/pkg/forwarder"
	"github.com/carverauto/otelsink/pkg/logger"
	"github.com/carverauto/otelsink/pkg/models"
)

var errFailedToLoadConfig = fmt.Errorf("failed to load config")

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/otelsink/otelsink.json", "Path to sink config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfgLoader := config.NewConfig(nil)

	var cfg models.SinkConfig

	if err := cfgLoader.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
	}

	logConfig := cfg.Logging
	if logConfig == nil {
		logConfig = &logger.Config{
			Level:  "info",
			Output: "stdout",
		}
	}

	sinkLogger, err := logger.NewComponentLogger("otelsink", logConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	var fwd exporter.Forwarder

	if cfg.Forwarding != nil && cfg.Forwarding.Enabled {
		client, err := forwarder.New(cfg.Forwarding, sinkLogger)
		if err != nil {
			return fmt.Errorf("failed to create forwarder: %w", err)
		}

		fwd = client
	}

	sink, err := exporter.New(&cfg, nil, fwd, sinkLogger)
	if err != nil {
		return fmt.Errorf("failed to create exporter: %w", err)
	}

	sinkLogger.Info().
		Str("output_dir", cfg.OutputDir).
		Dur("write_interval", time.Duration(cfg.WriteInterval)).
		Msg("Sink started")

	<-ctx.Done()

	sinkLogger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := sink.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	stats := sink.Stats()
	sinkLogger.Info().
		Uint64("messages_received", stats.MessagesReceived).
		Uint64("files_written", stats.FilesWritten).
		Uint64("errors", stats.ErrorsCount).
		Msg("Sink stopped")

	return nil
}
