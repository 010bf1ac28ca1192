// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"

	"github.com/joeshaw/envdecode"
	"github.com/mibes404/starlark-derive/starlarkconv"
)

// config holds the defaults of the command-line flags, read from the
// environment.
type config struct {
	// LogLevel is a zap level name. ENV: STARBRIDGE_LOG_LEVEL
	LogLevel string `env:"STARBRIDGE_LOG_LEVEL,default=info"`
	// MaxDepth limits the nesting of decoded values. ENV: STARBRIDGE_MAX_DEPTH
	MaxDepth int `env:"STARBRIDGE_MAX_DEPTH,default=1000"`
	// Global names the script variable holding the records. ENV: STARBRIDGE_GLOBAL
	Global string `env:"STARBRIDGE_GLOBAL,default=records"`
}

func loadConfig() (config, error) {
	var cfg config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return cfg, fmt.Errorf("reading environment: %w", err)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = starlarkconv.DefaultMaxDepth
	}
	if cfg.Global == "" {
		cfg.Global = "records"
	}
	return cfg, nil
}
