// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v7"

	"github.com/equation-man/mega-amm-protocol/codec"
	"github.com/equation-man/mega-amm-protocol/trace"
)

type Config struct {
	HTTPAddr          string        `env:"STABLESWAP_HTTP_ADDR" envDefault:"127.0.0.1:9650"`
	ReadHeaderTimeout time.Duration `env:"STABLESWAP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"STABLESWAP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxRequestSize    int64         `env:"STABLESWAP_MAX_REQUEST_SIZE" envDefault:"1048576"`
	AllowedOrigins    []string      `env:"STABLESWAP_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	AllowedHosts      []string      `env:"STABLESWAP_ALLOWED_HOSTS" envDefault:"localhost" envSeparator:","`

	DBDir     string `env:"STABLESWAP_DB_DIR" envDefault:".stableswapd/db"`
	CacheSize int64  `env:"STABLESWAP_CACHE_SIZE" envDefault:"16384"`
	// Pools maps names to pool addresses, as name:address pairs.
	Pools map[string]string `env:"STABLESWAP_POOLS" envSeparator:","`

	LogLevel   string `env:"STABLESWAP_LOG_LEVEL" envDefault:"info"`
	LogDir     string `env:"STABLESWAP_LOG_DIR" envDefault:".stableswapd/logs"`
	LogDisplay bool   `env:"STABLESWAP_LOG_DISPLAY" envDefault:"true"`

	TraceEnabled    bool    `env:"STABLESWAP_TRACE_ENABLED"`
	TraceSampleRate float64 `env:"STABLESWAP_TRACE_SAMPLE_RATE" envDefault:"1"`
	TraceEndpoint   string  `env:"STABLESWAP_TRACE_ENDPOINT"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// poolAddresses decodes the configured pool names.
func (c Config) poolAddresses() (map[string]codec.Address, error) {
	out := make(map[string]codec.Address, len(c.Pools))
	for name, s := range c.Pools {
		a, err := codec.ParseAddress(s)
		if err != nil {
			return nil, fmt.Errorf("pool %q: %w", name, err)
		}
		out[name] = a
	}
	return out, nil
}

func (c Config) traceConfig(version string) *trace.Config {
	return &trace.Config{
		Enabled:         c.TraceEnabled,
		TraceSampleRate: c.TraceSampleRate,
		Endpoint:        c.TraceEndpoint,
		AppName:         "stableswap",
		Agent:           "stableswapd",
		Version:         version,
	}
}
