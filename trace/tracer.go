// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/ava-labs/avalanchego/trace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const (
	exportTimeout = 10 * time.Second
	// Longer than exportTimeout so a running export can finish.
	shutdownTimeout = 15 * time.Second

	DefaultEndpoint = "http://localhost:9411/api/v2/spans"
)

var ErrInvalidSampleRate = errors.New("trace sample rate must be within [0, 1]")

type Config struct {
	Enabled bool `json:"enabled"`

	// Fraction of root spans to sample. Child spans follow their parent.
	TraceSampleRate float64 `json:"traceSampleRate"`

	// Zipkin collector URL. Empty uses DefaultEndpoint.
	Endpoint string `json:"endpoint"`

	AppName string `json:"appName"`
	Agent   string `json:"agent"`
	Version string `json:"version"`
}

// Verify is a no-op when tracing is disabled.
func (c *Config) Verify() error {
	if !c.Enabled {
		return nil
	}
	if c.TraceSampleRate < 0 || c.TraceSampleRate > 1 {
		return fmt.Errorf("%w: %f", ErrInvalidSampleRate, c.TraceSampleRate)
	}
	if len(c.Endpoint) == 0 {
		return nil
	}
	if _, err := url.ParseRequestURI(c.Endpoint); err != nil {
		return fmt.Errorf("invalid trace endpoint: %w", err)
	}
	return nil
}

type tracer struct {
	oteltrace.Tracer

	tp *sdktrace.TracerProvider
}

// Close flushes buffered spans.
func (t *tracer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return t.tp.Shutdown(ctx)
}

// New returns a Zipkin backed tracer, or one that records nothing if
// tracing is disabled.
func New(config *Config) (trace.Tracer, error) {
	if err := config.Verify(); err != nil {
		return nil, err
	}
	if !config.Enabled {
		return newNoop(config.AppName), nil
	}

	endpoint := config.Endpoint
	if len(endpoint) == 0 {
		endpoint = DefaultEndpoint
	}
	exporter, err := zipkin.New(endpoint)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithExportTimeout(exportTimeout)),
		sdktrace.WithResource(
			resource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceNameKey.String(config.Agent),
				semconv.ServiceVersionKey.String(config.Version),
			),
		),
		sdktrace.WithSampler(sdktrace.ParentBased(
			sdktrace.TraceIDRatioBased(config.TraceSampleRate),
		)),
	)
	return &tracer{
		Tracer: tp.Tracer(config.AppName),
		tp:     tp,
	}, nil
}
