// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"github.com/ava-labs/avalanchego/trace"
	"go.opentelemetry.io/otel/trace/noop"

	oteltrace "go.opentelemetry.io/otel/trace"
)

var _ trace.Tracer = (*noopTracer)(nil)

type noopTracer struct {
	oteltrace.Tracer
}

func newNoop(name string) *noopTracer {
	return &noopTracer{Tracer: noop.NewTracerProvider().Tracer(name)}
}

// Noop returns a tracer that records nothing.
func Noop() trace.Tracer {
	return newNoop("")
}

func (*noopTracer) Close() error {
	return nil
}
