// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"math"

	"go.opentelemetry.io/otel/attribute"

	oteltrace "go.opentelemetry.io/otel/trace"
)

// OpenTelemetry has no unsigned attributes. Values above MaxInt64 are
// clamped.
func toInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

func Amp(amp uint64) attribute.KeyValue {
	return attribute.Int64("amp", toInt64(amp))
}

func Amount(key string, amount uint64) attribute.KeyValue {
	return attribute.Int64(key, toInt64(amount))
}

func Reserves(reserves []uint64) attribute.KeyValue {
	out := make([]int64, len(reserves))
	for i, r := range reserves {
		out[i] = toInt64(r)
	}
	return attribute.Int64Slice("reserves", out)
}

// Curve tags a span with the pool shape every solver call depends on.
func Curve(reserves []uint64, amp uint64) oteltrace.SpanStartOption {
	return oteltrace.WithAttributes(Reserves(reserves), Amp(amp))
}
