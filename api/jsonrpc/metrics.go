// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests          *prometheus.CounterVec
	solverIterations  prometheus.Histogram
	solverUnconverged prometheus.Counter
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
}

func newMetrics() (*prometheus.Registry, *metrics, error) {
	r := prometheus.NewRegistry()
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stableswap",
			Name:      "requests",
			Help:      "number of handled requests",
		}, []string{"method"}),
		solverIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stableswap",
			Name:      "solver_iterations",
			Help:      "iterations taken to solve the invariant",
			Buckets:   prometheus.LinearBuckets(1, 1, 20),
		}),
		solverUnconverged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stableswap",
			Name:      "solver_unconverged",
			Help:      "number of invariant solves that hit the iteration cap",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stableswap",
			Name:      "invariant_cache_hits",
			Help:      "number of invariants served from cache",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stableswap",
			Name:      "invariant_cache_misses",
			Help:      "number of invariants solved",
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.requests),
		r.Register(m.solverIterations),
		r.Register(m.solverUnconverged),
		r.Register(m.cacheHits),
		r.Register(m.cacheMisses),
	)
	return r, m, errs.Err
}
