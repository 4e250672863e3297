// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"strconv"
	"strings"

	"github.com/dgraph-io/ristretto"

	"github.com/equation-man/mega-amm-protocol/solver"
)

const (
	DefaultCacheSize = 16_384

	cacheBufferItems = 64
)

// invariantCache memoises solved invariants by amplification and reserves.
// Solving is deterministic, so entries never go stale.
type invariantCache struct {
	cache   *ristretto.Cache
	metrics *metrics
}

func newInvariantCache(size int64, m *metrics) (*invariantCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: size * 10,
		MaxCost:     size,
		BufferItems: cacheBufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &invariantCache{
		cache:   cache,
		metrics: m,
	}, nil
}

func invariantKey(amp uint64, reserves []uint64) string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(amp, 10))
	for _, r := range reserves {
		b.WriteByte('/')
		b.WriteString(strconv.FormatUint(r, 10))
	}
	return b.String()
}

// get returns the invariant of reserves and whether it came from the cache.
func (c *invariantCache) get(amp uint64, reserves []uint64) (*solver.Result, bool, error) {
	key := invariantKey(amp, reserves)
	if v, ok := c.cache.Get(key); ok {
		c.metrics.cacheHits.Inc()
		return v.(*solver.Result), true, nil
	}
	c.metrics.cacheMisses.Inc()

	d, err := solver.ComputeDUint64(reserves, amp)
	if err != nil {
		return nil, false, err
	}
	c.metrics.solverIterations.Observe(float64(d.Iterations))
	if !d.Converged {
		c.metrics.solverUnconverged.Inc()
	}
	c.cache.Set(key, d, 1)
	return d, false, nil
}

// wait blocks until buffered writes are visible to get.
func (c *invariantCache) wait() {
	c.cache.Wait()
}

func (c *invariantCache) close() {
	c.cache.Close()
}
