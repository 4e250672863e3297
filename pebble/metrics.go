// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"time"

	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace       = "pebble"
	metricsInterval = 10 * time.Second

	opInsert = "insert"
	opRemove = "remove"
	opBatch  = "batch"
)

// sampled are read from pebble.Metrics on every tick.
var sampled = []struct {
	name string
	help string
	read func(*pebble.Metrics) float64
}{
	{"tombstone_count", "approximate count of internal tombstones", func(m *pebble.Metrics) float64 {
		return float64(m.Keys.TombstoneCount)
	}},
	{"obsolete_table_size", "bytes in tables no longer referenced by the db", func(m *pebble.Metrics) float64 {
		return float64(m.Table.ObsoleteSize)
	}},
	{"zombie_table_size", "bytes in unreferenced tables still held by iterators", func(m *pebble.Metrics) float64 {
		return float64(m.Table.ZombieSize)
	}},
	{"obsolete_wal_size", "bytes in WAL files no longer needed by the db", func(m *pebble.Metrics) float64 {
		return float64(m.WAL.ObsoletePhysicalSize)
	}},
	{"disk_space_usage", "total bytes used on disk", func(m *pebble.Metrics) float64 {
		return float64(m.DiskSpaceUsage())
	}},
}

type metrics struct {
	delayStart time.Time
	writeStall metric.Averager
	getLatency metric.Averager

	compactions       *prometheus.CounterVec
	activeCompactions prometheus.Gauge

	writes    *prometheus.CounterVec
	batchSize prometheus.Histogram

	gauges []prometheus.Gauge
}

func newMetrics() (*prometheus.Registry, *metrics, error) {
	r := prometheus.NewRegistry()
	writeStall, err := metric.NewAverager(
		"",
		namespace+"_write_stall",
		"time spent waiting for disk write",
		r,
	)
	if err != nil {
		return nil, nil, err
	}
	getLatency, err := metric.NewAverager(
		"",
		namespace+"_read_latency",
		"time spent waiting for db get",
		r,
	)
	if err != nil {
		return nil, nil, err
	}
	m := &metrics{
		writeStall: writeStall,
		getLatency: getLatency,
		compactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compactions",
			Help:      "number of compactions by input level",
		}, []string{"level"}),
		activeCompactions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_compactions",
			Help:      "number of active compactions",
		}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "writes",
			Help:      "number of committed writes by operation",
		}, []string{"op"}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "number of operations per committed batch",
			Buckets:   prometheus.LinearBuckets(1, 2, 8),
		}),
	}

	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.compactions),
		r.Register(m.activeCompactions),
		r.Register(m.writes),
		r.Register(m.batchSize),
	)
	for _, s := range sampled {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      s.name,
			Help:      s.help,
		})
		m.gauges = append(m.gauges, g)
		errs.Add(r.Register(g))
	}
	return r, m, errs.Err
}

func (db *Database) onCompactionBegin(info pebble.CompactionInfo) {
	db.metrics.activeCompactions.Inc()
	level := "l1+"
	if len(info.Input) > 0 && info.Input[0].Level == 0 {
		level = "l0"
	}
	db.metrics.compactions.WithLabelValues(level).Inc()
}

func (db *Database) onCompactionEnd(pebble.CompactionInfo) {
	db.metrics.activeCompactions.Dec()
}

func (db *Database) onWriteStallBegin(pebble.WriteStallBeginInfo) {
	db.metrics.delayStart = time.Now()
}

func (db *Database) onWriteStallEnd() {
	db.metrics.writeStall.Observe(float64(time.Since(db.metrics.delayStart)))
}

func (db *Database) sample() {
	m := db.db.Metrics()
	for i, s := range sampled {
		db.metrics.gauges[i].Set(s.read(m))
	}
}

func (db *Database) collectMetrics() {
	t := time.NewTicker(metricsInterval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			db.sample()
		case <-db.closing:
			return
		}
	}
}
