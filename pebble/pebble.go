// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/bloom"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/slices"

	"github.com/equation-man/mega-amm-protocol/state"
)

var _ state.Batcher = (*Database)(nil)

type Config struct {
	CacheSize                   int  `json:"cacheSize"`
	BytesPerSync                int  `json:"bytesPerSync"`
	WALBytesPerSync             int  `json:"walBytesPerSync"`
	MemTableStopWritesThreshold int  `json:"memTableStopWritesThreshold"`
	MemTableSize                int  `json:"memTableSize"`
	MaxOpenFiles                int  `json:"maxOpenFiles"`
	ConcurrentCompactions       int  `json:"concurrentCompactions"`
	Sync                        bool `json:"sync"`
}

func NewDefaultConfig() Config {
	return Config{
		CacheSize:                   128 * 1024 * 1024,
		BytesPerSync:                1024 * 1024,
		WALBytesPerSync:             1024 * 1024,
		MemTableStopWritesThreshold: 8,
		MemTableSize:                16 * 1024 * 1024,
		MaxOpenFiles:                4_096,
		ConcurrentCompactions:       1,
		Sync:                        true,
	}
}

// Database is a pool store on disk. Writes from ApplyBatch land in a
// single pebble batch.
type Database struct {
	db        *pebble.DB
	writeOpts *pebble.WriteOptions

	metrics *metrics

	lock    sync.RWMutex
	closed  bool
	closing chan struct{}
	wg      sync.WaitGroup
}

// New opens (or creates) the database at file and returns the registry its
// metrics are reported to.
func New(file string, cfg Config) (*Database, *prometheus.Registry, error) {
	registry, metrics, err := newMetrics()
	if err != nil {
		return nil, nil, err
	}
	d := &Database{
		writeOpts: &pebble.WriteOptions{Sync: cfg.Sync},
		metrics:   metrics,
		closing:   make(chan struct{}),
	}

	cache := pebble.NewCache(int64(cfg.CacheSize))
	defer cache.Unref()
	opts := &pebble.Options{
		Cache:                       cache,
		BytesPerSync:                cfg.BytesPerSync,
		Comparer:                    pebble.DefaultComparer,
		WALBytesPerSync:             cfg.WALBytesPerSync,
		MemTableStopWritesThreshold: cfg.MemTableStopWritesThreshold,
		MemTableSize:                uint64(cfg.MemTableSize),
		MaxOpenFiles:                cfg.MaxOpenFiles,
		MaxConcurrentCompactions:    func() int { return cfg.ConcurrentCompactions },
		Levels:                      make([]pebble.LevelOptions, 7),
	}
	for i := 0; i < len(opts.Levels); i++ {
		l := &opts.Levels[i]
		l.BlockSize = 32 * 1024
		l.IndexBlockSize = 256 * 1024
		l.FilterPolicy = bloom.FilterPolicy(10)
		l.FilterType = pebble.TableFilter
		if i > 0 {
			l.TargetFileSize = opts.Levels[i-1].TargetFileSize * 2
		}
		l.EnsureDefaults()
	}
	opts.EventListener = &pebble.EventListener{
		CompactionBegin: d.onCompactionBegin,
		CompactionEnd:   d.onCompactionEnd,
		WriteStallBegin: d.onWriteStallBegin,
		WriteStallEnd:   d.onWriteStallEnd,
	}
	db, err := pebble.Open(file, opts)
	if err != nil {
		return nil, nil, err
	}
	d.db = db
	d.sample()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.collectMetrics()
	}()
	return d, registry, nil
}

func (db *Database) GetValue(_ context.Context, key []byte) ([]byte, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()
	if db.closed {
		return nil, database.ErrClosed
	}

	start := time.Now()
	defer func() {
		db.metrics.getLatency.Observe(float64(time.Since(start)))
	}()
	v, closer, err := db.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return slices.Clone(v), nil
}

func (db *Database) Insert(_ context.Context, key []byte, value []byte) error {
	db.lock.RLock()
	defer db.lock.RUnlock()
	if db.closed {
		return database.ErrClosed
	}
	if err := db.db.Set(key, value, db.writeOpts); err != nil {
		return err
	}
	db.metrics.writes.WithLabelValues(opInsert).Inc()
	return nil
}

func (db *Database) Remove(_ context.Context, key []byte) error {
	db.lock.RLock()
	defer db.lock.RUnlock()
	if db.closed {
		return database.ErrClosed
	}
	if err := db.db.Delete(key, db.writeOpts); err != nil {
		return err
	}
	db.metrics.writes.WithLabelValues(opRemove).Inc()
	return nil
}

// ApplyBatch writes ops atomically: either all of them are persisted or
// none are.
func (db *Database) ApplyBatch(_ context.Context, ops []database.BatchOp) error {
	db.lock.RLock()
	defer db.lock.RUnlock()
	if db.closed {
		return database.ErrClosed
	}

	batch := db.db.NewBatch()
	defer batch.Close()
	for _, op := range ops {
		var err error
		if op.Delete {
			err = batch.Delete(op.Key, nil)
		} else {
			err = batch.Set(op.Key, op.Value, nil)
		}
		if err != nil {
			return err
		}
	}
	if err := batch.Commit(db.writeOpts); err != nil {
		return err
	}
	db.metrics.writes.WithLabelValues(opBatch).Inc()
	db.metrics.batchSize.Observe(float64(len(ops)))
	return nil
}

func (db *Database) Close() error {
	db.lock.Lock()
	if db.closed {
		db.lock.Unlock()
		return database.ErrClosed
	}
	db.closed = true
	close(db.closing)
	db.lock.Unlock()

	db.wg.Wait()
	return db.db.Close()
}
