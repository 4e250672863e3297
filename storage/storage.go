// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/equation-man/mega-amm-protocol/pebble"
)

// Open creates dataDir/namespace if needed and opens the pool database in
// it. An empty namespace uses the default one.
func Open(cfg pebble.Config, dataDir string, namespace string) (*pebble.Database, *prometheus.Registry, error) {
	if len(namespace) == 0 {
		namespace = namespaceDB
	}
	path := filepath.Join(dataDir, namespace)
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, nil, fmt.Errorf("unable to create %s: %w", path, err)
	}
	return pebble.New(path, cfg)
}
