// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMetricsHandler serves the union of gatherers in the prometheus text
// format.
func NewMetricsHandler(gatherers ...prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(
		prometheus.Gatherers(gatherers),
		promhttp.HandlerOpts{},
	)
}
