// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func okHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, body)
	})
}

func TestRouter(t *testing.T) {
	require := require.New(t)

	r := newRouter()
	require.NoError(r.AddRouter("/ext/stableswap", "", okHandler("stableswap")))
	require.ErrorIs(r.AddRouter("/ext/stableswap", "", okHandler("again")), errAlreadyReserved)

	_, err := r.GetHandler("/ext/stableswap", "")
	require.NoError(err)
	_, err = r.GetHandler("/ext/unknown", "")
	require.ErrorIs(err, errUnknownBaseURL)
	_, err = r.GetHandler("/ext/stableswap", "/other")
	require.ErrorIs(err, errUnknownEndpoint)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ext/stableswap", nil))
	require.Equal(http.StatusOK, rec.Code)
	require.Equal("stableswap", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ext/missing", nil))
	require.Equal(http.StatusNotFound, rec.Code)
}

func TestFilterInvalidHosts(t *testing.T) {
	tests := []struct {
		name     string
		allowed  []string
		host     string
		expected int
	}{
		{
			name:     "allowed name",
			allowed:  []string{"localhost"},
			host:     "LocalHost:9650",
			expected: http.StatusOK,
		},
		{
			name:     "disallowed name",
			allowed:  []string{"localhost"},
			host:     "example.com",
			expected: http.StatusForbidden,
		},
		{
			name:     "ip always allowed",
			allowed:  []string{"localhost"},
			host:     "127.0.0.1:9650",
			expected: http.StatusOK,
		},
		{
			name:     "wildcard",
			allowed:  []string{"*"},
			host:     "example.com",
			expected: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := filterInvalidHosts(okHandler("ok"), tt.allowed)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = tt.host
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, tt.expected, rec.Code)
		})
	}
}

func TestServerDispatch(t *testing.T) {
	require := require.New(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "requests",
		Help: "number of requests",
	})
	registry := prometheus.NewRegistry()
	require.NoError(registry.Register(counter))
	counter.Inc()

	srv, err := New(
		logging.NoLog{},
		listener,
		Config{
			ReadHeaderTimeout: time.Second,
			ShutdownTimeout:   time.Second,
			MaxRequestSize:    16,
			AllowedOrigins:    []string{"*"},
			AllowedHosts:      []string{"*"},
		},
		RequestLogger{Log: logging.NoLog{}},
	)
	require.NoError(err)
	require.NoError(srv.AddRoute(okHandler("pong"), "ext/ping", ""))
	require.NoError(srv.AddRoute(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		}
	}), "ext/echo", ""))
	require.NoError(srv.AddRoute(NewMetricsHandler(registry), "metrics", ""))

	done := make(chan error, 1)
	go func() {
		done <- srv.Dispatch()
	}()

	base := "http://" + srv.Addr().String()
	resp, err := http.Get(base + "/ext/ping")
	require.NoError(err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Equal("pong", string(body))

	resp, err = http.Get(base + "/metrics")
	require.NoError(err)
	body, err = io.ReadAll(resp.Body)
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Contains(string(body), "requests 1")

	resp, err = http.Post(base+"/ext/echo", "text/plain", strings.NewReader(strings.Repeat("a", 17)))
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Equal(http.StatusRequestEntityTooLarge, resp.StatusCode)

	require.NoError(srv.Shutdown(context.Background()))
	require.NoError(<-done)
}
