// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// DefaultMaxRequestSize bounds a request body when Config leaves it unset.
const DefaultMaxRequestSize = 1 << 20

var _ Server = (*server)(nil)

type PathAdder interface {
	// AddRoute registers a route to a handler.
	AddRoute(handler http.Handler, base, endpoint string) error
}

// Server maintains the HTTP router
type Server interface {
	PathAdder
	// Addr is the address the server listens on.
	Addr() net.Addr
	// Dispatch serves until Shutdown is called, then returns nil.
	Dispatch() error
	// Shutdown drains open requests for at most the shutdown timeout.
	Shutdown(ctx context.Context) error
}

// Config holds the HTTP limits and the origin and host allow lists. Zero
// timeouts are unbounded.
type Config struct {
	ReadTimeout       time.Duration `json:"readTimeout"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout"`
	WriteTimeout      time.Duration `json:"writeTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout"`
	ShutdownTimeout   time.Duration `json:"shutdownTimeout"`
	MaxRequestSize    int64         `json:"maxRequestSize"`

	AllowedOrigins []string `json:"allowedOrigins"`
	AllowedHosts   []string `json:"allowedHosts"`
}

type server struct {
	log             logging.Logger
	shutdownTimeout time.Duration

	// Maps endpoints to handlers
	router *router

	srv      *http.Server
	listener net.Listener
}

// New builds a server on listener. Requests pass through wrappers, then
// gzip, CORS and host filtering before reaching the router.
func New(
	log logging.Logger,
	listener net.Listener,
	config Config,
	wrappers ...Wrapper,
) (Server, error) {
	maxSize := config.MaxRequestSize
	if maxSize <= 0 {
		maxSize = DefaultMaxRequestSize
	}

	router := newRouter()
	allowedHostsHandler := filterInvalidHosts(router, config.AllowedHosts)
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   config.AllowedOrigins,
		AllowCredentials: true,
	}).Handler(allowedHostsHandler)
	gzipHandler := gziphandler.GzipHandler(corsHandler)
	var handler http.Handler = http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxSize)
			gzipHandler.ServeHTTP(w, r)
		},
	)

	for _, wrapper := range wrappers {
		handler = wrapper.WrapHandler(handler)
	}

	log.Info("API created",
		zap.Stringer("addr", listener.Addr()),
		zap.Strings("allowedOrigins", config.AllowedOrigins),
		zap.Strings("allowedHosts", config.AllowedHosts),
	)

	return &server{
		log:             log,
		shutdownTimeout: config.ShutdownTimeout,
		router:          router,
		srv: &http.Server{
			Handler:           handler,
			ReadTimeout:       config.ReadTimeout,
			ReadHeaderTimeout: config.ReadHeaderTimeout,
			WriteTimeout:      config.WriteTimeout,
			IdleTimeout:       config.IdleTimeout,
		},
		listener: listener,
	}, nil
}

func (s *server) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *server) Dispatch() error {
	err := s.srv.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// AddRoute mounts handler at /base followed by endpoint.
func (s *server) AddRoute(handler http.Handler, base, endpoint string) error {
	url := "/" + base
	s.log.Info("adding route",
		zap.String("url", url),
		zap.String("endpoint", endpoint),
	)
	return s.router.AddRouter(url, endpoint, handler)
}

func (s *server) Shutdown(ctx context.Context) error {
	if s.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}
	err := s.srv.Shutdown(ctx)

	// If shutdown times out, make sure the server is still shutdown.
	_ = s.srv.Close()
	return err
}
