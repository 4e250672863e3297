// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/equation-man/mega-amm-protocol/api"
	"github.com/equation-man/mega-amm-protocol/api/jsonrpc"
	"github.com/equation-man/mega-amm-protocol/pebble"
	"github.com/equation-man/mega-amm-protocol/server"
	"github.com/equation-man/mega-amm-protocol/storage"

	internallog "github.com/equation-man/mega-amm-protocol/internal/logging"
	sstrace "github.com/equation-man/mega-amm-protocol/trace"
)

const version = "v0.1.0"

type node struct {
	log        logging.Logger
	logFactory *internallog.Factory
	tracer     trace.Tracer
	db         *pebble.Database
	service    *jsonrpc.JSONRPCServer
	listener   net.Listener
	server     server.Server

	ready atomic.Bool
}

func newNode(cfg Config) (_ *node, err error) {
	n := &node{}
	defer func() {
		if err != nil {
			n.close()
		}
	}()

	logConfig, err := internallog.NewConfig(cfg.LogDir, cfg.LogLevel, cfg.LogDisplay)
	if err != nil {
		return nil, err
	}
	n.logFactory = internallog.NewFactory(logConfig)
	n.log, err = n.logFactory.Make("stableswapd")
	if err != nil {
		return nil, err
	}

	n.tracer, err = sstrace.New(cfg.traceConfig(version))
	if err != nil {
		return nil, err
	}

	db, dbRegistry, err := storage.Open(pebble.NewDefaultConfig(), cfg.DBDir, "")
	if err != nil {
		return nil, err
	}
	n.db = db

	pools, err := cfg.poolAddresses()
	if err != nil {
		return nil, err
	}
	registry := jsonrpc.NewRegistry()
	for name, pool := range pools {
		registry.Register(name, pool)
	}
	service, serviceRegistry, err := jsonrpc.NewJSONRPCServer(
		api.NewStaticBackend(n.log, n.tracer, db),
		registry,
		cfg.CacheSize,
	)
	if err != nil {
		return nil, err
	}
	n.service = service
	handler, err := jsonrpc.NewHandler(service)
	if err != nil {
		return nil, err
	}

	n.listener, err = net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return nil, err
	}
	n.server, err = server.New(
		n.log,
		n.listener,
		server.Config{
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			ShutdownTimeout:   cfg.ShutdownTimeout,
			MaxRequestSize:    cfg.MaxRequestSize,
			AllowedOrigins:    cfg.AllowedOrigins,
			AllowedHosts:      cfg.AllowedHosts,
		},
		server.RequestLogger{Log: n.log},
	)
	if err != nil {
		return nil, err
	}
	if err := n.server.AddRoute(handler.Handler, api.Base, handler.Path); err != nil {
		return nil, err
	}
	if err := n.server.AddRoute(http.HandlerFunc(n.health), api.Base, "/health"); err != nil {
		return nil, err
	}
	if err := n.server.AddRoute(server.NewMetricsHandler(dbRegistry, serviceRegistry), "metrics", ""); err != nil {
		return nil, err
	}
	n.log.Info("node created",
		zap.String("version", version),
		zap.Stringer("addr", n.listener.Addr()),
		zap.String("db", cfg.DBDir),
		zap.Int("pools", len(pools)),
	)
	return n, nil
}

func (n *node) Addr() net.Addr {
	return n.server.Addr()
}

func (n *node) health(w http.ResponseWriter, _ *http.Request) {
	if !n.ready.Load() {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	_, _ = fmt.Fprintln(w, "ok")
}

// Run serves until ctx is done and then shuts the node down.
func (n *node) Run(ctx context.Context) error {
	defer n.close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n.ready.Store(true)
		return n.server.Dispatch()
	})
	g.Go(func() error {
		<-gctx.Done()
		n.ready.Store(false)
		n.log.Info("shutting down")
		return n.server.Shutdown(context.Background())
	})
	return g.Wait()
}

func (n *node) close() {
	if n.listener != nil {
		// Already closed once the server has shut down.
		_ = n.listener.Close()
	}
	if n.service != nil {
		n.service.Close()
	}
	if n.db != nil {
		if err := n.db.Close(); err != nil && n.log != nil {
			n.log.Warn("failed to close database", zap.Error(err))
		}
	}
	if n.tracer != nil {
		_ = n.tracer.Close()
	}
	if n.logFactory != nil {
		n.logFactory.Close()
	}
}
