// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/equation-man/mega-amm-protocol/api"
	"github.com/equation-man/mega-amm-protocol/codec"
	"github.com/equation-man/mega-amm-protocol/pricing"
	"github.com/equation-man/mega-amm-protocol/storage"
	"github.com/equation-man/mega-amm-protocol/trace"
)

const Endpoint = "/stableswap"

// NewHandler mounts server at Endpoint.
func NewHandler(server *JSONRPCServer) (api.Handler, error) {
	handler, err := api.NewJSONRPCHandler(api.Name, server)
	if err != nil {
		return api.Handler{}, err
	}
	return api.Handler{
		Path:    Endpoint,
		Handler: handler,
	}, nil
}

type JSONRPCServer struct {
	backend  api.Backend
	registry *Registry
	cache    *invariantCache
	metrics  *metrics
}

// NewJSONRPCServer returns the service and the registry its metrics are
// registered with.
func NewJSONRPCServer(backend api.Backend, registry *Registry, cacheSize int64) (*JSONRPCServer, *prometheus.Registry, error) {
	if registry == nil {
		registry = NewRegistry()
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	r, m, err := newMetrics()
	if err != nil {
		return nil, nil, err
	}
	cache, err := newInvariantCache(cacheSize, m)
	if err != nil {
		return nil, nil, err
	}
	return &JSONRPCServer{
		backend:  backend,
		registry: registry,
		cache:    cache,
		metrics:  m,
	}, r, nil
}

// Close releases the invariant cache.
func (j *JSONRPCServer) Close() {
	j.cache.close()
}

type PingReply struct {
	Success bool `json:"success"`
}

func (j *JSONRPCServer) Ping(_ *http.Request, _ *struct{}, reply *PingReply) (err error) {
	j.backend.Logger().Info("ping")
	j.metrics.requests.WithLabelValues("ping").Inc()
	reply.Success = true
	return nil
}

type InvariantArgs struct {
	Reserves []uint64 `json:"reserves"`
	Amp      uint64   `json:"amp"`
}

type InvariantReply struct {
	D          uint64 `json:"d"`
	Iterations int    `json:"iterations"`
	Converged  bool   `json:"converged"`
	Cached     bool   `json:"cached"`
}

func (j *JSONRPCServer) Invariant(req *http.Request, args *InvariantArgs, reply *InvariantReply) error {
	_, span := j.backend.Tracer().Start(req.Context(), "JSONRPCServer.Invariant", trace.Curve(args.Reserves, args.Amp))
	defer span.End()
	j.metrics.requests.WithLabelValues("invariant").Inc()

	d, cached, err := j.cache.get(args.Amp, args.Reserves)
	if err != nil {
		return err
	}
	reply.D = d.Value
	reply.Iterations = d.Iterations
	reply.Converged = d.Converged
	reply.Cached = cached
	return nil
}

type QuoteSwapArgs struct {
	// Model selects the pricing model. Zero means StableSwap.
	Model    uint8    `json:"model"`
	Reserves []uint64 `json:"reserves"`
	Amp      uint64   `json:"amp"`
	Fee      uint16   `json:"fee"`
	In       int      `json:"in"`
	Amount   uint64   `json:"amount"`
}

type QuoteSwapReply struct {
	Quote pricing.Quote `json:"quote"`
}

func (j *JSONRPCServer) QuoteSwap(req *http.Request, args *QuoteSwapArgs, reply *QuoteSwapReply) error {
	_, span := j.backend.Tracer().Start(req.Context(), "JSONRPCServer.QuoteSwap", trace.Curve(args.Reserves, args.Amp))
	defer span.End()
	j.metrics.requests.WithLabelValues("quoteSwap").Inc()

	model := args.Model
	if model == pricing.InvalidModelID {
		model = pricing.StableSwapID
	}
	m, err := pricing.Load(model, args.Reserves, args.Amp, args.Fee)
	if err != nil {
		return err
	}
	quote, err := m.Quote(args.In, args.Amount)
	if err != nil {
		return err
	}
	reply.Quote = *quote
	return nil
}

type QuoteDepositArgs struct {
	Reserves    []uint64 `json:"reserves"`
	Amp         uint64   `json:"amp"`
	Supply      uint64   `json:"supply"`
	NewReserves []uint64 `json:"newReserves"`
}

type QuoteDepositReply struct {
	Shares uint64 `json:"shares"`
}

func (j *JSONRPCServer) QuoteDeposit(req *http.Request, args *QuoteDepositArgs, reply *QuoteDepositReply) error {
	_, span := j.backend.Tracer().Start(req.Context(), "JSONRPCServer.QuoteDeposit", trace.Curve(args.Reserves, args.Amp))
	defer span.End()
	j.metrics.requests.WithLabelValues("quoteDeposit").Inc()

	curve, err := pricing.NewStableSwap(args.Reserves, args.Amp, 0)
	if err != nil {
		return err
	}
	reply.Shares, err = curve.Deposit(args.Supply, args.NewReserves)
	return err
}

type QuoteWithdrawArgs struct {
	Reserves []uint64 `json:"reserves"`
	Amp      uint64   `json:"amp"`
	Supply   uint64   `json:"supply"`
	Burn     uint64   `json:"burn"`
	// Mode is pricing.BalancedModeID or pricing.ImbalancedModeID.
	Mode  uint8 `json:"mode"`
	Index int   `json:"index"`
}

type QuoteWithdrawReply struct {
	Amounts []uint64 `json:"amounts"`
}

func (j *JSONRPCServer) QuoteWithdraw(req *http.Request, args *QuoteWithdrawArgs, reply *QuoteWithdrawReply) error {
	_, span := j.backend.Tracer().Start(req.Context(), "JSONRPCServer.QuoteWithdraw", trace.Curve(args.Reserves, args.Amp))
	defer span.End()
	j.metrics.requests.WithLabelValues("quoteWithdraw").Inc()

	curve, err := pricing.NewStableSwap(args.Reserves, args.Amp, 0)
	if err != nil {
		return err
	}
	var d uint64
	if args.Mode == pricing.ImbalancedModeID {
		res, _, err := j.cache.get(args.Amp, args.Reserves)
		if err != nil {
			return err
		}
		d = res.Value
	}
	mode, err := pricing.ModeFromID(args.Mode, d, args.Amp, args.Index)
	if err != nil {
		return err
	}
	reply.Amounts, err = curve.Withdraw(mode, args.Burn, args.Supply)
	return err
}

type PoolArgs struct {
	// Pool is a registered name or a hex address.
	Pool string `json:"pool"`
}

type PoolReply struct {
	Pool      *storage.Pool `json:"pool"`
	State     string        `json:"state"`
	Invariant uint64        `json:"invariant"`
}

func (j *JSONRPCServer) Pool(req *http.Request, args *PoolArgs, reply *PoolReply) error {
	ctx, span := j.backend.Tracer().Start(req.Context(), "JSONRPCServer.Pool")
	defer span.End()
	j.metrics.requests.WithLabelValues("pool").Inc()

	address, err := j.registry.Resolve(args.Pool)
	if err != nil {
		return err
	}
	im, err := j.backend.ImmutableState(ctx)
	if err != nil {
		return err
	}
	pool, err := storage.GetPool(ctx, im, address)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnknownPool, address, err)
	}
	d, _, err := j.cache.get(pool.Params.Amp, pool.Reserves)
	if err != nil {
		j.backend.Logger().Debug("invariant unavailable",
			zap.Stringer("pool", address),
			zap.Error(err),
		)
	} else {
		reply.Invariant = d.Value
	}
	reply.Pool = pool
	reply.State = pool.Config.State.String()
	return nil
}

type PoolsReply struct {
	Names []string `json:"names"`
}

func (j *JSONRPCServer) Pools(_ *http.Request, _ *struct{}, reply *PoolsReply) error {
	j.metrics.requests.WithLabelValues("pools").Inc()
	reply.Names = j.registry.Names()
	return nil
}

// Register names pool for later lookups by Pool.
func (j *JSONRPCServer) Register(name string, pool codec.Address) {
	j.registry.Register(name, pool)
}
