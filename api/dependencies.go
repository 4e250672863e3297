// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/equation-man/mega-amm-protocol/state"
)

// Backend is what the API reads pools from.
type Backend interface {
	Logger() logging.Logger
	Tracer() trace.Tracer
	ImmutableState(ctx context.Context) (state.Immutable, error)
}

var _ Backend = (*StaticBackend)(nil)

// StaticBackend serves a fixed store.
type StaticBackend struct {
	log    logging.Logger
	tracer trace.Tracer
	store  state.Immutable
}

func NewStaticBackend(log logging.Logger, tracer trace.Tracer, store state.Immutable) *StaticBackend {
	return &StaticBackend{
		log:    log,
		tracer: tracer,
		store:  store,
	}
}

func (b *StaticBackend) Logger() logging.Logger {
	return b.log
}

func (b *StaticBackend) Tracer() trace.Tracer {
	return b.tracer
}

func (b *StaticBackend) ImmutableState(context.Context) (state.Immutable, error) {
	return b.store, nil
}
