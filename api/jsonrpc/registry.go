// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"errors"
	"strings"

	"github.com/puzpuzpuz/xsync/v2"
	"golang.org/x/exp/slices"

	"github.com/equation-man/mega-amm-protocol/codec"
)

var ErrUnknownPool = errors.New("unknown pool")

// Registry maps human readable pool names to pool addresses.
type Registry struct {
	names *xsync.MapOf[string, codec.Address]
}

func NewRegistry() *Registry {
	return &Registry{names: xsync.NewMapOf[codec.Address]()}
}

func (r *Registry) Register(name string, pool codec.Address) {
	r.names.Store(strings.ToLower(name), pool)
}

// Resolve accepts a registered name or a hex address.
func (r *Registry) Resolve(s string) (codec.Address, error) {
	if pool, ok := r.names.Load(strings.ToLower(s)); ok {
		return pool, nil
	}
	pool, err := codec.ParseAddress(s)
	if err != nil {
		return codec.EmptyAddress, errors.Join(ErrUnknownPool, err)
	}
	return pool, nil
}

// Names returns every registered name in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.names.Size())
	r.names.Range(func(name string, _ codec.Address) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}
