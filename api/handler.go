// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"net/http"

	"github.com/equation-man/mega-amm-protocol/server"
)

const (
	Name = "stableswap"
	// Base is the URL prefix every handler is mounted under.
	Base = "ext"
)

type Handler struct {
	Path    string
	Handler http.Handler
}

func NewJSONRPCHandler(name string, service any) (http.Handler, error) {
	return server.NewHandler(name, service)
}
