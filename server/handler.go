// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"net/http"

	"github.com/ava-labs/avalanchego/utils/json"
	"github.com/gorilla/rpc/v2"
)

var jsonContentTypes = []string{
	"application/json",
	"application/json;charset=UTF-8",
}

// NewHandler exposes the exported methods of service as JSON-RPC 2.0 calls
// named "<name>.<method>". Only POST is served.
func NewHandler(name string, service any) (http.Handler, error) {
	newServer := rpc.NewServer()
	codec := json.NewCodec()
	for _, contentType := range jsonContentTypes {
		newServer.RegisterCodec(codec, contentType)
	}
	if err := newServer.RegisterService(service, name); err != nil {
		return nil, err
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "rpc: POST method required", http.StatusMethodNotAllowed)
			return
		}
		newServer.ServeHTTP(w, r)
	}), nil
}
