// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"context"
	"strings"

	"github.com/equation-man/mega-amm-protocol/api"
	"github.com/equation-man/mega-amm-protocol/pricing"
	"github.com/equation-man/mega-amm-protocol/requester"
)

type JSONRPCClient struct {
	requester *requester.EndpointRequester
}

// NewJSONRPCClient returns a client for the node at uri, for example
// http://localhost:9650.
func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += "/" + api.Base + Endpoint
	req := requester.New(uri, api.Name)
	return &JSONRPCClient{requester: req}
}

func (cli *JSONRPCClient) Ping(ctx context.Context) (bool, error) {
	resp := new(PingReply)
	err := cli.requester.SendRequest(ctx,
		"ping",
		nil,
		resp,
	)
	return resp.Success, err
}

func (cli *JSONRPCClient) Invariant(ctx context.Context, reserves []uint64, amp uint64) (*InvariantReply, error) {
	resp := new(InvariantReply)
	err := cli.requester.SendRequest(
		ctx,
		"invariant",
		&InvariantArgs{
			Reserves: reserves,
			Amp:      amp,
		},
		resp,
	)
	return resp, err
}

func (cli *JSONRPCClient) QuoteSwap(ctx context.Context, args *QuoteSwapArgs) (*pricing.Quote, error) {
	resp := new(QuoteSwapReply)
	err := cli.requester.SendRequest(
		ctx,
		"quoteSwap",
		args,
		resp,
	)
	return &resp.Quote, err
}

func (cli *JSONRPCClient) QuoteDeposit(ctx context.Context, args *QuoteDepositArgs) (uint64, error) {
	resp := new(QuoteDepositReply)
	err := cli.requester.SendRequest(
		ctx,
		"quoteDeposit",
		args,
		resp,
	)
	return resp.Shares, err
}

func (cli *JSONRPCClient) QuoteWithdraw(ctx context.Context, args *QuoteWithdrawArgs) ([]uint64, error) {
	resp := new(QuoteWithdrawReply)
	err := cli.requester.SendRequest(
		ctx,
		"quoteWithdraw",
		args,
		resp,
	)
	return resp.Amounts, err
}

func (cli *JSONRPCClient) Pool(ctx context.Context, pool string) (*PoolReply, error) {
	resp := new(PoolReply)
	err := cli.requester.SendRequest(
		ctx,
		"pool",
		&PoolArgs{Pool: pool},
		resp,
	)
	return resp, err
}

func (cli *JSONRPCClient) Pools(ctx context.Context) ([]string, error) {
	resp := new(PoolsReply)
	err := cli.requester.SendRequest(
		ctx,
		"pools",
		nil,
		resp,
	)
	return resp.Names, err
}
