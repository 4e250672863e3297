// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/equation-man/mega-amm-protocol/api/jsonrpc"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Query a stableswapd node",
}

func newClient(cmd *cobra.Command) (*jsonrpc.JSONRPCClient, error) {
	endpoint, err := getConfigValue(cmd, "endpoint", true)
	if err != nil {
		return nil, fmt.Errorf("failed to get endpoint: %w", err)
	}
	return jsonrpc.NewJSONRPCClient(endpoint), nil
}

var rpcPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the node answers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cli, err := newClient(cmd)
		if err != nil {
			return err
		}
		ok, err := cli.Ping(cmd.Context())
		if err != nil {
			return err
		}
		return printValue(cmd, pingCmdResponse{Success: ok})
	},
}

type pingCmdResponse struct {
	Success bool `json:"success"`
}

func (r pingCmdResponse) String() string {
	if r.Success {
		return "pong"
	}
	return "no response"
}

var rpcPoolCmd = &cobra.Command{
	Use:   "pool [name or address]",
	Short: "Read a pool from the node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := newClient(cmd)
		if err != nil {
			return err
		}
		reply, err := cli.Pool(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printValue(cmd, poolCmdResponse{
			PoolReply: reply,
			Decimals:  getDecimals(cmd),
		})
	},
}

type poolCmdResponse struct {
	*jsonrpc.PoolReply
	Decimals int32 `json:"-"`
}

func (r poolCmdResponse) String() string {
	p := r.Pool
	var b strings.Builder
	fmt.Fprintf(&b, "pool:      %s\n", p.Address)
	fmt.Fprintf(&b, "state:     %s\n", r.State)
	fmt.Fprintf(&b, "mints:     %s / %s\n", p.Config.MintX, p.Config.MintY)
	fmt.Fprintf(&b, "reserves:  %s\n", formatAmounts(p.Reserves, r.Decimals))
	fmt.Fprintf(&b, "amp:       %d\n", p.Params.Amp)
	fmt.Fprintf(&b, "fee:       %dbp\n", p.Config.Fee)
	fmt.Fprintf(&b, "lp supply: %d\n", p.LPSupply)
	fmt.Fprintf(&b, "invariant: %s", formatAmount(r.Invariant, r.Decimals))
	return b.String()
}

var rpcPoolsCmd = &cobra.Command{
	Use:   "pools",
	Short: "List the pool names the node knows",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cli, err := newClient(cmd)
		if err != nil {
			return err
		}
		names, err := cli.Pools(cmd.Context())
		if err != nil {
			return err
		}
		return printValue(cmd, poolsCmdResponse{Names: names})
	},
}

type poolsCmdResponse struct {
	Names []string `json:"names"`
}

func (r poolsCmdResponse) String() string {
	return strings.Join(r.Names, "\n")
}

var rpcInvariantCmd = &cobra.Command{
	Use:   "invariant",
	Short: "Solve the invariant on the node",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cli, err := newClient(cmd)
		if err != nil {
			return err
		}
		decimals := getDecimals(cmd)
		reserves, amp, err := curveFlags(cmd, decimals)
		if err != nil {
			return err
		}
		reply, err := cli.Invariant(cmd.Context(), reserves, amp)
		if err != nil {
			return err
		}
		return printValue(cmd, rpcInvariantCmdResponse{
			InvariantReply: reply,
			Decimals:       decimals,
		})
	},
}

type rpcInvariantCmdResponse struct {
	*jsonrpc.InvariantReply
	Decimals int32 `json:"-"`
}

func (r rpcInvariantCmdResponse) String() string {
	return fmt.Sprintf("D=%s iterations=%d converged=%t cached=%t",
		formatAmount(r.D, r.Decimals), r.Iterations, r.Converged, r.Cached)
}

func init() {
	addCurveFlags(rpcInvariantCmd)
	rpcCmd.AddCommand(rpcPingCmd, rpcPoolCmd, rpcPoolsCmd, rpcInvariantCmd)
	rootCmd.AddCommand(rpcCmd)
}
