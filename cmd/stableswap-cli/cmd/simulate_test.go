// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/equation-man/mega-amm-protocol/pebble"
	"github.com/equation-man/mega-amm-protocol/state"
	"github.com/equation-man/mega-amm-protocol/storage"
)

const lifecyclePlan = `
name: lifecycle
description: deposit, swap and withdraw against a fresh pool
actor: alice
mint_x: usdc
mint_y: usdt
timestamp: 1000
steps:
  - action: fund
    params: {mint: x, amount: 2000000}
  - action: fund
    params: {mint: y, amount: 2000000}
  - action: initialize
    params: {seed: 1, fee: 30, amp: 100, authority: admin, lp_decimals: 6}
    require:
      - {field: amp, operator: "==", value: "100"}
  - description: genesis deposit takes the maximums
    action: deposit
    params: {amount: 1, max_x: 1000000, max_y: 1000000, expiration: 2000}
    require:
      - {field: shares, operator: "==", value: "2000000"}
  - action: deposit
    params: {amount: 200000, max_x: 100000, max_y: 100000, expiration: 2000}
    require:
      - {field: x, operator: "==", value: "100000"}
      - {field: shares, operator: "==", value: "200000"}
  - action: swap
    params: {amount: 10000, min: 9970, expiration: 2000, is_x: true}
    require:
      - {field: out, operator: "==", value: "9970"}
      - {field: fee, operator: "==", value: "29"}
  - action: withdraw
    params: {amount: 220000, min_x: 1, min_y: 1, expiration: 2000}
    require:
      - {field: x, operator: "==", value: "111000"}
      - {field: y, operator: "==", value: "109003"}
  - action: withdraw_one
    params: {amount: 100000, min: 1, expiration: 2000, is_x: 1}
    require:
      - {field: amount, operator: "==", value: "98993"}
  - action: pool
    require:
      - {field: reserve_x, operator: "==", value: "900007"}
      - {field: reserve_y, operator: "==", value: "981027"}
      - {field: supply, operator: "==", value: "1880000"}
  - description: bob holds no shares
    action: withdraw
    actor: bob
    params: {amount: 1000, min_x: 1, min_y: 1, expiration: 2000}
    error: insufficient balance
  - description: alice is not the authority
    action: set_state
    params: {state: disabled}
    error: not the pool authority
  - action: set_state
    actor: admin
    params: {state: withdraw-only}
    require:
      - {field: previous, operator: "==", value: "1"}
      - {field: current, operator: "==", value: "3"}
  - action: balance
    params: {mint: lp}
    require:
      - {field: balance, operator: "==", value: "1880000"}
`

func runPlan(t *testing.T, db state.Mutable, raw string) ([]*Response, error) {
	plan, err := unmarshalPlan([]byte(raw))
	require.NoError(t, err)
	require.NoError(t, plan.Verify())
	return newSimulator(logging.NoLog{}, db, plan).Run(context.Background())
}

func TestSimulateLifecycle(t *testing.T) {
	require := require.New(t)

	responses, err := runPlan(t, state.NewInMemoryStore(), lifecyclePlan)
	require.NoError(err)
	require.Len(responses, 13)
	require.Equal(uint64(9_970), responses[5].Result["out"])
	require.Contains(responses[9].Error, "insufficient balance")

	var out bytes.Buffer
	require.NoError(responses[5].Print(&out))
	require.JSONEq(`{"id":5,"action":"swap","result":{"in":10000,"out":9970,"fee":29}}`, out.String())
}

func TestSimulateFailedAssertion(t *testing.T) {
	require := require.New(t)

	plan := `
actor: alice
mint_x: usdc
mint_y: usdt
steps:
  - action: fund
    params: {mint: x, amount: 5}
    require:
      - {field: balance, operator: ">", value: "5"}
`
	responses, err := runPlan(t, state.NewInMemoryStore(), plan)
	require.ErrorIs(err, ErrAssertionFailed)
	require.Len(responses, 1)
}

func TestSimulateUnexpectedSuccess(t *testing.T) {
	plan := `
actor: alice
mint_x: usdc
mint_y: usdt
steps:
  - action: fund
    params: {mint: x, amount: 5}
    error: anything
`
	_, err := runPlan(t, state.NewInMemoryStore(), plan)
	require.ErrorIs(t, err, ErrAssertionFailed)
}

func TestSimulateRequiresPool(t *testing.T) {
	plan := `
actor: alice
mint_x: usdc
mint_y: usdt
steps:
  - action: swap
    params: {amount: 5, min: 1}
`
	_, err := runPlan(t, state.NewInMemoryStore(), plan)
	require.ErrorIs(t, err, ErrInvalidStep)
}

func TestSimulatePersists(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	db, _, err := storage.Open(pebble.NewDefaultConfig(), dir, "simulator")
	require.NoError(err)
	_, err = runPlan(t, db, lifecyclePlan)
	require.NoError(err)
	require.NoError(db.Close())

	db, _, err = storage.Open(pebble.NewDefaultConfig(), dir, "simulator")
	require.NoError(err)
	defer db.Close()
	balance, err := storage.GetBalance(context.Background(), db, nameToAddress("usdc"), nameToAddress("alice"))
	require.NoError(err)
	require.Equal(uint64(1_099_993), balance)
}

func TestParams(t *testing.T) {
	require := require.New(t)

	p := params{
		"int":    7,
		"float":  float64(8),
		"frac":   1.5,
		"str":    "9",
		"neg":    -1,
		"flag":   true,
		"bitOne": 1,
		"bitTwo": 2,
	}
	for key, expected := range map[string]uint64{"int": 7, "float": 8, "str": 9, "missing": 0} {
		v, err := p.uint(key, false)
		require.NoError(err)
		require.Equal(expected, v)
	}
	for _, key := range []string{"frac", "neg", "missing"} {
		_, err := p.uint(key, true)
		require.ErrorIs(err, ErrInvalidParam)
	}

	b, err := p.bool("flag")
	require.NoError(err)
	require.True(b)
	b, err = p.bool("bitOne")
	require.NoError(err)
	require.True(b)
	_, err = p.bool("bitTwo")
	require.ErrorIs(err, ErrInvalidParam)
}

func TestParseAmmState(t *testing.T) {
	require := require.New(t)

	s, err := parseAmmState("Withdraw-Only")
	require.NoError(err)
	require.Equal(storage.WithdrawOnly, s)
	s, err = parseAmmState("2")
	require.NoError(err)
	require.Equal(storage.Disabled, s)
	_, err = parseAmmState("paused")
	require.ErrorIs(err, ErrInvalidParam)
}
