// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/stretchr/testify/require"

	"github.com/equation-man/mega-amm-protocol/codec"
	"github.com/equation-man/mega-amm-protocol/pebble"
	"github.com/equation-man/mega-amm-protocol/state"
)

var (
	mintX = codec.Address{0x11}
	mintY = codec.Address{0x22}
	alice = codec.Address{0xA1}
)

func TestKeys(t *testing.T) {
	require := require.New(t)

	pool := PoolAddress(7, mintX, mintY)
	require.Equal(pool, PoolAddress(7, mintX, mintY))
	require.NotEqual(pool, PoolAddress(8, mintX, mintY))
	require.NotEqual(pool, PoolAddress(7, mintY, mintX))
	require.NotEqual(pool, LPMint(pool))

	k := PoolConfigKey(pool)
	require.Len(k, 1+codec.AddressLen+2)
	require.Equal(poolConfigPrefix, k[0])
	require.Equal(pool[:], k[1:1+codec.AddressLen])
	require.Equal([]byte{0, 1}, k[1+codec.AddressLen:])

	require.NotEqual(PoolConfigKey(pool), PoolParamsKey(pool))
	require.NotEqual(PoolConfigKey(pool), LPSupplyKey(pool))
	require.NotEqual(VaultKey(pool, mintX), VaultKey(pool, mintY))
	require.Len(BalanceKey(mintX, alice), 1+2*codec.AddressLen+2)
}

func seedPool(t *testing.T, mu state.Mutable) codec.Address {
	require := require.New(t)
	ctx := context.Background()

	pool := PoolAddress(1, mintX, mintY)
	var c Config
	require.NoError(c.SetInner(1, alice, mintX, mintY, 30, 255))
	require.NoError(SetConfig(ctx, mu, pool, &c))
	require.NoError(SetParams(ctx, mu, pool, &Params{Amp: 100, LPDecimals: 6}))
	return pool
}

func TestTransfers(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mu := state.NewInMemoryStore()
	pool := seedPool(t, mu)

	require.NoError(SetBalance(ctx, mu, mintX, alice, 1_000))
	require.NoError(Deposit(ctx, mu, pool, mintX, alice, 600))
	require.ErrorIs(Deposit(ctx, mu, pool, mintX, alice, 401), ErrInsufficientBalance)

	balance, err := GetBalance(ctx, mu, mintX, alice)
	require.NoError(err)
	require.Equal(uint64(400), balance)
	vault, err := GetVault(ctx, mu, pool, mintX)
	require.NoError(err)
	require.Equal(uint64(600), vault)

	require.NoError(Payout(ctx, mu, pool, mintX, alice, 100))
	require.ErrorIs(Payout(ctx, mu, pool, mintX, alice, 501), ErrInsufficientBalance)
	balance, err = GetBalance(ctx, mu, mintX, alice)
	require.NoError(err)
	require.Equal(uint64(500), balance)

	reserves, err := GetReserves(ctx, mu, pool, &Config{MintX: mintX, MintY: mintY})
	require.NoError(err)
	require.Equal([]uint64{500, 0}, reserves)
}

func TestShares(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mu := state.NewInMemoryStore()
	pool := seedPool(t, mu)

	require.NoError(MintShares(ctx, mu, pool, alice, 2_000))
	require.NoError(BurnShares(ctx, mu, pool, alice, 500))
	require.ErrorIs(BurnShares(ctx, mu, pool, alice, 1_501), ErrInsufficientBalance)

	supply, err := GetLPSupply(ctx, mu, pool)
	require.NoError(err)
	require.Equal(uint64(1_500), supply)
	shares, err := GetBalance(ctx, mu, LPMint(pool), alice)
	require.NoError(err)
	require.Equal(uint64(1_500), shares)

	p, err := GetPool(ctx, mu, pool)
	require.NoError(err)
	require.Equal(pool, p.Address)
	require.Equal(LPMint(pool), p.LPMint)
	require.Equal(uint64(1_500), p.LPSupply)
	require.Equal(uint64(100), p.Params.Amp)
	require.Equal([]uint64{0, 0}, p.Reserves)
}

func TestMissingPool(t *testing.T) {
	_, err := GetPool(context.Background(), state.NewInMemoryStore(), PoolAddress(1, mintX, mintY))
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestCorruptCounter(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mu := state.NewInMemoryStore()
	pool := seedPool(t, mu)

	require.NoError(mu.Insert(ctx, LPSupplyKey(pool), []byte{1, 2, 3}))
	_, err := GetLPSupply(ctx, mu, pool)
	require.ErrorIs(err, ErrInvalidAccountData)
}

func TestOpen(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()

	db, registry, err := Open(pebble.NewDefaultConfig(), dir, "")
	require.NoError(err)
	require.NotNil(registry)
	pool := seedPool(t, db)
	require.NoError(db.Close())

	db, _, err = Open(pebble.NewDefaultConfig(), dir, "")
	require.NoError(err)
	defer func() {
		require.NoError(db.Close())
	}()
	c, err := GetConfig(ctx, db, pool)
	require.NoError(err)
	require.Equal(mintX, c.MintX)
}
