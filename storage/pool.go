// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/equation-man/mega-amm-protocol/codec"
	"github.com/equation-man/mega-amm-protocol/consts"
	"github.com/equation-man/mega-amm-protocol/state"
)

// Pool is a read-only snapshot of everything stored for one pool.
type Pool struct {
	Address  codec.Address `json:"address"`
	Config   *Config       `json:"config"`
	Params   *Params       `json:"params"`
	LPMint   codec.Address `json:"lpMint"`
	Reserves []uint64      `json:"reserves"`
	LPSupply uint64        `json:"lpSupply"`
}

func GetConfig(ctx context.Context, im state.Immutable, pool codec.Address) (*Config, error) {
	v, err := im.GetValue(ctx, PoolConfigKey(pool))
	if err != nil {
		return nil, err
	}
	return UnmarshalConfig(v)
}

func SetConfig(ctx context.Context, mu state.Mutable, pool codec.Address, c *Config) error {
	v, err := c.Marshal()
	if err != nil {
		return err
	}
	return mu.Insert(ctx, PoolConfigKey(pool), v)
}

func GetParams(ctx context.Context, im state.Immutable, pool codec.Address) (*Params, error) {
	v, err := im.GetValue(ctx, PoolParamsKey(pool))
	if err != nil {
		return nil, err
	}
	return UnmarshalParams(v)
}

func SetParams(ctx context.Context, mu state.Mutable, pool codec.Address, p *Params) error {
	v, err := p.Marshal()
	if err != nil {
		return err
	}
	return mu.Insert(ctx, PoolParamsKey(pool), v)
}

// GetVault returns the pool's balance of mint. A vault that was never
// written holds 0.
func GetVault(ctx context.Context, im state.Immutable, pool codec.Address, mint codec.Address) (uint64, error) {
	return getUint64(ctx, im, VaultKey(pool, mint))
}

func SetVault(ctx context.Context, mu state.Mutable, pool codec.Address, mint codec.Address, amount uint64) error {
	return setUint64(ctx, mu, VaultKey(pool, mint), amount)
}

func GetLPSupply(ctx context.Context, im state.Immutable, pool codec.Address) (uint64, error) {
	return getUint64(ctx, im, LPSupplyKey(pool))
}

func SetLPSupply(ctx context.Context, mu state.Mutable, pool codec.Address, supply uint64) error {
	return setUint64(ctx, mu, LPSupplyKey(pool), supply)
}

func GetBalance(ctx context.Context, im state.Immutable, mint codec.Address, owner codec.Address) (uint64, error) {
	return getUint64(ctx, im, BalanceKey(mint, owner))
}

func SetBalance(ctx context.Context, mu state.Mutable, mint codec.Address, owner codec.Address, balance uint64) error {
	return setUint64(ctx, mu, BalanceKey(mint, owner), balance)
}

// GetReserves returns the pool's vault balances in mint order.
func GetReserves(ctx context.Context, im state.Immutable, pool codec.Address, c *Config) ([]uint64, error) {
	mints := c.Mints()
	reserves := make([]uint64, len(mints))
	for i, mint := range mints {
		var err error
		reserves[i], err = GetVault(ctx, im, pool, mint)
		if err != nil {
			return nil, err
		}
	}
	return reserves, nil
}

func GetPool(ctx context.Context, im state.Immutable, pool codec.Address) (*Pool, error) {
	c, err := GetConfig(ctx, im, pool)
	if err != nil {
		return nil, err
	}
	p, err := GetParams(ctx, im, pool)
	if err != nil {
		return nil, err
	}
	reserves, err := GetReserves(ctx, im, pool, c)
	if err != nil {
		return nil, err
	}
	supply, err := GetLPSupply(ctx, im, pool)
	if err != nil {
		return nil, err
	}
	return &Pool{
		Address:  pool,
		Config:   c,
		Params:   p,
		LPMint:   LPMint(pool),
		Reserves: reserves,
		LPSupply: supply,
	}, nil
}

// Deposit moves amount of mint from owner into the pool's vault.
func Deposit(ctx context.Context, mu state.Mutable, pool codec.Address, mint codec.Address, owner codec.Address, amount uint64) error {
	if err := SubBalance(ctx, mu, mint, owner, amount); err != nil {
		return err
	}
	vault, err := GetVault(ctx, mu, pool, mint)
	if err != nil {
		return err
	}
	vault, err = smath.Add64(vault, amount)
	if err != nil {
		return err
	}
	return SetVault(ctx, mu, pool, mint, vault)
}

// Payout moves amount of mint from the pool's vault to owner.
func Payout(ctx context.Context, mu state.Mutable, pool codec.Address, mint codec.Address, owner codec.Address, amount uint64) error {
	vault, err := GetVault(ctx, mu, pool, mint)
	if err != nil {
		return err
	}
	if vault < amount {
		return fmt.Errorf("%w: vault holds %d, paying %d", ErrInsufficientBalance, vault, amount)
	}
	if err := SetVault(ctx, mu, pool, mint, vault-amount); err != nil {
		return err
	}
	return AddBalance(ctx, mu, mint, owner, amount)
}

// MintShares credits owner with LP shares and grows the supply.
func MintShares(ctx context.Context, mu state.Mutable, pool codec.Address, owner codec.Address, amount uint64) error {
	supply, err := GetLPSupply(ctx, mu, pool)
	if err != nil {
		return err
	}
	supply, err = smath.Add64(supply, amount)
	if err != nil {
		return err
	}
	if err := SetLPSupply(ctx, mu, pool, supply); err != nil {
		return err
	}
	return AddBalance(ctx, mu, LPMint(pool), owner, amount)
}

// BurnShares debits owner's LP shares and shrinks the supply.
func BurnShares(ctx context.Context, mu state.Mutable, pool codec.Address, owner codec.Address, amount uint64) error {
	if err := SubBalance(ctx, mu, LPMint(pool), owner, amount); err != nil {
		return err
	}
	supply, err := GetLPSupply(ctx, mu, pool)
	if err != nil {
		return err
	}
	supply, err = smath.Sub(supply, amount)
	if err != nil {
		return err
	}
	return SetLPSupply(ctx, mu, pool, supply)
}

func AddBalance(ctx context.Context, mu state.Mutable, mint codec.Address, owner codec.Address, amount uint64) error {
	balance, err := GetBalance(ctx, mu, mint, owner)
	if err != nil {
		return err
	}
	balance, err = smath.Add64(balance, amount)
	if err != nil {
		return err
	}
	return SetBalance(ctx, mu, mint, owner, balance)
}

func SubBalance(ctx context.Context, mu state.Mutable, mint codec.Address, owner codec.Address, amount uint64) error {
	balance, err := GetBalance(ctx, mu, mint, owner)
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("%w: %s holds %d of %s, needs %d", ErrInsufficientBalance, owner, balance, mint, amount)
	}
	return SetBalance(ctx, mu, mint, owner, balance-amount)
}

func getUint64(ctx context.Context, im state.Immutable, key []byte) (uint64, error) {
	v, err := im.GetValue(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	p := codec.NewReader(v, consts.Uint64Len)
	out := p.UnpackUint64(false)
	if err := p.Done(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidAccountData, err)
	}
	return out, nil
}

func setUint64(ctx context.Context, mu state.Mutable, key []byte, value uint64) error {
	p := codec.NewWriter(consts.Uint64Len, consts.Uint64Len)
	p.PackUint64(value)
	if err := p.Err(); err != nil {
		return err
	}
	return mu.Insert(ctx, key, p.Bytes())
}
