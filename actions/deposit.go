// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"fmt"

	"github.com/near/borsh-go"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/equation-man/mega-amm-protocol/codec"
	"github.com/equation-man/mega-amm-protocol/consts"
	"github.com/equation-man/mega-amm-protocol/numeric"
	"github.com/equation-man/mega-amm-protocol/pricing"
	"github.com/equation-man/mega-amm-protocol/state"
	"github.com/equation-man/mega-amm-protocol/storage"
)

var (
	_ Action      = (*Deposit)(nil)
	_ codec.Typed = (*DepositResult)(nil)
)

// Deposit adds liquidity sized by the LP shares the actor asks for. The
// first deposit into an empty pool takes MaxX and MaxY as is.
type Deposit struct {
	Pool codec.Address `borsh_skip:"true" json:"pool"`

	// Amount is the LP share target used to size the deposit.
	Amount     uint64 `json:"amount"`
	MaxX       uint64 `json:"maxX"`
	MaxY       uint64 `json:"maxY"`
	Expiration int64  `json:"expiration"`
}

func decodeDeposit(pool codec.Address, payload []byte) (Action, error) {
	d, err := decodePayload[Deposit](payload, DepositLen)
	if err != nil {
		return nil, err
	}
	d.Pool = pool
	return d, nil
}

func (*Deposit) GetTypeID() uint8 {
	return DepositID
}

func (d *Deposit) PoolAddress() codec.Address {
	return d.Pool
}

func (d *Deposit) StateKeys(actor codec.Address, mints [2]codec.Address) state.Keys {
	return sharesKeys(d.Pool, actor, mints)
}

func (d *Deposit) Validate() error {
	if d.Amount == 0 || d.MaxX == 0 || d.MaxY == 0 {
		return fmt.Errorf("%w: amount, max_x and max_y must be positive", ErrInvalidInstructionData)
	}
	return nil
}

func (d *Deposit) Payload() ([]byte, error) {
	return borsh.Serialize(*d)
}

func (d *Deposit) Execute(ctx context.Context, mu state.Mutable, timestamp int64, actor codec.Address) (codec.Typed, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := checkExpiration(timestamp, d.Expiration); err != nil {
		return nil, err
	}
	p, err := getPool(ctx, mu, d.Pool)
	if err != nil {
		return nil, err
	}
	if err := requireState(p.Config, storage.Initialized); err != nil {
		return nil, err
	}

	// Without shares outstanding the curve is priced from scratch.
	current := make([]uint64, consts.MaxAssets)
	x, y := d.MaxX, d.MaxY
	if p.LPSupply > 0 {
		copy(current, p.Reserves)
		x, err = proportional(p.Reserves[0], d.Amount, p.LPSupply)
		if err != nil {
			return nil, err
		}
		y, err = proportional(p.Reserves[1], d.Amount, p.LPSupply)
		if err != nil {
			return nil, err
		}
	}
	if x > d.MaxX {
		return nil, fmt.Errorf("%w: %d > %d", ErrSlippageX, x, d.MaxX)
	}
	if y > d.MaxY {
		return nil, fmt.Errorf("%w: %d > %d", ErrSlippageY, y, d.MaxY)
	}

	curve, err := pricing.NewStableSwap(current, p.Params.Amp, p.Config.Fee)
	if err != nil {
		return nil, err
	}
	next := make([]uint64, consts.MaxAssets)
	for i, amount := range []uint64{x, y} {
		next[i], err = smath.Add64(p.Reserves[i], amount)
		if err != nil {
			return nil, err
		}
	}
	shares, err := curve.Deposit(p.LPSupply, next)
	if err != nil {
		return nil, err
	}
	if shares == 0 {
		return nil, fmt.Errorf("%w: no shares minted", ErrZeroOutput)
	}

	mints := p.Config.Mints()
	if err := storage.Deposit(ctx, mu, d.Pool, mints[0], actor, x); err != nil {
		return nil, err
	}
	if err := storage.Deposit(ctx, mu, d.Pool, mints[1], actor, y); err != nil {
		return nil, err
	}
	if err := storage.MintShares(ctx, mu, d.Pool, actor, shares); err != nil {
		return nil, err
	}
	return &DepositResult{
		X:      x,
		Y:      y,
		Shares: shares,
	}, nil
}

type DepositResult struct {
	X      uint64 `json:"x"`
	Y      uint64 `json:"y"`
	Shares uint64 `json:"shares"`
}

func (*DepositResult) GetTypeID() uint8 {
	return DepositID
}

// proportional returns ceil(reserve * amount / supply).
func proportional(reserve uint64, amount uint64, supply uint64) (uint64, error) {
	num, err := numeric.Mul(numeric.FromUint64(reserve), numeric.FromUint64(amount))
	if err != nil {
		return 0, err
	}
	num, err = numeric.Add(num, numeric.FromUint64(supply-1))
	if err != nil {
		return 0, err
	}
	out, err := numeric.Div(num, numeric.FromUint64(supply))
	if err != nil {
		return 0, err
	}
	return numeric.Narrow(out)
}
