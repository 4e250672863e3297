// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"fmt"

	"github.com/near/borsh-go"

	"github.com/equation-man/mega-amm-protocol/codec"
	"github.com/equation-man/mega-amm-protocol/pricing"
	"github.com/equation-man/mega-amm-protocol/state"
	"github.com/equation-man/mega-amm-protocol/storage"
)

var (
	_ Action      = (*Withdraw)(nil)
	_ codec.Typed = (*WithdrawResult)(nil)
)

// Withdraw burns LP shares for a proportional share of both vaults.
type Withdraw struct {
	Pool codec.Address `borsh_skip:"true" json:"pool"`

	// Amount is the number of LP shares to burn.
	Amount     uint64 `json:"amount"`
	MinX       uint64 `json:"minX"`
	MinY       uint64 `json:"minY"`
	Expiration int64  `json:"expiration"`
}

func decodeWithdraw(pool codec.Address, payload []byte) (Action, error) {
	w, err := decodePayload[Withdraw](payload, WithdrawLen)
	if err != nil {
		return nil, err
	}
	w.Pool = pool
	return w, nil
}

func (*Withdraw) GetTypeID() uint8 {
	return WithdrawID
}

func (w *Withdraw) PoolAddress() codec.Address {
	return w.Pool
}

func (w *Withdraw) StateKeys(actor codec.Address, mints [2]codec.Address) state.Keys {
	return sharesKeys(w.Pool, actor, mints)
}

func (w *Withdraw) Validate() error {
	if w.Amount == 0 || w.MinX == 0 || w.MinY == 0 {
		return fmt.Errorf("%w: amount, min_x and min_y must be positive", ErrInvalidInstructionData)
	}
	return nil
}

func (w *Withdraw) Payload() ([]byte, error) {
	return borsh.Serialize(*w)
}

func (w *Withdraw) Execute(ctx context.Context, mu state.Mutable, timestamp int64, actor codec.Address) (codec.Typed, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if err := checkExpiration(timestamp, w.Expiration); err != nil {
		return nil, err
	}
	p, err := getPool(ctx, mu, w.Pool)
	if err != nil {
		return nil, err
	}
	if err := requireState(p.Config, storage.Initialized, storage.WithdrawOnly); err != nil {
		return nil, err
	}

	curve, err := pricing.NewStableSwap(p.Reserves, p.Params.Amp, p.Config.Fee)
	if err != nil {
		return nil, err
	}
	out, err := curve.Withdraw(pricing.Balanced{}, w.Amount, p.LPSupply)
	if err != nil {
		return nil, err
	}
	if out[0] < w.MinX || out[1] < w.MinY {
		return nil, fmt.Errorf("%w: paying (%d, %d), minimum (%d, %d)", ErrSlippage, out[0], out[1], w.MinX, w.MinY)
	}

	if err := storage.BurnShares(ctx, mu, w.Pool, actor, w.Amount); err != nil {
		return nil, err
	}
	for i, mint := range p.Config.Mints() {
		if err := storage.Payout(ctx, mu, w.Pool, mint, actor, out[i]); err != nil {
			return nil, err
		}
	}
	return &WithdrawResult{
		X:      out[0],
		Y:      out[1],
		Burned: w.Amount,
	}, nil
}

type WithdrawResult struct {
	X      uint64 `json:"x"`
	Y      uint64 `json:"y"`
	Burned uint64 `json:"burned"`
}

func (*WithdrawResult) GetTypeID() uint8 {
	return WithdrawID
}
