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
	_ Action      = (*WithdrawOne)(nil)
	_ codec.Typed = (*WithdrawOneResult)(nil)
)

// WithdrawOne burns LP shares for a single asset. The payout is priced on
// the curve and 1% of it stays in the pool.
type WithdrawOne struct {
	Pool codec.Address `borsh_skip:"true" json:"pool"`

	Amount     uint64 `json:"amount"`
	Min        uint64 `json:"min"`
	Expiration int64  `json:"expiration"`
	// IsX is 1 to be paid in X and 0 to be paid in Y.
	IsX uint8 `json:"isX"`
}

func decodeWithdrawOne(pool codec.Address, payload []byte) (Action, error) {
	w, err := decodePayload[WithdrawOne](payload, WithdrawOneLen)
	if err != nil {
		return nil, err
	}
	w.Pool = pool
	return w, nil
}

func (*WithdrawOne) GetTypeID() uint8 {
	return WithdrawOneID
}

func (w *WithdrawOne) PoolAddress() codec.Address {
	return w.Pool
}

func (w *WithdrawOne) StateKeys(actor codec.Address, mints [2]codec.Address) state.Keys {
	return sharesKeys(w.Pool, actor, mints)
}

func (w *WithdrawOne) Validate() error {
	if w.Amount == 0 || w.Min == 0 {
		return fmt.Errorf("%w: amount and min must be positive", ErrInvalidInstructionData)
	}
	_, err := boolFlag(w.IsX)
	return err
}

func (w *WithdrawOne) Payload() ([]byte, error) {
	return borsh.Serialize(*w)
}

func (w *WithdrawOne) Execute(ctx context.Context, mu state.Mutable, timestamp int64, actor codec.Address) (codec.Typed, error) {
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
	// Burning every share single-sided would zero the invariant and strand
	// the other vault for the next depositor.
	if w.Amount >= p.LPSupply {
		return nil, fmt.Errorf("%w: burning %d of %d shares", ErrWithdrawAllSingleSided, w.Amount, p.LPSupply)
	}

	curve, err := pricing.NewStableSwap(p.Reserves, p.Params.Amp, p.Config.Fee)
	if err != nil {
		return nil, err
	}
	d, err := curve.Invariant()
	if err != nil {
		return nil, err
	}
	index := 1
	if w.IsX == 1 {
		index = 0
	}
	mode := pricing.Imbalanced{
		D:     d.Value,
		Amp:   p.Params.Amp,
		Index: index,
	}
	out, err := curve.Withdraw(mode, w.Amount, p.LPSupply)
	if err != nil {
		return nil, err
	}
	if out[index] < w.Min {
		return nil, fmt.Errorf("%w: paying %d, minimum %d", ErrSlippage, out[index], w.Min)
	}

	mint := p.Config.Mints()[index]
	if err := storage.BurnShares(ctx, mu, w.Pool, actor, w.Amount); err != nil {
		return nil, err
	}
	if err := storage.Payout(ctx, mu, w.Pool, mint, actor, out[index]); err != nil {
		return nil, err
	}
	return &WithdrawOneResult{
		Mint:   mint,
		Amount: out[index],
		Burned: w.Amount,
	}, nil
}

type WithdrawOneResult struct {
	Mint   codec.Address `json:"mint"`
	Amount uint64        `json:"amount"`
	Burned uint64        `json:"burned"`
}

func (*WithdrawOneResult) GetTypeID() uint8 {
	return WithdrawOneID
}
