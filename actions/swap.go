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
	_ Action      = (*Swap)(nil)
	_ codec.Typed = (*SwapResult)(nil)
)

// Swap trades Amount of one asset for the other. The fee is withheld from
// the output and stays in the pool.
type Swap struct {
	Pool codec.Address `borsh_skip:"true" json:"pool"`

	Amount     uint64 `json:"amount"`
	Min        uint64 `json:"min"`
	Expiration int64  `json:"expiration"`
	// IsX is 1 to sell X for Y and 0 to sell Y for X.
	IsX uint8 `json:"isX"`
}

func decodeSwap(pool codec.Address, payload []byte) (Action, error) {
	s, err := decodePayload[Swap](payload, SwapLen)
	if err != nil {
		return nil, err
	}
	s.Pool = pool
	return s, nil
}

func (*Swap) GetTypeID() uint8 {
	return SwapID
}

func (s *Swap) PoolAddress() codec.Address {
	return s.Pool
}

func (s *Swap) StateKeys(actor codec.Address, mints [2]codec.Address) state.Keys {
	return poolKeys(s.Pool, actor, mints)
}

func (s *Swap) Validate() error {
	if s.Amount == 0 || s.Min == 0 {
		return fmt.Errorf("%w: amount and min must be positive", ErrInvalidInstructionData)
	}
	_, err := boolFlag(s.IsX)
	return err
}

func (s *Swap) Payload() ([]byte, error) {
	return borsh.Serialize(*s)
}

func (s *Swap) Execute(ctx context.Context, mu state.Mutable, timestamp int64, actor codec.Address) (codec.Typed, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := checkExpiration(timestamp, s.Expiration); err != nil {
		return nil, err
	}
	p, err := getPool(ctx, mu, s.Pool)
	if err != nil {
		return nil, err
	}
	if err := requireState(p.Config, storage.Initialized); err != nil {
		return nil, err
	}

	in := 1
	if s.IsX == 1 {
		in = 0
	}
	curve, err := pricing.NewStableSwap(p.Reserves, p.Params.Amp, p.Config.Fee)
	if err != nil {
		return nil, err
	}
	quote, err := curve.Quote(in, s.Amount)
	if err != nil {
		return nil, err
	}
	if quote.Amount == 0 {
		return nil, ErrZeroOutput
	}
	if quote.Amount < s.Min {
		return nil, fmt.Errorf("%w: paying %d, minimum %d", ErrSlippage, quote.Amount, s.Min)
	}

	mints := p.Config.Mints()
	if err := storage.Deposit(ctx, mu, s.Pool, mints[in], actor, s.Amount); err != nil {
		return nil, err
	}
	if err := storage.Payout(ctx, mu, s.Pool, mints[1-in], actor, quote.Amount); err != nil {
		return nil, err
	}
	return &SwapResult{
		MintIn:  mints[in],
		MintOut: mints[1-in],
		In:      s.Amount,
		Out:     quote.Amount,
		Fee:     quote.Fee,
	}, nil
}

type SwapResult struct {
	MintIn  codec.Address `json:"mintIn"`
	MintOut codec.Address `json:"mintOut"`
	In      uint64        `json:"in"`
	Out     uint64        `json:"out"`
	Fee     uint64        `json:"fee"`
}

func (*SwapResult) GetTypeID() uint8 {
	return SwapID
}
