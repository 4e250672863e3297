// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import (
	"github.com/equation-man/mega-amm-protocol/consts"
	"github.com/equation-man/mega-amm-protocol/numeric"
)

// IDs for pricing models
const (
	InvalidModelID uint8 = iota
	ConstantProductID
	StableSwapID
)

// Quote describes the outcome of trading amount of one asset into a pool.
type Quote struct {
	// Amount is delivered to the trader.
	Amount uint64 `json:"amount"`
	Fee    uint64 `json:"fee"`
	Raw    uint64 `json:"raw"`
	// PriceImpact is the shortfall of Raw against the pre-trade spot price,
	// in basis points.
	PriceImpact uint64 `json:"priceImpact"`
}

type Model interface {
	// Deposit returns the LP shares minted for moving the pool to
	// newReserves.
	Deposit(totalSupply uint64, newReserves []uint64) (uint64, error)
	// Quote prices selling amount of asset in for the other asset.
	Quote(in int, amount uint64) (*Quote, error)
	Reserves() []uint64
}

type NewModel func(reserves []uint64, amp uint64, fee uint16) (Model, error)

var Models map[uint8]NewModel

func init() {
	Models = make(map[uint8]NewModel)

	// Append any additional pricing models here
	Models[ConstantProductID] = func(reserves []uint64, _ uint64, fee uint16) (Model, error) {
		c, err := NewConstantProduct(reserves, fee)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	Models[StableSwapID] = func(reserves []uint64, amp uint64, fee uint16) (Model, error) {
		s, err := NewStableSwap(reserves, amp, fee)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Load builds the model registered under id.
func Load(id uint8, reserves []uint64, amp uint64, fee uint16) (Model, error) {
	newModel, ok := Models[id]
	if !ok {
		return nil, ErrModelDoesNotExist
	}
	return newModel(reserves, amp, fee)
}

func validFee(fee uint16) bool {
	return uint64(fee) < consts.BasisPoints
}

// priceImpact returns the shortfall of actual against ideal in basis points.
func priceImpact(ideal uint64, actual uint64) (uint64, error) {
	if ideal == 0 || actual >= ideal {
		return 0, nil
	}
	impact, err := numeric.Mul(numeric.FromUint64(ideal-actual), numeric.FromUint64(consts.BasisPoints))
	if err != nil {
		return 0, err
	}
	impact, err = numeric.Div(impact, numeric.FromUint64(ideal))
	if err != nil {
		return 0, err
	}
	return numeric.Narrow(impact)
}
