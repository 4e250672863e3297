// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import (
	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/equation-man/mega-amm-protocol/consts"
)

var _ Model = (*ConstantProduct)(nil)

// ConstantProduct is the x*y=k curve, kept so quotes can be compared
// against the amplified curve.
type ConstantProduct struct {
	reserveX uint64
	reserveY uint64
	fee      uint16
}

func NewConstantProduct(reserves []uint64, fee uint16) (*ConstantProduct, error) {
	if len(reserves) != consts.MaxAssets {
		return nil, ErrInvalidReserveLength
	}
	if !validFee(fee) {
		return nil, ErrInvalidFee
	}
	return &ConstantProduct{
		reserveX: reserves[0],
		reserveY: reserves[1],
		fee:      fee,
	}, nil
}

func (c *ConstantProduct) Reserves() []uint64 {
	return []uint64{c.reserveX, c.reserveY}
}

// Deposit mints sqrt(x*y) into an empty pool and otherwise the smaller of
// the two proportional increases.
func (c *ConstantProduct) Deposit(totalSupply uint64, newReserves []uint64) (uint64, error) {
	if len(newReserves) != consts.MaxAssets {
		return 0, ErrInvalidReserveLength
	}
	newX, newY := newReserves[0], newReserves[1]
	if newX < c.reserveX || newY < c.reserveY {
		return 0, ErrNegativeOrZeroSpread
	}
	var liquidity uint64
	if totalSupply == 0 {
		newK, err := smath.Mul64(newX, newY)
		if err != nil {
			return 0, err
		}
		liquidity = sqrt(newK)
	} else {
		if c.reserveX == 0 || c.reserveY == 0 {
			return 0, ErrReservesZero
		}
		tokenXChange, err := smath.Mul64(newX-c.reserveX, totalSupply)
		if err != nil {
			return 0, err
		}
		tokenXChange /= c.reserveX
		tokenYChange, err := smath.Mul64(newY-c.reserveY, totalSupply)
		if err != nil {
			return 0, err
		}
		tokenYChange /= c.reserveY
		liquidity = min(tokenXChange, tokenYChange)
	}
	if liquidity == 0 {
		return 0, ErrNegativeOrZeroSpread
	}
	return liquidity, nil
}

// Quote prices selling amount of asset in, charging the fee on the output.
// Price impact is measured against the spot price reserveOut/reserveIn.
func (c *ConstantProduct) Quote(in int, amount uint64) (*Quote, error) {
	if c.reserveX == 0 || c.reserveY == 0 {
		return nil, ErrReservesZero
	}
	if amount == 0 {
		return nil, ErrZeroInput
	}
	reserveIn, reserveOut := c.reserveX, c.reserveY
	switch in {
	case 0:
	case 1:
		reserveIn, reserveOut = reserveOut, reserveIn
	default:
		return nil, ErrInvalidAssetIndex
	}

	num, err := smath.Mul64(reserveOut, amount)
	if err != nil {
		return nil, err
	}
	denom, err := smath.Add64(reserveIn, amount)
	if err != nil {
		return nil, err
	}
	raw := num / denom
	fee, err := smath.Mul64(raw, uint64(c.fee))
	if err != nil {
		return nil, err
	}
	fee /= consts.BasisPoints
	impact, err := priceImpact(num/reserveIn, raw)
	if err != nil {
		return nil, err
	}
	return &Quote{
		Amount:      raw - fee,
		Fee:         fee,
		Raw:         raw,
		PriceImpact: impact,
	}, nil
}

// https://github.com/Uniswap/v2-core/blob/ee547b17853e71ed4e0101ccfd52e70d5acded58/contracts/libraries/Math.sol#L10
func sqrt(y uint64) uint64 {
	if y > 3 {
		z := y
		x := (y / 2) + 1
		for x < z {
			z = x
			x = (y/x + x) / 2
		}
		return z
	} else if y != 0 {
		return 1
	}
	return 0
}
