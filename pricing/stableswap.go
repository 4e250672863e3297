// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import (
	"fmt"

	"golang.org/x/exp/slices"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/equation-man/mega-amm-protocol/consts"
	"github.com/equation-man/mega-amm-protocol/numeric"
	"github.com/equation-man/mega-amm-protocol/solver"
)

var _ Model = (*StableSwap)(nil)

// StableSwap prices a reserve set on the amplified invariant curve. It holds
// no state between calls: every operation is computed from the bound
// reserves, amplification and fee.
type StableSwap struct {
	reserves []uint64
	amp      uint64
	fee      uint16
}

// SwapResult is the output of a swap in units of the output asset.
type SwapResult struct {
	// Amount is Raw less Fee and is what the trader receives.
	Amount uint64 `json:"amount"`
	Fee    uint64 `json:"fee"`
	Raw    uint64 `json:"raw"`
}

// NewStableSwap binds reserves, an amplification coefficient and a fee in
// basis points. The reserve slice is copied.
func NewStableSwap(reserves []uint64, amp uint64, fee uint16) (*StableSwap, error) {
	if !validFee(fee) {
		return nil, ErrInvalidFee
	}
	if amp == 0 {
		return nil, solver.ErrZeroAmp
	}
	return &StableSwap{
		reserves: slices.Clone(reserves),
		amp:      amp,
		fee:      fee,
	}, nil
}

func (s *StableSwap) Reserves() []uint64 {
	return slices.Clone(s.reserves)
}

func (s *StableSwap) Amp() uint64 {
	return s.amp
}

func (s *StableSwap) Fee() uint16 {
	return s.fee
}

// Invariant solves D for the bound reserves.
func (s *StableSwap) Invariant() (*solver.Result, error) {
	return solver.ComputeDUint64(s.reserves, s.amp)
}

// Deposit returns the LP shares minted when the pool moves from its bound
// reserves to newReserves, which already include the deposit.
//
// Shares are minted in proportion to the growth of D rather than of the
// token sum, so an imbalanced deposit mints fewer shares than a balanced one
// of the same nominal size. The first deposit into an empty pool mints D.
func (s *StableSwap) Deposit(totalSupply uint64, newReserves []uint64) (uint64, error) {
	if !validLength(len(s.reserves)) || len(newReserves) != len(s.reserves) {
		return 0, ErrInvalidReserveLength
	}
	prev, err := s.Invariant()
	if err != nil {
		return 0, err
	}
	next, err := solver.ComputeDUint64(newReserves, s.amp)
	if err != nil {
		return 0, err
	}
	if prev.Value == 0 {
		return next.Value, nil
	}
	if next.Value <= prev.Value {
		return 0, fmt.Errorf("%w: %d -> %d", ErrNegativeOrZeroSpread, prev.Value, next.Value)
	}

	minted, err := numeric.Mul(numeric.FromUint64(totalSupply), numeric.FromUint64(next.Value-prev.Value))
	if err != nil {
		return 0, err
	}
	minted, err = numeric.Div(minted, numeric.FromUint64(prev.Value))
	if err != nil {
		return 0, err
	}
	return numeric.Narrow(minted)
}

// Withdraw returns the per-asset payout for burning burn of totalSupply LP
// shares.
func (s *StableSwap) Withdraw(mode WithdrawMode, burn uint64, totalSupply uint64) ([]uint64, error) {
	switch m := mode.(type) {
	case Balanced:
		return s.withdrawBalanced(burn, totalSupply)
	case Imbalanced:
		return s.withdrawImbalanced(m, burn, totalSupply)
	default:
		return nil, ErrInvalidWithdrawMode
	}
}

func (s *StableSwap) withdrawBalanced(burn uint64, totalSupply uint64) ([]uint64, error) {
	if !validLength(len(s.reserves)) {
		return nil, ErrInvalidReserveLength
	}
	if totalSupply == 0 {
		return nil, ErrZeroTotalSupply
	}
	out := make([]uint64, len(s.reserves))
	if burn == 0 {
		return out, nil
	}
	if burn > totalSupply {
		return nil, ErrBurnExceedsSupply
	}
	for i, reserve := range s.reserves {
		share, err := numeric.Mul(numeric.FromUint64(reserve), numeric.FromUint64(burn))
		if err != nil {
			return nil, err
		}
		share, err = numeric.Div(share, numeric.FromUint64(totalSupply))
		if err != nil {
			return nil, err
		}
		out[i], err = numeric.Narrow(share)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// withdrawImbalanced lowers D by the burned share, solves the balance of
// asset m.Index that keeps the other balances on the lowered invariant and
// pays the difference less a flat 1% fee.
func (s *StableSwap) withdrawImbalanced(m Imbalanced, burn uint64, totalSupply uint64) ([]uint64, error) {
	n := len(s.reserves)
	if n < 2 || !validLength(n) {
		return nil, ErrInvalidReserveLength
	}
	if m.Index < 0 || m.Index >= n {
		return nil, ErrInvalidAssetIndex
	}
	out := make([]uint64, n)
	if burn == 0 || totalSupply == 0 {
		return out, nil
	}
	if burn > totalSupply {
		return nil, ErrBurnExceedsSupply
	}

	d := numeric.FromUint64(m.D)
	cut, err := numeric.Mul(d, numeric.FromUint64(burn))
	if err != nil {
		return nil, err
	}
	cut, err = numeric.Div(cut, numeric.FromUint64(totalSupply))
	if err != nil {
		return nil, err
	}
	target, err := numeric.Sub(d, cut)
	if err != nil {
		return nil, err
	}
	others, err := s.othersSum(m.Index)
	if err != nil {
		return nil, err
	}
	y, err := solver.ComputeY(m.Amp, others, target, uint64(n))
	if err != nil {
		return nil, err
	}
	balance := s.reserves[m.Index]
	if y.Value > balance {
		return nil, fmt.Errorf("%w: balance %d below solved %d", ErrMathInconsistency, balance, y.Value)
	}
	raw := balance - y.Value
	// y is floored, so the pool keeps one more unit.
	if raw > 0 {
		raw--
	}
	out[m.Index] = raw - raw/consts.ImbalancedWithdrawFeeDivisor
	return out, nil
}

// Swap pays out asset out so the pool returns to invariant d. The bound
// reserves must already include the input amount. The payout is rounded
// down so the post-trade invariant never falls below d.
func (s *StableSwap) Swap(out int, d uint64) (*SwapResult, error) {
	n := len(s.reserves)
	if n < 2 || !validLength(n) {
		return nil, ErrInvalidReserveLength
	}
	if out < 0 || out >= n {
		return nil, ErrInvalidAssetIndex
	}
	others, err := s.othersSum(out)
	if err != nil {
		return nil, err
	}
	y, err := solver.ComputeY(s.amp, others, numeric.FromUint64(d), uint64(n))
	if err != nil {
		return nil, err
	}
	balance := s.reserves[out]
	if y.Value > balance {
		return nil, fmt.Errorf("%w: balance %d below solved %d", ErrNegativeSwap, balance, y.Value)
	}
	raw := balance - y.Value
	// y is floored, so the pool keeps one more unit.
	if raw > 0 {
		raw--
	}

	fee, err := numeric.Mul(numeric.FromUint64(raw), numeric.FromUint64(uint64(s.fee)))
	if err != nil {
		return nil, fmt.Errorf("%w: fee", err)
	}
	fee, err = numeric.Div(fee, numeric.FromUint64(consts.BasisPoints))
	if err != nil {
		return nil, err
	}
	feeAmount, err := numeric.Narrow(fee)
	if err != nil {
		return nil, fmt.Errorf("%w: fee", err)
	}
	return &SwapResult{
		Amount: raw - feeAmount,
		Fee:    feeAmount,
		Raw:    raw,
	}, nil
}

// Quote sells amount of asset in at the invariant of the bound reserves.
// Price impact is measured against the 1:1 parity the curve is centred on.
func (s *StableSwap) Quote(in int, amount uint64) (*Quote, error) {
	if len(s.reserves) != consts.MaxAssets {
		return nil, ErrInvalidReserveLength
	}
	if in < 0 || in >= consts.MaxAssets {
		return nil, ErrInvalidAssetIndex
	}
	if amount == 0 {
		return nil, ErrZeroInput
	}
	d, err := s.Invariant()
	if err != nil {
		return nil, err
	}
	if d.Value == 0 {
		return nil, ErrReservesZero
	}

	next := slices.Clone(s.reserves)
	next[in], err = smath.Add64(next[in], amount)
	if err != nil {
		return nil, err
	}
	curve := &StableSwap{reserves: next, amp: s.amp, fee: s.fee}
	res, err := curve.Swap(1-in, d.Value)
	if err != nil {
		return nil, err
	}
	impact, err := priceImpact(amount, res.Raw)
	if err != nil {
		return nil, err
	}
	return &Quote{
		Amount:      res.Amount,
		Fee:         res.Fee,
		Raw:         res.Raw,
		PriceImpact: impact,
	}, nil
}

func (s *StableSwap) othersSum(skip int) (numeric.Wide, error) {
	others := make([]numeric.Wide, 0, len(s.reserves)-1)
	for i, reserve := range s.reserves {
		if i != skip {
			others = append(others, numeric.FromUint64(reserve))
		}
	}
	return numeric.ConstantSum(others)
}

func validLength(n int) bool {
	return n > 0 && n <= consts.MaxAssets
}
