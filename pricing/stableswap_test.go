// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/equation-man/mega-amm-protocol/numeric"
	"github.com/equation-man/mega-amm-protocol/solver"
)

func TestNewStableSwap(t *testing.T) {
	require := require.New(t)

	_, err := NewStableSwap([]uint64{1, 1}, 100, 10_000)
	require.ErrorIs(err, ErrInvalidFee)

	_, err = NewStableSwap([]uint64{1, 1}, 0, 30)
	require.ErrorIs(err, solver.ErrZeroAmp)

	reserves := []uint64{7, 9}
	curve, err := NewStableSwap(reserves, 100, 9_999)
	require.NoError(err)
	reserves[0] = 0
	require.Equal([]uint64{7, 9}, curve.Reserves())
	require.Equal(uint64(100), curve.Amp())
	require.Equal(uint16(9_999), curve.Fee())
}

func TestStableSwapDeposit(t *testing.T) {
	tests := []struct {
		name        string
		reserves    []uint64
		supply      uint64
		newReserves []uint64
		expected    uint64
		expectedErr error
	}{
		{
			name:        "proportional",
			reserves:    []uint64{1_000_000, 1_000_000},
			supply:      2_000_000,
			newReserves: []uint64{1_100_000, 1_100_000},
			expected:    200_000,
		},
		{
			name:        "imbalanced same nominal total",
			reserves:    []uint64{1_000_000, 1_000_000},
			supply:      2_000_000,
			newReserves: []uint64{1_200_000, 1_000_000},
			expected:    199_955,
		},
		{
			name:        "doubling",
			reserves:    []uint64{1_000_000, 1_000_000},
			supply:      2_000_000,
			newReserves: []uint64{2_000_000, 2_000_000},
			expected:    2_000_000,
		},
		{
			name:        "genesis mints the invariant",
			reserves:    []uint64{0, 0},
			newReserves: []uint64{1_200_000, 1_000_000},
			expected:    2_199_955,
		},
		{
			name:        "unchanged reserves",
			reserves:    []uint64{1_000_000, 1_000_000},
			supply:      2_000_000,
			newReserves: []uint64{1_000_000, 1_000_000},
			expectedErr: ErrNegativeOrZeroSpread,
		},
		{
			name:        "shrinking reserves",
			reserves:    []uint64{1_000_000, 1_000_000},
			supply:      2_000_000,
			newReserves: []uint64{900_000, 1_000_000},
			expectedErr: ErrNegativeOrZeroSpread,
		},
		{
			name:        "mismatched length",
			reserves:    []uint64{1_000_000, 1_000_000},
			supply:      2_000_000,
			newReserves: []uint64{1_100_000},
			expectedErr: ErrInvalidReserveLength,
		},
		{
			name:        "one side empty",
			reserves:    []uint64{1_000_000, 1_000_000},
			supply:      2_000_000,
			newReserves: []uint64{1_000_000, 0},
			expectedErr: numeric.ErrDivisionByZero,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			curve, err := NewStableSwap(tt.reserves, 100, 30)
			require.NoError(err)

			minted, err := curve.Deposit(tt.supply, tt.newReserves)
			require.ErrorIs(err, tt.expectedErr)
			require.Equal(tt.expected, minted)
		})
	}
}

func TestStableSwapDepositFairness(t *testing.T) {
	require := require.New(t)

	curve, err := NewStableSwap([]uint64{1_000_000, 1_000_000}, 100, 30)
	require.NoError(err)

	proportional, err := curve.Deposit(2_000_000, []uint64{1_100_000, 1_100_000})
	require.NoError(err)
	for _, skewed := range [][]uint64{
		{1_150_000, 1_050_000},
		{1_200_000, 1_000_000},
		{1_000_000, 1_200_000},
	} {
		minted, err := curve.Deposit(2_000_000, skewed)
		require.NoError(err)
		require.Less(minted, proportional)
	}
}

func TestStableSwapWithdrawBalanced(t *testing.T) {
	tests := []struct {
		name        string
		reserves    []uint64
		burn        uint64
		supply      uint64
		expected    []uint64
		expectedErr error
	}{
		{
			name:     "ten percent",
			reserves: []uint64{1_000_000, 1_000_000},
			burn:     200_000,
			supply:   2_000_000,
			expected: []uint64{100_000, 100_000},
		},
		{
			name:     "full supply",
			reserves: []uint64{1_234_567, 7_654_321},
			burn:     3_000_000,
			supply:   3_000_000,
			expected: []uint64{1_234_567, 7_654_321},
		},
		{
			name:     "rounds down",
			reserves: []uint64{10, 20},
			burn:     1,
			supply:   3,
			expected: []uint64{3, 6},
		},
		{
			name:     "zero burn",
			reserves: []uint64{1_000_000, 1_000_000},
			supply:   2_000_000,
			expected: []uint64{0, 0},
		},
		{
			name:        "zero supply",
			reserves:    []uint64{1_000_000, 1_000_000},
			burn:        1,
			expectedErr: ErrZeroTotalSupply,
		},
		{
			name:        "burn exceeds supply",
			reserves:    []uint64{1_000_000, 1_000_000},
			burn:        2_000_001,
			supply:      2_000_000,
			expectedErr: ErrBurnExceedsSupply,
		},
		{
			name:        "no reserves",
			burn:        1,
			supply:      2,
			expectedErr: ErrInvalidReserveLength,
		},
		{
			name:        "too many reserves",
			reserves:    []uint64{1, 1, 1},
			burn:        1,
			supply:      2,
			expectedErr: ErrInvalidReserveLength,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			curve, err := NewStableSwap(tt.reserves, 100, 30)
			require.NoError(err)

			out, err := curve.Withdraw(Balanced{}, tt.burn, tt.supply)
			require.ErrorIs(err, tt.expectedErr)
			require.Equal(tt.expected, out)
		})
	}
}

func TestStableSwapWithdrawImbalanced(t *testing.T) {
	tests := []struct {
		name        string
		reserves    []uint64
		mode        Imbalanced
		burn        uint64
		supply      uint64
		expected    []uint64
		expectedErr error
	}{
		{
			name:     "five percent to y",
			reserves: []uint64{1_000_000, 1_000_000},
			mode:     Imbalanced{D: 2_000_000, Amp: 100, Index: 1},
			burn:     100_000,
			supply:   2_000_000,
			// raw 99,986 less a 999 fee
			expected: []uint64{0, 98_987},
		},
		{
			name:     "five percent to x",
			reserves: []uint64{1_000_000, 1_000_000},
			mode:     Imbalanced{D: 2_000_000, Amp: 100, Index: 0},
			burn:     100_000,
			supply:   2_000_000,
			expected: []uint64{98_987, 0},
		},
		{
			name:     "ten percent to y",
			reserves: []uint64{1_000_000, 1_000_000},
			mode:     Imbalanced{D: 2_000_000, Amp: 100, Index: 1},
			burn:     200_000,
			supply:   2_000_000,
			// raw 199,944 less a 1,999 fee
			expected: []uint64{0, 197_945},
		},
		{
			name:     "zero burn skips the solver",
			reserves: []uint64{1_000_000, 1_000_000},
			mode:     Imbalanced{Index: 1},
			supply:   2_000_000,
			expected: []uint64{0, 0},
		},
		{
			name:     "zero supply skips the solver",
			reserves: []uint64{1_000_000, 1_000_000},
			mode:     Imbalanced{Index: 1},
			burn:     10,
			expected: []uint64{0, 0},
		},
		{
			name:        "burn exceeds supply",
			reserves:    []uint64{1_000_000, 1_000_000},
			mode:        Imbalanced{D: 2_000_000, Amp: 100, Index: 1},
			burn:        2_000_001,
			supply:      2_000_000,
			expectedErr: ErrBurnExceedsSupply,
		},
		{
			name:        "stated invariant above reserves",
			reserves:    []uint64{1_000_000, 1_000_000},
			mode:        Imbalanced{D: 2_500_000, Amp: 100, Index: 1},
			burn:        1,
			supply:      2_000_000,
			expectedErr: ErrMathInconsistency,
		},
		{
			name:        "index out of range",
			reserves:    []uint64{1_000_000, 1_000_000},
			mode:        Imbalanced{D: 2_000_000, Amp: 100, Index: 2},
			burn:        1,
			supply:      2_000_000,
			expectedErr: ErrInvalidAssetIndex,
		},
		{
			name:        "zero amp",
			reserves:    []uint64{1_000_000, 1_000_000},
			mode:        Imbalanced{D: 2_000_000, Index: 1},
			burn:        1,
			supply:      2_000_000,
			expectedErr: solver.ErrZeroAmp,
		},
		{
			name:        "single asset",
			reserves:    []uint64{1_000_000},
			mode:        Imbalanced{D: 1_000_000, Amp: 100},
			burn:        1,
			supply:      2,
			expectedErr: ErrInvalidReserveLength,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			curve, err := NewStableSwap(tt.reserves, 100, 30)
			require.NoError(err)

			out, err := curve.Withdraw(tt.mode, tt.burn, tt.supply)
			require.ErrorIs(err, tt.expectedErr)
			require.Equal(tt.expected, out)
		})
	}
}

func TestStableSwapWithdrawInvalidMode(t *testing.T) {
	require := require.New(t)

	curve, err := NewStableSwap([]uint64{1, 1}, 100, 30)
	require.NoError(err)

	_, err = curve.Withdraw(nil, 1, 2)
	require.ErrorIs(err, ErrInvalidWithdrawMode)

	_, err = ModeFromID(2, 0, 0, 0)
	require.ErrorIs(err, ErrInvalidWithdrawMode)

	mode, err := ModeFromID(ImbalancedModeID, 2_000_000, 100, 1)
	require.NoError(err)
	require.Equal(Imbalanced{D: 2_000_000, Amp: 100, Index: 1}, mode)

	mode, err = ModeFromID(BalancedModeID, 2_000_000, 100, 1)
	require.NoError(err)
	require.Equal(Balanced{}, mode)
	require.Equal(BalancedModeID, mode.ModeID())
}

func TestStableSwapSwapFees(t *testing.T) {
	tests := []struct {
		fee      uint16
		expected SwapResult
	}{
		{fee: 0, expected: SwapResult{Amount: 9_999, Fee: 0, Raw: 9_999}},
		{fee: 10, expected: SwapResult{Amount: 9_990, Fee: 9, Raw: 9_999}},
		{fee: 30, expected: SwapResult{Amount: 9_970, Fee: 29, Raw: 9_999}},
		{fee: 100, expected: SwapResult{Amount: 9_900, Fee: 99, Raw: 9_999}},
		{fee: 9_999, expected: SwapResult{Amount: 1, Fee: 9_998, Raw: 9_999}},
	}
	var prev uint64
	for i, tt := range tests {
		curve, err := NewStableSwap([]uint64{1_010_000, 1_000_000}, 100, tt.fee)
		require.NoError(t, err)

		res, err := curve.Swap(1, 2_000_000)
		require.NoError(t, err)
		require.Equal(t, tt.expected, *res)
		if i > 0 {
			require.Less(t, res.Amount, prev)
		}
		prev = res.Amount
	}
}

func TestStableSwapSwapErrors(t *testing.T) {
	tests := []struct {
		name        string
		reserves    []uint64
		out         int
		d           uint64
		expectedErr error
	}{
		{
			name:        "invariant above reserves",
			reserves:    []uint64{1_000_000, 1_000_000},
			out:         1,
			d:           2_100_000,
			expectedErr: ErrNegativeSwap,
		},
		{
			name:        "output index out of range",
			reserves:    []uint64{1_000_000, 1_000_000},
			out:         -1,
			d:           2_000_000,
			expectedErr: ErrInvalidAssetIndex,
		},
		{
			name:        "input side empty",
			reserves:    []uint64{0, 1_000_000},
			out:         1,
			d:           2_000_000,
			expectedErr: solver.ErrInsufficientFunds,
		},
		{
			name:        "single asset",
			reserves:    []uint64{1_000_000},
			d:           1_000_000,
			expectedErr: ErrInvalidReserveLength,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			curve, err := NewStableSwap(tt.reserves, 100, 30)
			require.NoError(err)

			_, err = curve.Swap(tt.out, tt.d)
			require.ErrorIs(err, tt.expectedErr)
		})
	}
}

func TestStableSwapQuote(t *testing.T) {
	tests := []struct {
		name        string
		amp         uint64
		fee         uint16
		in          int
		amount      uint64
		expected    *Quote
		expectedErr error
	}{
		{
			name:     "x for y",
			amp:      100,
			fee:      30,
			amount:   10_000,
			expected: &Quote{Amount: 9_970, Fee: 29, Raw: 9_999, PriceImpact: 1},
		},
		{
			name:     "y for x",
			amp:      100,
			fee:      30,
			in:       1,
			amount:   10_000,
			expected: &Quote{Amount: 9_970, Fee: 29, Raw: 9_999, PriceImpact: 1},
		},
		{
			name:     "low amp carries impact",
			amp:      1,
			amount:   10_000,
			expected: &Quote{Amount: 9_966, Raw: 9_966, PriceImpact: 34},
		},
		{
			name:        "zero input",
			amp:         100,
			expectedErr: ErrZeroInput,
		},
		{
			name:        "bad index",
			amp:         100,
			in:          2,
			amount:      1,
			expectedErr: ErrInvalidAssetIndex,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			curve, err := NewStableSwap([]uint64{1_000_000, 1_000_000}, tt.amp, tt.fee)
			require.NoError(err)

			quote, err := curve.Quote(tt.in, tt.amount)
			require.ErrorIs(err, tt.expectedErr)
			require.Equal(tt.expected, quote)
			require.Equal([]uint64{1_000_000, 1_000_000}, curve.Reserves())
		})
	}
}

func TestStableSwapQuoteEmptyPool(t *testing.T) {
	curve, err := NewStableSwap([]uint64{0, 0}, 100, 30)
	require.NoError(t, err)

	_, err = curve.Quote(0, 10)
	require.ErrorIs(t, err, ErrReservesZero)
}

func TestStableSwapQuoteKeepsInvariant(t *testing.T) {
	tests := []struct {
		reserves []uint64
		amp      uint64
	}{
		{reserves: []uint64{1_000_000, 1_000_000}, amp: 100},
		{reserves: []uint64{999_440_174_863, 999_553_797_633}, amp: 3_323},
		{reserves: []uint64{1_000_000_000, 1_000_000_007}, amp: 5_000},
		{reserves: []uint64{2_000_000, 1_000_000}, amp: 1},
		{reserves: []uint64{123_456, 654_321}, amp: 100},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v/%d", tt.reserves, tt.amp), func(t *testing.T) {
			require := require.New(t)

			curve, err := NewStableSwap(tt.reserves, tt.amp, 0)
			require.NoError(err)
			before, err := curve.Invariant()
			require.NoError(err)

			for _, in := range []int{0, 1} {
				for _, amount := range []uint64{1, 7, 1_000, 100_000} {
					quote, err := curve.Quote(in, amount)
					require.NoError(err)
					if amount == 1 {
						require.LessOrEqual(quote.Amount, uint64(1))
					}

					next := slices.Clone(tt.reserves)
					next[in] += amount
					next[1-in] -= quote.Amount
					traded, err := NewStableSwap(next, tt.amp, 0)
					require.NoError(err)
					after, err := traded.Invariant()
					require.NoError(err)
					require.GreaterOrEqual(after.Value, before.Value, "in %d amount %d", in, amount)
				}
			}
		})
	}
}
