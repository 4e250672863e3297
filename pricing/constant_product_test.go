// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstantProductDeposit(t *testing.T) {
	tests := []struct {
		name        string
		reserves    []uint64
		supply      uint64
		newReserves []uint64
		expected    uint64
		expectedErr error
	}{
		{
			name:        "genesis",
			reserves:    []uint64{0, 0},
			newReserves: []uint64{4_000_000, 1_000_000},
			expected:    2_000_000,
		},
		{
			name:        "limited by the smaller side",
			reserves:    []uint64{1_000_000, 1_000_000},
			supply:      1_000_000,
			newReserves: []uint64{1_100_000, 1_200_000},
			expected:    100_000,
		},
		{
			name:        "withdrawal is not a deposit",
			reserves:    []uint64{1_000_000, 1_000_000},
			supply:      1_000_000,
			newReserves: []uint64{900_000, 1_200_000},
			expectedErr: ErrNegativeOrZeroSpread,
		},
		{
			name:        "one sided",
			reserves:    []uint64{1_000_000, 1_000_000},
			supply:      1_000_000,
			newReserves: []uint64{1_100_000, 1_000_000},
			expectedErr: ErrNegativeOrZeroSpread,
		},
		{
			name:        "bad length",
			reserves:    []uint64{1_000_000, 1_000_000},
			newReserves: []uint64{1},
			expectedErr: ErrInvalidReserveLength,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			curve, err := NewConstantProduct(tt.reserves, 30)
			require.NoError(err)

			minted, err := curve.Deposit(tt.supply, tt.newReserves)
			require.ErrorIs(err, tt.expectedErr)
			require.Equal(tt.expected, minted)
		})
	}
}

func TestConstantProductQuote(t *testing.T) {
	require := require.New(t)

	curve, err := NewConstantProduct([]uint64{1_000_000, 1_000_000}, 30)
	require.NoError(err)

	quote, err := curve.Quote(0, 10_000)
	require.NoError(err)
	require.Equal(&Quote{Amount: 9_871, Fee: 29, Raw: 9_900, PriceImpact: 100}, quote)

	_, err = curve.Quote(0, 0)
	require.ErrorIs(err, ErrZeroInput)
	_, err = curve.Quote(3, 1)
	require.ErrorIs(err, ErrInvalidAssetIndex)

	empty, err := NewConstantProduct([]uint64{0, 5}, 30)
	require.NoError(err)
	_, err = empty.Quote(1, 1)
	require.ErrorIs(err, ErrReservesZero)
}

// The amplified curve quotes a better price than x*y=k near parity.
func TestModelsCompareNearParity(t *testing.T) {
	require := require.New(t)

	reserves := []uint64{1_000_000, 1_000_000}
	stable, err := Load(StableSwapID, reserves, 100, 30)
	require.NoError(err)
	product, err := Load(ConstantProductID, reserves, 100, 30)
	require.NoError(err)

	stableQuote, err := stable.Quote(0, 10_000)
	require.NoError(err)
	productQuote, err := product.Quote(0, 10_000)
	require.NoError(err)
	require.Greater(stableQuote.Amount, productQuote.Amount)
	require.Less(stableQuote.PriceImpact, productQuote.PriceImpact)

	_, err = Load(InvalidModelID, reserves, 100, 30)
	require.ErrorIs(err, ErrModelDoesNotExist)
	_, err = Load(ConstantProductID, reserves, 100, 10_000)
	require.ErrorIs(err, ErrInvalidFee)
}

func TestSqrt(t *testing.T) {
	for in, expected := range map[uint64]uint64{
		0:                 0,
		1:                 1,
		3:                 1,
		4:                 2,
		15:                3,
		4_000_000_000_000: 2_000_000,
	} {
		require.Equal(t, expected, sqrt(in))
	}
}
