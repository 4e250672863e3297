// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package solver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/equation-man/mega-amm-protocol/numeric"
)

func TestComputeY(t *testing.T) {
	tests := []struct {
		name        string
		amp         uint64
		x           uint64
		d           uint64
		n           uint64
		expected    uint64
		expectedErr error
	}{
		{
			name:     "balanced pool",
			amp:      100,
			x:        1_000_000,
			d:        2_000_000,
			n:        2,
			expected: 1_000_000,
		},
		{
			name:     "after a 10k input",
			amp:      100,
			x:        1_010_000,
			d:        2_000_000,
			n:        2,
			expected: 990_000,
		},
		{
			name:     "after a 10k input at unit amp",
			amp:      1,
			x:        1_010_000,
			d:        2_000_000,
			n:        2,
			expected: 990_033,
		},
		{
			name:     "reduced invariant",
			amp:      100,
			x:        1_000_000,
			d:        1_900_000,
			n:        2,
			expected: 900_013,
		},
		{
			name:     "raised invariant",
			amp:      100,
			x:        1_000_000,
			d:        2_100_000,
			n:        2,
			expected: 1_100_011,
		},
		{
			name:     "negligible invariant",
			amp:      100,
			x:        1_000_000_000_000,
			d:        1,
			n:        2,
			expected: 0,
		},
		{
			name:        "empty known side",
			amp:         100,
			x:           0,
			d:           2_000_000,
			n:           2,
			expectedErr: ErrInsufficientFunds,
		},
		{
			name:        "single asset",
			amp:         100,
			x:           1_000,
			d:           2_000,
			n:           1,
			expectedErr: ErrInvalidAssetCount,
		},
		{
			name:        "zero amp",
			x:           1_000,
			d:           2_000,
			n:           2,
			expectedErr: ErrZeroAmp,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			y, err := ComputeY(tt.amp, numeric.FromUint64(tt.x), numeric.FromUint64(tt.d), tt.n)
			require.ErrorIs(err, tt.expectedErr)
			if tt.expectedErr != nil {
				return
			}
			require.True(y.Converged)
			require.Equal(tt.expected, y.Value)
		})
	}
}

// Solving D for a pool and then y back from one side recovers the other
// side up to the unit precision of D.
func TestComputeYRecoversReserve(t *testing.T) {
	pools := [][]uint64{
		{2_000_000, 1_000_000},
		{5_000, 3_000_000},
		{3_000_000, 5_000},
		{123_456, 654_321},
		{1_000_000_000, 1_000_000_007},
		{1_000_000, 1_000_000_000_000},
	}
	for _, reserves := range pools {
		for _, amp := range []uint64{1, 100, 2_000} {
			t.Run(fmt.Sprintf("%v/%d", reserves, amp), func(t *testing.T) {
				require := require.New(t)

				d, err := ComputeDUint64(reserves, amp)
				require.NoError(err)
				require.True(d.Converged)

				y, err := ComputeY(amp, numeric.FromUint64(reserves[0]), numeric.FromUint64(d.Value), 2)
				require.NoError(err)
				require.True(y.Converged)
				require.InDelta(reserves[1], y.Value, 16)
			})
		}
	}
}

// A heavily skewed, low amplification pool holds more of one asset than
// twice its invariant.
func TestComputeYAboveTwiceInvariant(t *testing.T) {
	require := require.New(t)

	d, err := ComputeDUint64([]uint64{5_000, 3_000_000}, 1)
	require.NoError(err)
	require.Equal(uint64(830_005), d.Value)

	y, err := ComputeY(1, numeric.FromUint64(5_000), numeric.FromUint64(d.Value), 2)
	require.NoError(err)
	require.Greater(y.Value, 2*d.Value)
	require.InDelta(3_000_000, y.Value, 16)
}
