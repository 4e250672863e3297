// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	require := require.New(t)

	require.Equal("1.5", formatAmount(1_500_000, 6))
	require.Equal("0.00003", formatAmount(30, 6))
	require.Equal("9970", formatAmount(9_970, 0))
	require.Equal("18446744073709.551615", formatAmount(^uint64(0), 6))
	require.Equal("1, 2.5", formatAmounts([]uint64{1_000, 2_500}, 3))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input       string
		decimals    int32
		expected    uint64
		expectedErr error
	}{
		{input: "1.5", decimals: 6, expected: 1_500_000},
		{input: " 10000 ", expected: 10_000},
		{input: "0.000001", decimals: 6, expected: 1},
		{input: "0.0000001", decimals: 6, expectedErr: ErrInvalidAmount},
		{input: "-1", expectedErr: ErrInvalidAmount},
		{input: "abc", expectedErr: ErrInvalidAmount},
		{input: "18446744073709551616", expectedErr: ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require := require.New(t)

			v, err := parseAmount(tt.input, tt.decimals)
			require.ErrorIs(err, tt.expectedErr)
			require.Equal(tt.expected, v)
		})
	}
}
