// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// formatAmount renders a base unit amount with decimals places.
func formatAmount(amount uint64, decimals int32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -decimals).String()
}

// parseAmount reads a decimal token amount into base units.
func parseAmount(s string, decimals int32) (uint64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	d = d.Shift(decimals)
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, s)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: %s has more than %d decimals", ErrInvalidAmount, s, decimals)
	}
	v := d.BigInt()
	if !v.IsUint64() {
		return 0, fmt.Errorf("%w: %s overflows", ErrInvalidAmount, s)
	}
	return v.Uint64(), nil
}

func parseAmounts(values []string, decimals int32) ([]uint64, error) {
	out := make([]uint64, len(values))
	for i, v := range values {
		var err error
		out[i], err = parseAmount(v, decimals)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func formatAmounts(values []uint64, decimals int32) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatAmount(v, decimals)
	}
	return strings.Join(parts, ", ")
}
