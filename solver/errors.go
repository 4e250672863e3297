// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package solver

import "errors"

var (
	ErrEmptyReserves     = errors.New("reserve set is empty")
	ErrZeroAmp           = errors.New("amplification coefficient is zero")
	ErrInsufficientFunds = errors.New("known balance is zero")
	ErrInvalidAssetCount = errors.New("asset count must be at least 2")
	ErrZeroReserveInSet  = errors.New("reserve set mixes zero and non-zero balances")
)
