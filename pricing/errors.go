// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import "errors"

var (
	ErrModelDoesNotExist = errors.New("model does not exist")

	ErrInvalidFee           = errors.New("fee must be below 10000 basis points")
	ErrInvalidReserveLength = errors.New("invalid reserve length")
	ErrInvalidAssetIndex    = errors.New("invalid asset index")
	ErrInvalidWithdrawMode  = errors.New("invalid withdraw mode")

	ErrReservesZero      = errors.New("reserves are zero")
	ErrZeroInput         = errors.New("zero input")
	ErrZeroTotalSupply   = errors.New("total supply is zero")
	ErrBurnExceedsSupply = errors.New("burn exceeds supply")

	ErrNegativeOrZeroSpread = errors.New("invariant did not increase")
	ErrNegativeSwap         = errors.New("swap infeasible against invariant")
	ErrMathInconsistency    = errors.New("solver result inconsistent with reserves")
)
