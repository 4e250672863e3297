// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import "errors"

var (
	ErrInvalidAccountData  = errors.New("invalid account data")
	ErrInvalidState        = errors.New("invalid amm state")
	ErrInvalidFee          = errors.New("fee must be below 10000 basis points")
	ErrInsufficientBalance = errors.New("insufficient balance")
)
