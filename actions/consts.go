// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import "github.com/equation-man/mega-amm-protocol/consts"

// Instruction discriminators
const (
	InitializeID uint8 = iota
	DepositID
	WithdrawID
	SwapID
	WithdrawOneID
	SetStateID
)

// Payload sizes, excluding the discriminator.
const (
	InitializeBaseLen          = consts.Uint64Len + consts.Uint16Len + 2*consts.AddressLen + 3*consts.ByteLen
	InitializeWithAuthorityLen = InitializeBaseLen + consts.AddressLen
	InitializeWithAmpLen       = InitializeWithAuthorityLen + consts.Uint64Len

	DepositLen     = 3*consts.Uint64Len + consts.Int64Len
	WithdrawLen    = 3*consts.Uint64Len + consts.Int64Len
	SwapLen        = 2*consts.Uint64Len + consts.Int64Len + consts.ByteLen
	WithdrawOneLen = 2*consts.Uint64Len + consts.Int64Len + consts.ByteLen
	SetStateLen    = consts.ByteLen
)
