// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	ByteLen    = 1
	Uint16Len  = 2
	Uint64Len  = 8
	Int64Len   = 8
	AddressLen = 32
	MaxUint64  = ^uint64(0)
)

const (
	// MaxAssets is the number of reserves a pool holds.
	MaxAssets = 2

	// BasisPoints is the fee denominator (1 bp = 0.01%).
	BasisPoints uint64 = 10_000

	// ImbalancedWithdrawFeeDivisor withholds 1% of a single-sided payout.
	ImbalancedWithdrawFeeDivisor uint64 = 100

	// InvariantIterations bounds the D solver.
	InvariantIterations = 20
	// BalanceIterations bounds the y solver.
	BalanceIterations = 64

	// DefaultAmp is used when a pool is initialized without an amplification.
	DefaultAmp uint64 = 100
)
