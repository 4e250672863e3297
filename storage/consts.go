// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

// Key prefixes
const (
	poolConfigPrefix byte = iota
	poolParamsPrefix
	vaultPrefix
	lpSupplyPrefix
	balancePrefix
)

// Chunks
const (
	PoolConfigChunks uint16 = 1
	PoolParamsChunks uint16 = 1
	VaultChunks      uint16 = 1
	LPSupplyChunks   uint16 = 1
	BalanceChunks    uint16 = 1
)

// Address derivation prefixes
const (
	poolSeed    = "config"
	lpMintSeed  = "lp"
	namespaceDB = "pooldb"
)

const MaxLPDecimals = 18
