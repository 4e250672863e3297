// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"encoding/binary"

	"github.com/equation-man/mega-amm-protocol/codec"
	"github.com/equation-man/mega-amm-protocol/consts"
)

// PoolAddress derives the address of the pool identified by seed and its
// two mints.
func PoolAddress(seed uint64, mintX codec.Address, mintY codec.Address) codec.Address {
	s := make([]byte, consts.Uint64Len)
	binary.LittleEndian.PutUint64(s, seed)
	return codec.DeriveAddress(poolSeed, s, mintX[:], mintY[:])
}

// LPMint is the mint of a pool's LP shares.
func LPMint(pool codec.Address) codec.Address {
	return codec.DeriveAddress(lpMintSeed, pool[:])
}

func PoolConfigKey(pool codec.Address) []byte {
	return addressKey(poolConfigPrefix, pool, PoolConfigChunks)
}

func PoolParamsKey(pool codec.Address) []byte {
	return addressKey(poolParamsPrefix, pool, PoolParamsChunks)
}

func LPSupplyKey(pool codec.Address) []byte {
	return addressKey(lpSupplyPrefix, pool, LPSupplyChunks)
}

func VaultKey(pool codec.Address, mint codec.Address) []byte {
	return pairKey(vaultPrefix, pool, mint, VaultChunks)
}

func BalanceKey(mint codec.Address, owner codec.Address) []byte {
	return pairKey(balancePrefix, mint, owner, BalanceChunks)
}

func addressKey(prefix byte, a codec.Address, chunks uint16) []byte {
	k := make([]byte, 1+codec.AddressLen+consts.Uint16Len)
	k[0] = prefix
	copy(k[1:], a[:])
	binary.BigEndian.PutUint16(k[1+codec.AddressLen:], chunks)
	return k
}

func pairKey(prefix byte, a codec.Address, b codec.Address, chunks uint16) []byte {
	k := make([]byte, 1+codec.AddressLen+codec.AddressLen+consts.Uint16Len)
	k[0] = prefix
	copy(k[1:], a[:])
	copy(k[1+codec.AddressLen:], b[:])
	binary.BigEndian.PutUint16(k[1+codec.AddressLen+codec.AddressLen:], chunks)
	return k
}
