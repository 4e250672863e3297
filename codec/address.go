// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/hex"

	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/equation-man/mega-amm-protocol/consts"
)

const AddressLen = consts.AddressLen

// Address is the 32 byte key of an account, mint or pool.
type Address [AddressLen]byte

var EmptyAddress = Address{}

// DeriveAddress hashes prefix and parts into an address that no private key
// controls. Pools are derived from their seed and mints.
func DeriveAddress(prefix string, parts ...[]byte) Address {
	size := len(prefix)
	for _, p := range parts {
		size += len(p)
	}
	b := make([]byte, 0, size)
	b = append(b, prefix...)
	for _, p := range parts {
		b = append(b, p...)
	}
	return Address(hashing.ComputeHash256Array(b))
}

// StringToAddress returns Address with bytes set to the hex decoding
// of s.
// StringToAddress uses copy, which simply copies the minimum of
// either AddressLen or the length of the hex decoded string.
func StringToAddress(s string) Address {
	b, _ := LoadHex(s, AnySize)
	var a Address
	copy(a[:], b)
	return a
}

// ParseAddress decodes a hex address of exactly AddressLen bytes.
func ParseAddress(s string) (Address, error) {
	b, err := LoadHex(s, AddressLen)
	if err != nil {
		return EmptyAddress, err
	}
	return Address(b), nil
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// MarshalText returns the hex representation of a.
func (a Address) MarshalText() ([]byte, error) {
	result := make([]byte, len(a)*2+2)
	copy(result, `0x`)
	hex.Encode(result[2:], a[:])
	return result, nil
}

// UnmarshalText parses a hex-encoded address.
func (a *Address) UnmarshalText(input []byte) error {
	b, err := LoadHex(string(input), AddressLen)
	if err != nil {
		return err
	}
	copy(a[:], b)
	return nil
}
