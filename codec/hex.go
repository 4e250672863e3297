// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AnySize disables the length check in LoadHex.
const AnySize = -1

func ToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// LoadHex decodes s, with or without a 0x prefix, and checks that it holds
// exactly expectedSize bytes.
func LoadHex(s string, expectedSize int) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	if expectedSize != AnySize && len(b) != expectedSize {
		return nil, fmt.Errorf("%w: %d bytes, expected %d", ErrInvalidSize, len(b), expectedSize)
	}
	return b, nil
}

// Bytes is raw instruction data that reads and writes as hex in JSON.
type Bytes []byte

func (b Bytes) String() string {
	return ToHex(b)
}

func (b Bytes) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Bytes) UnmarshalText(text []byte) error {
	decoded, err := LoadHex(string(text), AnySize)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}
