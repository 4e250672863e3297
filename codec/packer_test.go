// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackerRoundTrip(t *testing.T) {
	require := require.New(t)

	addr := DeriveAddress("owner")
	wp := NewWriter(64, 64)
	wp.PackByte(3)
	wp.PackUint16(30)
	wp.PackUint64(1_000_000)
	wp.PackAddress(addr)
	wp.PackFixedBytes([]byte{9, 9})
	require.NoError(wp.Err())
	require.Len(wp.Bytes(), 1+2+8+32+2)

	rp := NewReader(wp.Bytes(), 64)
	require.Equal(byte(3), rp.UnpackByte())
	require.Equal(uint16(30), rp.UnpackUint16())
	require.Equal(uint64(1_000_000), rp.UnpackUint64(true))
	var parsed Address
	rp.UnpackAddress(&parsed)
	require.Equal(addr, parsed)
	var fixed []byte
	rp.UnpackFixedBytes(2, &fixed)
	require.Equal([]byte{9, 9}, fixed)
	require.NoError(rp.Done())
}

func TestPackerLittleEndian(t *testing.T) {
	require := require.New(t)

	wp := NewWriter(10, 10)
	wp.PackUint16(0x0102)
	wp.PackUint64(0x0102030405060708)
	require.Equal([]byte{0x02, 0x01, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}, wp.Bytes())
}

func TestPackerErrors(t *testing.T) {
	t.Run("insufficient length is sticky", func(t *testing.T) {
		require := require.New(t)

		rp := NewReader([]byte{1, 2, 3}, 8)
		require.Zero(rp.UnpackUint64(false))
		require.ErrorIs(rp.Err(), ErrInsufficientLength)
		require.Zero(rp.UnpackByte())
		require.ErrorIs(rp.Done(), ErrInsufficientLength)
	})
	t.Run("required field", func(t *testing.T) {
		require := require.New(t)

		rp := NewReader(make([]byte, 8), 8)
		rp.UnpackUint64(true)
		require.ErrorIs(rp.Err(), ErrFieldNotPopulated)
	})
	t.Run("trailing bytes", func(t *testing.T) {
		require := require.New(t)

		rp := NewReader([]byte{1, 2}, 8)
		rp.UnpackByte()
		require.ErrorIs(rp.Done(), ErrInvalidSize)
	})
	t.Run("writer limit", func(t *testing.T) {
		require := require.New(t)

		wp := NewWriter(0, 4)
		wp.PackUint64(1)
		require.ErrorIs(wp.Err(), ErrTooLarge)
		require.Empty(wp.Bytes())
	})
	t.Run("reader limit", func(t *testing.T) {
		rp := NewReader(make([]byte, 9), 8)
		require.ErrorIs(t, rp.Err(), ErrTooLarge)
	})
}

func TestBytesText(t *testing.T) {
	require := require.New(t)

	b := Bytes{0xde, 0xad}
	text, err := b.MarshalText()
	require.NoError(err)
	require.Equal("dead", string(text))

	var parsed Bytes
	require.NoError(parsed.UnmarshalText([]byte("0xdead")))
	require.Equal(b, parsed)

	_, err = LoadHex("0xdead", 3)
	require.ErrorIs(err, ErrInvalidSize)
}
