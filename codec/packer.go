// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/equation-man/mega-amm-protocol/consts"
)

// Packer reads and writes fixed-width, little-endian fields at explicit
// offsets. The first error is sticky: every later call is a no-op and Err
// returns it.
type Packer struct {
	b      []byte
	offset int
	limit  int
	errs   wrappers.Errs
}

// NewWriter returns a Packer that writes at most limit bytes.
func NewWriter(initial, limit int) *Packer {
	return &Packer{
		b:     make([]byte, 0, initial),
		limit: limit,
	}
}

// NewReader returns a Packer that reads src, which must be no longer than
// limit.
func NewReader(src []byte, limit int) *Packer {
	p := &Packer{
		b:     src,
		limit: limit,
	}
	if len(src) > limit {
		p.addErr(fmt.Errorf("%w: %d > %d", ErrTooLarge, len(src), limit))
	}
	return p
}

func (p *Packer) addErr(err error) {
	p.errs.Add(err)
}

func (p *Packer) Err() error {
	return p.errs.Err
}

func (p *Packer) Bytes() []byte {
	return p.b
}

// Empty reports whether every byte has been read.
func (p *Packer) Empty() bool {
	return p.offset == len(p.b)
}

// Done returns the sticky error, or ErrInvalidSize if unread bytes remain.
func (p *Packer) Done() error {
	if p.errs.Errored() {
		return p.errs.Err
	}
	if !p.Empty() {
		return fmt.Errorf("%w: %d trailing bytes", ErrInvalidSize, len(p.b)-p.offset)
	}
	return nil
}

func (p *Packer) grow(n int) []byte {
	if p.errs.Errored() {
		return nil
	}
	if len(p.b)+n > p.limit {
		p.addErr(fmt.Errorf("%w: %d > %d", ErrTooLarge, len(p.b)+n, p.limit))
		return nil
	}
	start := len(p.b)
	p.b = append(p.b, make([]byte, n)...)
	p.offset = len(p.b)
	return p.b[start:]
}

func (p *Packer) next(n int) []byte {
	if p.errs.Errored() {
		return nil
	}
	if p.offset+n > len(p.b) {
		p.addErr(fmt.Errorf("%w: need %d at offset %d of %d", ErrInsufficientLength, n, p.offset, len(p.b)))
		return nil
	}
	out := p.b[p.offset : p.offset+n]
	p.offset += n
	return out
}

func (p *Packer) PackByte(v byte) {
	if b := p.grow(consts.ByteLen); b != nil {
		b[0] = v
	}
}

func (p *Packer) UnpackByte() byte {
	if b := p.next(consts.ByteLen); b != nil {
		return b[0]
	}
	return 0
}

func (p *Packer) PackUint16(v uint16) {
	if b := p.grow(consts.Uint16Len); b != nil {
		binary.LittleEndian.PutUint16(b, v)
	}
}

func (p *Packer) UnpackUint16() uint16 {
	if b := p.next(consts.Uint16Len); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (p *Packer) PackUint64(v uint64) {
	if b := p.grow(consts.Uint64Len); b != nil {
		binary.LittleEndian.PutUint64(b, v)
	}
}

// UnpackUint64 reads a uint64 and, if required, fails on zero.
func (p *Packer) UnpackUint64(required bool) uint64 {
	b := p.next(consts.Uint64Len)
	if b == nil {
		return 0
	}
	v := binary.LittleEndian.Uint64(b)
	if required && v == 0 {
		p.addErr(fmt.Errorf("%w: uint64", ErrFieldNotPopulated))
	}
	return v
}

func (p *Packer) PackFixedBytes(v []byte) {
	if b := p.grow(len(v)); b != nil {
		copy(b, v)
	}
}

// UnpackFixedBytes copies size bytes into dest.
func (p *Packer) UnpackFixedBytes(size int, dest *[]byte) {
	if b := p.next(size); b != nil {
		*dest = append((*dest)[:0], b...)
	}
}

func (p *Packer) PackAddress(a Address) {
	p.PackFixedBytes(a[:])
}

func (p *Packer) UnpackAddress(dest *Address) {
	if b := p.next(AddressLen); b != nil {
		copy(dest[:], b)
	}
}
