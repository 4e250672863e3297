// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package numeric provides the checked double-width integer used by the
// StableSwap solvers. Values are capped at 2^128-1 and every operation
// reports overflow, underflow and division by zero instead of wrapping.
package numeric

import (
	"fmt"

	"github.com/holiman/uint256"
)

// WideBits is the width of [Wide], twice the width of a uint64 balance.
const WideBits = 128

var maxWide = func() uint256.Int {
	var m uint256.Int
	m.Lsh(uint256.NewInt(1), WideBits)
	m.SubUint64(&m, 1)
	return m
}()

// Wide is an unsigned integer in [0, 2^128-1]. The zero value is 0.
type Wide struct {
	v uint256.Int
}

// MaxWide returns the largest representable Wide.
func MaxWide() Wide {
	return Wide{v: maxWide}
}

func FromUint64(x uint64) Wide {
	var w Wide
	w.v.SetUint64(x)
	return w
}

// FromDecimal parses a base-10 string.
func FromDecimal(s string) (Wide, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return Wide{}, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}
	if v.Gt(&maxWide) {
		return Wide{}, fmt.Errorf("%w: %q", ErrOverflow, s)
	}
	return Wide{v: *v}, nil
}

// MustFromDecimal is FromDecimal for constants known to be valid.
func MustFromDecimal(s string) Wide {
	w, err := FromDecimal(s)
	if err != nil {
		panic(err)
	}
	return w
}

func bounded(v *uint256.Int, overflow bool) (Wide, error) {
	if overflow || v.Gt(&maxWide) {
		return Wide{}, ErrOverflow
	}
	return Wide{v: *v}, nil
}

func Add(a, b Wide) (Wide, error) {
	var z uint256.Int
	_, overflow := z.AddOverflow(&a.v, &b.v)
	return bounded(&z, overflow)
}

func Sub(a, b Wide) (Wide, error) {
	var z uint256.Int
	if _, underflow := z.SubOverflow(&a.v, &b.v); underflow {
		return Wide{}, ErrUnderflow
	}
	return Wide{v: z}, nil
}

func Mul(a, b Wide) (Wide, error) {
	var z uint256.Int
	_, overflow := z.MulOverflow(&a.v, &b.v)
	return bounded(&z, overflow)
}

// Div is floor division.
func Div(a, b Wide) (Wide, error) {
	if b.v.IsZero() {
		return Wide{}, ErrDivisionByZero
	}
	var z uint256.Int
	z.Div(&a.v, &b.v)
	return Wide{v: z}, nil
}

// AbsDiff returns |a - b|.
func AbsDiff(a, b Wide) Wide {
	var z uint256.Int
	if a.v.Lt(&b.v) {
		z.Sub(&b.v, &a.v)
	} else {
		z.Sub(&a.v, &b.v)
	}
	return Wide{v: z}
}

// Half returns floor(a / 2).
func Half(a Wide) Wide {
	var z uint256.Int
	z.Rsh(&a.v, 1)
	return Wide{v: z}
}

func Max(a, b Wide) Wide {
	if a.Lt(b) {
		return b
	}
	return a
}

func Min(a, b Wide) Wide {
	if b.Lt(a) {
		return b
	}
	return a
}

func (w Wide) Cmp(o Wide) int {
	return w.v.Cmp(&o.v)
}

func (w Wide) Lt(o Wide) bool {
	return w.v.Lt(&o.v)
}

func (w Wide) Gt(o Wide) bool {
	return w.v.Gt(&o.v)
}

func (w Wide) Eq(o Wide) bool {
	return w.v.Eq(&o.v)
}

func (w Wide) IsZero() bool {
	return w.v.IsZero()
}

func (w Wide) String() string {
	return w.v.Dec()
}

// MarshalText encodes w as a decimal string.
func (w Wide) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

func (w *Wide) UnmarshalText(text []byte) error {
	v, err := FromDecimal(string(text))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// Narrow converts w back to the native balance width.
func Narrow(w Wide) (uint64, error) {
	if !w.v.IsUint64() {
		return 0, fmt.Errorf("%w: %s", ErrScalingOverflow, w)
	}
	return w.v.Uint64(), nil
}
