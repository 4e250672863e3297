// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package numeric

import "fmt"

// ConstantSum returns the checked sum of reserves. An empty set sums to 0.
func ConstantSum(reserves []Wide) (Wide, error) {
	var (
		sum Wide
		err error
	)
	for i, r := range reserves {
		sum, err = Add(sum, r)
		if err != nil {
			return Wide{}, fmt.Errorf("%w: summing reserve %d", err, i)
		}
	}
	return sum, nil
}

// ConstantProduct returns the checked product of reserves. An empty set
// yields 1.
func ConstantProduct(reserves []Wide) (Wide, error) {
	var (
		product = FromUint64(1)
		err     error
	)
	for i, r := range reserves {
		product, err = Mul(product, r)
		if err != nil {
			return Wide{}, fmt.Errorf("%w: multiplying reserve %d", err, i)
		}
	}
	return product, nil
}

// Widen copies src into dst element by element.
func Widen(dst []Wide, src []uint64) error {
	if len(dst) < len(src) {
		return fmt.Errorf("%w: need %d slots, have %d", ErrBufferTooSmall, len(src), len(dst))
	}
	for i, v := range src {
		dst[i] = FromUint64(v)
	}
	return nil
}

// WidenAll allocates and returns the widened copy of src.
func WidenAll(src []uint64) []Wide {
	dst := make([]Wide, len(src))
	_ = Widen(dst, src)
	return dst
}

// Extremes returns the smallest and largest reserve. Both are zero for an
// empty set.
func Extremes(reserves []Wide) (Wide, Wide) {
	if len(reserves) == 0 {
		return Wide{}, Wide{}
	}
	lo, hi := reserves[0], reserves[0]
	for _, r := range reserves[1:] {
		if r.Lt(lo) {
			lo = r
		}
		if r.Gt(hi) {
			hi = r
		}
	}
	return lo, hi
}
