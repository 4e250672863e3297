// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package numeric

import "errors"

var (
	ErrOverflow        = errors.New("overflow")
	ErrUnderflow       = errors.New("underflow")
	ErrDivisionByZero  = errors.New("division by zero")
	ErrScalingOverflow = errors.New("value does not fit in 64 bits")
	ErrBufferTooSmall  = errors.New("destination buffer too small")
	ErrInvalidDecimal  = errors.New("invalid decimal")
)
