// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

// Typed is implemented by values that carry a one byte type tag on the wire.
type Typed interface {
	GetTypeID() uint8
}
