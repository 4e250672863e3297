// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

// Wire discriminants for withdraw modes.
const (
	BalancedModeID uint8 = iota
	ImbalancedModeID
)

// WithdrawMode selects how burned LP shares are paid out. It is implemented
// by Balanced and Imbalanced only.
type WithdrawMode interface {
	ModeID() uint8
	withdrawMode()
}

// Balanced pays every asset in proportion to the burned share.
type Balanced struct{}

func (Balanced) ModeID() uint8 { return BalancedModeID }

func (Balanced) withdrawMode() {}

// Imbalanced pays a single asset, at Index, by lowering the invariant D in
// proportion to the burned share.
type Imbalanced struct {
	D     uint64 `json:"d"`
	Amp   uint64 `json:"amp"`
	Index int    `json:"index"`
}

func (Imbalanced) ModeID() uint8 { return ImbalancedModeID }

func (Imbalanced) withdrawMode() {}

// ModeFromID maps a wire discriminant to its mode. The invariant, amp and
// index are only read for ImbalancedModeID.
func ModeFromID(id uint8, d uint64, amp uint64, index int) (WithdrawMode, error) {
	switch id {
	case BalancedModeID:
		return Balanced{}, nil
	case ImbalancedModeID:
		return Imbalanced{D: d, Amp: amp, Index: index}, nil
	default:
		return nil, ErrInvalidWithdrawMode
	}
}
