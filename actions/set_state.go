// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"fmt"

	"github.com/near/borsh-go"

	"github.com/equation-man/mega-amm-protocol/codec"
	"github.com/equation-man/mega-amm-protocol/state"
	"github.com/equation-man/mega-amm-protocol/storage"
)

var (
	_ Action      = (*SetState)(nil)
	_ codec.Typed = (*SetStateResult)(nil)
)

// SetState moves a pool between states. Only the pool authority may call
// it, so pools without one never change state.
type SetState struct {
	Pool codec.Address `borsh_skip:"true" json:"pool"`

	State storage.AmmState `json:"state"`
}

func decodeSetState(pool codec.Address, payload []byte) (Action, error) {
	s, err := decodePayload[SetState](payload, SetStateLen)
	if err != nil {
		return nil, err
	}
	s.Pool = pool
	return s, nil
}

func (*SetState) GetTypeID() uint8 {
	return SetStateID
}

func (s *SetState) PoolAddress() codec.Address {
	return s.Pool
}

func (s *SetState) StateKeys(codec.Address, [2]codec.Address) state.Keys {
	return state.Keys{
		string(storage.PoolConfigKey(s.Pool)): state.Write,
	}
}

func (s *SetState) Validate() error {
	if !s.State.Valid() || s.State == storage.Uninitialized {
		return fmt.Errorf("%w: %w: %s", ErrInvalidInstructionData, storage.ErrInvalidState, s.State)
	}
	return nil
}

func (s *SetState) Payload() ([]byte, error) {
	return borsh.Serialize(*s)
}

func (s *SetState) Execute(ctx context.Context, mu state.Mutable, _ int64, actor codec.Address) (codec.Typed, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	c, err := getConfig(ctx, mu, s.Pool)
	if err != nil {
		return nil, err
	}
	if !c.HasAuthority() || c.Authority != actor {
		return nil, ErrUnauthorized
	}
	previous := c.State
	if err := c.SetState(s.State); err != nil {
		return nil, err
	}
	if err := storage.SetConfig(ctx, mu, s.Pool, c); err != nil {
		return nil, err
	}
	return &SetStateResult{
		Previous: previous,
		Current:  c.State,
	}, nil
}

type SetStateResult struct {
	Previous storage.AmmState `json:"previous"`
	Current  storage.AmmState `json:"current"`
}

func (*SetStateResult) GetTypeID() uint8 {
	return SetStateID
}
