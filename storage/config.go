// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"fmt"

	"github.com/equation-man/mega-amm-protocol/codec"
	"github.com/equation-man/mega-amm-protocol/consts"
)

// AmmState gates which actions a pool accepts.
type AmmState uint8

const (
	Uninitialized AmmState = iota
	Initialized
	Disabled
	WithdrawOnly
)

func (s AmmState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Disabled:
		return "disabled"
	case WithdrawOnly:
		return "withdraw-only"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

func (s AmmState) Valid() bool {
	return s <= WithdrawOnly
}

// ConfigLen is the size of a serialized Config:
//
//	state u8 | seed u64 | authority [32] | mint_x [32] | mint_y [32] | fee u16 | config_bump u8
const ConfigLen = consts.ByteLen + consts.Uint64Len + 3*codec.AddressLen + consts.Uint16Len + consts.ByteLen

// Config is the pool configuration account. All integers are little-endian.
type Config struct {
	State      AmmState      `json:"state"`
	Seed       uint64        `json:"seed"`
	Authority  codec.Address `json:"authority"`
	MintX      codec.Address `json:"mintX"`
	MintY      codec.Address `json:"mintY"`
	Fee        uint16        `json:"fee"`
	ConfigBump uint8         `json:"configBump"`
}

// SetInner fills a new config and marks it Initialized.
func (c *Config) SetInner(
	seed uint64,
	authority codec.Address,
	mintX codec.Address,
	mintY codec.Address,
	fee uint16,
	configBump uint8,
) error {
	if err := c.SetFee(fee); err != nil {
		return err
	}
	c.State = Initialized
	c.Seed = seed
	c.Authority = authority
	c.MintX = mintX
	c.MintY = mintY
	c.ConfigBump = configBump
	return nil
}

func (c *Config) SetState(state AmmState) error {
	if !state.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidState, state)
	}
	c.State = state
	return nil
}

func (c *Config) SetFee(fee uint16) error {
	if uint64(fee) >= consts.BasisPoints {
		return fmt.Errorf("%w: %d", ErrInvalidFee, fee)
	}
	c.Fee = fee
	return nil
}

// HasAuthority reports whether the pool can be administered. A zero
// authority makes the pool immutable.
func (c *Config) HasAuthority() bool {
	return c.Authority != codec.EmptyAddress
}

// Mints returns the pool's mints in reserve order.
func (c *Config) Mints() [2]codec.Address {
	return [2]codec.Address{c.MintX, c.MintY}
}

func (c *Config) Marshal() ([]byte, error) {
	p := codec.NewWriter(ConfigLen, ConfigLen)
	p.PackByte(byte(c.State))
	p.PackUint64(c.Seed)
	p.PackAddress(c.Authority)
	p.PackAddress(c.MintX)
	p.PackAddress(c.MintY)
	p.PackUint16(c.Fee)
	p.PackByte(c.ConfigBump)
	return p.Bytes(), p.Err()
}

func UnmarshalConfig(b []byte) (*Config, error) {
	if len(b) != ConfigLen {
		return nil, fmt.Errorf("%w: config is %d bytes, expected %d", ErrInvalidAccountData, len(b), ConfigLen)
	}
	var c Config
	p := codec.NewReader(b, ConfigLen)
	c.State = AmmState(p.UnpackByte())
	c.Seed = p.UnpackUint64(false)
	p.UnpackAddress(&c.Authority)
	p.UnpackAddress(&c.MintX)
	p.UnpackAddress(&c.MintY)
	c.Fee = p.UnpackUint16()
	c.ConfigBump = p.UnpackByte()
	if err := p.Done(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAccountData, err)
	}
	if !c.State.Valid() {
		return nil, fmt.Errorf("%w: %w: %d", ErrInvalidAccountData, ErrInvalidState, c.State)
	}
	return &c, nil
}

// ParamsLen is the size of serialized Params: amp u64 | lp_decimals u8 | lp_bump u8.
const ParamsLen = consts.Uint64Len + 2*consts.ByteLen

// Params holds the curve parameters that the config account does not.
type Params struct {
	Amp        uint64 `json:"amp"`
	LPDecimals uint8  `json:"lpDecimals"`
	LPBump     uint8  `json:"lpBump"`
}

func (p *Params) Marshal() ([]byte, error) {
	w := codec.NewWriter(ParamsLen, ParamsLen)
	w.PackUint64(p.Amp)
	w.PackByte(p.LPDecimals)
	w.PackByte(p.LPBump)
	return w.Bytes(), w.Err()
}

func UnmarshalParams(b []byte) (*Params, error) {
	if len(b) != ParamsLen {
		return nil, fmt.Errorf("%w: params is %d bytes, expected %d", ErrInvalidAccountData, len(b), ParamsLen)
	}
	r := codec.NewReader(b, ParamsLen)
	p := &Params{
		Amp:        r.UnpackUint64(true),
		LPDecimals: r.UnpackByte(),
		LPBump:     r.UnpackByte(),
	}
	if err := r.Done(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAccountData, err)
	}
	return p, nil
}
