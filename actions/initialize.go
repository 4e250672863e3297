// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/near/borsh-go"

	"github.com/equation-man/mega-amm-protocol/codec"
	"github.com/equation-man/mega-amm-protocol/consts"
	"github.com/equation-man/mega-amm-protocol/state"
	"github.com/equation-man/mega-amm-protocol/storage"
)

var (
	_ Action      = (*Initialize)(nil)
	_ codec.Typed = (*InitializeResult)(nil)
)

// Initialize creates a pool. The trailing authority and amp fields are
// optional on the wire: a missing authority leaves the pool immutable and a
// missing amp uses consts.DefaultAmp.
type Initialize struct {
	Pool codec.Address `borsh_skip:"true" json:"pool"`

	Seed       uint64        `json:"seed"`
	Fee        uint16        `json:"fee"`
	MintX      codec.Address `json:"mintX"`
	MintY      codec.Address `json:"mintY"`
	ConfigBump uint8         `json:"configBump"`
	LPDecimals uint8         `json:"lpDecimals"`
	LPBump     uint8         `json:"lpBump"`

	Authority codec.Address `borsh_skip:"true" json:"authority"`
	Amp       uint64        `borsh_skip:"true" json:"amp"`
}

func decodeInitialize(pool codec.Address, payload []byte) (Action, error) {
	switch len(payload) {
	case InitializeBaseLen, InitializeWithAuthorityLen, InitializeWithAmpLen:
	default:
		return nil, fmt.Errorf("%w: initialize is %d bytes", ErrInvalidInstructionData, len(payload))
	}
	i, err := decodePayload[Initialize](payload[:InitializeBaseLen], InitializeBaseLen)
	if err != nil {
		return nil, err
	}
	i.Pool = pool
	i.Amp = consts.DefaultAmp

	tail := payload[InitializeBaseLen:]
	p := codec.NewReader(tail, InitializeWithAmpLen-InitializeBaseLen)
	if len(tail) >= consts.AddressLen {
		p.UnpackAddress(&i.Authority)
	}
	if len(tail) == InitializeWithAmpLen-InitializeBaseLen {
		i.Amp = p.UnpackUint64(false)
	}
	if err := p.Done(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInstructionData, err)
	}
	return i, nil
}

func (*Initialize) GetTypeID() uint8 {
	return InitializeID
}

func (i *Initialize) PoolAddress() codec.Address {
	return i.Pool
}

func (i *Initialize) Mints() [2]codec.Address {
	return [2]codec.Address{i.MintX, i.MintY}
}

func (i *Initialize) StateKeys(_ codec.Address, mints [2]codec.Address) state.Keys {
	keys := state.Keys{
		string(storage.PoolConfigKey(i.Pool)): state.All,
		string(storage.PoolParamsKey(i.Pool)): state.All,
		string(storage.LPSupplyKey(i.Pool)):   state.All,
	}
	for _, mint := range mints {
		keys.Add(string(storage.VaultKey(i.Pool, mint)), state.All)
	}
	return keys
}

func (i *Initialize) Validate() error {
	if i.MintX == i.MintY {
		return ErrIdenticalMints
	}
	if uint64(i.Fee) >= consts.BasisPoints {
		return fmt.Errorf("%w: %d", storage.ErrInvalidFee, i.Fee)
	}
	if i.Amp == 0 {
		return ErrInvalidAmp
	}
	if i.LPDecimals > storage.MaxLPDecimals {
		return fmt.Errorf("%w: %d lp decimals", ErrInvalidInstructionData, i.LPDecimals)
	}
	return nil
}

// Payload omits amp when it is the default and the authority when the pool
// is immutable and amp is the default.
func (i *Initialize) Payload() ([]byte, error) {
	b, err := borsh.Serialize(*i)
	if err != nil {
		return nil, err
	}
	if i.Authority == codec.EmptyAddress && i.Amp == consts.DefaultAmp {
		return b, nil
	}
	p := codec.NewWriter(InitializeWithAmpLen-InitializeBaseLen, InitializeWithAmpLen-InitializeBaseLen)
	p.PackAddress(i.Authority)
	if i.Amp != consts.DefaultAmp {
		p.PackUint64(i.Amp)
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return append(b, p.Bytes()...), nil
}

func (i *Initialize) Execute(ctx context.Context, mu state.Mutable, _ int64, _ codec.Address) (codec.Typed, error) {
	if err := i.Validate(); err != nil {
		return nil, err
	}
	if expected := storage.PoolAddress(i.Seed, i.MintX, i.MintY); i.Pool != expected {
		return nil, fmt.Errorf("%w: got %s, derived %s", ErrInvalidAddress, i.Pool, expected)
	}
	_, err := storage.GetConfig(ctx, mu, i.Pool)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", ErrPoolExists, i.Pool)
	case !errors.Is(err, database.ErrNotFound):
		return nil, err
	}

	var c storage.Config
	if err := c.SetInner(i.Seed, i.Authority, i.MintX, i.MintY, i.Fee, i.ConfigBump); err != nil {
		return nil, err
	}
	if err := storage.SetConfig(ctx, mu, i.Pool, &c); err != nil {
		return nil, err
	}
	params := &storage.Params{
		Amp:        i.Amp,
		LPDecimals: i.LPDecimals,
		LPBump:     i.LPBump,
	}
	if err := storage.SetParams(ctx, mu, i.Pool, params); err != nil {
		return nil, err
	}
	for _, mint := range c.Mints() {
		if err := storage.SetVault(ctx, mu, i.Pool, mint, 0); err != nil {
			return nil, err
		}
	}
	if err := storage.SetLPSupply(ctx, mu, i.Pool, 0); err != nil {
		return nil, err
	}
	return &InitializeResult{
		Pool:   i.Pool,
		LPMint: storage.LPMint(i.Pool),
		Amp:    i.Amp,
	}, nil
}

type InitializeResult struct {
	Pool   codec.Address `json:"pool"`
	LPMint codec.Address `json:"lpMint"`
	Amp    uint64        `json:"amp"`
}

func (*InitializeResult) GetTypeID() uint8 {
	return InitializeID
}
