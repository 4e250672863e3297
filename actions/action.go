// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/near/borsh-go"
	"go.uber.org/zap"

	"github.com/equation-man/mega-amm-protocol/codec"
	"github.com/equation-man/mega-amm-protocol/state"
	"github.com/equation-man/mega-amm-protocol/storage"
)

// Action is a decoded pool instruction.
type Action interface {
	codec.Typed

	// PoolAddress is the pool the action targets.
	PoolAddress() codec.Address

	// StateKeys lists every key Execute may touch. mints are the pool's
	// mints in reserve order.
	StateKeys(actor codec.Address, mints [2]codec.Address) state.Keys

	// Validate checks the payload without reading state.
	Validate() error

	// Payload encodes the action without its discriminator.
	Payload() ([]byte, error)

	Execute(ctx context.Context, mu state.Mutable, timestamp int64, actor codec.Address) (codec.Typed, error)
}

type decoder func(pool codec.Address, payload []byte) (Action, error)

var decoders = map[uint8]decoder{
	InitializeID:  decodeInitialize,
	DepositID:     decodeDeposit,
	WithdrawID:    decodeWithdraw,
	SwapID:        decodeSwap,
	WithdrawOneID: decodeWithdrawOne,
	SetStateID:    decodeSetState,
}

// Parse splits off the discriminator and decodes the instruction for pool.
func Parse(pool codec.Address, data []byte) (Action, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidInstructionData)
	}
	decode, ok := decoders[data[0]]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownInstruction, data[0])
	}
	action, err := decode(pool, data[1:])
	if err != nil {
		return nil, err
	}
	if err := action.Validate(); err != nil {
		return nil, err
	}
	return action, nil
}

// Marshal encodes action with its discriminator.
func Marshal(action Action) ([]byte, error) {
	payload, err := action.Payload()
	if err != nil {
		return nil, err
	}
	return append([]byte{action.GetTypeID()}, payload...), nil
}

// Process runs action against mu. Writes are buffered in a state.View and
// reach mu only if the action succeeds.
func Process(
	ctx context.Context,
	log logging.Logger,
	mu state.Mutable,
	action Action,
	timestamp int64,
	actor codec.Address,
) (codec.Typed, error) {
	mints, err := targetMints(ctx, mu, action)
	if err != nil {
		return nil, err
	}
	view := state.NewView(mu, action.StateKeys(actor, mints))
	result, err := action.Execute(ctx, view, timestamp, actor)
	if err != nil {
		view.Discard()
		log.Debug("action failed",
			zap.Uint8("type", action.GetTypeID()),
			zap.Stringer("pool", action.PoolAddress()),
			zap.Stringer("actor", actor),
			zap.Error(err),
		)
		return nil, err
	}
	changes := view.Len()
	if err := view.Commit(ctx); err != nil {
		return nil, err
	}
	log.Debug("action executed",
		zap.Uint8("type", action.GetTypeID()),
		zap.Stringer("pool", action.PoolAddress()),
		zap.Stringer("actor", actor),
		zap.Int("changes", changes),
	)
	return result, nil
}

// minted is implemented by actions that carry their mints in the payload.
type minted interface {
	Mints() [2]codec.Address
}

func targetMints(ctx context.Context, im state.Immutable, action Action) ([2]codec.Address, error) {
	if m, ok := action.(minted); ok {
		return m.Mints(), nil
	}
	c, err := getConfig(ctx, im, action.PoolAddress())
	if err != nil {
		return [2]codec.Address{}, err
	}
	return c.Mints(), nil
}

func getConfig(ctx context.Context, im state.Immutable, pool codec.Address) (*storage.Config, error) {
	c, err := storage.GetConfig(ctx, im, pool)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, pool)
	}
	return c, err
}

func getPool(ctx context.Context, im state.Immutable, pool codec.Address) (*storage.Pool, error) {
	p, err := storage.GetPool(ctx, im, pool)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, pool)
	}
	return p, err
}

// poolKeys are the keys shared by every action that trades against an
// existing pool.
func poolKeys(pool codec.Address, actor codec.Address, mints [2]codec.Address) state.Keys {
	keys := state.Keys{
		string(storage.PoolConfigKey(pool)): state.Read,
		string(storage.PoolParamsKey(pool)): state.Read,
		string(storage.LPSupplyKey(pool)):   state.Read,
	}
	for _, mint := range mints {
		keys.Add(string(storage.VaultKey(pool, mint)), state.Write)
		keys.Add(string(storage.BalanceKey(mint, actor)), state.All)
	}
	return keys
}

// sharesKeys extends poolKeys for actions that mint or burn LP shares.
func sharesKeys(pool codec.Address, actor codec.Address, mints [2]codec.Address) state.Keys {
	keys := poolKeys(pool, actor, mints)
	keys.Add(string(storage.LPSupplyKey(pool)), state.Write)
	keys.Add(string(storage.BalanceKey(storage.LPMint(pool), actor)), state.All)
	return keys
}

func requireState(c *storage.Config, allowed ...storage.AmmState) error {
	for _, s := range allowed {
		if c.State == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrPoolNotActive, c.State)
}

func checkExpiration(timestamp int64, expiration int64) error {
	if timestamp > expiration {
		return fmt.Errorf("%w: at %d, expired %d", ErrExpired, timestamp, expiration)
	}
	return nil
}

func decodePayload[T any](payload []byte, size int) (*T, error) {
	if len(payload) != size {
		return nil, fmt.Errorf("%w: %d bytes, expected %d", ErrInvalidInstructionData, len(payload), size)
	}
	out := new(T)
	if err := borsh.Deserialize(out, payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInstructionData, err)
	}
	return out, nil
}

func boolFlag(v uint8) (bool, error) {
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: is_x is %d", ErrInvalidInstructionData, v)
	}
}
