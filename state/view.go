// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/equation-man/mega-amm-protocol/codec"
)

var _ Mutable = (*View)(nil)

var ErrInvalidKeyOrPermission = errors.New("key is not declared with the required permission")

// View buffers reads and writes of a single action over a parent store.
// Every key must be declared up front in Keys. Nothing reaches the parent
// until Commit, so an action that fails leaves the parent untouched.
type View struct {
	parent  Mutable
	keys    Keys
	changes map[string]database.BatchOp
}

func NewView(parent Mutable, keys Keys) *View {
	return &View{
		parent:  parent,
		keys:    keys,
		changes: make(map[string]database.BatchOp),
	}
}

func (v *View) check(key []byte, require Permissions) error {
	if !v.keys[string(key)].Has(require) {
		return fmt.Errorf("%w: %s needs %s", ErrInvalidKeyOrPermission, codec.ToHex(key), require)
	}
	return nil
}

func (v *View) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	if err := v.check(key, Read); err != nil {
		return nil, err
	}
	if op, ok := v.changes[string(key)]; ok {
		if op.Delete {
			return nil, database.ErrNotFound
		}
		return op.Value, nil
	}
	return v.parent.GetValue(ctx, key)
}

// Insert requires Allocate for a key that does not exist yet and Write for
// one that does.
func (v *View) Insert(ctx context.Context, key []byte, value []byte) error {
	require := Write
	_, err := v.GetValue(ctx, key)
	switch {
	case errors.Is(err, database.ErrNotFound):
		require = Allocate
	case err != nil:
		return err
	}
	if err := v.check(key, require); err != nil {
		return err
	}
	v.changes[string(key)] = database.BatchOp{
		Key:   slices.Clone(key),
		Value: slices.Clone(value),
	}
	return nil
}

func (v *View) Remove(_ context.Context, key []byte) error {
	if err := v.check(key, Write); err != nil {
		return err
	}
	v.changes[string(key)] = database.BatchOp{
		Key:    slices.Clone(key),
		Delete: true,
	}
	return nil
}

// Len returns the number of pending changes.
func (v *View) Len() int {
	return len(v.changes)
}

// Discard drops all pending changes.
func (v *View) Discard() {
	clear(v.changes)
}

// Commit writes the pending changes to the parent in key order. A parent
// that implements Batcher receives them as one atomic batch.
func (v *View) Commit(ctx context.Context) error {
	keys := maps.Keys(v.changes)
	slices.Sort(keys)
	ops := make([]database.BatchOp, 0, len(keys))
	for _, k := range keys {
		ops = append(ops, v.changes[k])
	}
	defer v.Discard()

	if b, ok := v.parent.(Batcher); ok {
		return b.ApplyBatch(ctx, ops)
	}
	for _, op := range ops {
		var err error
		if op.Delete {
			err = v.parent.Remove(ctx, op.Key)
		} else {
			err = v.parent.Insert(ctx, op.Key, op.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
