// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"errors"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestViewPermissions(t *testing.T) {
	ctx := context.Background()
	parent := NewInMemoryStore()
	require.NoError(t, parent.Insert(ctx, []byte("existing"), []byte{1}))

	tests := []struct {
		name        string
		keys        Keys
		op          func(*View) error
		expectedErr error
	}{
		{
			name: "read undeclared",
			keys: Keys{},
			op: func(v *View) error {
				_, err := v.GetValue(ctx, []byte("existing"))
				return err
			},
			expectedErr: ErrInvalidKeyOrPermission,
		},
		{
			name: "read missing",
			keys: Keys{"missing": Read},
			op: func(v *View) error {
				_, err := v.GetValue(ctx, []byte("missing"))
				return err
			},
			expectedErr: database.ErrNotFound,
		},
		{
			name: "create with allocate",
			keys: Keys{"new": Allocate},
			op: func(v *View) error {
				return v.Insert(ctx, []byte("new"), []byte{2})
			},
		},
		{
			name: "create with write only",
			keys: Keys{"new": Write},
			op: func(v *View) error {
				return v.Insert(ctx, []byte("new"), []byte{2})
			},
			expectedErr: ErrInvalidKeyOrPermission,
		},
		{
			name: "modify with allocate only",
			keys: Keys{"existing": Allocate},
			op: func(v *View) error {
				return v.Insert(ctx, []byte("existing"), []byte{2})
			},
			expectedErr: ErrInvalidKeyOrPermission,
		},
		{
			name: "modify with write",
			keys: Keys{"existing": Write},
			op: func(v *View) error {
				return v.Insert(ctx, []byte("existing"), []byte{2})
			},
		},
		{
			name: "remove with read",
			keys: Keys{"existing": Read},
			op: func(v *View) error {
				return v.Remove(ctx, []byte("existing"))
			},
			expectedErr: ErrInvalidKeyOrPermission,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.op(NewView(parent, tt.keys)), tt.expectedErr)
		})
	}
}

func TestViewBuffersUntilCommit(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	parent := NewInMemoryStore()
	require.NoError(parent.Insert(ctx, []byte("a"), []byte{1}))

	v := NewView(parent, Keys{"a": All, "b": All})
	require.NoError(v.Insert(ctx, []byte("b"), []byte{2}))
	require.NoError(v.Remove(ctx, []byte("a")))
	require.Equal(2, v.Len())

	_, err := v.GetValue(ctx, []byte("a"))
	require.ErrorIs(err, database.ErrNotFound)
	value, err := v.GetValue(ctx, []byte("b"))
	require.NoError(err)
	require.Equal([]byte{2}, value)

	// parent untouched
	require.Equal(map[string][]byte{"a": {1}}, parent.Storage)

	require.NoError(v.Commit(ctx))
	require.Equal(map[string][]byte{"b": {2}}, parent.Storage)
	require.Zero(v.Len())
}

func TestViewDiscard(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	parent := NewInMemoryStore()
	v := NewView(parent, Keys{"a": All})
	require.NoError(v.Insert(ctx, []byte("a"), []byte{1}))
	v.Discard()
	require.NoError(v.Commit(ctx))
	require.Empty(parent.Storage)
}

func TestViewCommitPropagatesParentFailure(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	errDisk := errors.New("disk full")

	ctrl := gomock.NewController(t)
	parent := NewMockMutable(ctrl)
	parent.EXPECT().GetValue(gomock.Any(), []byte("a")).Return(nil, database.ErrNotFound)
	parent.EXPECT().GetValue(gomock.Any(), []byte("b")).Return([]byte{1}, nil)
	gomock.InOrder(
		parent.EXPECT().Insert(gomock.Any(), []byte("a"), []byte{7}).Return(nil),
		parent.EXPECT().Remove(gomock.Any(), []byte("b")).Return(errDisk),
	)

	v := NewView(parent, Keys{"a": All, "b": All})
	require.NoError(v.Insert(ctx, []byte("a"), []byte{7}))
	_, err := v.GetValue(ctx, []byte("b"))
	require.NoError(err)
	require.NoError(v.Remove(ctx, []byte("b")))
	require.ErrorIs(v.Commit(ctx), errDisk)
}
