// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPermissionsHas(t *testing.T) {
	tests := []struct {
		name       string
		permission Permissions
		canRead    bool
		canAlloc   bool
		canWrite   bool
	}{
		{
			name:       "read",
			permission: Read,
			canRead:    true,
		},
		{
			name:       "allocate implies read",
			permission: Allocate,
			canRead:    true,
			canAlloc:   true,
		},
		{
			name:       "write implies read",
			permission: Write,
			canRead:    true,
			canWrite:   true,
		},
		{
			name:       "all",
			permission: All,
			canRead:    true,
			canAlloc:   true,
			canWrite:   true,
		},
		{
			name:       "none",
			permission: None,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			require.Equal(tt.canRead, tt.permission.Has(Read))
			require.Equal(tt.canAlloc, tt.permission.Has(Allocate))
			require.Equal(tt.canWrite, tt.permission.Has(Write))
		})
	}
}

func TestUnionPermissions(t *testing.T) {
	require := require.New(t)

	keys := Keys{}
	keys.Add("pool", Read)
	keys.Add("pool", Write)
	keys.Add("vault", Allocate)
	keys.Add("vault", Allocate)

	require.True(keys["pool"].Has(Write))
	require.False(keys["pool"].Has(Allocate))
	require.Equal(Allocate, keys["vault"])
	require.Equal("allocate", keys["vault"].String())
	require.Equal(None, keys["missing"])
}
