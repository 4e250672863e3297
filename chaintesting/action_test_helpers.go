// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintesting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/equation-man/mega-amm-protocol/codec"
	"github.com/equation-man/mega-amm-protocol/state"
)

// Action is the part of a pool action that ActionTest drives.
type Action interface {
	Execute(ctx context.Context, mu state.Mutable, timestamp int64, actor codec.Address) (codec.Typed, error)
}

// ActionTest is a single parameterized test. It calls Execute on the action with the passed parameters
// and checks that all assertions pass.
type ActionTest struct {
	Name string

	Action Action

	State     state.Mutable
	Timestamp int64
	Actor     codec.Address

	ExpectedOutputs codec.Typed
	ExpectedErr     error

	// Assertion runs after Execute when set, against the same state.
	Assertion func(context.Context, *testing.T, state.Mutable)
}

func (test *ActionTest) Run(ctx context.Context, t *testing.T) {
	t.Run(test.Name, func(t *testing.T) {
		require := require.New(t)

		output, err := test.Action.Execute(ctx, test.State, test.Timestamp, test.Actor)

		require.ErrorIs(err, test.ExpectedErr)
		if test.ExpectedErr != nil {
			require.Nil(output)
		} else {
			require.Equal(test.ExpectedOutputs, output)
		}
		if test.Assertion != nil {
			test.Assertion(ctx, t, test.State)
		}
	})
}

// ActionTestSuite runs its tests in order, so later tests observe the state
// earlier ones left behind.
type ActionTestSuite struct {
	Tests []ActionTest
}

// Run execute all tests from the test suite and make sure all assertions pass.
func (suite *ActionTestSuite) Run(t *testing.T) {
	ctx := context.Background()
	for i := range suite.Tests {
		suite.Tests[i].Run(ctx, t)
	}
}
