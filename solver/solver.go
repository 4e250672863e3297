// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package solver finds the StableSwap invariant D of a reserve set and the
// balance y of one asset that keeps a pool on a given invariant. Both
// solvers run Newton-Raphson inside a shrinking bisection bracket and stop
// at a fixed iteration cap, returning the last iterate if they have not
// converged by then.
package solver

import "github.com/equation-man/mega-amm-protocol/numeric"

// Result is the outcome of a solver run.
type Result struct {
	Value      uint64 `json:"value"`
	Iterations int    `json:"iterations"`
	// Converged is false when the iteration cap was reached and Value is
	// the best-effort last iterate.
	Converged bool `json:"converged"`
}

var (
	one = numeric.FromUint64(1)
	two = numeric.FromUint64(2)
)

// pow returns base^exp with checked multiplication.
func pow(base numeric.Wide, exp int) (numeric.Wide, error) {
	out := one
	for i := 0; i < exp; i++ {
		var err error
		out, err = numeric.Mul(out, base)
		if err != nil {
			return numeric.Wide{}, err
		}
	}
	return out, nil
}

// amplify returns n^n and Ann = amp * n^n.
func amplify(amp uint64, n int) (numeric.Wide, numeric.Wide, error) {
	nn, err := pow(numeric.FromUint64(uint64(n)), n)
	if err != nil {
		return numeric.Wide{}, numeric.Wide{}, err
	}
	ann, err := numeric.Mul(numeric.FromUint64(amp), nn)
	if err != nil {
		return numeric.Wide{}, numeric.Wide{}, err
	}
	return nn, ann, nil
}

func finish(v numeric.Wide, iterations int, converged bool) (*Result, error) {
	out, err := numeric.Narrow(v)
	if err != nil {
		return nil, err
	}
	return &Result{
		Value:      out,
		Iterations: iterations,
		Converged:  converged,
	}, nil
}
