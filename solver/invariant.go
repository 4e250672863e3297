// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package solver

import (
	"fmt"

	"github.com/equation-man/mega-amm-protocol/consts"
	"github.com/equation-man/mega-amm-protocol/numeric"
)

// invariant holds the terms of
//
//	f(D)  = (Ann-1)*D + D^(n+1)/(n^n*P) - Ann*S
//	f'(D) = (Ann-1) + (n+1)*D^n/(n^n*P)
//
// that do not depend on D.
type invariant struct {
	n          int
	annMinus1  numeric.Wide
	annS       numeric.Wide
	nnP        numeric.Wide
	nPlusOne   numeric.Wide
	lowerBound numeric.Wide
	sum        numeric.Wide
}

// evaluate returns |f(d)|, whether f(d) >= 0, and f'(d).
func (inv *invariant) evaluate(d numeric.Wide) (numeric.Wide, bool, numeric.Wide, error) {
	dn, err := pow(d, inv.n)
	if err != nil {
		return numeric.Wide{}, false, numeric.Wide{}, err
	}
	dn1, err := numeric.Mul(dn, d)
	if err != nil {
		return numeric.Wide{}, false, numeric.Wide{}, err
	}
	linear, err := numeric.Mul(inv.annMinus1, d)
	if err != nil {
		return numeric.Wide{}, false, numeric.Wide{}, err
	}
	curvature, err := numeric.Div(dn1, inv.nnP)
	if err != nil {
		return numeric.Wide{}, false, numeric.Wide{}, err
	}
	lhs, err := numeric.Add(linear, curvature)
	if err != nil {
		return numeric.Wide{}, false, numeric.Wide{}, err
	}
	positive := !lhs.Lt(inv.annS)

	slope, err := numeric.Mul(inv.nPlusOne, dn)
	if err != nil {
		return numeric.Wide{}, false, numeric.Wide{}, err
	}
	slope, err = numeric.Div(slope, inv.nnP)
	if err != nil {
		return numeric.Wide{}, false, numeric.Wide{}, err
	}
	slope, err = numeric.Add(inv.annMinus1, slope)
	if err != nil {
		return numeric.Wide{}, false, numeric.Wide{}, err
	}
	return numeric.AbsDiff(lhs, inv.annS), positive, slope, nil
}

func newInvariant(reserves []numeric.Wide, amp uint64) (*invariant, error) {
	n := len(reserves)
	nn, ann, err := amplify(amp, n)
	if err != nil {
		return nil, err
	}
	sum, err := numeric.ConstantSum(reserves)
	if err != nil {
		return nil, err
	}
	product, err := numeric.ConstantProduct(reserves)
	if err != nil {
		return nil, err
	}
	nnP, err := numeric.Mul(nn, product)
	if err != nil {
		return nil, err
	}
	annMinus1, err := numeric.Sub(ann, one)
	if err != nil {
		return nil, err
	}
	annS, err := numeric.Mul(ann, sum)
	if err != nil {
		return nil, err
	}
	smallest, _ := numeric.Extremes(reserves)
	lowerBound, err := numeric.Mul(smallest, numeric.FromUint64(uint64(n)))
	if err != nil {
		return nil, err
	}
	return &invariant{
		n:          n,
		annMinus1:  annMinus1,
		annS:       annS,
		nnP:        nnP,
		nPlusOne:   numeric.FromUint64(uint64(n) + 1),
		lowerBound: lowerBound,
		sum:        sum,
	}, nil
}

// ComputeD solves the StableSwap invariant D for reserves at amplification
// amp.
//
// The root lies in [n*min(reserves), S]: f(n*min) <= 0 and f(S) >= 0 by the
// AM-GM inequality, with equality at S exactly when the pool is balanced.
// Newton starts from S. Each iterate first shrinks the bracket, then a step
// that leaves the shrunk bracket is replaced by its midpoint. The result is
// within 1 of the exact root once Newton moves by at most 1 or the bracket
// closes to width 1. An all-zero reserve set has D = 0.
func ComputeD(reserves []numeric.Wide, amp uint64) (*Result, error) {
	if len(reserves) == 0 {
		return nil, ErrEmptyReserves
	}
	if amp == 0 {
		return nil, ErrZeroAmp
	}
	inv, err := newInvariant(reserves, amp)
	if err != nil {
		return nil, err
	}
	if inv.sum.IsZero() {
		return &Result{Converged: true}, nil
	}
	if inv.nnP.IsZero() {
		return nil, fmt.Errorf("%w: %w", numeric.ErrDivisionByZero, ErrZeroReserveInSet)
	}

	var (
		low  = inv.lowerBound
		high = inv.sum
		d    = inv.sum
	)
	for i := 0; i < consts.InvariantIterations; i++ {
		fAbs, positive, slope, err := inv.evaluate(d)
		if err != nil {
			return nil, err
		}
		if fAbs.IsZero() {
			return finish(d, i+1, true)
		}
		if positive {
			high = d
		} else {
			low = d
		}

		step, err := numeric.Div(fAbs, slope)
		if err != nil {
			return nil, err
		}
		if step.IsZero() {
			return finish(d, i+1, true)
		}
		next, inside := d, true
		if positive {
			next, err = numeric.Sub(d, step)
			inside = err == nil
		} else {
			next, err = numeric.Add(d, step)
			if err != nil {
				return nil, err
			}
		}

		switch {
		case !inside || !next.Gt(low) || !next.Lt(high):
			width, err := numeric.Sub(high, low)
			if err != nil {
				return nil, err
			}
			if !width.Gt(one) {
				return finish(high, i+1, true)
			}
			mid, err := numeric.Add(low, high)
			if err != nil {
				return nil, err
			}
			next = numeric.Half(mid)
		case !step.Gt(one):
			return finish(next, i+1, true)
		}
		d = next
	}
	return finish(d, consts.InvariantIterations, false)
}

// ComputeDUint64 widens reserves and runs ComputeD.
func ComputeDUint64(reserves []uint64, amp uint64) (*Result, error) {
	return ComputeD(numeric.WidenAll(reserves), amp)
}
