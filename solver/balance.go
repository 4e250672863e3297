// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package solver

import (
	"github.com/equation-man/mega-amm-protocol/consts"
	"github.com/equation-man/mega-amm-protocol/numeric"
)

// balance holds the coefficients of y^2 + (b-d)*y - c = 0, where
//
//	b = x + d/Ann
//	c = (d*d/(x*n)) * d/(Ann*n)
//
// The equation is evaluated as y^2 + b*y against c + d*y so no term goes
// negative.
type balance struct {
	b numeric.Wide
	c numeric.Wide
	d numeric.Wide
}

func newBalance(amp uint64, x, d numeric.Wide, n uint64) (*balance, error) {
	_, ann, err := amplify(amp, int(n))
	if err != nil {
		return nil, err
	}
	wideN := numeric.FromUint64(n)

	offset, err := numeric.Div(d, ann)
	if err != nil {
		return nil, err
	}
	b, err := numeric.Add(x, offset)
	if err != nil {
		return nil, err
	}

	c, err := numeric.Mul(d, d)
	if err != nil {
		return nil, err
	}
	xn, err := numeric.Mul(x, wideN)
	if err != nil {
		return nil, err
	}
	c, err = numeric.Div(c, xn)
	if err != nil {
		return nil, err
	}
	c, err = numeric.Mul(c, d)
	if err != nil {
		return nil, err
	}
	annN, err := numeric.Mul(ann, wideN)
	if err != nil {
		return nil, err
	}
	c, err = numeric.Div(c, annN)
	if err != nil {
		return nil, err
	}
	return &balance{b: b, c: c, d: d}, nil
}

// residual returns |lhs - rhs| and whether lhs >= rhs at y.
func (bal *balance) residual(y numeric.Wide) (numeric.Wide, bool, error) {
	yy, err := numeric.Mul(y, y)
	if err != nil {
		return numeric.Wide{}, false, err
	}
	by, err := numeric.Mul(bal.b, y)
	if err != nil {
		return numeric.Wide{}, false, err
	}
	lhs, err := numeric.Add(yy, by)
	if err != nil {
		return numeric.Wide{}, false, err
	}
	dy, err := numeric.Mul(bal.d, y)
	if err != nil {
		return numeric.Wide{}, false, err
	}
	rhs, err := numeric.Add(bal.c, dy)
	if err != nil {
		return numeric.Wide{}, false, err
	}
	return numeric.AbsDiff(lhs, rhs), !lhs.Lt(rhs), nil
}

// slope returns 2y + b - d, and false when that is not positive.
func (bal *balance) slope(y numeric.Wide) (numeric.Wide, bool, error) {
	twoY, err := numeric.Mul(two, y)
	if err != nil {
		return numeric.Wide{}, false, err
	}
	grad, err := numeric.Add(twoY, bal.b)
	if err != nil {
		return numeric.Wide{}, false, err
	}
	if !grad.Gt(bal.d) {
		return numeric.Wide{}, false, nil
	}
	grad, err = numeric.Sub(grad, bal.d)
	return grad, err == nil, err
}

// ComputeY returns the balance y of the unknown asset such that a pool of n
// assets whose other balances sum to x sits on invariant d.
//
// The search starts from y = d over [0, 2d], doubling the upper bound
// until it brackets the root. A Newton step that is not
// strictly shorter than the previous move is treated as divergence and
// replaced by bisection.
func ComputeY(amp uint64, x, d numeric.Wide, n uint64) (*Result, error) {
	if n < 2 {
		return nil, ErrInvalidAssetCount
	}
	if amp == 0 {
		return nil, ErrZeroAmp
	}
	if x.IsZero() {
		return nil, ErrInsufficientFunds
	}
	bal, err := newBalance(amp, x, d, n)
	if err != nil {
		return nil, err
	}
	high, err := numeric.Mul(two, d)
	if err != nil {
		return nil, err
	}
	// Skewed low-amp pools can settle above 2d.
	for {
		_, positive, err := bal.residual(high)
		if err != nil {
			return nil, err
		}
		if positive {
			break
		}
		high, err = numeric.Mul(two, high)
		if err != nil {
			return nil, err
		}
	}

	var (
		low      numeric.Wide
		y        = d
		lastMove numeric.Wide
		moved    bool
	)
	for i := 0; i < consts.BalanceIterations; i++ {
		gap, positive, err := bal.residual(y)
		if err != nil {
			return nil, err
		}
		if !gap.Gt(one) {
			return finish(y, i+1, true)
		}
		if positive {
			high = y
		} else {
			low = y
		}

		var (
			next   numeric.Wide
			newton bool
		)
		grad, ok, err := bal.slope(y)
		if err != nil {
			return nil, err
		}
		if ok {
			step, err := numeric.Div(gap, grad)
			if err != nil {
				return nil, err
			}
			if positive {
				next, err = numeric.Sub(y, step)
				newton = err == nil
			} else {
				next, err = numeric.Add(y, step)
				if err != nil {
					return nil, err
				}
				newton = true
			}
			if moved && !step.Lt(lastMove) {
				newton = false
			}
		}
		if !newton || !next.Gt(low) || !next.Lt(high) {
			mid, err := numeric.Add(low, high)
			if err != nil {
				return nil, err
			}
			next = numeric.Half(mid)
		}

		move := numeric.AbsDiff(next, y)
		if !move.Gt(one) {
			return finish(next, i+1, true)
		}
		lastMove, moved = move, true
		y = next
	}
	return finish(y, consts.BalanceIterations, false)
}
