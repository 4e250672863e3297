// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import "errors"

var (
	ErrInvalidInstructionData = errors.New("invalid instruction data")
	ErrUnknownInstruction     = errors.New("unknown instruction")
	ErrInvalidAddress         = errors.New("pool address does not match its seed and mints")
	ErrIdenticalMints         = errors.New("mint X and mint Y are identical")
	ErrInvalidAmp             = errors.New("amplification must be at least 1")
	ErrPoolExists             = errors.New("pool already exists")
	ErrPoolNotFound           = errors.New("pool does not exist")
	ErrPoolNotActive          = errors.New("pool does not accept this action in its current state")
	ErrUnauthorized           = errors.New("actor is not the pool authority")
	ErrExpired                = errors.New("order expired")
	ErrSlippageX              = errors.New("required X exceeds max_x")
	ErrSlippageY              = errors.New("required Y exceeds max_y")
	ErrSlippage               = errors.New("output below minimum")
	ErrZeroOutput             = errors.New("output is zero")
	ErrWithdrawAllSingleSided = errors.New("the whole LP supply can only be withdrawn balanced")
)
