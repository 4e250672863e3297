// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v2"
)

var (
	ErrInvalidConfigFormat = errors.New("plan is neither json nor yaml")
	ErrInvalidPlan         = errors.New("invalid plan")
	ErrInvalidStep         = errors.New("invalid step")
	ErrInvalidParam        = errors.New("invalid param")
	ErrUnknownField        = errors.New("unknown result field")
	ErrInvalidOperator     = errors.New("invalid operator")
	ErrAssertionFailed     = errors.New("assertion failed")
)

type Plan struct {
	// The name of the plan.
	Name string `json:"name" yaml:"name"`
	// A description of the plan.
	Description string `json:"description" yaml:"description"`
	// Default actor of every step.
	Actor string `json:"actor" yaml:"actor"`
	// Names of the pool mints.
	MintX string `json:"mintX" yaml:"mint_x"`
	MintY string `json:"mintY" yaml:"mint_y"`
	// Timestamp every step executes at unless it sets its own.
	Timestamp int64 `json:"timestamp" yaml:"timestamp"`
	// Steps performed during simulation.
	Steps []Step `json:"steps" yaml:"steps"`
}

type Step struct {
	// Description of the step.
	Description string `json:"description" yaml:"description"`
	// Kind of step. (required)
	Action Kind `json:"action" yaml:"action"`
	// Overrides the plan actor.
	Actor string `json:"actor,omitempty" yaml:"actor,omitempty"`
	// Overrides the plan timestamp.
	Timestamp int64 `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	// The parameters of the action.
	Params map[string]interface{} `json:"params" yaml:"params"`
	// Expected error substring. The step fails if it succeeds.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	// Define required assertions against this step.
	Require []Assertion `json:"require,omitempty" yaml:"require,omitempty"`
}

type Kind string

const (
	FundKind        Kind = "fund"
	InitializeKind  Kind = "initialize"
	DepositKind     Kind = "deposit"
	WithdrawKind    Kind = "withdraw"
	WithdrawOneKind Kind = "withdraw_one"
	SwapKind        Kind = "swap"
	SetStateKind    Kind = "set_state"
	BalanceKind     Kind = "balance"
	PoolKind        Kind = "pool"
)

type Assertion struct {
	// Result field the assertion reads.
	Field string `json:"field" yaml:"field"`
	// The operator to use for the assertion.
	Operator string `json:"operator" yaml:"operator"`
	// The value to compare against.
	Value string `json:"value" yaml:"value"`
}

type Operator string

const (
	NumericGt Operator = ">"
	NumericLt Operator = "<"
	NumericGe Operator = ">="
	NumericLe Operator = "<="
	NumericEq Operator = "=="
	NumericNe Operator = "!="
)

// validateAssertion checks actual against the assertion.
func validateAssertion(actual uint64, assertion *Assertion) (bool, error) {
	value, err := strconv.ParseUint(assertion.Value, 10, 64)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrInvalidParam, assertion.Value, err)
	}

	switch Operator(assertion.Operator) {
	case NumericGt:
		return actual > value, nil
	case NumericLt:
		return actual < value, nil
	case NumericGe:
		return actual >= value, nil
	case NumericLe:
		return actual <= value, nil
	case NumericEq:
		return actual == value, nil
	case NumericNe:
		return actual != value, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidOperator, assertion.Operator)
	}
}

func unmarshalPlan(bytes []byte) (*Plan, error) {
	var p Plan
	switch {
	case isJSON(bytes):
		if err := json.Unmarshal(bytes, &p); err != nil {
			return nil, err
		}
	case isYAML(bytes):
		if err := yaml.Unmarshal(bytes, &p); err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidConfigFormat
	}
	return &p, nil
}

func (p *Plan) Verify() error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPlan, "no steps found")
	}
	if p.MintX == "" || p.MintY == "" {
		return fmt.Errorf("%w: %s", ErrInvalidPlan, "mints are required")
	}
	if p.MintX == p.MintY {
		return fmt.Errorf("%w: %s", ErrInvalidPlan, "mints must differ")
	}
	for i, step := range p.Steps {
		allowed, ok := stepParams[step.Action]
		if !ok {
			return fmt.Errorf("%w %d: unknown action %q", ErrInvalidStep, i, step.Action)
		}
		if err := checkParams(step.Params, allowed); err != nil {
			return fmt.Errorf("%w %d: %w", ErrInvalidStep, i, err)
		}
		if step.Actor == "" && p.Actor == "" && step.Action != PoolKind {
			return fmt.Errorf("%w %d: no actor", ErrInvalidStep, i)
		}
	}
	return nil
}

func isJSON(b []byte) bool {
	var js map[string]interface{}
	return json.Unmarshal(b, &js) == nil
}

func isYAML(b []byte) bool {
	var y map[string]interface{}
	return yaml.Unmarshal(b, &y) == nil
}
