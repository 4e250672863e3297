// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/equation-man/mega-amm-protocol/actions"
	"github.com/equation-man/mega-amm-protocol/codec"
	"github.com/equation-man/mega-amm-protocol/consts"
	"github.com/equation-man/mega-amm-protocol/pebble"
	"github.com/equation-man/mega-amm-protocol/pricing"
	"github.com/equation-man/mega-amm-protocol/state"
	"github.com/equation-man/mega-amm-protocol/storage"

	internallog "github.com/equation-man/mega-amm-protocol/internal/logging"
)

const addressPrefix = "stableswap-sim"

var stepParams = map[Kind][]string{
	FundKind:        {"mint", "owner", "amount"},
	InitializeKind:  {"seed", "fee", "amp", "authority", "lp_decimals", "config_bump", "lp_bump"},
	DepositKind:     {"amount", "max_x", "max_y", "expiration"},
	WithdrawKind:    {"amount", "min_x", "min_y", "expiration"},
	WithdrawOneKind: {"amount", "min", "expiration", "is_x"},
	SwapKind:        {"amount", "min", "expiration", "is_x"},
	SetStateKind:    {"state"},
	BalanceKind:     {"mint", "owner"},
	PoolKind:        {},
}

func checkParams(params map[string]interface{}, allowed []string) error {
	unknown := make([]string, 0)
	for _, key := range maps.Keys(params) {
		if !slices.Contains(allowed, key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return fmt.Errorf("%w: unknown params %s", ErrInvalidParam, strings.Join(unknown, ", "))
	}
	return nil
}

var simulateCmd = &cobra.Command{
	Use:   "simulate [path]",
	Short: "Run a pool instruction plan",
	Long:  `Run a YAML or JSON plan of pool instructions against a fresh store. Use "-" to read the plan from stdin.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			planBytes []byte
			err       error
		)
		if args[0] == "-" {
			planBytes, err = io.ReadAll(cmd.InOrStdin())
		} else {
			planBytes, err = os.ReadFile(args[0])
		}
		if err != nil {
			return err
		}
		plan, err := unmarshalPlan(planBytes)
		if err != nil {
			return err
		}
		if err := plan.Verify(); err != nil {
			return err
		}

		log, closeLog, err := simulatorLogger(cmd)
		if err != nil {
			return err
		}
		defer closeLog()

		var db state.Mutable = state.NewInMemoryStore()
		dbDir, err := cmd.Flags().GetString("db")
		if err != nil {
			return err
		}
		if dbDir != "" {
			pdb, _, err := storage.Open(pebble.NewDefaultConfig(), dbDir, "simulator")
			if err != nil {
				return err
			}
			defer pdb.Close()
			db = pdb
		}

		responses, err := newSimulator(log, db, plan).Run(cmd.Context())
		for _, resp := range responses {
			if perr := resp.Print(cmd.OutOrStdout()); perr != nil {
				return perr
			}
		}
		return err
	},
}

func simulatorLogger(cmd *cobra.Command) (logging.Logger, func(), error) {
	dir, err := cmd.Flags().GetString("log-dir")
	if err != nil {
		return nil, nil, err
	}
	if dir == "" {
		return logging.NoLog{}, func() {}, nil
	}
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, nil, err
	}
	config, err := internallog.NewConfig(dir, level, false)
	if err != nil {
		return nil, nil, err
	}
	factory := internallog.NewFactory(config)
	log, err := factory.Make("simulator")
	if err != nil {
		factory.Close()
		return nil, nil, err
	}
	return log, factory.Close, nil
}

type Response struct {
	// The index of the step that generated this response.
	ID     int               `json:"id"`
	Action Kind              `json:"action"`
	Result map[string]uint64 `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func (r *Response) Print(w io.Writer) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

type simulator struct {
	log  logging.Logger
	db   state.Mutable
	plan *Plan

	mints [2]codec.Address
	pool  codec.Address
}

func newSimulator(log logging.Logger, db state.Mutable, plan *Plan) *simulator {
	return &simulator{
		log:   log,
		db:    db,
		plan:  plan,
		mints: [2]codec.Address{nameToAddress(plan.MintX), nameToAddress(plan.MintY)},
	}
}

// Run executes every step in order and stops at the first unexpected
// outcome. Responses of the steps that ran are returned either way.
func (s *simulator) Run(ctx context.Context) ([]*Response, error) {
	s.log.Info("simulation",
		zap.String("plan", s.plan.Name),
		zap.String("description", s.plan.Description),
	)
	responses := make([]*Response, 0, len(s.plan.Steps))
	for i := range s.plan.Steps {
		step := &s.plan.Steps[i]
		s.log.Info("simulation",
			zap.Int("step", i),
			zap.String("description", step.Description),
			zap.String("action", string(step.Action)),
			zap.Any("params", step.Params),
		)

		resp := &Response{ID: i, Action: step.Action}
		responses = append(responses, resp)
		result, err := s.runStep(ctx, step)
		if err != nil {
			resp.Error = err.Error()
			if step.Error == "" || !strings.Contains(err.Error(), step.Error) {
				return responses, fmt.Errorf("%w %d: %w", ErrInvalidStep, i, err)
			}
			continue
		}
		if step.Error != "" {
			return responses, fmt.Errorf("%w %d: expected error %q", ErrAssertionFailed, i, step.Error)
		}
		resp.Result = result
		for _, assertion := range step.Require {
			actual, ok := result[assertion.Field]
			if !ok {
				return responses, fmt.Errorf("%w %d: %q", ErrUnknownField, i, assertion.Field)
			}
			ok, err := validateAssertion(actual, &assertion)
			if err != nil {
				return responses, err
			}
			if !ok {
				return responses, fmt.Errorf("%w %d: %s=%d is not %s %s",
					ErrAssertionFailed, i, assertion.Field, actual, assertion.Operator, assertion.Value)
			}
		}
	}
	return responses, nil
}

func (s *simulator) runStep(ctx context.Context, step *Step) (map[string]uint64, error) {
	actor := nameToAddress(firstNonEmpty(step.Actor, s.plan.Actor))
	timestamp := step.Timestamp
	if timestamp == 0 {
		timestamp = s.plan.Timestamp
	}
	p := params(step.Params)

	var action actions.Action
	switch step.Action {
	case FundKind:
		mint, err := s.mintParam(p)
		if err != nil {
			return nil, err
		}
		owner := nameToAddress(firstNonEmpty(p.string("owner"), step.Actor, s.plan.Actor))
		amount, err := p.uint("amount", true)
		if err != nil {
			return nil, err
		}
		if err := storage.AddBalance(ctx, s.db, mint, owner, amount); err != nil {
			return nil, err
		}
		return s.balance(ctx, mint, owner)
	case BalanceKind:
		mint, err := s.mintParam(p)
		if err != nil {
			return nil, err
		}
		owner := nameToAddress(firstNonEmpty(p.string("owner"), step.Actor, s.plan.Actor))
		return s.balance(ctx, mint, owner)
	case PoolKind:
		return s.poolResult(ctx)
	case InitializeKind:
		initialize, err := s.initialize(p)
		if err != nil {
			return nil, err
		}
		s.pool = initialize.Pool
		action = initialize
	default:
		if s.pool == codec.EmptyAddress {
			return nil, fmt.Errorf("%w: no pool initialized", ErrInvalidStep)
		}
		var err error
		action, err = s.poolAction(step.Action, p)
		if err != nil {
			return nil, err
		}
	}

	// Round trip through the instruction encoding so the simulation runs
	// exactly what a client would submit.
	data, err := actions.Marshal(action)
	if err != nil {
		return nil, err
	}
	parsed, err := actions.Parse(action.PoolAddress(), data)
	if err != nil {
		return nil, err
	}
	output, err := actions.Process(ctx, s.log, s.db, parsed, timestamp, actor)
	if err != nil {
		return nil, err
	}
	return numericFields(output)
}

func (s *simulator) initialize(p params) (*actions.Initialize, error) {
	seed, err := p.uint("seed", false)
	if err != nil {
		return nil, err
	}
	fee, err := p.uint("fee", false)
	if err != nil {
		return nil, err
	}
	amp, err := p.uint("amp", false)
	if err != nil {
		return nil, err
	}
	if amp == 0 {
		amp = consts.DefaultAmp
	}
	lpDecimals, err := p.uint("lp_decimals", false)
	if err != nil {
		return nil, err
	}
	configBump, err := p.uint("config_bump", false)
	if err != nil {
		return nil, err
	}
	lpBump, err := p.uint("lp_bump", false)
	if err != nil {
		return nil, err
	}
	if fee > uint64(^uint16(0)) || lpDecimals > 0xFF || configBump > 0xFF || lpBump > 0xFF {
		return nil, fmt.Errorf("%w: initialize field out of range", ErrInvalidParam)
	}
	var authority codec.Address
	if name := p.string("authority"); name != "" {
		authority = nameToAddress(name)
	}
	return &actions.Initialize{
		Pool:       storage.PoolAddress(seed, s.mints[0], s.mints[1]),
		Seed:       seed,
		Fee:        uint16(fee),
		MintX:      s.mints[0],
		MintY:      s.mints[1],
		ConfigBump: uint8(configBump),
		LPDecimals: uint8(lpDecimals),
		LPBump:     uint8(lpBump),
		Authority:  authority,
		Amp:        amp,
	}, nil
}

func (s *simulator) poolAction(kind Kind, p params) (actions.Action, error) {
	amount, err := p.uint("amount", kind != SetStateKind)
	if err != nil {
		return nil, err
	}
	expiration, err := p.uint("expiration", false)
	if err != nil {
		return nil, err
	}
	switch kind {
	case DepositKind:
		maxX, err := p.uint("max_x", true)
		if err != nil {
			return nil, err
		}
		maxY, err := p.uint("max_y", true)
		if err != nil {
			return nil, err
		}
		return &actions.Deposit{Pool: s.pool, Amount: amount, MaxX: maxX, MaxY: maxY, Expiration: int64(expiration)}, nil
	case WithdrawKind:
		minX, err := p.uint("min_x", true)
		if err != nil {
			return nil, err
		}
		minY, err := p.uint("min_y", true)
		if err != nil {
			return nil, err
		}
		return &actions.Withdraw{Pool: s.pool, Amount: amount, MinX: minX, MinY: minY, Expiration: int64(expiration)}, nil
	case WithdrawOneKind, SwapKind:
		minOut, err := p.uint("min", true)
		if err != nil {
			return nil, err
		}
		isX, err := p.bool("is_x")
		if err != nil {
			return nil, err
		}
		var flag uint8
		if isX {
			flag = 1
		}
		if kind == SwapKind {
			return &actions.Swap{Pool: s.pool, Amount: amount, Min: minOut, Expiration: int64(expiration), IsX: flag}, nil
		}
		return &actions.WithdrawOne{Pool: s.pool, Amount: amount, Min: minOut, Expiration: int64(expiration), IsX: flag}, nil
	case SetStateKind:
		ammState, err := parseAmmState(p.string("state"))
		if err != nil {
			return nil, err
		}
		return &actions.SetState{Pool: s.pool, State: ammState}, nil
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidStep, kind)
	}
}

func (s *simulator) balance(ctx context.Context, mint codec.Address, owner codec.Address) (map[string]uint64, error) {
	balance, err := storage.GetBalance(ctx, s.db, mint, owner)
	if err != nil {
		return nil, err
	}
	return map[string]uint64{"balance": balance}, nil
}

func (s *simulator) poolResult(ctx context.Context) (map[string]uint64, error) {
	if s.pool == codec.EmptyAddress {
		return nil, fmt.Errorf("%w: no pool initialized", ErrInvalidStep)
	}
	pool, err := storage.GetPool(ctx, s.db, s.pool)
	if err != nil {
		return nil, err
	}
	result := map[string]uint64{
		"reserve_x": pool.Reserves[0],
		"reserve_y": pool.Reserves[1],
		"supply":    pool.LPSupply,
		"amp":       pool.Params.Amp,
		"fee":       uint64(pool.Config.Fee),
		"state":     uint64(pool.Config.State),
	}
	curve, err := pricing.NewStableSwap(pool.Reserves, pool.Params.Amp, pool.Config.Fee)
	if err != nil {
		return nil, err
	}
	if d, err := curve.Invariant(); err == nil {
		result["invariant"] = d.Value
	}
	return result, nil
}

// mintParam reads "mint", accepting "x" and "y" for the pool mints.
func (s *simulator) mintParam(p params) (codec.Address, error) {
	switch name := p.string("mint"); strings.ToLower(name) {
	case "":
		return codec.EmptyAddress, fmt.Errorf("%w: mint is required", ErrInvalidParam)
	case "x":
		return s.mints[0], nil
	case "y":
		return s.mints[1], nil
	case "lp":
		if s.pool == codec.EmptyAddress {
			return codec.EmptyAddress, fmt.Errorf("%w: no pool initialized", ErrInvalidStep)
		}
		return storage.LPMint(s.pool), nil
	default:
		return nameToAddress(name), nil
	}
}

// numericFields flattens the unsigned integer fields of an action output.
func numericFields(output codec.Typed) (map[string]uint64, error) {
	b, err := json.Marshal(output)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	fields := make(map[string]uint64, len(raw))
	for k, v := range raw {
		n, ok := v.(json.Number)
		if !ok {
			continue
		}
		u, err := strconv.ParseUint(n.String(), 10, 64)
		if err != nil {
			continue
		}
		fields[k] = u
	}
	return fields, nil
}

func parseAmmState(s string) (storage.AmmState, error) {
	for st := storage.Uninitialized; st <= storage.WithdrawOnly; st++ {
		if strings.EqualFold(s, st.String()) {
			return st, nil
		}
	}
	if n, err := strconv.ParseUint(s, 10, 8); err == nil {
		return storage.AmmState(n), nil
	}
	return 0, fmt.Errorf("%w: state %q", ErrInvalidParam, s)
}

// nameToAddress parses hex addresses and derives one from anything else.
func nameToAddress(name string) codec.Address {
	if a, err := codec.ParseAddress(name); err == nil {
		return a
	}
	return codec.DeriveAddress(addressPrefix, []byte(name))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type params map[string]interface{}

func (p params) string(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// uint reads key as an unsigned integer. YAML decodes numbers as int and
// JSON as float64.
func (p params) uint(key string, required bool) (uint64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		if required {
			return 0, fmt.Errorf("%w: %s is required", ErrInvalidParam, key)
		}
		return 0, nil
	}
	switch n := v.(type) {
	case int:
		if n < 0 {
			return 0, fmt.Errorf("%w: %s is negative", ErrInvalidParam, key)
		}
		return uint64(n), nil
	case uint64:
		return n, nil
	case float64:
		if n < 0 || n != float64(uint64(n)) {
			return 0, fmt.Errorf("%w: %s is not an unsigned integer", ErrInvalidParam, key)
		}
		return uint64(n), nil
	case string:
		u, err := strconv.ParseUint(n, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %w", ErrInvalidParam, key, err)
		}
		return u, nil
	default:
		return 0, fmt.Errorf("%w: %s has type %T", ErrInvalidParam, key, v)
	}
}

func (p params) bool(key string) (bool, error) {
	switch v := p[key].(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	default:
		n, err := p.uint(key, false)
		if err != nil {
			return false, err
		}
		if n > 1 {
			return false, fmt.Errorf("%w: %s must be 0 or 1", ErrInvalidParam, key)
		}
		return n == 1, nil
	}
}

func init() {
	simulateCmd.Flags().String("db", "", "Persist simulation state in a pebble database at this directory")
	simulateCmd.Flags().String("log-dir", "", "Write simulator logs to this directory")
	simulateCmd.Flags().String("log-level", "info", "Simulator log level")
	rootCmd.AddCommand(simulateCmd)
}
