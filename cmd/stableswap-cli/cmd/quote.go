// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/equation-man/mega-amm-protocol/consts"
	"github.com/equation-man/mega-amm-protocol/pricing"
	"github.com/equation-man/mega-amm-protocol/solver"
)

var invariantCmd = &cobra.Command{
	Use:   "invariant",
	Short: "Solve the invariant D of a reserve set",
	RunE: func(cmd *cobra.Command, _ []string) error {
		decimals := getDecimals(cmd)
		reserves, amp, err := curveFlags(cmd, decimals)
		if err != nil {
			return err
		}
		d, err := solver.ComputeDUint64(reserves, amp)
		if err != nil {
			return err
		}
		return printValue(cmd, invariantCmdResponse{
			Result:   d,
			Decimals: decimals,
		})
	},
}

type invariantCmdResponse struct {
	*solver.Result
	Decimals int32 `json:"-"`
}

func (r invariantCmdResponse) String() string {
	return fmt.Sprintf("D=%s iterations=%d converged=%t", formatAmount(r.Value, r.Decimals), r.Iterations, r.Converged)
}

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price trades against a reserve set without a node",
}

var quoteSwapCmd = &cobra.Command{
	Use:   "swap [amount]",
	Short: "Quote selling amount of one asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		decimals := getDecimals(cmd)
		reserves, amp, err := curveFlags(cmd, decimals)
		if err != nil {
			return err
		}
		fee, err := cmd.Flags().GetUint16("fee")
		if err != nil {
			return err
		}
		in, err := cmd.Flags().GetInt("in")
		if err != nil {
			return err
		}
		amount, err := parseAmount(args[0], decimals)
		if err != nil {
			return err
		}
		curve, err := pricing.NewStableSwap(reserves, amp, fee)
		if err != nil {
			return err
		}
		quote, err := curve.Quote(in, amount)
		if err != nil {
			return err
		}
		return printValue(cmd, quoteSwapCmdResponse{
			Quote:    quote,
			Decimals: decimals,
		})
	},
}

type quoteSwapCmdResponse struct {
	*pricing.Quote
	Decimals int32 `json:"-"`
}

func (r quoteSwapCmdResponse) String() string {
	return fmt.Sprintf("out=%s fee=%s raw=%s impact=%dbp",
		formatAmount(r.Amount, r.Decimals),
		formatAmount(r.Fee, r.Decimals),
		formatAmount(r.Raw, r.Decimals),
		r.PriceImpact,
	)
}

var quoteDepositCmd = &cobra.Command{
	Use:   "deposit [x] [y]",
	Short: "Quote the LP shares minted for a deposit",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		decimals := getDecimals(cmd)
		reserves, amp, err := curveFlags(cmd, decimals)
		if err != nil {
			return err
		}
		supply, err := cmd.Flags().GetUint64("supply")
		if err != nil {
			return err
		}
		amounts, err := parseAmounts(args, decimals)
		if err != nil {
			return err
		}
		next := make([]uint64, len(reserves))
		for i := range reserves {
			if i >= len(amounts) {
				return fmt.Errorf("%w: expected %d amounts", ErrInvalidAmount, len(reserves))
			}
			next[i] = reserves[i] + amounts[i]
			if next[i] < reserves[i] {
				return fmt.Errorf("%w: reserve %d overflows", ErrInvalidAmount, i)
			}
		}
		curve, err := pricing.NewStableSwap(reserves, amp, 0)
		if err != nil {
			return err
		}
		shares, err := curve.Deposit(supply, next)
		if err != nil {
			return err
		}
		return printValue(cmd, sharesCmdResponse{Shares: shares})
	},
}

type sharesCmdResponse struct {
	Shares uint64 `json:"shares"`
}

func (r sharesCmdResponse) String() string {
	return fmt.Sprintf("shares=%d", r.Shares)
}

var quoteWithdrawCmd = &cobra.Command{
	Use:   "withdraw [shares]",
	Short: "Quote the payout for burning LP shares",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		decimals := getDecimals(cmd)
		reserves, amp, err := curveFlags(cmd, decimals)
		if err != nil {
			return err
		}
		supply, err := cmd.Flags().GetUint64("supply")
		if err != nil {
			return err
		}
		single, err := cmd.Flags().GetInt("single")
		if err != nil {
			return err
		}
		burn, err := parseAmount(args[0], 0)
		if err != nil {
			return err
		}
		curve, err := pricing.NewStableSwap(reserves, amp, 0)
		if err != nil {
			return err
		}
		var mode pricing.WithdrawMode = pricing.Balanced{}
		if single >= 0 {
			d, err := curve.Invariant()
			if err != nil {
				return err
			}
			mode = pricing.Imbalanced{D: d.Value, Amp: amp, Index: single}
		}
		amounts, err := curve.Withdraw(mode, burn, supply)
		if err != nil {
			return err
		}
		return printValue(cmd, amountsCmdResponse{
			Amounts:  amounts,
			Decimals: decimals,
		})
	},
}

type amountsCmdResponse struct {
	Amounts  []uint64 `json:"amounts"`
	Decimals int32    `json:"-"`
}

func (r amountsCmdResponse) String() string {
	return formatAmounts(r.Amounts, r.Decimals)
}

func curveFlags(cmd *cobra.Command, decimals int32) ([]uint64, uint64, error) {
	raw, err := cmd.Flags().GetStringSlice("reserves")
	if err != nil {
		return nil, 0, err
	}
	reserves, err := parseAmounts(raw, decimals)
	if err != nil {
		return nil, 0, err
	}
	amp, err := cmd.Flags().GetUint64("amp")
	if err != nil {
		return nil, 0, err
	}
	return reserves, amp, nil
}

func addCurveFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("reserves", nil, "Pool reserves in token units")
	cmd.Flags().Uint64("amp", consts.DefaultAmp, "Amplification coefficient")
	_ = cmd.MarkFlagRequired("reserves")
}

func init() {
	addCurveFlags(invariantCmd)

	addCurveFlags(quoteSwapCmd)
	quoteSwapCmd.Flags().Uint16("fee", 0, "Swap fee in basis points")
	quoteSwapCmd.Flags().Int("in", 0, "Index of the asset sold")

	addCurveFlags(quoteDepositCmd)
	quoteDepositCmd.Flags().Uint64("supply", 0, "Outstanding LP shares")

	addCurveFlags(quoteWithdrawCmd)
	quoteWithdrawCmd.Flags().Uint64("supply", 0, "Outstanding LP shares")
	quoteWithdrawCmd.Flags().Int("single", -1, "Withdraw only this asset index")

	quoteCmd.AddCommand(quoteSwapCmd, quoteDepositCmd, quoteWithdrawCmd)
	rootCmd.AddCommand(invariantCmd, quoteCmd)
}
