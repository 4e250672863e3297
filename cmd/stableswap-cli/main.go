// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import "github.com/equation-man/mega-amm-protocol/cmd/stableswap-cli/cmd"

func main() {
	cmd.Execute()
}
