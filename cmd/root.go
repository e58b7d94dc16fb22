// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "messagebridge",
	Short:        "Verification and fee accounting core for the Kusama <> Polkadot message bridge",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(estimateFeeCmd())
	rootCmd.AddCommand(verifyProofCmd())
	rootCmd.AddCommand(generateFixtureCmd())
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
