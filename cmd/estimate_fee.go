// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package cmd

import (
	"fmt"

	gethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/snowfork/go-substrate-rpc-client/v4/types"
	"github.com/spf13/cobra"

	"github.com/snowfork/messagebridge/config"
	"github.com/snowfork/messagebridge/messages"
)

func estimateFeeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate-fee",
		Short: "Estimate the minimal fee for sending a call over the bridge",
		Args:  cobra.ExactArgs(0),
		RunE:  estimateFeeFn,
	}

	cmd.Flags().String("config", "", "Path to configuration file")
	cmd.MarkFlagRequired("config")

	cmd.Flags().String("call", "", "SCALE-encoded target chain call, hex")
	cmd.MarkFlagRequired("call")

	cmd.Flags().Uint64("weight", 0, "Declared dispatch weight of the call")
	cmd.Flags().Uint32("spec-version", 0, "Target chain spec version the call was encoded against")

	return cmd
}

func estimateFeeFn(cmd *cobra.Command, _ []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	callHex, _ := cmd.Flags().GetString("call")
	weight, _ := cmd.Flags().GetUint64("weight")
	specVersion, _ := cmd.Flags().GetUint32("spec-version")

	conf, err := config.Load(configFile)
	if err != nil {
		return err
	}

	b, err := conf.NewBridge()
	if err != nil {
		return err
	}

	payload := messages.MessagePayload{
		SpecVersion:        types.U32(specVersion),
		Weight:             messages.Weight(weight),
		Origin:             messages.SourceAccountOrigin(messages.AccountID{}),
		DispatchFeePayment: messages.PayDispatchFeeAtSourceChain,
		Call:               gethCommon.FromHex(callHex),
	}

	fee, err := b.EstimateMessageFee(&payload, nil)
	if err != nil {
		return err
	}

	fmt.Printf("minimal fee: %s\n", fee.Int.String())
	return nil
}
