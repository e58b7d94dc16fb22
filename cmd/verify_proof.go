// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/snowfork/messagebridge/config"
	"github.com/snowfork/messagebridge/inbound"
)

func verifyProofCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify-proof",
		Short: "Verify a messages or delivery proof dump offline",
		Long: "Verifies a JSON proof dump against the configured lane allow-lists. " +
			"The bridged header carried by the dump is assumed finalized; only " +
			"storage contents and lane admissibility are checked.",
		Args: cobra.ExactArgs(0),
		RunE: verifyProofFn,
	}

	cmd.Flags().String("config", "", "Path to configuration file")
	cmd.MarkFlagRequired("config")

	cmd.Flags().String("proof", "", "Path to the JSON proof dump")
	cmd.MarkFlagRequired("proof")

	cmd.Flags().Bool("delivery", false, "Treat the dump as a delivery proof")
	cmd.Flags().Uint32("messages", 0, "Expected message count of a messages proof")

	return cmd
}

func verifyProofFn(cmd *cobra.Command, _ []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	proofFile, _ := cmd.Flags().GetString("proof")
	delivery, _ := cmd.Flags().GetBool("delivery")
	messagesCount, _ := cmd.Flags().GetUint32("messages")

	conf, err := config.Load(configFile)
	if err != nil {
		return err
	}

	b, err := conf.NewBridge()
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(proofFile)
	if err != nil {
		return err
	}

	headerChain := inbound.NewRawStateReader()

	if delivery {
		var proofJSON inbound.MessagesDeliveryProofJSON
		err = json.Unmarshal(raw, &proofJSON)
		if err != nil {
			return fmt.Errorf("parse proof dump: %w", err)
		}
		proof, err := proofJSON.FromJSON()
		if err != nil {
			return err
		}
		headerChain.Finalize(proof.BridgedHeaderHash)

		verifier := inbound.NewVerifier(b, headerChain, conf.Bridge.OutboundLanes)
		lane, laneData, err := verifier.VerifyDeliveryProof(proof)
		if err != nil {
			return err
		}
		fmt.Printf("lane %s: last delivered nonce %d, %d unrewarded relayer entries\n",
			lane.Hex(), laneData.LastDeliveredNonce(), len(laneData.Relayers))
		return nil
	}

	var proofJSON inbound.MessagesProofJSON
	err = json.Unmarshal(raw, &proofJSON)
	if err != nil {
		return fmt.Errorf("parse proof dump: %w", err)
	}
	proof, err := proofJSON.FromJSON()
	if err != nil {
		return err
	}
	headerChain.Finalize(proof.BridgedHeaderHash)

	verifier := inbound.NewVerifier(b, headerChain, conf.Bridge.InboundLanes)
	proved, err := verifier.VerifyMessagesProof(proof, messagesCount)
	if err != nil {
		return err
	}

	for _, lane := range proved.Lanes() {
		for _, message := range proved[lane].Messages {
			log.WithFields(log.Fields{
				"lane":    lane.Hex(),
				"nonce":   message.Key.Nonce,
				"payload": len(message.Data.Payload),
			}).Info("Proved message")
		}
	}
	fmt.Printf("proof is valid: %d messages\n", proved.Count())
	return nil
}
