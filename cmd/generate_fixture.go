// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package cmd

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"

	"github.com/cbroglie/mustache"
	log "github.com/sirupsen/logrus"
	"github.com/snowfork/go-substrate-rpc-client/v4/types"
	"github.com/spf13/cobra"

	"github.com/snowfork/messagebridge/config"
	"github.com/snowfork/messagebridge/inbound"
	"github.com/snowfork/messagebridge/messages"
)

// Default template for generated proof fixtures, in the JSON form accepted
// by verify-proof.
const proofFixtureTemplate = `{
  "bridged_header_hash": "{{header_hash}}",
  "storage_proof": [
    {{#items}}"{{hex}}"{{^last}},
    {{/last}}{{/items}}
  ],
  "lane": "{{lane}}",
  "nonces_start": {{nonces_start}},
  "nonces_end": {{nonces_end}}
}
`

func generateFixtureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate-fixture",
		Short: "Generate a synthetic messages proof fixture for testing",
		Args:  cobra.ExactArgs(0),
		RunE:  generateFixtureFn,
	}

	cmd.Flags().String("config", "", "Path to configuration file")
	cmd.MarkFlagRequired("config")

	cmd.Flags().String("lane", "0x00000000", "Lane id of the generated messages")
	cmd.Flags().Uint64("nonces-start", 1, "First generated nonce")
	cmd.Flags().Uint64("nonces-end", 1, "Last generated nonce")
	cmd.Flags().String("template", "", "Optional mustache template file")
	cmd.Flags().String("output", "", "Output file, stdout when empty")

	return cmd
}

func generateFixtureFn(cmd *cobra.Command, _ []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	laneHex, _ := cmd.Flags().GetString("lane")
	noncesStart, _ := cmd.Flags().GetUint64("nonces-start")
	noncesEnd, _ := cmd.Flags().GetUint64("nonces-end")
	templateFile, _ := cmd.Flags().GetString("template")
	output, _ := cmd.Flags().GetString("output")

	conf, err := config.Load(configFile)
	if err != nil {
		return err
	}

	lane, err := messages.NewLaneIDFromHex(laneHex)
	if err != nil {
		return err
	}
	if noncesEnd < noncesStart {
		return fmt.Errorf("nonces-end is below nonces-start")
	}

	var headerHash types.H256
	_, err = rand.Read(headerHash[:])
	if err != nil {
		return err
	}

	builder := inbound.NewProofBuilder()
	pallet := conf.Bridge.BridgedMessagesPalletName
	for nonce := noncesStart; nonce <= noncesEnd; nonce++ {
		key := messages.MessageKey{LaneID: lane, Nonce: messages.MessageNonce(nonce)}
		storageKey, err := inbound.OutboundMessagesKey(pallet, key)
		if err != nil {
			return err
		}
		value, err := types.EncodeToBytes(messages.MessageData{
			Payload: types.Bytes{0, 0},
			Fee:     types.NewU128(*big.NewInt(0)),
		})
		if err != nil {
			return err
		}
		err = builder.Put(storageKey, value)
		if err != nil {
			return err
		}
	}

	proof, err := builder.Build()
	if err != nil {
		return err
	}
	proofJSON := (&inbound.MessagesProof{
		BridgedHeaderHash: headerHash,
		StorageProof:      proof,
		Lane:              lane,
		NoncesStart:       messages.MessageNonce(noncesStart),
		NoncesEnd:         messages.MessageNonce(noncesEnd),
	}).ToJSON()

	items := make([]map[string]interface{}, len(proofJSON.StorageProof))
	for i, item := range proofJSON.StorageProof {
		items[i] = map[string]interface{}{"hex": item, "last": i == len(proofJSON.StorageProof)-1}
	}
	data := map[string]interface{}{
		"header_hash":  proofJSON.BridgedHeaderHash,
		"items":        items,
		"lane":         proofJSON.Lane,
		"nonces_start": proofJSON.NoncesStart,
		"nonces_end":   proofJSON.NoncesEnd,
	}

	var rendered string
	if templateFile != "" {
		log.WithField("template", templateFile).Info("rendering file using mustache")
		rendered, err = mustache.RenderFile(templateFile, data)
	} else {
		rendered, err = mustache.Render(proofFixtureTemplate, data)
	}
	if err != nil {
		return err
	}

	if output == "" {
		fmt.Print(rendered)
		return nil
	}
	return os.WriteFile(output, []byte(rendered), 0644)
}
