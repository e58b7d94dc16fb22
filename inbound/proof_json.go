// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package inbound

import (
	"fmt"

	gethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/snowfork/go-substrate-rpc-client/v4/types"

	"github.com/snowfork/messagebridge/messages"
)

// JSON forms of the proof bundles, used for offline verification and test
// fixtures.

type MessagesProofJSON struct {
	BridgedHeaderHash string   `json:"bridged_header_hash"`
	StorageProof      []string `json:"storage_proof"`
	Lane              string   `json:"lane"`
	NoncesStart       uint64   `json:"nonces_start"`
	NoncesEnd         uint64   `json:"nonces_end"`
}

type MessagesDeliveryProofJSON struct {
	BridgedHeaderHash string   `json:"bridged_header_hash"`
	StorageProof      []string `json:"storage_proof"`
	Lane              string   `json:"lane"`
}

func (p *MessagesProof) ToJSON() MessagesProofJSON {
	return MessagesProofJSON{
		BridgedHeaderHash: p.BridgedHeaderHash.Hex(),
		StorageProof:      proofToHex(p.StorageProof),
		Lane:              p.Lane.Hex(),
		NoncesStart:       uint64(p.NoncesStart),
		NoncesEnd:         uint64(p.NoncesEnd),
	}
}

func (p MessagesProofJSON) FromJSON() (*MessagesProof, error) {
	headerHash, lane, proof, err := decodeCommonProofFields(p.BridgedHeaderHash, p.Lane, p.StorageProof)
	if err != nil {
		return nil, err
	}
	return &MessagesProof{
		BridgedHeaderHash: headerHash,
		StorageProof:      proof,
		Lane:              lane,
		NoncesStart:       messages.MessageNonce(p.NoncesStart),
		NoncesEnd:         messages.MessageNonce(p.NoncesEnd),
	}, nil
}

func (p *MessagesDeliveryProof) ToJSON() MessagesDeliveryProofJSON {
	return MessagesDeliveryProofJSON{
		BridgedHeaderHash: p.BridgedHeaderHash.Hex(),
		StorageProof:      proofToHex(p.StorageProof),
		Lane:              p.Lane.Hex(),
	}
}

func (p MessagesDeliveryProofJSON) FromJSON() (*MessagesDeliveryProof, error) {
	headerHash, lane, proof, err := decodeCommonProofFields(p.BridgedHeaderHash, p.Lane, p.StorageProof)
	if err != nil {
		return nil, err
	}
	return &MessagesDeliveryProof{
		BridgedHeaderHash: headerHash,
		StorageProof:      proof,
		Lane:              lane,
	}, nil
}

func proofToHex(proof []types.Bytes) []string {
	result := make([]string, len(proof))
	for i, item := range proof {
		result[i] = hexutil.Encode(item)
	}
	return result
}

func decodeCommonProofFields(headerHash, lane string, storageProof []string) (types.H256, messages.LaneID, []types.Bytes, error) {
	hashBytes := gethCommon.FromHex(headerHash)
	if len(hashBytes) != 32 {
		return types.H256{}, messages.LaneID{}, nil, fmt.Errorf("bridged header hash must be 32 bytes")
	}
	hash := types.NewH256(hashBytes)

	laneID, err := messages.NewLaneIDFromHex(lane)
	if err != nil {
		return types.H256{}, messages.LaneID{}, nil, err
	}

	proof := make([]types.Bytes, len(storageProof))
	for i, item := range storageProof {
		proof[i] = types.NewBytes(gethCommon.FromHex(item))
	}

	return hash, laneID, proof, nil
}
