// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

// Package inbound verifies proofs of messages and of delivery confirmations
// produced on the bridged chain, against a bridged header already finalized
// on this chain.
package inbound

import (
	"fmt"

	"github.com/snowfork/go-substrate-rpc-client/v4/types"
	"golang.org/x/crypto/blake2b"

	"github.com/snowfork/messagebridge/messages"
)

// blake2_128_concat: the standard hasher of the messages pallet storage maps.
func blake2128Concat(data []byte) ([]byte, error) {
	hasher, err := blake2b.New(16, nil)
	if err != nil {
		return nil, err
	}
	_, err = hasher.Write(data)
	if err != nil {
		return nil, err
	}
	return append(hasher.Sum(nil), data...), nil
}

func mapStorageKey(pallet, item string, mapKey interface{}) ([]byte, error) {
	encodedKey, err := types.EncodeToBytes(mapKey)
	if err != nil {
		return nil, fmt.Errorf("encode storage map key: %w", err)
	}
	hashedKey, err := blake2128Concat(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("hash storage map key: %w", err)
	}
	return append(types.CreateStorageKeyPrefix(pallet, item), hashedKey...), nil
}

// OutboundMessagesKey is the bridged chain storage key of the stored message
// with the given key, under the given messages pallet instance.
func OutboundMessagesKey(pallet string, key messages.MessageKey) ([]byte, error) {
	return mapStorageKey(pallet, "OutboundMessages", key)
}

// OutboundLanesKey is the bridged chain storage key of the outbound state of
// the given lane.
func OutboundLanesKey(pallet string, lane messages.LaneID) ([]byte, error) {
	return mapStorageKey(pallet, "OutboundLanes", lane)
}

// InboundLanesKey is the bridged chain storage key of the inbound state of
// the given lane.
func InboundLanesKey(pallet string, lane messages.LaneID) ([]byte, error) {
	return mapStorageKey(pallet, "InboundLanes", lane)
}
