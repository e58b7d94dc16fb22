// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

// Package messages holds the data model shared by the outbound and inbound
// sides of the message bridge: lane identifiers, nonces, message payloads and
// per-lane state, together with their SCALE codecs.
package messages

import (
	"fmt"

	gethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/snowfork/go-substrate-rpc-client/v4/types"
)

// LaneID identifies a directional message channel between the two chains.
type LaneID [4]byte

func (l LaneID) Hex() string {
	return fmt.Sprintf("%#x", l[:])
}

// NewLaneIDFromHex parses a 4-byte hex lane id, e.g. "0x00000001".
func NewLaneIDFromHex(s string) (LaneID, error) {
	var lane LaneID
	raw := gethCommon.FromHex(s)
	if len(raw) != len(lane) {
		return lane, fmt.Errorf("lane id must be %d bytes, got %d", len(lane), len(raw))
	}
	copy(lane[:], raw)
	return lane, nil
}

// MessageNonce is the position of a message in its lane. Nonces start at 1
// and increase strictly, with no gaps, in each direction.
type MessageNonce uint64

// Weight is a Substrate dispatch weight.
type Weight uint64

// AccountID is a 32-byte chain account identifier.
type AccountID [32]byte

func (a AccountID) Hex() string {
	return fmt.Sprintf("%#x", a[:])
}

// NewAccountIDFromHex parses a 32-byte hex account id.
func NewAccountIDFromHex(s string) (AccountID, error) {
	var account AccountID
	raw := gethCommon.FromHex(s)
	if len(raw) != len(account) {
		return account, fmt.Errorf("account id must be %d bytes, got %d", len(account), len(raw))
	}
	copy(account[:], raw)
	return account, nil
}

// MessageKey uniquely identifies a message within one bridge instance.
type MessageKey struct {
	LaneID LaneID
	Nonce  MessageNonce
}

// MessageData is a message as stored in the outbound lane of the source
// chain: the encoded payload plus the fee paid by the submitter.
type MessageData struct {
	Payload types.Bytes
	Fee     types.U128
}

// Message is a keyed message, as decoded from a bridged chain proof.
type Message struct {
	Key  MessageKey
	Data MessageData
}
