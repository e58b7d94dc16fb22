// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package messages

// OutboundLaneData is the state of an outbound lane on the source chain.
type OutboundLaneData struct {
	// Nonce of the oldest message that has not yet been pruned.
	OldestUnprunedNonce MessageNonce
	// Nonce of the latest message for which delivery has been confirmed.
	LatestReceivedNonce MessageNonce
	// Nonce of the latest message generated on this lane.
	LatestGeneratedNonce MessageNonce
}

// NewOutboundLaneData returns the genesis state of an outbound lane: no
// messages generated yet, so the first generated nonce will be 1.
func NewOutboundLaneData() OutboundLaneData {
	return OutboundLaneData{OldestUnprunedNonce: 1}
}

// PendingMessages is the number of generated messages whose delivery has not
// been confirmed yet.
func (d OutboundLaneData) PendingMessages() MessageNonce {
	if d.LatestGeneratedNonce < d.LatestReceivedNonce {
		return 0
	}
	return d.LatestGeneratedNonce - d.LatestReceivedNonce
}

// UnrewardedRelayer is a range of delivered messages attributed to a single
// relayer that has not been rewarded yet.
type UnrewardedRelayer struct {
	// Nonce of the first message delivered by the relayer.
	BeginNonce MessageNonce
	// Nonce of the last message delivered by the relayer.
	EndNonce MessageNonce
	// The relayer account on the target chain.
	Relayer AccountID
}

// InboundLaneData is the state of an inbound lane on the target chain.
type InboundLaneData struct {
	// Delivered-but-unrewarded message ranges, ordered by nonce.
	Relayers []UnrewardedRelayer
	// Nonce of the latest message whose delivery the source chain has
	// confirmed back to us.
	LastConfirmedNonce MessageNonce
}

// LastDeliveredNonce is the nonce of the latest message delivered to the
// target chain.
func (d InboundLaneData) LastDeliveredNonce() MessageNonce {
	if len(d.Relayers) == 0 {
		return d.LastConfirmedNonce
	}
	return d.Relayers[len(d.Relayers)-1].EndNonce
}

// InboundLaneDataSizeHint is an upper bound on the encoded size of
// InboundLaneData with the given number of unrewarded-relayer entries and
// unconfirmed messages. Used for fee estimation of delivery-confirmation
// transactions, where the data is part of the submitted proof.
func InboundLaneDataSizeHint(relayerIDEncodedSize, relayerEntries, messagesCount uint32) uint32 {
	const nonceSize = 8
	entrySize := saturatingAddU32(relayerIDEncodedSize, 2*nonceSize)
	relayersSize := saturatingMulU32(relayerEntries, entrySize)
	// one byte of dispatch result per unconfirmed message
	return saturatingAddU32(saturatingAddU32(relayersSize, nonceSize), messagesCount)
}

func saturatingAddU32(a, b uint32) uint32 {
	sum := a + b
	if sum < a {
		return ^uint32(0)
	}
	return sum
}

func saturatingMulU32(a, b uint32) uint32 {
	if a == 0 || b == 0 {
		return 0
	}
	product := a * b
	if product/a != b {
		return ^uint32(0)
	}
	return product
}
