// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

// Package bridge describes one bridge instance between two chains and
// implements its fee model: translating bridged chain transaction cost into
// this chain's currency using the governed conversion rate and multiplier.
package bridge

import (
	"math/big"

	"github.com/snowfork/go-substrate-rpc-client/v4/types"
	"github.com/snowfork/messagebridge/messages"
)

// ChainID is the 4-byte identifier of a chain, e.g. "ksma".
type ChainID [4]byte

// Chain is the static description of one side of the bridge: the limits and
// cost constants needed to estimate transactions on it without access to its
// runtime.
type Chain struct {
	ID ChainID

	// Transaction limits of the normal dispatch class.
	MaxExtrinsicSize   uint32
	MaxExtrinsicWeight messages.Weight

	// Signed extension and storage proof overhead added to any transaction
	// submitted to this chain.
	TxExtraBytes          uint32
	ExtraStorageProofSize uint32

	// Fee formula inputs.
	BaseExtrinsicWeight    messages.Weight
	PerByteFee             uint64
	WeightToFeeCoefficient uint64

	// Message delivery cost constants.
	DefaultMessageDeliveryTxWeight               messages.Weight
	AdditionalMessageByteDeliveryWeight          messages.Weight
	MaxSingleMessageDeliveryConfirmationTxWeight messages.Weight
	PayInboundDispatchFeeWeight                  messages.Weight

	// Limits on what a single delivery-confirmation transaction may carry.
	MaxUnrewardedRelayersInConfirmationTx  uint64
	MaxUnconfirmedMessagesInConfirmationTx uint64

	// Largest encoded account id accepted by the chain.
	MaxAccountIDEncodedSize uint32
}

// WeightToFee maps a dispatch weight to a fee in the chain's own tokens.
// The reference runtimes use a one-coefficient polynomial here.
func (c *Chain) WeightToFee(weight messages.Weight) types.U128 {
	fee := new(big.Int).SetUint64(uint64(weight))
	fee.Mul(fee, new(big.Int).SetUint64(c.WeightToFeeCoefficient))
	return types.U128{Int: clampBalance(fee)}
}

// MinDispatchWeight is the lightest call this chain accepts inside a
// delivered message. The bridge carries all kinds of messages, so no
// assumption is made about a minimal dispatch weight.
func (c *Chain) MinDispatchWeight() messages.Weight {
	return 0
}

// MaxDispatchWeight is the heaviest call this chain accepts inside a single
// delivered message. Half the extrinsic weight is reserved for the delivery
// transaction overhead itself.
func (c *Chain) MaxDispatchWeight() messages.Weight {
	return c.MaxExtrinsicWeight / 2
}

// MaxMessageSize is the largest encoded payload this chain accepts from the
// bridge, keeping a reserve for proof overhead and future upgrades.
func (c *Chain) MaxMessageSize() uint32 {
	return c.MaxExtrinsicSize / 3 * 2
}

// Kusama is the Kusama chain seen from the fee model's point of view.
// Token amounts are in planck, 1 KSM = 10^12 planck.
func Kusama() *Chain {
	return &Chain{
		ID:                     ChainID{'k', 's', 'm', 'a'},
		MaxExtrinsicSize:       3 * 1024 * 1024,
		MaxExtrinsicWeight:     1_500_000_000_000,
		TxExtraBytes:           103,
		ExtraStorageProofSize:  1024,
		BaseExtrinsicWeight:    86_298_000,
		PerByteFee:             166_666,
		WeightToFeeCoefficient: 116,

		DefaultMessageDeliveryTxWeight:               1_500_000_000,
		AdditionalMessageByteDeliveryWeight:          25_000,
		MaxSingleMessageDeliveryConfirmationTxWeight: 2_000_000_000,
		PayInboundDispatchFeeWeight:                  600_000_000,

		MaxUnrewardedRelayersInConfirmationTx:  128,
		MaxUnconfirmedMessagesInConfirmationTx: 8192,

		MaxAccountIDEncodedSize: 32,
	}
}

// Polkadot is the Polkadot chain seen from the fee model's point of view.
// Token amounts are in planck, 1 DOT = 10^10 planck.
func Polkadot() *Chain {
	return &Chain{
		ID:                     ChainID{'p', 'd', 'o', 't'},
		MaxExtrinsicSize:       3 * 1024 * 1024,
		MaxExtrinsicWeight:     1_500_000_000_000,
		TxExtraBytes:           103,
		ExtraStorageProofSize:  1024,
		BaseExtrinsicWeight:    85_212_000,
		PerByteFee:             1_000_000,
		WeightToFeeCoefficient: 85,

		DefaultMessageDeliveryTxWeight:               1_500_000_000,
		AdditionalMessageByteDeliveryWeight:          25_000,
		MaxSingleMessageDeliveryConfirmationTxWeight: 2_000_000_000,
		PayInboundDispatchFeeWeight:                  600_000_000,

		MaxUnrewardedRelayersInConfirmationTx:  128,
		MaxUnconfirmedMessagesInConfirmationTx: 8192,

		MaxAccountIDEncodedSize: 32,
	}
}
