// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package bridge

import (
	"fmt"
	"math/big"

	"github.com/snowfork/go-substrate-rpc-client/v4/types"
	"github.com/snowfork/messagebridge/fixed"
	"github.com/snowfork/messagebridge/messages"
	"github.com/snowfork/messagebridge/params"
)

// MessageBridge binds the two ends of one bridge instance: the chain this
// code runs on, the bridged chain, the relayer incentive and the name of the
// messages pallet deployed on the bridged chain. One runtime may host several
// instances, disambiguated by the pallet name.
type MessageBridge struct {
	ThisChain    *Chain
	BridgedChain *Chain

	// Markup, in percent, added to the estimated message cost to reward
	// the relayer.
	RelayerFeePercent uint32

	// Name of the messages pallet instance on the bridged chain. Storage
	// keys of proved messages are derived from it.
	BridgedMessagesPalletName string

	// Governed economic parameters of this instance.
	Params *params.Store
}

// NewKusamaPolkadotBridge describes the Kusama -> Polkadot message bridge
// with the reference configuration.
func NewKusamaPolkadotBridge(store *params.Store) *MessageBridge {
	return &MessageBridge{
		ThisChain:                 Kusama(),
		BridgedChain:              Polkadot(),
		RelayerFeePercent:         10,
		BridgedMessagesPalletName: "BridgeKusamaMessages",
		Params:                    store,
	}
}

// BridgedToThisBalance converts an amount of bridged chain tokens into this
// chain tokens. The stored conversion rate is used unless an override is
// supplied. Overflow saturates to the maximum balance so that delivery
// confirmation can never be blocked by an arithmetic edge case.
func (b *MessageBridge) BridgedToThisBalance(amount types.U128, rateOverride *fixed.U128) types.U128 {
	rate := b.Params.ConversionRate()
	if rateOverride != nil {
		rate = *rateOverride
	}
	return rate.SaturatingMulBalance(amount)
}

// EstimateDeliveryTransaction estimates the transaction that will deliver a
// message with the given payload to the bridged chain. Payload bytes above
// the expected default length make the delivery heavier; when the dispatch
// fee was already paid at this chain, the weight of charging it at the
// target is subtracted.
func (b *MessageBridge) EstimateDeliveryTransaction(
	payload []byte,
	includePayDispatchFeeCost bool,
	dispatchWeight messages.Weight,
) MessageTransaction {
	payloadLen := uint32(len(payload))
	extraBytes := saturatingSubWeight(messages.Weight(payloadLen), ExpectedDefaultMessageLength)

	weight := saturatingMulWeight(extraBytes, b.BridgedChain.AdditionalMessageByteDeliveryWeight)
	weight = saturatingAddWeight(weight, b.BridgedChain.DefaultMessageDeliveryTxWeight)
	if !includePayDispatchFeeCost {
		weight = saturatingSubWeight(weight, b.BridgedChain.PayInboundDispatchFeeWeight)
	}
	weight = saturatingAddWeight(weight, dispatchWeight)

	return MessageTransaction{
		DispatchWeight: weight,
		Size: saturatingAddU32(
			saturatingAddU32(payloadLen, b.ThisChain.ExtraStorageProofSize),
			b.BridgedChain.TxExtraBytes,
		),
	}
}

// EstimateDeliveryConfirmationTransaction estimates the transaction that
// will deliver the bridged chain's confirmation of one message back to this
// chain.
func (b *MessageBridge) EstimateDeliveryConfirmationTransaction() MessageTransaction {
	inboundDataSize := messages.InboundLaneDataSizeHint(b.ThisChain.MaxAccountIDEncodedSize, 1, 1)
	return MessageTransaction{
		DispatchWeight: b.ThisChain.MaxSingleMessageDeliveryConfirmationTxWeight,
		Size: saturatingAddU32(
			saturatingAddU32(inboundDataSize, b.BridgedChain.ExtraStorageProofSize),
			b.ThisChain.TxExtraBytes,
		),
	}
}

// ThisChainTransactionPayment is the cost of a transaction on this chain.
// The supplied transaction may execute in the future, when the fee
// multiplier has grown, so a slightly increased multiplier is used.
func (b *MessageBridge) ThisChainTransactionPayment(transaction MessageTransaction) types.U128 {
	multiplier := fixed.FromRational(110, 100)
	return TransactionPayment(
		b.ThisChain.BaseExtrinsicWeight,
		types.NewU128(*new(big.Int).SetUint64(b.ThisChain.PerByteFee)),
		multiplier,
		b.ThisChain.WeightToFee,
		transaction,
	)
}

// BridgedChainTransactionPayment is the cost of a transaction on the bridged
// chain, in bridged chain tokens. The bridged chain's multiplier is not
// directly observable, so the governed FeeMultiplier parameter stands in
// for it.
func (b *MessageBridge) BridgedChainTransactionPayment(transaction MessageTransaction) types.U128 {
	return TransactionPayment(
		b.BridgedChain.BaseExtrinsicWeight,
		types.NewU128(*new(big.Int).SetUint64(b.BridgedChain.PerByteFee)),
		b.Params.FeeMultiplier(),
		b.BridgedChain.WeightToFee,
		transaction,
	)
}

// EstimateMessageFee is the minimal acceptable fee for sending the payload
// over the bridge: the delivery cost on the bridged chain converted into
// this chain tokens, plus the confirmation cost on this chain, marked up by
// the relayer fee percent.
func (b *MessageBridge) EstimateMessageFee(payload *messages.MessagePayload, rateOverride *fixed.U128) (types.U128, error) {
	encoded, err := payload.Encoded()
	if err != nil {
		return types.U128{}, fmt.Errorf("encode payload: %w", err)
	}

	// charging the dispatch fee at the target chain is extra work for the
	// delivery transaction
	deliveryTx := b.EstimateDeliveryTransaction(
		encoded,
		payload.DispatchFeePayment == messages.PayDispatchFeeAtTargetChain,
		payload.Weight,
	)
	deliveryFee := b.BridgedChainTransactionPayment(deliveryTx)

	confirmationTx := b.EstimateDeliveryConfirmationTransaction()
	confirmationFee := b.ThisChainTransactionPayment(confirmationTx)

	minimalFee := new(big.Int).Add(
		balanceOrZero(b.BridgedToThisBalance(deliveryFee, rateOverride)),
		balanceOrZero(confirmationFee),
	)

	// relayer markup
	minimalFee.Mul(minimalFee, new(big.Int).SetUint64(uint64(100+b.RelayerFeePercent)))
	minimalFee.Div(minimalFee, big.NewInt(100))

	return types.U128{Int: clampBalance(minimalFee)}, nil
}
