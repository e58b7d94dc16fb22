// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package bridge

import (
	"math/big"

	"github.com/snowfork/go-substrate-rpc-client/v4/types"
	"github.com/snowfork/messagebridge/fixed"
	"github.com/snowfork/messagebridge/messages"
)

// ExpectedDefaultMessageLength is the payload length already accounted for
// by the default message delivery transaction weight. Bytes above it cost
// AdditionalMessageByteDeliveryWeight each.
const ExpectedDefaultMessageLength = 128

var maxBalance = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

func clampBalance(v *big.Int) *big.Int {
	if v.Sign() < 0 {
		return big.NewInt(0)
	}
	if v.Cmp(maxBalance) > 0 {
		return new(big.Int).Set(maxBalance)
	}
	return v
}

func balanceOrZero(v types.U128) *big.Int {
	if v.Int == nil {
		return big.NewInt(0)
	}
	return v.Int
}

// MessageTransaction is an estimate of a to-be-dispatched transaction:
// enough to compute its fee, nothing more. Estimates are derived per
// verification call and never persisted.
type MessageTransaction struct {
	DispatchWeight messages.Weight
	Size           uint32
}

// WeightToFee maps a dispatch weight to a fee in some chain's tokens.
type WeightToFee func(messages.Weight) types.U128

// TransactionPayment computes the fee for a transaction following the
// standard payment formula: a base fee from the fixed extrinsic weight, a
// length fee from the transaction size, and the weight fee of the dispatch
// itself scaled by the chain's fee multiplier. Every step saturates.
func TransactionPayment(
	baseExtrinsicWeight messages.Weight,
	perByteFee types.U128,
	multiplier fixed.U128,
	weightToFee WeightToFee,
	transaction MessageTransaction,
) types.U128 {
	lengthFee := new(big.Int).SetUint64(uint64(transaction.Size))
	lengthFee.Mul(lengthFee, balanceOrZero(perByteFee))

	unadjustedWeightFee := balanceOrZero(weightToFee(transaction.DispatchWeight))
	adjustedWeightFee := multiplier.SaturatingMulInt(unadjustedWeightFee)

	baseFee := balanceOrZero(weightToFee(baseExtrinsicWeight))

	total := new(big.Int).Add(baseFee, lengthFee)
	total.Add(total, adjustedWeightFee)
	return types.U128{Int: clampBalance(total)}
}

func saturatingAddU32(a, b uint32) uint32 {
	sum := a + b
	if sum < a {
		return ^uint32(0)
	}
	return sum
}

func saturatingAddWeight(a, b messages.Weight) messages.Weight {
	sum := a + b
	if sum < a {
		return ^messages.Weight(0)
	}
	return sum
}

func saturatingSubWeight(a, b messages.Weight) messages.Weight {
	if b > a {
		return 0
	}
	return a - b
}

func saturatingMulWeight(a, b messages.Weight) messages.Weight {
	if a == 0 || b == 0 {
		return 0
	}
	product := a * b
	if product/a != b {
		return ^messages.Weight(0)
	}
	return product
}
