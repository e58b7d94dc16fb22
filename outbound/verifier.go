// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package outbound

import (
	"errors"
	"fmt"
	"math/big"

	log "github.com/sirupsen/logrus"
	"github.com/snowfork/go-substrate-rpc-client/v4/types"

	"github.com/snowfork/messagebridge/bridge"
	"github.com/snowfork/messagebridge/messages"
)

var (
	// ErrNotAllowedSender rejects messages from anyone but the configured
	// allowed sender.
	ErrNotAllowedSender = errors.New("cannot accept message from this account")
	// ErrLaneDisabled rejects messages submitted on a lane that is not in
	// the outbound allow-list, or by an origin without a linked account.
	ErrLaneDisabled = errors.New("the outbound message lane is disabled")
	// ErrTooLarge rejects payloads above the bridged chain's size limit.
	ErrTooLarge = errors.New("message is too large to be delivered")
	// ErrWeightTooLow rejects calls below the bridged chain's minimal
	// dispatch weight.
	ErrWeightTooLow = errors.New("message dispatch weight is below the limit")
	// ErrWeightTooHigh rejects calls heavier than the bridged chain can
	// dispatch in one message.
	ErrWeightTooHigh = errors.New("message dispatch weight is above the limit")
	// ErrTooManyPendingMessages rejects new messages while too many earlier
	// ones await delivery confirmation.
	ErrTooManyPendingMessages = errors.New("too many pending messages at the outbound lane")
	// ErrFeeTooLow rejects messages whose declared fee does not cover
	// delivery and confirmation.
	ErrFeeTooLow = errors.New("declared fee is below the expected delivery and dispatch cost")
)

// Verifier checks outbound messages before they are appended to a lane.
// It has no side effects; the caller owns the ledger mutation on acceptance.
type Verifier struct {
	bridge       *bridge.MessageBridge
	allowedLanes []messages.LaneID
}

// NewVerifier builds a verifier accepting messages on the given lanes only.
func NewVerifier(b *bridge.MessageBridge, allowedLanes []messages.LaneID) *Verifier {
	return &Verifier{bridge: b, allowedLanes: allowedLanes}
}

// VerifyMessage decides whether the message may be sent. Checks run in
// order: sender authorization, payload validity against the bridged chain,
// lane admission and fee sufficiency.
func (v *Verifier) VerifyMessage(
	submitter Origin,
	deliveryAndDispatchFee types.U128,
	lane messages.LaneID,
	laneData messages.OutboundLaneData,
	payload *messages.MessagePayload,
) error {
	linked, hasLinked := submitter.LinkedAccount(v.bridge.Params)

	// a configured allowed sender is the only account whose messages
	// are accepted
	if allowed, restricted := v.bridge.Params.AllowedSender(); restricted {
		if !hasLinked || linked != allowed {
			return ErrNotAllowedSender
		}
	}

	err := v.VerifyChainMessage(payload)
	if err != nil {
		return err
	}

	if !v.laneAllowed(lane) || !hasLinked {
		return ErrLaneDisabled
	}

	if uint64(laneData.PendingMessages()) > v.bridge.BridgedChain.MaxUnconfirmedMessagesInConfirmationTx {
		return ErrTooManyPendingMessages
	}

	minimalFee, err := v.bridge.EstimateMessageFee(payload, nil)
	if err != nil {
		return fmt.Errorf("estimate message fee: %w", err)
	}
	if balanceOrZero(deliveryAndDispatchFee).Cmp(balanceOrZero(minimalFee)) < 0 {
		log.WithFields(log.Fields{
			"lane":        lane.Hex(),
			"declaredFee": balanceOrZero(deliveryAndDispatchFee).String(),
			"minimalFee":  balanceOrZero(minimalFee).String(),
		}).Debug("Rejecting underpaid outbound message")
		return ErrFeeTooLow
	}

	return nil
}

// VerifyChainMessage checks the payload against the bridged chain's static
// limits, independent of lane state or fees.
func (v *Verifier) VerifyChainMessage(payload *messages.MessagePayload) error {
	if payload.Weight < v.bridge.BridgedChain.MinDispatchWeight() {
		return ErrWeightTooLow
	}
	if payload.Weight > v.bridge.BridgedChain.MaxDispatchWeight() {
		return ErrWeightTooHigh
	}
	if uint32(len(payload.Call)) > v.bridge.BridgedChain.MaxMessageSize() {
		return ErrTooLarge
	}
	return nil
}

func (v *Verifier) laneAllowed(lane messages.LaneID) bool {
	for _, allowed := range v.allowedLanes {
		if lane == allowed {
			return true
		}
	}
	return false
}

func balanceOrZero(v types.U128) *big.Int {
	if v.Int == nil {
		return big.NewInt(0)
	}
	return v.Int
}
