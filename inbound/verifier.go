// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package inbound

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/snowfork/go-substrate-rpc-client/v4/types"

	"github.com/snowfork/messagebridge/bridge"
	"github.com/snowfork/messagebridge/messages"
)

var (
	// ErrHeaderChain means the storage proof could not be established
	// against a finalized bridged header.
	ErrHeaderChain = errors.New("invalid proof of bridged chain storage")
	// ErrMessagesCountMismatch means the declared message count does not
	// match the proof's nonce range, or exceeds the per-proof cap.
	ErrMessagesCountMismatch = errors.New("declared messages count does not match the proof")
	// ErrMissingMessage means a nonce in the proved range has no message
	// in the proof.
	ErrMissingMessage = errors.New("message is missing from the proof")
	// ErrMissingLaneState means the proof carries no inbound lane state.
	ErrMissingLaneState = errors.New("lane state is missing from the proof")
	// ErrDecode means a proved storage value failed to decode.
	ErrDecode = errors.New("failed to decode proved storage value")
	// ErrInboundLaneDisabled rejects the whole proof batch when any lane in
	// it is not in the inbound allow-list.
	ErrInboundLaneDisabled = errors.New("the inbound message lane is disabled")
	// ErrConfirmationLaneDisabled rejects delivery proofs for lanes outside
	// the allow-list.
	ErrConfirmationLaneDisabled = errors.New("the delivery confirmation lane is disabled")
)

// Verifier validates messages proofs and delivery proofs from the bridged
// chain. It does not dispatch calls or mutate lane state; accepted results
// are handed back to the caller.
type Verifier struct {
	bridge       *bridge.MessageBridge
	headerChain  HeaderChain
	allowedLanes []messages.LaneID
}

// NewVerifier builds a verifier admitting proofs on the given lanes only.
func NewVerifier(b *bridge.MessageBridge, headerChain HeaderChain, allowedLanes []messages.LaneID) *Verifier {
	return &Verifier{bridge: b, headerChain: headerChain, allowedLanes: allowedLanes}
}

// VerifyMessagesProof checks a proof of messagesCount messages sent on the
// bridged chain and returns them decoded, grouped by lane. The whole proof
// is rejected if any proved lane is outside the inbound allow-list: silently
// dropping a disallowed lane would let a relayer smuggle its messages into
// an otherwise valid batch.
func (v *Verifier) VerifyMessagesProof(proof *MessagesProof, messagesCount uint32) (messages.ProvedMessages, error) {
	expectedCount := uint64(0)
	if proof.NoncesEnd >= proof.NoncesStart {
		expectedCount = uint64(proof.NoncesEnd-proof.NoncesStart) + 1
	}
	if uint64(messagesCount) != expectedCount {
		return nil, ErrMessagesCountMismatch
	}
	if expectedCount > v.bridge.BridgedChain.MaxUnconfirmedMessagesInConfirmationTx {
		return nil, ErrMessagesCountMismatch
	}

	storage, err := v.headerChain.OpenProof(proof.BridgedHeaderHash, proof.StorageProof)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrHeaderChain, err)
	}

	pallet := v.bridge.BridgedMessagesPalletName
	proved := messages.ProvedLaneMessages{}

	// the outbound lane state, when proved, travels with the messages
	laneStateKey, err := OutboundLanesKey(pallet, proof.Lane)
	if err != nil {
		return nil, err
	}
	if raw, ok := storage.Read(laneStateKey); ok {
		var laneState messages.OutboundLaneData
		err = decodeValue(raw, &laneState)
		if err != nil {
			return nil, err
		}
		proved.LaneState = &laneState
	}

	for nonce := proof.NoncesStart; expectedCount > 0 && nonce <= proof.NoncesEnd; nonce++ {
		key := messages.MessageKey{LaneID: proof.Lane, Nonce: nonce}
		storageKey, err := OutboundMessagesKey(pallet, key)
		if err != nil {
			return nil, err
		}
		raw, ok := storage.Read(storageKey)
		if !ok {
			return nil, fmt.Errorf("%w: nonce %d", ErrMissingMessage, nonce)
		}
		var data messages.MessageData
		err = decodeValue(raw, &data)
		if err != nil {
			return nil, err
		}
		proved.Messages = append(proved.Messages, messages.Message{Key: key, Data: data})
	}

	result := messages.ProvedMessages{proof.Lane: proved}

	err = v.verifyInboundLanes(result)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"lane":     proof.Lane.Hex(),
		"messages": messagesCount,
	}).Debug("Verified messages proof")

	return result, nil
}

// VerifyDeliveryProof checks a proof of the bridged chain's inbound lane
// state for one of our outbound lanes and returns that state decoded.
func (v *Verifier) VerifyDeliveryProof(proof *MessagesDeliveryProof) (messages.LaneID, *messages.InboundLaneData, error) {
	if !v.laneAllowed(proof.Lane) {
		log.WithField("lane", proof.Lane.Hex()).Warn("Rejecting delivery proof with disabled lane")
		return proof.Lane, nil, ErrConfirmationLaneDisabled
	}

	storage, err := v.headerChain.OpenProof(proof.BridgedHeaderHash, proof.StorageProof)
	if err != nil {
		return proof.Lane, nil, fmt.Errorf("%w: %s", ErrHeaderChain, err)
	}

	storageKey, err := InboundLanesKey(v.bridge.BridgedMessagesPalletName, proof.Lane)
	if err != nil {
		return proof.Lane, nil, err
	}
	raw, ok := storage.Read(storageKey)
	if !ok {
		return proof.Lane, nil, ErrMissingLaneState
	}

	var laneData messages.InboundLaneData
	err = decodeValue(raw, &laneData)
	if err != nil {
		return proof.Lane, nil, err
	}

	return proof.Lane, &laneData, nil
}

// verifyInboundLanes rejects the whole batch if any proved lane is not
// allow-listed (fail-closed).
func (v *Verifier) verifyInboundLanes(proved messages.ProvedMessages) error {
	for _, lane := range proved.Lanes() {
		if !v.laneAllowed(lane) {
			log.WithField("lane", lane.Hex()).Warn("Rejecting proof with disabled inbound lane")
			return ErrInboundLaneDisabled
		}
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

func decodeValue(raw []byte, target interface{}) (err error) {
	// the scale decoder panics on some truncated inputs instead of
	// returning an error; proved values are relayer-supplied, so a bad
	// value must never take the verifier down
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrDecode, r)
		}
	}()

	err = types.DecodeFromBytes(types.NewBytes(raw), target)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrDecode, err)
	}
	return nil
}
