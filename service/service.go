// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

// Package service maps the bridge core onto its transaction entry points:
// submitting an outbound message, submitting proofs from the bridged chain
// and applying governance parameter updates. Each entry point verifies
// first and commits to the ledger only on acceptance; a rejection mutates
// nothing.
package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/snowfork/go-substrate-rpc-client/v4/types"
	"golang.org/x/sync/errgroup"

	"github.com/snowfork/messagebridge/bridge"
	"github.com/snowfork/messagebridge/inbound"
	"github.com/snowfork/messagebridge/ledger"
	"github.com/snowfork/messagebridge/messages"
	"github.com/snowfork/messagebridge/outbound"
	"github.com/snowfork/messagebridge/params"
)

// Dispatcher executes calls decoded from delivered messages. Dispatch
// failures are the dispatcher's concern; delivery is already recorded by
// the time it runs.
type Dispatcher interface {
	Dispatch(message messages.Message) error
}

// Service wires the verifiers, the lane ledger and the dispatcher together.
type Service struct {
	bridge     *bridge.MessageBridge
	outbound   *outbound.Verifier
	inbound    *inbound.Verifier
	ledger     *ledger.Ledger
	dispatcher Dispatcher

	pruneInterval time.Duration
}

func New(
	b *bridge.MessageBridge,
	outboundVerifier *outbound.Verifier,
	inboundVerifier *inbound.Verifier,
	laneLedger *ledger.Ledger,
	dispatcher Dispatcher,
) *Service {
	return &Service{
		bridge:        b,
		outbound:      outboundVerifier,
		inbound:       inboundVerifier,
		ledger:        laneLedger,
		dispatcher:    dispatcher,
		pruneInterval: 10 * time.Second,
	}
}

// Start launches the background pruner that discards confirmed outbound
// messages. The core entry points stay synchronous and can be used without
// calling Start.
func (s *Service) Start(ctx context.Context, eg *errgroup.Group) error {
	eg.Go(func() error {
		ticker := time.NewTicker(s.pruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				for _, lane := range s.ledger.Lanes() {
					pruned := s.ledger.PruneMessages(lane)
					if pruned > 0 {
						log.WithFields(log.Fields{
							"lane":   lane.Hex(),
							"pruned": pruned,
						}).Debug("Pruned confirmed messages")
					}
				}
			}
		}
	})
	return nil
}

// SubmitOutboundMessage verifies and, on acceptance, appends a message to
// the outbound lane, returning its assigned nonce.
func (s *Service) SubmitOutboundMessage(
	submitter outbound.Origin,
	lane messages.LaneID,
	payload *messages.MessagePayload,
	deliveryAndDispatchFee types.U128,
) (messages.MessageNonce, error) {
	laneData := s.ledger.OutboundLaneData(lane)

	err := s.outbound.VerifyMessage(submitter, deliveryAndDispatchFee, lane, laneData, payload)
	if err != nil {
		return 0, err
	}

	encoded, err := payload.Encoded()
	if err != nil {
		return 0, fmt.Errorf("encode payload: %w", err)
	}

	nonce := s.ledger.SendMessage(lane, messages.MessageData{
		Payload: encoded,
		Fee:     deliveryAndDispatchFee,
	})

	log.WithFields(log.Fields{
		"lane":  lane.Hex(),
		"nonce": nonce,
	}).Info("Accepted outbound message")

	return nonce, nil
}

// SubmitMessagesProof verifies a messages proof from the bridged chain and,
// on acceptance, records delivery of every proved message and dispatches it.
// Rejection leaves the ledger untouched; there is no partial acceptance.
func (s *Service) SubmitMessagesProof(
	relayer messages.AccountID,
	proof *inbound.MessagesProof,
	messagesCount uint32,
) error {
	proved, err := s.inbound.VerifyMessagesProof(proof, messagesCount)
	if err != nil {
		return err
	}

	for _, lane := range proved.Lanes() {
		laneMessages := proved[lane].Messages
		err = s.ledger.ReceiveMessages(lane, laneMessages, relayer)
		if err != nil {
			return err
		}
		for _, message := range laneMessages {
			err = s.dispatcher.Dispatch(message)
			if err != nil {
				log.WithFields(log.Fields{
					"lane":  lane.Hex(),
					"nonce": message.Key.Nonce,
				}).WithError(err).Warn("Message dispatch failed")
			}
		}
	}

	log.WithFields(log.Fields{
		"relayer":  relayer.Hex(),
		"messages": proved.Count(),
	}).Info("Accepted messages proof")

	return nil
}

// SubmitDeliveryProof verifies a delivery proof and, on acceptance, advances
// the outbound lane's confirmed nonce. The newly confirmed range is
// returned so the caller can reward relayers.
func (s *Service) SubmitDeliveryProof(proof *inbound.MessagesDeliveryProof) (begin, end messages.MessageNonce, err error) {
	lane, laneData, err := s.inbound.VerifyDeliveryProof(proof)
	if err != nil {
		return 0, 0, err
	}

	begin, end, err = s.ledger.ConfirmDelivery(lane, laneData.LastDeliveredNonce())
	if err != nil {
		return 0, 0, err
	}

	log.WithFields(log.Fields{
		"lane":  lane.Hex(),
		"begin": begin,
		"end":   end,
	}).Info("Confirmed message delivery")

	return begin, end, nil
}

// UpdateParameter applies a governance parameter update. Authentication of
// the governance origin happens before this call.
func (s *Service) UpdateParameter(p params.Parameter) {
	s.bridge.Params.Apply(p)
}
