// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

// Package ledger is an in-memory lane ledger: per-lane nonce counters and
// message storage with single-writer-per-lane discipline. The verifiers only
// ever read it; all mutation goes through the accept paths of the service.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/snowfork/messagebridge/messages"
)

var (
	// ErrNonceGap means a delivered message does not directly follow the
	// previously delivered one.
	ErrNonceGap = errors.New("message nonce is not contiguous with lane state")
	// ErrDuplicateDelivery means a (lane, nonce) pair was delivered before.
	ErrDuplicateDelivery = errors.New("message was already delivered on this lane")
	// ErrConfirmationRegression means a delivery confirmation moves the
	// confirmed nonce backwards or beyond the generated range.
	ErrConfirmationRegression = errors.New("delivery confirmation is outside the expected range")
)

// MaxMessagesToPruneAtOnce caps the work done by a single pruning pass.
const MaxMessagesToPruneAtOnce = 10

type outboundLane struct {
	data     messages.OutboundLaneData
	messages map[messages.MessageNonce]messages.MessageData
}

type inboundLane struct {
	data messages.InboundLaneData
}

// Ledger holds the lane state of one bridge instance.
type Ledger struct {
	mu       sync.Mutex
	outbound map[messages.LaneID]*outboundLane
	inbound  map[messages.LaneID]*inboundLane
}

func New() *Ledger {
	return &Ledger{
		outbound: make(map[messages.LaneID]*outboundLane),
		inbound:  make(map[messages.LaneID]*inboundLane),
	}
}

func (l *Ledger) outboundLane(lane messages.LaneID) *outboundLane {
	out, ok := l.outbound[lane]
	if !ok {
		out = &outboundLane{
			data:     messages.NewOutboundLaneData(),
			messages: make(map[messages.MessageNonce]messages.MessageData),
		}
		l.outbound[lane] = out
	}
	return out
}

func (l *Ledger) inboundLane(lane messages.LaneID) *inboundLane {
	in, ok := l.inbound[lane]
	if !ok {
		in = &inboundLane{}
		l.inbound[lane] = in
	}
	return in
}

// OutboundLaneData reads the current outbound state of a lane.
func (l *Ledger) OutboundLaneData(lane messages.LaneID) messages.OutboundLaneData {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.outboundLane(lane).data
}

// InboundLaneData reads the current inbound state of a lane.
func (l *Ledger) InboundLaneData(lane messages.LaneID) messages.InboundLaneData {
	l.mu.Lock()
	defer l.mu.Unlock()
	in := l.inboundLane(lane)
	data := in.data
	data.Relayers = append([]messages.UnrewardedRelayer(nil), in.data.Relayers...)
	return data
}

// SendMessage appends an already-verified message to the outbound lane and
// returns its assigned nonce. Nonces are assigned strictly sequentially.
func (l *Ledger) SendMessage(lane messages.LaneID, data messages.MessageData) messages.MessageNonce {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := l.outboundLane(lane)
	out.data.LatestGeneratedNonce++
	nonce := out.data.LatestGeneratedNonce
	out.messages[nonce] = data
	return nonce
}

// StoredMessage reads a stored outbound message, if it has not been pruned.
func (l *Ledger) StoredMessage(lane messages.LaneID, nonce messages.MessageNonce) (messages.MessageData, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, ok := l.outboundLane(lane).messages[nonce]
	return data, ok
}

// ReceiveMessages records the delivery of a contiguous batch of messages on
// an inbound lane, attributed to relayer. The batch is validated in full
// before any of it is applied; a gap or duplicate rejects the whole batch
// and mutates nothing.
func (l *Ledger) ReceiveMessages(lane messages.LaneID, batch []messages.Message, relayer messages.AccountID) error {
	if len(batch) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	in := l.inboundLane(lane)
	next := in.data.LastDeliveredNonce() + 1
	for i, msg := range batch {
		expected := next + messages.MessageNonce(i)
		if msg.Key.Nonce < expected {
			return fmt.Errorf("%w: nonce %d", ErrDuplicateDelivery, msg.Key.Nonce)
		}
		if msg.Key.Nonce > expected {
			return fmt.Errorf("%w: nonce %d, expected %d", ErrNonceGap, msg.Key.Nonce, expected)
		}
	}

	begin := batch[0].Key.Nonce
	end := batch[len(batch)-1].Key.Nonce
	relayers := in.data.Relayers
	if n := len(relayers); n > 0 && relayers[n-1].Relayer == relayer {
		relayers[n-1].EndNonce = end
	} else {
		relayers = append(relayers, messages.UnrewardedRelayer{
			BeginNonce: begin,
			EndNonce:   end,
			Relayer:    relayer,
		})
	}
	in.data.Relayers = relayers
	return nil
}

// ConfirmDelivery applies a verified delivery confirmation to an outbound
// lane and returns the newly confirmed nonce range.
func (l *Ledger) ConfirmDelivery(lane messages.LaneID, latestDelivered messages.MessageNonce) (begin, end messages.MessageNonce, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := l.outboundLane(lane)
	if latestDelivered <= out.data.LatestReceivedNonce {
		return 0, 0, ErrConfirmationRegression
	}
	if latestDelivered > out.data.LatestGeneratedNonce {
		return 0, 0, ErrConfirmationRegression
	}

	begin = out.data.LatestReceivedNonce + 1
	end = latestDelivered
	out.data.LatestReceivedNonce = latestDelivered
	return begin, end, nil
}

// PruneMessages drops up to MaxMessagesToPruneAtOnce confirmed messages
// from an outbound lane and returns how many were pruned.
func (l *Ledger) PruneMessages(lane messages.LaneID) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := l.outboundLane(lane)
	pruned := 0
	for pruned < MaxMessagesToPruneAtOnce && out.data.OldestUnprunedNonce <= out.data.LatestReceivedNonce {
		delete(out.messages, out.data.OldestUnprunedNonce)
		out.data.OldestUnprunedNonce++
		pruned++
	}
	return pruned
}

// Lanes lists all outbound lanes with recorded state.
func (l *Ledger) Lanes() []messages.LaneID {
	l.mu.Lock()
	defer l.mu.Unlock()

	lanes := make([]messages.LaneID, 0, len(l.outbound))
	for lane := range l.outbound {
		lanes = append(lanes, lane)
	}
	return lanes
}
