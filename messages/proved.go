// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package messages

import (
	"bytes"
	"sort"
)

// ProvedLaneMessages is a single lane's slice of a verified messages proof.
type ProvedLaneMessages struct {
	// Outbound lane state on the bridged chain, when the proof covers it.
	LaneState *OutboundLaneData
	// Messages in nonce order.
	Messages []Message
}

// ProvedMessages is the result of verifying a messages proof: for every lane
// touched by the proof, the messages proven to exist on the bridged chain.
type ProvedMessages map[LaneID]ProvedLaneMessages

// Lanes returns the lane ids of the proof in deterministic order.
func (p ProvedMessages) Lanes() []LaneID {
	lanes := make([]LaneID, 0, len(p))
	for lane := range p {
		lanes = append(lanes, lane)
	}
	sort.Slice(lanes, func(i, j int) bool {
		return bytes.Compare(lanes[i][:], lanes[j][:]) < 0
	})
	return lanes
}

// Count is the total number of messages across all lanes.
func (p ProvedMessages) Count() uint64 {
	var count uint64
	for _, lane := range p {
		count += uint64(len(lane.Messages))
	}
	return count
}
