// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

// Package outbound gatekeeps messages leaving this chain: it authorizes the
// submitter, validates the payload against the bridged chain's limits and
// checks that the declared fee covers delivery and confirmation.
package outbound

import (
	"github.com/snowfork/messagebridge/messages"
	"github.com/snowfork/messagebridge/params"
)

// OriginKind discriminates the submitter origins the bridge understands.
type OriginKind uint8

const (
	// OriginSigned is a transaction signed directly by an account.
	OriginSigned OriginKind = iota
	// OriginCollective is a dispatch approved by a collective body, e.g.
	// the council.
	OriginCollective
	// OriginOther is any origin the bridge does not map to an account.
	OriginOther
)

// Origin is the origin a message was submitted with.
type Origin struct {
	Kind OriginKind
	// Signer of the transaction. Set for OriginSigned.
	Signer messages.AccountID
	// Approving and total member counts of the collective vote. Set for
	// OriginCollective.
	MemberCount     uint32
	MemberThreshold uint32
}

// SignedOrigin is a message submitted by a directly signed account.
func SignedOrigin(signer messages.AccountID) Origin {
	return Origin{Kind: OriginSigned, Signer: signer}
}

// CollectiveOrigin is a message approved by count members of a collective
// with the given vote threshold.
func CollectiveOrigin(count, threshold uint32) Origin {
	return Origin{Kind: OriginCollective, MemberCount: count, MemberThreshold: threshold}
}

// OtherOrigin is any origin without a linked account.
func OtherOrigin() Origin {
	return Origin{Kind: OriginOther}
}

// LinkedAccount resolves the origin to the account the bridge treats as the
// message sender. A signed origin maps to its signer. A collective origin
// maps to the configured allowed sender, but only when the vote satisfies
// its own threshold. Everything else maps to no account.
func (o Origin) LinkedAccount(store *params.Store) (messages.AccountID, bool) {
	switch o.Kind {
	case OriginSigned:
		return o.Signer, true
	case OriginCollective:
		if o.MemberThreshold == 0 || o.MemberCount < o.MemberThreshold {
			return messages.AccountID{}, false
		}
		return store.AllowedSender()
	default:
		return messages.AccountID{}, false
	}
}
