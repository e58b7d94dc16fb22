// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package inbound

import (
	"errors"
	"fmt"

	gethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/snowfork/go-substrate-rpc-client/v4/types"

	"github.com/snowfork/messagebridge/messages"
)

// MessagesProof is evidence that a range of messages exists in one outbound
// lane on the bridged chain, verifiable against a finalized bridged header.
type MessagesProof struct {
	// Hash of the bridged header the storage proof is built against.
	BridgedHeaderHash types.H256
	// Opaque storage proof, understood by the header chain capability.
	StorageProof []types.Bytes
	// Lane the proved messages belong to.
	Lane messages.LaneID
	// Proved nonce range, inclusive on both ends.
	NoncesStart messages.MessageNonce
	NoncesEnd   messages.MessageNonce
}

// MessagesDeliveryProof is evidence of the inbound lane state on the bridged
// chain, confirming delivery of this chain's messages.
type MessagesDeliveryProof struct {
	BridgedHeaderHash types.H256
	StorageProof      []types.Bytes
	Lane              messages.LaneID
}

// StorageReader reads values proven to exist in bridged chain storage.
type StorageReader interface {
	Read(key []byte) ([]byte, bool)
}

// HeaderChain is the consensus proof capability this package delegates to.
// Opening a proof establishes its cryptographic validity against a bridged
// header that has already been finalized on this chain; how that is done is
// not this package's concern.
type HeaderChain interface {
	OpenProof(headerHash types.H256, storageProof []types.Bytes) (StorageReader, error)
}

// A proof item is one raw storage entry carried by the proof.
type proofItem struct {
	Key   types.Bytes
	Value types.Bytes
}

// ProofBuilder accumulates storage entries into a raw storage proof. It
// satisfies ethdb.KeyValueWriter so proof recorders can write into it
// directly.
type ProofBuilder struct {
	items []proofItem
}

func NewProofBuilder() *ProofBuilder {
	return &ProofBuilder{items: make([]proofItem, 0)}
}

func (b *ProofBuilder) Put(key []byte, value []byte) error {
	b.items = append(b.items, proofItem{
		Key:   types.NewBytes(gethCommon.CopyBytes(key)),
		Value: types.NewBytes(gethCommon.CopyBytes(value)),
	})
	return nil
}

func (b *ProofBuilder) Delete(_ []byte) error {
	return fmt.Errorf("Delete should never be called to generate a proof")
}

// Build encodes the accumulated entries into proof form.
func (b *ProofBuilder) Build() ([]types.Bytes, error) {
	proof := make([]types.Bytes, len(b.items))
	for i, item := range b.items {
		encoded, err := types.EncodeToBytes(item)
		if err != nil {
			return nil, fmt.Errorf("encode proof item: %w", err)
		}
		proof[i] = encoded
	}
	return proof, nil
}

var errHeaderNotFinalized = errors.New("bridged header is not finalized on this chain")

// RawStateReader is an in-process HeaderChain over raw key/value storage
// proofs, for tests and offline verification. It knows which bridged
// headers are finalized and trusts the recorded entries for those headers.
type RawStateReader struct {
	finalized map[types.H256]struct{}
}

func NewRawStateReader() *RawStateReader {
	return &RawStateReader{finalized: make(map[types.H256]struct{})}
}

// Finalize marks a bridged header hash as finalized.
func (r *RawStateReader) Finalize(headerHash types.H256) {
	r.finalized[headerHash] = struct{}{}
}

func (r *RawStateReader) OpenProof(headerHash types.H256, storageProof []types.Bytes) (StorageReader, error) {
	if _, ok := r.finalized[headerHash]; !ok {
		return nil, errHeaderNotFinalized
	}

	entries := make(map[string][]byte, len(storageProof))
	for _, raw := range storageProof {
		var item proofItem
		err := types.DecodeFromBytes(raw, &item)
		if err != nil {
			return nil, fmt.Errorf("decode proof item: %w", err)
		}
		entries[string(item.Key)] = item.Value
	}
	return rawStorage(entries), nil
}

type rawStorage map[string][]byte

func (s rawStorage) Read(key []byte) ([]byte, bool) {
	value, ok := s[string(key)]
	return value, ok
}
