// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package messages

import (
	"fmt"

	"github.com/snowfork/go-substrate-rpc-client/v4/scale"
	"github.com/snowfork/go-substrate-rpc-client/v4/types"
)

// CallOriginKind selects the origin the encoded call is dispatched with on
// the target chain.
type CallOriginKind uint8

const (
	// CallOriginSourceRoot dispatches as the source chain's root origin.
	CallOriginSourceRoot CallOriginKind = iota
	// CallOriginTargetAccount dispatches as a target chain account that has
	// signed over the source account id.
	CallOriginTargetAccount
	// CallOriginSourceAccount dispatches as an account derived from the
	// submitting source chain account.
	CallOriginSourceAccount
)

// CallOrigin describes who the message is dispatched on behalf of.
type CallOrigin struct {
	Kind CallOriginKind
	// Source chain account. Set for TargetAccount and SourceAccount kinds.
	SourceAccount AccountID
	// Target chain public key and its signature over the source account.
	// Set for the TargetAccount kind only.
	TargetPublic    [32]byte
	TargetSignature [64]byte
}

// SourceAccountOrigin is a CallOrigin dispatching on behalf of a source
// chain account.
func SourceAccountOrigin(account AccountID) CallOrigin {
	return CallOrigin{Kind: CallOriginSourceAccount, SourceAccount: account}
}

func (o CallOrigin) Encode(encoder scale.Encoder) error {
	err := encoder.PushByte(byte(o.Kind))
	if err != nil {
		return err
	}
	switch o.Kind {
	case CallOriginSourceRoot:
		return nil
	case CallOriginTargetAccount:
		err = encoder.Encode(o.SourceAccount)
		if err != nil {
			return err
		}
		err = encoder.Encode(o.TargetPublic)
		if err != nil {
			return err
		}
		return encoder.Encode(o.TargetSignature)
	case CallOriginSourceAccount:
		return encoder.Encode(o.SourceAccount)
	default:
		return fmt.Errorf("unknown call origin kind %d", o.Kind)
	}
}

func (o *CallOrigin) Decode(decoder scale.Decoder) error {
	kind, err := decoder.ReadOneByte()
	if err != nil {
		return err
	}
	o.Kind = CallOriginKind(kind)
	switch o.Kind {
	case CallOriginSourceRoot:
		return nil
	case CallOriginTargetAccount:
		err = decoder.Decode(&o.SourceAccount)
		if err != nil {
			return err
		}
		err = decoder.Decode(&o.TargetPublic)
		if err != nil {
			return err
		}
		return decoder.Decode(&o.TargetSignature)
	case CallOriginSourceAccount:
		return decoder.Decode(&o.SourceAccount)
	default:
		return fmt.Errorf("unknown call origin kind %d", kind)
	}
}

// DispatchFeePayment selects where the dispatch fee of the call is paid.
type DispatchFeePayment uint8

const (
	PayDispatchFeeAtSourceChain DispatchFeePayment = iota
	PayDispatchFeeAtTargetChain
)

// MessagePayload is the payload of an outbound message: an encoded target
// chain call plus the metadata needed to dispatch it.
type MessagePayload struct {
	// Spec version of the target chain the call was encoded against.
	SpecVersion types.U32
	// Declared dispatch weight of the call on the target chain.
	Weight Weight
	// Origin the call is dispatched with.
	Origin CallOrigin
	// Where the dispatch fee is paid.
	DispatchFeePayment DispatchFeePayment
	// The SCALE-encoded target chain call.
	Call types.Bytes
}

// Encoded returns the SCALE encoding of the payload.
func (p *MessagePayload) Encoded() ([]byte, error) {
	return types.EncodeToBytes(p)
}

// EncodedSize is the length of the SCALE encoding of the payload.
func (p *MessagePayload) EncodedSize() (uint32, error) {
	encoded, err := p.Encoded()
	if err != nil {
		return 0, err
	}
	return uint32(len(encoded)), nil
}
