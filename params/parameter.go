// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

// Package params holds the governance-settable economic parameters of one
// bridge instance.
package params

import (
	"fmt"

	"github.com/snowfork/go-substrate-rpc-client/v4/scale"
	"github.com/snowfork/messagebridge/fixed"
	"github.com/snowfork/messagebridge/messages"
)

// ParameterTag discriminates the parameter variants.
type ParameterTag uint8

const (
	// TagConversionRate scales bridged chain tokens into this chain tokens.
	TagConversionRate ParameterTag = iota
	// TagFeeMultiplier is the fee multiplier at the bridged chain.
	TagFeeMultiplier
	// TagAllowedSender restricts outbound messages to a single account.
	TagAllowedSender
)

// Parameter is a single governance parameter update.
type Parameter struct {
	Tag ParameterTag
	// Fixed-point value for ConversionRate and FeeMultiplier.
	Value fixed.U128
	// Optional account for AllowedSender; nil clears the restriction.
	Sender *messages.AccountID
}

func NewConversionRate(rate fixed.U128) Parameter {
	return Parameter{Tag: TagConversionRate, Value: rate}
}

func NewFeeMultiplier(multiplier fixed.U128) Parameter {
	return Parameter{Tag: TagFeeMultiplier, Value: multiplier}
}

func NewAllowedSender(sender *messages.AccountID) Parameter {
	return Parameter{Tag: TagAllowedSender, Sender: sender}
}

func (p Parameter) Encode(encoder scale.Encoder) error {
	err := encoder.PushByte(byte(p.Tag))
	if err != nil {
		return err
	}
	switch p.Tag {
	case TagConversionRate, TagFeeMultiplier:
		return encoder.Encode(p.Value)
	case TagAllowedSender:
		hasValue := p.Sender != nil
		var sender messages.AccountID
		if hasValue {
			sender = *p.Sender
		}
		return encoder.EncodeOption(hasValue, sender)
	default:
		return fmt.Errorf("unknown parameter tag %d", p.Tag)
	}
}

func (p *Parameter) Decode(decoder scale.Decoder) error {
	tag, err := decoder.ReadOneByte()
	if err != nil {
		return err
	}
	p.Tag = ParameterTag(tag)
	switch p.Tag {
	case TagConversionRate, TagFeeMultiplier:
		return decoder.Decode(&p.Value)
	case TagAllowedSender:
		var hasValue bool
		var sender messages.AccountID
		err = decoder.DecodeOption(&hasValue, &sender)
		if err != nil {
			return err
		}
		p.Sender = nil
		if hasValue {
			p.Sender = &sender
		}
		return nil
	default:
		return fmt.Errorf("unknown parameter tag %d", tag)
	}
}
