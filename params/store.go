// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package params

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/snowfork/messagebridge/fixed"
	"github.com/snowfork/messagebridge/messages"
)

// Store holds the mutable bridge parameters. Verification calls read it
// concurrently; only the governance path writes it. Reads always observe the
// latest applied value.
//
// Authentication of the writer is the caller's responsibility.
type Store struct {
	mu             sync.RWMutex
	conversionRate fixed.U128
	feeMultiplier  fixed.U128
	allowedSender  *messages.AccountID
}

// NewStore returns a store with genesis defaults: conversion rate 1, fee
// multiplier 1 and no sender restriction.
func NewStore() *Store {
	return &Store{
		conversionRate: fixed.One(),
		feeMultiplier:  fixed.One(),
	}
}

// Apply sets the parameter variant carried by p. Applying the same update
// twice leaves the store in the same state as applying it once. Values are
// not validated; a zero conversion rate is accepted and will flow into
// saturating fee arithmetic downstream.
func (s *Store) Apply(p Parameter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch p.Tag {
	case TagConversionRate:
		s.conversionRate = p.Value
		log.WithField("conversionRate", p.Value.String()).Info("Updated bridge parameter")
	case TagFeeMultiplier:
		s.feeMultiplier = p.Value
		log.WithField("feeMultiplier", p.Value.String()).Info("Updated bridge parameter")
	case TagAllowedSender:
		if p.Sender == nil {
			s.allowedSender = nil
			log.Info("Cleared allowed message sender")
			return
		}
		sender := *p.Sender
		s.allowedSender = &sender
		log.WithFields(log.Fields{
			"allowedSender": sender.Hex(),
		}).Info("Updated bridge parameter")
	}
}

// ConversionRate is the bridged-to-this-chain token conversion rate.
func (s *Store) ConversionRate() fixed.U128 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conversionRate
}

// FeeMultiplier is the fee multiplier at the bridged chain.
func (s *Store) FeeMultiplier() fixed.U128 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.feeMultiplier
}

// AllowedSender returns the configured sender restriction, if any.
func (s *Store) AllowedSender() (messages.AccountID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.allowedSender == nil {
		return messages.AccountID{}, false
	}
	return *s.allowedSender, true
}
