// Copyright © 2019 Annchain Authors <EMAIL ADDRESS>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package types

import "fmt"

//go:generate msgp -io=false

type RoundState uint8

const (
	RoundOpen RoundState = iota
	RoundAggregating
	RoundClosed
)

func (s RoundState) String() string {
	switch s {
	case RoundOpen:
		return "open"
	case RoundAggregating:
		return "aggregating"
	case RoundClosed:
		return "closed"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

func (s RoundState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *RoundState) UnmarshalText(b []byte) error {
	for _, v := range []RoundState{RoundOpen, RoundAggregating, RoundClosed} {
		if v.String() == string(b) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown round state %q", b)
}

// ShareSig is one member's partial signature for a round.
//msgp:tuple ShareSig
type ShareSig struct {
	Sender string `json:"sender"`
	Index  uint16 `json:"index"`
	Sig    []byte `json:"sig"`
}

// DistributedShareData is the ledger record of one randomness round.
// CombinedSig, CombinedPubkey and Randomness are written together, exactly
// once, when the round closes.
//msgp:tuple DistributedShareData
type DistributedShareData struct {
	Round          uint64     `json:"round"`
	Epoch          uint64     `json:"epoch"`
	Input          []byte     `json:"input"`
	Sigs           []ShareSig `json:"sigs"`
	State          RoundState `json:"state"`
	CombinedSig    []byte     `json:"combined_sig,omitempty"`
	CombinedPubkey []byte     `json:"combined_pubkey,omitempty"`
	Randomness     []byte     `json:"randomness,omitempty"`
}

func (d *DistributedShareData) IsClosed() bool {
	return d.State == RoundClosed && len(d.CombinedSig) > 0
}

// HasSender reports whether the address already contributed to this round.
func (d *DistributedShareData) HasSender(sender string) bool {
	for _, s := range d.Sigs {
		if s.Sender == sender {
			return true
		}
	}
	return false
}

func (d *DistributedShareData) String() string {
	return fmt.Sprintf("round-%d-epoch-%d-sigs-%d-%s", d.Round, d.Epoch, len(d.Sigs), d.State)
}
