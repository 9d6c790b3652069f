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

//go:generate msgp -io=false

// DealerShare is the polynomial commitment a member publishes as a dealer.
// Commits holds threshold+1 serialized G2 points, Rows the per-member
// encrypted secret rows which are only forwarded, never interpreted.
//msgp:tuple DealerShare
type DealerShare struct {
	Commits [][]byte `json:"commits" yaml:"commits"`
	Rows    [][]byte `json:"rows" yaml:"rows"`
}

// RowShare carries the member's public key share, i.e. the sum of all dealer
// polynomials evaluated at the member's index, lifted to G2.
//msgp:tuple RowShare
type RowShare struct {
	PkShare []byte `json:"pk_share" yaml:"pk_share"`
}

// Member is one slot of the member arena. Index is the slot number and never
// changes within an epoch; Deleted is a tombstone.
//msgp:tuple Member
type Member struct {
	Index        uint16       `json:"index"`
	Address      string       `json:"address"`
	PubKey       []byte       `json:"pubkey"`
	SharedDealer *DealerShare `json:"shared_dealer,omitempty"`
	SharedRow    *RowShare    `json:"shared_row,omitempty"`
	Deleted      bool         `json:"deleted"`
}

// MemberMsg is the registration input for one member.
type MemberMsg struct {
	Address string `json:"address" yaml:"address"`
	PubKey  []byte `json:"pubkey" yaml:"pubkey"`
}

func (m *Member) CanSign() bool {
	return !m.Deleted && m.SharedRow != nil
}
