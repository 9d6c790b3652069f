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
package beacon

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/annchain/vrfdkg/dkg"
	"github.com/annchain/vrfdkg/host"
	"github.com/annchain/vrfdkg/types"
)

type ContractInfoResponse struct {
	Owner            string      `json:"owner"`
	Total            uint16      `json:"total"`
	Active           uint16      `json:"active"`
	Dealer           uint16      `json:"dealer"`
	Threshold        uint16      `json:"threshold"`
	Fee              *types.Coin `json:"fee,omitempty"`
	Status           string      `json:"status"`
	SharedDealer     uint16      `json:"shared_dealer"`
	SharedRow        uint16      `json:"shared_row"`
	Epoch            uint64      `json:"epoch"`
	DkgTimeout       uint64      `json:"dkg_timeout,omitempty"`
	PhaseStartHeight uint64      `json:"phase_start_height"`
}

type VerifyRoundResponse struct {
	Round  uint64 `json:"round"`
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

func (c *Contract) Query(store host.Store, env host.Env, msg []byte) ([]byte, error) {
	m, err := ParseQueryMsg(msg)
	if err != nil {
		return nil, err
	}
	s := newState(store, env)
	var out interface{}
	switch v := m.(type) {
	case *ContractInfoQuery:
		out, err = s.contractInfo()
	case *GetRoundQuery:
		out, err = s.ledger.Get(v.Round)
	case *GetMemberQuery:
		out, err = s.registry.Get(v.Address)
	case *GetMembersQuery:
		out, err = s.registry.List(v.Limit, v.Offset, orderOf(v.Order))
	case *GetDealersQuery:
		out, err = s.registry.ListDealers()
	case *LatestRoundQuery:
		out, err = s.latestRound()
	case *GetRoundsQuery:
		out, err = s.ledger.List(v.Limit, v.Offset, orderOf(v.Order))
	case *VerifyRoundQuery:
		out, err = s.verifyRound(v.Round)
	default:
		return nil, fmt.Errorf("%w: unhandled query variant %s", ErrInvalidMsg, m.MsgName())
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func orderOf(o *string) host.Order {
	if o == nil {
		return host.Ascending
	}
	return host.ParseOrder(*o)
}

func (s *state) contractInfo() (*ContractInfoResponse, error) {
	cfg, err := loadConfig(s.store)
	if err != nil {
		return nil, err
	}
	active, err := s.registry.Active()
	if err != nil {
		return nil, err
	}
	return &ContractInfoResponse{
		Owner:            cfg.Owner,
		Total:            cfg.Total,
		Active:           active,
		Dealer:           cfg.Dealer,
		Threshold:        cfg.Threshold,
		Fee:              cfg.Fee,
		Status:           cfg.Phase().String(),
		SharedDealer:     cfg.SharedDealer(),
		SharedRow:        cfg.SharedRow(active),
		Epoch:            cfg.Epoch,
		DkgTimeout:       cfg.DkgTimeout,
		PhaseStartHeight: cfg.PhaseStartHeight,
	}, nil
}

func (s *state) latestRound() (*types.DistributedShareData, error) {
	latest, err := s.ledger.Latest()
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, &NoBeaconError{}
	}
	return latest, nil
}

// verifyRound rechecks a closed round's signature and randomness.
func (s *state) verifyRound(round uint64) (*VerifyRoundResponse, error) {
	record, err := s.ledger.Get(round)
	if err != nil {
		return nil, err
	}
	resp := &VerifyRoundResponse{Round: round}
	if !record.IsClosed() {
		resp.Reason = fmt.Sprintf("round is %s", record.State)
		return resp, nil
	}
	msg := dkg.RoundMessage(record.Input, record.Round)
	if err := dkg.VerifyCombined(record.CombinedPubkey, msg, record.CombinedSig); err != nil {
		resp.Reason = err.Error()
		return resp, nil
	}
	if !bytes.Equal(record.Randomness, dkg.DeriveRandomness(record.CombinedSig)) {
		resp.Reason = "randomness does not match signature"
		return resp, nil
	}
	resp.Valid = true
	return resp, nil
}
