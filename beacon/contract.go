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
	"encoding/json"
	"fmt"

	"github.com/annchain/vrfdkg/host"
	"github.com/annchain/vrfdkg/types"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// Contract is the randomness beacon as seen by the host. It keeps no state of
// its own; everything lives in the store handed to each call.
type Contract struct{}

func New() *Contract {
	return &Contract{}
}

// Validate reports every problem of an instantiate message at once.
func (m *InstantiateMsg) Validate() error {
	var result *multierror.Error
	total := len(m.Members)
	if total == 0 {
		result = multierror.Append(result, invalidDealer("empty member set"))
	}
	if total > 0xffff {
		result = multierror.Append(result, invalidDealer("too many members: %d", total))
	}
	dealer := m.DealerOrDefault()
	if dealer == 0 || int(dealer) > total {
		result = multierror.Append(result, invalidDealer("dealer %d out of range 1..%d", dealer, total))
	}
	if int(m.Threshold) > total {
		result = multierror.Append(result, invalidDealer("threshold %d exceeds %d members", m.Threshold, total))
	}
	if m.Fee != nil && m.Fee.Denom == "" {
		result = multierror.Append(result, fmt.Errorf("%w: fee without denom", ErrInvalidMsg))
	}
	return result.ErrorOrNil()
}

// DealerOrDefault is the configured dealer quorum, threshold+1 when unset.
func (m *InstantiateMsg) DealerOrDefault() uint16 {
	if m.Dealer != nil {
		return *m.Dealer
	}
	return m.Threshold + 1
}

func (c *Contract) Instantiate(store host.Store, env host.Env, info host.MessageInfo, msg []byte) (*host.Response, error) {
	var m InstantiateMsg
	if err := json.Unmarshal(msg, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMsg, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	s := newState(store, env)
	total, err := s.registry.Register(m.Members)
	if err != nil {
		return nil, err
	}
	cfg := &types.Config{
		Owner:            info.Sender,
		Total:            total,
		Dealer:           m.DealerOrDefault(),
		Threshold:        m.Threshold,
		Fee:              m.Fee,
		Status:           types.WaitForDealer{},
		Epoch:            1,
		DkgTimeout:       m.DkgTimeout,
		PhaseStartHeight: env.BlockHeight,
	}
	if err := saveConfig(store, cfg); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"owner":     cfg.Owner,
		"total":     cfg.Total,
		"dealer":    cfg.Dealer,
		"threshold": cfg.Threshold,
	}).Info("beacon instantiated")
	return host.NewResponse().
		AddAttribute("action", "instantiate").
		AddAttribute("owner", cfg.Owner).
		AddAttribute("total", cfg.Total).
		AddEvent(host.NewEvent("members_updated").
			Add("total", total).
			Add("phase_code", uint8(cfg.Phase())).
			Add("epoch", cfg.Epoch)), nil
}

func (c *Contract) Execute(store host.Store, env host.Env, info host.MessageInfo, msg []byte) (*host.Response, error) {
	m, err := ParseExecuteMsg(msg)
	if err != nil {
		return nil, err
	}
	s := newState(store, env)
	coordinator := NewCoordinator(s)
	aggregator := NewAggregator(s)

	var resp *host.Response
	switch v := m.(type) {
	case *ShareDealerMsg:
		resp, err = coordinator.SubmitDealerShare(info.Sender, v.Share)
	case *ShareRowMsg:
		resp, err = coordinator.SubmitRowShare(info.Sender, v.Share)
	case *UpdateShareSigMsg:
		resp, err = aggregator.SubmitSignature(info.Sender, v.Round, v.Sig)
	case *RequestRandomMsg:
		resp, err = aggregator.RequestRound(info, v.Input)
	case *UpdateThresholdMsg:
		resp, err = coordinator.UpdateThreshold(info.Sender, v.Threshold)
	case *UpdateFeesMsg:
		resp, err = coordinator.UpdateFees(info.Sender, v.Fee)
	case *UpdateMembersMsg:
		resp, err = coordinator.UpdateMembers(info.Sender, v.Members)
	case *RemoveMemberMsg:
		resp, err = coordinator.RemoveMember(info.Sender, v.Address)
	case *RestartDkgMsg:
		resp, err = coordinator.RestartDkg(info.Sender)
	default:
		return nil, fmt.Errorf("%w: unhandled execute variant %s", ErrInvalidMsg, m.MsgName())
	}
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"msg":    m.MsgName(),
			"sender": info.Sender,
		}).Debug("execute rejected")
		return nil, err
	}
	return resp, nil
}
