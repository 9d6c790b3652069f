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
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/annchain/vrfdkg/dkg"
	"github.com/annchain/vrfdkg/host"
	"github.com/annchain/vrfdkg/types"
	"github.com/sirupsen/logrus"
)

// Aggregator opens randomness rounds and collects signature shares until
// threshold+1 of them can be combined.
type Aggregator struct {
	*state
}

func NewAggregator(s *state) *Aggregator {
	return &Aggregator{state: s}
}

type RequestRandomResponse struct {
	Round uint64 `json:"round"`
}

// RequestRound opens the next round. Only one round of the current epoch may
// be open at a time.
func (a *Aggregator) RequestRound(info host.MessageInfo, input []byte) (*host.Response, error) {
	cfg, err := loadConfig(a.store)
	if err != nil {
		return nil, err
	}
	if cfg.Phase() != types.PhaseWaitForRequest {
		return nil, unauthorized("current status: %s", cfg.Phase())
	}
	latest, err := a.ledger.Latest()
	if err != nil {
		return nil, err
	}
	if latest != nil && latest.Epoch == cfg.Epoch && !latest.IsClosed() {
		return nil, &PendingRoundError{Round: latest.Round}
	}
	if err := CheckFunds(cfg.Fee, info.Funds); err != nil {
		return nil, err
	}
	var round uint64 = 1
	if latest != nil {
		round = latest.Round + 1
	}
	record := &types.DistributedShareData{
		Round: round,
		Epoch: cfg.Epoch,
		Input: input,
		Sigs:  []types.ShareSig{},
		State: types.RoundOpen,
	}
	if err := a.ledger.Put(record); err != nil {
		return nil, err
	}
	data, _ := json.Marshal(RequestRandomResponse{Round: round})
	logrus.WithFields(logrus.Fields{
		"round":  round,
		"epoch":  cfg.Epoch,
		"sender": info.Sender,
	}).Debug("round requested")
	return host.NewResponse().
		AddAttribute("action", "request_random").
		AddAttribute("round", round).
		AddEvent(host.NewEvent("round_requested").
			Add("round", round).
			Add("epoch", cfg.Epoch).
			Add("input", hex.EncodeToString(input)).
			Add("sender", info.Sender)).
		SetData(data), nil
}

// SubmitSignature accepts one member's share for a round, combines the
// shares once more than threshold arrived and pays the signer.
func (a *Aggregator) SubmitSignature(sender string, round uint64, sig []byte) (*host.Response, error) {
	cfg, err := loadConfig(a.store)
	if err != nil {
		return nil, err
	}
	member, err := a.registry.Lookup(sender)
	if errors.Is(err, ErrNoMember) {
		return nil, unauthorized("%s is not a member", sender)
	}
	if err != nil {
		return nil, err
	}
	if member.SharedRow == nil {
		return nil, unauthorized("member %s has not shared its row", sender)
	}
	record, err := a.ledger.Get(round)
	if err != nil {
		return nil, err
	}
	if record.Epoch != cfg.Epoch {
		return nil, &StaleRoundError{Round: round, RoundEpoch: record.Epoch, Epoch: cfg.Epoch}
	}
	if record.State != types.RoundOpen || len(record.Sigs) > int(cfg.Threshold) {
		return nil, &RoundClosedError{Round: round}
	}
	if record.HasSender(sender) {
		return nil, unauthorized("member %s already signed round %d", sender, round)
	}
	msg := dkg.RoundMessage(record.Input, record.Round)
	if err := dkg.VerifyShare(member.SharedRow.PkShare, member.Index, sig, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	record.Sigs = append(record.Sigs, types.ShareSig{Sender: sender, Index: member.Index, Sig: sig})

	resp := host.NewResponse().
		AddAttribute("action", "update_share_sig").
		AddAttribute("round", round).
		AddAttribute("sender", sender)
	accepted := host.NewEvent("signature_accepted").
		Add("round", round).
		Add("sender", sender).
		Add("index", member.Index).
		Add("count", len(record.Sigs))
	if pay := Payout(cfg.Fee, cfg.Threshold, len(record.Sigs), sender); pay != nil {
		resp.AddMessage(*pay)
		accepted = accepted.
			Add("fee_amount", pay.Amount[0].Amount).
			Add("fee_denom", pay.Amount[0].Denom)
	}
	resp.AddEvent(accepted)

	if len(record.Sigs) > int(cfg.Threshold) {
		if err := a.aggregate(cfg, record); err != nil {
			return nil, err
		}
		resp.AddAttribute("randomness", hex.EncodeToString(record.Randomness)).
			AddEvent(host.NewEvent("round_finalized").
				Add("round", round).
				Add("randomness", hex.EncodeToString(record.Randomness)).
				Add("combined_sig", hex.EncodeToString(record.CombinedSig)))
	}
	if err := a.ledger.Put(record); err != nil {
		return nil, err
	}
	return resp, nil
}

// aggregate closes the round. It runs once per round: the record leaves the
// open state before it is written back.
func (a *Aggregator) aggregate(cfg *types.Config, record *types.DistributedShareData) error {
	if record.State != types.RoundOpen {
		return &RoundClosedError{Round: record.Round}
	}
	record.State = types.RoundAggregating
	pub, err := a.publicKeySet(cfg)
	if err != nil {
		return err
	}
	shares := make([][]byte, len(record.Sigs))
	for i, s := range record.Sigs {
		shares[i] = s.Sig
	}
	msg := dkg.RoundMessage(record.Input, record.Round)
	sig, err := dkg.Combine(pub, msg, shares, int(cfg.Threshold), int(cfg.Total))
	if err != nil {
		return fmt.Errorf("%w: combine round %d: %v", ErrInvalidSignature, record.Round, err)
	}
	record.CombinedSig = sig
	record.CombinedPubkey = dkg.GroupKey(pub)
	record.Randomness = dkg.DeriveRandomness(sig)
	record.State = types.RoundClosed
	logrus.WithFields(logrus.Fields{
		"round":      record.Round,
		"signers":    len(record.Sigs),
		"randomness": hex.EncodeToString(record.Randomness),
	}).Info("round finalized")
	return nil
}
