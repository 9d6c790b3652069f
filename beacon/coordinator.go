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
	"fmt"

	"github.com/annchain/vrfdkg/dkg"
	"github.com/annchain/vrfdkg/host"
	"github.com/annchain/vrfdkg/types"
	"github.com/sirupsen/logrus"
)

// Coordinator drives the two DKG phases: dealers publish polynomial
// commitments, then every member publishes its public key share.
type Coordinator struct {
	*state
}

func NewCoordinator(s *state) *Coordinator {
	return &Coordinator{state: s}
}

func (c *Coordinator) setPhase(cfg *types.Config, status types.SharedStatus, resp *host.Response) {
	changed := cfg.Phase() != status.Phase()
	cfg.Status = status
	if !changed {
		return
	}
	cfg.PhaseStartHeight = c.env.BlockHeight
	resp.AddEvent(phaseEvent(cfg))
	logrus.WithFields(logrus.Fields{
		"phase":  status,
		"epoch":  cfg.Epoch,
		"height": c.env.BlockHeight,
	}).Debug("dkg phase changed")
}

func (c *Coordinator) SubmitDealerShare(sender string, share types.DealerShare) (*host.Response, error) {
	cfg, err := loadConfig(c.store)
	if err != nil {
		return nil, err
	}
	status, ok := cfg.Status.(types.WaitForDealer)
	if !ok {
		return nil, unauthorized("current status: %s", cfg.Phase())
	}
	member, err := c.registry.Lookup(sender)
	if err != nil {
		return nil, err
	}
	if member.SharedDealer != nil {
		return nil, unauthorized("member %s already shared its dealer share", sender)
	}
	if _, err := dkg.DecodeCommits(share.Commits, int(cfg.Threshold)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDealerShare, err)
	}
	if len(share.Rows) != 0 && len(share.Rows) != int(cfg.Total) {
		return nil, fmt.Errorf("%w: want %d rows got %d", ErrInvalidDealerShare, cfg.Total, len(share.Rows))
	}
	member.SharedDealer = &share
	if err := c.registry.Save(member); err != nil {
		return nil, err
	}

	resp := host.NewResponse().
		AddAttribute("action", "share_dealer").
		AddAttribute("sender", sender)
	count := status.Count + 1
	if count >= cfg.Dealer {
		c.setPhase(cfg, types.WaitForRow{}, resp)
	} else {
		c.setPhase(cfg, types.WaitForDealer{Count: count}, resp)
	}
	return resp, saveConfig(c.store, cfg)
}

func (c *Coordinator) SubmitRowShare(sender string, share types.RowShare) (*host.Response, error) {
	cfg, err := loadConfig(c.store)
	if err != nil {
		return nil, err
	}
	status, ok := cfg.Status.(types.WaitForRow)
	if !ok {
		return nil, unauthorized("current status: %s", cfg.Phase())
	}
	member, err := c.registry.Lookup(sender)
	if err != nil {
		return nil, err
	}
	if member.SharedRow != nil {
		return nil, unauthorized("member %s already shared its row share", sender)
	}
	pub, err := c.publicKeySet(cfg)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(share.PkShare, dkg.PublicShare(pub, member.Index)) {
		return nil, fmt.Errorf("%w: pk share of member %d does not match dealer commitments", ErrInvalidRowShare, member.Index)
	}
	member.SharedRow = &share
	if err := c.registry.Save(member); err != nil {
		return nil, err
	}

	resp := host.NewResponse().
		AddAttribute("action", "share_row").
		AddAttribute("sender", sender)
	active, err := c.registry.Active()
	if err != nil {
		return nil, err
	}
	count := status.Count + 1
	if count >= active {
		c.setPhase(cfg, types.WaitForRequest{}, resp)
	} else {
		c.setPhase(cfg, types.WaitForRow{Count: count}, resp)
	}
	return resp, saveConfig(c.store, cfg)
}

// reset abandons the current key: shares are cleared, the epoch moves on and
// the dealer phase starts over. Open rounds of the old epoch become stale.
func (c *Coordinator) reset(cfg *types.Config, resp *host.Response) error {
	if err := c.registry.ClearShares(); err != nil {
		return err
	}
	cfg.Epoch++
	cfg.Status = types.WaitForDealer{}
	cfg.PhaseStartHeight = c.env.BlockHeight
	resp.AddEvent(phaseEvent(cfg))
	logrus.WithFields(logrus.Fields{
		"epoch":  cfg.Epoch,
		"height": c.env.BlockHeight,
	}).Info("dkg reset")
	return nil
}

func (c *Coordinator) UpdateThreshold(sender string, threshold uint16) (*host.Response, error) {
	cfg, err := loadConfig(c.store)
	if err != nil {
		return nil, err
	}
	if err := c.requireOwner(cfg, sender); err != nil {
		return nil, err
	}
	active, err := c.registry.Active()
	if err != nil {
		return nil, err
	}
	cfg.Threshold = threshold
	if err := checkBounds(cfg, active); err != nil {
		return nil, err
	}
	resp := host.NewResponse().
		AddAttribute("action", "update_threshold").
		AddAttribute("threshold", threshold)
	if err := c.reset(cfg, resp); err != nil {
		return nil, err
	}
	return resp, saveConfig(c.store, cfg)
}

func (c *Coordinator) UpdateMembers(sender string, members []types.MemberMsg) (*host.Response, error) {
	cfg, err := loadConfig(c.store)
	if err != nil {
		return nil, err
	}
	if err := c.requireOwner(cfg, sender); err != nil {
		return nil, err
	}
	total, err := c.registry.Register(members)
	if err != nil {
		return nil, err
	}
	cfg.Total = total
	if err := checkBounds(cfg, total); err != nil {
		return nil, err
	}
	resp := host.NewResponse().
		AddAttribute("action", "update_members").
		AddAttribute("total", total)
	if err := c.reset(cfg, resp); err != nil {
		return nil, err
	}
	resp.AddEvent(host.NewEvent("members_updated").
		Add("total", total).
		Add("phase_code", uint8(cfg.Phase())).
		Add("epoch", cfg.Epoch))
	return resp, saveConfig(c.store, cfg)
}

// RemoveMember tombstones a member. Its index stays reserved and its dealer
// commitment stays part of the key.
func (c *Coordinator) RemoveMember(sender string, address string) (*host.Response, error) {
	cfg, err := loadConfig(c.store)
	if err != nil {
		return nil, err
	}
	if err := c.requireOwner(cfg, sender); err != nil {
		return nil, err
	}
	if _, err := c.registry.Remove(address); err != nil {
		return nil, err
	}
	active, err := c.registry.Active()
	if err != nil {
		return nil, err
	}
	if err := checkBounds(cfg, active); err != nil {
		return nil, err
	}
	resp := host.NewResponse().
		AddAttribute("action", "remove_member").
		AddAttribute("address", address)
	if _, ok := cfg.Status.(types.WaitForRow); ok {
		// the row target shrank with the removal
		shared, err := c.sharedRows()
		if err != nil {
			return nil, err
		}
		if shared >= active {
			c.setPhase(cfg, types.WaitForRequest{}, resp)
		} else {
			c.setPhase(cfg, types.WaitForRow{Count: shared}, resp)
		}
	}
	return resp, saveConfig(c.store, cfg)
}

func (c *Coordinator) sharedRows() (uint16, error) {
	all, err := c.registry.All()
	if err != nil {
		return 0, err
	}
	var n uint16
	for _, m := range all {
		if !m.Deleted && m.SharedRow != nil {
			n++
		}
	}
	return n, nil
}

// RestartDkg lets the owner restart key generation at any time, and any
// member once the current phase has outlived the configured timeout.
func (c *Coordinator) RestartDkg(sender string) (*host.Response, error) {
	cfg, err := loadConfig(c.store)
	if err != nil {
		return nil, err
	}
	if sender != cfg.Owner {
		if _, err := c.registry.Lookup(sender); err != nil {
			return nil, err
		}
		if cfg.DkgTimeout == 0 {
			return nil, unauthorized("no dkg timeout configured")
		}
		if cfg.Phase() == types.PhaseWaitForRequest {
			return nil, unauthorized("dkg is complete")
		}
		if c.env.BlockHeight-cfg.PhaseStartHeight <= cfg.DkgTimeout {
			return nil, unauthorized("phase started at %d, timeout %d not reached", cfg.PhaseStartHeight, cfg.DkgTimeout)
		}
	}
	resp := host.NewResponse().
		AddAttribute("action", "restart_dkg").
		AddAttribute("sender", sender)
	if err := c.reset(cfg, resp); err != nil {
		return nil, err
	}
	return resp, saveConfig(c.store, cfg)
}

func (c *Coordinator) UpdateFees(sender string, fee *types.Coin) (*host.Response, error) {
	cfg, err := loadConfig(c.store)
	if err != nil {
		return nil, err
	}
	if err := c.requireOwner(cfg, sender); err != nil {
		return nil, err
	}
	if fee != nil && fee.Denom == "" {
		return nil, fmt.Errorf("%w: fee without denom", ErrInvalidMsg)
	}
	cfg.Fee = fee
	resp := host.NewResponse().AddAttribute("action", "update_fees")
	if fee != nil {
		resp.AddAttribute("fee", fee)
	}
	return resp, saveConfig(c.store, cfg)
}
