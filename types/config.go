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

import (
	"encoding/json"
	"fmt"
)

type Phase uint8

const (
	PhaseWaitForDealer Phase = iota
	PhaseWaitForRow
	PhaseWaitForRequest
)

var phaseNames = map[Phase]string{
	PhaseWaitForDealer:  "WaitForDealer",
	PhaseWaitForRow:     "WaitForRow",
	PhaseWaitForRequest: "WaitForRequest",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Phase(%d)", uint8(p))
}

func ParsePhase(s string) (Phase, error) {
	for p, name := range phaseNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

// SharedStatus is the global DKG phase. The running share counter is part of
// the phase value itself so it cannot drift from the phase it belongs to.
type SharedStatus interface {
	Phase() Phase
	String() string
}

type WaitForDealer struct {
	Count uint16
}

type WaitForRow struct {
	Count uint16
}

type WaitForRequest struct{}

func (WaitForDealer) Phase() Phase  { return PhaseWaitForDealer }
func (WaitForRow) Phase() Phase     { return PhaseWaitForRow }
func (WaitForRequest) Phase() Phase { return PhaseWaitForRequest }

func (s WaitForDealer) String() string { return fmt.Sprintf("WaitForDealer(%d)", s.Count) }
func (s WaitForRow) String() string    { return fmt.Sprintf("WaitForRow(%d)", s.Count) }
func (WaitForRequest) String() string  { return "WaitForRequest" }

// NewStatus rebuilds a status variant from its phase and counter.
func NewStatus(p Phase, count uint16) (SharedStatus, error) {
	switch p {
	case PhaseWaitForDealer:
		return WaitForDealer{Count: count}, nil
	case PhaseWaitForRow:
		return WaitForRow{Count: count}, nil
	case PhaseWaitForRequest:
		return WaitForRequest{}, nil
	default:
		return nil, fmt.Errorf("unknown phase %d", uint8(p))
	}
}

func statusCount(s SharedStatus) uint16 {
	switch v := s.(type) {
	case WaitForDealer:
		return v.Count
	case WaitForRow:
		return v.Count
	default:
		return 0
	}
}

// Config is the contract's singleton state.
type Config struct {
	Owner     string
	Total     uint16
	Dealer    uint16
	Threshold uint16
	Fee       *Coin
	Status    SharedStatus
	// Epoch is bumped on every member reset, threshold change and DKG restart.
	Epoch            uint64
	DkgTimeout       uint64
	PhaseStartHeight uint64
}

func (c *Config) Phase() Phase {
	if c.Status == nil {
		return PhaseWaitForDealer
	}
	return c.Status.Phase()
}

// SharedDealer is the number of dealer shares accepted in the current epoch.
func (c *Config) SharedDealer() uint16 {
	switch v := c.Status.(type) {
	case WaitForDealer:
		return v.Count
	case nil:
		return 0
	default:
		return c.Dealer
	}
}

// SharedRow is the number of row shares accepted in the current epoch. Once
// the contract waits for requests every signing member has shared its row.
func (c *Config) SharedRow(active uint16) uint16 {
	switch v := c.Status.(type) {
	case WaitForRow:
		return v.Count
	case WaitForRequest:
		return active
	default:
		return 0
	}
}

func (c *Config) HasFee() bool {
	return c.Fee != nil && c.Fee.Amount > 0
}

func (c *Config) String() string {
	return fmt.Sprintf("owner-%s-total-%d-dealer-%d-threshold-%d-epoch-%d-%s",
		c.Owner, c.Total, c.Dealer, c.Threshold, c.Epoch, c.Status)
}

type configJSON struct {
	Owner            string `json:"owner"`
	Total            uint16 `json:"total"`
	Dealer           uint16 `json:"dealer"`
	Threshold        uint16 `json:"threshold"`
	Fee              *Coin  `json:"fee,omitempty"`
	Status           string `json:"status"`
	StatusCount      uint16 `json:"status_count"`
	Epoch            uint64 `json:"epoch"`
	DkgTimeout       uint64 `json:"dkg_timeout,omitempty"`
	PhaseStartHeight uint64 `json:"phase_start_height"`
}

func (c Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(configJSON{
		Owner:            c.Owner,
		Total:            c.Total,
		Dealer:           c.Dealer,
		Threshold:        c.Threshold,
		Fee:              c.Fee,
		Status:           c.Phase().String(),
		StatusCount:      statusCount(c.Status),
		Epoch:            c.Epoch,
		DkgTimeout:       c.DkgTimeout,
		PhaseStartHeight: c.PhaseStartHeight,
	})
}

func (c *Config) UnmarshalJSON(b []byte) error {
	var v configJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	p, err := ParsePhase(v.Status)
	if err != nil {
		return err
	}
	status, err := NewStatus(p, v.StatusCount)
	if err != nil {
		return err
	}
	*c = Config{
		Owner:            v.Owner,
		Total:            v.Total,
		Dealer:           v.Dealer,
		Threshold:        v.Threshold,
		Fee:              v.Fee,
		Status:           status,
		Epoch:            v.Epoch,
		DkgTimeout:       v.DkgTimeout,
		PhaseStartHeight: v.PhaseStartHeight,
	}
	return nil
}
