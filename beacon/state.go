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
	"errors"
	"fmt"

	"github.com/annchain/kyber/v3/share"
	"github.com/annchain/vrfdkg/dkg"
	"github.com/annchain/vrfdkg/host"
	"github.com/annchain/vrfdkg/types"
)

var configKey = []byte("config")

var errNoConfig = errors.New("contract config missing")

func loadConfig(store host.Store) (*types.Config, error) {
	b, err := store.Get(configKey)
	if err == host.ErrNotFound {
		return nil, errNoConfig
	}
	if err != nil {
		return nil, err
	}
	c := &types.Config{}
	if _, err := c.UnmarshalMsg(b); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

func saveConfig(store host.Store, c *types.Config) error {
	b, err := c.MarshalMsg(nil)
	if err != nil {
		return err
	}
	return store.Set(configKey, b)
}

// checkBounds holds at every config mutation.
func checkBounds(c *types.Config, members uint16) error {
	if c.Dealer == 0 || c.Dealer > members {
		return invalidDealer("dealer %d out of range 1..%d", c.Dealer, members)
	}
	if c.Threshold > members {
		return invalidDealer("threshold %d exceeds %d members", c.Threshold, members)
	}
	return nil
}

func phaseEvent(c *types.Config) host.Event {
	return host.NewEvent("phase_changed").
		Add("phase", c.Phase()).
		Add("phase_code", uint8(c.Phase())).
		Add("epoch", c.Epoch)
}

// state bundles the stores a call works on.
type state struct {
	store    host.Store
	env      host.Env
	registry *Registry
	ledger   *Ledger
}

func newState(store host.Store, env host.Env) *state {
	return &state{
		store:    store,
		env:      env,
		registry: NewRegistry(store),
		ledger:   NewLedger(store),
	}
}

// publicKeySet sums the commitments of every dealer of the current epoch.
func (s *state) publicKeySet(c *types.Config) (*share.PubPoly, error) {
	dealers, err := s.registry.ListDealers()
	if err != nil {
		return nil, err
	}
	commits := make([][][]byte, len(dealers))
	for i, d := range dealers {
		commits[i] = d.SharedDealer.Commits
	}
	pub, err := dkg.PublicKeySet(commits, int(c.Threshold))
	if err != nil {
		return nil, fmt.Errorf("public key set: %w", err)
	}
	return pub, nil
}

func (s *state) requireOwner(c *types.Config, sender string) error {
	if sender != c.Owner {
		return unauthorized("%s is not the owner", sender)
	}
	return nil
}
