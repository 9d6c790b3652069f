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
	"encoding/binary"
	"fmt"

	"github.com/annchain/vrfdkg/host"
	"github.com/annchain/vrfdkg/types"
)

var roundPrefix = []byte("rounds/")

// round keys are big-endian so byte order is numeric order
func roundKey(round uint64) []byte {
	k := make([]byte, len(roundPrefix)+8)
	copy(k, roundPrefix)
	binary.BigEndian.PutUint64(k[len(roundPrefix):], round)
	return k
}

// Ledger stores one record per randomness round.
type Ledger struct {
	store host.Store
}

func NewLedger(store host.Store) *Ledger {
	return &Ledger{store: store}
}

func decodeRound(b []byte) (*types.DistributedShareData, error) {
	d := &types.DistributedShareData{}
	if _, err := d.UnmarshalMsg(b); err != nil {
		return nil, fmt.Errorf("decode round: %w", err)
	}
	return d, nil
}

func (l *Ledger) Get(round uint64) (*types.DistributedShareData, error) {
	b, err := l.store.Get(roundKey(round))
	if err == host.ErrNotFound {
		return nil, &NoBeaconError{Round: round}
	}
	if err != nil {
		return nil, err
	}
	return decodeRound(b)
}

// Latest returns the record with the highest round, or nil when no round was
// ever requested.
func (l *Ledger) Latest() (*types.DistributedShareData, error) {
	var latest []byte
	err := l.store.Range(roundPrefix, host.Descending, func(k, v []byte) bool {
		latest = v
		return false
	})
	if err != nil || latest == nil {
		return nil, err
	}
	return decodeRound(latest)
}

func (l *Ledger) Put(d *types.DistributedShareData) error {
	b, err := d.MarshalMsg(nil)
	if err != nil {
		return err
	}
	return l.store.Set(roundKey(d.Round), b)
}

// List pages rounds. offset is an exclusive round number.
func (l *Ledger) List(limit *uint8, offset *uint64, order host.Order) ([]*types.DistributedShareData, error) {
	n := clampLimit(limit)
	var (
		rounds []*types.DistributedShareData
		derr   error
	)
	err := l.store.Range(roundPrefix, order, func(k, v []byte) bool {
		round := binary.BigEndian.Uint64(k[len(roundPrefix):])
		if offset != nil {
			if order == host.Descending && round >= *offset {
				return true
			}
			if order == host.Ascending && round <= *offset {
				return true
			}
		}
		if len(rounds) >= n {
			return false
		}
		var d *types.DistributedShareData
		if d, derr = decodeRound(v); derr != nil {
			return false
		}
		rounds = append(rounds, d)
		return true
	})
	if err != nil {
		return nil, err
	}
	return rounds, derr
}
