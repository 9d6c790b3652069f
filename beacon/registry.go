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
	"sort"

	"github.com/annchain/vrfdkg/host"
	"github.com/annchain/vrfdkg/types"
	mapset "github.com/deckarep/golang-set"
)

var (
	memberPrefix     = []byte("members/")
	memberIdxPrefix  = []byte("members/idx/")
	memberAddrPrefix = []byte("members/addr/")
)

const (
	DefaultLimit = 10
	MaxLimit     = 30
)

func memberIdxKey(index uint16) []byte {
	k := make([]byte, len(memberIdxPrefix)+2)
	copy(k, memberIdxPrefix)
	binary.BigEndian.PutUint16(k[len(memberIdxPrefix):], index)
	return k
}

func memberAddrKey(address string) []byte {
	return append(append([]byte{}, memberAddrPrefix...), address...)
}

func clampLimit(limit *uint8) int {
	if limit == nil {
		return DefaultLimit
	}
	if int(*limit) > MaxLimit {
		return MaxLimit
	}
	return int(*limit)
}

// Registry is the member arena. Members are stored by slot index with an
// address index next to them; a removed member keeps its slot.
type Registry struct {
	store host.Store
}

func NewRegistry(store host.Store) *Registry {
	return &Registry{store: store}
}

// Register replaces the whole member set. Members are sorted by address and
// get the dense indices 0..n-1 with no shares.
func (r *Registry) Register(msgs []types.MemberMsg) (uint16, error) {
	if len(msgs) == 0 {
		return 0, invalidDealer("empty member set")
	}
	if len(msgs) > 0xffff {
		return 0, invalidDealer("too many members: %d", len(msgs))
	}
	seen := mapset.NewThreadUnsafeSet()
	for _, m := range msgs {
		if m.Address == "" {
			return 0, fmt.Errorf("%w: empty member address", ErrInvalidMsg)
		}
		if !seen.Add(m.Address) {
			return 0, fmt.Errorf("%w: duplicated member %s", ErrInvalidMsg, m.Address)
		}
	}
	if err := r.clear(); err != nil {
		return 0, err
	}
	sorted := make([]types.MemberMsg, len(msgs))
	copy(sorted, msgs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Address < sorted[j].Address })
	for i, m := range sorted {
		member := &types.Member{
			Index:   uint16(i),
			Address: m.Address,
			PubKey:  m.PubKey,
		}
		if err := r.Save(member); err != nil {
			return 0, err
		}
		idx := make([]byte, 2)
		binary.BigEndian.PutUint16(idx, member.Index)
		if err := r.store.Set(memberAddrKey(m.Address), idx); err != nil {
			return 0, err
		}
	}
	return uint16(len(sorted)), nil
}

func (r *Registry) clear() error {
	var keys [][]byte
	err := r.store.Range(memberPrefix, host.Ascending, func(k, v []byte) bool {
		keys = append(keys, k)
		return true
	})
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := r.store.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) Save(m *types.Member) error {
	b, err := m.MarshalMsg(nil)
	if err != nil {
		return err
	}
	return r.store.Set(memberIdxKey(m.Index), b)
}

func (r *Registry) ByIndex(index uint16) (*types.Member, error) {
	b, err := r.store.Get(memberIdxKey(index))
	if err == host.ErrNotFound {
		return nil, &NoMemberError{Address: fmt.Sprintf("#%d", index)}
	}
	if err != nil {
		return nil, err
	}
	m := &types.Member{}
	if _, err := m.UnmarshalMsg(b); err != nil {
		return nil, fmt.Errorf("decode member %d: %w", index, err)
	}
	return m, nil
}

// Get returns the member whether or not it was removed.
func (r *Registry) Get(address string) (*types.Member, error) {
	idx, err := r.store.Get(memberAddrKey(address))
	if err == host.ErrNotFound {
		return nil, &NoMemberError{Address: address}
	}
	if err != nil {
		return nil, err
	}
	return r.ByIndex(binary.BigEndian.Uint16(idx))
}

// Lookup returns a member allowed to participate.
func (r *Registry) Lookup(address string) (*types.Member, error) {
	m, err := r.Get(address)
	if err != nil {
		return nil, err
	}
	if m.Deleted {
		return nil, &MemberRemovedError{Address: address}
	}
	return m, nil
}

func (r *Registry) Remove(address string) (*types.Member, error) {
	m, err := r.Lookup(address)
	if err != nil {
		return nil, err
	}
	m.Deleted = true
	return m, r.Save(m)
}

// All returns every member in index order, which is ascending address order.
func (r *Registry) All() ([]*types.Member, error) {
	var (
		members []*types.Member
		derr    error
	)
	err := r.store.Range(memberIdxPrefix, host.Ascending, func(k, v []byte) bool {
		m := &types.Member{}
		if _, derr = m.UnmarshalMsg(v); derr != nil {
			return false
		}
		members = append(members, m)
		return true
	})
	if err != nil {
		return nil, err
	}
	return members, derr
}

// ListDealers returns every member holding a dealer share, removed ones
// included since their commitments are part of the group key.
func (r *Registry) ListDealers() ([]*types.Member, error) {
	all, err := r.All()
	if err != nil {
		return nil, err
	}
	dealers := all[:0]
	for _, m := range all {
		if m.SharedDealer != nil {
			dealers = append(dealers, m)
		}
	}
	return dealers, nil
}

func (r *Registry) Active() (uint16, error) {
	all, err := r.All()
	if err != nil {
		return 0, err
	}
	var n uint16
	for _, m := range all {
		if !m.Deleted {
			n++
		}
	}
	return n, nil
}

// ClearShares forgets every dealer and row share, keeping removals.
func (r *Registry) ClearShares() error {
	all, err := r.All()
	if err != nil {
		return err
	}
	for _, m := range all {
		if m.SharedDealer == nil && m.SharedRow == nil {
			continue
		}
		m.SharedDealer, m.SharedRow = nil, nil
		if err := r.Save(m); err != nil {
			return err
		}
	}
	return nil
}

// List pages members by address. offset is exclusive.
func (r *Registry) List(limit *uint8, offset *string, order host.Order) ([]*types.Member, error) {
	n := clampLimit(limit)
	var indices []uint16
	err := r.store.Range(memberAddrPrefix, order, func(k, v []byte) bool {
		addr := string(k[len(memberAddrPrefix):])
		if offset != nil {
			if order == host.Descending && addr >= *offset {
				return true
			}
			if order == host.Ascending && addr <= *offset {
				return true
			}
		}
		if len(indices) >= n {
			return false
		}
		indices = append(indices, binary.BigEndian.Uint16(v))
		return true
	})
	if err != nil {
		return nil, err
	}
	members := make([]*types.Member, 0, len(indices))
	for _, i := range indices {
		m, err := r.ByIndex(i)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}
