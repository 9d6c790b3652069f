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
package host

import (
	"errors"

	"github.com/annchain/vrfdkg/db"
)

var (
	ErrNotFound = db.ErrNotFound
	ErrReadOnly = errors.New("store is read only")
)

type Order int

const (
	Ascending Order = iota
	Descending
)

func ParseOrder(s string) Order {
	if s == "desc" || s == "descending" {
		return Descending
	}
	return Ascending
}

// Store is the ordered byte-keyed storage a contract sees.
type Store interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	// Range visits every key under prefix in the given order until fn
	// returns false.
	Range(prefix []byte, order Order, fn func(key, value []byte) bool) error
}

type txStore struct {
	tx db.Txn
}

func NewTxStore(tx db.Txn) Store {
	return &txStore{tx: tx}
}

func (s *txStore) Get(key []byte) ([]byte, error) { return s.tx.Get(key) }
func (s *txStore) Has(key []byte) (bool, error)   { return s.tx.Has(key) }
func (s *txStore) Set(key, value []byte) error    { return s.tx.Put(key, value) }
func (s *txStore) Delete(key []byte) error        { return s.tx.Delete(key) }

func (s *txStore) Range(prefix []byte, order Order, fn func(key, value []byte) bool) error {
	return s.tx.Iterate(prefix, order == Descending, fn)
}

type readOnlyStore struct {
	r db.Reader
}

func NewReadOnlyStore(r db.Reader) Store {
	return &readOnlyStore{r: r}
}

func (s *readOnlyStore) Get(key []byte) ([]byte, error) { return s.r.Get(key) }
func (s *readOnlyStore) Has(key []byte) (bool, error)   { return s.r.Has(key) }
func (s *readOnlyStore) Set(key, value []byte) error    { return ErrReadOnly }
func (s *readOnlyStore) Delete(key []byte) error        { return ErrReadOnly }

func (s *readOnlyStore) Range(prefix []byte, order Order, fn func(key, value []byte) bool) error {
	return s.r.Iterate(prefix, order == Descending, fn)
}

// PrefixStore namespaces every key of the parent store under prefix.
type PrefixStore struct {
	parent Store
	prefix []byte
}

func NewPrefixStore(parent Store, prefix []byte) *PrefixStore {
	return &PrefixStore{parent: parent, prefix: prefix}
}

func (p *PrefixStore) key(k []byte) []byte {
	full := make([]byte, 0, len(p.prefix)+len(k))
	full = append(full, p.prefix...)
	return append(full, k...)
}

func (p *PrefixStore) Get(key []byte) ([]byte, error) { return p.parent.Get(p.key(key)) }
func (p *PrefixStore) Has(key []byte) (bool, error)   { return p.parent.Has(p.key(key)) }
func (p *PrefixStore) Set(key, value []byte) error    { return p.parent.Set(p.key(key), value) }
func (p *PrefixStore) Delete(key []byte) error        { return p.parent.Delete(p.key(key)) }

func (p *PrefixStore) Range(prefix []byte, order Order, fn func(key, value []byte) bool) error {
	return p.parent.Range(p.key(prefix), order, func(key, value []byte) bool {
		return fn(key[len(p.prefix):], value)
	})
}
