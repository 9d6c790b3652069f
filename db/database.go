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
package db

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("db: not found")

// Reader is the read side shared by transactions and snapshots.
type Reader interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	// Iterate visits every key under prefix in lexicographic order, or in
	// reverse order when reverse is set, until fn returns false. Keys and
	// values handed to fn are copies and may be retained.
	Iterate(prefix []byte, reverse bool, fn func(key, value []byte) bool) error
}

// Txn is a writable transaction. Writes are visible to reads of the same
// transaction and become visible to others only after Commit.
type Txn interface {
	Reader
	Put(key, value []byte) error
	Delete(key []byte) error
	Commit() error
	Discard()
}

type Database interface {
	Begin() (Txn, error)
	View(fn func(r Reader) error) error
	Close() error
}

type Config struct {
	Name    string
	Path    string
	Cache   int
	Handles int
}

// Open picks the backend named by cfg.Name. An empty name selects the
// in-memory leveldb.
func Open(cfg Config) (Database, error) {
	var (
		d   Database
		err error
	)
	switch cfg.Name {
	case "leveldb":
		d, err = NewLevelDB(cfg.Path, cfg.Cache, cfg.Handles)
	case "bolt", "boltdb":
		d, err = NewBoltDB(cfg.Path)
	case "memory", "":
		d, err = NewMemDatabase()
	default:
		return nil, fmt.Errorf("unknown db name %q", cfg.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Name, err)
	}
	return d, nil
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
