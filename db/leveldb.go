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
	"github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

type LevelDB struct {
	fn string
	db *leveldb.DB
}

func NewLevelDB(file string, cache int, handles int) (*LevelDB, error) {
	if cache < 16 {
		cache = 16
	}
	if handles < 16 {
		handles = 16
	}
	logrus.WithFields(logrus.Fields{
		"cache":   cache,
		"handles": handles,
		"path":    file,
	}).Info("allocated cache and file handles")

	db, err := leveldb.OpenFile(file, &opt.Options{
		OpenFilesCacheCapacity: handles,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	})
	if _, corrupted := err.(*lerrors.ErrCorrupted); corrupted {
		logrus.WithError(err).Warn("leveldb corrupted, recovering")
		db, err = leveldb.RecoverFile(file, nil)
	}
	if err != nil {
		return nil, err
	}
	return &LevelDB{fn: file, db: db}, nil
}

// NewMemDatabase is a leveldb kept entirely in memory.
func NewMemDatabase() (*LevelDB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{fn: "memory", db: db}, nil
}

func (l *LevelDB) Path() string {
	return l.fn
}

func (l *LevelDB) Begin() (Txn, error) {
	tr, err := l.db.OpenTransaction()
	if err != nil {
		return nil, err
	}
	return &levelTxn{tr: tr}, nil
}

func (l *LevelDB) View(fn func(r Reader) error) error {
	snap, err := l.db.GetSnapshot()
	if err != nil {
		return err
	}
	defer snap.Release()
	return fn(&levelSnapshot{snap: snap})
}

func (l *LevelDB) Close() error {
	err := l.db.Close()
	if err == nil {
		logrus.WithField("path", l.fn).Info("database closed")
	} else {
		logrus.WithError(err).WithField("path", l.fn).Error("failed to close database")
	}
	return err
}

type levelTxn struct {
	tr *leveldb.Transaction
}

func (t *levelTxn) Get(key []byte) ([]byte, error) {
	v, err := t.tr.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	return v, err
}

func (t *levelTxn) Has(key []byte) (bool, error) {
	return t.tr.Has(key, nil)
}

func (t *levelTxn) Iterate(prefix []byte, reverse bool, fn func(key, value []byte) bool) error {
	return walk(t.tr.NewIterator(util.BytesPrefix(prefix), nil), reverse, fn)
}

func (t *levelTxn) Put(key, value []byte) error {
	return t.tr.Put(key, value, nil)
}

func (t *levelTxn) Delete(key []byte) error {
	return t.tr.Delete(key, nil)
}

func (t *levelTxn) Commit() error {
	return t.tr.Commit()
}

func (t *levelTxn) Discard() {
	t.tr.Discard()
}

type levelSnapshot struct {
	snap *leveldb.Snapshot
}

func (s *levelSnapshot) Get(key []byte) ([]byte, error) {
	v, err := s.snap.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	return v, err
}

func (s *levelSnapshot) Has(key []byte) (bool, error) {
	return s.snap.Has(key, nil)
}

func (s *levelSnapshot) Iterate(prefix []byte, reverse bool, fn func(key, value []byte) bool) error {
	return walk(s.snap.NewIterator(util.BytesPrefix(prefix), nil), reverse, fn)
}

func walk(it iterator.Iterator, reverse bool, fn func(key, value []byte) bool) error {
	defer it.Release()
	if reverse {
		for ok := it.Last(); ok; ok = it.Prev() {
			if !fn(copyBytes(it.Key()), copyBytes(it.Value())) {
				break
			}
		}
	} else {
		for it.Next() {
			if !fn(copyBytes(it.Key()), copyBytes(it.Value())) {
				break
			}
		}
	}
	return it.Error()
}
