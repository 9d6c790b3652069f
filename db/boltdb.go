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
	"bytes"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb/util"
	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("vrfdkg")

// BoltDB keeps every key in a single bucket; bolt orders keys bytewise so
// prefix ranges behave the same as on leveldb.
type BoltDB struct {
	fn string
	db *bolt.DB
}

func NewBoltDB(file string) (*BoltDB, error) {
	db, err := bolt.Open(file, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	logrus.WithField("path", file).Info("opened bolt database")
	return &BoltDB{fn: file, db: db}, nil
}

func (b *BoltDB) Begin() (Txn, error) {
	tx, err := b.db.Begin(true)
	if err != nil {
		return nil, err
	}
	return &boltTxn{tx: tx, bucket: tx.Bucket(boltBucket)}, nil
}

func (b *BoltDB) View(fn func(r Reader) error) error {
	return b.db.View(func(tx *bolt.Tx) error {
		return fn(&boltTxn{tx: tx, bucket: tx.Bucket(boltBucket)})
	})
}

func (b *BoltDB) Close() error {
	logrus.WithField("path", b.fn).Info("closing bolt database")
	return b.db.Close()
}

type boltTxn struct {
	tx     *bolt.Tx
	bucket *bolt.Bucket
}

func (t *boltTxn) Get(key []byte) ([]byte, error) {
	v := t.bucket.Get(key)
	if v == nil {
		return nil, ErrNotFound
	}
	return copyBytes(v), nil
}

func (t *boltTxn) Has(key []byte) (bool, error) {
	return t.bucket.Get(key) != nil, nil
}

func (t *boltTxn) Iterate(prefix []byte, reverse bool, fn func(key, value []byte) bool) error {
	c := t.bucket.Cursor()
	if !reverse {
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			if !fn(copyBytes(k), copyBytes(v)) {
				break
			}
		}
		return nil
	}
	var k, v []byte
	limit := util.BytesPrefix(prefix).Limit
	if limit == nil {
		k, v = c.Last()
	} else if k, v = c.Seek(limit); k == nil {
		k, v = c.Last()
	} else {
		k, v = c.Prev()
	}
	for ; k != nil && bytes.HasPrefix(k, prefix); k, v = c.Prev() {
		if !fn(copyBytes(k), copyBytes(v)) {
			break
		}
	}
	return nil
}

func (t *boltTxn) Put(key, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	return t.bucket.Put(key, value)
}

func (t *boltTxn) Delete(key []byte) error {
	return t.bucket.Delete(key)
}

func (t *boltTxn) Commit() error {
	return t.tx.Commit()
}

func (t *boltTxn) Discard() {
	if err := t.tx.Rollback(); err != nil && err != bolt.ErrTxClosed {
		logrus.WithError(err).Warn("bolt rollback failed")
	}
}
