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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Database {
	mem, err := NewMemDatabase()
	require.NoError(t, err)
	dir := t.TempDir()
	lvl, err := NewLevelDB(filepath.Join(dir, "level"), 16, 16)
	require.NoError(t, err)
	blt, err := NewBoltDB(filepath.Join(dir, "bolt.db"))
	require.NoError(t, err)
	dbs := map[string]Database{"memory": mem, "leveldb": lvl, "bolt": blt}
	t.Cleanup(func() {
		for _, d := range dbs {
			d.Close()
		}
	})
	return dbs
}

func TestTxnCommitAndDiscard(t *testing.T) {
	for name, d := range backends(t) {
		t.Run(name, func(t *testing.T) {
			tx, err := d.Begin()
			require.NoError(t, err)
			require.NoError(t, tx.Put([]byte("a"), []byte("1")))
			v, err := tx.Get([]byte("a"))
			require.NoError(t, err)
			require.Equal(t, []byte("1"), v)
			require.NoError(t, tx.Commit())

			tx, err = d.Begin()
			require.NoError(t, err)
			require.NoError(t, tx.Put([]byte("b"), []byte("2")))
			require.NoError(t, tx.Delete([]byte("a")))
			tx.Discard()

			err = d.View(func(r Reader) error {
				v, err := r.Get([]byte("a"))
				require.NoError(t, err)
				require.Equal(t, []byte("1"), v)
				_, err = r.Get([]byte("b"))
				require.Equal(t, ErrNotFound, err)
				ok, err := r.Has([]byte("b"))
				require.NoError(t, err)
				require.False(t, ok)
				return nil
			})
			require.NoError(t, err)
		})
	}
}

func TestIteratePrefixOrder(t *testing.T) {
	for name, d := range backends(t) {
		t.Run(name, func(t *testing.T) {
			tx, err := d.Begin()
			require.NoError(t, err)
			for _, k := range []string{"r/\x00\x02", "r/\x00\x01", "r/\x01\x00", "s/\x00", "q/\xff"} {
				require.NoError(t, tx.Put([]byte(k), []byte(k)))
			}
			require.NoError(t, tx.Commit())

			collect := func(reverse bool, max int) []string {
				var keys []string
				err := d.View(func(r Reader) error {
					return r.Iterate([]byte("r/"), reverse, func(k, v []byte) bool {
						keys = append(keys, string(k))
						return len(keys) < max
					})
				})
				require.NoError(t, err)
				return keys
			}
			require.Equal(t, []string{"r/\x00\x01", "r/\x00\x02", "r/\x01\x00"}, collect(false, 10))
			require.Equal(t, []string{"r/\x01\x00", "r/\x00\x02", "r/\x00\x01"}, collect(true, 10))
			require.Equal(t, []string{"r/\x01\x00"}, collect(true, 1))
		})
	}
}

func TestOpenUnknown(t *testing.T) {
	_, err := Open(Config{Name: "mongo"})
	require.Error(t, err)
	d, err := Open(Config{Name: "memory"})
	require.NoError(t, err)
	require.NoError(t, d.Close())
}
