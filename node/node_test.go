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
package node

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/annchain/vrfdkg/beacon"
	"github.com/annchain/vrfdkg/db"
	"github.com/annchain/vrfdkg/dkg"
	"github.com/annchain/vrfdkg/types"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func writeGenesis(t *testing.T, dir, name string, members int) string {
	var b []byte
	var err error
	g := GenesisFile{Threshold: 1, Fee: &types.Coin{Denom: "uatom", Amount: 4}}
	for i := 0; i < members; i++ {
		g.Members = append(g.Members, GenesisMember{
			Address: fmt.Sprintf("member-%d", i),
			PubKey:  hex.EncodeToString(dkg.GenerateKeyPair().PublicBytes()),
		})
	}
	if filepath.Ext(name) == ".json" {
		b, err = json.Marshal(g)
	} else {
		var lines string
		lines = "threshold: 1\nfee:\n  denom: uatom\n  amount: 4\nmembers:\n"
		for _, m := range g.Members {
			lines += fmt.Sprintf("  - address: %s\n    pubkey: \"%s\"\n", m.Address, m.PubKey)
		}
		b = []byte(lines)
	}
	require.NoError(t, err)
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, b, 0644))
	return p
}

func TestLoadGenesisFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"genesis.yaml", "genesis.json"} {
		g, err := LoadGenesisFile(writeGenesis(t, dir, name, 3))
		require.NoError(t, err, name)
		msg, err := g.InstantiateMsg()
		require.NoError(t, err)
		require.Len(t, msg.Members, 3)
		require.Equal(t, uint16(1), msg.Threshold)
		require.Equal(t, uint64(4), msg.Fee.Amount)
		require.NoError(t, msg.Validate())
	}

	g := &GenesisFile{Members: []GenesisMember{{Address: "a", PubKey: "zz"}}}
	_, err := g.InstantiateMsg()
	require.Error(t, err)
}

func TestConfigFromViper(t *testing.T) {
	v := viper.New()
	v.Set("db.name", "memory")
	v.Set("rpc.enabled", false)
	v.Set("genesis.balances", map[string]interface{}{
		"Alice": map[string]interface{}{"uatom": 50, "orai": 7},
	})
	cfg, err := ConfigFromViper(v)
	require.NoError(t, err)
	require.Equal(t, defaultContractAddress, cfg.Contract)
	require.Equal(t, defaultRoundCacheSize, cfg.RoundCacheSize)
	coins := types.Coins(cfg.Genesis.Balances["alice"])
	require.Equal(t, uint64(50), coins.AmountOf("uatom"))
	require.Equal(t, uint64(7), coins.AmountOf("orai"))

	v = viper.New()
	v.Set("db.name", "rocks")
	v.Set("rpc.enabled", true)
	v.Set("genesis.file", "/nonexistent/genesis.yaml")
	_, err = ConfigFromViper(v)
	require.Error(t, err)
	require.Contains(t, err.Error(), "db.name")
	require.Contains(t, err.Error(), "rpc.port")
	require.Contains(t, err.Error(), "genesis.owner")
	require.Contains(t, err.Error(), "does not exist")
}

func TestNodeInstantiatesFromGenesis(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		DB:             dbConfig(filepath.Join(dir, "db")),
		Contract:       defaultContractAddress,
		RoundCacheSize: 8,
		Genesis: GenesisConfig{
			Owner:    "owner",
			File:     writeGenesis(t, dir, "genesis.yaml", 3),
			Balances: map[string]types.Coins{"alice": {types.NewCoin(20, "uatom")}},
		},
	}
	n, err := NewNode(cfg)
	require.NoError(t, err)
	n.Start()
	require.True(t, n.Instantiated())

	out, err := n.Query(beacon.MustEncodeMsg(beacon.ContractInfoQuery{}))
	require.NoError(t, err)
	var info beacon.ContractInfoResponse
	require.NoError(t, json.Unmarshal(out, &info))
	require.Equal(t, "owner", info.Owner)
	require.Equal(t, uint16(3), info.Total)
	height := n.Height()

	bal, err := n.Balance("alice", "uatom")
	require.NoError(t, err)
	require.Equal(t, uint64(20), bal)
	n.Stop()

	// restart on the same store: nothing is applied twice
	n, err = NewNode(cfg)
	require.NoError(t, err)
	defer n.Stop()
	require.Equal(t, height, n.Height())
	bal, err = n.Balance("alice", "uatom")
	require.NoError(t, err)
	require.Equal(t, uint64(20), bal)
}

func dbConfig(path string) db.Config {
	return db.Config{Name: "leveldb", Path: path}
}

type fakeQuerier struct {
	calls  atomic.Int32
	rounds map[uint64]*types.DistributedShareData
}

func (f *fakeQuerier) Query(msg []byte) ([]byte, error) {
	f.calls.Inc()
	parsed, err := beacon.ParseQueryMsg(msg)
	if err != nil {
		return nil, err
	}
	q, ok := parsed.(*beacon.GetRoundQuery)
	if !ok {
		return []byte("{}"), nil
	}
	r, ok := f.rounds[q.Round]
	if !ok {
		return nil, &beacon.NoBeaconError{Round: q.Round}
	}
	return json.Marshal(r)
}

func TestRoundCache(t *testing.T) {
	f := &fakeQuerier{rounds: map[uint64]*types.DistributedShareData{
		1: {Round: 1, State: types.RoundClosed, CombinedSig: []byte{1}, Randomness: []byte{2}},
		2: {Round: 2, State: types.RoundOpen},
	}}
	c, err := NewRoundCache(f, 4)
	require.NoError(t, err)

	get := func(round uint64) error {
		_, err := c.Query(beacon.MustEncodeMsg(beacon.GetRoundQuery{Round: round}))
		return err
	}
	require.NoError(t, get(1))
	require.NoError(t, get(1))
	require.Equal(t, int32(1), f.calls.Load())

	require.NoError(t, get(2))
	require.NoError(t, get(2))
	require.Equal(t, int32(3), f.calls.Load())

	require.ErrorIs(t, get(9), beacon.ErrNoBeacon)

	_, err = c.Query(beacon.MustEncodeMsg(beacon.ContractInfoQuery{}))
	require.NoError(t, err)
	require.Equal(t, int32(5), f.calls.Load())

	b := c.GetBenchmarks()
	require.Equal(t, uint64(1), b["hits"])
	require.Equal(t, 1, b["size"])
}

type fakeAdvancer struct {
	height atomic.Uint64
}

func (f *fakeAdvancer) AdvanceBlocks(n uint64) uint64 {
	return f.height.Add(n)
}

func TestBlockTicker(t *testing.T) {
	f := &fakeAdvancer{}
	b := NewBlockTicker(f, 5*time.Millisecond)
	b.Start()
	require.Eventually(t, func() bool { return f.height.Load() >= 3 }, time.Second, 5*time.Millisecond)
	b.Stop()
	h := f.height.Load()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, h, f.height.Load())
}

func TestPerformanceMonitorReport(t *testing.T) {
	f := &fakeQuerier{}
	c, err := NewRoundCache(f, 2)
	require.NoError(t, err)
	p := NewPerformanceMonitor(time.Hour)
	p.Register(c)
	fields := p.Report()
	require.Contains(t, fields, "RoundCache")
	require.Contains(t, fields, "goroutines")
}
