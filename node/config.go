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
	"strings"
	"time"

	"github.com/annchain/vrfdkg/beacon"
	"github.com/annchain/vrfdkg/common/files"
	"github.com/annchain/vrfdkg/db"
	"github.com/annchain/vrfdkg/types"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const (
	defaultContractAddress = "vrfdkg"
	defaultRoundCacheSize  = 256
)

type ServerConfig struct {
	Enabled bool
	Port    string
}

type GenesisConfig struct {
	Owner    string
	File     string
	Balances map[string]types.Coins
}

type Config struct {
	DB              db.Config
	Contract        string
	RPC             ServerConfig
	WebSocket       ServerConfig
	PushToken       string
	RoundCacheSize  int
	BlockInterval   time.Duration
	MonitorInterval time.Duration
	Genesis         GenesisConfig
}

// ConfigFromViper reads the node settings. Relative paths are resolved
// under rootdir.
func ConfigFromViper(v *viper.Viper) (*Config, error) {
	root := v.GetString("rootdir")
	cfg := &Config{
		DB: db.Config{
			Name:    v.GetString("db.name"),
			Path:    files.FixPrefixPath(root, v.GetString("db.path")),
			Cache:   v.GetInt("leveldb.cache"),
			Handles: v.GetInt("leveldb.handles"),
		},
		Contract:        v.GetString("chain.contract"),
		RPC:             ServerConfig{Enabled: v.GetBool("rpc.enabled"), Port: v.GetString("rpc.port")},
		WebSocket:       ServerConfig{Enabled: v.GetBool("websocket.enabled"), Port: v.GetString("websocket.port")},
		PushToken:       v.GetString("websocket.push_token"),
		RoundCacheSize:  v.GetInt("cache.rounds"),
		BlockInterval:   time.Duration(v.GetInt64("chain.block_interval_ms")) * time.Millisecond,
		MonitorInterval: time.Duration(v.GetInt64("monitor.interval_s")) * time.Second,
		Genesis: GenesisConfig{
			Owner:    v.GetString("genesis.owner"),
			File:     v.GetString("genesis.file"),
			Balances: make(map[string]types.Coins),
		},
	}
	if cfg.Genesis.File != "" {
		cfg.Genesis.File = files.FixPrefixPath(root, cfg.Genesis.File)
	}
	if cfg.Contract == "" {
		cfg.Contract = defaultContractAddress
	}
	if cfg.RoundCacheSize == 0 {
		cfg.RoundCacheSize = defaultRoundCacheSize
	}
	// viper lowercases keys, so addresses and denoms arrive lowercased
	for addr := range v.GetStringMap("genesis.balances") {
		for denom := range v.GetStringMap("genesis.balances." + addr) {
			amount := v.GetUint64("genesis.balances." + addr + "." + denom)
			cfg.Genesis.Balances[addr] = append(cfg.Genesis.Balances[addr], types.NewCoin(amount, denom))
		}
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	var result *multierror.Error
	switch c.DB.Name {
	case "", "memory", "leveldb", "bolt", "boltdb":
	default:
		result = multierror.Append(result, fmt.Errorf("db.name: unknown backend %q", c.DB.Name))
	}
	if (c.DB.Name == "leveldb" || c.DB.Name == "bolt" || c.DB.Name == "boltdb") && c.DB.Path == "" {
		result = multierror.Append(result, fmt.Errorf("db.path is required for %s", c.DB.Name))
	}
	if c.RPC.Enabled && c.RPC.Port == "" {
		result = multierror.Append(result, fmt.Errorf("rpc.port is required when rpc is enabled"))
	}
	if c.WebSocket.Enabled && c.WebSocket.Port == "" {
		result = multierror.Append(result, fmt.Errorf("websocket.port is required when websocket is enabled"))
	}
	if c.RoundCacheSize < 0 {
		result = multierror.Append(result, fmt.Errorf("cache.rounds must not be negative"))
	}
	if c.BlockInterval < 0 {
		result = multierror.Append(result, fmt.Errorf("chain.block_interval_ms must not be negative"))
	}
	if c.Genesis.File != "" && c.Genesis.Owner == "" {
		result = multierror.Append(result, fmt.Errorf("genesis.owner is required with genesis.file"))
	}
	if c.Genesis.File != "" && !files.FileExists(c.Genesis.File) {
		result = multierror.Append(result, fmt.Errorf("genesis.file %s does not exist", c.Genesis.File))
	}
	return result.ErrorOrNil()
}

// GenesisMember lists a member with a hex encoded public key.
type GenesisMember struct {
	Address string `json:"address" yaml:"address"`
	PubKey  string `json:"pubkey" yaml:"pubkey"`
}

// GenesisFile is the on-disk form of the instantiate message.
type GenesisFile struct {
	Members    []GenesisMember `json:"members" yaml:"members"`
	Threshold  uint16          `json:"threshold" yaml:"threshold"`
	Dealer     *uint16         `json:"dealer,omitempty" yaml:"dealer,omitempty"`
	Fee        *types.Coin     `json:"fee,omitempty" yaml:"fee,omitempty"`
	DkgTimeout uint64          `json:"dkg_timeout,omitempty" yaml:"dkg_timeout,omitempty"`
}

func (g *GenesisFile) InstantiateMsg() (*beacon.InstantiateMsg, error) {
	msg := &beacon.InstantiateMsg{
		Threshold:  g.Threshold,
		Dealer:     g.Dealer,
		Fee:        g.Fee,
		DkgTimeout: g.DkgTimeout,
	}
	for _, m := range g.Members {
		pk, err := hex.DecodeString(strings.TrimPrefix(m.PubKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("member %s: bad pubkey: %w", m.Address, err)
		}
		msg.Members = append(msg.Members, types.MemberMsg{Address: m.Address, PubKey: pk})
	}
	return msg, nil
}

// LoadGenesisFile reads a YAML or JSON genesis file, chosen by extension.
func LoadGenesisFile(path string) (*GenesisFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var g GenesisFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(b, &g)
	default:
		err = yaml.Unmarshal(b, &g)
	}
	if err != nil {
		return nil, fmt.Errorf("parse genesis file %s: %w", path, err)
	}
	return &g, nil
}
