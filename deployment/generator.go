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
package deployment

import (
	"encoding/hex"
	"fmt"
	"os"
	"path"

	"github.com/annchain/vrfdkg/common/files"
	"github.com/annchain/vrfdkg/dkg"
	"github.com/annchain/vrfdkg/node"
	"github.com/annchain/vrfdkg/types"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const (
	ConfigFileName  = "config.toml"
	GenesisFileName = "genesis.yaml"
	KeysFileName    = "member_keys.yaml"
)

type GenerateParams struct {
	Port       int
	ConfigDir  string
	Members    int
	Threshold  uint16
	Owner      string
	Fee        *types.Coin
	DkgTimeout uint64
	DBName     string
}

// MemberKey is a generated member identity. Keep the file private.
type MemberKey struct {
	Address string `yaml:"address"`
	Private string `yaml:"private"`
	Public  string `yaml:"public"`
}

type Generator struct {
	GenerateParams
	viper *viper.Viper
}

func NewGenerator(params GenerateParams) *Generator {
	return &Generator{GenerateParams: params, viper: viper.New()}
}

func (g *Generator) validate() error {
	if g.Members <= 0 {
		return fmt.Errorf("members must be positive")
	}
	if int(g.Threshold) >= g.Members {
		return fmt.Errorf("threshold %d must be below the member count %d", g.Threshold, g.Members)
	}
	if g.Owner == "" {
		return fmt.Errorf("owner is required")
	}
	return nil
}

// Generate writes a node config, a genesis instantiate file and the member
// keys into ConfigDir.
func (g *Generator) Generate() (err error) {
	if err = g.validate(); err != nil {
		return err
	}
	if err = files.MkDirIfNotExists(g.ConfigDir); err != nil {
		return fmt.Errorf("check and make dir %s error: %w", g.ConfigDir, err)
	}

	genesis := node.GenesisFile{
		Threshold:  g.Threshold,
		Fee:        g.Fee,
		DkgTimeout: g.DkgTimeout,
	}
	var keys []MemberKey
	for i := 0; i < g.Members; i++ {
		k := dkg.GenerateKeyPair()
		mk := MemberKey{
			Address: fmt.Sprintf("member-%02d", i),
			Private: hex.EncodeToString(k.PrivateBytes()),
			Public:  hex.EncodeToString(k.PublicBytes()),
		}
		keys = append(keys, mk)
		genesis.Members = append(genesis.Members, node.GenesisMember{Address: mk.Address, PubKey: mk.Public})
	}
	if err = writeYAML(path.Join(g.ConfigDir, GenesisFileName), genesis, 0644); err != nil {
		return err
	}
	if err = writeYAML(path.Join(g.ConfigDir, KeysFileName), keys, 0600); err != nil {
		return err
	}

	dbName := g.DBName
	if dbName == "" {
		dbName = "leveldb"
	}
	g.viper.Set("db.name", dbName)
	g.viper.Set("db.path", "data/chain")
	g.viper.Set("rpc.enabled", true)
	g.viper.Set("rpc.port", fmt.Sprint(g.Port))
	g.viper.Set("websocket.enabled", true)
	g.viper.Set("websocket.port", fmt.Sprint(g.Port+2))
	g.viper.Set("genesis.owner", g.Owner)
	g.viper.Set("genesis.file", path.Join("config", GenesisFileName))
	if err = g.viper.WriteConfigAs(path.Join(g.ConfigDir, ConfigFileName)); err != nil {
		return fmt.Errorf("error on dump config %w", err)
	}
	return nil
}

func writeYAML(p string, v interface{}, perm os.FileMode) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, perm)
}
