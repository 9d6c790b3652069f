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
	"os"
	"path/filepath"
	"testing"

	"github.com/annchain/vrfdkg/node"
	"github.com/annchain/vrfdkg/types"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "config")
	g := NewGenerator(GenerateParams{
		Port:      9000,
		ConfigDir: dir,
		Members:   4,
		Threshold: 2,
		Owner:     "owner",
		Fee:       &types.Coin{Denom: "uatom", Amount: 6},
	})
	require.NoError(t, g.Generate())

	genesis, err := node.LoadGenesisFile(filepath.Join(dir, GenesisFileName))
	require.NoError(t, err)
	msg, err := genesis.InstantiateMsg()
	require.NoError(t, err)
	require.Len(t, msg.Members, 4)
	require.NoError(t, msg.Validate())
	require.Equal(t, uint64(6), msg.Fee.Amount)

	b, err := os.ReadFile(filepath.Join(dir, KeysFileName))
	require.NoError(t, err)
	var keys []MemberKey
	require.NoError(t, yaml.Unmarshal(b, &keys))
	require.Len(t, keys, 4)
	require.Equal(t, genesis.Members[3].PubKey, keys[3].Public)

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, ConfigFileName))
	require.NoError(t, v.ReadInConfig())
	require.Equal(t, "9000", v.GetString("rpc.port"))
	require.Equal(t, "9002", v.GetString("websocket.port"))
	require.Equal(t, "owner", v.GetString("genesis.owner"))
}

func TestGenerateValidates(t *testing.T) {
	dir := t.TempDir()
	require.Error(t, NewGenerator(GenerateParams{ConfigDir: dir, Members: 0, Owner: "o"}).Generate())
	require.Error(t, NewGenerator(GenerateParams{ConfigDir: dir, Members: 2, Threshold: 2, Owner: "o"}).Generate())
	require.Error(t, NewGenerator(GenerateParams{ConfigDir: dir, Members: 2}).Generate())
}
