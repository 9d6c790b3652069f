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
package cmd

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/annchain/vrfdkg/beacon"
	"github.com/annchain/vrfdkg/dkg"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestReadConfigMergesFileAndEnv(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	setDefaults()

	root := t.TempDir()
	viper.Set("rootdir", root)
	require.NoError(t, os.MkdirAll(filepath.Join(root, ConfigDir), 0755))
	toml := "[rpc]\nport = \"9100\"\n[db]\nname = \"bolt\"\n[genesis.balances.alice]\nuatom = 30\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigDir, "config.toml"), []byte(toml), 0644))
	os.Setenv("VRFDKG_WEBSOCKET_PORT", "9200")
	defer os.Unsetenv("VRFDKG_WEBSOCKET_PORT")

	readConfig()
	require.Equal(t, "9100", viper.GetString("rpc.port"))
	require.Equal(t, "bolt", viper.GetString("db.name"))
	require.Equal(t, "9200", viper.GetString("websocket.port"))
	require.Equal(t, "vrfdkg", viper.GetString("chain.contract"))
	require.Equal(t, uint64(30), viper.GetUint64("genesis.balances.alice.uatom"))
}

func TestKeygenFlow(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, keygenMember(&buf))
	var keys memberKeys
	require.NoError(t, json.Unmarshal(buf.Bytes(), &keys))

	buf.Reset()
	require.NoError(t, keygenDealer(&buf, 0, []string{keys.Public}))
	msg, err := beacon.ParseExecuteMsg(buf.Bytes())
	require.NoError(t, err)
	dealer, ok := msg.(*beacon.ShareDealerMsg)
	require.True(t, ok)
	require.Len(t, dealer.Share.Commits, 1)
	require.Len(t, dealer.Share.Rows, 1)

	buf.Reset()
	require.NoError(t, keygenRow(&buf, 0, keys.Private, []string{hex.EncodeToString(dealer.Share.Rows[0])}))
	msg, err = beacon.ParseExecuteMsg(buf.Bytes())
	require.NoError(t, err)
	row, ok := msg.(*beacon.ShareRowMsg)
	require.True(t, ok)

	// with a single dealer of degree 0 the row public share is the commit
	pub, err := dkg.PublicKeySet([][][]byte{dealer.Share.Commits}, 0)
	require.NoError(t, err)
	require.Equal(t, dkg.PublicShare(pub, 0), row.Share.PkShare)
}

func TestKeygenDealerRejectsBadInput(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, keygenDealer(&buf, 1, nil))
	require.Error(t, keygenDealer(&buf, 1, []string{"nothex"}))
}
