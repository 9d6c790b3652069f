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
	"fmt"

	"github.com/annchain/vrfdkg/deployment"
	"github.com/annchain/vrfdkg/types"
	"github.com/spf13/cobra"
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate config.toml, genesis and member keys for a local deployment",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		params := deployment.GenerateParams{}
		params.Port, _ = flags.GetInt("port")
		params.ConfigDir, _ = flags.GetString("out")
		params.Members, _ = flags.GetInt("members")
		params.Threshold, _ = flags.GetUint16("threshold")
		params.Owner, _ = flags.GetString("owner")
		params.DkgTimeout, _ = flags.GetUint64("dkg-timeout")
		params.DBName, _ = flags.GetString("db")
		if amount, _ := flags.GetUint64("fee"); amount > 0 {
			denom, _ := flags.GetString("fee-denom")
			fee := types.NewCoin(amount, denom)
			params.Fee = &fee
		}
		if err := deployment.NewGenerator(params).Generate(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "config written to", params.ConfigDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(genCmd)
	genCmd.Flags().IntP("port", "t", 8000, "rpc port; websocket uses port+2")
	genCmd.Flags().StringP("out", "o", "nodedata/config", "output folder")
	genCmd.Flags().IntP("members", "n", 4, "number of beacon members")
	genCmd.Flags().Uint16("threshold", 2, "signature threshold")
	genCmd.Flags().String("owner", "owner", "contract owner address")
	genCmd.Flags().Uint64("fee", 0, "randomness request fee amount")
	genCmd.Flags().String("fee-denom", "uatom", "randomness request fee denom")
	genCmd.Flags().Uint64("dkg-timeout", 0, "blocks before members may restart a stalled dkg")
	genCmd.Flags().String("db", "leveldb", "database backend: leveldb, bolt or memory")
}
