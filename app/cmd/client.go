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
	"context"
	"encoding/json"
	"time"

	"github.com/annchain/vrfdkg/client"
	"github.com/annchain/vrfdkg/types"
	"github.com/spf13/cobra"
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Talk to a running node",
}

var clientStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print node status",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := newClient(cmd).Status(context.Background())
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), status)
	},
}

var clientQueryCmd = &cobra.Command{
	Use:   "query <msg json>",
	Short: "Run a contract query, e.g. '{\"latest_round\":{}}'",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var out json.RawMessage
		if err := newClient(cmd).QueryRaw(context.Background(), []byte(args[0]), &out); err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), out)
	},
}

var clientExecuteCmd = &cobra.Command{
	Use:   "execute <msg json>",
	Short: "Send an execute message, e.g. '{\"request_random\":{\"input\":\"aGk=\"}}'",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, _ := cmd.Flags().GetString("sender")
		amount, _ := cmd.Flags().GetUint64("amount")
		denom, _ := cmd.Flags().GetString("denom")
		var funds []types.Coin
		if amount > 0 {
			funds = append(funds, types.NewCoin(amount, denom))
		}
		res, err := newClient(cmd).ExecuteRaw(context.Background(), sender, []byte(args[0]), funds...)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), res)
	},
}

func newClient(cmd *cobra.Command) *client.Client {
	host, _ := cmd.Flags().GetString("host")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	return client.NewClient(host, timeout)
}

func init() {
	rootCmd.AddCommand(clientCmd)
	clientCmd.AddCommand(clientStatusCmd, clientQueryCmd, clientExecuteCmd)

	clientCmd.PersistentFlags().String("host", "http://127.0.0.1:8000", "Node rpc address")
	clientCmd.PersistentFlags().Duration("timeout", 10*time.Second, "Request timeout")

	clientExecuteCmd.Flags().String("sender", "", "Sender address")
	clientExecuteCmd.Flags().Uint64("amount", 0, "Attached fund amount")
	clientExecuteCmd.Flags().String("denom", "", "Attached fund denom")
	_ = clientExecuteCmd.MarkFlagRequired("sender")
}
