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
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/annchain/vrfdkg/beacon"
	"github.com/annchain/vrfdkg/dkg"
	"github.com/annchain/vrfdkg/types"
	"github.com/spf13/cobra"
)

// Off-chain material for local testing: member keys, dealer shares and row
// shares, printed as JSON ready to be sent to the node.
var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate off-chain DKG material",
}

var keygenMemberCmd = &cobra.Command{
	Use:   "member",
	Short: "Generate a member key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		return keygenMember(cmd.OutOrStdout())
	},
}

var keygenDealerCmd = &cobra.Command{
	Use:   "dealer",
	Short: "Deal a random polynomial to the given member public keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		threshold, _ := cmd.Flags().GetUint16("threshold")
		pubkeys, _ := cmd.Flags().GetStringSlice("pubkeys")
		return keygenDealer(cmd.OutOrStdout(), threshold, pubkeys)
	},
}

var keygenRowCmd = &cobra.Command{
	Use:   "row",
	Short: "Decrypt this member's rows and derive its public key share",
	RunE: func(cmd *cobra.Command, args []string) error {
		index, _ := cmd.Flags().GetUint16("index")
		private, _ := cmd.Flags().GetString("private")
		rows, _ := cmd.Flags().GetStringSlice("rows")
		return keygenRow(cmd.OutOrStdout(), index, private, rows)
	},
}

type memberKeys struct {
	Private string `json:"private"`
	Public  string `json:"public"`
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
}

func writeJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func keygenMember(w io.Writer) error {
	k := dkg.GenerateKeyPair()
	return writeJSON(w, memberKeys{
		Private: hex.EncodeToString(k.PrivateBytes()),
		Public:  hex.EncodeToString(k.PublicBytes()),
	})
}

// keygenDealer prints a share_dealer message. pubkeys must be in member
// index order, which is ascending address order.
func keygenDealer(w io.Writer, threshold uint16, pubkeys []string) error {
	if len(pubkeys) == 0 {
		return errors.New("at least one pubkey is required")
	}
	raw := make([][]byte, len(pubkeys))
	for i, pk := range pubkeys {
		b, err := decodeHex(pk)
		if err != nil {
			return fmt.Errorf("pubkey %d: %w", i, err)
		}
		raw[i] = b
	}
	d := dkg.NewDealer(int(threshold))
	rows, err := d.EncryptedRows(raw)
	if err != nil {
		return err
	}
	msg := &beacon.ShareDealerMsg{Share: types.DealerShare{Commits: d.Commits(), Rows: rows}}
	return writeJSON(w, json.RawMessage(beacon.MustEncodeMsg(msg)))
}

// keygenRow prints a share_row message from the encrypted rows addressed
// to this member, one per dealer.
func keygenRow(w io.Writer, index uint16, private string, rows []string) error {
	pk, err := decodeHex(private)
	if err != nil {
		return fmt.Errorf("private key: %w", err)
	}
	key, err := dkg.KeyPairFromPrivate(pk)
	if err != nil {
		return err
	}
	encrypted := make([][]byte, len(rows))
	for i, r := range rows {
		if encrypted[i], err = decodeHex(r); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	signer, err := dkg.NewSignerFromEncrypted(index, key, encrypted)
	if err != nil {
		return err
	}
	msg := &beacon.ShareRowMsg{Share: types.RowShare{PkShare: signer.PublicShare()}}
	return writeJSON(w, json.RawMessage(beacon.MustEncodeMsg(msg)))
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.AddCommand(keygenMemberCmd, keygenDealerCmd, keygenRowCmd)

	keygenDealerCmd.Flags().Uint16P("threshold", "t", 1, "Polynomial degree")
	keygenDealerCmd.Flags().StringSliceP("pubkeys", "p", nil, "Member public keys (hex) in index order")

	keygenRowCmd.Flags().Uint16P("index", "i", 0, "Member index")
	keygenRowCmd.Flags().String("private", "", "Member private key (hex)")
	keygenRowCmd.Flags().StringSlice("rows", nil, "Encrypted rows (hex) addressed to this member, one per dealer")
}
