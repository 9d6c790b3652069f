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
package beacon

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/annchain/vrfdkg/db"
	"github.com/annchain/vrfdkg/dkg"
	"github.com/annchain/vrfdkg/host"
	"github.com/annchain/vrfdkg/types"
	"github.com/stretchr/testify/require"
)

const owner = "owner"

type harness struct {
	t       require.TestingT
	chain   *host.Chain
	addrs   []string
	keys    map[string]*dkg.KeyPair
	dealers map[string]*dkg.Dealer
	signers map[string]*dkg.Signer
	genesis map[string]types.Coins
	cfg     InstantiateMsg
}

// newHarness instantiates the beacon for n members on an in-memory chain.
// Members are handed over in reverse address order.
func newHarness(t require.TestingT, n int, threshold uint16, dealer *uint16, fee *types.Coin) *harness {
	d, err := db.NewMemDatabase()
	require.NoError(t, err)
	chain, err := host.NewChain(d, "beacon", New())
	require.NoError(t, err)

	h := &harness{
		t:       t,
		chain:   chain,
		keys:    make(map[string]*dkg.KeyPair),
		dealers: make(map[string]*dkg.Dealer),
		signers: make(map[string]*dkg.Signer),
		genesis: make(map[string]types.Coins),
	}
	var members []types.MemberMsg
	for i := n - 1; i >= 0; i-- {
		addr := fmt.Sprintf("member-%02d", i)
		h.keys[addr] = dkg.GenerateKeyPair()
		members = append(members, types.MemberMsg{Address: addr, PubKey: h.keys[addr].PublicBytes()})
		h.addrs = append(h.addrs, addr)
	}
	sort.Strings(h.addrs)
	h.cfg = InstantiateMsg{Members: members, Threshold: threshold, Dealer: dealer, Fee: fee}
	return h
}

func (h *harness) instantiate() {
	require.NoError(h.t, h.chain.Genesis(h.genesis))
	b, err := json.Marshal(h.cfg)
	require.NoError(h.t, err)
	_, err = h.chain.Instantiate(owner, nil, b)
	require.NoError(h.t, err)
}

// fund credits addr at genesis; call it before instantiate.
func (h *harness) fund(addr string, coins ...types.Coin) {
	h.genesis[addr] = append(h.genesis[addr], coins...)
}

func (h *harness) exec(sender string, msg ExecuteMsg, funds ...types.Coin) (*host.TxResult, error) {
	return h.chain.Execute(sender, types.Coins(funds), MustEncodeMsg(msg))
}

func (h *harness) query(msg QueryMsg, out interface{}) error {
	b, err := h.chain.Query(MustEncodeMsg(msg))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (h *harness) info() *ContractInfoResponse {
	var info ContractInfoResponse
	require.NoError(h.t, h.query(&ContractInfoQuery{}, &info))
	return &info
}

func (h *harness) member(addr string) *types.Member {
	var m types.Member
	require.NoError(h.t, h.query(&GetMemberQuery{Address: addr}, &m))
	return &m
}

func (h *harness) round(round uint64) *types.DistributedShareData {
	var r types.DistributedShareData
	require.NoError(h.t, h.query(&GetRoundQuery{Round: round}, &r))
	return &r
}

func (h *harness) dealerShare(addr string) types.DealerShare {
	threshold := int(h.info().Threshold)
	d := dkg.NewDealer(threshold)
	h.dealers[addr] = d
	pubkeys := make([][]byte, len(h.addrs))
	for i, a := range h.addrs {
		pubkeys[i] = h.keys[a].PublicBytes()
	}
	rows, err := d.EncryptedRows(pubkeys)
	require.NoError(h.t, err)
	return types.DealerShare{Commits: d.Commits(), Rows: rows}
}

func (h *harness) shareDealer(addr string) error {
	_, err := h.exec(addr, &ShareDealerMsg{Share: h.dealerShare(addr)})
	return err
}

// signer decrypts the member's rows from every published dealer share.
func (h *harness) signer(addr string) *dkg.Signer {
	var dealers []types.Member
	require.NoError(h.t, h.query(&GetDealersQuery{}, &dealers))
	m := h.member(addr)
	encrypted := make([][]byte, len(dealers))
	for i, d := range dealers {
		encrypted[i] = d.SharedDealer.Rows[m.Index]
	}
	s, err := dkg.NewSignerFromEncrypted(m.Index, h.keys[addr], encrypted)
	require.NoError(h.t, err)
	h.signers[addr] = s
	return s
}

func (h *harness) shareRow(addr string) error {
	s := h.signer(addr)
	_, err := h.exec(addr, &ShareRowMsg{Share: types.RowShare{PkShare: s.PublicShare()}})
	return err
}

// runDkg lets the first dealer members deal, then every member share its row.
func (h *harness) runDkg() {
	info := h.info()
	for _, a := range h.addrs[:info.Dealer] {
		require.NoError(h.t, h.shareDealer(a))
	}
	for _, a := range h.addrs {
		if h.member(a).Deleted {
			continue
		}
		require.NoError(h.t, h.shareRow(a))
	}
	require.Equal(h.t, types.PhaseWaitForRequest.String(), h.info().Status)
}

func (h *harness) request(sender string, input string, funds ...types.Coin) (uint64, error) {
	res, err := h.exec(sender, &RequestRandomMsg{Input: []byte(input)}, funds...)
	if err != nil {
		return 0, err
	}
	var out RequestRandomResponse
	require.NoError(h.t, json.Unmarshal(res.Response.Data, &out))
	return out.Round, nil
}

func (h *harness) sign(addr string, round uint64, input string) []byte {
	sig, err := h.signers[addr].Sign(dkg.RoundMessage([]byte(input), round))
	require.NoError(h.t, err)
	return sig
}

func (h *harness) submit(addr string, round uint64, sig []byte) (*host.TxResult, error) {
	return h.exec(addr, &UpdateShareSigMsg{Round: round, Sig: sig})
}

func u16(v uint16) *uint16 { return &v }

