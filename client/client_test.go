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
package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/annchain/vrfdkg/beacon"
	"github.com/annchain/vrfdkg/db"
	"github.com/annchain/vrfdkg/dkg"
	"github.com/annchain/vrfdkg/host"
	"github.com/annchain/vrfdkg/rpc"
	"github.com/annchain/vrfdkg/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	gin.SetMode(gin.TestMode)
	d, err := db.NewMemDatabase()
	require.NoError(t, err)
	chain, err := host.NewChain(d, "beacon", beacon.New())
	require.NoError(t, err)
	require.NoError(t, chain.Genesis(map[string]types.Coins{"alice": {types.NewCoin(50, "uatom")}}))
	controller := &rpc.RpcController{Backend: chain}
	ts := httptest.NewServer(controller.NewRouter())
	t.Cleanup(ts.Close)
	return NewClient(ts.URL+"/", 5*time.Second)
}

func TestClientRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	status, err := c.Status(ctx)
	require.NoError(t, err)
	require.False(t, status.Instantiated)

	keys := []*dkg.KeyPair{dkg.GenerateKeyPair(), dkg.GenerateKeyPair()}
	res, err := c.Instantiate(ctx, "owner", &beacon.InstantiateMsg{
		Members: []types.MemberMsg{
			{Address: "m0", PubKey: keys[0].PublicBytes()},
			{Address: "m1", PubKey: keys[1].PublicBytes()},
		},
		Threshold: 1,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.TxID)

	var info beacon.ContractInfoResponse
	require.NoError(t, c.Query(ctx, &beacon.ContractInfoQuery{}, &info))
	require.Equal(t, uint16(2), info.Total)
	require.Equal(t, uint16(2), info.Dealer)

	var m types.Member
	require.NoError(t, c.Query(ctx, &beacon.GetMemberQuery{Address: "m1"}, &m))
	require.Equal(t, uint16(1), m.Index)

	coin, err := c.Balance(ctx, "alice", "uatom")
	require.NoError(t, err)
	require.Equal(t, uint64(50), coin.Amount)
}

func TestClientRemoteError(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.Execute(ctx, "alice", &beacon.RestartDkgMsg{})
	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	require.Equal(t, http.StatusConflict, remote.Status)

	err = c.Query(ctx, &beacon.LatestRoundQuery{}, nil)
	require.True(t, errors.As(err, &remote))
}
