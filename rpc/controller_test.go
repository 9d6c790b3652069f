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
package rpc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/annchain/vrfdkg/beacon"
	"github.com/annchain/vrfdkg/db"
	"github.com/annchain/vrfdkg/dkg"
	"github.com/annchain/vrfdkg/host"
	"github.com/annchain/vrfdkg/metrics"
	"github.com/annchain/vrfdkg/types"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Err  string          `json:"err"`
	Data json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *host.Chain) {
	gin.SetMode(gin.TestMode)
	d, err := db.NewMemDatabase()
	require.NoError(t, err)
	chain, err := host.NewChain(d, "beacon", beacon.New())
	require.NoError(t, err)
	require.NoError(t, chain.Genesis(map[string]types.Coins{
		"alice": {types.NewCoin(100, "uatom")},
	}))
	reg := prometheus.NewRegistry()
	chain.SetObserver(metrics.NewCollector(reg))
	controller := &RpcController{Backend: chain, Gatherer: reg}
	return controller.NewRouter(), chain
}

func do(t *testing.T, router http.Handler, method, target string, body interface{}) (int, envelope) {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func instantiateBody(t *testing.T) CallRequest {
	key := dkg.GenerateKeyPair()
	msg, err := json.Marshal(beacon.InstantiateMsg{
		Members:   []types.MemberMsg{{Address: "m0", PubKey: key.PublicBytes()}},
		Threshold: 0,
		Fee:       &types.Coin{Denom: "uatom", Amount: 10},
	})
	require.NoError(t, err)
	return CallRequest{Sender: "owner", Msg: msg}
}

func TestPingAndEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	code, _ := do(t, router, http.MethodGet, "/ping", nil)
	require.Equal(t, http.StatusOK, code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "balance?address=_&denom=_")
}

func TestInstantiateAndQuery(t *testing.T) {
	router, _ := newTestRouter(t)

	code, env := do(t, router, http.MethodGet, "/query?msg="+url.QueryEscape(`{"contract_info":{}}`), nil)
	require.Equal(t, http.StatusConflict, code)
	require.NotEmpty(t, env.Err)

	code, env = do(t, router, http.MethodPost, "/instantiate", instantiateBody(t))
	require.Equal(t, http.StatusOK, code, env.Err)
	var res CallResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.NotEmpty(t, res.TxID)
	require.Equal(t, uint64(2), res.Height)

	code, env = do(t, router, http.MethodPost, "/instantiate", instantiateBody(t))
	require.Equal(t, http.StatusConflict, code)

	code, env = do(t, router, http.MethodGet, "/query?msg="+url.QueryEscape(`{"contract_info":{}}`), nil)
	require.Equal(t, http.StatusOK, code, env.Err)
	var info beacon.ContractInfoResponse
	require.NoError(t, json.Unmarshal(env.Data, &info))
	require.Equal(t, "owner", info.Owner)
	require.Equal(t, uint16(1), info.Total)
	require.Equal(t, "WaitForDealer", info.Status)

	code, env = do(t, router, http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, code)
	var status NodeStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	require.True(t, status.Instantiated)
	require.Equal(t, "beacon", status.Contract)
	require.NotEmpty(t, status.Info)

	code, _ = do(t, router, http.MethodGet, "/query?msg="+url.QueryEscape(`{"get_round":{"round":7}}`), nil)
	require.Equal(t, http.StatusNotFound, code)
}

func TestExecuteErrors(t *testing.T) {
	router, _ := newTestRouter(t)
	code, env := do(t, router, http.MethodPost, "/instantiate", instantiateBody(t))
	require.Equal(t, http.StatusOK, code, env.Err)

	code, env = do(t, router, http.MethodPost, "/execute", map[string]string{"sender": "alice"})
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, env.Err, "invalid request body")

	code, env = do(t, router, http.MethodPost, "/execute", CallRequest{
		Sender: "alice",
		Funds:  types.Coins{types.NewCoin(10, "uatom")},
		Msg:    json.RawMessage(`{"request_random":{"input":"aGVsbG8="}}`),
	})
	require.Equal(t, http.StatusForbidden, code)
	require.Contains(t, env.Err, "WaitForDealer")

	// rejected call moved no funds
	code, env = do(t, router, http.MethodGet, "/balance?address=alice&denom=uatom", nil)
	require.Equal(t, http.StatusOK, code)
	var bal BalanceResponse
	require.NoError(t, json.Unmarshal(env.Data, &bal))
	require.Equal(t, uint64(100), bal.Balance.Amount)

	code, _ = do(t, router, http.MethodGet, "/balance?address=alice", nil)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	do(t, router, http.MethodPost, "/instantiate", instantiateBody(t))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "vrfdkg_host_calls_total")
}
