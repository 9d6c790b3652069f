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
	"encoding/json"
	"errors"
	"net/http"

	"github.com/annchain/vrfdkg/beacon"
	"github.com/annchain/vrfdkg/host"
	"github.com/annchain/vrfdkg/types"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Backend is the part of the node the rpc layer talks to.
type Backend interface {
	Address() string
	Height() uint64
	Instantiated() bool
	Instantiate(sender string, funds types.Coins, msg []byte) (*host.TxResult, error)
	Execute(sender string, funds types.Coins, msg []byte) (*host.TxResult, error)
	Query(msg []byte) ([]byte, error)
	Balance(addr, denom string) (uint64, error)
}

type RpcController struct {
	Backend  Backend
	Gatherer prometheus.Gatherer
}

//CallRequest for RPC request
type CallRequest struct {
	Sender string          `json:"sender" binding:"required"`
	Funds  types.Coins     `json:"funds"`
	Msg    json.RawMessage `json:"msg" binding:"required"`
}

// CallResult is the rendered outcome of a committed call.
type CallResult struct {
	TxID       string           `json:"tx_id"`
	Height     uint64           `json:"height"`
	Messages   []host.BankSend  `json:"messages,omitempty"`
	Attributes []host.Attribute `json:"attributes,omitempty"`
	Events     []host.Event     `json:"events,omitempty"`
	Data       json.RawMessage  `json:"data,omitempty"`
}

type NodeStatus struct {
	Contract     string          `json:"contract"`
	Height       uint64          `json:"height"`
	Instantiated bool            `json:"instantiated"`
	Info         json.RawMessage `json:"info,omitempty"`
}

type BalanceResponse struct {
	Address string     `json:"address"`
	Balance types.Coin `json:"balance"`
}

func cors(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
}

func newCallResult(res *host.TxResult) *CallResult {
	out := &CallResult{TxID: res.TxID, Height: res.Height}
	if resp := res.Response; resp != nil {
		out.Messages = resp.Messages
		out.Attributes = resp.Attributes
		out.Events = resp.Events
		if len(resp.Data) > 0 {
			out.Data = resp.Data
		}
	}
	return out
}

// statusOf maps a call or query failure to an http status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, host.ErrNotInstantiated), errors.Is(err, host.ErrAlreadyInstantiated),
		errors.Is(err, beacon.ErrPendingRound):
		return http.StatusConflict
	case errors.Is(err, beacon.ErrNoBeacon), errors.Is(err, beacon.ErrNoMember), errors.Is(err, host.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, beacon.ErrUnauthorized):
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

//Status node status
func (r *RpcController) Status(c *gin.Context) {
	status := NodeStatus{
		Contract:     r.Backend.Address(),
		Height:       r.Backend.Height(),
		Instantiated: r.Backend.Instantiated(),
	}
	if status.Instantiated {
		info, err := r.Backend.Query(beacon.MustEncodeMsg(beacon.ContractInfoQuery{}))
		if err != nil {
			logrus.WithError(err).Warn("failed to query contract info")
		} else {
			status.Info = info
		}
	}
	cors(c)
	Response(c, http.StatusOK, nil, status)
}

func (r *RpcController) Instantiate(c *gin.Context) {
	r.call(c, "instantiate", r.Backend.Instantiate)
}

func (r *RpcController) Execute(c *gin.Context) {
	r.call(c, "execute", r.Backend.Execute)
}

func (r *RpcController) call(c *gin.Context, kind string,
	fn func(sender string, funds types.Coins, msg []byte) (*host.TxResult, error)) {
	var req CallRequest
	cors(c)
	if err := c.ShouldBindJSON(&req); err != nil {
		Response(c, http.StatusBadRequest, errors.New("invalid request body: "+err.Error()), nil)
		return
	}
	res, err := fn(req.Sender, req.Funds, req.Msg)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"kind":   kind,
			"sender": req.Sender,
		}).Warn("call rejected")
		Response(c, statusOf(err), err, nil)
		return
	}
	Response(c, http.StatusOK, nil, newCallResult(res))
}

//Query runs a read-only contract query given as ?msg=<json> or as the request body
func (r *RpcController) Query(c *gin.Context) {
	cors(c)
	msg := []byte(c.Query("msg"))
	if len(msg) == 0 && c.Request.Body != nil {
		raw, err := c.GetRawData()
		if err != nil {
			Response(c, http.StatusBadRequest, err, nil)
			return
		}
		msg = raw
	}
	if len(msg) == 0 {
		Response(c, http.StatusBadRequest, errors.New("msg is required"), nil)
		return
	}
	out, err := r.Backend.Query(msg)
	if err != nil {
		Response(c, statusOf(err), err, nil)
		return
	}
	Response(c, http.StatusOK, nil, json.RawMessage(out))
}

//QueryBalance query balance
func (r *RpcController) QueryBalance(c *gin.Context) {
	address := c.Query("address")
	denom := c.Query("denom")
	cors(c)
	if address == "" || denom == "" {
		Response(c, http.StatusBadRequest, errors.New("address and denom are required"), nil)
		return
	}
	amount, err := r.Backend.Balance(address, denom)
	if err != nil {
		Response(c, http.StatusInternalServerError, err, nil)
		return
	}
	Response(c, http.StatusOK, nil, BalanceResponse{
		Address: address,
		Balance: types.NewCoin(amount, denom),
	})
}

func Response(c *gin.Context, status int, err error, data interface{}) {
	var msg string
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, gin.H{
		"err":  msg,
		"data": data,
	})
}
