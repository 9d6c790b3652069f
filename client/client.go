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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/annchain/vrfdkg/beacon"
	"github.com/annchain/vrfdkg/rpc"
	"github.com/annchain/vrfdkg/types"
	"github.com/sirupsen/logrus"
)

func newTransport(timeOut time.Duration) *http.Transport {
	return &http.Transport{
		MaxIdleConnsPerHost: 15,
		Proxy:               http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeOut,
			KeepAlive: timeOut * 3,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       timeOut * 9,
		TLSHandshakeTimeout:   timeOut,
		ExpectContinueTimeout: timeOut / 10,
	}
}

// RemoteError is a failure reported by the node.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("node returned %d: %s", e.Status, e.Message)
}

// Client talks to a node's rpc server.
type Client struct {
	httpClient *http.Client
	Host       string
	Debug      bool
}

func NewClient(host string, timeOut time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   timeOut,
			Transport: newTransport(timeOut),
		},
		Host: strings.TrimRight(host, "/"),
	}
}

type envelope struct {
	Err  string          `json:"err"`
	Data json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, uri string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Host+"/"+uri, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if c.Debug {
		logrus.WithField("uri", uri).WithField("resp", string(raw)).Debug("rpc response")
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &RemoteError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	if resp.StatusCode != http.StatusOK || env.Err != "" {
		return &RemoteError{Status: resp.StatusCode, Message: env.Err}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func (c *Client) Status(ctx context.Context) (*rpc.NodeStatus, error) {
	var status rpc.NodeStatus
	if err := c.do(ctx, http.MethodGet, "status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) Instantiate(ctx context.Context, sender string, msg *beacon.InstantiateMsg, funds ...types.Coin) (*rpc.CallResult, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return c.call(ctx, "instantiate", sender, funds, b)
}

func (c *Client) Execute(ctx context.Context, sender string, msg beacon.ExecuteMsg, funds ...types.Coin) (*rpc.CallResult, error) {
	b, err := beacon.EncodeMsg(msg)
	if err != nil {
		return nil, err
	}
	return c.ExecuteRaw(ctx, sender, b, funds...)
}

// ExecuteRaw sends an already encoded execute message.
func (c *Client) ExecuteRaw(ctx context.Context, sender string, msg []byte, funds ...types.Coin) (*rpc.CallResult, error) {
	return c.call(ctx, "execute", sender, funds, msg)
}

func (c *Client) call(ctx context.Context, uri, sender string, funds []types.Coin, msg []byte) (*rpc.CallResult, error) {
	var res rpc.CallResult
	err := c.do(ctx, http.MethodPost, uri, rpc.CallRequest{
		Sender: sender,
		Funds:  types.Coins(funds),
		Msg:    msg,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Query decodes the answer of a contract query into out.
func (c *Client) Query(ctx context.Context, msg beacon.QueryMsg, out interface{}) error {
	b, err := beacon.EncodeMsg(msg)
	if err != nil {
		return err
	}
	return c.QueryRaw(ctx, b, out)
}

func (c *Client) QueryRaw(ctx context.Context, msg []byte, out interface{}) error {
	return c.do(ctx, http.MethodGet, "query?msg="+url.QueryEscape(string(msg)), nil, out)
}

func (c *Client) Balance(ctx context.Context, address, denom string) (types.Coin, error) {
	var res rpc.BalanceResponse
	uri := fmt.Sprintf("balance?address=%s&denom=%s", url.QueryEscape(address), url.QueryEscape(denom))
	if err := c.do(ctx, http.MethodGet, uri, nil, &res); err != nil {
		return types.Coin{}, err
	}
	return res.Balance, nil
}
