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
package host

import (
	"fmt"
	"time"

	"github.com/annchain/vrfdkg/types"
)

type Env struct {
	BlockHeight uint64
	BlockTime   time.Time
	Contract    string
	TxID        string
}

type MessageInfo struct {
	Sender string
	Funds  types.Coins
}

// BankSend moves coins from the contract to ToAddress. It runs inside the
// same transaction as the call that returned it.
type BankSend struct {
	ToAddress string      `json:"to_address"`
	Amount    types.Coins `json:"amount"`
}

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Event struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes"`
}

func NewEvent(typ string) Event {
	return Event{Type: typ}
}

func (e Event) Add(key string, value interface{}) Event {
	e.Attributes = append(e.Attributes, Attribute{Key: key, Value: fmt.Sprint(value)})
	return e
}

type Response struct {
	Messages   []BankSend  `json:"messages,omitempty"`
	Attributes []Attribute `json:"attributes,omitempty"`
	Events     []Event     `json:"events,omitempty"`
	Data       []byte      `json:"data,omitempty"`
}

func NewResponse() *Response {
	return &Response{}
}

func (r *Response) AddAttribute(key string, value interface{}) *Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: fmt.Sprint(value)})
	return r
}

func (r *Response) AddMessage(m BankSend) *Response {
	r.Messages = append(r.Messages, m)
	return r
}

func (r *Response) AddEvent(e Event) *Response {
	r.Events = append(r.Events, e)
	return r
}

func (r *Response) SetData(data []byte) *Response {
	r.Data = data
	return r
}

// Attribute returns the first attribute with the given key.
func (r *Response) Attribute(key string) (string, bool) {
	for _, a := range r.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Contract is a message-dispatch handler run by the chain.
type Contract interface {
	Instantiate(store Store, env Env, info MessageInfo, msg []byte) (*Response, error)
	Execute(store Store, env Env, info MessageInfo, msg []byte) (*Response, error)
	Query(store Store, env Env, msg []byte) ([]byte, error)
}
