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
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/annchain/vrfdkg/db"
	"github.com/annchain/vrfdkg/eventbus"
	"github.com/annchain/vrfdkg/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

var (
	contractPrefix  = []byte("wasm/")
	heightKey       = []byte("chain/height")
	instantiatedKey = []byte("chain/instantiated")
	genesisKey      = []byte("chain/genesis")
)

var (
	ErrNotInstantiated     = errors.New("contract is not instantiated")
	ErrAlreadyInstantiated = errors.New("contract is already instantiated")
)

type Router interface {
	Route(ev eventbus.Event)
}

type CallObserver interface {
	CallExecuted(kind string, err error)
	SetBlockHeight(height uint64)
}

type TxResult struct {
	TxID     string    `json:"tx_id"`
	Height   uint64    `json:"height"`
	Response *Response `json:"response"`
}

// Chain runs one contract on top of a database. Calls are serialized and each
// runs in its own database transaction: a failing call leaves no trace.
type Chain struct {
	mu       sync.Mutex
	db       db.Database
	address  string
	contract Contract
	height   *atomic.Uint64
	router   Router
	observer CallObserver
	now      func() time.Time
}

func NewChain(database db.Database, address string, contract Contract) (*Chain, error) {
	c := &Chain{
		db:       database,
		address:  address,
		contract: contract,
		height:   atomic.NewUint64(0),
		now:      time.Now,
	}
	err := database.View(func(r db.Reader) error {
		v, err := r.Get(heightKey)
		if err == db.ErrNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		c.height.Store(binary.BigEndian.Uint64(v))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load chain height: %w", err)
	}
	return c, nil
}

func (c *Chain) SetRouter(r Router) {
	c.router = r
}

func (c *Chain) SetObserver(o CallObserver) {
	c.observer = o
}

func (c *Chain) Address() string {
	return c.address
}

func (c *Chain) Height() uint64 {
	return c.height.Load()
}

// AdvanceBlocks moves the block height forward without running a call.
func (c *Chain) AdvanceBlocks(n uint64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.height.Add(n)
	if c.observer != nil {
		c.observer.SetBlockHeight(h)
	}
	return h
}

// Genesis credits the initial balances. It is applied at most once per
// database.
func (c *Chain) Genesis(balances map[string]types.Coins) error {
	var applied bool
	if err := c.db.View(func(r db.Reader) error {
		var err error
		applied, err = r.Has(genesisKey)
		return err
	}); err != nil || applied {
		return err
	}
	_, err := c.apply("genesis", func(store Store, env Env) (*Response, error) {
		if ok, err := store.Has(genesisKey); err != nil || ok {
			return nil, err
		}
		bank := NewBank(store)
		for addr, coins := range balances {
			if err := bank.Mint(addr, coins); err != nil {
				return nil, err
			}
		}
		return NewResponse(), store.Set(genesisKey, []byte{1})
	})
	return err
}

func (c *Chain) Instantiated() bool {
	var ok bool
	err := c.db.View(func(r db.Reader) error {
		var err error
		ok, err = r.Has(instantiatedKey)
		return err
	})
	return err == nil && ok
}

func (c *Chain) Instantiate(sender string, funds types.Coins, msg []byte) (*TxResult, error) {
	return c.apply("instantiate", func(store Store, env Env) (*Response, error) {
		if ok, err := store.Has(instantiatedKey); err != nil {
			return nil, err
		} else if ok {
			return nil, ErrAlreadyInstantiated
		}
		if err := store.Set(instantiatedKey, []byte(sender)); err != nil {
			return nil, err
		}
		return c.call(store, env, sender, funds, func(cs Store, info MessageInfo) (*Response, error) {
			return c.contract.Instantiate(cs, env, info, msg)
		})
	})
}

func (c *Chain) Execute(sender string, funds types.Coins, msg []byte) (*TxResult, error) {
	return c.apply("execute", func(store Store, env Env) (*Response, error) {
		if ok, err := store.Has(instantiatedKey); err != nil {
			return nil, err
		} else if !ok {
			return nil, ErrNotInstantiated
		}
		return c.call(store, env, sender, funds, func(cs Store, info MessageInfo) (*Response, error) {
			return c.contract.Execute(cs, env, info, msg)
		})
	})
}

func (c *Chain) Query(msg []byte) ([]byte, error) {
	var out []byte
	err := c.db.View(func(r db.Reader) error {
		store := NewReadOnlyStore(r)
		if ok, err := store.Has(instantiatedKey); err != nil {
			return err
		} else if !ok {
			return ErrNotInstantiated
		}
		env := Env{BlockHeight: c.height.Load(), BlockTime: c.now(), Contract: c.address}
		var err error
		out, err = c.contract.Query(NewPrefixStore(store, contractPrefix), env, msg)
		return err
	})
	if c.observer != nil {
		c.observer.CallExecuted("query", err)
	}
	return out, err
}

func (c *Chain) Balance(addr, denom string) (uint64, error) {
	var amount uint64
	err := c.db.View(func(r db.Reader) error {
		var err error
		amount, err = NewBank(NewReadOnlyStore(r)).Balance(addr, denom)
		return err
	})
	return amount, err
}

// call moves the attached funds to the contract, runs the handler and then
// executes the bank messages it returned.
func (c *Chain) call(store Store, env Env, sender string, funds types.Coins,
	handler func(cs Store, info MessageInfo) (*Response, error)) (*Response, error) {
	bank := NewBank(store)
	if err := bank.Send(sender, c.address, funds); err != nil {
		return nil, err
	}
	resp, err := handler(NewPrefixStore(store, contractPrefix), MessageInfo{Sender: sender, Funds: funds})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		resp = NewResponse()
	}
	for _, m := range resp.Messages {
		if err := bank.Send(c.address, m.ToAddress, m.Amount); err != nil {
			return nil, fmt.Errorf("bank send to %s: %w", m.ToAddress, err)
		}
	}
	return resp, nil
}

func (c *Chain) apply(kind string, fn func(store Store, env Env) (*Response, error)) (result *TxResult, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() {
		if c.observer != nil {
			c.observer.CallExecuted(kind, err)
		}
	}()

	height := c.height.Load() + 1
	env := Env{
		BlockHeight: height,
		BlockTime:   c.now(),
		Contract:    c.address,
		TxID:        uuid.New().String(),
	}
	tx, err := c.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	store := NewTxStore(tx)
	resp, err := fn(store, env)
	if err != nil {
		tx.Discard()
		logrus.WithError(err).WithFields(logrus.Fields{
			"kind":   kind,
			"tx":     env.TxID,
			"height": height,
		}).Debug("call rejected")
		return nil, err
	}
	hb := make([]byte, 8)
	binary.BigEndian.PutUint64(hb, height)
	if err = store.Set(heightKey, hb); err != nil {
		tx.Discard()
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		tx.Discard()
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	c.height.Store(height)
	if c.observer != nil {
		c.observer.SetBlockHeight(height)
	}
	logrus.WithFields(logrus.Fields{
		"kind":   kind,
		"tx":     env.TxID,
		"height": height,
	}).Trace("call committed")

	c.routeEvents(env, resp)
	return &TxResult{TxID: env.TxID, Height: height, Response: resp}, nil
}

func (c *Chain) routeEvents(env Env, resp *Response) {
	if c.router == nil || resp == nil {
		return
	}
	for _, ev := range resp.Events {
		attrs := make(map[string]string, len(ev.Attributes))
		for _, a := range ev.Attributes {
			attrs[a.Key] = a.Value
		}
		c.router.Route(&eventbus.ContractEvent{
			Type:       eventbus.ParseEventType(ev.Type),
			Name:       ev.Type,
			TxID:       env.TxID,
			Height:     env.BlockHeight,
			Attributes: attrs,
		})
	}
}
