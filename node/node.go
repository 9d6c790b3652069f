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
package node

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/annchain/vrfdkg/beacon"
	"github.com/annchain/vrfdkg/db"
	"github.com/annchain/vrfdkg/eventbus"
	"github.com/annchain/vrfdkg/host"
	"github.com/annchain/vrfdkg/metrics"
	"github.com/annchain/vrfdkg/rpc"
	"github.com/annchain/vrfdkg/types"
	"github.com/annchain/vrfdkg/wserver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

// Node is the basic entrypoint for all modules to start.
type Node struct {
	Config   *Config
	Database db.Database
	Chain    *host.Chain
	EventBus *eventbus.DefaultEventBus
	Metrics  *metrics.Collector
	Registry *prometheus.Registry
	Rounds   *RoundCache

	components []Component
}

// NewNode wires storage, the chain, the beacon contract and the outer
// servers. Genesis balances and the genesis instantiate message are applied
// once; later starts reuse the stored state.
func NewNode(cfg *Config) (*Node, error) {
	database, err := db.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	n := &Node{Config: cfg, Database: database}
	if err := n.setup(); err != nil {
		database.Close()
		return nil, err
	}
	return n, nil
}

func (n *Node) setup() error {
	cfg := n.Config
	chain, err := host.NewChain(n.Database, cfg.Contract, beacon.New())
	if err != nil {
		return err
	}
	n.Chain = chain

	n.Registry = prometheus.NewRegistry()
	n.Registry.MustRegister(collectors.NewGoCollector())
	n.Metrics = metrics.NewCollector(n.Registry)
	chain.SetObserver(n.Metrics)

	n.Rounds, err = NewRoundCache(chain, cfg.RoundCacheSize)
	if err != nil {
		return err
	}

	bus := &eventbus.DefaultEventBus{}
	bus.InitDefault()
	bus.ListenToAll(n.Metrics)

	// Order matters: components stop in reverse.
	if cfg.BlockInterval > 0 {
		n.components = append(n.components, NewBlockTicker(chain, cfg.BlockInterval))
	}
	if cfg.WebSocket.Enabled {
		ws := wserver.NewServer(":" + cfg.WebSocket.Port)
		if cfg.PushToken != "" {
			ws.PushAuth = func(r *http.Request) bool {
				return r.Header.Get("Authorization") == "Bearer "+cfg.PushToken
			}
		}
		bus.ListenToAll(ws)
		n.components = append(n.components, ws)
	}
	if cfg.RPC.Enabled {
		controller := &rpc.RpcController{Backend: n, Gatherer: n.Registry}
		n.components = append(n.components, rpc.NewRpcServer(cfg.RPC.Port, controller))
	}
	if cfg.MonitorInterval > 0 {
		monitor := NewPerformanceMonitor(cfg.MonitorInterval)
		monitor.Register(n.Rounds)
		monitor.Register(n)
		n.components = append(n.components, monitor)
	}
	bus.Build()
	n.EventBus = bus
	chain.SetRouter(bus)

	if err := chain.Genesis(cfg.Genesis.Balances); err != nil {
		return fmt.Errorf("apply genesis balances: %w", err)
	}
	return n.instantiateFromGenesis()
}

func (n *Node) instantiateFromGenesis() error {
	g := n.Config.Genesis
	if g.File == "" || n.Chain.Instantiated() {
		return nil
	}
	file, err := LoadGenesisFile(g.File)
	if err != nil {
		return err
	}
	msg, err := file.InstantiateMsg()
	if err != nil {
		return err
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	res, err := n.Chain.Instantiate(g.Owner, nil, b)
	if err != nil {
		return fmt.Errorf("instantiate from %s: %w", g.File, err)
	}
	logrus.WithFields(logrus.Fields{
		"owner":   g.Owner,
		"members": len(msg.Members),
		"tx":      res.TxID,
	}).Info("beacon instantiated from genesis file")
	return nil
}

func (n *Node) Start() {
	for _, component := range n.components {
		logrus.Infof("Starting %s", component.Name())
		component.Start()
		logrus.Infof("Started: %s", component.Name())
	}
	logrus.Info("Node Started")
}

func (n *Node) Stop() {
	for i := len(n.components) - 1; i >= 0; i-- {
		comp := n.components[i]
		logrus.Infof("Stopping %s", comp.Name())
		comp.Stop()
		logrus.Infof("Stopped: %s", comp.Name())
	}
	if err := n.Database.Close(); err != nil {
		logrus.WithError(err).Error("failed to close database")
	}
	logrus.Info("Node Stopped")
}

func (n *Node) Name() string {
	return "Node"
}

func (n *Node) GetBenchmarks() map[string]interface{} {
	return map[string]interface{}{
		"height":       n.Chain.Height(),
		"instantiated": n.Chain.Instantiated(),
	}
}

func (n *Node) Address() string {
	return n.Chain.Address()
}

func (n *Node) Height() uint64 {
	return n.Chain.Height()
}

func (n *Node) Instantiated() bool {
	return n.Chain.Instantiated()
}

func (n *Node) Instantiate(sender string, funds types.Coins, msg []byte) (*host.TxResult, error) {
	return n.Chain.Instantiate(sender, funds, msg)
}

func (n *Node) Execute(sender string, funds types.Coins, msg []byte) (*host.TxResult, error) {
	return n.Chain.Execute(sender, funds, msg)
}

func (n *Node) Query(msg []byte) ([]byte, error) {
	return n.Rounds.Query(msg)
}

func (n *Node) Balance(addr, denom string) (uint64, error) {
	return n.Chain.Balance(addr, denom)
}
