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
package metrics

import (
	"strconv"

	"github.com/annchain/vrfdkg/eventbus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

const namespace = "vrfdkg"

// Collector holds the node's prometheus metrics. Contract level counters are
// fed from the event bus; host level counters are fed by the chain directly.
type Collector struct {
	calls              *prometheus.CounterVec
	blockHeight        prometheus.Gauge
	roundsRequested    prometheus.Counter
	roundsFinalized    prometheus.Counter
	signaturesAccepted prometheus.Counter
	feePaid            *prometheus.CounterVec
	phase              prometheus.Gauge
	epoch              prometheus.Gauge
}

func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		calls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "host",
			Name:      "calls_total",
			Help:      "contract calls by kind and result",
		}, []string{"kind", "result"}),
		blockHeight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "host",
			Name:      "block_height",
			Help:      "current block height",
		}),
		roundsRequested: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "beacon",
			Name:      "rounds_requested_total",
			Help:      "randomness rounds opened",
		}),
		roundsFinalized: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "beacon",
			Name:      "rounds_finalized_total",
			Help:      "randomness rounds with a combined signature",
		}),
		signaturesAccepted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "beacon",
			Name:      "signatures_accepted_total",
			Help:      "signature shares accepted",
		}),
		feePaid: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "beacon",
			Name:      "fee_paid_total",
			Help:      "fee paid to signers by denom",
		}, []string{"denom"}),
		phase: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "beacon",
			Name:      "phase",
			Help:      "current dkg phase: 0 dealer, 1 row, 2 request",
		}),
		epoch: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "beacon",
			Name:      "epoch",
			Help:      "current dkg epoch",
		}),
	}
}

func (c *Collector) CallExecuted(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.calls.WithLabelValues(kind, result).Inc()
}

func (c *Collector) SetBlockHeight(height uint64) {
	c.blockHeight.Set(float64(height))
}

func (c *Collector) Name() string {
	return "metrics"
}

func (c *Collector) HandlerDescription(t eventbus.EventType) string {
	return "count " + t.String()
}

func (c *Collector) HandleEvent(ev eventbus.Event) {
	ce, ok := ev.(*eventbus.ContractEvent)
	if !ok {
		return
	}
	switch ce.Type {
	case eventbus.EventRoundRequested:
		c.roundsRequested.Inc()
	case eventbus.EventRoundFinalized:
		c.roundsFinalized.Inc()
	case eventbus.EventSignatureAccepted:
		c.signaturesAccepted.Inc()
		if amount, ok := ce.Attributes["fee_amount"]; ok {
			v, err := strconv.ParseUint(amount, 10, 64)
			if err != nil {
				logrus.WithError(err).WithField("v", amount).Warn("bad fee amount in event")
				return
			}
			c.feePaid.WithLabelValues(ce.Attributes["fee_denom"]).Add(float64(v))
		}
	case eventbus.EventPhaseChanged, eventbus.EventMembersUpdated:
		if p, err := strconv.Atoi(ce.Attributes["phase_code"]); err == nil {
			c.phase.Set(float64(p))
		}
		if e, err := strconv.ParseUint(ce.Attributes["epoch"], 10, 64); err == nil {
			c.epoch.Set(float64(e))
		}
	}
}
