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
	"errors"
	"testing"

	"github.com/annchain/vrfdkg/eventbus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollectorCountsEvents(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.HandleEvent(&eventbus.ContractEvent{Type: eventbus.EventRoundRequested})
	c.HandleEvent(&eventbus.ContractEvent{
		Type:       eventbus.EventSignatureAccepted,
		Attributes: map[string]string{"fee_amount": "50", "fee_denom": "orai"},
	})
	c.HandleEvent(&eventbus.ContractEvent{
		Type:       eventbus.EventSignatureAccepted,
		Attributes: map[string]string{"fee_amount": "50", "fee_denom": "orai"},
	})
	c.HandleEvent(&eventbus.ContractEvent{
		Type:       eventbus.EventPhaseChanged,
		Attributes: map[string]string{"phase_code": "2", "epoch": "3"},
	})
	c.CallExecuted("execute", nil)
	c.CallExecuted("execute", errors.New("rejected"))

	require.Equal(t, 1.0, testutil.ToFloat64(c.roundsRequested))
	require.Equal(t, 2.0, testutil.ToFloat64(c.signaturesAccepted))
	require.Equal(t, 100.0, testutil.ToFloat64(c.feePaid.WithLabelValues("orai")))
	require.Equal(t, 2.0, testutil.ToFloat64(c.phase))
	require.Equal(t, 3.0, testutil.ToFloat64(c.epoch))
	require.Equal(t, 1.0, testutil.ToFloat64(c.calls.WithLabelValues("execute", "error")))
}
