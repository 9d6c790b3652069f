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
	"errors"
	"testing"

	"github.com/annchain/vrfdkg/types"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// Random interleavings of round requests and signature submissions keep
// rounds monotonic, allow one open round at a time and pay fee/threshold to
// each of at most threshold+1 signers of a round.
func TestRoundProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		const n = 4
		threshold := rapid.Uint16Range(1, 2).Draw(rt, "threshold")
		amount := rapid.Uint64Range(1, 1000).Draw(rt, "fee")
		fee := types.NewCoin(amount, "orai")

		h := newHarness(rt, n, threshold, nil, &fee)
		h.fund("client", types.NewCoin(amount*50, "orai"))
		h.fund("beacon", types.NewCoin(amount*50, "orai"))
		h.instantiate()
		h.runDkg()

		var (
			lastRound uint64
			open      bool
			paid      = map[uint64]uint64{}
			accepted  = map[uint64]int{}
		)
		steps := rapid.IntRange(1, 25).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			if rapid.Bool().Draw(rt, "request") {
				round, err := h.request("client", "input", fee)
				if open {
					require.True(rt, errors.Is(err, ErrPendingRound))
					continue
				}
				require.NoError(rt, err)
				require.Equal(rt, lastRound+1, round)
				lastRound, open = round, true
				continue
			}
			if lastRound == 0 {
				continue
			}
			addr := h.addrs[rapid.IntRange(0, n-1).Draw(rt, "signer")]
			res, err := h.submit(addr, lastRound, h.sign(addr, lastRound, "input"))
			record := h.round(lastRound)
			if err != nil {
				require.True(rt, errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrRoundClosed), "%v", err)
				continue
			}
			accepted[lastRound]++
			for _, m := range res.Response.Messages {
				require.Equal(rt, addr, m.ToAddress)
				paid[lastRound] += m.Amount.AmountOf("orai")
			}
			require.Equal(rt, accepted[lastRound], len(record.Sigs))
			require.LessOrEqual(rt, accepted[lastRound], int(threshold)+1)
			if record.IsClosed() {
				open = false
			}
		}
		for round, total := range paid {
			want := amount / uint64(threshold) * uint64(min(accepted[round], int(threshold)+1))
			require.Equal(rt, want, total)
		}
	})
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
