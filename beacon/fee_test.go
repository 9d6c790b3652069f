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
)

func TestCheckFunds(t *testing.T) {
	fee := &types.Coin{Denom: "orai", Amount: 10}
	require.NoError(t, CheckFunds(nil, nil))
	require.NoError(t, CheckFunds(&types.Coin{Denom: "orai"}, nil))
	require.True(t, errors.Is(CheckFunds(fee, nil), ErrNoFundsSent))
	require.True(t, errors.Is(CheckFunds(fee, types.Coins{{Denom: "orai"}}), ErrNoFundsSent))
	require.True(t, errors.Is(CheckFunds(fee, types.Coins{{Denom: "orai", Amount: 9}}), ErrLessFundsSent))
	require.NoError(t, CheckFunds(fee, types.Coins{{Denom: "orai", Amount: 4}, {Denom: "orai", Amount: 6}}))
}

func TestPayoutWindow(t *testing.T) {
	fee := &types.Coin{Denom: "orai", Amount: 10}
	require.EqualValues(t, 3, FeeShare(fee, 3))
	require.Nil(t, Payout(fee, 0, 1, "a"))
	require.Nil(t, Payout(nil, 3, 1, "a"))
	require.Nil(t, Payout(&types.Coin{Denom: "orai", Amount: 2}, 3, 1, "a"))

	var total uint64
	for pos := 1; pos <= 5; pos++ {
		if p := Payout(fee, 3, pos, "a"); p != nil {
			total += p.Amount.AmountOf("orai")
		}
	}
	require.EqualValues(t, 12, total)
	require.NotNil(t, Payout(fee, 3, 4, "a"))
	require.Nil(t, Payout(fee, 3, 5, "a"))
}
