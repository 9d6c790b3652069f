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
	"github.com/annchain/vrfdkg/host"
	"github.com/annchain/vrfdkg/types"
)

// CheckFunds verifies the attached funds cover the configured fee.
func CheckFunds(fee *types.Coin, funds types.Coins) error {
	if fee == nil || fee.IsZero() {
		return nil
	}
	var (
		sent  bool
		total uint64
	)
	for _, c := range funds {
		if c.Denom == fee.Denom {
			sent = true
			total += c.Amount
		}
	}
	if !sent || total == 0 {
		return &NoFundsSentError{Denom: fee.Denom}
	}
	if total < fee.Amount {
		return &LessFundsSentError{Denom: fee.Denom, Expected: fee.Amount, Got: total}
	}
	return nil
}

// FeeShare is the reward of one signer: fee/threshold, truncated. Nothing is
// paid without a fee or with a zero threshold.
func FeeShare(fee *types.Coin, threshold uint16) uint64 {
	if fee == nil || threshold == 0 {
		return 0
	}
	return fee.Amount / uint64(threshold)
}

// Payout rewards the signer accepted at the given 1-based position of a
// round. Every accepted signer up to the aggregating one, threshold+1 in
// total, gets fee/threshold. The contract pays from its own balance, so it
// has to hold more than the fees collected; an uncovered payout aborts the
// submission.
func Payout(fee *types.Coin, threshold uint16, position int, to string) *host.BankSend {
	amount := FeeShare(fee, threshold)
	if amount == 0 || position < 1 || position > int(threshold)+1 {
		return nil
	}
	return &host.BankSend{
		ToAddress: to,
		Amount:    types.Coins{types.NewCoin(amount, fee.Denom)},
	}
}
