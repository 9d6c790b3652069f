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
package types

import (
	"fmt"
)

//go:generate msgp -io=false

//msgp:tuple Coin
type Coin struct {
	Denom  string `json:"denom" yaml:"denom"`
	Amount uint64 `json:"amount" yaml:"amount"`
}

func NewCoin(amount uint64, denom string) Coin {
	return Coin{Denom: denom, Amount: amount}
}

func (c Coin) String() string {
	return fmt.Sprintf("%d%s", c.Amount, c.Denom)
}

func (c Coin) IsZero() bool {
	return c.Amount == 0
}

type Coins []Coin

// AmountOf sums every entry of the given denom.
func (cs Coins) AmountOf(denom string) uint64 {
	var total uint64
	for _, c := range cs {
		if c.Denom == denom {
			total += c.Amount
		}
	}
	return total
}

func (cs Coins) IsZero() bool {
	for _, c := range cs {
		if !c.IsZero() {
			return false
		}
	}
	return true
}
