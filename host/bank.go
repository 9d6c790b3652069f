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
	"math"

	"github.com/annchain/vrfdkg/types"
)

var bankPrefix = []byte("bank/")

// addresses are length-prefixed with one byte in balance keys
const maxAddressLen = 255

var ErrAddressTooLong = errors.New("address too long")

type InsufficientFundsError struct {
	Address string
	Denom   string
	Need    uint64
	Have    uint64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: %s has %d%s, needs %d%s", e.Address, e.Have, e.Denom, e.Need, e.Denom)
}

// Bank keeps native balances as big-endian uint64 under bank/<len><addr><denom>.
type Bank struct {
	store Store
}

func NewBank(store Store) *Bank {
	return &Bank{store: NewPrefixStore(store, bankPrefix)}
}

func checkAddress(addr string) error {
	if len(addr) > maxAddressLen {
		return fmt.Errorf("%w: %d bytes", ErrAddressTooLong, len(addr))
	}
	return nil
}

func balanceKey(addr, denom string) []byte {
	k := make([]byte, 0, 1+len(addr)+len(denom))
	k = append(k, byte(len(addr)))
	k = append(k, addr...)
	return append(k, denom...)
}

func (b *Bank) Balance(addr, denom string) (uint64, error) {
	if err := checkAddress(addr); err != nil {
		return 0, err
	}
	v, err := b.store.Get(balanceKey(addr, denom))
	if err == ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(v) != 8 {
		return 0, fmt.Errorf("corrupted balance of %s", addr)
	}
	return binary.BigEndian.Uint64(v), nil
}

func (b *Bank) setBalance(addr, denom string, amount uint64) error {
	if amount == 0 {
		return b.store.Delete(balanceKey(addr, denom))
	}
	v := make([]byte, 8)
	binary.BigEndian.PutUint64(v, amount)
	return b.store.Set(balanceKey(addr, denom), v)
}

func (b *Bank) Mint(to string, coins types.Coins) error {
	if err := checkAddress(to); err != nil {
		return err
	}
	for _, c := range coins {
		have, err := b.Balance(to, c.Denom)
		if err != nil {
			return err
		}
		if math.MaxUint64-have < c.Amount {
			return fmt.Errorf("balance overflow for %s", to)
		}
		if err := b.setBalance(to, c.Denom, have+c.Amount); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bank) Send(from, to string, coins types.Coins) error {
	if err := checkAddress(from); err != nil {
		return err
	}
	if err := checkAddress(to); err != nil {
		return err
	}
	for _, c := range coins {
		if c.Amount == 0 {
			continue
		}
		have, err := b.Balance(from, c.Denom)
		if err != nil {
			return err
		}
		if have < c.Amount {
			return &InsufficientFundsError{Address: from, Denom: c.Denom, Need: c.Amount, Have: have}
		}
		if err := b.setBalance(from, c.Denom, have-c.Amount); err != nil {
			return err
		}
		if err := b.Mint(to, types.Coins{c}); err != nil {
			return err
		}
	}
	return nil
}
