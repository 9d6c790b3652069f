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
package dkg

import (
	"errors"
	"fmt"

	"github.com/annchain/kyber/v3"
	"github.com/annchain/kyber/v3/encrypt/ecies"
	"github.com/annchain/kyber/v3/group/edwards25519"
	"github.com/annchain/kyber/v3/share"
	"github.com/annchain/kyber/v3/sign/tbls"
)

// Member long-term keys are ed25519 points; dealers encrypt each member's
// row scalar to that key.
var keySuite = edwards25519.NewBlakeSHA256Ed25519()

type KeyPair struct {
	Private kyber.Scalar
	Public  kyber.Point
}

func GenerateKeyPair() *KeyPair {
	sk := keySuite.Scalar().Pick(keySuite.RandomStream())
	return &KeyPair{Private: sk, Public: keySuite.Point().Mul(sk, nil)}
}

func (k *KeyPair) PublicBytes() []byte {
	b, _ := k.Public.MarshalBinary()
	return b
}

func (k *KeyPair) PrivateBytes() []byte {
	b, _ := k.Private.MarshalBinary()
	return b
}

// KeyPairFromPrivate restores a key pair saved with PrivateBytes.
func KeyPairFromPrivate(b []byte) (*KeyPair, error) {
	sk := keySuite.Scalar()
	if err := sk.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("member private key: %w", err)
	}
	return &KeyPair{Private: sk, Public: keySuite.Point().Mul(sk, nil)}, nil
}

func (k *KeyPair) Decrypt(ct []byte) ([]byte, error) {
	return ecies.Decrypt(keySuite, k.Private, ct, keySuite.Hash)
}

func EncryptTo(pubkey []byte, msg []byte) ([]byte, error) {
	pk := keySuite.Point()
	if err := pk.UnmarshalBinary(pubkey); err != nil {
		return nil, fmt.Errorf("member pubkey: %w", err)
	}
	return ecies.Encrypt(keySuite, pk, msg, keySuite.Hash)
}

// Dealer holds one member's secret polynomial of degree threshold.
type Dealer struct {
	poly      *share.PriPoly
	threshold int
}

func NewDealer(threshold int) *Dealer {
	g := suite.G2()
	return &Dealer{
		poly:      share.NewPriPoly(g, threshold+1, nil, suite.RandomStream()),
		threshold: threshold,
	}
}

func (d *Dealer) Commits() [][]byte {
	_, points := d.poly.Commit(suite.G2().Point().Base()).Info()
	out := make([][]byte, len(points))
	for i, p := range points {
		out[i] = EncodePoint(p)
	}
	return out
}

// Row is the dealer polynomial evaluated at the member's index.
func (d *Dealer) Row(index uint16) kyber.Scalar {
	return d.poly.Eval(int(index)).V
}

// EncryptedRows encrypts the row of every member to its public key, in
// member index order.
func (d *Dealer) EncryptedRows(pubkeys [][]byte) ([][]byte, error) {
	rows := make([][]byte, len(pubkeys))
	for i, pk := range pubkeys {
		plain, err := d.Row(uint16(i)).MarshalBinary()
		if err != nil {
			return nil, err
		}
		if rows[i], err = EncryptTo(pk, plain); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// Signer is a member's share of the group secret: the sum of every dealer's
// row at the member's index.
type Signer struct {
	priv *share.PriShare
}

func NewSigner(index uint16, rows []kyber.Scalar) (*Signer, error) {
	if len(rows) == 0 {
		return nil, errors.New("no dealer rows")
	}
	sum := suite.G2().Scalar().Zero()
	for _, r := range rows {
		sum = sum.Add(sum, r)
	}
	return &Signer{priv: &share.PriShare{I: int(index), V: sum}}, nil
}

// NewSignerFromEncrypted decrypts the member's row from each dealer's
// encrypted rows and sums them.
func NewSignerFromEncrypted(index uint16, key *KeyPair, encrypted [][]byte) (*Signer, error) {
	rows := make([]kyber.Scalar, 0, len(encrypted))
	for i, ct := range encrypted {
		plain, err := key.Decrypt(ct)
		if err != nil {
			return nil, fmt.Errorf("row from dealer %d: %w", i, err)
		}
		s := suite.G2().Scalar()
		if err := s.UnmarshalBinary(plain); err != nil {
			return nil, err
		}
		rows = append(rows, s)
	}
	return NewSigner(index, rows)
}

func (s *Signer) Index() uint16 {
	return uint16(s.priv.I)
}

func (s *Signer) PublicShare() []byte {
	return EncodePoint(suite.G2().Point().Mul(s.priv.V, nil))
}

func (s *Signer) Sign(msg []byte) ([]byte, error) {
	return tbls.Sign(suite, s.priv, msg)
}
