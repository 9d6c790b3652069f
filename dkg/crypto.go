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
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/annchain/kyber/v3"
	"github.com/annchain/kyber/v3/pairing/bn256"
	"github.com/annchain/kyber/v3/share"
	"github.com/annchain/kyber/v3/sign/bls"
	"github.com/annchain/kyber/v3/sign/tbls"
	"golang.org/x/crypto/sha3"
)

var (
	ErrCommitCount   = errors.New("wrong number of commitments")
	ErrIndexMismatch = errors.New("signature share index does not match signer")
	ErrNoDealers     = errors.New("no dealer commitments")
)

// Keys and commitments live in G2, signatures in G1.
var suite = bn256.NewSuiteG2()

func Suite() *bn256.Suite {
	return suite
}

// RoundMessage is the message every member signs for a round.
func RoundMessage(input []byte, round uint64) []byte {
	h := sha3.New256()
	h.Write(input)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], round)
	h.Write(b[:])
	return h.Sum(nil)
}

// DeriveRandomness hashes the combined signature into the round output.
func DeriveRandomness(sig []byte) []byte {
	d := sha3.Sum256(sig)
	return d[:]
}

func DecodePoint(b []byte) (kyber.Point, error) {
	p := suite.G2().Point()
	if err := p.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return p, nil
}

func EncodePoint(p kyber.Point) []byte {
	b, err := p.MarshalBinary()
	if err != nil {
		// bn256 point marshalling does not fail
		panic(err)
	}
	return b
}

// DecodeCommits turns one dealer's commitment vector into its public
// polynomial. A degree-threshold polynomial has threshold+1 commitments.
func DecodeCommits(commits [][]byte, threshold int) (*share.PubPoly, error) {
	if len(commits) != threshold+1 {
		return nil, fmt.Errorf("%w: want %d got %d", ErrCommitCount, threshold+1, len(commits))
	}
	points := make([]kyber.Point, len(commits))
	for i, c := range commits {
		p, err := DecodePoint(c)
		if err != nil {
			return nil, fmt.Errorf("commitment %d: %w", i, err)
		}
		points[i] = p
	}
	return share.NewPubPoly(suite.G2(), suite.G2().Point().Base(), points), nil
}

// PublicKeySet sums the dealers' public polynomials. The constant term of the
// result is the group public key.
func PublicKeySet(dealerCommits [][][]byte, threshold int) (*share.PubPoly, error) {
	if len(dealerCommits) == 0 {
		return nil, ErrNoDealers
	}
	var sum *share.PubPoly
	for i, commits := range dealerCommits {
		poly, err := DecodeCommits(commits, threshold)
		if err != nil {
			return nil, fmt.Errorf("dealer %d: %w", i, err)
		}
		if sum == nil {
			sum = poly
			continue
		}
		if sum, err = sum.Add(poly); err != nil {
			return nil, err
		}
	}
	return sum, nil
}

// PublicShare is the public key share of the member at index.
func PublicShare(pub *share.PubPoly, index uint16) []byte {
	return EncodePoint(pub.Eval(int(index)).V)
}

func GroupKey(pub *share.PubPoly) []byte {
	return EncodePoint(pub.Commit())
}

// ShareIndex reads the signer index carried by a threshold signature share.
func ShareIndex(sigShare []byte) (uint16, error) {
	i, err := tbls.SigShare(sigShare).Index()
	if err != nil {
		return 0, err
	}
	return uint16(i), nil
}

// VerifyShare checks a member's signature share against its public key share.
func VerifyShare(pkShare []byte, index uint16, sigShare []byte, msg []byte) error {
	i, err := ShareIndex(sigShare)
	if err != nil {
		return err
	}
	if i != index {
		return fmt.Errorf("%w: share %d signer %d", ErrIndexMismatch, i, index)
	}
	pk, err := DecodePoint(pkShare)
	if err != nil {
		return err
	}
	s := tbls.SigShare(sigShare)
	return bls.Verify(suite, pk, msg, s.Value())
}

// Combine interpolates threshold+1 signature shares into the group signature
// and checks it under the group key.
func Combine(pub *share.PubPoly, msg []byte, shares [][]byte, threshold, total int) ([]byte, error) {
	sig, err := tbls.Recover(suite, pub, msg, shares, threshold+1, total)
	if err != nil {
		return nil, err
	}
	if err := bls.Verify(suite, pub.Commit(), msg, sig); err != nil {
		return nil, fmt.Errorf("combined signature: %w", err)
	}
	return sig, nil
}

// VerifyCombined checks a combined signature under an encoded group key.
func VerifyCombined(groupKey []byte, msg []byte, sig []byte) error {
	pk, err := DecodePoint(groupKey)
	if err != nil {
		return err
	}
	return bls.Verify(suite, pk, msg, sig)
}
