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
	"testing"

	"github.com/annchain/kyber/v3"
	"github.com/stretchr/testify/require"
)

// setup runs an in-memory dkg for n members of which the first dealers deal.
func setup(t *testing.T, n, dealers, threshold int) ([]*Dealer, []*Signer) {
	ds := make([]*Dealer, dealers)
	for i := range ds {
		ds[i] = NewDealer(threshold)
	}
	signers := make([]*Signer, n)
	for i := range signers {
		rows := make([]kyber.Scalar, dealers)
		for j, d := range ds {
			rows[j] = d.Row(uint16(i))
		}
		s, err := NewSigner(uint16(i), rows)
		require.NoError(t, err)
		signers[i] = s
	}
	return ds, signers
}

func commitsOf(ds []*Dealer) [][][]byte {
	out := make([][][]byte, len(ds))
	for i, d := range ds {
		out[i] = d.Commits()
	}
	return out
}

func TestThresholdSignAndCombine(t *testing.T) {
	const n, threshold = 4, 2
	ds, signers := setup(t, n, 3, threshold)
	pub, err := PublicKeySet(commitsOf(ds), threshold)
	require.NoError(t, err)

	msg := RoundMessage([]byte("seed"), 1)
	var shares [][]byte
	for _, s := range signers {
		require.Equal(t, PublicShare(pub, s.Index()), s.PublicShare())
		sig, err := s.Sign(msg)
		require.NoError(t, err)
		require.NoError(t, VerifyShare(s.PublicShare(), s.Index(), sig, msg))
		shares = append(shares, sig)
	}

	// any threshold+1 shares give the same signature
	sigA, err := Combine(pub, msg, shares[:3], threshold, n)
	require.NoError(t, err)
	sigB, err := Combine(pub, msg, shares[1:], threshold, n)
	require.NoError(t, err)
	require.Equal(t, sigA, sigB)
	require.NoError(t, VerifyCombined(GroupKey(pub), msg, sigA))
	require.Len(t, DeriveRandomness(sigA), 32)

	_, err = Combine(pub, msg, shares[:2], threshold, n)
	require.Error(t, err)
}

func TestVerifyShareRejects(t *testing.T) {
	_, signers := setup(t, 3, 2, 1)
	msg := RoundMessage([]byte("seed"), 1)
	sig, err := signers[0].Sign(msg)
	require.NoError(t, err)

	require.ErrorIs(t, VerifyShare(signers[1].PublicShare(), 1, sig, msg), ErrIndexMismatch)
	require.Error(t, VerifyShare(signers[1].PublicShare(), 0, sig, msg))
	require.Error(t, VerifyShare(signers[0].PublicShare(), 0, sig, RoundMessage([]byte("seed"), 2)))
}

func TestVerifyShareValue(t *testing.T) {
	_, signers := setup(t, 3, 2, 1)
	msg := RoundMessage([]byte("seed"), 1)
	sig, err := signers[2].Sign(msg)
	require.NoError(t, err)
	require.NoError(t, VerifyShare(signers[2].PublicShare(), 2, sig, msg))

	// same signer index, corrupted signature value
	bad := append([]byte{}, sig...)
	bad[len(bad)-1] ^= 0xff
	i, err := ShareIndex(bad)
	require.NoError(t, err)
	require.EqualValues(t, 2, i)
	require.Error(t, VerifyShare(signers[2].PublicShare(), 2, bad, msg))
}

func TestDecodeCommitsCount(t *testing.T) {
	d := NewDealer(2)
	_, err := DecodeCommits(d.Commits(), 3)
	require.ErrorIs(t, err, ErrCommitCount)
	_, err = DecodeCommits([][]byte{{1}, {2}, {3}}, 2)
	require.Error(t, err)
	_, err = PublicKeySet(nil, 2)
	require.ErrorIs(t, err, ErrNoDealers)
}

func TestEncryptedRows(t *testing.T) {
	keys := []*KeyPair{GenerateKeyPair(), GenerateKeyPair()}
	pubkeys := [][]byte{keys[0].PublicBytes(), keys[1].PublicBytes()}
	d1, d2 := NewDealer(1), NewDealer(1)
	r1, err := d1.EncryptedRows(pubkeys)
	require.NoError(t, err)
	r2, err := d2.EncryptedRows(pubkeys)
	require.NoError(t, err)

	s, err := NewSignerFromEncrypted(1, keys[1], [][]byte{r1[1], r2[1]})
	require.NoError(t, err)
	pub, err := PublicKeySet([][][]byte{d1.Commits(), d2.Commits()}, 1)
	require.NoError(t, err)
	require.Equal(t, PublicShare(pub, 1), s.PublicShare())

	_, err = NewSignerFromEncrypted(1, keys[0], [][]byte{r1[1]})
	require.Error(t, err)
}

func TestKeyPairRoundTrip(t *testing.T) {
	k := GenerateKeyPair()
	restored, err := KeyPairFromPrivate(k.PrivateBytes())
	require.NoError(t, err)
	require.Equal(t, k.PublicBytes(), restored.PublicBytes())

	ct, err := EncryptTo(k.PublicBytes(), []byte("row"))
	require.NoError(t, err)
	plain, err := restored.Decrypt(ct)
	require.NoError(t, err)
	require.Equal(t, []byte("row"), plain)

	_, err = KeyPairFromPrivate([]byte{1, 2})
	require.Error(t, err)
}
