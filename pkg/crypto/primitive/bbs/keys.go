/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbs

import (
	"errors"
	"io"

	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/curveutil"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/transcript"
)

const keyProofLabel = "bbs/key-correctness"

// ErrInvalidKey is returned when a public key fails its correctness proof.
var ErrInvalidKey = errors.New("bbs: invalid public key")

// PublicKey is a BBS+ public key with one generator per message.
// BarG1 and BarG2 = BarG1*x let anyone check that W = g2*x through the key correctness proof.
type PublicKey struct {
	W     *ml.G2
	BarG1 *ml.G1
	BarG2 *ml.G1
	H0    *ml.G1
	H     []*ml.G1
}

// PrivateKey is a BBS+ private key.
type PrivateKey struct {
	X         *ml.Zr
	PublicKey *PublicKey
}

// KeyProof is a Schnorr proof of knowledge of x such that W = g2*x and BarG2 = BarG1*x.
type KeyProof struct {
	C *ml.Zr
	S *ml.Zr
}

// GenerateKey creates a key pair able to sign messageCount messages.
func (s *Scheme) GenerateKey(rng io.Reader, messageCount int) (*PrivateKey, error) {
	if messageCount <= 0 {
		return nil, errors.New("bbs: message count must be positive")
	}

	x := curveutil.RandomNonZeroZr(s.curve, rng)
	barG1 := s.curve.GenG1.Mul(curveutil.RandomNonZeroZr(s.curve, rng))

	pk := &PublicKey{
		W:     s.curve.GenG2.Mul(x),
		BarG1: barG1,
		BarG2: barG1.Mul(x),
		H0:    s.curve.GenG1.Mul(curveutil.RandomNonZeroZr(s.curve, rng)),
		H:     make([]*ml.G1, messageCount),
	}

	for i := range pk.H {
		pk.H[i] = s.curve.GenG1.Mul(curveutil.RandomNonZeroZr(s.curve, rng))
	}

	return &PrivateKey{X: x, PublicKey: pk}, nil
}

// ProveKey produces the key correctness proof.
func (s *Scheme) ProveKey(rng io.Reader, sk *PrivateKey) *KeyProof {
	pk := sk.PublicKey
	r := s.curve.NewRandomZr(rng)

	t1 := s.curve.GenG2.Mul(r)
	t2 := pk.BarG1.Mul(r)

	c := s.keyChallenge(pk, t1, t2)

	return &KeyProof{
		C: c,
		S: curveutil.Add(s.curve, r, curveutil.Mul(s.curve, c, sk.X)),
	}
}

// VerifyKey checks the key correctness proof and that no generator is the identity.
func (s *Scheme) VerifyKey(pk *PublicKey, proof *KeyProof) error {
	if pk == nil || proof == nil || proof.C == nil || proof.S == nil || pk.W == nil {
		return ErrInvalidKey
	}

	for _, g := range append([]*ml.G1{pk.BarG1, pk.BarG2, pk.H0}, pk.H...) {
		if g == nil || g.IsInfinity() {
			return ErrInvalidKey
		}
	}

	negC := curveutil.Neg(s.curve, proof.C)

	t1 := s.curve.GenG2.Mul(proof.S)
	t1.Add(pk.W.Mul(negC))

	t2 := pk.BarG1.Mul(proof.S)
	t2.Add(pk.BarG2.Mul(negC))

	if !s.keyChallenge(pk, t1, t2).Equals(proof.C) {
		return ErrInvalidKey
	}

	return nil
}

func (s *Scheme) keyChallenge(pk *PublicKey, t1 *ml.G2, t2 *ml.G1) *ml.Zr {
	t := transcript.New(keyProofLabel)
	t.AppendString(s.name)
	AppendPublicKey(t, pk)
	t.AppendG2(t1)
	t.AppendG1(t2)

	return t.Challenge(s.curve)
}

// AppendPublicKey writes every public key component to a transcript.
func AppendPublicKey(t *transcript.Transcript, pk *PublicKey) {
	t.AppendG2(pk.W)
	t.AppendG1(pk.BarG1, pk.BarG2, pk.H0)
	t.AppendG1(pk.H...)
}
