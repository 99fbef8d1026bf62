/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package bbs contains BBS+ signature primitives (https://eprint.iacr.org/2016/663.pdf, section 4.3)
// over any pairing friendly curve supported by IBM/mathlib: key generation with a key correctness
// proof, Pedersen commitments to hidden messages, blind signing and the selective disclosure
// proof of knowledge of a signature (section 4.5).
//
// Proofs of knowledge are split into a commitment phase that contributes to a shared transcript
// and a response phase, so that several proofs can be bound to one Fiat-Shamir challenge.
package bbs

import (
	"errors"
	"fmt"
	"io"

	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/curveutil"
)

// ErrInvalidSignature is returned when a signature or a proof does not verify.
var ErrInvalidSignature = errors.New("bbs: invalid signature")

// Scheme is a BBS+ signature scheme over a fixed curve.
type Scheme struct {
	name  string
	curve *ml.Curve
}

// New creates a BBS+ scheme named name over the given curve.
func New(name string, curve *ml.Curve) *Scheme {
	return &Scheme{name: name, curve: curve}
}

// Name returns the scheme name.
func (s *Scheme) Name() string {
	return s.name
}

// Curve returns the underlying curve.
func (s *Scheme) Curve() *ml.Curve {
	return s.curve
}

// Signature is a BBS+ signature (A, e, s).
type Signature struct {
	A *ml.G1
	E *ml.Zr
	S *ml.Zr
}

// Sign signs all messages in the clear.
func (s *Scheme) Sign(rng io.Reader, sk *PrivateKey, messages []*ml.Zr) (*Signature, error) {
	if len(messages) != len(sk.PublicKey.H) {
		return nil, fmt.Errorf("bbs: expected %d messages, got %d", len(sk.PublicKey.H), len(messages))
	}

	known := make(map[int]*ml.Zr, len(messages))
	for i, m := range messages {
		known[i] = m
	}

	return s.BlindSign(rng, sk, nil, known)
}

// BlindSign signs a commitment to hidden messages together with the known messages.
// A nil commitment signs known messages only. Every message index must be either known or committed.
func (s *Scheme) BlindSign(rng io.Reader, sk *PrivateKey, commitment *ml.G1, known map[int]*ml.Zr) (*Signature, error) {
	pk := sk.PublicKey

	for idx := range known {
		if idx < 0 || idx >= len(pk.H) {
			return nil, fmt.Errorf("bbs: message index %d out of range", idx)
		}
	}

	sPrime := s.curve.NewRandomZr(rng)

	b := s.curve.GenG1.Copy()
	b.Add(pk.H0.Mul(sPrime))

	if commitment != nil {
		b.Add(commitment)
	}

	for idx, m := range known {
		b.Add(pk.H[idx].Mul(m))
	}

	var e, exp *ml.Zr

	for {
		e = s.curve.NewRandomZr(rng)
		exp = curveutil.Add(s.curve, sk.X, e)

		if !curveutil.IsZero(s.curve, exp) {
			break
		}
	}

	return &Signature{
		A: b.Mul(curveutil.Inverse(s.curve, exp)),
		E: e,
		S: sPrime,
	}, nil
}

// Unblind adds the commitment blinding factor to the signature's s value.
func (s *Scheme) Unblind(sig *Signature, blinding *ml.Zr) *Signature {
	return &Signature{
		A: sig.A.Copy(),
		E: sig.E.Copy(),
		S: curveutil.Add(s.curve, sig.S, blinding),
	}
}

// Verify checks e(A, W + g2*e) == e(B, g2).
func (s *Scheme) Verify(pk *PublicKey, sig *Signature, messages []*ml.Zr) error {
	if len(messages) != len(pk.H) {
		return fmt.Errorf("bbs: expected %d messages, got %d", len(pk.H), len(messages))
	}

	if sig.A.IsInfinity() {
		return ErrInvalidSignature
	}

	b := s.computeB(pk, sig.S, messages)

	q1 := s.curve.GenG2.Mul(sig.E)
	q1.Add(pk.W)

	if !curveutil.PairingProductIsOne(s.curve, sig.A, q1, b, curveutil.NegG2(s.curve, s.curve.GenG2)) {
		return ErrInvalidSignature
	}

	return nil
}

// computeB returns g1 + h0*s + sum(h_i*m_i).
func (s *Scheme) computeB(pk *PublicKey, sv *ml.Zr, messages []*ml.Zr) *ml.G1 {
	b := s.curve.GenG1.Copy()
	b.Add(pk.H0.Mul(sv))
	b.Add(curveutil.SumOfG1Products(pk.H, messages))

	return b
}
