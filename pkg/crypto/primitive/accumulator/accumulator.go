/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package accumulator implements a pairing based positive dynamic accumulator
// (Nguyen 2005, with the witness updates and zero-knowledge membership proof of
// Vitto and Biryukov, https://eprint.iacr.org/2020/777).
//
// The accumulator value is V = P * prod(y_i + alpha) over the members y_i. A member's witness is the
// weak Boneh-Boyen signature C = V / (y + alpha), checked with e(C, g2*y + Q) == e(V, g2) where
// Q = g2*alpha. Only the holder of alpha can add or remove members; holders update their witnesses
// from the published sequence of accumulator values.
package accumulator

import (
	"errors"
	"io"

	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/curveutil"
)

var (
	// ErrInvalidWitness is returned when a witness does not match the accumulator.
	ErrInvalidWitness = errors.New("accumulator: invalid witness")
	// ErrOwnElement is returned when a witness update concerns the witness' own element.
	ErrOwnElement = errors.New("accumulator: update concerns the witness' own element")
)

// SecretKey is the accumulator trapdoor alpha.
type SecretKey struct {
	Alpha *ml.Zr
}

// PublicKey holds Q = g2*alpha, the initial value P and the proof generators X, Y and Z.
type PublicKey struct {
	Q *ml.G2
	P *ml.G1
	X *ml.G1
	Y *ml.G1
	Z *ml.G1
}

// Accumulator operates on one curve.
type Accumulator struct {
	curve *ml.Curve
}

// New returns an accumulator over curve.
func New(curve *ml.Curve) *Accumulator {
	return &Accumulator{curve: curve}
}

// Curve returns the curve.
func (a *Accumulator) Curve() *ml.Curve {
	return a.curve
}

// GenerateKeys creates a fresh trapdoor and public parameters.
func (a *Accumulator) GenerateKeys(rng io.Reader) (*SecretKey, *PublicKey) {
	alpha := curveutil.RandomNonZeroZr(a.curve, rng)

	gen := func() *ml.G1 {
		return a.curve.GenG1.Mul(curveutil.RandomNonZeroZr(a.curve, rng))
	}

	return &SecretKey{Alpha: alpha}, &PublicKey{
		Q: a.curve.GenG2.Mul(alpha),
		P: gen(),
		X: gen(),
		Y: gen(),
		Z: gen(),
	}
}

// Element maps a registry index to its accumulator element y = index + 1.
func (a *Accumulator) Element(index uint32) *ml.Zr {
	return curveutil.ZrFromInt64(a.curve, int64(index)+1)
}

// Initial returns P * prod(y_i + alpha) over the given elements.
func (a *Accumulator) Initial(sk *SecretKey, pk *PublicKey, elements []*ml.Zr) *ml.G1 {
	exp := a.curve.NewZrFromInt(1)
	for _, y := range elements {
		exp = curveutil.Mul(a.curve, exp, curveutil.Add(a.curve, y, sk.Alpha))
	}

	return pk.P.Mul(exp)
}

// Add returns V * (y + alpha).
func (a *Accumulator) Add(sk *SecretKey, v *ml.G1, y *ml.Zr) *ml.G1 {
	return v.Mul(curveutil.Add(a.curve, y, sk.Alpha))
}

// Remove returns V / (y + alpha).
func (a *Accumulator) Remove(sk *SecretKey, v *ml.G1, y *ml.Zr) (*ml.G1, error) {
	return a.Witness(sk, v, y)
}

// Witness returns C = V / (y + alpha), the membership witness of y in V.
func (a *Accumulator) Witness(sk *SecretKey, v *ml.G1, y *ml.Zr) (*ml.G1, error) {
	exp := curveutil.Add(a.curve, y, sk.Alpha)
	if curveutil.IsZero(a.curve, exp) {
		return nil, errors.New("accumulator: element equals the negated trapdoor")
	}

	return v.Mul(curveutil.Inverse(a.curve, exp)), nil
}

// VerifyWitness checks e(C, g2*y + Q) == e(V, g2).
func (a *Accumulator) VerifyWitness(pk *PublicKey, v *ml.G1, y *ml.Zr, c *ml.G1) error {
	if c == nil || v == nil || c.IsInfinity() {
		return ErrInvalidWitness
	}

	q := a.curve.GenG2.Mul(y)
	q.Add(pk.Q)

	if !curveutil.PairingProductIsOne(a.curve, c, q, v, curveutil.NegG2(a.curve, a.curve.GenG2)) {
		return ErrInvalidWitness
	}

	return nil
}

// UpdateOnAdd updates the witness C of y after y' was added to an accumulator whose value before the
// addition was vBefore: C' = C * (y' - y) + vBefore.
func (a *Accumulator) UpdateOnAdd(y *ml.Zr, c *ml.G1, added *ml.Zr, vBefore *ml.G1) (*ml.G1, error) {
	if added.Equals(y) {
		return nil, ErrOwnElement
	}

	updated := c.Mul(curveutil.Sub(a.curve, added, y))
	updated.Add(vBefore)

	return updated, nil
}

// UpdateOnRemove updates the witness C of y after y' was removed and the accumulator moved to vAfter:
// C' = (C - vAfter) / (y' - y).
func (a *Accumulator) UpdateOnRemove(y *ml.Zr, c *ml.G1, removed *ml.Zr, vAfter *ml.G1) (*ml.G1, error) {
	if removed.Equals(y) {
		return nil, ErrOwnElement
	}

	updated := c.Copy()
	updated.Sub(vAfter)

	return updated.Mul(curveutil.Inverse(a.curve, curveutil.Sub(a.curve, removed, y))), nil
}
