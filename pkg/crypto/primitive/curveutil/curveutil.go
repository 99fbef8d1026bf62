/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package curveutil holds small helpers over IBM/mathlib curves shared by the signature,
// accumulator and range proof primitives.
package curveutil

import (
	"io"
	"math/big"

	ml "github.com/IBM/mathlib"
	"golang.org/x/crypto/blake2b"
)

// Order returns the group order of the curve as a big integer.
func Order(curve *ml.Curve) *big.Int {
	return new(big.Int).SetBytes(curve.GroupOrder.Bytes())
}

// ZrFromBig reduces v modulo the group order and converts it into a scalar.
// Negative values map to their additive inverse.
func ZrFromBig(curve *ml.Curve, v *big.Int) *ml.Zr {
	r := new(big.Int).Mod(v, Order(curve))

	buf := make([]byte, curve.ScalarByteSize)

	return curve.NewZrFromBytes(r.FillBytes(buf))
}

// BigFromZr returns the canonical integer of a scalar.
func BigFromZr(z *ml.Zr) *big.Int {
	return new(big.Int).SetBytes(z.Bytes())
}

// ZrFromInt64 converts a signed integer into a scalar.
func ZrFromInt64(curve *ml.Curve, v int64) *ml.Zr {
	return ZrFromBig(curve, big.NewInt(v))
}

// Neg returns -z mod q.
func Neg(curve *ml.Curve, z *ml.Zr) *ml.Zr {
	return curve.ModSub(curve.NewZrFromInt(0), z, curve.GroupOrder)
}

// Add returns a + b mod q.
func Add(curve *ml.Curve, a, b *ml.Zr) *ml.Zr {
	return curve.ModAdd(a, b, curve.GroupOrder)
}

// Sub returns a - b mod q.
func Sub(curve *ml.Curve, a, b *ml.Zr) *ml.Zr {
	return curve.ModSub(a, b, curve.GroupOrder)
}

// Mul returns a * b mod q.
func Mul(curve *ml.Curve, a, b *ml.Zr) *ml.Zr {
	return curve.ModMul(a, b, curve.GroupOrder)
}

// Inverse returns 1/z mod q without modifying z.
func Inverse(curve *ml.Curve, z *ml.Zr) *ml.Zr {
	inv := z.Copy()
	inv.InvModP(curve.GroupOrder)

	return inv
}

// IsZero reports whether z is the zero scalar.
func IsZero(curve *ml.Curve, z *ml.Zr) bool {
	return z.Equals(curve.NewZrFromInt(0))
}

// HashToZr maps data to a scalar by reducing a 512 bit blake2b digest modulo the group order.
func HashToZr(curve *ml.Curve, data []byte) *ml.Zr {
	digest := blake2b.Sum512(data)

	return ZrFromBig(curve, new(big.Int).SetBytes(digest[:]))
}

// SumOfG1Products computes sum(bases[i] * scalars[i]). Both slices must have equal, non-zero length.
func SumOfG1Products(bases []*ml.G1, scalars []*ml.Zr) *ml.G1 {
	var res *ml.G1

	for i := 0; i < len(bases); i++ {
		g := bases[i].Mul(scalars[i])
		if res == nil {
			res = g
		} else {
			res.Add(g)
		}
	}

	return res
}

// NegG2 returns -p.
func NegG2(curve *ml.Curve, p *ml.G2) *ml.G2 {
	return p.Mul(Neg(curve, curve.NewZrFromInt(1)))
}

// PairingProductIsOne checks e(p1, q1) * e(p2, q2) == 1.
func PairingProductIsOne(curve *ml.Curve, p1 *ml.G1, q1 *ml.G2, p2 *ml.G1, q2 *ml.G2) bool {
	p := curve.Pairing2(q1, p1, q2, p2)
	p = curve.FExp(p)

	return p.IsUnity()
}

// RandomNonZeroZr draws scalars until a non-zero one comes up.
func RandomNonZeroZr(curve *ml.Curve, rng io.Reader) *ml.Zr {
	for {
		z := curve.NewRandomZr(rng)
		if !IsZero(curve, z) {
			return z
		}
	}
}
