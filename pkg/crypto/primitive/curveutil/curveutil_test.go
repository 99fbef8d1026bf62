/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package curveutil

import (
	"crypto/rand"
	"math/big"
	"testing"

	ml "github.com/IBM/mathlib"
	"github.com/stretchr/testify/require"
)

func TestScalarConversions(t *testing.T) {
	for _, curve := range []*ml.Curve{ml.Curves[ml.BLS12_381_BBS], ml.Curves[ml.FP256BN_AMCL]} {
		q := Order(curve)

		minusOne := ZrFromInt64(curve, -1)
		require.Equal(t, new(big.Int).Sub(q, big.NewInt(1)), BigFromZr(minusOne))

		require.True(t, Add(curve, minusOne, curve.NewZrFromInt(1)).Equals(curve.NewZrFromInt(0)))
		require.True(t, Neg(curve, curve.NewZrFromInt(1)).Equals(minusOne))

		x := RandomNonZeroZr(curve, rand.Reader)
		require.True(t, Mul(curve, x, Inverse(curve, x)).Equals(curve.NewZrFromInt(1)))
		require.True(t, Sub(curve, x, x).Equals(curve.NewZrFromInt(0)))
		require.True(t, IsZero(curve, Sub(curve, x, x)))

		big7 := ZrFromBig(curve, new(big.Int).Add(q, big.NewInt(7)))
		require.True(t, big7.Equals(curve.NewZrFromInt(7)))
	}
}

func TestHashToZr(t *testing.T) {
	curve := ml.Curves[ml.BLS12_381_BBS]

	require.True(t, HashToZr(curve, []byte("a")).Equals(HashToZr(curve, []byte("a"))))
	require.False(t, HashToZr(curve, []byte("a")).Equals(HashToZr(curve, []byte("b"))))
}

func TestPairingHelpers(t *testing.T) {
	curve := ml.Curves[ml.BLS12_381_BBS]

	a := RandomNonZeroZr(curve, rand.Reader)
	b := RandomNonZeroZr(curve, rand.Reader)

	// e(aG1, bG2) * e(abG1, -G2) == 1
	p1 := curve.GenG1.Mul(a)
	q1 := curve.GenG2.Mul(b)
	p2 := curve.GenG1.Mul(Mul(curve, a, b))

	require.True(t, PairingProductIsOne(curve, p1, q1, p2, NegG2(curve, curve.GenG2)))
	require.False(t, PairingProductIsOne(curve, p1, q1, p2, curve.GenG2))

	sum := SumOfG1Products([]*ml.G1{curve.GenG1, curve.GenG1}, []*ml.Zr{a, b})
	require.True(t, sum.Equals(curve.GenG1.Mul(Add(curve, a, b))))
}
