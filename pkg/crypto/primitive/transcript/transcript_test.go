/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package transcript

import (
	"testing"

	ml "github.com/IBM/mathlib"
	"github.com/stretchr/testify/require"
)

func TestChallenge(t *testing.T) {
	curve := ml.Curves[ml.BLS12_381_BBS]

	build := func(parts ...string) *Transcript {
		tr := New("test")
		for _, p := range parts {
			tr.AppendString(p)
		}

		return tr
	}

	require.True(t, build("a", "b").Challenge(curve).Equals(build("a", "b").Challenge(curve)))

	// length prefixes keep "ab" and "a"+"b" apart
	require.False(t, build("ab").Challenge(curve).Equals(build("a", "b").Challenge(curve)))

	tr := New("points")
	tr.AppendG1(curve.GenG1)
	tr.AppendG2(curve.GenG2)
	tr.AppendZr(curve.NewZrFromInt(5))
	tr.AppendInt64(-1)

	other := New("points")
	other.AppendG1(curve.GenG1)
	other.AppendG2(curve.GenG2)
	other.AppendZr(curve.NewZrFromInt(6))
	other.AppendInt64(-1)

	require.NotEqual(t, tr.Bytes(), other.Bytes())
	require.False(t, tr.Challenge(curve).Equals(other.Challenge(curve)))
}
