/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rangeproof_test

import (
	"crypto/rand"
	"math"
	"testing"

	ml "github.com/IBM/mathlib"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/curveutil"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/rangeproof"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/transcript"
)

func prove(t *testing.T, params *rangeproof.Params, value, bound int64, kind rangeproof.Bound) (
	*rangeproof.Proof, *ml.Zr, *ml.Zr) {
	t.Helper()

	curve := ml.Curves[ml.BLS12_381_BBS]
	rv := curve.NewRandomZr(rand.Reader)

	prover, err := params.NewProver(rand.Reader, value, bound, kind, rv)
	require.NoError(t, err)

	tr := transcript.New("range")
	prover.Contribute(tr)
	c := tr.Challenge(curve)

	zv := curveutil.Add(curve, rv, curveutil.Mul(curve, c, curveutil.ZrFromInt64(curve, value)))

	return prover.GenerateProof(c), zv, c
}

func verify(t *testing.T, params *rangeproof.Params, proof *rangeproof.Proof, bound int64,
	kind rangeproof.Bound, zv, c *ml.Zr) bool {
	t.Helper()

	tr := transcript.New("range")
	if params.Contribute(tr, proof, bound, kind, zv, c) != nil {
		return false
	}

	return tr.Challenge(ml.Curves[ml.BLS12_381_BBS]).Equals(c)
}

func TestRangeProof(t *testing.T) {
	params := rangeproof.NewParams(ml.Curves[ml.BLS12_381_BBS])

	tests := []struct {
		name  string
		value int64
		bound int64
		kind  rangeproof.Bound
	}{
		{"equal lower bound", 18, 18, rangeproof.AtLeast},
		{"above lower bound", 42, 18, rangeproof.AtLeast},
		{"negative values", -5, -10, rangeproof.AtLeast},
		{"equal upper bound", 65, 65, rangeproof.AtMost},
		{"below upper bound", 3, 65, rangeproof.AtMost},
		{"widest 32 bit gap", math.MaxInt32, math.MinInt32, rangeproof.AtLeast},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			proof, zv, c := prove(t, params, tc.value, tc.bound, tc.kind)
			require.True(t, verify(t, params, proof, tc.bound, tc.kind, zv, c))
		})
	}
}

func TestRangeProofRejects(t *testing.T) {
	curve := ml.Curves[ml.BLS12_381_BBS]
	params := rangeproof.NewParams(curve)

	t.Run("unsatisfied bound", func(t *testing.T) {
		_, err := params.NewProver(rand.Reader, 17, 18, rangeproof.AtLeast, curve.NewRandomZr(rand.Reader))
		require.ErrorIs(t, err, rangeproof.ErrUnsatisfied)

		_, err = params.NewProver(rand.Reader, 66, 65, rangeproof.AtMost, curve.NewRandomZr(rand.Reader))
		require.ErrorIs(t, err, rangeproof.ErrUnsatisfied)
	})

	proof, zv, c := prove(t, params, 20, 18, rangeproof.AtLeast)

	t.Run("other bound", func(t *testing.T) {
		require.False(t, verify(t, params, proof, 19, rangeproof.AtLeast, zv, c))
	})

	t.Run("other value", func(t *testing.T) {
		other := curveutil.Add(curve, zv, c)
		require.False(t, verify(t, params, proof, 18, rangeproof.AtLeast, other, c))
	})

	t.Run("other comparison", func(t *testing.T) {
		require.False(t, verify(t, params, proof, 18, rangeproof.AtMost, zv, c))
	})

	t.Run("truncated proof", func(t *testing.T) {
		truncated := *proof
		truncated.Commitments = truncated.Commitments[1:]
		require.False(t, verify(t, params, &truncated, 18, rangeproof.AtLeast, zv, c))
	})
}
