/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbs_test

import (
	"crypto/rand"
	"testing"

	ml "github.com/IBM/mathlib"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/bbs"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/transcript"
)

func schemes() []*bbs.Scheme {
	return []*bbs.Scheme{
		bbs.New("bls12-381", ml.Curves[ml.BLS12_381_BBS]),
		bbs.New("fp256bn", ml.Curves[ml.FP256BN_AMCL]),
	}
}

func randomMessages(curve *ml.Curve, n int) []*ml.Zr {
	messages := make([]*ml.Zr, n)
	for i := range messages {
		messages[i] = curve.NewRandomZr(rand.Reader)
	}

	return messages
}

func TestSignVerify(t *testing.T) {
	for _, scheme := range schemes() {
		t.Run(scheme.Name(), func(t *testing.T) {
			sk, err := scheme.GenerateKey(rand.Reader, 4)
			require.NoError(t, err)

			messages := randomMessages(scheme.Curve(), 4)

			sig, err := scheme.Sign(rand.Reader, sk, messages)
			require.NoError(t, err)
			require.NoError(t, scheme.Verify(sk.PublicKey, sig, messages))

			messages[2] = scheme.Curve().NewRandomZr(rand.Reader)
			require.ErrorIs(t, scheme.Verify(sk.PublicKey, sig, messages), bbs.ErrInvalidSignature)

			_, err = scheme.Sign(rand.Reader, sk, messages[:3])
			require.Error(t, err)
			require.Error(t, scheme.Verify(sk.PublicKey, sig, messages[:3]))
		})
	}

	_, err := schemes()[0].GenerateKey(rand.Reader, 0)
	require.Error(t, err)
}

func TestKeyCorrectness(t *testing.T) {
	scheme := schemes()[0]

	sk, err := scheme.GenerateKey(rand.Reader, 3)
	require.NoError(t, err)

	proof := scheme.ProveKey(rand.Reader, sk)
	require.NoError(t, scheme.VerifyKey(sk.PublicKey, proof))

	other, err := scheme.GenerateKey(rand.Reader, 3)
	require.NoError(t, err)

	t.Run("proof of another key", func(t *testing.T) {
		require.ErrorIs(t, scheme.VerifyKey(other.PublicKey, proof), bbs.ErrInvalidKey)
	})

	t.Run("inconsistent BarG2", func(t *testing.T) {
		pk := *sk.PublicKey
		pk.BarG2 = other.PublicKey.BarG2

		require.ErrorIs(t, scheme.VerifyKey(&pk, proof), bbs.ErrInvalidKey)
	})

	t.Run("identity generator", func(t *testing.T) {
		pk := *sk.PublicKey
		pk.H = append([]*ml.G1{}, pk.H...)
		pk.H[1] = scheme.Curve().GenG1.Mul(scheme.Curve().NewZrFromInt(0))

		require.ErrorIs(t, scheme.VerifyKey(&pk, proof), bbs.ErrInvalidKey)
	})

	t.Run("missing proof", func(t *testing.T) {
		require.ErrorIs(t, scheme.VerifyKey(sk.PublicKey, nil), bbs.ErrInvalidKey)
	})
}

func TestBlindSign(t *testing.T) {
	for _, scheme := range schemes() {
		t.Run(scheme.Name(), func(t *testing.T) {
			curve := scheme.Curve()

			sk, err := scheme.GenerateKey(rand.Reader, 3)
			require.NoError(t, err)

			messages := randomMessages(curve, 3)
			nonce := []byte("issuer nonce")

			cm, blinding, err := scheme.Commit(rand.Reader, sk.PublicKey, map[int]*ml.Zr{0: messages[0]}, nonce)
			require.NoError(t, err)

			require.NoError(t, scheme.VerifyCommitment(sk.PublicKey, cm, nonce))
			require.ErrorIs(t, scheme.VerifyCommitment(sk.PublicKey, cm, []byte("other nonce")), bbs.ErrInvalidCommitment)

			blindSig, err := scheme.BlindSign(rand.Reader, sk, cm.U, map[int]*ml.Zr{1: messages[1], 2: messages[2]})
			require.NoError(t, err)

			require.Error(t, scheme.Verify(sk.PublicKey, blindSig, messages))

			sig := scheme.Unblind(blindSig, blinding)
			require.NoError(t, scheme.Verify(sk.PublicKey, sig, messages))
		})
	}
}

func TestCommitErrors(t *testing.T) {
	scheme := schemes()[0]

	sk, err := scheme.GenerateKey(rand.Reader, 2)
	require.NoError(t, err)

	_, _, err = scheme.Commit(rand.Reader, sk.PublicKey, nil, nil)
	require.Error(t, err)

	_, _, err = scheme.Commit(rand.Reader, sk.PublicKey, map[int]*ml.Zr{5: scheme.Curve().NewZrFromInt(1)}, nil)
	require.Error(t, err)

	_, err = scheme.BlindSign(rand.Reader, sk, nil, map[int]*ml.Zr{-1: scheme.Curve().NewZrFromInt(1)})
	require.Error(t, err)

	require.ErrorIs(t, scheme.VerifyCommitment(sk.PublicKey, &bbs.Commitment{}, nil), bbs.ErrInvalidCommitment)
}

func TestProofOfKnowledge(t *testing.T) {
	for _, scheme := range schemes() {
		t.Run(scheme.Name(), func(t *testing.T) {
			curve := scheme.Curve()

			sk, err := scheme.GenerateKey(rand.Reader, 5)
			require.NoError(t, err)

			messages := randomMessages(curve, 5)

			sig, err := scheme.Sign(rand.Reader, sk, messages)
			require.NoError(t, err)

			shared := curve.NewRandomZr(rand.Reader)

			pok, err := scheme.NewPoKOfSignature(rand.Reader, sk.PublicKey, sig, messages, []int{1, 3},
				map[int]*ml.Zr{0: shared})
			require.NoError(t, err)

			b, ok := pok.Blinding(0)
			require.True(t, ok)
			require.True(t, b.Equals(shared))

			_, ok = pok.Blinding(1)
			require.False(t, ok)

			proverTranscript := transcript.New("test")
			pok.Contribute(proverTranscript)
			c := proverTranscript.Challenge(curve)

			proof := pok.GenerateProof(c)
			require.Len(t, proof.ZHidden, 3)

			revealed := map[int]*ml.Zr{1: messages[1], 3: messages[3]}

			verify := func(pk *bbs.PublicKey, proof *bbs.PoKOfSignatureProof, revealed map[int]*ml.Zr) bool {
				if scheme.VerifyPoKPairing(pk, proof) != nil {
					return false
				}

				verifierTranscript := transcript.New("test")
				if scheme.ContributePoK(verifierTranscript, pk, proof, revealed, c) != nil {
					return false
				}

				return verifierTranscript.Challenge(curve).Equals(c)
			}

			require.True(t, verify(sk.PublicKey, proof, revealed))

			// two responses over the same hidden value with the same blinding agree
			z := curve.ModAdd(shared, curve.ModMul(c, messages[0], curve.GroupOrder), curve.GroupOrder)
			require.True(t, proof.ZHidden[0].Equals(z))

			tampered := map[int]*ml.Zr{1: messages[1], 3: curve.NewRandomZr(rand.Reader)}
			require.False(t, verify(sk.PublicKey, proof, tampered))

			other, err := scheme.GenerateKey(rand.Reader, 5)
			require.NoError(t, err)
			require.False(t, verify(other.PublicKey, proof, revealed))

			require.Error(t, scheme.ContributePoK(transcript.New("test"), sk.PublicKey, proof,
				map[int]*ml.Zr{1: messages[1]}, c))
		})
	}
}
