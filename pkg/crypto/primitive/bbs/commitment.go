/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbs

import (
	"errors"
	"fmt"
	"io"

	ml "github.com/IBM/mathlib"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/curveutil"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/transcript"
)

const commitmentLabel = "bbs/blind-commitment"

// ErrInvalidCommitment is returned when a commitment's proof of opening does not verify.
var ErrInvalidCommitment = errors.New("bbs: invalid commitment proof")

// Commitment is U = h0*s' + sum(h_i*m_i) over the committed message indices,
// with a proof of knowledge of its opening bound to a nonce.
type Commitment struct {
	U         *ml.G1
	C         *ml.Zr
	ZBlinding *ml.Zr
	Z         map[int]*ml.Zr
}

// Commit commits to hidden messages. It returns the commitment and its blinding factor s',
// which the holder keeps to unblind the signature.
func (s *Scheme) Commit(rng io.Reader, pk *PublicKey, hidden map[int]*ml.Zr, nonce []byte) (*Commitment, *ml.Zr, error) {
	if len(hidden) == 0 {
		return nil, nil, errors.New("bbs: nothing to commit")
	}

	indices := maps.Keys(hidden)
	slices.Sort(indices)

	for _, idx := range indices {
		if idx < 0 || idx >= len(pk.H) {
			return nil, nil, fmt.Errorf("bbs: message index %d out of range", idx)
		}
	}

	blinding := s.curve.NewRandomZr(rng)
	rBlinding := s.curve.NewRandomZr(rng)

	u := pk.H0.Mul(blinding)
	t := pk.H0.Mul(rBlinding)

	r := make(map[int]*ml.Zr, len(indices))

	for _, idx := range indices {
		r[idx] = s.curve.NewRandomZr(rng)

		u.Add(pk.H[idx].Mul(hidden[idx]))
		t.Add(pk.H[idx].Mul(r[idx]))
	}

	c := s.commitmentChallenge(pk, u, t, indices, nonce)

	z := make(map[int]*ml.Zr, len(indices))
	for _, idx := range indices {
		z[idx] = curveutil.Add(s.curve, r[idx], curveutil.Mul(s.curve, c, hidden[idx]))
	}

	return &Commitment{
		U:         u,
		C:         c,
		ZBlinding: curveutil.Add(s.curve, rBlinding, curveutil.Mul(s.curve, c, blinding)),
		Z:         z,
	}, blinding, nil
}

// VerifyCommitment checks the proof of opening of a commitment against the nonce it was bound to.
func (s *Scheme) VerifyCommitment(pk *PublicKey, cm *Commitment, nonce []byte) error {
	if cm == nil || cm.U == nil || cm.C == nil || cm.ZBlinding == nil || len(cm.Z) == 0 {
		return ErrInvalidCommitment
	}

	indices := maps.Keys(cm.Z)
	slices.Sort(indices)

	t := pk.H0.Mul(cm.ZBlinding)

	for _, idx := range indices {
		if idx < 0 || idx >= len(pk.H) {
			return fmt.Errorf("bbs: message index %d out of range", idx)
		}

		t.Add(pk.H[idx].Mul(cm.Z[idx]))
	}

	t.Sub(cm.U.Mul(cm.C))

	if !s.commitmentChallenge(pk, cm.U, t, indices, nonce).Equals(cm.C) {
		return ErrInvalidCommitment
	}

	return nil
}

func (s *Scheme) commitmentChallenge(pk *PublicKey, u, t *ml.G1, indices []int, nonce []byte) *ml.Zr {
	tr := transcript.New(commitmentLabel)
	AppendPublicKey(tr, pk)
	tr.AppendG1(u, t)

	for _, idx := range indices {
		tr.AppendUint64(uint64(idx))
	}

	tr.AppendBytes(nonce)

	return tr.Challenge(s.curve)
}
