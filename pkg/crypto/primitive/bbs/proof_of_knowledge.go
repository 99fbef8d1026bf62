/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbs

import (
	"fmt"
	"io"

	ml "github.com/IBM/mathlib"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/curveutil"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/transcript"
)

// PoKOfSignature is the prover state of a proof of knowledge of a signature with selective disclosure.
//
// With r1, r2 random and r3 = 1/r1 the prover publishes
// A' = A*r1, Abar = A'*(-e) + B*r1, d = B*r1 - h0*r2 and proves knowledge of
// (e, r2) in Abar - d = -A'*e + h0*r2 and of (r3, s', m_hidden) in
// g1 + sum_revealed(h_i*m_i) = d*r3 - h0*s' - sum_hidden(h_i*m_i), where s' = s - r2*r3.
type PoKOfSignature struct {
	curve *ml.Curve

	aPrime, aBar, d *ml.G1
	t1, t2          *ml.G1

	e, r2, r3, sPrime     *ml.Zr
	re, rr2, rr3, rsPrime *ml.Zr

	messages  []*ml.Zr
	hidden    []int
	blindings map[int]*ml.Zr
	revealed  map[int]*ml.Zr
}

// PoKOfSignatureProof is the non-interactive proof; ZHidden holds one response per hidden message.
type PoKOfSignatureProof struct {
	APrime  *ml.G1
	ABar    *ml.G1
	D       *ml.G1
	ZE      *ml.Zr
	ZR2     *ml.Zr
	ZR3     *ml.Zr
	ZS      *ml.Zr
	ZHidden map[int]*ml.Zr
}

// NewPoKOfSignature starts a proof revealing the messages at the revealed indices.
// blindings fixes the commitment randomness of selected hidden messages so that other proofs over the
// same hidden values (equalities, ranges, set membership) can share their responses; the remaining
// hidden messages get fresh randomness.
func (s *Scheme) NewPoKOfSignature(rng io.Reader, pk *PublicKey, sig *Signature, messages []*ml.Zr,
	revealed []int, blindings map[int]*ml.Zr) (*PoKOfSignature, error) {
	if len(messages) != len(pk.H) {
		return nil, fmt.Errorf("bbs: expected %d messages, got %d", len(pk.H), len(messages))
	}

	isRevealed := make(map[int]bool, len(revealed))

	for _, idx := range revealed {
		if idx < 0 || idx >= len(messages) {
			return nil, fmt.Errorf("bbs: revealed index %d out of range", idx)
		}

		isRevealed[idx] = true
	}

	p := &PoKOfSignature{
		curve:     s.curve,
		messages:  messages,
		blindings: make(map[int]*ml.Zr),
		revealed:  make(map[int]*ml.Zr, len(revealed)),
	}

	for idx, m := range messages {
		if isRevealed[idx] {
			p.revealed[idx] = m

			continue
		}

		p.hidden = append(p.hidden, idx)

		if b, ok := blindings[idx]; ok {
			p.blindings[idx] = b
		} else {
			p.blindings[idx] = s.curve.NewRandomZr(rng)
		}
	}

	r1 := curveutil.RandomNonZeroZr(s.curve, rng)
	p.r2 = s.curve.NewRandomZr(rng)
	p.r3 = curveutil.Inverse(s.curve, r1)
	p.e = sig.E

	b := s.computeB(pk, sig.S, messages)

	p.aPrime = sig.A.Mul(r1)

	bR1 := b.Mul(r1)

	p.aBar = p.aPrime.Mul(curveutil.Neg(s.curve, sig.E))
	p.aBar.Add(bR1)

	p.d = bR1.Copy()
	p.d.Sub(pk.H0.Mul(p.r2))

	p.sPrime = curveutil.Sub(s.curve, sig.S, curveutil.Mul(s.curve, p.r2, p.r3))

	p.re = s.curve.NewRandomZr(rng)
	p.rr2 = s.curve.NewRandomZr(rng)
	p.rr3 = s.curve.NewRandomZr(rng)
	p.rsPrime = s.curve.NewRandomZr(rng)

	p.t1 = pk.H0.Mul(p.rr2)
	p.t1.Sub(p.aPrime.Mul(p.re))

	p.t2 = p.d.Mul(p.rr3)
	p.t2.Sub(pk.H0.Mul(p.rsPrime))

	for _, idx := range p.hidden {
		p.t2.Sub(pk.H[idx].Mul(p.blindings[idx]))
	}

	return p, nil
}

// Blinding returns the commitment randomness used for a hidden message.
func (p *PoKOfSignature) Blinding(idx int) (*ml.Zr, bool) {
	b, ok := p.blindings[idx]

	return b, ok
}

// Contribute appends the prover's public values to the transcript.
func (p *PoKOfSignature) Contribute(t *transcript.Transcript) {
	appendPoK(t, p.aPrime, p.aBar, p.d, p.t1, p.t2, p.revealed)
}

// GenerateProof computes the responses for challenge c.
func (p *PoKOfSignature) GenerateProof(c *ml.Zr) *PoKOfSignatureProof {
	resp := func(r, secret *ml.Zr) *ml.Zr {
		return curveutil.Add(p.curve, r, curveutil.Mul(p.curve, c, secret))
	}

	zHidden := make(map[int]*ml.Zr, len(p.hidden))
	for _, idx := range p.hidden {
		zHidden[idx] = resp(p.blindings[idx], p.messages[idx])
	}

	return &PoKOfSignatureProof{
		APrime:  p.aPrime,
		ABar:    p.aBar,
		D:       p.d,
		ZE:      resp(p.re, p.e),
		ZR2:     resp(p.rr2, p.r2),
		ZR3:     resp(p.rr3, p.r3),
		ZS:      resp(p.rsPrime, p.sPrime),
		ZHidden: zHidden,
	}
}

// VerifyPoKPairing checks the challenge independent part of a proof: A' is not the identity and
// e(A', W) == e(Abar, g2).
func (s *Scheme) VerifyPoKPairing(pk *PublicKey, proof *PoKOfSignatureProof) error {
	if proof.APrime.IsInfinity() {
		return ErrInvalidSignature
	}

	if !curveutil.PairingProductIsOne(s.curve, proof.APrime, pk.W, proof.ABar, curveutil.NegG2(s.curve, s.curve.GenG2)) {
		return ErrInvalidSignature
	}

	return nil
}

// ContributePoK recomputes the prover's commitments from the responses and challenge c and appends
// the same values the prover appended. A wrong proof yields a different transcript, so the caller
// detects it by comparing the recomputed challenge.
func (s *Scheme) ContributePoK(t *transcript.Transcript, pk *PublicKey, proof *PoKOfSignatureProof,
	revealed map[int]*ml.Zr, c *ml.Zr) error {
	if err := checkIndices(len(pk.H), proof.ZHidden, revealed); err != nil {
		return err
	}

	t1 := pk.H0.Mul(proof.ZR2)
	t1.Sub(proof.APrime.Mul(proof.ZE))

	diff := proof.ABar.Copy()
	diff.Sub(proof.D)
	t1.Sub(diff.Mul(c))

	t2 := proof.D.Mul(proof.ZR3)
	t2.Sub(pk.H0.Mul(proof.ZS))

	for idx, z := range proof.ZHidden {
		t2.Sub(pk.H[idx].Mul(z))
	}

	base := s.curve.GenG1.Copy()
	for idx, m := range revealed {
		base.Add(pk.H[idx].Mul(m))
	}

	t2.Sub(base.Mul(c))

	appendPoK(t, proof.APrime, proof.ABar, proof.D, t1, t2, revealed)

	return nil
}

func checkIndices(count int, hidden, revealed map[int]*ml.Zr) error {
	if len(hidden)+len(revealed) != count {
		return fmt.Errorf("bbs: proof covers %d messages, expected %d", len(hidden)+len(revealed), count)
	}

	for idx, m := range revealed {
		if idx < 0 || idx >= count || m == nil {
			return fmt.Errorf("bbs: revealed index %d out of range", idx)
		}

		if _, ok := hidden[idx]; ok {
			return fmt.Errorf("bbs: message %d is both hidden and revealed", idx)
		}
	}

	for idx, z := range hidden {
		if idx < 0 || idx >= count || z == nil {
			return fmt.Errorf("bbs: invalid hidden response for index %d", idx)
		}
	}

	return nil
}

func appendPoK(t *transcript.Transcript, aPrime, aBar, d, t1, t2 *ml.G1, revealed map[int]*ml.Zr) {
	t.AppendG1(aPrime, aBar, d, t1, t2)

	indices := maps.Keys(revealed)
	slices.Sort(indices)

	for _, idx := range indices {
		t.AppendUint64(uint64(idx))
		t.AppendZr(revealed[idx])
	}
}
