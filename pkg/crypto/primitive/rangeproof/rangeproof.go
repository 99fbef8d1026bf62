/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package rangeproof proves that a hidden integer v satisfies v >= bound or v <= bound.
//
// The difference delta between v and the bound is decomposed into bits, each bit is committed with a
// Pedersen commitment C_j = G*b_j + H*rho_j and proven to be 0 or 1 with a disjunctive Schnorr proof.
// The weighted sum of the bit commitments, shifted by the bound, is a commitment to v, whose knowledge
// is proven with the same randomness the signature proof uses for v. That shared randomness links the
// range proof to the signed value.
package rangeproof

import (
	"errors"
	"fmt"
	"io"

	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/curveutil"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/transcript"
)

// DefaultBits bounds delta to [0, 2^32), which covers every pair of 32 bit values.
const DefaultBits = 32

const maxBits = 62

// ErrUnsatisfied is returned when the value does not satisfy the bound.
var ErrUnsatisfied = errors.New("rangeproof: value does not satisfy the bound")

// Bound selects the comparison.
type Bound int

const (
	// AtLeast proves value >= bound.
	AtLeast Bound = iota
	// AtMost proves value <= bound.
	AtMost
)

// Params are the commitment generators. G and H are hashed to the curve so nobody knows log_G(H).
type Params struct {
	curve *ml.Curve
	G     *ml.G1
	H     *ml.G1
	Bits  int
}

// NewParams returns the parameters for a curve.
func NewParams(curve *ml.Curve) *Params {
	return &Params{
		curve: curve,
		G:     curve.HashToG1([]byte("anoncreds/rangeproof/G")),
		H:     curve.HashToG1([]byte("anoncreds/rangeproof/H")),
		Bits:  DefaultBits,
	}
}

// Proof is a range proof. C0, Z0 and Z1 hold, per bit, the challenge share of the "bit is 0" branch
// and both branch responses; the "bit is 1" challenge share is the remainder of the challenge.
type Proof struct {
	Commitments []*ml.G1
	C0          []*ml.Zr
	Z0          []*ml.Zr
	Z1          []*ml.Zr
	ZR          *ml.Zr
}

// Prover is the prover state between the commitment and the response phase.
type Prover struct {
	params *Params
	bound  int64
	kind   Bound

	bits        []bool
	rhos        []*ml.Zr
	commitments []*ml.G1

	w     []*ml.Zr
	cFake []*ml.Zr
	zFake []*ml.Zr
	a0    []*ml.G1
	a1    []*ml.G1

	r     *ml.Zr
	rr    *ml.Zr
	tLink *ml.G1
}

// NewProver commits to a range proof for value against bound. valueBlinding is the randomness the
// companion signature proof uses for value.
func (p *Params) NewProver(rng io.Reader, value, bound int64, kind Bound, valueBlinding *ml.Zr) (*Prover, error) {
	if p.Bits <= 0 || p.Bits > maxBits {
		return nil, fmt.Errorf("rangeproof: unsupported bit length %d", p.Bits)
	}

	delta, err := p.delta(value, bound, kind)
	if err != nil {
		return nil, err
	}

	curve := p.curve

	pr := &Prover{
		params:      p,
		bound:       bound,
		kind:        kind,
		bits:        make([]bool, p.Bits),
		rhos:        make([]*ml.Zr, p.Bits),
		commitments: make([]*ml.G1, p.Bits),
		w:           make([]*ml.Zr, p.Bits),
		cFake:       make([]*ml.Zr, p.Bits),
		zFake:       make([]*ml.Zr, p.Bits),
		a0:          make([]*ml.G1, p.Bits),
		a1:          make([]*ml.G1, p.Bits),
	}

	rho := curve.NewZrFromInt(0)

	for j := 0; j < p.Bits; j++ {
		pr.bits[j] = (delta>>uint(j))&1 == 1
		pr.rhos[j] = curve.NewRandomZr(rng)

		c := p.H.Mul(pr.rhos[j])
		if pr.bits[j] {
			c.Add(p.G)
		}

		pr.commitments[j] = c

		pr.w[j] = curve.NewRandomZr(rng)
		pr.cFake[j] = curve.NewRandomZr(rng)
		pr.zFake[j] = curve.NewRandomZr(rng)

		actual := p.H.Mul(pr.w[j])

		// the simulated branch: a = H*z - X*c with X the statement of the other bit value
		fake := p.H.Mul(pr.zFake[j])

		if pr.bits[j] {
			fake.Sub(c.Mul(pr.cFake[j]))
			pr.a0[j], pr.a1[j] = fake, actual
		} else {
			x1 := c.Copy()
			x1.Sub(p.G)
			fake.Sub(x1.Mul(pr.cFake[j]))
			pr.a0[j], pr.a1[j] = actual, fake
		}

		rho = curveutil.Add(curve, rho, curveutil.Mul(curve, pow2(curve, j), pr.rhos[j]))
	}

	pr.r = rho
	if kind == AtMost {
		pr.r = curveutil.Neg(curve, rho)
	}

	pr.rr = curve.NewRandomZr(rng)

	pr.tLink = p.G.Mul(valueBlinding)
	pr.tLink.Add(p.H.Mul(pr.rr))

	return pr, nil
}

// Contribute appends the prover's public values to the transcript.
func (pr *Prover) Contribute(t *transcript.Transcript) {
	appendRange(t, pr.bound, pr.kind, pr.commitments, pr.a0, pr.a1, pr.tLink)
}

// GenerateProof computes the responses for challenge c.
func (pr *Prover) GenerateProof(c *ml.Zr) *Proof {
	curve := pr.params.curve
	n := len(pr.bits)

	proof := &Proof{
		Commitments: pr.commitments,
		C0:          make([]*ml.Zr, n),
		Z0:          make([]*ml.Zr, n),
		Z1:          make([]*ml.Zr, n),
		ZR:          curveutil.Add(curve, pr.rr, curveutil.Mul(curve, c, pr.r)),
	}

	for j := 0; j < n; j++ {
		cReal := curveutil.Sub(curve, c, pr.cFake[j])
		zReal := curveutil.Add(curve, pr.w[j], curveutil.Mul(curve, cReal, pr.rhos[j]))

		if pr.bits[j] {
			proof.C0[j], proof.Z0[j], proof.Z1[j] = pr.cFake[j], pr.zFake[j], zReal
		} else {
			proof.C0[j], proof.Z0[j], proof.Z1[j] = cReal, zReal, pr.zFake[j]
		}
	}

	return proof
}

// Contribute recomputes the prover's commitments from the proof, the shared response zValue for the
// hidden value and challenge c, and appends them to the transcript.
func (p *Params) Contribute(t *transcript.Transcript, proof *Proof, bound int64, kind Bound, zValue, c *ml.Zr) error {
	if err := p.checkShape(proof); err != nil {
		return err
	}

	if zValue == nil {
		return errors.New("rangeproof: missing value response")
	}

	curve := p.curve
	n := len(proof.Commitments)

	a0 := make([]*ml.G1, n)
	a1 := make([]*ml.G1, n)
	sum := curve.GenG1.Mul(curve.NewZrFromInt(0))

	for j := 0; j < n; j++ {
		cj := proof.Commitments[j]
		c1 := curveutil.Sub(curve, c, proof.C0[j])

		a0[j] = p.H.Mul(proof.Z0[j])
		a0[j].Sub(cj.Mul(proof.C0[j]))

		x1 := cj.Copy()
		x1.Sub(p.G)

		a1[j] = p.H.Mul(proof.Z1[j])
		a1[j].Sub(x1.Mul(c1))

		sum.Add(cj.Mul(pow2(curve, j)))
	}

	// commitment to the value: G*bound +/- sum(2^j * C_j)
	cv := p.G.Mul(curveutil.ZrFromInt64(curve, bound))
	if kind == AtMost {
		cv.Sub(sum)
	} else {
		cv.Add(sum)
	}

	tLink := p.G.Mul(zValue)
	tLink.Add(p.H.Mul(proof.ZR))
	tLink.Sub(cv.Mul(c))

	appendRange(t, bound, kind, proof.Commitments, a0, a1, tLink)

	return nil
}

func (p *Params) delta(value, bound int64, kind Bound) (int64, error) {
	var delta int64

	switch kind {
	case AtLeast:
		delta = value - bound
	case AtMost:
		delta = bound - value
	default:
		return 0, fmt.Errorf("rangeproof: unknown bound kind %d", kind)
	}

	if delta < 0 || delta >= int64(1)<<uint(p.Bits) {
		return 0, ErrUnsatisfied
	}

	return delta, nil
}

func (p *Params) checkShape(proof *Proof) error {
	if proof == nil || proof.ZR == nil {
		return errors.New("rangeproof: incomplete proof")
	}

	n := len(proof.Commitments)
	if n != p.Bits || len(proof.C0) != n || len(proof.Z0) != n || len(proof.Z1) != n {
		return fmt.Errorf("rangeproof: expected %d bit proofs", p.Bits)
	}

	for j := 0; j < n; j++ {
		if proof.Commitments[j] == nil || proof.C0[j] == nil || proof.Z0[j] == nil || proof.Z1[j] == nil {
			return errors.New("rangeproof: incomplete proof")
		}
	}

	return nil
}

func pow2(curve *ml.Curve, j int) *ml.Zr {
	return curveutil.ZrFromInt64(curve, int64(1)<<uint(j))
}

func appendRange(t *transcript.Transcript, bound int64, kind Bound, commitments, a0, a1 []*ml.G1, tLink *ml.G1) {
	t.AppendInt64(bound)
	t.AppendUint64(uint64(kind))
	t.AppendG1(commitments...)
	t.AppendG1(a0...)
	t.AppendG1(a1...)
	t.AppendG1(tLink)
}
