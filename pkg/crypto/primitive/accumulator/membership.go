/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package accumulator

import (
	"errors"
	"io"

	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/curveutil"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/transcript"
)

// MembershipProof proves knowledge of y and C with e(C, g2*y + Q) == e(V, g2) without revealing either.
// The response for y is not part of the proof; it is shared with the proof that binds y to a credential.
type MembershipProof struct {
	EC          *ml.G1
	TSigma      *ml.G1
	TRho        *ml.G1
	SSigma      *ml.Zr
	SRho        *ml.Zr
	SDeltaSigma *ml.Zr
	SDeltaRho   *ml.Zr
}

// MembershipProver is the prover state between the commitment and the response phase.
//
// The prover blinds the witness as E_C = C + Z*(sigma + rho) and publishes T_sigma = X*sigma and
// T_rho = Y*rho; delta_sigma = y*sigma and delta_rho = y*rho tie the blinding to y.
type MembershipProver struct {
	acc *Accumulator
	pk  *PublicKey
	v   *ml.G1

	y, sigma, rho, deltaSigma, deltaRho      *ml.Zr
	ry, rSigma, rRho, rDeltaSigma, rDeltaRho *ml.Zr

	eC, tSigma, tRho         *ml.G1
	rS, rR, rDeltaS, rDeltaR *ml.G1
	rE                       *ml.Gt
}

// NewMembershipProver commits to a membership proof of y (witness c) in accumulator value v.
// yBlinding is the commitment randomness for y used by the companion proof.
func (a *Accumulator) NewMembershipProver(rng io.Reader, pk *PublicKey, v *ml.G1, y *ml.Zr, c *ml.G1,
	yBlinding *ml.Zr) *MembershipProver {
	curve := a.curve

	p := &MembershipProver{
		acc:         a,
		pk:          pk,
		v:           v,
		y:           y,
		sigma:       curve.NewRandomZr(rng),
		rho:         curve.NewRandomZr(rng),
		ry:          yBlinding,
		rSigma:      curve.NewRandomZr(rng),
		rRho:        curve.NewRandomZr(rng),
		rDeltaSigma: curve.NewRandomZr(rng),
		rDeltaRho:   curve.NewRandomZr(rng),
	}

	p.deltaSigma = curveutil.Mul(curve, y, p.sigma)
	p.deltaRho = curveutil.Mul(curve, y, p.rho)

	p.eC = c.Copy()
	p.eC.Add(pk.Z.Mul(curveutil.Add(curve, p.sigma, p.rho)))
	p.tSigma = pk.X.Mul(p.sigma)
	p.tRho = pk.Y.Mul(p.rho)

	p.rS = pk.X.Mul(p.rSigma)
	p.rR = pk.Y.Mul(p.rRho)

	p.rDeltaS = p.tSigma.Mul(p.ry)
	p.rDeltaS.Sub(pk.X.Mul(p.rDeltaSigma))

	p.rDeltaR = p.tRho.Mul(p.ry)
	p.rDeltaR.Sub(pk.Y.Mul(p.rDeltaRho))

	left := p.eC.Mul(p.ry)
	left.Sub(pk.Z.Mul(curveutil.Add(curve, p.rDeltaSigma, p.rDeltaRho)))

	right := pk.Z.Mul(curveutil.Neg(curve, curveutil.Add(curve, p.rSigma, p.rRho)))

	p.rE = curve.FExp(curve.Pairing2(curve.GenG2, left, pk.Q, right))

	return p
}

// Contribute appends the prover's public values to the transcript.
func (p *MembershipProver) Contribute(t *transcript.Transcript) {
	appendMembership(t, p.v, p.eC, p.tSigma, p.tRho, p.rS, p.rR, p.rDeltaS, p.rDeltaR, p.rE)
}

// GenerateProof computes the responses for challenge c.
func (p *MembershipProver) GenerateProof(c *ml.Zr) *MembershipProof {
	curve := p.acc.curve

	resp := func(r, secret *ml.Zr) *ml.Zr {
		return curveutil.Add(curve, r, curveutil.Mul(curve, c, secret))
	}

	return &MembershipProof{
		EC:          p.eC,
		TSigma:      p.tSigma,
		TRho:        p.tRho,
		SSigma:      resp(p.rSigma, p.sigma),
		SRho:        resp(p.rRho, p.rho),
		SDeltaSigma: resp(p.rDeltaSigma, p.deltaSigma),
		SDeltaRho:   resp(p.rDeltaRho, p.deltaRho),
	}
}

// ContributeMembership recomputes the prover's commitments for accumulator value v from the proof,
// the shared response sy for y and challenge c, and appends them to the transcript.
func (a *Accumulator) ContributeMembership(t *transcript.Transcript, pk *PublicKey, v *ml.G1,
	proof *MembershipProof, sy, c *ml.Zr) error {
	if proof == nil || proof.EC == nil || proof.TSigma == nil || proof.TRho == nil ||
		proof.SSigma == nil || proof.SRho == nil || proof.SDeltaSigma == nil || proof.SDeltaRho == nil || sy == nil {
		return errors.New("accumulator: incomplete membership proof")
	}

	curve := a.curve
	negC := curveutil.Neg(curve, c)

	rS := pk.X.Mul(proof.SSigma)
	rS.Add(proof.TSigma.Mul(negC))

	rR := pk.Y.Mul(proof.SRho)
	rR.Add(proof.TRho.Mul(negC))

	rDeltaS := proof.TSigma.Mul(sy)
	rDeltaS.Sub(pk.X.Mul(proof.SDeltaSigma))

	rDeltaR := proof.TRho.Mul(sy)
	rDeltaR.Sub(pk.Y.Mul(proof.SDeltaRho))

	left := proof.EC.Mul(sy)
	left.Sub(pk.Z.Mul(curveutil.Add(curve, proof.SDeltaSigma, proof.SDeltaRho)))
	left.Sub(v.Mul(c))

	right := pk.Z.Mul(curveutil.Neg(curve, curveutil.Add(curve, proof.SSigma, proof.SRho)))
	right.Add(proof.EC.Mul(c))

	rE := curve.FExp(curve.Pairing2(curve.GenG2, left, pk.Q, right))

	appendMembership(t, v, proof.EC, proof.TSigma, proof.TRho, rS, rR, rDeltaS, rDeltaR, rE)

	return nil
}

func appendMembership(t *transcript.Transcript, v, eC, tSigma, tRho, rS, rR, rDeltaS, rDeltaR *ml.G1, rE *ml.Gt) {
	t.AppendG1(v, eC, tSigma, tRho, rS, rR, rDeltaS, rDeltaR)
	t.AppendGt(rE)
}
