/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package presentation builds and verifies zero knowledge presentations: one proof that answers every
// clause of a presentation request from one or more credentials of the same holder.
//
// A presentation holds one sub-proof per credential used. Each sub-proof is a BBS+ proof of knowledge
// of a signature with the requested attributes revealed, plus range proofs for predicates and, where
// non-revocation is requested, an accumulator membership proof for the credential's revocation handle.
// All sub-proofs answer a single challenge derived from the request nonce, and all of them share the
// response for the link secret, which proves that the credentials were issued to the same holder.
package presentation

import (
	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/nonce"
	"github.com/hyperledger/aries-anoncreds-go/pkg/common/log"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/accumulator"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/bbs"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/rangeproof"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/transcript"
)

const transcriptLabel = "anoncreds/presentation"

var logger = log.New("anoncreds/presentation")

// Presentation is the holder's answer to a presentation request.
type Presentation struct {
	Proof          Proof          `json:"proof"`
	RequestedProof RequestedProof `json:"requested_proof"`
	Identifiers    []Identifier   `json:"identifiers"`
	Nonce          nonce.Nonce    `json:"nonce"`
}

// Proof is the aggregated proof. SubProofs are in the order of Identifiers.
type Proof struct {
	SubProofs []SubProof        `json:"proofs"`
	Challenge anoncreds.Element `json:"aggregated_proof_c"`
}

// SubProof covers the referents answered from one credential.
type SubProof struct {
	Primary    SignatureProof   `json:"primary_proof"`
	Predicates []PredicateProof `json:"predicate_proofs,omitempty"`
	NonRevoc   *NonRevocProof   `json:"non_revoc_proof,omitempty"`
}

// SignatureProof is the wire form of a proof of knowledge of a signature. Hidden message responses
// are keyed by message index.
type SignatureProof struct {
	APrime  anoncreds.Element         `json:"a_prime"`
	ABar    anoncreds.Element         `json:"a_bar"`
	D       anoncreds.Element         `json:"d"`
	ZE      anoncreds.Element         `json:"e_hat"`
	ZR2     anoncreds.Element         `json:"r2_hat"`
	ZR3     anoncreds.Element         `json:"r3_hat"`
	ZS      anoncreds.Element         `json:"s_hat"`
	ZHidden map[int]anoncreds.Element `json:"m_hat"`
}

// PredicateProof answers the predicate named by Referent. It carries no range proof when the compared
// attribute is revealed in the same sub-proof.
type PredicateProof struct {
	Referent    string              `json:"referent"`
	Commitments []anoncreds.Element `json:"commitments,omitempty"`
	C0          []anoncreds.Element `json:"c0,omitempty"`
	Z0          []anoncreds.Element `json:"z0,omitempty"`
	Z1          []anoncreds.Element `json:"z1,omitempty"`
	ZR          anoncreds.Element   `json:"zr,omitempty"`
}

// NonRevocProof is the wire form of an accumulator membership proof.
type NonRevocProof struct {
	EC          anoncreds.Element `json:"e_c"`
	TSigma      anoncreds.Element `json:"t_sigma"`
	TRho        anoncreds.Element `json:"t_rho"`
	SSigma      anoncreds.Element `json:"s_sigma"`
	SRho        anoncreds.Element `json:"s_rho"`
	SDeltaSigma anoncreds.Element `json:"s_delta_sigma"`
	SDeltaRho   anoncreds.Element `json:"s_delta_rho"`
}

// Identifier names the ledger objects a sub-proof refers to. Timestamp is the registry state the
// non-revocation proof was made against.
type Identifier struct {
	SchemaID  string `json:"schema_id"`
	CredDefID string `json:"cred_def_id"`
	RevRegID  string `json:"rev_reg_id,omitempty"`
	Timestamp *int64 `json:"timestamp,omitempty"`
}

// RequestedProof maps request referents to what answers them.
type RequestedProof struct {
	RevealedAttrs      map[string]RevealedAttr      `json:"revealed_attrs"`
	RevealedAttrGroups map[string]RevealedAttrGroup `json:"revealed_attr_groups"`
	SelfAttestedAttrs  map[string]string            `json:"self_attested_attrs"`
	UnrevealedAttrs    map[string]SubProofReferent  `json:"unrevealed_attrs"`
	Predicates         map[string]SubProofReferent  `json:"predicates"`
}

// RevealedAttr is an attribute value disclosed by sub-proof SubProofIndex.
type RevealedAttr struct {
	SubProofIndex int    `json:"sub_proof_index"`
	Raw           string `json:"raw"`
	Encoded       string `json:"encoded"`
}

// RevealedAttrGroup discloses several attributes of one credential, keyed by requested name.
type RevealedAttrGroup struct {
	SubProofIndex int                                 `json:"sub_proof_index"`
	Values        map[string]anoncreds.AttributeValue `json:"values"`
}

// SubProofReferent points a referent at the sub-proof that answers it.
type SubProofReferent struct {
	SubProofIndex int `json:"sub_proof_index"`
}

func newRequestedProof() RequestedProof {
	return RequestedProof{
		RevealedAttrs:      make(map[string]RevealedAttr),
		RevealedAttrGroups: make(map[string]RevealedAttrGroup),
		SelfAttestedAttrs:  make(map[string]string),
		UnrevealedAttrs:    make(map[string]SubProofReferent),
		Predicates:         make(map[string]SubProofReferent),
	}
}

// appendIdentifier binds a sub-proof's ledger references to the challenge.
func appendIdentifier(t *transcript.Transcript, id *Identifier, pk *bbs.PublicKey) {
	t.AppendString(id.SchemaID)
	t.AppendString(id.CredDefID)
	t.AppendString(id.RevRegID)

	if id.Timestamp != nil {
		t.AppendInt64(*id.Timestamp)
	}

	bbs.AppendPublicKey(t, pk)
}

func encodeSignatureProof(p *bbs.PoKOfSignatureProof) SignatureProof {
	zHidden := make(map[int]anoncreds.Element, len(p.ZHidden))
	for idx, z := range p.ZHidden {
		zHidden[idx] = anoncreds.ZrElement(z)
	}

	return SignatureProof{
		APrime:  anoncreds.G1Element(p.APrime),
		ABar:    anoncreds.G1Element(p.ABar),
		D:       anoncreds.G1Element(p.D),
		ZE:      anoncreds.ZrElement(p.ZE),
		ZR2:     anoncreds.ZrElement(p.ZR2),
		ZR3:     anoncreds.ZrElement(p.ZR3),
		ZS:      anoncreds.ZrElement(p.ZS),
		ZHidden: zHidden,
	}
}

func (w *SignatureProof) decode(curve *ml.Curve) (*bbs.PoKOfSignatureProof, error) {
	points, err := anoncreds.DecodeG1s(curve, []anoncreds.Element{w.APrime, w.ABar, w.D})
	if err != nil {
		return nil, err
	}

	scalars, err := anoncreds.DecodeZrs(curve, []anoncreds.Element{w.ZE, w.ZR2, w.ZR3, w.ZS})
	if err != nil {
		return nil, err
	}

	zHidden := make(map[int]*ml.Zr, len(w.ZHidden))

	for idx, e := range w.ZHidden {
		if zHidden[idx], err = e.Zr(curve); err != nil {
			return nil, err
		}
	}

	return &bbs.PoKOfSignatureProof{
		APrime:  points[0],
		ABar:    points[1],
		D:       points[2],
		ZE:      scalars[0],
		ZR2:     scalars[1],
		ZR3:     scalars[2],
		ZS:      scalars[3],
		ZHidden: zHidden,
	}, nil
}

func encodeRangeProof(referent string, p *rangeproof.Proof) PredicateProof {
	return PredicateProof{
		Referent:    referent,
		Commitments: anoncreds.G1Elements(p.Commitments),
		C0:          anoncreds.ZrElements(p.C0),
		Z0:          anoncreds.ZrElements(p.Z0),
		Z1:          anoncreds.ZrElements(p.Z1),
		ZR:          anoncreds.ZrElement(p.ZR),
	}
}

func (w *PredicateProof) decode(curve *ml.Curve) (*rangeproof.Proof, error) {
	var (
		p   rangeproof.Proof
		err error
	)

	if p.Commitments, err = anoncreds.DecodeG1s(curve, w.Commitments); err != nil {
		return nil, err
	}

	if p.C0, err = anoncreds.DecodeZrs(curve, w.C0); err != nil {
		return nil, err
	}

	if p.Z0, err = anoncreds.DecodeZrs(curve, w.Z0); err != nil {
		return nil, err
	}

	if p.Z1, err = anoncreds.DecodeZrs(curve, w.Z1); err != nil {
		return nil, err
	}

	if p.ZR, err = w.ZR.Zr(curve); err != nil {
		return nil, err
	}

	return &p, nil
}

func (w *PredicateProof) empty() bool {
	return len(w.Commitments) == 0 && len(w.C0) == 0 && len(w.Z0) == 0 && len(w.Z1) == 0 && len(w.ZR) == 0
}

func encodeNonRevocProof(p *accumulator.MembershipProof) *NonRevocProof {
	return &NonRevocProof{
		EC:          anoncreds.G1Element(p.EC),
		TSigma:      anoncreds.G1Element(p.TSigma),
		TRho:        anoncreds.G1Element(p.TRho),
		SSigma:      anoncreds.ZrElement(p.SSigma),
		SRho:        anoncreds.ZrElement(p.SRho),
		SDeltaSigma: anoncreds.ZrElement(p.SDeltaSigma),
		SDeltaRho:   anoncreds.ZrElement(p.SDeltaRho),
	}
}

func (w *NonRevocProof) decode(curve *ml.Curve) (*accumulator.MembershipProof, error) {
	points, err := anoncreds.DecodeG1s(curve, []anoncreds.Element{w.EC, w.TSigma, w.TRho})
	if err != nil {
		return nil, err
	}

	scalars, err := anoncreds.DecodeZrs(curve, []anoncreds.Element{w.SSigma, w.SRho, w.SDeltaSigma, w.SDeltaRho})
	if err != nil {
		return nil, err
	}

	return &accumulator.MembershipProof{
		EC:          points[0],
		TSigma:      points[1],
		TRho:        points[2],
		SSigma:      scalars[0],
		SRho:        scalars[1],
		SDeltaSigma: scalars[2],
		SDeltaRho:   scalars[3],
	}, nil
}
