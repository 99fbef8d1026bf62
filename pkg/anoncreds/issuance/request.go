/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuance

import (
	"io"

	ml "github.com/IBM/mathlib"
	"github.com/google/uuid"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/api"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/creddef"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/linksecret"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/nonce"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/bbs"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/transcript"
)

const requestLabel = "anoncreds/credential-request"

// Request asks for the offered credential. It identifies the holder by DID or, when the holder has
// none, by random entropy.
type Request struct {
	ProverDID         string            `json:"prover_did,omitempty"`
	Entropy           string            `json:"entropy,omitempty"`
	CredDefID         string            `json:"cred_def_id"`
	BlindedLinkSecret BlindedLinkSecret `json:"blinded_ms"`
	Nonce             nonce.Nonce       `json:"nonce"`
}

// BlindedLinkSecret is the commitment U = h0*s' + h_ls*ls with its proof of opening.
type BlindedLinkSecret struct {
	U           anoncreds.Element `json:"u"`
	C           anoncreds.Element `json:"c"`
	ZBlinding   anoncreds.Element `json:"z_blinding"`
	ZLinkSecret anoncreds.Element `json:"z_ms"`
}

// RequestMetadata is the holder's private state between request and credential.
type RequestMetadata struct {
	Blinding       anoncreds.Element `json:"link_secret_blinding_data"`
	Nonce          nonce.Nonce       `json:"nonce"`
	LinkSecretName string            `json:"link_secret_name"`
}

// CreateRequest checks the offer against cd and commits to the link secret.
func CreateRequest(rng io.Reader, proverDID string, cd *creddef.CredentialDefinition, ls *linksecret.LinkSecret,
	linkSecretName string, offer *Offer) (*Request, *RequestMetadata, error) {
	if err := offer.validate(cd); err != nil {
		return nil, nil, err
	}

	if err := creddef.VerifyCorrectness(cd, &offer.KeyCorrectnessProof); err != nil {
		return nil, nil, err
	}

	if ls == nil {
		return nil, nil, anoncreds.NewError(anoncreds.KindMalformedInput, "missing link secret")
	}

	s, pk, err := cd.Key()
	if err != nil {
		return nil, nil, err
	}

	req := &Request{ProverDID: proverDID, CredDefID: cd.ID}

	if proverDID == "" {
		id, e := uuid.NewRandomFromReader(rng)
		if e != nil {
			return nil, nil, anoncreds.WrapError(anoncreds.KindMalformedInput, e, "generate request entropy")
		}

		req.Entropy = id.String()
	}

	hidden := map[int]*ml.Zr{creddef.LinkSecretIndex: ls.Scalar(s.Curve())}

	cm, blinding, err := s.Commit(rng, pk, hidden, requestContext(offer.Nonce, cd.ID, req.holderID()))
	if err != nil {
		return nil, nil, anoncreds.WrapError(anoncreds.KindMalformedInput, err, "commit to link secret")
	}

	req.BlindedLinkSecret = BlindedLinkSecret{
		U:           anoncreds.G1Element(cm.U),
		C:           anoncreds.ZrElement(cm.C),
		ZBlinding:   anoncreds.ZrElement(cm.ZBlinding),
		ZLinkSecret: anoncreds.ZrElement(cm.Z[creddef.LinkSecretIndex]),
	}

	if req.Nonce, err = nonce.New(rng); err != nil {
		return nil, nil, err
	}

	logger.Debugf("created request for %s", cd.ID)

	return req, &RequestMetadata{
		Blinding:       anoncreds.ZrElement(blinding),
		Nonce:          req.Nonce,
		LinkSecretName: linkSecretName,
	}, nil
}

func (r *Request) holderID() string {
	if r.ProverDID != "" {
		return r.ProverDID
	}

	return r.Entropy
}

// verify checks the commitment proof against the offer it answers and returns the commitment.
func (r *Request) verify(s api.SignatureScheme, pk *bbs.PublicKey, cd *creddef.CredentialDefinition,
	offer *Offer) (*ml.G1, error) {
	if r == nil {
		return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "missing request")
	}

	if r.CredDefID != cd.ID {
		return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "request for %s answers an offer for %s",
			r.CredDefID, cd.ID)
	}

	if r.holderID() == "" {
		return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "request carries neither prover DID nor entropy")
	}

	if err := r.Nonce.Validate(); err != nil {
		return nil, err
	}

	curve := s.Curve()
	cm := &bbs.Commitment{}

	var err error

	if cm.U, err = r.BlindedLinkSecret.U.G1(curve); err != nil {
		return nil, err
	}

	scalars, err := anoncreds.DecodeZrs(curve, []anoncreds.Element{
		r.BlindedLinkSecret.C, r.BlindedLinkSecret.ZBlinding, r.BlindedLinkSecret.ZLinkSecret,
	})
	if err != nil {
		return nil, err
	}

	cm.C, cm.ZBlinding = scalars[0], scalars[1]
	cm.Z = map[int]*ml.Zr{creddef.LinkSecretIndex: scalars[2]}

	if err := s.VerifyCommitment(pk, cm, requestContext(offer.Nonce, cd.ID, r.holderID())); err != nil {
		logger.Warnf("credential request for %s failed verification", cd.ID)

		return nil, anoncreds.WrapError(anoncreds.KindRequestVerification, err, "blinded link secret")
	}

	return cm.U, nil
}

// requestContext binds the commitment proof to the offer nonce, the definition and the holder.
func requestContext(offerNonce nonce.Nonce, credDefID, holderID string) []byte {
	t := transcript.New(requestLabel)
	t.AppendBytes(offerNonce.Bytes())
	t.AppendString(credDefID)
	t.AppendString(holderID)

	return t.Bytes()
}
