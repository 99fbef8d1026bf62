/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package issuance implements the credential issuance handshake: the issuer offers a credential, the
// holder answers with a request carrying a blinded commitment to its link secret, and the issuer signs
// the attribute values together with that commitment. The holder unblinds the signature and checks it.
package issuance

import (
	"io"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/creddef"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/nonce"
	"github.com/hyperledger/aries-anoncreds-go/pkg/common/log"
)

var logger = log.New("anoncreds/issuance")

// Offer announces a credential of a credential definition.
type Offer struct {
	SchemaID            string                   `json:"schema_id"`
	CredDefID           string                   `json:"cred_def_id"`
	KeyCorrectnessProof creddef.CorrectnessProof `json:"key_correctness_proof"`
	Nonce               nonce.Nonce              `json:"nonce"`
}

// CreateOffer offers a credential of cd. The definition must pass its correctness proof.
func CreateOffer(rng io.Reader, cd *creddef.CredentialDefinition, proof *creddef.CorrectnessProof) (*Offer, error) {
	if err := creddef.VerifyCorrectness(cd, proof); err != nil {
		return nil, err
	}

	n, err := nonce.New(rng)
	if err != nil {
		return nil, err
	}

	logger.Debugf("created offer for %s", cd.ID)

	return &Offer{
		SchemaID:            cd.SchemaID,
		CredDefID:           cd.ID,
		KeyCorrectnessProof: *proof,
		Nonce:               n,
	}, nil
}

func (o *Offer) validate(cd *creddef.CredentialDefinition) error {
	if o == nil {
		return anoncreds.NewError(anoncreds.KindMalformedInput, "missing offer")
	}

	if o.CredDefID != cd.ID || o.SchemaID != cd.SchemaID {
		return anoncreds.NewError(anoncreds.KindMalformedInput, "offer for %s does not match credential definition %s",
			o.CredDefID, cd.ID)
	}

	return o.Nonce.Validate()
}
