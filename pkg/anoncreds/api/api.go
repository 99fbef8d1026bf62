/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

//go:generate mockgen -destination ../../internal/gomocks/anoncreds/api/mocks.gen.go -package api . CredentialSelector

// Package api defines the capabilities the anonymous credential protocol consumes from the outside:
// the signature scheme backend and the holder's credential query engine.
package api

import (
	"encoding/json"
	"io"

	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/bbs"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/transcript"
)

// SignatureScheme is a BBS+ signature scheme over one pairing friendly curve.
type SignatureScheme interface {
	// Name identifies the backend; credential definitions record it.
	Name() string
	// Curve returns the curve all keys, signatures and proofs live on.
	Curve() *ml.Curve

	GenerateKey(rng io.Reader, messageCount int) (*bbs.PrivateKey, error)
	ProveKey(rng io.Reader, sk *bbs.PrivateKey) *bbs.KeyProof
	VerifyKey(pk *bbs.PublicKey, proof *bbs.KeyProof) error

	Commit(rng io.Reader, pk *bbs.PublicKey, hidden map[int]*ml.Zr, nonce []byte) (*bbs.Commitment, *ml.Zr, error)
	VerifyCommitment(pk *bbs.PublicKey, cm *bbs.Commitment, nonce []byte) error

	BlindSign(rng io.Reader, sk *bbs.PrivateKey, commitment *ml.G1, known map[int]*ml.Zr) (*bbs.Signature, error)
	Unblind(sig *bbs.Signature, blinding *ml.Zr) *bbs.Signature
	Verify(pk *bbs.PublicKey, sig *bbs.Signature, messages []*ml.Zr) error

	NewPoKOfSignature(rng io.Reader, pk *bbs.PublicKey, sig *bbs.Signature, messages []*ml.Zr, revealed []int,
		blindings map[int]*ml.Zr) (*bbs.PoKOfSignature, error)
	VerifyPoKPairing(pk *bbs.PublicKey, proof *bbs.PoKOfSignatureProof) error
	ContributePoK(t *transcript.Transcript, pk *bbs.PublicKey, proof *bbs.PoKOfSignatureProof,
		revealed map[int]*ml.Zr, c *ml.Zr) error
}

// CredentialInfo describes a stored credential to the holder's selection logic.
type CredentialInfo struct {
	Referent  string            `json:"referent"`
	SchemaID  string            `json:"schema_id"`
	CredDefID string            `json:"cred_def_id"`
	RevRegID  string            `json:"rev_reg_id,omitempty"`
	Attrs     map[string]string `json:"attrs"`
}

// CredentialSelector is the holder's query engine over stored credentials. Restrictions are the
// verifier's opaque restriction query; the selector returns the credentials that match it and carry
// every attribute in attrNames.
type CredentialSelector interface {
	Select(restrictions json.RawMessage, attrNames []string) ([]CredentialInfo, error)
}
