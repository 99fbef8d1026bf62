/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package creddef creates issuer credential definitions: a BBS+ key over the schema's attributes,
// the link secret and, optionally, the revocation handle, together with a proof that the key is well
// formed.
package creddef

import (
	"io"
	"strconv"

	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/api"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/schema"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/scheme"
	"github.com/hyperledger/aries-anoncreds-go/pkg/common/log"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/bbs"
)

const (
	// Version is the serialization version of credential definitions.
	Version = "1.0"

	// LinkSecretIndex is the message index of the link secret.
	LinkSecretIndex = 0
)

var logger = log.New("anoncreds/creddef")

// CredentialDefinition is the public, ledger anchored part of an issuer key.
type CredentialDefinition struct {
	ID         string `json:"id"`
	SchemaID   string `json:"schemaId"`
	Type       string `json:"type"`
	Tag        string `json:"tag"`
	SchemeName string `json:"scheme"`
	Value      Value  `json:"value"`
	Ver        string `json:"ver"`
}

// Value holds the key material. Attributes are the canonical schema attribute names in signing order.
type Value struct {
	Attributes []string  `json:"attrs"`
	Revocation bool      `json:"revocation,omitempty"`
	Primary    PublicKey `json:"primary"`
}

// PublicKey is the wire form of a BBS+ public key.
type PublicKey struct {
	W     anoncreds.Element   `json:"w"`
	BarG1 anoncreds.Element   `json:"bar_g1"`
	BarG2 anoncreds.Element   `json:"bar_g2"`
	H0    anoncreds.Element   `json:"h0"`
	H     []anoncreds.Element `json:"h"`
}

// PrivateKey is the issuer's secret. It never leaves the issuer.
type PrivateKey struct {
	X anoncreds.Element `json:"x"`
}

// CorrectnessProof proves the public key is well formed.
type CorrectnessProof struct {
	C anoncreds.Element `json:"c"`
	S anoncreds.Element `json:"s"`
}

type options struct {
	revocation bool
}

// Opt configures Create.
type Opt func(*options)

// WithRevocation reserves a message for the revocation handle.
func WithRevocation() Opt {
	return func(o *options) {
		o.revocation = true
	}
}

// Create generates a credential definition for sch.
func Create(rng io.Reader, s api.SignatureScheme, sch schema.Schema, issuerID, tag string,
	opts ...Opt) (*CredentialDefinition, *PrivateKey, *CorrectnessProof, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if sch == nil {
		return nil, nil, nil, anoncreds.NewError(anoncreds.KindKeyGeneration, "missing schema")
	}

	if err := schema.Validate(sch); err != nil {
		return nil, nil, nil, anoncreds.WrapError(anoncreds.KindKeyGeneration, err, "invalid schema")
	}

	if err := anoncreds.ValidateName("issuer id", issuerID); err != nil {
		return nil, nil, nil, anoncreds.WrapError(anoncreds.KindKeyGeneration, err, "invalid issuer")
	}

	if err := anoncreds.ValidateName("credential definition tag", tag); err != nil {
		return nil, nil, nil, anoncreds.WrapError(anoncreds.KindKeyGeneration, err, "invalid tag")
	}

	names, err := sch.AttrNames()
	if err != nil {
		return nil, nil, nil, anoncreds.WrapError(anoncreds.KindKeyGeneration, err, "read schema attributes")
	}

	attrs := make([]string, len(names))
	for i, name := range names {
		attrs[i] = anoncreds.CanonicalAttrName(name)
	}

	cd := &CredentialDefinition{
		ID:         anoncreds.CredDefID(issuerID, schemaRef(sch), tag),
		SchemaID:   sch.ID(),
		Type:       anoncreds.SignatureType,
		Tag:        tag,
		SchemeName: s.Name(),
		Value:      Value{Attributes: attrs, Revocation: o.revocation},
		Ver:        Version,
	}

	sk, err := s.GenerateKey(rng, cd.MessageCount())
	if err != nil {
		return nil, nil, nil, anoncreds.WrapError(anoncreds.KindKeyGeneration, err, "generate key")
	}

	cd.Value.Primary = encodePublicKey(sk.PublicKey)
	proof := s.ProveKey(rng, sk)

	logger.Debugf("created credential definition %s with %d messages", cd.ID, cd.MessageCount())

	return cd, &PrivateKey{X: anoncreds.ZrElement(sk.X)},
		&CorrectnessProof{C: anoncreds.ZrElement(proof.C), S: anoncreds.ZrElement(proof.S)}, nil
}

// schemaRef is the schema's ledger sequence number when known, its id otherwise.
func schemaRef(sch schema.Schema) string {
	if v1, ok := sch.(*schema.V1); ok && v1.SeqNo != nil {
		return strconv.FormatUint(uint64(*v1.SeqNo), 10)
	}

	return sch.ID()
}

// VerifyCorrectness checks the definition's structure and its key correctness proof.
func VerifyCorrectness(cd *CredentialDefinition, proof *CorrectnessProof) error {
	if proof == nil {
		return anoncreds.NewError(anoncreds.KindInvalidCredDef, "missing correctness proof")
	}

	s, pk, err := cd.Key()
	if err != nil {
		return err
	}

	kp := &bbs.KeyProof{}

	if kp.C, err = proof.C.Zr(s.Curve()); err != nil {
		return anoncreds.WrapError(anoncreds.KindInvalidCredDef, err, "decode correctness proof")
	}

	if kp.S, err = proof.S.Zr(s.Curve()); err != nil {
		return anoncreds.WrapError(anoncreds.KindInvalidCredDef, err, "decode correctness proof")
	}

	if err := s.VerifyKey(pk, kp); err != nil {
		logger.Warnf("credential definition %s failed its correctness proof", cd.ID)

		return anoncreds.WrapError(anoncreds.KindInvalidCredDef, err, "credential definition %s", cd.ID)
	}

	return nil
}

// Validate checks identifiers and the key shape without decoding the key.
func (cd *CredentialDefinition) Validate() error {
	if cd == nil {
		return anoncreds.NewError(anoncreds.KindInvalidCredDef, "missing credential definition")
	}

	if err := anoncreds.ValidateID("credential definition id", cd.ID); err != nil {
		return anoncreds.WrapError(anoncreds.KindInvalidCredDef, err, "invalid id")
	}

	if err := anoncreds.ValidateID("schema id", cd.SchemaID); err != nil {
		return anoncreds.WrapError(anoncreds.KindInvalidCredDef, err, "invalid schema id")
	}

	if cd.Type != anoncreds.SignatureType || cd.Ver != Version {
		return anoncreds.NewError(anoncreds.KindInvalidCredDef, "unsupported credential definition %s/%s", cd.Type, cd.Ver)
	}

	if len(cd.Value.Attributes) == 0 {
		return anoncreds.NewError(anoncreds.KindInvalidCredDef, "credential definition %s has no attributes", cd.ID)
	}

	seen := make(map[string]bool, len(cd.Value.Attributes))

	for _, a := range cd.Value.Attributes {
		if a == "" || a != anoncreds.CanonicalAttrName(a) || seen[a] {
			return anoncreds.NewError(anoncreds.KindInvalidCredDef, "invalid attribute name %q", a)
		}

		seen[a] = true
	}

	if len(cd.Value.Primary.H) != cd.MessageCount() {
		return anoncreds.NewError(anoncreds.KindInvalidCredDef, "key has %d generators, expected %d",
			len(cd.Value.Primary.H), cd.MessageCount())
	}

	return nil
}

// Scheme returns the signature scheme backend the definition was created with.
func (cd *CredentialDefinition) Scheme() (api.SignatureScheme, error) {
	s, err := scheme.Get(cd.SchemeName)
	if err != nil {
		return nil, anoncreds.WrapError(anoncreds.KindInvalidCredDef, err, "credential definition %s", cd.ID)
	}

	return s, nil
}

// Key validates the definition and decodes its public key.
func (cd *CredentialDefinition) Key() (api.SignatureScheme, *bbs.PublicKey, error) {
	if err := cd.Validate(); err != nil {
		return nil, nil, err
	}

	s, err := cd.Scheme()
	if err != nil {
		return nil, nil, err
	}

	pk, err := decodePublicKey(s.Curve(), &cd.Value.Primary)
	if err != nil {
		return nil, nil, anoncreds.WrapError(anoncreds.KindInvalidCredDef, err, "credential definition %s", cd.ID)
	}

	return s, pk, nil
}

// MessageCount is the number of signed messages.
func (cd *CredentialDefinition) MessageCount() int {
	n := len(cd.Value.Attributes) + 1
	if cd.Value.Revocation {
		n++
	}

	return n
}

// AttrIndex returns the message index of an attribute, matched by canonical name.
func (cd *CredentialDefinition) AttrIndex(name string) (int, bool) {
	canonical := anoncreds.CanonicalAttrName(name)

	for i, a := range cd.Value.Attributes {
		if a == canonical {
			return i + 1, true
		}
	}

	return 0, false
}

// RevocationIndex returns the message index of the revocation handle.
func (cd *CredentialDefinition) RevocationIndex() (int, bool) {
	if !cd.Value.Revocation {
		return 0, false
	}

	return len(cd.Value.Attributes) + 1, true
}

// SigningKey decodes the private key against its definition.
func (sk *PrivateKey) SigningKey(curve *ml.Curve, pk *bbs.PublicKey) (*bbs.PrivateKey, error) {
	x, err := sk.X.Zr(curve)
	if err != nil {
		return nil, err
	}

	return &bbs.PrivateKey{X: x, PublicKey: pk}, nil
}

func encodePublicKey(pk *bbs.PublicKey) PublicKey {
	return PublicKey{
		W:     anoncreds.G2Element(pk.W),
		BarG1: anoncreds.G1Element(pk.BarG1),
		BarG2: anoncreds.G1Element(pk.BarG2),
		H0:    anoncreds.G1Element(pk.H0),
		H:     anoncreds.G1Elements(pk.H),
	}
}

func decodePublicKey(curve *ml.Curve, w *PublicKey) (*bbs.PublicKey, error) {
	pk := &bbs.PublicKey{}

	var err error

	if pk.W, err = w.W.G2(curve); err != nil {
		return nil, err
	}

	g1s, err := anoncreds.DecodeG1s(curve, []anoncreds.Element{w.BarG1, w.BarG2, w.H0})
	if err != nil {
		return nil, err
	}

	pk.BarG1, pk.BarG2, pk.H0 = g1s[0], g1s[1], g1s[2]

	if pk.H, err = anoncreds.DecodeG1s(curve, w.H); err != nil {
		return nil, err
	}

	return pk, nil
}
