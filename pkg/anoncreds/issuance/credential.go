/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuance

import (
	"io"

	ml "github.com/IBM/mathlib"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/creddef"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/linksecret"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/nonce"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/revocation"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/accumulator"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/bbs"
)

// Credential is a signed set of attribute values. Values are keyed by canonical attribute name.
type Credential struct {
	SchemaID  string                              `json:"schema_id"`
	CredDefID string                              `json:"cred_def_id"`
	RevRegID  string                              `json:"rev_reg_id,omitempty"`
	Values    map[string]anoncreds.AttributeValue `json:"values"`
	Signature Signature                           `json:"signature"`
	RevReg    *revocation.Witness                 `json:"rev_reg,omitempty"`
	Nonce     nonce.Nonce                         `json:"nonce"`
}

// Signature is the wire form of a BBS+ signature.
type Signature struct {
	A anoncreds.Element `json:"a"`
	E anoncreds.Element `json:"e"`
	S anoncreds.Element `json:"s"`
}

// Values encodes raw attribute values.
func Values(raw map[string]string) map[string]anoncreds.AttributeValue {
	values := make(map[string]anoncreds.AttributeValue, len(raw))
	for name, v := range raw {
		values[name] = anoncreds.NewAttributeValue(v)
	}

	return values
}

// CreateCredential signs values for the holder of request. A revocable definition needs a registry,
// which allocates the credential's index.
func CreateCredential(rng io.Reader, cd *creddef.CredentialDefinition, sk *creddef.PrivateKey, offer *Offer,
	req *Request, values map[string]anoncreds.AttributeValue, reg *revocation.Registry) (*Credential, error) {
	s, pk, err := cd.Key()
	if err != nil {
		return nil, err
	}

	if err = offer.validate(cd); err != nil {
		return nil, err
	}

	u, err := req.verify(s, pk, cd, offer)
	if err != nil {
		return nil, err
	}

	canonical, err := checkValues(cd, values)
	if err != nil {
		return nil, err
	}

	if sk == nil {
		return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "missing credential definition private key")
	}

	signing, err := sk.SigningKey(s.Curve(), pk)
	if err != nil {
		return nil, err
	}

	cred := &Credential{SchemaID: cd.SchemaID, CredDefID: cd.ID, Values: canonical, Nonce: req.Nonce}

	msgs, err := cred.attributeMessages(s.Curve(), cd)
	if err != nil {
		return nil, err
	}

	// The index is allocated last. A failed signature revokes it again.
	if cred.RevReg, err = allocateIndex(cd, reg); err != nil {
		return nil, err
	}

	if idx, ok := cd.RevocationIndex(); ok {
		cred.RevRegID = cred.RevReg.RevRegDefID
		msgs[idx] = accumulator.New(s.Curve()).Element(cred.RevReg.Index)
	}

	known := make(map[int]*ml.Zr, len(msgs)-1)
	for i, m := range msgs {
		if i != creddef.LinkSecretIndex {
			known[i] = m
		}
	}

	sig, err := s.BlindSign(rng, signing, u, known)
	if err != nil {
		releaseIndex(reg, cred.RevReg)

		return nil, anoncreds.WrapError(anoncreds.KindMalformedInput, err, "sign credential")
	}

	cred.Signature = Signature{
		A: anoncreds.G1Element(sig.A),
		E: anoncreds.ZrElement(sig.E),
		S: anoncreds.ZrElement(sig.S),
	}

	logger.Debugf("issued credential of %s", cd.ID)

	return cred, nil
}

func allocateIndex(cd *creddef.CredentialDefinition, reg *revocation.Registry) (*revocation.Witness, error) {
	if !cd.Value.Revocation {
		if reg != nil {
			return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "credential definition %s is not revocable", cd.ID)
		}

		return nil, nil
	}

	if reg == nil || reg.Definition().CredDefID != cd.ID {
		return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "revocable credential definition %s needs its registry",
			cd.ID)
	}

	return reg.IssueIndex()
}

// releaseIndex revokes an index whose credential was never handed out, so that no witness for it
// can ever verify.
func releaseIndex(reg *revocation.Registry, w *revocation.Witness) {
	if w == nil {
		return
	}

	if err := reg.Revoke(w.Index); err != nil {
		logger.Errorf("failed to revoke unused index %d of registry %s: %s", w.Index, w.RevRegDefID, err)

		return
	}

	logger.Warnf("revoked unused index %d of registry %s", w.Index, w.RevRegDefID)
}

func checkValues(cd *creddef.CredentialDefinition, values map[string]anoncreds.AttributeValue) (
	map[string]anoncreds.AttributeValue, error) {
	canonical := make(map[string]anoncreds.AttributeValue, len(values))

	for name, v := range values {
		key := anoncreds.CanonicalAttrName(name)

		if _, ok := canonical[key]; ok {
			return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "attribute %q given twice", name)
		}

		if _, ok := cd.AttrIndex(key); !ok {
			return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "attribute %q is not part of %s", name, cd.ID)
		}

		if err := v.Validate(); err != nil {
			return nil, err
		}

		canonical[key] = v
	}

	if len(canonical) != len(cd.Value.Attributes) {
		missing := make([]string, 0)

		for _, a := range cd.Value.Attributes {
			if _, ok := canonical[a]; !ok {
				missing = append(missing, a)
			}
		}

		return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "missing attribute values %v", missing)
	}

	return canonical, nil
}

// ProcessCredential unblinds a freshly issued credential and checks its signature and, for revocable
// credentials, its witness. revDef may be nil for non revocable definitions.
func ProcessCredential(cred *Credential, meta *RequestMetadata, ls *linksecret.LinkSecret,
	cd *creddef.CredentialDefinition, revDef *revocation.Definition) (*Credential, error) {
	if cred == nil || meta == nil || ls == nil {
		return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "missing credential, metadata or link secret")
	}

	if cred.CredDefID != cd.ID || cred.SchemaID != cd.SchemaID {
		return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "credential of %s checked against %s",
			cred.CredDefID, cd.ID)
	}

	if cred.Nonce != meta.Nonce {
		return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "credential does not answer this request")
	}

	s, pk, err := cd.Key()
	if err != nil {
		return nil, err
	}

	if _, err = checkValues(cd, cred.Values); err != nil {
		return nil, err
	}

	curve := s.Curve()

	sig, err := cred.Signature.decode(curve)
	if err != nil {
		return nil, err
	}

	blinding, err := meta.Blinding.Zr(curve)
	if err != nil {
		return nil, err
	}

	sig = s.Unblind(sig, blinding)

	msgs, err := cred.Messages(curve, cd, ls)
	if err != nil {
		return nil, err
	}

	if err := s.Verify(pk, sig, msgs); err != nil {
		return nil, anoncreds.WrapError(anoncreds.KindMalformedInput, err, "credential signature")
	}

	if err := cred.checkRevocation(cd, revDef); err != nil {
		return nil, err
	}

	processed := *cred
	processed.Values = maps.Clone(cred.Values)
	processed.Signature.S = anoncreds.ZrElement(sig.S)

	if cred.RevReg != nil {
		w := *cred.RevReg
		processed.RevReg = &w
	}

	logger.Debugf("processed credential of %s", cd.ID)

	return &processed, nil
}

func (c *Credential) checkRevocation(cd *creddef.CredentialDefinition, revDef *revocation.Definition) error {
	if !cd.Value.Revocation {
		return nil
	}

	if revDef == nil || c.RevReg == nil || c.RevRegID != revDef.ID || c.RevReg.RevRegDefID != revDef.ID ||
		revDef.CredDefID != cd.ID {
		return anoncreds.NewError(anoncreds.KindMalformedInput, "revocable credential without matching registry")
	}

	if err := c.RevReg.Verify(revDef); err != nil {
		return anoncreds.WrapError(anoncreds.KindMalformedInput, err, "credential witness")
	}

	return nil
}

// Attribute returns the value of an attribute, matched by canonical name.
func (c *Credential) Attribute(name string) (anoncreds.AttributeValue, bool) {
	v, ok := c.Values[anoncreds.CanonicalAttrName(name)]

	return v, ok
}

// AttrNames lists the credential's attribute names in lexical order.
func (c *Credential) AttrNames() []string {
	names := maps.Keys(c.Values)
	slices.Sort(names)

	return names
}

// Messages returns the signed messages in key order: link secret, attributes, revocation handle.
func (c *Credential) Messages(curve *ml.Curve, cd *creddef.CredentialDefinition, ls *linksecret.LinkSecret) (
	[]*ml.Zr, error) {
	msgs, err := c.knownMessages(curve, cd)
	if err != nil {
		return nil, err
	}

	msgs[creddef.LinkSecretIndex] = ls.Scalar(curve)

	return msgs, nil
}

// knownMessages returns the messages the issuer knows; the link secret slot is left nil.
func (c *Credential) knownMessages(curve *ml.Curve, cd *creddef.CredentialDefinition) ([]*ml.Zr, error) {
	msgs, err := c.attributeMessages(curve, cd)
	if err != nil {
		return nil, err
	}

	if idx, ok := cd.RevocationIndex(); ok {
		if c.RevReg == nil {
			return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "revocable credential lacks its registry index")
		}

		msgs[idx] = accumulator.New(curve).Element(c.RevReg.Index)
	}

	return msgs, nil
}

// attributeMessages returns the full message vector with only the attribute slots filled.
func (c *Credential) attributeMessages(curve *ml.Curve, cd *creddef.CredentialDefinition) ([]*ml.Zr, error) {
	msgs := make([]*ml.Zr, cd.MessageCount())

	for i, name := range cd.Value.Attributes {
		v, ok := c.Values[name]
		if !ok {
			return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "credential lacks attribute %q", name)
		}

		m, err := anoncreds.EncodedToScalar(curve, v.Encoded)
		if err != nil {
			return nil, err
		}

		msgs[i+1] = m
	}

	return msgs, nil
}

func (sig *Signature) decode(curve *ml.Curve) (*bbs.Signature, error) {
	a, err := sig.A.G1(curve)
	if err != nil {
		return nil, err
	}

	scalars, err := anoncreds.DecodeZrs(curve, []anoncreds.Element{sig.E, sig.S})
	if err != nil {
		return nil, err
	}

	return &bbs.Signature{A: a, E: scalars[0], S: scalars[1]}, nil
}

// DecodeSignature decodes the credential signature.
func (c *Credential) DecodeSignature(curve *ml.Curve) (*bbs.Signature, error) {
	return c.Signature.decode(curve)
}
