/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentation

import (
	"fmt"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/api"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/issuance"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/presreq"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/revocation"
)

// Credentials records which credential answers each referent of a request. Referents answered by the
// same credential and witness share a sub-proof.
type Credentials struct {
	attrs map[string]attrChoice
	preds map[string]*entry
}

type attrChoice struct {
	entry    *entry
	revealed bool
}

type entry struct {
	cred    *issuance.Credential
	witness *revocation.Witness
}

// key identifies the sub-proof an entry belongs to.
func (e *entry) key() string {
	var ts int64

	w := e.revState()
	if w != nil {
		ts = w.Timestamp
	}

	return fmt.Sprintf("%s/%s/%d", e.cred.CredDefID, e.cred.Signature.A, ts)
}

// revState is the witness to prove non-revocation with: the one supplied, or the one issued.
func (e *entry) revState() *revocation.Witness {
	if e.witness != nil {
		return e.witness
	}

	return e.cred.RevReg
}

// CredentialOpt configures how a credential is used.
type CredentialOpt func(*entry)

// WithWitness proves non-revocation with w instead of the witness the credential was issued with.
// Holders pass their freshest witness here.
func WithWitness(w *revocation.Witness) CredentialOpt {
	return func(e *entry) {
		e.witness = w
	}
}

// NewCredentials returns an empty selection.
func NewCredentials() *Credentials {
	return &Credentials{
		attrs: make(map[string]attrChoice),
		preds: make(map[string]*entry),
	}
}

// AddAttribute answers an attribute referent from cred. Unrevealed attributes are only proven to be
// present in a valid credential. Attribute groups are always revealed.
func (c *Credentials) AddAttribute(referent string, cred *issuance.Credential, revealed bool,
	opts ...CredentialOpt) *Credentials {
	c.attrs[referent] = attrChoice{entry: newEntry(cred, opts), revealed: revealed}

	return c
}

// AddPredicate answers a predicate referent from cred.
func (c *Credentials) AddPredicate(referent string, cred *issuance.Credential, opts ...CredentialOpt) *Credentials {
	c.preds[referent] = newEntry(cred, opts)

	return c
}

func newEntry(cred *issuance.Credential, opts []CredentialOpt) *entry {
	e := &entry{cred: cred}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Candidates lists, per referent, the stored credentials that can answer it.
type Candidates struct {
	Attrs      map[string][]api.CredentialInfo `json:"attrs"`
	Predicates map[string][]api.CredentialInfo `json:"predicates"`
}

// SelectCredentials asks selector for the credentials matching every referent of req. Filtering by
// restrictions is entirely up to the selector; a referent without candidates is not an error because
// the holder may still self attest it.
func SelectCredentials(selector api.CredentialSelector, req *presreq.PresentationRequest) (*Candidates, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	candidates := &Candidates{
		Attrs:      make(map[string][]api.CredentialInfo, len(req.RequestedAttributes)),
		Predicates: make(map[string][]api.CredentialInfo, len(req.RequestedPredicates)),
	}

	for _, referent := range req.AttributeReferents() {
		info := req.RequestedAttributes[referent]

		found, err := selector.Select(info.Restrictions, info.AttrNames())
		if err != nil {
			return nil, anoncreds.WrapError(anoncreds.KindUnknown, err, "select credentials for %q", referent)
		}

		candidates.Attrs[referent] = found
	}

	for _, referent := range req.PredicateReferents() {
		info := req.RequestedPredicates[referent]

		found, err := selector.Select(info.Restrictions, []string{info.Name})
		if err != nil {
			return nil, anoncreds.WrapError(anoncreds.KindUnknown, err, "select credentials for %q", referent)
		}

		candidates.Predicates[referent] = found
	}

	return candidates, nil
}
