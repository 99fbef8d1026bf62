/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package presreq describes what a verifier asks of a holder: attributes to reveal, predicates over
// hidden attributes, an optional non-revocation interval and a fresh nonce.
package presreq

import (
	"bytes"
	"encoding/json"
	"io"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/nonce"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/rangeproof"
)

// Version is the serialization version of presentation requests.
const Version = "1.0"

// PredicateType is a comparison operator.
type PredicateType string

// Supported predicates.
const (
	GE PredicateType = ">="
	GT PredicateType = ">"
	LE PredicateType = "<="
	LT PredicateType = "<"
)

// PresentationRequest is a verifier's request.
type PresentationRequest struct {
	Name                string                   `json:"name"`
	Version             string                   `json:"version"`
	Nonce               nonce.Nonce              `json:"nonce"`
	RequestedAttributes map[string]AttributeInfo `json:"requested_attributes"`
	RequestedPredicates map[string]PredicateInfo `json:"requested_predicates"`
	NonRevoked          *NonRevokedInterval      `json:"non_revoked,omitempty"`
	Ver                 string                   `json:"ver,omitempty"`
}

// AttributeInfo requests a single attribute (Name) or a group of attributes of one credential (Names).
type AttributeInfo struct {
	Name         string              `json:"name,omitempty"`
	Names        []string            `json:"names,omitempty"`
	Restrictions json.RawMessage     `json:"restrictions,omitempty"`
	NonRevoked   *NonRevokedInterval `json:"non_revoked,omitempty"`
}

// PredicateInfo requests proof that attribute Name compares to PValue.
type PredicateInfo struct {
	Name         string              `json:"name"`
	PType        PredicateType       `json:"p_type"`
	PValue       int32               `json:"p_value"`
	Restrictions json.RawMessage     `json:"restrictions,omitempty"`
	NonRevoked   *NonRevokedInterval `json:"non_revoked,omitempty"`
}

// NonRevokedInterval bounds the time of the accumulator state a non-revocation proof refers to.
// Missing ends are open.
type NonRevokedInterval struct {
	From *int64 `json:"from,omitempty"`
	To   *int64 `json:"to,omitempty"`
}

// New starts a request with a fresh nonce.
func New(rng io.Reader, name, version string) (*PresentationRequest, error) {
	n, err := nonce.New(rng)
	if err != nil {
		return nil, err
	}

	return &PresentationRequest{
		Name:                name,
		Version:             version,
		Nonce:               n,
		RequestedAttributes: make(map[string]AttributeInfo),
		RequestedPredicates: make(map[string]PredicateInfo),
		Ver:                 Version,
	}, nil
}

// AddAttribute requests an attribute or attribute group under referent.
func (r *PresentationRequest) AddAttribute(referent string, info AttributeInfo) *PresentationRequest {
	if r.RequestedAttributes == nil {
		r.RequestedAttributes = make(map[string]AttributeInfo)
	}

	r.RequestedAttributes[referent] = info

	return r
}

// AddPredicate requests a predicate under referent.
func (r *PresentationRequest) AddPredicate(referent string, info PredicateInfo) *PresentationRequest {
	if r.RequestedPredicates == nil {
		r.RequestedPredicates = make(map[string]PredicateInfo)
	}

	r.RequestedPredicates[referent] = info

	return r
}

// SetNonRevoked sets the global non-revocation interval.
func (r *PresentationRequest) SetNonRevoked(from, to int64) *PresentationRequest {
	r.NonRevoked = &NonRevokedInterval{From: &from, To: &to}

	return r
}

// Validate checks the request's structure.
func (r *PresentationRequest) Validate() error {
	if err := r.Nonce.Validate(); err != nil {
		return err
	}

	if r.Ver != "" && r.Ver != Version {
		return anoncreds.NewError(anoncreds.KindUnsupported, "presentation request version %q", r.Ver)
	}

	if len(r.RequestedAttributes)+len(r.RequestedPredicates) == 0 {
		return anoncreds.NewError(anoncreds.KindMalformedInput, "presentation request asks for nothing")
	}

	if err := r.NonRevoked.Validate(); err != nil {
		return err
	}

	for referent, info := range r.RequestedAttributes {
		if _, ok := r.RequestedPredicates[referent]; ok {
			return anoncreds.NewError(anoncreds.KindMalformedInput, "referent %q names an attribute and a predicate", referent)
		}

		if err := info.validate(referent); err != nil {
			return err
		}
	}

	for referent, info := range r.RequestedPredicates {
		if err := info.validate(referent); err != nil {
			return err
		}
	}

	return nil
}

// AttributeReferents lists attribute referents in lexical order.
func (r *PresentationRequest) AttributeReferents() []string {
	referents := maps.Keys(r.RequestedAttributes)
	slices.Sort(referents)

	return referents
}

// PredicateReferents lists predicate referents in lexical order.
func (r *PresentationRequest) PredicateReferents() []string {
	referents := maps.Keys(r.RequestedPredicates)
	slices.Sort(referents)

	return referents
}

// NonRevokedFor returns the interval that applies to referent: its own, or the global one.
func (r *PresentationRequest) NonRevokedFor(referent string) *NonRevokedInterval {
	if info, ok := r.RequestedAttributes[referent]; ok && info.NonRevoked != nil {
		return info.NonRevoked
	}

	if info, ok := r.RequestedPredicates[referent]; ok && info.NonRevoked != nil {
		return info.NonRevoked
	}

	return r.NonRevoked
}

func (a AttributeInfo) validate(referent string) error {
	if referent == "" {
		return anoncreds.NewError(anoncreds.KindMalformedInput, "empty attribute referent")
	}

	if (a.Name == "") == (len(a.Names) == 0) {
		return anoncreds.NewError(anoncreds.KindMalformedInput, "attribute %q needs either name or names", referent)
	}

	seen := make(map[string]bool, len(a.Names))

	for _, name := range a.Names {
		canonical := anoncreds.CanonicalAttrName(name)
		if canonical == "" || seen[canonical] {
			return anoncreds.NewError(anoncreds.KindMalformedInput, "attribute group %q has an empty or repeated name", referent)
		}

		seen[canonical] = true
	}

	return a.NonRevoked.Validate()
}

// AttrNames returns the requested attribute names.
func (a AttributeInfo) AttrNames() []string {
	if a.Name != "" {
		return []string{a.Name}
	}

	return a.Names
}

// SelfAttestable reports whether the attribute may be answered without a credential, which is the
// case when it carries no restrictions.
func (a AttributeInfo) SelfAttestable() bool {
	return a.Name != "" && emptyRestrictions(a.Restrictions)
}

func emptyRestrictions(r json.RawMessage) bool {
	trimmed := bytes.TrimSpace(r)

	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) ||
		bytes.Equal(trimmed, []byte("[]")) || bytes.Equal(trimmed, []byte("{}"))
}

func (p PredicateInfo) validate(referent string) error {
	if referent == "" || anoncreds.CanonicalAttrName(p.Name) == "" {
		return anoncreds.NewError(anoncreds.KindMalformedInput, "predicate %q needs an attribute name", referent)
	}

	switch p.PType {
	case GE, GT, LE, LT:
	default:
		return anoncreds.NewError(anoncreds.KindMalformedInput, "predicate %q has unsupported type %q", referent, p.PType)
	}

	return p.NonRevoked.Validate()
}

// Bound converts the predicate into an inclusive range proof bound.
func (p PredicateInfo) Bound() (int64, rangeproof.Bound) {
	v := int64(p.PValue)

	switch p.PType {
	case GT:
		return v + 1, rangeproof.AtLeast
	case LE:
		return v, rangeproof.AtMost
	case LT:
		return v - 1, rangeproof.AtMost
	default:
		return v, rangeproof.AtLeast
	}
}

// Satisfied reports whether value satisfies the predicate.
func (p PredicateInfo) Satisfied(value int32) bool {
	switch p.PType {
	case GE:
		return value >= p.PValue
	case GT:
		return value > p.PValue
	case LE:
		return value <= p.PValue
	case LT:
		return value < p.PValue
	default:
		return false
	}
}

// Validate checks that the interval is not inverted. A nil interval is valid.
func (i *NonRevokedInterval) Validate() error {
	if i != nil && i.From != nil && i.To != nil && *i.From > *i.To {
		return anoncreds.NewError(anoncreds.KindMalformedInput, "non revoked interval %d..%d is inverted", *i.From, *i.To)
	}

	return nil
}

// Contains reports whether ts lies within the interval.
func (i *NonRevokedInterval) Contains(ts int64) bool {
	if i == nil {
		return true
	}

	if i.From != nil && ts < *i.From {
		return false
	}

	return i.To == nil || ts <= *i.To
}
