/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuance

import (
	"io"
	"sync"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/creddef"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/nonce"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/revocation"
)

// OfferState tracks an offer through the handshake.
type OfferState int

// Offer states.
const (
	StateOffered OfferState = iota + 1
	StateRequested
	StateIssued
)

func (s OfferState) String() string {
	switch s {
	case StateOffered:
		return "OFFERED"
	case StateRequested:
		return "REQUESTED"
	case StateIssued:
		return "ISSUED"
	default:
		return "UNKNOWN"
	}
}

// Issuer issues credentials of one credential definition and makes every offer single use.
type Issuer struct {
	mu sync.Mutex

	cd       *creddef.CredentialDefinition
	sk       *creddef.PrivateKey
	proof    *creddef.CorrectnessProof
	registry *revocation.Registry
	offers   map[nonce.Nonce]OfferState
}

// IssuerOpt configures an Issuer.
type IssuerOpt func(*Issuer)

// WithRegistry attaches the revocation registry of a revocable definition.
func WithRegistry(r *revocation.Registry) IssuerOpt {
	return func(i *Issuer) {
		i.registry = r
	}
}

// NewIssuer checks the definition's correctness proof and returns an issuer for it.
func NewIssuer(cd *creddef.CredentialDefinition, sk *creddef.PrivateKey, proof *creddef.CorrectnessProof,
	opts ...IssuerOpt) (*Issuer, error) {
	if err := creddef.VerifyCorrectness(cd, proof); err != nil {
		return nil, err
	}

	i := &Issuer{cd: cd, sk: sk, proof: proof, offers: make(map[nonce.Nonce]OfferState)}

	for _, opt := range opts {
		opt(i)
	}

	if cd.Value.Revocation != (i.registry != nil) ||
		(i.registry != nil && i.registry.Definition().CredDefID != cd.ID) {
		return nil, anoncreds.NewError(anoncreds.KindMalformedInput,
			"credential definition %s needs a registry exactly when it is revocable", cd.ID)
	}

	return i, nil
}

// Offer creates a new offer.
func (i *Issuer) Offer(rng io.Reader) (*Offer, error) {
	offer, err := CreateOffer(rng, i.cd, i.proof)
	if err != nil {
		return nil, err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.offers[offer.Nonce]; ok {
		return nil, anoncreds.NewError(anoncreds.KindReplayedNonce, "offer nonce %s already in use", offer.Nonce)
	}

	i.offers[offer.Nonce] = StateOffered

	return offer, nil
}

// Issue answers a request for one of this issuer's offers. An offer yields at most one credential.
func (i *Issuer) Issue(rng io.Reader, offer *Offer, req *Request,
	values map[string]anoncreds.AttributeValue) (*Credential, error) {
	if offer == nil {
		return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "missing offer")
	}

	if err := i.transition(offer.Nonce, StateOffered, StateRequested); err != nil {
		return nil, err
	}

	cred, err := CreateCredential(rng, i.cd, i.sk, offer, req, values, i.registry)
	if err != nil {
		i.set(offer.Nonce, StateOffered)

		return nil, err
	}

	i.set(offer.Nonce, StateIssued)

	return cred, nil
}

// State returns the state of the offer with nonce n.
func (i *Issuer) State(n nonce.Nonce) (OfferState, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	s, ok := i.offers[n]

	return s, ok
}

func (i *Issuer) transition(n nonce.Nonce, from, to OfferState) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	s, ok := i.offers[n]

	switch {
	case !ok:
		return anoncreds.NewError(anoncreds.KindInvalidState, "unknown offer %s", n)
	case s == StateIssued:
		logger.Warnf("request for already issued offer %s", n)

		return anoncreds.NewError(anoncreds.KindReplayedNonce, "offer %s was already issued", n)
	case s != from:
		return anoncreds.NewError(anoncreds.KindInvalidState, "offer %s is %s", n, s)
	}

	i.offers[n] = to

	return nil
}

func (i *Issuer) set(n nonce.Nonce, s OfferState) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.offers[n] = s
}
