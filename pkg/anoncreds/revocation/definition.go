/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package revocation maintains revocation registries: an accumulator over the revocation handles of
// the credentials that are still valid, its full version history, and the witnesses holders keep to
// prove their credential is still a member.
package revocation

import (
	"io"

	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/creddef"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/scheme"
	"github.com/hyperledger/aries-anoncreds-go/pkg/common/log"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/accumulator"
)

const (
	// Version is the serialization version of registry definitions.
	Version = "1.0"

	// MaxCapacity bounds the number of credentials per registry.
	MaxCapacity = 1 << 20
)

var logger = log.New("anoncreds/revocation")

// IssuanceType selects how indices enter the accumulator.
type IssuanceType string

const (
	// IssuanceOnDemand adds an index to the accumulator when its credential is issued.
	IssuanceOnDemand IssuanceType = "ISSUANCE_ON_DEMAND"
	// IssuanceByDefault starts with every index in the accumulator; issuing only allocates it.
	IssuanceByDefault IssuanceType = "ISSUANCE_BY_DEFAULT"
)

// Policy decides whether revocation can be undone.
type Policy string

const (
	// Monotonic registries never unrevoke.
	Monotonic Policy = "monotonic"
	// Suspendable registries allow a revoked index to be restored.
	Suspendable Policy = "suspendable"
)

// Definition is the public, ledger anchored description of a registry.
type Definition struct {
	ID           string          `json:"id"`
	RevocDefType string          `json:"revocDefType"`
	Tag          string          `json:"tag"`
	CredDefID    string          `json:"credDefId"`
	Value        DefinitionValue `json:"value"`
	Ver          string          `json:"ver"`
}

// DefinitionValue holds the registry parameters.
type DefinitionValue struct {
	IssuanceType IssuanceType `json:"issuanceType"`
	MaxCredNum   uint32       `json:"maxCredNum"`
	Policy       Policy       `json:"policy"`
	SchemeName   string       `json:"scheme"`
	PublicKey    PublicKey    `json:"publicKeys"`
}

// PublicKey is the wire form of the accumulator public key.
type PublicKey struct {
	Q anoncreds.Element `json:"q"`
	P anoncreds.Element `json:"p"`
	X anoncreds.Element `json:"x"`
	Y anoncreds.Element `json:"y"`
	Z anoncreds.Element `json:"z"`
}

// PrivateKey is the accumulator trapdoor.
type PrivateKey struct {
	Alpha anoncreds.Element `json:"alpha"`
}

type defOptions struct {
	issuanceType IssuanceType
	policy       Policy
}

// DefinitionOpt configures CreateDefinition.
type DefinitionOpt func(*defOptions)

// WithIssuanceType sets the issuance type; the default is IssuanceOnDemand.
func WithIssuanceType(t IssuanceType) DefinitionOpt {
	return func(o *defOptions) {
		o.issuanceType = t
	}
}

// WithPolicy sets the revocation policy; the default is Monotonic.
func WithPolicy(p Policy) DefinitionOpt {
	return func(o *defOptions) {
		o.policy = p
	}
}

// CreateDefinition creates a registry for credentials of cd holding at most capacity credentials.
func CreateDefinition(rng io.Reader, cd *creddef.CredentialDefinition, issuerID, tag string, capacity uint32,
	opts ...DefinitionOpt) (*Definition, *PrivateKey, error) {
	o := &defOptions{issuanceType: IssuanceOnDemand, policy: Monotonic}
	for _, opt := range opts {
		opt(o)
	}

	if err := cd.Validate(); err != nil {
		return nil, nil, err
	}

	if !cd.Value.Revocation {
		return nil, nil, anoncreds.NewError(anoncreds.KindUnsupported,
			"credential definition %s does not support revocation", cd.ID)
	}

	if err := anoncreds.ValidateName("issuer id", issuerID); err != nil {
		return nil, nil, err
	}

	if err := anoncreds.ValidateName("registry tag", tag); err != nil {
		return nil, nil, err
	}

	s, err := cd.Scheme()
	if err != nil {
		return nil, nil, err
	}

	def := &Definition{
		ID:           anoncreds.RevRegDefID(issuerID, cd.ID, tag),
		RevocDefType: anoncreds.RevocationType,
		Tag:          tag,
		CredDefID:    cd.ID,
		Value: DefinitionValue{
			IssuanceType: o.issuanceType,
			MaxCredNum:   capacity,
			Policy:       o.policy,
			SchemeName:   s.Name(),
		},
		Ver: Version,
	}

	if err := def.validateParams(); err != nil {
		return nil, nil, err
	}

	sk, pk := accumulator.New(s.Curve()).GenerateKeys(rng)

	def.Value.PublicKey = PublicKey{
		Q: anoncreds.G2Element(pk.Q),
		P: anoncreds.G1Element(pk.P),
		X: anoncreds.G1Element(pk.X),
		Y: anoncreds.G1Element(pk.Y),
		Z: anoncreds.G1Element(pk.Z),
	}

	logger.Debugf("created revocation registry definition %s with capacity %d", def.ID, capacity)

	return def, &PrivateKey{Alpha: anoncreds.ZrElement(sk.Alpha)}, nil
}

// Validate checks identifiers and parameters.
func (d *Definition) Validate() error {
	if d == nil {
		return anoncreds.NewError(anoncreds.KindMalformedInput, "missing revocation registry definition")
	}

	if err := anoncreds.ValidateID("revocation registry id", d.ID); err != nil {
		return err
	}

	if err := anoncreds.ValidateID("credential definition id", d.CredDefID); err != nil {
		return err
	}

	if d.RevocDefType != anoncreds.RevocationType || d.Ver != Version {
		return anoncreds.NewError(anoncreds.KindUnsupported, "revocation registry %s/%s", d.RevocDefType, d.Ver)
	}

	return d.validateParams()
}

func (d *Definition) validateParams() error {
	v := d.Value

	if v.MaxCredNum == 0 || v.MaxCredNum > MaxCapacity {
		return anoncreds.NewError(anoncreds.KindMalformedInput, "capacity %d outside 1..%d", v.MaxCredNum, MaxCapacity)
	}

	if v.IssuanceType != IssuanceOnDemand && v.IssuanceType != IssuanceByDefault {
		return anoncreds.NewError(anoncreds.KindMalformedInput, "unknown issuance type %q", v.IssuanceType)
	}

	if v.Policy != Monotonic && v.Policy != Suspendable {
		return anoncreds.NewError(anoncreds.KindMalformedInput, "unknown revocation policy %q", v.Policy)
	}

	return nil
}

// Key validates the definition and decodes the accumulator public key.
func (d *Definition) Key() (*accumulator.Accumulator, *accumulator.PublicKey, error) {
	if err := d.Validate(); err != nil {
		return nil, nil, err
	}

	s, err := scheme.Get(d.Value.SchemeName)
	if err != nil {
		return nil, nil, err
	}

	curve := s.Curve()
	w := d.Value.PublicKey
	pk := &accumulator.PublicKey{}

	if pk.Q, err = w.Q.G2(curve); err != nil {
		return nil, nil, err
	}

	g1s, err := anoncreds.DecodeG1s(curve, []anoncreds.Element{w.P, w.X, w.Y, w.Z})
	if err != nil {
		return nil, nil, err
	}

	pk.P, pk.X, pk.Y, pk.Z = g1s[0], g1s[1], g1s[2], g1s[3]

	for _, g := range g1s {
		if g.IsInfinity() {
			return nil, nil, anoncreds.NewError(anoncreds.KindMalformedInput, "accumulator generator is the identity")
		}
	}

	return accumulator.New(curve), pk, nil
}

// trapdoor decodes the private key and checks that it matches the public key.
func (sk *PrivateKey) trapdoor(curve *ml.Curve, pk *accumulator.PublicKey) (*accumulator.SecretKey, error) {
	if sk == nil {
		return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "missing registry private key")
	}

	alpha, err := sk.Alpha.Zr(curve)
	if err != nil {
		return nil, err
	}

	if !curve.GenG2.Mul(alpha).Equals(pk.Q) {
		return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "registry private key does not match its definition")
	}

	return &accumulator.SecretKey{Alpha: alpha}, nil
}
