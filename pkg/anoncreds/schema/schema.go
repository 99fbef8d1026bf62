/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package schema defines the attribute contracts credentials are issued against.
//
// Two kinds of schema exist: the plain V1 schema listing attribute names, and the rich schema whose
// JSON-LD content is opaque apart from the attribute names it yields.
package schema

import (
	"encoding/json"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
)

const (
	// MaxAttributes is the largest attribute count a schema may declare.
	MaxAttributes = 125

	// Version1 is the serialization version of V1 schemas.
	Version1 = "1.0"
)

// Schema is what credential definitions need from a schema.
type Schema interface {
	// ID is the ledger identifier.
	ID() string
	// AttrNames returns the attribute names in signing order.
	AttrNames() ([]string, error)
}

// V1 is a plain schema.
type V1 struct {
	SchemaID       string   `json:"id"`
	Name           string   `json:"name"`
	Version        string   `json:"version"`
	AttributeNames []string `json:"attrNames"`
	SeqNo          *uint32  `json:"seqNo,omitempty"`
	Ver            string   `json:"ver"`
}

// New creates a schema owned by issuerID.
func New(issuerID, name, version string, attrNames []string, seqNo *uint32) (*V1, error) {
	if err := anoncreds.ValidateName("schema name", name); err != nil {
		return nil, err
	}

	if err := anoncreds.ValidateName("schema version", version); err != nil {
		return nil, err
	}

	s := &V1{
		SchemaID:       anoncreds.SchemaID(issuerID, name, version),
		Name:           name,
		Version:        version,
		AttributeNames: append([]string(nil), attrNames...),
		SeqNo:          seqNo,
		Ver:            Version1,
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// ID returns the schema id.
func (s *V1) ID() string {
	return s.SchemaID
}

// AttrNames returns a copy of the attribute names.
func (s *V1) AttrNames() ([]string, error) {
	return append([]string(nil), s.AttributeNames...), nil
}

// Validate checks the id and the attribute names.
func (s *V1) Validate() error {
	if err := anoncreds.ValidateID("schema id", s.SchemaID); err != nil {
		return err
	}

	if s.Ver != "" && s.Ver != Version1 {
		return anoncreds.NewError(anoncreds.KindUnsupported, "schema version %q", s.Ver)
	}

	return Validate(s)
}

// Validate checks that a schema declares between 1 and MaxAttributes non-empty attribute names
// that stay unique after canonicalization.
func Validate(s Schema) error {
	names, err := s.AttrNames()
	if err != nil {
		return err
	}

	if len(names) == 0 {
		return anoncreds.NewError(anoncreds.KindMalformedInput, "schema %s has no attributes", s.ID())
	}

	if len(names) > MaxAttributes {
		return anoncreds.NewError(anoncreds.KindMalformedInput, "schema %s has %d attributes, at most %d allowed",
			s.ID(), len(names), MaxAttributes)
	}

	seen := make(map[string]bool, len(names))

	for _, name := range names {
		canonical := anoncreds.CanonicalAttrName(name)
		if canonical == "" {
			return anoncreds.NewError(anoncreds.KindMalformedInput, "schema %s has an empty attribute name", s.ID())
		}

		if seen[canonical] {
			return anoncreds.NewError(anoncreds.KindMalformedInput, "schema %s repeats attribute %q", s.ID(), name)
		}

		seen[canonical] = true
	}

	return nil
}

// Parse decodes either schema kind.
func Parse(data []byte) (Schema, error) {
	var probe struct {
		Content json.RawMessage `json:"content"`
		RSType  string          `json:"rsType"`
	}

	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, anoncreds.WrapError(anoncreds.KindMalformedInput, err, "decode schema")
	}

	if probe.Content != nil || probe.RSType != "" {
		r := &Rich{}
		if err := json.Unmarshal(data, r); err != nil {
			return nil, anoncreds.WrapError(anoncreds.KindMalformedInput, err, "decode rich schema")
		}

		if err := r.Validate(); err != nil {
			return nil, err
		}

		return r, nil
	}

	s := &V1{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, anoncreds.WrapError(anoncreds.KindMalformedInput, err, "decode schema")
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}
