/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"io"
	"strings"
	"unicode"

	"github.com/btcsuite/btcutil/base58"
)

const (
	issuerIDBytes = 16

	// SignatureType is the credential definition signature type.
	SignatureType = "BBS+"
	// RevocationType is the revocation registry type.
	RevocationType = "VB_ACCUM"

	schemaMarker  = "2"
	credDefMarker = "3"
	revRegMarker  = "4"
	idSeparator   = ":"
)

// NewIssuerID creates a random unqualified issuer DID: base58 of 16 random bytes.
func NewIssuerID(rng io.Reader) (string, error) {
	b := make([]byte, issuerIDBytes)

	if _, err := io.ReadFull(rng, b); err != nil {
		return "", WrapError(KindKeyGeneration, err, "read issuer id entropy")
	}

	return base58.Encode(b), nil
}

// SchemaID returns "<issuer>:2:<name>:<version>".
func SchemaID(issuerID, name, version string) string {
	return strings.Join([]string{issuerID, schemaMarker, name, version}, idSeparator)
}

// CredDefID returns "<issuer>:3:BBS+:<schemaRef>:<tag>".
func CredDefID(issuerID, schemaRef, tag string) string {
	return strings.Join([]string{issuerID, credDefMarker, SignatureType, schemaRef, tag}, idSeparator)
}

// RevRegDefID returns "<issuer>:4:<credDefID>:VB_ACCUM:<tag>".
func RevRegDefID(issuerID, credDefID, tag string) string {
	return strings.Join([]string{issuerID, revRegMarker, credDefID, RevocationType, tag}, idSeparator)
}

// ValidateID checks that an identifier is non-empty and has no whitespace.
func ValidateID(what, id string) error {
	if id == "" {
		return NewError(KindMalformedInput, "%s is empty", what)
	}

	if strings.IndexFunc(id, unicode.IsSpace) >= 0 {
		return NewError(KindMalformedInput, "%s %q contains whitespace", what, id)
	}

	return nil
}

// ValidateName checks a schema or tag name: non-empty and without the id separator.
func ValidateName(what, name string) error {
	if err := ValidateID(what, name); err != nil {
		return err
	}

	if strings.Contains(name, idSeparator) {
		return NewError(KindMalformedInput, "%s %q contains %q", what, name, idSeparator)
	}

	return nil
}
