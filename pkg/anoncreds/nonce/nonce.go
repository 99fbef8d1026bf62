/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package nonce generates the anti-replay challenges exchanged during issuance and presentation.
package nonce

import (
	"encoding/json"
	"io"
	"math/big"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
)

// Bits is the size of a nonce.
const Bits = 80

// Nonce is an 80 bit random integer in decimal form.
type Nonce string

// New draws a fresh nonce.
func New(rng io.Reader) (Nonce, error) {
	buf := make([]byte, Bits/8)

	if _, err := io.ReadFull(rng, buf); err != nil {
		return "", anoncreds.WrapError(anoncreds.KindMalformedInput, err, "read nonce entropy")
	}

	return Nonce(new(big.Int).SetBytes(buf).String()), nil
}

// Parse validates a canonical decimal nonce of at most 80 bits.
func Parse(s string) (Nonce, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 || v.String() != s {
		return "", anoncreds.NewError(anoncreds.KindMalformedInput, "nonce %q is not a canonical decimal", s)
	}

	if v.BitLen() > Bits {
		return "", anoncreds.NewError(anoncreds.KindMalformedInput, "nonce %q exceeds %d bits", s, Bits)
	}

	return Nonce(s), nil
}

func (n Nonce) String() string {
	return string(n)
}

// Bytes returns the transcript encoding of the nonce.
func (n Nonce) Bytes() []byte {
	return []byte(n)
}

// Validate checks the nonce is well formed.
func (n Nonce) Validate() error {
	_, err := Parse(string(n))

	return err
}

// UnmarshalJSON accepts only well formed nonces.
func (n *Nonce) UnmarshalJSON(data []byte) error {
	var s string

	if err := json.Unmarshal(data, &s); err != nil {
		return anoncreds.WrapError(anoncreds.KindMalformedInput, err, "nonce must be a string")
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}

	*n = parsed

	return nil
}
