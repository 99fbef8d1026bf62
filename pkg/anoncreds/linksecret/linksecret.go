/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package linksecret holds the holder's link secret, the hidden message that binds all of a holder's
// credentials together. It is committed to during issuance and proven in zero knowledge during
// presentation, and never leaves the holder's custody.
package linksecret

import (
	"io"
	"math/big"

	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/curveutil"
)

const secretBytes = 32

// LinkSecret is a 256 bit random integer.
type LinkSecret struct {
	value *big.Int
}

// New draws a fresh link secret.
func New(rng io.Reader) (*LinkSecret, error) {
	buf := make([]byte, secretBytes)

	if _, err := io.ReadFull(rng, buf); err != nil {
		return nil, anoncreds.WrapError(anoncreds.KindKeyGeneration, err, "read link secret entropy")
	}

	return &LinkSecret{value: new(big.Int).SetBytes(buf)}, nil
}

// Scalar returns the secret reduced into the curve's scalar field.
func (ls *LinkSecret) Scalar(curve *ml.Curve) *ml.Zr {
	return curveutil.ZrFromBig(curve, ls.value)
}

// String hides the secret from logs.
func (ls *LinkSecret) String() string {
	return "LinkSecret(hidden)"
}

// MarshalText exports the secret as a decimal integer for wallet storage.
func (ls *LinkSecret) MarshalText() ([]byte, error) {
	return []byte(ls.value.String()), nil
}

// UnmarshalText imports a secret exported by MarshalText.
func (ls *LinkSecret) UnmarshalText(text []byte) error {
	v, ok := new(big.Int).SetString(string(text), 10)
	if !ok || v.Sign() < 0 || v.BitLen() > secretBytes*8 {
		return anoncreds.NewError(anoncreds.KindMalformedInput, "link secret must be a 256 bit decimal integer")
	}

	ls.value = v

	return nil
}

// Equal reports whether two secrets are the same.
func (ls *LinkSecret) Equal(other *LinkSecret) bool {
	return other != nil && ls.value.Cmp(other.value) == 0
}
