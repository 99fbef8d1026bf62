/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"crypto/sha256"
	"math/big"
	"strconv"
	"strings"

	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/curveutil"
)

// EncodeValue encodes a raw attribute value as a decimal integer: values that parse as 32 bit signed
// integers encode as themselves, everything else as the big-endian integer of its SHA-256 digest.
func EncodeValue(raw string) string {
	if v, ok := Int32Value(raw); ok {
		return strconv.FormatInt(int64(v), 10)
	}

	digest := sha256.Sum256([]byte(raw))

	return new(big.Int).SetBytes(digest[:]).String()
}

// Int32Value parses raw as a 32 bit signed decimal integer.
func Int32Value(raw string) (int32, bool) {
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, false
	}

	return int32(v), true
}

// EncodedToScalar converts an encoded value to a scalar of the curve.
func EncodedToScalar(curve *ml.Curve, encoded string) (*ml.Zr, error) {
	v, ok := new(big.Int).SetString(encoded, 10)
	if !ok {
		return nil, NewError(KindMalformedInput, "encoded value %q is not a decimal integer", encoded)
	}

	return curveutil.ZrFromBig(curve, v), nil
}

// CanonicalAttrName normalizes attribute names for matching: lower case without spaces.
func CanonicalAttrName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", ""))
}

// AttributeValue is a raw attribute value with its encoding.
type AttributeValue struct {
	Raw     string `json:"raw"`
	Encoded string `json:"encoded"`
}

// NewAttributeValue encodes raw.
func NewAttributeValue(raw string) AttributeValue {
	return AttributeValue{Raw: raw, Encoded: EncodeValue(raw)}
}

// Validate checks that the encoding is a decimal integer and, for integer raw values, that it is the
// standard encoding.
func (v AttributeValue) Validate() error {
	if _, ok := new(big.Int).SetString(v.Encoded, 10); !ok {
		return NewError(KindMalformedInput, "encoded value %q is not a decimal integer", v.Encoded)
	}

	if _, ok := Int32Value(v.Raw); ok && v.Encoded != EncodeValue(v.Raw) {
		return NewError(KindMalformedInput, "encoded value %q does not match raw value %q", v.Encoded, v.Raw)
	}

	return nil
}
