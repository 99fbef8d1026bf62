/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"encoding/json"
	"math/big"

	ml "github.com/IBM/mathlib"
	"github.com/multiformats/go-multibase"

	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/curveutil"
)

// Element is the wire form of a group element or scalar: its canonical bytes, serialized in JSON as a
// multibase (base58btc) string.
type Element []byte

// G1Element encodes a G1 point.
func G1Element(p *ml.G1) Element {
	return p.Bytes()
}

// G2Element encodes a G2 point.
func G2Element(p *ml.G2) Element {
	return p.Bytes()
}

// ZrElement encodes a scalar.
func ZrElement(z *ml.Zr) Element {
	return z.Bytes()
}

// G1 decodes a G1 point of the given curve.
func (e Element) G1(curve *ml.Curve) (*ml.G1, error) {
	if len(e) != curve.G1ByteSize {
		return nil, NewError(KindMalformedInput, "G1 element must be %d bytes, got %d", curve.G1ByteSize, len(e))
	}

	p, err := curve.NewG1FromBytes(e)
	if err != nil {
		return nil, WrapError(KindMalformedInput, err, "decode G1 element")
	}

	return p, nil
}

// G2 decodes a G2 point of the given curve.
func (e Element) G2(curve *ml.Curve) (*ml.G2, error) {
	if len(e) != curve.G2ByteSize {
		return nil, NewError(KindMalformedInput, "G2 element must be %d bytes, got %d", curve.G2ByteSize, len(e))
	}

	p, err := curve.NewG2FromBytes(e)
	if err != nil {
		return nil, WrapError(KindMalformedInput, err, "decode G2 element")
	}

	return p, nil
}

// Zr decodes a canonical scalar of the given curve.
func (e Element) Zr(curve *ml.Curve) (*ml.Zr, error) {
	if len(e) != curve.ScalarByteSize {
		return nil, NewError(KindMalformedInput, "scalar must be %d bytes, got %d", curve.ScalarByteSize, len(e))
	}

	if new(big.Int).SetBytes(e).Cmp(curveutil.Order(curve)) >= 0 {
		return nil, NewError(KindMalformedInput, "scalar is not reduced")
	}

	return curve.NewZrFromBytes(e), nil
}

// MarshalJSON encodes the element as a multibase string.
func (e Element) MarshalJSON() ([]byte, error) {
	s, err := multibase.Encode(multibase.Base58BTC, e)
	if err != nil {
		return nil, err
	}

	return json.Marshal(s)
}

// UnmarshalJSON decodes a multibase string.
func (e *Element) UnmarshalJSON(data []byte) error {
	var s string

	if err := json.Unmarshal(data, &s); err != nil {
		return WrapError(KindMalformedInput, err, "element must be a string")
	}

	if s == "" {
		*e = nil

		return nil
	}

	_, b, err := multibase.Decode(s)
	if err != nil {
		return WrapError(KindMalformedInput, err, "decode multibase element")
	}

	*e = b

	return nil
}

// G1Elements encodes a list of G1 points.
func G1Elements(points []*ml.G1) []Element {
	out := make([]Element, len(points))
	for i, p := range points {
		out[i] = G1Element(p)
	}

	return out
}

// DecodeG1s decodes a list of G1 points.
func DecodeG1s(curve *ml.Curve, elements []Element) ([]*ml.G1, error) {
	out := make([]*ml.G1, len(elements))

	for i, e := range elements {
		p, err := e.G1(curve)
		if err != nil {
			return nil, err
		}

		out[i] = p
	}

	return out, nil
}

// ZrElements encodes a list of scalars.
func ZrElements(scalars []*ml.Zr) []Element {
	out := make([]Element, len(scalars))
	for i, z := range scalars {
		out[i] = ZrElement(z)
	}

	return out
}

// DecodeZrs decodes a list of scalars.
func DecodeZrs(curve *ml.Curve, elements []Element) ([]*ml.Zr, error) {
	out := make([]*ml.Zr, len(elements))

	for i, e := range elements {
		z, err := e.Zr(curve)
		if err != nil {
			return nil, err
		}

		out[i] = z
	}

	return out, nil
}
