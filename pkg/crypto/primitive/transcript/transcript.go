/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package transcript accumulates the public values of a sigma protocol and derives its
// Fiat-Shamir challenge. Every appended value is length prefixed so that distinct
// sequences of values never produce the same byte string.
package transcript

import (
	"encoding/binary"

	ml "github.com/IBM/mathlib"

	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/curveutil"
)

// Transcript is an append-only byte log of protocol values.
type Transcript struct {
	buf []byte
}

// New creates a transcript bound to a protocol label.
func New(label string) *Transcript {
	t := &Transcript{}
	t.AppendString(label)

	return t
}

// AppendBytes appends raw bytes.
func (t *Transcript) AppendBytes(b []byte) {
	var l [4]byte

	binary.BigEndian.PutUint32(l[:], uint32(len(b)))

	t.buf = append(t.buf, l[:]...)
	t.buf = append(t.buf, b...)
}

// AppendString appends a string.
func (t *Transcript) AppendString(s string) {
	t.AppendBytes([]byte(s))
}

// AppendUint64 appends an unsigned integer.
func (t *Transcript) AppendUint64(v uint64) {
	var b [8]byte

	binary.BigEndian.PutUint64(b[:], v)
	t.AppendBytes(b[:])
}

// AppendInt64 appends a signed integer.
func (t *Transcript) AppendInt64(v int64) {
	t.AppendUint64(uint64(v))
}

// AppendZr appends a scalar.
func (t *Transcript) AppendZr(z *ml.Zr) {
	t.AppendBytes(z.Bytes())
}

// AppendG1 appends G1 points.
func (t *Transcript) AppendG1(points ...*ml.G1) {
	for _, p := range points {
		t.AppendBytes(p.Bytes())
	}
}

// AppendG2 appends G2 points.
func (t *Transcript) AppendG2(points ...*ml.G2) {
	for _, p := range points {
		t.AppendBytes(p.Bytes())
	}
}

// AppendGt appends a target group element.
func (t *Transcript) AppendGt(e *ml.Gt) {
	t.AppendBytes(e.Bytes())
}

// Bytes returns a copy of the accumulated transcript.
func (t *Transcript) Bytes() []byte {
	return append([]byte{}, t.buf...)
}

// Challenge hashes the transcript into a scalar of the given curve.
func (t *Transcript) Challenge(curve *ml.Curve) *ml.Zr {
	return curveutil.HashToZr(curve, t.buf)
}
