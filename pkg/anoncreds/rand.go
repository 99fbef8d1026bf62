/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"io"

	"golang.org/x/crypto/sha3"
)

// NewSeededReader returns a deterministic random stream (SHAKE-256 of the seed).
// It makes key, nonce and proof generation reproducible in tests and must never back production keys.
func NewSeededReader(seed []byte) io.Reader {
	h := sha3.NewShake256()
	_, _ = h.Write(seed) //nolint:errcheck

	return h
}
