/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package scheme keeps the registry of signature scheme backends.
package scheme

import (
	"sync"

	ml "github.com/IBM/mathlib"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/api"
	"github.com/hyperledger/aries-anoncreds-go/pkg/common/log"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/bbs"
)

const (
	// BLS12381 is BBS+ over BLS12-381 with native field arithmetic.
	BLS12381 = "bbs+/bls12-381"
	// FP256BN is BBS+ over the 256 bit Barreto-Naehrig curve of AMCL.
	FP256BN = "bbs+/fp256bn"
	// BN254 is BBS+ over BN254.
	BN254 = "bbs+/bn254"
)

var logger = log.New("anoncreds/scheme")

type registry struct {
	mu      sync.RWMutex
	schemes map[string]api.SignatureScheme
	def     string
}

//nolint:gochecknoglobals
var reg = newRegistry()

func newRegistry() *registry {
	r := &registry{schemes: make(map[string]api.SignatureScheme), def: BLS12381}

	r.schemes[BLS12381] = bbs.New(BLS12381, ml.Curves[ml.BLS12_381_BBS])
	r.schemes[FP256BN] = bbs.New(FP256BN, ml.Curves[ml.FP256BN_AMCL])
	r.schemes[BN254] = bbs.New(BN254, ml.Curves[ml.BN254])

	return r
}

// Register adds a backend. Names are unique.
func Register(s api.SignatureScheme) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := reg.schemes[s.Name()]; ok {
		return anoncreds.NewError(anoncreds.KindInvalidState, "signature scheme %q already registered", s.Name())
	}

	reg.schemes[s.Name()] = s

	logger.Debugf("registered signature scheme %s", s.Name())

	return nil
}

// Get returns the backend registered under name.
func Get(name string) (api.SignatureScheme, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	s, ok := reg.schemes[name]
	if !ok {
		return nil, anoncreds.NewError(anoncreds.KindUnsupported, "unknown signature scheme %q", name)
	}

	return s, nil
}

// Default returns the default backend.
func Default() api.SignatureScheme {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return reg.schemes[reg.def]
}

// SetDefault selects the default backend.
func SetDefault(name string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := reg.schemes[name]; !ok {
		return anoncreds.NewError(anoncreds.KindUnsupported, "unknown signature scheme %q", name)
	}

	reg.def = name

	return nil
}

// Names lists the registered backends in lexical order.
func Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	names := maps.Keys(reg.schemes)
	slices.Sort(names)

	return names
}
