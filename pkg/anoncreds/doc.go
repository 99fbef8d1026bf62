/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package anoncreds holds what every anonymous credential package shares: classified errors,
// attribute encoding, the wire encoding of group elements and identifier formats.
//
// The protocol itself lives in the sub packages, leaf first:
//
//	nonce        anti-replay challenges
//	schema       attribute name contracts (simple and rich)
//	linksecret   the holder's binding secret
//	creddef      issuer keys and their correctness proof
//	issuance     offer, request, blind issuance and holder processing
//	revocation   accumulator registries, deltas and holder witnesses
//	presreq      verifier presentation requests
//	presentation holder proofs and their verification
//
// Every generating call takes an io.Reader as its randomness source.
package anoncreds
