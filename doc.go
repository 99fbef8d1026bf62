/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package anoncreds enables Go developers to issue, hold and verify anonymous credentials: signed attribute
// sets whose holder can later prove selected attributes, predicates over hidden ones and non-revocation
// without revealing the signature or linking presentations.
//
// Packages for end developer usage
//
// pkg/anoncreds: Ledger objects, issuance and presentation protocols.
// Reference: https://pkg.go.dev/github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds
//
// pkg/crypto/primitive: BBS+ signatures, accumulators and range proofs over pairing friendly curves.
// Reference: https://pkg.go.dev/github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/bbs
//
// cmd/credx: A command line tool running the protocol end to end.
//
// Basic workflow
//
//	1) The issuer publishes a schema and creates a credential definition for it.
//	2) For revocable credentials the issuer creates a revocation registry.
//	3) The issuer sends an offer; the holder answers with a request blinding its link secret.
//	4) The issuer signs; the holder processes the credential.
//	5) A verifier sends a presentation request; the holder creates a presentation.
//	6) The verifier checks it against the ledger objects and registry states.
package anoncreds
