/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package main is credx, a command line tool around the anonymous credential library: it generates
// nonces, runs the issuance and presentation protocol end to end and verifies presentations offline.
package main

import (
	"github.com/hyperledger/aries-anoncreds-go/cmd/credx/credxcmd"
	"github.com/hyperledger/aries-anoncreds-go/pkg/common/log"
)

func main() {
	logger := log.New("credx")

	rootCmd, err := credxcmd.Cmd()
	if err != nil {
		logger.Fatalf(err.Error())
	}

	if err := rootCmd.Execute(); err != nil {
		logger.Fatalf("Failed to run credx: %s", err)
	}
}
