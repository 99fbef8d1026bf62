/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credxcmd

import (
	"crypto/rand"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/nonce"
)

func nonceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nonce",
		Short: "Print a fresh nonce",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config(cmd); err != nil {
				return err
			}

			n, err := nonce.New(rand.Reader)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), n)

			return err
		},
	}
}
