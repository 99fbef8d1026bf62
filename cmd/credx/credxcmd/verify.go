/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credxcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/presentation"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/presreq"
)

const (
	requestFlagName  = "request"
	requestFlagUsage = "Path of the presentation request JSON."

	presentationFlagName  = "presentation"
	presentationFlagUsage = "Path of the presentation JSON."

	ledgerFlagName  = "ledger"
	ledgerFlagUsage = "Path of a JSON file holding the schemas, credential definitions," +
		" revocation registry definitions and revocation states the presentation refers to."
)

func verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a presentation against a request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config(cmd)
			if err != nil {
				return err
			}

			var (
				req  presreq.PresentationRequest
				pres presentation.Presentation
				l    = newLedger()
			)

			if err = readJSON(v.GetString(requestFlagName), &req); err != nil {
				return err
			}

			if err = readJSON(v.GetString(presentationFlagName), &pres); err != nil {
				return err
			}

			if err = readJSON(v.GetString(ledgerFlagName), l); err != nil {
				return err
			}

			schemas, err := l.schemas()
			if err != nil {
				return err
			}

			if err = presentation.Verify(&pres, &req, schemas, l.CredDefs, l.RevRegDefs, l.RevStates); err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "presentation verified")

			return err
		},
	}

	cmd.Flags().String(requestFlagName, "", requestFlagUsage)
	cmd.Flags().String(presentationFlagName, "", presentationFlagUsage)
	cmd.Flags().String(ledgerFlagName, "", ledgerFlagUsage)

	for _, name := range []string{requestFlagName, presentationFlagName, ledgerFlagName} {
		_ = cmd.MarkFlagRequired(name) //nolint:errcheck
	}

	return cmd
}
