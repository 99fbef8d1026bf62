/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credxcmd

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/creddef"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/issuance"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/linksecret"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/presentation"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/presreq"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/revocation"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/schema"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/scheme"
)

const (
	ageFlagName  = "age"
	ageFlagUsage = "Age attribute of the demo credential. The request asks for age >= 18."

	outFlagName  = "out"
	outFlagUsage = "Directory to write request.json, presentation.json and ledger.json to." +
		" Nothing is written when empty."

	demoIssuerDID = "NcYxiDXkpYi6ov5FcYDi1e"
	demoProverDID = "CnEDk9HrMnmiHXEV1WFgbVCRteYnPqsJwrTdcZaNhFVW"
	demoCapacity  = 100
)

func demoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Issue a revocable credential and present it",
		Long: "Creates a schema, a revocable credential definition and registry, issues a credential" +
			" to a fresh link secret and verifies a presentation revealing the name and proving age >= 18.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config(cmd)
			if err != nil {
				return err
			}

			p, err := getDBParam(v)
			if err != nil {
				return err
			}

			age, err := cmd.Flags().GetInt(ageFlagName)
			if err != nil {
				return err
			}

			return runDemo(cmd, v.GetString(schemeFlagName), p, age, v.GetString(outFlagName))
		},
	}

	addDBFlags(cmd)
	cmd.Flags().Int(ageFlagName, 28, ageFlagUsage)
	cmd.Flags().String(outFlagName, "", outFlagUsage)

	return cmd
}

//nolint:funlen
func runDemo(cmd *cobra.Command, schemeName string, p *dbParam, age int, out string) error {
	s, err := scheme.Get(schemeName)
	if err != nil {
		return err
	}

	sch, err := schema.New(demoIssuerDID, "gvt", "1.0", []string{"name", "age", "sex", "height"}, nil)
	if err != nil {
		return err
	}

	cd, sk, proof, err := creddef.Create(rand.Reader, s, sch, demoIssuerDID, "default", creddef.WithRevocation())
	if err != nil {
		return err
	}

	revDef, revSK, err := revocation.CreateDefinition(rand.Reader, cd, demoIssuerDID, "r1", demoCapacity)
	if err != nil {
		return err
	}

	provider, err := createStoreProvider(p)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := provider.Close(); closeErr != nil {
			logger.Warnf("failed to close store provider: %s", closeErr)
		}
	}()

	var reg *revocation.Registry

	err = retryOpen(p.timeout, func() error {
		var openErr error

		reg, openErr = revocation.NewRegistry(revDef, revSK, revocation.WithStore(provider))

		return openErr
	})
	if err != nil {
		return fmt.Errorf("open registry: %w", err)
	}

	issuer, err := issuance.NewIssuer(cd, sk, proof, issuance.WithRegistry(reg))
	if err != nil {
		return err
	}

	ls, err := linksecret.New(rand.Reader)
	if err != nil {
		return err
	}

	cred, err := issue(issuer, cd, revDef, ls, map[string]string{
		"name": "Alex", "age": strconv.Itoa(age), "sex": "male", "height": "175",
	})
	if err != nil {
		return err
	}

	req, err := demoRequest(cd.ID, time.Now().Unix())
	if err != nil {
		return err
	}

	l := newLedger()
	if err = l.addSchema(sch); err != nil {
		return err
	}

	l.CredDefs[cd.ID] = cd
	l.RevRegDefs[revDef.ID] = revDef
	l.addRevState(reg.Snapshot())

	creds := presentation.NewCredentials().
		AddAttribute("attr1_referent", cred, true).
		AddPredicate("predicate1_referent", cred)

	schemas, err := l.schemas()
	if err != nil {
		return err
	}

	pres, err := presentation.Create(rand.Reader, req, creds, nil, ls, schemas, l.CredDefs, l.RevRegDefs)
	if err != nil {
		return err
	}

	if err = presentation.Verify(pres, req, schemas, l.CredDefs, l.RevRegDefs, l.RevStates); err != nil {
		return err
	}

	if out != "" {
		if err = writeOutputs(out, req, pres, l); err != nil {
			return err
		}
	}

	revealed := pres.RequestedProof.RevealedAttrs["attr1_referent"]

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "presentation verified: name=%s, age >= 18 (scheme %s)\n",
		revealed.Raw, s.Name())

	return err
}

func issue(issuer *issuance.Issuer, cd *creddef.CredentialDefinition, revDef *revocation.Definition,
	ls *linksecret.LinkSecret, raw map[string]string) (*issuance.Credential, error) {
	offer, err := issuer.Offer(rand.Reader)
	if err != nil {
		return nil, err
	}

	req, meta, err := issuance.CreateRequest(rand.Reader, demoProverDID, cd, ls, "default", offer)
	if err != nil {
		return nil, err
	}

	cred, err := issuer.Issue(rand.Reader, offer, req, issuance.Values(raw))
	if err != nil {
		return nil, err
	}

	return issuance.ProcessCredential(cred, meta, ls, cd, revDef)
}

func demoRequest(credDefID string, now int64) (*presreq.PresentationRequest, error) {
	restrictions, err := json.Marshal([]map[string]string{{"cred_def_id": credDefID}})
	if err != nil {
		return nil, err
	}

	req, err := presreq.New(rand.Reader, "demo", "1.0")
	if err != nil {
		return nil, err
	}

	req.AddAttribute("attr1_referent", presreq.AttributeInfo{Name: "name", Restrictions: restrictions}).
		AddPredicate("predicate1_referent", presreq.PredicateInfo{
			Name: "age", PType: presreq.GE, PValue: 18, Restrictions: restrictions,
		}).
		SetNonRevoked(0, now)

	return req, nil
}

func writeOutputs(dir string, req *presreq.PresentationRequest, pres *presentation.Presentation, l *ledger) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	if err := writeJSON(dir, requestFile, req); err != nil {
		return err
	}

	if err := writeJSON(dir, presentationFile, pres); err != nil {
		return err
	}

	return writeJSON(dir, ledgerFile, l)
}
