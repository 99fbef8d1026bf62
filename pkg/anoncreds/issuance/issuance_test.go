/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuance

import (
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/creddef"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/linksecret"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/revocation"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/schema"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/scheme"
)

const (
	issuerDID = "NcYxiDXkpYi6ov5FcYDi1e"
	proverDID = "CnEDk9HrMnmiHXEV1WFgbVCRteYnPqsJwrTdcZaNhFVW"
)

type fixture struct {
	cd     *creddef.CredentialDefinition
	sk     *creddef.PrivateKey
	proof  *creddef.CorrectnessProof
	revDef *revocation.Definition
	reg    *revocation.Registry
	ls     *linksecret.LinkSecret
	issuer *Issuer
}

func newFixture(t *testing.T, revocable bool, capacity uint32) *fixture {
	t.Helper()

	sch, err := schema.New(issuerDID, "gvt", "1.0", []string{"name", "age", "sex", "height"}, nil)
	require.NoError(t, err)

	var opts []creddef.Opt
	if revocable {
		opts = append(opts, creddef.WithRevocation())
	}

	f := &fixture{}

	f.cd, f.sk, f.proof, err = creddef.Create(rand.Reader, scheme.Default(), sch, issuerDID, "default", opts...)
	require.NoError(t, err)

	var issuerOpts []IssuerOpt

	if revocable {
		var revSK *revocation.PrivateKey

		f.revDef, revSK, err = revocation.CreateDefinition(rand.Reader, f.cd, issuerDID, "r1", capacity)
		require.NoError(t, err)

		f.reg, err = revocation.NewRegistry(f.revDef, revSK)
		require.NoError(t, err)

		issuerOpts = append(issuerOpts, WithRegistry(f.reg))
	}

	f.issuer, err = NewIssuer(f.cd, f.sk, f.proof, issuerOpts...)
	require.NoError(t, err)

	f.ls, err = linksecret.New(rand.Reader)
	require.NoError(t, err)

	return f
}

func gvtValues() map[string]anoncreds.AttributeValue {
	return Values(map[string]string{"name": "Alex", "age": "28", "sex": "male", "height": "175"})
}

func TestIssuance(t *testing.T) {
	for _, revocable := range []bool{false, true} {
		revocable := revocable

		t.Run(map[bool]string{false: "plain", true: "revocable"}[revocable], func(t *testing.T) {
			f := newFixture(t, revocable, 10)

			offer, err := f.issuer.Offer(rand.Reader)
			require.NoError(t, err)

			state, ok := f.issuer.State(offer.Nonce)
			require.True(t, ok)
			require.Equal(t, StateOffered, state)

			req, meta, err := CreateRequest(rand.Reader, proverDID, f.cd, f.ls, "default", offer)
			require.NoError(t, err)
			require.Equal(t, proverDID, req.ProverDID)
			require.Empty(t, req.Entropy)

			cred, err := f.issuer.Issue(rand.Reader, offer, req, gvtValues())
			require.NoError(t, err)

			state, _ = f.issuer.State(offer.Nonce)
			require.Equal(t, StateIssued, state)

			// the credential travels as JSON
			data, err := json.Marshal(cred)
			require.NoError(t, err)

			var received Credential
			require.NoError(t, json.Unmarshal(data, &received))

			processed, err := ProcessCredential(&received, meta, f.ls, f.cd, f.revDef)
			require.NoError(t, err)

			v, ok := processed.Attribute("Age")
			require.True(t, ok)
			require.Equal(t, "28", v.Raw)
			require.Equal(t, "28", v.Encoded)
			require.Equal(t, []string{"age", "height", "name", "sex"}, processed.AttrNames())

			if revocable {
				require.NotNil(t, processed.RevReg)
				require.EqualValues(t, 0, processed.RevReg.Index)
				require.Equal(t, f.revDef.ID, processed.RevRegID)
				require.NoError(t, processed.RevReg.Verify(f.revDef))
			} else {
				require.Nil(t, processed.RevReg)
			}

			// the issued signature is still blinded
			_, err = ProcessCredential(processed, meta, f.ls, f.cd, f.revDef)
			require.ErrorIs(t, err, anoncreds.ErrMalformedInput)
		})
	}
}

func TestRequestEntropyWithoutDID(t *testing.T) {
	f := newFixture(t, false, 0)

	offer, err := f.issuer.Offer(rand.Reader)
	require.NoError(t, err)

	req, _, err := CreateRequest(rand.Reader, "", f.cd, f.ls, "default", offer)
	require.NoError(t, err)
	require.Empty(t, req.ProverDID)

	_, err = uuid.Parse(req.Entropy)
	require.NoError(t, err)

	_, err = f.issuer.Issue(rand.Reader, offer, req, gvtValues())
	require.NoError(t, err)
}

func TestIssuerRejectsReplay(t *testing.T) {
	f := newFixture(t, false, 0)

	offer, err := f.issuer.Offer(rand.Reader)
	require.NoError(t, err)

	req, _, err := CreateRequest(rand.Reader, proverDID, f.cd, f.ls, "default", offer)
	require.NoError(t, err)

	_, err = f.issuer.Issue(rand.Reader, offer, req, gvtValues())
	require.NoError(t, err)

	_, err = f.issuer.Issue(rand.Reader, offer, req, gvtValues())
	require.ErrorIs(t, err, anoncreds.ErrReplayedNonce)

	unknown, err := CreateOffer(rand.Reader, f.cd, f.proof)
	require.NoError(t, err)

	_, err = f.issuer.Issue(rand.Reader, unknown, req, gvtValues())
	require.ErrorIs(t, err, anoncreds.ErrInvalidState)
}

func TestRequestVerification(t *testing.T) {
	f := newFixture(t, false, 0)

	offer, err := f.issuer.Offer(rand.Reader)
	require.NoError(t, err)

	other, err := f.issuer.Offer(rand.Reader)
	require.NoError(t, err)

	req, _, err := CreateRequest(rand.Reader, proverDID, f.cd, f.ls, "default", other)
	require.NoError(t, err)

	// a request answers exactly the offer it was created for
	_, err = f.issuer.Issue(rand.Reader, offer, req, gvtValues())
	require.ErrorIs(t, err, anoncreds.ErrRequestVerification)

	state, _ := f.issuer.State(offer.Nonce)
	require.Equal(t, StateOffered, state)

	tampered := *req
	tampered.ProverDID = issuerDID

	_, err = f.issuer.Issue(rand.Reader, other, &tampered, gvtValues())
	require.ErrorIs(t, err, anoncreds.ErrRequestVerification)

	tampered = *req
	tampered.BlindedLinkSecret.ZLinkSecret = req.BlindedLinkSecret.ZBlinding

	_, err = f.issuer.Issue(rand.Reader, other, &tampered, gvtValues())
	require.ErrorIs(t, err, anoncreds.ErrRequestVerification)

	_, err = f.issuer.Issue(rand.Reader, other, req, gvtValues())
	require.NoError(t, err)
}

func TestCreateRequestChecksOffer(t *testing.T) {
	f := newFixture(t, false, 0)
	g := newFixture(t, false, 0)

	offer, err := f.issuer.Offer(rand.Reader)
	require.NoError(t, err)

	forged := *offer
	forged.KeyCorrectnessProof = *g.proof

	_, _, err = CreateRequest(rand.Reader, proverDID, f.cd, f.ls, "default", &forged)
	require.ErrorIs(t, err, anoncreds.ErrInvalidCredDef)

	// same ids, different keys
	_, _, err = CreateRequest(rand.Reader, proverDID, g.cd, f.ls, "default", offer)
	require.ErrorIs(t, err, anoncreds.ErrInvalidCredDef)

	renamed := *offer
	renamed.SchemaID = "other"

	_, _, err = CreateRequest(rand.Reader, proverDID, f.cd, f.ls, "default", &renamed)
	require.ErrorIs(t, err, anoncreds.ErrMalformedInput)

	_, err = CreateOffer(rand.Reader, f.cd, g.proof)
	require.ErrorIs(t, err, anoncreds.ErrInvalidCredDef)

	_, err = NewIssuer(f.cd, f.sk, g.proof)
	require.ErrorIs(t, err, anoncreds.ErrInvalidCredDef)
}

func TestValuesMustMatchDefinition(t *testing.T) {
	f := newFixture(t, false, 0)

	tests := []struct {
		name   string
		values map[string]anoncreds.AttributeValue
	}{
		{name: "missing", values: Values(map[string]string{"name": "Alex", "age": "28", "sex": "male"})},
		{name: "unknown", values: Values(map[string]string{
			"name": "Alex", "age": "28", "sex": "male", "height": "175", "weight": "70",
		})},
		{name: "duplicate", values: Values(map[string]string{
			"name": "Alex", "Name": "Alex", "age": "28", "sex": "male", "height": "175",
		})},
		{name: "bad encoding", values: map[string]anoncreds.AttributeValue{
			"name":   {Raw: "Alex", Encoded: "Alex"},
			"age":    anoncreds.NewAttributeValue("28"),
			"sex":    anoncreds.NewAttributeValue("male"),
			"height": anoncreds.NewAttributeValue("175"),
		}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			offer, err := f.issuer.Offer(rand.Reader)
			require.NoError(t, err)

			req, _, err := CreateRequest(rand.Reader, proverDID, f.cd, f.ls, "default", offer)
			require.NoError(t, err)

			_, err = f.issuer.Issue(rand.Reader, offer, req, tc.values)
			require.ErrorIs(t, err, anoncreds.ErrMalformedInput)
		})
	}
}

func TestRegistryFull(t *testing.T) {
	f := newFixture(t, true, 1)

	for i := 0; i < 2; i++ {
		offer, err := f.issuer.Offer(rand.Reader)
		require.NoError(t, err)

		req, _, err := CreateRequest(rand.Reader, proverDID, f.cd, f.ls, "default", offer)
		require.NoError(t, err)

		_, err = f.issuer.Issue(rand.Reader, offer, req, gvtValues())
		if i == 0 {
			require.NoError(t, err)
		} else {
			require.ErrorIs(t, err, anoncreds.ErrRegistryFull)
		}
	}
}

func TestRevocableDefinitionNeedsRegistry(t *testing.T) {
	f := newFixture(t, true, 4)

	_, err := NewIssuer(f.cd, f.sk, f.proof)
	require.ErrorIs(t, err, anoncreds.ErrMalformedInput)

	plain := newFixture(t, false, 0)

	_, err = NewIssuer(plain.cd, plain.sk, plain.proof, WithRegistry(f.reg))
	require.ErrorIs(t, err, anoncreds.ErrMalformedInput)

	offer, err := CreateOffer(rand.Reader, plain.cd, plain.proof)
	require.NoError(t, err)

	req, _, err := CreateRequest(rand.Reader, proverDID, plain.cd, plain.ls, "default", offer)
	require.NoError(t, err)

	_, err = CreateCredential(rand.Reader, plain.cd, plain.sk, offer, req, gvtValues(), f.reg)
	require.ErrorIs(t, err, anoncreds.ErrMalformedInput)
}

func TestProcessCredentialRejects(t *testing.T) {
	f := newFixture(t, true, 4)

	offer, err := f.issuer.Offer(rand.Reader)
	require.NoError(t, err)

	req, meta, err := CreateRequest(rand.Reader, proverDID, f.cd, f.ls, "default", offer)
	require.NoError(t, err)

	cred, err := f.issuer.Issue(rand.Reader, offer, req, gvtValues())
	require.NoError(t, err)

	other, err := linksecret.New(rand.Reader)
	require.NoError(t, err)

	_, err = ProcessCredential(cred, meta, other, f.cd, f.revDef)
	require.ErrorIs(t, err, anoncreds.ErrMalformedInput)

	wrongNonce := *meta
	wrongNonce.Nonce = offer.Nonce

	_, err = ProcessCredential(cred, &wrongNonce, f.ls, f.cd, f.revDef)
	require.ErrorIs(t, err, anoncreds.ErrMalformedInput)

	_, err = ProcessCredential(cred, meta, f.ls, f.cd, nil)
	require.ErrorIs(t, err, anoncreds.ErrMalformedInput)

	altered := *cred
	altered.Values = gvtValues()
	altered.Values["age"] = anoncreds.NewAttributeValue("29")

	_, err = ProcessCredential(&altered, meta, f.ls, f.cd, f.revDef)
	require.ErrorIs(t, err, anoncreds.ErrMalformedInput)

	_, err = ProcessCredential(cred, meta, f.ls, f.cd, f.revDef)
	require.NoError(t, err)
}

func TestFailedIssuanceKeepsIndexFree(t *testing.T) {
	f := newFixture(t, true, 4)

	offer, err := f.issuer.Offer(rand.Reader)
	require.NoError(t, err)

	req, _, err := CreateRequest(rand.Reader, proverDID, f.cd, f.ls, "default", offer)
	require.NoError(t, err)

	_, err = f.issuer.Issue(rand.Reader, offer, req, Values(map[string]string{"name": "Alex"}))
	require.ErrorIs(t, err, anoncreds.ErrMalformedInput)
	require.Zero(t, f.reg.Snapshot().Issued)

	cred, err := f.issuer.Issue(rand.Reader, offer, req, gvtValues())
	require.NoError(t, err)
	require.Zero(t, cred.RevReg.Index)
	require.EqualValues(t, 1, f.reg.Snapshot().Issued)
}

func TestReleaseIndex(t *testing.T) {
	f := newFixture(t, true, 4)

	w, err := f.reg.IssueIndex()
	require.NoError(t, err)

	releaseIndex(f.reg, w)

	snap := f.reg.Snapshot()
	require.Equal(t, []uint32{w.Index}, snap.Revoked)

	_, err = f.reg.Witness(w.Index)
	require.ErrorIs(t, err, anoncreds.ErrCredentialRevoked)

	releaseIndex(f.reg, nil)
	require.Equal(t, snap.Version, f.reg.Snapshot().Version)
}
