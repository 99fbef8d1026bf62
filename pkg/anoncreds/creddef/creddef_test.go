/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package creddef

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/schema"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/scheme"
)

const issuerDID = "NcYxiDXkpYi6ov5FcYDi1e"

func gvtSchema(t *testing.T) *schema.V1 {
	t.Helper()

	s, err := schema.New(issuerDID, "gvt", "1.0", []string{"Name", "age", "sex", "height"}, nil)
	require.NoError(t, err)

	return s
}

func TestCreateAndVerify(t *testing.T) {
	for _, name := range scheme.Names() {
		name := name
		t.Run(name, func(t *testing.T) {
			s, err := scheme.Get(name)
			require.NoError(t, err)

			rng := anoncreds.NewSeededReader([]byte(name))

			cd, sk, proof, err := Create(rng, s, gvtSchema(t), issuerDID, "default", WithRevocation())
			require.NoError(t, err)
			require.NotNil(t, sk)
			require.Equal(t, name, cd.SchemeName)
			require.Equal(t, 6, cd.MessageCount())

			require.NoError(t, VerifyCorrectness(cd, proof))

			data, err := json.Marshal(cd)
			require.NoError(t, err)

			var decoded CredentialDefinition
			require.NoError(t, json.Unmarshal(data, &decoded))
			require.NoError(t, VerifyCorrectness(&decoded, proof))
		})
	}
}

func TestLayout(t *testing.T) {
	cd, _, _, err := Create(anoncreds.NewSeededReader([]byte("layout")), scheme.Default(), gvtSchema(t),
		issuerDID, "default")
	require.NoError(t, err)

	require.Equal(t, issuerDID+":3:BBS+:"+issuerDID+":2:gvt:1.0:default", cd.ID)
	require.Equal(t, []string{"name", "age", "sex", "height"}, cd.Value.Attributes)

	idx, ok := cd.AttrIndex("NAME")
	require.True(t, ok)
	require.Equal(t, 1, idx)

	idx, ok = cd.AttrIndex("height")
	require.True(t, ok)
	require.Equal(t, 4, idx)

	_, ok = cd.AttrIndex("weight")
	require.False(t, ok)

	_, ok = cd.RevocationIndex()
	require.False(t, ok)
	require.Equal(t, 5, cd.MessageCount())
}

func TestSchemaRefUsesSeqNo(t *testing.T) {
	seqNo := uint32(42)

	sch, err := schema.New(issuerDID, "gvt", "1.0", []string{"name"}, &seqNo)
	require.NoError(t, err)

	cd, _, _, err := Create(anoncreds.NewSeededReader([]byte("seq")), scheme.Default(), sch, issuerDID, "tag")
	require.NoError(t, err)
	require.Equal(t, issuerDID+":3:BBS+:42:tag", cd.ID)
	require.Equal(t, sch.ID(), cd.SchemaID)
}

func TestCreateRejectsBadSchema(t *testing.T) {
	rng := anoncreds.NewSeededReader([]byte("bad"))

	_, _, _, err := Create(rng, scheme.Default(), nil, issuerDID, "default")
	require.ErrorIs(t, err, anoncreds.ErrKeyGeneration)

	empty := &schema.V1{SchemaID: issuerDID + ":2:empty:1.0", Name: "empty", Version: "1.0"}

	_, _, _, err = Create(rng, scheme.Default(), empty, issuerDID, "default")
	require.ErrorIs(t, err, anoncreds.ErrKeyGeneration)

	_, _, _, err = Create(rng, scheme.Default(), gvtSchema(t), issuerDID, "bad:tag")
	require.ErrorIs(t, err, anoncreds.ErrKeyGeneration)
}

func TestVerifyCorrectnessDetectsTampering(t *testing.T) {
	rng := anoncreds.NewSeededReader([]byte("tamper"))

	cd, _, proof, err := Create(rng, scheme.Default(), gvtSchema(t), issuerDID, "default")
	require.NoError(t, err)

	_, _, otherProof, err := Create(rng, scheme.Default(), gvtSchema(t), issuerDID, "default")
	require.NoError(t, err)

	require.ErrorIs(t, VerifyCorrectness(cd, otherProof), anoncreds.ErrInvalidCredDef)
	require.ErrorIs(t, VerifyCorrectness(cd, nil), anoncreds.ErrInvalidCredDef)

	swapped := *cd
	swapped.Value.Primary.BarG2 = cd.Value.Primary.H0
	require.ErrorIs(t, VerifyCorrectness(&swapped, proof), anoncreds.ErrInvalidCredDef)

	short := *cd
	short.Value.Primary.H = cd.Value.Primary.H[1:]
	require.ErrorIs(t, VerifyCorrectness(&short, proof), anoncreds.ErrInvalidCredDef)

	unknown := *cd
	unknown.SchemeName = "cl/rsa"
	require.ErrorIs(t, VerifyCorrectness(&unknown, proof), anoncreds.ErrInvalidCredDef)

	garbled := *cd
	garbled.Value.Primary.W = anoncreds.Element("garbage")
	require.ErrorIs(t, VerifyCorrectness(&garbled, proof), anoncreds.ErrInvalidCredDef)
}

func TestSigningKey(t *testing.T) {
	cd, sk, _, err := Create(anoncreds.NewSeededReader([]byte("sign")), scheme.Default(), gvtSchema(t),
		issuerDID, "default")
	require.NoError(t, err)

	s, pk, err := cd.Key()
	require.NoError(t, err)

	signing, err := sk.SigningKey(s.Curve(), pk)
	require.NoError(t, err)
	require.True(t, s.Curve().GenG2.Mul(signing.X).Equals(pk.W))
}
