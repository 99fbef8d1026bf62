/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"testing"

	"github.com/btcsuite/btcutil/base58"
	"github.com/stretchr/testify/require"
)

func TestIdentifiers(t *testing.T) {
	did, err := NewIssuerID(NewSeededReader([]byte("issuer")))
	require.NoError(t, err)
	require.Len(t, base58.Decode(did), 16)

	schemaID := SchemaID(did, "gvt", "1.0")
	require.Equal(t, did+":2:gvt:1.0", schemaID)

	credDefID := CredDefID(did, schemaID, "default")
	require.Equal(t, did+":3:BBS+:"+schemaID+":default", credDefID)

	require.Equal(t, did+":4:"+credDefID+":VB_ACCUM:r1", RevRegDefID(did, credDefID, "r1"))
}

func TestValidateIDs(t *testing.T) {
	require.NoError(t, ValidateID("schema id", "a:2:b:1"))
	require.ErrorIs(t, ValidateID("schema id", ""), ErrMalformedInput)
	require.ErrorIs(t, ValidateID("schema id", "a b"), ErrMalformedInput)

	require.NoError(t, ValidateName("tag", "default"))
	require.ErrorIs(t, ValidateName("tag", "a:b"), ErrMalformedInput)
}
