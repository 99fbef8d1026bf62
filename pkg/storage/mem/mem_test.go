/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mem_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-anoncreds-go/pkg/storage/mem"
	"github.com/hyperledger/aries-anoncreds-go/pkg/storage/storagetest"
)

func TestCommon(t *testing.T) {
	storagetest.TestAll(t, mem.NewProvider())
}

func TestValuesAreCopied(t *testing.T) {
	store, err := mem.NewProvider().OpenStore("copies")
	require.NoError(t, err)

	value := []byte("value")
	require.NoError(t, store.Put("key", value))

	value[0] = 'X'

	stored, err := store.Get("key")
	require.NoError(t, err)
	require.Equal(t, []byte("value"), stored)

	stored[0] = 'Y'

	again, err := store.Get("key")
	require.NoError(t, err)
	require.Equal(t, []byte("value"), again)
}

func TestCloseDropsData(t *testing.T) {
	provider := mem.NewProvider()

	store, err := provider.OpenStore("dropped")
	require.NoError(t, err)
	require.NoError(t, store.Put("key", []byte("value")))
	require.NoError(t, store.Close())

	reopened, err := provider.OpenStore("dropped")
	require.NoError(t, err)

	_, err = reopened.Get("key")
	require.Error(t, err)
}
