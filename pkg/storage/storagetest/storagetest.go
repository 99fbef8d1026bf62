/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package storagetest holds the conformance checks every storage.Provider implementation must pass.
package storagetest

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-anoncreds-go/pkg/storage"
)

// TestAll runs all provider conformance tests.
func TestAll(t *testing.T, provider storage.Provider) {
	t.Helper()

	t.Run("put get delete", func(t *testing.T) {
		TestPutGetDelete(t, provider)
	})
	t.Run("batch", func(t *testing.T) {
		TestBatch(t, provider)
	})
	t.Run("store names are case insensitive", func(t *testing.T) {
		TestStoreNames(t, provider)
	})
}

// TestPutGetDelete checks the single key operations.
func TestPutGetDelete(t *testing.T, provider storage.Provider) {
	t.Helper()

	store, err := provider.OpenStore(randomStoreName())
	require.NoError(t, err)

	defer func() {
		require.NoError(t, store.Close())
	}()

	_, err = store.Get("missing")
	require.True(t, errors.Is(err, storage.ErrDataNotFound))

	require.Error(t, store.Put("", []byte("value")))
	require.Error(t, store.Put("key", nil))

	require.NoError(t, store.Put("key", []byte("value")))

	value, err := store.Get("key")
	require.NoError(t, err)
	require.Equal(t, []byte("value"), value)

	require.NoError(t, store.Put("key", []byte("updated")))

	value, err = store.Get("key")
	require.NoError(t, err)
	require.Equal(t, []byte("updated"), value)

	require.NoError(t, store.Delete("key"))

	_, err = store.Get("key")
	require.True(t, errors.Is(err, storage.ErrDataNotFound))
}

// TestBatch checks that batches apply puts and deletes together.
func TestBatch(t *testing.T, provider storage.Provider) {
	t.Helper()

	store, err := provider.OpenStore(randomStoreName())
	require.NoError(t, err)

	defer func() {
		require.NoError(t, store.Close())
	}()

	require.Error(t, store.Batch(nil))

	require.NoError(t, store.Put("stale", []byte("stale")))

	require.NoError(t, store.Batch([]storage.Operation{
		{Key: "a", Value: []byte("1")},
		{Key: "b", Value: []byte("2")},
		{Key: "stale"},
	}))

	value, err := store.Get("a")
	require.NoError(t, err)
	require.Equal(t, []byte("1"), value)

	value, err = store.Get("b")
	require.NoError(t, err)
	require.Equal(t, []byte("2"), value)

	_, err = store.Get("stale")
	require.True(t, errors.Is(err, storage.ErrDataNotFound))

	require.Error(t, store.Batch([]storage.Operation{
		{Key: "c", Value: []byte("3")},
		{Key: "", Value: []byte("4")},
	}))

	_, err = store.Get("c")
	require.True(t, errors.Is(err, storage.ErrDataNotFound), "invalid batch must not be partially applied")
}

// TestStoreNames checks that the same store is returned regardless of name case.
func TestStoreNames(t *testing.T, provider storage.Provider) {
	t.Helper()

	name := randomStoreName()

	_, err := provider.OpenStore("")
	require.Error(t, err)

	lower, err := provider.OpenStore(name)
	require.NoError(t, err)

	require.NoError(t, lower.Put("key", []byte("value")))

	upper, err := provider.OpenStore("UPPER" + name[len("upper"):])
	require.NoError(t, err)

	value, err := upper.Get("key")
	require.NoError(t, err)
	require.Equal(t, []byte("value"), value)

	require.NoError(t, provider.Close())
}

func randomStoreName() string {
	return "upper" + uuid.New().String()
}
