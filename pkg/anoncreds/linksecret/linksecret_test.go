/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package linksecret

import (
	"crypto/rand"
	"errors"
	"fmt"
	"testing"

	ml "github.com/IBM/mathlib"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("no entropy")
}

func TestNew(t *testing.T) {
	a, err := New(rand.Reader)
	require.NoError(t, err)

	b, err := New(rand.Reader)
	require.NoError(t, err)

	require.False(t, a.Equal(b))

	_, err = New(failingReader{})
	require.ErrorIs(t, err, anoncreds.ErrKeyGeneration)
}

func TestTextRoundTrip(t *testing.T) {
	ls, err := New(anoncreds.NewSeededReader([]byte("link secret")))
	require.NoError(t, err)

	text, err := ls.MarshalText()
	require.NoError(t, err)

	restored := &LinkSecret{}
	require.NoError(t, restored.UnmarshalText(text))
	require.True(t, ls.Equal(restored))

	curve := ml.Curves[ml.BLS12_381_BBS]
	require.True(t, ls.Scalar(curve).Equals(restored.Scalar(curve)))

	require.Error(t, restored.UnmarshalText([]byte("-1")))
	require.Error(t, restored.UnmarshalText([]byte("abc")))
}

func TestStringHidesSecret(t *testing.T) {
	ls, err := New(rand.Reader)
	require.NoError(t, err)

	text, err := ls.MarshalText()
	require.NoError(t, err)

	require.NotContains(t, fmt.Sprintf("%v", ls), string(text))
}
