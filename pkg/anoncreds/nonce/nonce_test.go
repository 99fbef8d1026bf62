/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package nonce

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/bluele/gcache"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
)

func TestNew(t *testing.T) {
	seen := make(map[Nonce]bool)

	for i := 0; i < 100; i++ {
		n, err := New(rand.Reader)
		require.NoError(t, err)
		require.NoError(t, n.Validate())

		v, ok := new(big.Int).SetString(n.String(), 10)
		require.True(t, ok)
		require.LessOrEqual(t, v.BitLen(), Bits)

		require.False(t, seen[n])
		seen[n] = true
	}
}

func TestNewDeterministic(t *testing.T) {
	a, err := New(anoncreds.NewSeededReader([]byte("n")))
	require.NoError(t, err)

	b, err := New(anoncreds.NewSeededReader([]byte("n")))
	require.NoError(t, err)

	require.Equal(t, a, b)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{name: "zero", value: "0", valid: true},
		{name: "max", value: new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), Bits), big.NewInt(1)).String(), valid: true},
		{name: "too large", value: new(big.Int).Lsh(big.NewInt(1), Bits).String()},
		{name: "negative", value: "-1"},
		{name: "leading zero", value: "01"},
		{name: "hex", value: "0x10"},
		{name: "empty", value: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.value)
			if tc.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, anoncreds.ErrMalformedInput)
			}
		})
	}
}

func TestJSON(t *testing.T) {
	var v struct {
		Nonce Nonce `json:"nonce"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"nonce":"123456"}`), &v))
	require.Equal(t, Nonce("123456"), v.Nonce)

	require.Error(t, json.Unmarshal([]byte(`{"nonce":"12a"}`), &v))
	require.Error(t, json.Unmarshal([]byte(`{"nonce":12}`), &v))
}

func TestReplayCache(t *testing.T) {
	clock := gcache.NewFakeClock()
	cache := NewReplayCache(10, time.Minute, WithClock(clock))

	n, err := New(rand.Reader)
	require.NoError(t, err)

	require.NoError(t, cache.Check(n))
	require.ErrorIs(t, cache.Check(n), anoncreds.ErrReplayedNonce)
	require.Equal(t, 1, cache.Len())

	clock.Advance(2 * time.Minute)

	require.NoError(t, cache.Check(n))
	require.ErrorIs(t, cache.Check("nope"), anoncreds.ErrMalformedInput)
}
