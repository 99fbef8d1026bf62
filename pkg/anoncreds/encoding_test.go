/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"testing"

	ml "github.com/IBM/mathlib"
	"github.com/stretchr/testify/require"
)

func TestEncodeValue(t *testing.T) {
	tests := []struct {
		raw     string
		encoded string
	}{
		{raw: "28", encoded: "28"},
		{raw: "-5", encoded: "-5"},
		{raw: "2147483647", encoded: "2147483647"},
		{raw: "2147483648", encoded: "26221484005389514539852548961319751347124425277437769688639924217837557266135"},
		{raw: "Alex", encoded: "99262857098057710338306967609588410025648622308394250666849665532448612202874"},
		{raw: "", encoded: "102987336249554097029535212322581322789799900648198034993379397001115665086549"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.raw, func(t *testing.T) {
			require.Equal(t, tc.encoded, EncodeValue(tc.raw))
		})
	}
}

func TestInt32Value(t *testing.T) {
	v, ok := Int32Value("-2147483648")
	require.True(t, ok)
	require.EqualValues(t, -2147483648, v)

	_, ok = Int32Value("1.5")
	require.False(t, ok)

	_, ok = Int32Value("2147483648")
	require.False(t, ok)
}

func TestEncodedToScalar(t *testing.T) {
	curve := ml.Curves[ml.BLS12_381_BBS]

	z, err := EncodedToScalar(curve, "28")
	require.NoError(t, err)
	require.True(t, z.Equals(curve.NewZrFromInt(28)))

	_, err = EncodedToScalar(curve, "twenty")
	require.ErrorIs(t, err, ErrMalformedInput)
}

func TestAttributeValue(t *testing.T) {
	v := NewAttributeValue("Alex")
	require.NoError(t, v.Validate())

	require.ErrorIs(t, AttributeValue{Raw: "28", Encoded: "29"}.Validate(), ErrMalformedInput)
	require.ErrorIs(t, AttributeValue{Raw: "x", Encoded: "0x12"}.Validate(), ErrMalformedInput)

	require.Equal(t, "firstname", CanonicalAttrName("First Name"))
}
