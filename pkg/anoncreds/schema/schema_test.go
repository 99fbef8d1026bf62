/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package schema

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
)

const issuerDID = "NcYxiDXkpYi6ov5FcYDi1e"

func TestNew(t *testing.T) {
	seqNo := uint32(15)

	s, err := New(issuerDID, "gvt", "1.0", []string{"name", "age", "sex", "height"}, &seqNo)
	require.NoError(t, err)
	require.Equal(t, issuerDID+":2:gvt:1.0", s.ID())

	names, err := s.AttrNames()
	require.NoError(t, err)
	require.Equal(t, []string{"name", "age", "sex", "height"}, names)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, s, parsed)
}

func TestNewInvalid(t *testing.T) {
	tooMany := make([]string, MaxAttributes+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("attr%d", i)
	}

	tests := []struct {
		name    string
		schema  string
		version string
		attrs   []string
	}{
		{name: "no attributes", schema: "gvt", version: "1.0"},
		{name: "too many attributes", schema: "gvt", version: "1.0", attrs: tooMany},
		{name: "duplicate canonical names", schema: "gvt", version: "1.0", attrs: []string{"First Name", "firstname"}},
		{name: "blank attribute", schema: "gvt", version: "1.0", attrs: []string{" "}},
		{name: "empty name", version: "1.0", attrs: []string{"a"}},
		{name: "separator in version", schema: "gvt", version: "1:0", attrs: []string{"a"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(issuerDID, tc.schema, tc.version, tc.attrs, nil)
			require.ErrorIs(t, err, anoncreds.ErrMalformedInput)
		})
	}
}

func TestParseUnsupportedVersion(t *testing.T) {
	_, err := Parse([]byte(`{"id":"a:2:b:1","name":"b","version":"1","attrNames":["x"],"ver":"2.0"}`))
	require.ErrorIs(t, err, anoncreds.ErrUnsupported)

	_, err = Parse([]byte(`[]`))
	require.ErrorIs(t, err, anoncreds.ErrMalformedInput)
}

const richContentJSON = `{
	"@id": "did:sov:4e9F8ZmxuvDqRiqqY29x6dx9oU4qwFTkPbDpWtwGbdUsrCD",
	"@type": "rdfs:Class",
	"@context": {"schema": "http://schema.org/"},
	"givenName": {"@type": "xsd:string"},
	"birthDate": {"@type": "xsd:integer"},
	"degree": {"@type": "xsd:string"}
}`

func TestRichSchema(t *testing.T) {
	doc := map[string]interface{}{
		"id":        "did:sov:4e9F8ZmxuvDqRiqqY29x6dx9oU4qwFTkPbDpWtwGbdUsrCD",
		"content":   json.RawMessage(richContentJSON),
		"rsName":    "Diploma",
		"rsVersion": "1.0",
		"rsType":    RichType,
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	s, err := Parse(data)
	require.NoError(t, err)
	require.IsType(t, &Rich{}, s)

	names, err := s.AttrNames()
	require.NoError(t, err)
	require.Equal(t, []string{"birthDate", "degree", "givenName"}, names)
}

func TestRichSchemaAttrPath(t *testing.T) {
	r := &Rich{
		RichID:   "did:sov:rich",
		Content:  json.RawMessage(`{"@id":"x","attributes":["name","age"]}`),
		RSType:   RichType,
		AttrPath: "$.attributes",
	}

	require.NoError(t, r.Validate())

	names, err := r.AttrNames()
	require.NoError(t, err)
	require.Equal(t, []string{"name", "age"}, names)

	r.AttrPath = "$.properties"
	r.Content = json.RawMessage(`{"properties":{"b":{},"a":{}}}`)

	names, err = r.AttrNames()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, names)

	r.Content = json.RawMessage(`{"attributes":[1,2]}`)
	r.AttrPath = "$.attributes"

	_, err = r.AttrNames()
	require.ErrorIs(t, err, anoncreds.ErrMalformedInput)
}

func TestRichSchemaInvalid(t *testing.T) {
	r := &Rich{RichID: "did:sov:rich", Content: json.RawMessage(`{"@id":"x"}`), RSType: RichType}
	require.ErrorIs(t, r.Validate(), anoncreds.ErrMalformedInput)

	r = &Rich{RichID: "did:sov:rich", Content: json.RawMessage(`{"a":1}`), RSType: "ctx"}
	require.ErrorIs(t, r.Validate(), anoncreds.ErrMalformedInput)

	r = &Rich{RichID: "did:sov:rich", Content: json.RawMessage(`[1]`), RSType: RichType}
	require.ErrorIs(t, r.Validate(), anoncreds.ErrMalformedInput)
}
