/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package schema

import (
	"encoding/json"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/mitchellh/mapstructure"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
)

// RichType is the rsType of rich schemas.
const RichType = "sch"

// Rich is an experimental rich schema. Its JSON-LD content is opaque; attribute names are either the
// top level non keyword properties (in lexical order) or the strings selected by AttrPath.
type Rich struct {
	RichID    string          `json:"id"`
	Content   json.RawMessage `json:"content"`
	RSName    string          `json:"rsName"`
	RSVersion string          `json:"rsVersion"`
	RSType    string          `json:"rsType"`
	AttrPath  string          `json:"attrPath,omitempty"`
}

type richContent struct {
	ID         string                 `mapstructure:"@id"`
	Type       interface{}            `mapstructure:"@type"`
	Context    interface{}            `mapstructure:"@context"`
	Properties map[string]interface{} `mapstructure:",remain"`
}

// ID returns the schema id.
func (r *Rich) ID() string {
	return r.RichID
}

// AttrNames extracts the attribute names from the content.
func (r *Rich) AttrNames() ([]string, error) {
	var doc interface{}

	if err := json.Unmarshal(r.Content, &doc); err != nil {
		return nil, anoncreds.WrapError(anoncreds.KindMalformedInput, err, "decode rich schema content")
	}

	if r.AttrPath != "" {
		return selectNames(r.AttrPath, doc)
	}

	var content richContent

	if err := mapstructure.Decode(doc, &content); err != nil {
		return nil, anoncreds.WrapError(anoncreds.KindMalformedInput, err, "rich schema content is not an object")
	}

	names := make([]string, 0, len(content.Properties))

	for _, key := range maps.Keys(content.Properties) {
		if !strings.HasPrefix(key, "@") {
			names = append(names, key)
		}
	}

	slices.Sort(names)

	return names, nil
}

// Validate checks the identifiers and the extracted attribute names.
func (r *Rich) Validate() error {
	if err := anoncreds.ValidateID("rich schema id", r.RichID); err != nil {
		return err
	}

	if r.RSType != RichType {
		return anoncreds.NewError(anoncreds.KindMalformedInput, "rich schema type %q, expected %q", r.RSType, RichType)
	}

	return Validate(r)
}

func selectNames(path string, doc interface{}) ([]string, error) {
	selected, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, anoncreds.WrapError(anoncreds.KindMalformedInput, err, "evaluate attribute path %q", path)
	}

	var values []interface{}

	switch v := selected.(type) {
	case []interface{}:
		values = v
	case map[string]interface{}:
		keys := maps.Keys(v)
		slices.Sort(keys)

		return keys, nil
	default:
		values = []interface{}{v}
	}

	names := make([]string, len(values))

	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "attribute path selected a %T, expected strings", v)
		}

		names[i] = s
	}

	return names, nil
}
