/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credxcmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/creddef"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/presentation"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/revocation"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/schema"
)

const (
	requestFile      = "request.json"
	presentationFile = "presentation.json"
	ledgerFile       = "ledger.json"
)

// ledger is the public data a verifier resolves presentations against.
type ledger struct {
	Schemas    map[string]json.RawMessage               `json:"schemas"`
	CredDefs   map[string]*creddef.CredentialDefinition `json:"cred_defs"`
	RevRegDefs map[string]*revocation.Definition        `json:"rev_reg_defs,omitempty"`
	RevStates  presentation.RevStates                   `json:"rev_states,omitempty"`
}

func newLedger() *ledger {
	return &ledger{
		Schemas:    make(map[string]json.RawMessage),
		CredDefs:   make(map[string]*creddef.CredentialDefinition),
		RevRegDefs: make(map[string]*revocation.Definition),
		RevStates:  make(presentation.RevStates),
	}
}

func (l *ledger) addSchema(s schema.Schema) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	l.Schemas[s.ID()] = data

	return nil
}

func (l *ledger) addRevState(snap *revocation.Snapshot) {
	states, ok := l.RevStates[snap.RevRegDefID]
	if !ok {
		states = make(map[int64]*revocation.Snapshot)
		l.RevStates[snap.RevRegDefID] = states
	}

	states[snap.Timestamp] = snap
}

func (l *ledger) schemas() (map[string]schema.Schema, error) {
	out := make(map[string]schema.Schema, len(l.Schemas))

	for id, data := range l.Schemas {
		s, err := schema.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", id, err)
		}

		out[id] = s
	}

	return out, nil
}

func writeJSON(dir, name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, name), data, 0o600)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	return nil
}
