/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package revocation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/storage"
)

const journalStoreName = "revocation_journal"

// journal keeps one record per registry version and a head pointer, both under the registry id.
type journal struct {
	store  storage.Store
	prefix string
}

func (j *journal) eventKey(version uint64) string {
	return fmt.Sprintf("%s/%020d", j.prefix, version)
}

func (j *journal) headKey() string {
	return j.prefix + "/head"
}

func (j *journal) append(ev *Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return anoncreds.WrapError(anoncreds.KindInvalidState, err, "encode registry event")
	}

	err = j.store.Batch([]storage.Operation{
		{Key: j.eventKey(ev.Version), Value: data},
		{Key: j.headKey(), Value: []byte(strconv.FormatUint(ev.Version, 10))},
	})
	if err != nil {
		return anoncreds.WrapError(anoncreds.KindInvalidState, err, "write registry version %d", ev.Version)
	}

	return nil
}

// load returns every journaled version in order, or nothing for a new registry.
func (j *journal) load() ([]*Event, error) {
	raw, err := j.store.Get(j.headKey())
	if errors.Is(err, storage.ErrDataNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, anoncreds.WrapError(anoncreds.KindInvalidState, err, "read registry journal head")
	}

	head, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return nil, anoncreds.WrapError(anoncreds.KindInvalidState, err, "parse registry journal head")
	}

	events := make([]*Event, 0, head+1)

	for v := uint64(0); v <= head; v++ {
		data, err := j.store.Get(j.eventKey(v))
		if err != nil {
			return nil, anoncreds.WrapError(anoncreds.KindInvalidState, err, "read registry version %d", v)
		}

		ev := &Event{}
		if err := json.Unmarshal(data, ev); err != nil {
			return nil, anoncreds.WrapError(anoncreds.KindInvalidState, err, "decode registry version %d", v)
		}

		events = append(events, ev)
	}

	return events, nil
}
