/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package revocation

import (
	"github.com/willf/bitset"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
)

// Delta is the history between two registry versions. Prev is the accumulator at From; Events hold
// versions From+1 through To.
type Delta struct {
	RevRegDefID string            `json:"rev_reg_def_id"`
	From        uint64            `json:"from"`
	To          uint64            `json:"to"`
	Prev        anoncreds.Element `json:"prev_accum"`
	Events      []Event           `json:"events"`
}

// Validate checks that the events are exactly versions From+1..To in order.
func (d *Delta) Validate() error {
	if d == nil {
		return anoncreds.NewError(anoncreds.KindMalformedInput, "missing registry delta")
	}

	if d.To < d.From || uint64(len(d.Events)) != d.To-d.From {
		return anoncreds.NewError(anoncreds.KindMalformedInput, "delta %d..%d carries %d events", d.From, d.To, len(d.Events))
	}

	for i := range d.Events {
		if d.Events[i].Version != d.From+uint64(i)+1 {
			return anoncreds.NewError(anoncreds.KindMalformedInput, "delta event %d has version %d", i, d.Events[i].Version)
		}
	}

	return nil
}

// Accumulator returns the accumulator at To.
func (d *Delta) Accumulator() anoncreds.Element {
	if len(d.Events) == 0 {
		return d.Prev
	}

	return d.Events[len(d.Events)-1].Accumulator
}

// Revoked lists, in ascending order, the indices whose last event in the delta is a revocation.
func (d *Delta) Revoked() []uint32 {
	revoked := bitset.New(0)

	for i := range d.Events {
		switch d.Events[i].Type {
		case EventRevoke:
			revoked.Set(uint(d.Events[i].Index))
		case EventUnrevoke:
			revoked.Clear(uint(d.Events[i].Index))
		case EventCreate, EventIssue:
		}
	}

	out := make([]uint32, 0, revoked.Count())
	for i, ok := revoked.NextSet(0); ok; i, ok = revoked.NextSet(i + 1) {
		out = append(out, uint32(i))
	}

	return out
}

// MergeDeltas joins consecutive deltas of one registry into a single delta.
func MergeDeltas(deltas ...*Delta) (*Delta, error) {
	if len(deltas) == 0 {
		return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "no deltas to merge")
	}

	for _, d := range deltas {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}

	merged := &Delta{
		RevRegDefID: deltas[0].RevRegDefID,
		From:        deltas[0].From,
		To:          deltas[0].To,
		Prev:        deltas[0].Prev,
		Events:      append([]Event(nil), deltas[0].Events...),
	}

	for _, d := range deltas[1:] {
		if d.RevRegDefID != merged.RevRegDefID {
			return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "cannot merge deltas of %s and %s",
				merged.RevRegDefID, d.RevRegDefID)
		}

		if d.From != merged.To {
			return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "delta starting at %d does not follow version %d",
				d.From, merged.To)
		}

		merged.Events = append(merged.Events, d.Events...)
		merged.To = d.To
	}

	return merged, nil
}
