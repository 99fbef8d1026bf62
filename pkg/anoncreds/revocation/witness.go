/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package revocation

import (
	"errors"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/accumulator"
)

// Witness is the holder's revocation state for one credential: its registry index and the membership
// witness against the accumulator of a given registry version.
type Witness struct {
	RevRegDefID string            `json:"rev_reg_def_id"`
	Index       uint32            `json:"index"`
	C           anoncreds.Element `json:"witness"`
	Accumulator anoncreds.Element `json:"accum"`
	Version     uint64            `json:"version"`
	Timestamp   int64             `json:"timestamp"`
}

// Verify checks the witness against its own accumulator value. A mismatch is a stale witness.
func (w *Witness) Verify(def *Definition) error {
	if w.RevRegDefID != def.ID {
		return anoncreds.NewError(anoncreds.KindMalformedInput, "witness of %s checked against %s", w.RevRegDefID, def.ID)
	}

	acc, pk, err := def.Key()
	if err != nil {
		return err
	}

	c, err := w.C.G1(acc.Curve())
	if err != nil {
		return err
	}

	v, err := w.Accumulator.G1(acc.Curve())
	if err != nil {
		return err
	}

	if err := acc.VerifyWitness(pk, v, acc.Element(w.Index), c); err != nil {
		return anoncreds.WrapError(anoncreds.KindStaleWitness, err, "index %d of registry %s", w.Index, def.ID)
	}

	return nil
}

// Update moves the witness forward through delta, which must cover the witness' version.
// It fails with CredentialRevoked when the delta removes the holder's own index, after which only the
// issuer can provide a new witness.
func (w *Witness) Update(def *Definition, delta *Delta) (*Witness, error) {
	if err := delta.Validate(); err != nil {
		return nil, err
	}

	if delta.RevRegDefID != w.RevRegDefID || def.ID != w.RevRegDefID {
		return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "delta of %s applied to a witness of %s",
			delta.RevRegDefID, w.RevRegDefID)
	}

	if delta.From > w.Version || delta.To < w.Version {
		return nil, anoncreds.NewError(anoncreds.KindStaleWitness, "delta %d..%d does not cover version %d",
			delta.From, delta.To, w.Version)
	}

	acc, _, err := def.Key()
	if err != nil {
		return nil, err
	}

	curve := acc.Curve()
	y := acc.Element(w.Index)

	c, err := w.C.G1(curve)
	if err != nil {
		return nil, err
	}

	prev, err := w.Accumulator.G1(curve)
	if err != nil {
		return nil, err
	}

	updated := *w

	for i := range delta.Events {
		ev := &delta.Events[i]
		if ev.Version <= w.Version {
			continue
		}

		v, err := ev.Accumulator.G1(curve)
		if err != nil {
			return nil, err
		}

		switch ev.Op {
		case OpAdd:
			c, err = acc.UpdateOnAdd(y, c, acc.Element(ev.Index), prev)
		case OpRemove:
			c, err = acc.UpdateOnRemove(y, c, acc.Element(ev.Index), v)
		case OpNone:
		default:
			return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "unknown accumulator operation %q", ev.Op)
		}

		if errors.Is(err, accumulator.ErrOwnElement) {
			if ev.Op == OpAdd {
				return nil, anoncreds.NewError(anoncreds.KindStaleWitness,
					"index %d of registry %s was restored at version %d, a new witness is required", w.Index, w.RevRegDefID, ev.Version)
			}

			return nil, anoncreds.NewError(anoncreds.KindCredentialRevoked, "index %d of registry %s was revoked at version %d",
				w.Index, w.RevRegDefID, ev.Version)
		}

		if err != nil {
			return nil, anoncreds.WrapError(anoncreds.KindMalformedInput, err, "apply registry version %d", ev.Version)
		}

		prev = v
		updated.Version = ev.Version
		updated.Timestamp = ev.Timestamp
		updated.Accumulator = ev.Accumulator
	}

	updated.C = anoncreds.G1Element(c)

	if err := updated.Verify(def); err != nil {
		return nil, err
	}

	return &updated, nil
}
