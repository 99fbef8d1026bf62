/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentation

import (
	"errors"
	"fmt"

	ml "github.com/IBM/mathlib"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/api"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/creddef"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/presreq"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/revocation"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/schema"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/accumulator"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/bbs"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/rangeproof"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/transcript"
)

// RevStates holds the registry states a verifier accepts, by registry ID and timestamp.
type RevStates map[string]map[int64]*revocation.Snapshot

type predicateCheck struct {
	referent string
	info     presreq.PredicateInfo
	idx      int
	proof    *rangeproof.Proof
	revealed *anoncreds.AttributeValue
}

type membershipCheck struct {
	acc   *accumulator.Accumulator
	pk    *accumulator.PublicKey
	v     *ml.G1
	proof *accumulator.MembershipProof
	idx   int
}

// subProofCheck is one decoded sub-proof with everything needed to recompute its commitments.
type subProofCheck struct {
	id         *Identifier
	cd         *creddef.CredentialDefinition
	s          api.SignatureScheme
	pk         *bbs.PublicKey
	proof      *bbs.PoKOfSignatureProof
	revealed   map[int]*ml.Zr
	raw        map[int]anoncreds.AttributeValue
	predicates []predicateCheck
	membership *membershipCheck
}

type verifier struct {
	req       *presreq.PresentationRequest
	pres      *Presentation
	schemas   map[string]schema.Schema
	credDefs  map[string]*creddef.CredentialDefinition
	revDefs   map[string]*revocation.Definition
	revStates RevStates
	curve     *ml.Curve
}

// Verify checks pres against req. Any failure, from a missing referent to a wrong response, is reported
// as PresentationInvalid; an invalid request is MalformedInput.
//
// revStates holds the accumulator states the verifier trusts for the timestamps it accepts. Which states
// are acceptable is the verifier's freshness policy; timestamps must also lie in the requested
// non-revocation intervals.
func Verify(pres *Presentation, req *presreq.PresentationRequest, schemas map[string]schema.Schema,
	credDefs map[string]*creddef.CredentialDefinition, revDefs map[string]*revocation.Definition,
	revStates RevStates) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if pres == nil {
		return anoncreds.NewError(anoncreds.KindPresentationInvalid, "missing presentation")
	}

	v := &verifier{req: req, pres: pres, schemas: schemas, credDefs: credDefs, revDefs: revDefs, revStates: revStates}

	if err := v.verify(); err != nil {
		logger.Debugf("presentation rejected: %s", err)

		return anoncreds.WrapError(anoncreds.KindPresentationInvalid, err, "presentation")
	}

	return nil
}

func (v *verifier) verify() error {
	if v.pres.Nonce != v.req.Nonce {
		return errors.New("nonce does not match the request")
	}

	if len(v.pres.Identifiers) != len(v.pres.Proof.SubProofs) {
		return errors.New("identifiers and sub-proofs differ in number")
	}

	referents, err := v.checkReferents()
	if err != nil {
		return err
	}

	if len(v.pres.Proof.SubProofs) == 0 {
		return nil
	}

	checks := make([]*subProofCheck, len(v.pres.Proof.SubProofs))

	for i := range v.pres.Proof.SubProofs {
		if checks[i], err = v.decode(i, referents[i]); err != nil {
			return fmt.Errorf("sub-proof %d: %w", i, err)
		}
	}

	c, err := v.pres.Proof.Challenge.Zr(v.curve)
	if err != nil {
		return err
	}

	if err := checkLinkSecret(checks); err != nil {
		return err
	}

	t := transcript.New(transcriptLabel)
	t.AppendBytes(v.req.Nonce.Bytes())
	t.AppendUint64(uint64(len(checks)))

	params := rangeproof.NewParams(v.curve)

	for i, check := range checks {
		if err := check.contribute(t, params, c); err != nil {
			return fmt.Errorf("sub-proof %d: %w", i, err)
		}
	}

	if !t.Challenge(v.curve).Equals(c) {
		return errors.New("challenge mismatch")
	}

	return verifyPairings(checks)
}

// checkReferents matches the requested proof against the request and returns the referents answered by
// each sub-proof.
func (v *verifier) checkReferents() ([][]string, error) {
	rp := &v.pres.RequestedProof
	n := len(v.pres.Proof.SubProofs)
	referents := make([][]string, n)

	index := func(referent string, i int) error {
		if i < 0 || i >= n {
			return fmt.Errorf("referent %q points at sub-proof %d of %d", referent, i, n)
		}

		referents[i] = append(referents[i], referent)

		return nil
	}

	for _, referent := range v.req.AttributeReferents() {
		info := v.req.RequestedAttributes[referent]

		revealed, isRevealed := rp.RevealedAttrs[referent]
		grp, isGroup := rp.RevealedAttrGroups[referent]
		unrevealed, isUnrevealed := rp.UnrevealedAttrs[referent]
		_, isSelf := rp.SelfAttestedAttrs[referent]

		var err error

		switch {
		case countTrue(isRevealed, isGroup, isUnrevealed, isSelf) != 1:
			err = fmt.Errorf("attribute %q must be answered exactly once", referent)
		case isGroup != (len(info.Names) > 0):
			err = fmt.Errorf("attribute %q answered in the wrong form", referent)
		case isSelf && !info.SelfAttestable():
			err = fmt.Errorf("attribute %q cannot be self attested", referent)
		case isRevealed:
			err = index(referent, revealed.SubProofIndex)
		case isGroup:
			err = index(referent, grp.SubProofIndex)
		case isUnrevealed:
			err = index(referent, unrevealed.SubProofIndex)
		}

		if err != nil {
			return nil, err
		}
	}

	for _, referent := range v.req.PredicateReferents() {
		sp, ok := rp.Predicates[referent]
		if !ok {
			return nil, fmt.Errorf("predicate %q is not answered", referent)
		}

		if err := index(referent, sp.SubProofIndex); err != nil {
			return nil, err
		}
	}

	total := len(rp.RevealedAttrs) + len(rp.RevealedAttrGroups) + len(rp.UnrevealedAttrs) + len(rp.SelfAttestedAttrs)
	if total != len(v.req.RequestedAttributes) || len(rp.Predicates) != len(v.req.RequestedPredicates) {
		return nil, errors.New("presentation answers referents that were not requested")
	}

	for i, refs := range referents {
		if len(refs) == 0 {
			return nil, fmt.Errorf("sub-proof %d answers no referent", i)
		}
	}

	return referents, nil
}

func countTrue(flags ...bool) int {
	n := 0

	for _, f := range flags {
		if f {
			n++
		}
	}

	return n
}

// decode resolves the ledger objects of sub-proof i and decodes its proofs.
func (v *verifier) decode(i int, referents []string) (*subProofCheck, error) {
	id := &v.pres.Identifiers[i]
	sub := &v.pres.Proof.SubProofs[i]

	if _, ok := v.schemas[id.SchemaID]; !ok {
		return nil, fmt.Errorf("unknown schema %s", id.SchemaID)
	}

	cd, ok := v.credDefs[id.CredDefID]
	if !ok {
		return nil, fmt.Errorf("unknown credential definition %s", id.CredDefID)
	}

	if cd.SchemaID != id.SchemaID {
		return nil, fmt.Errorf("credential definition %s is not issued for schema %s", cd.ID, id.SchemaID)
	}

	s, pk, err := cd.Key()
	if err != nil {
		return nil, err
	}

	if v.curve == nil {
		v.curve = s.Curve()
	} else if v.curve != s.Curve() {
		return nil, errors.New("sub-proofs on different curves")
	}

	check := &subProofCheck{
		id:       id,
		cd:       cd,
		s:        s,
		pk:       pk,
		revealed: make(map[int]*ml.Zr),
		raw:      make(map[int]anoncreds.AttributeValue),
	}

	if check.proof, err = sub.Primary.decode(v.curve); err != nil {
		return nil, err
	}

	if err := v.revealedValues(check, i); err != nil {
		return nil, err
	}

	if err := v.predicateChecks(check, sub, i); err != nil {
		return nil, err
	}

	if err := v.membershipCheck(check, sub, referents); err != nil {
		return nil, err
	}

	return check, nil
}

func (v *verifier) revealedValues(check *subProofCheck, i int) error {
	rp := &v.pres.RequestedProof

	for referent, attr := range rp.RevealedAttrs {
		if attr.SubProofIndex != i {
			continue
		}

		value := anoncreds.AttributeValue{Raw: attr.Raw, Encoded: attr.Encoded}
		if err := check.reveal(v.curve, v.req.RequestedAttributes[referent].Name, value); err != nil {
			return err
		}
	}

	for referent, grp := range rp.RevealedAttrGroups {
		if grp.SubProofIndex != i {
			continue
		}

		names := v.req.RequestedAttributes[referent].Names
		if len(grp.Values) != len(names) {
			return fmt.Errorf("attribute group %q has %d values for %d names", referent, len(grp.Values), len(names))
		}

		for _, name := range names {
			value, ok := grp.Values[name]
			if !ok {
				return fmt.Errorf("attribute group %q lacks %q", referent, name)
			}

			if err := check.reveal(v.curve, name, value); err != nil {
				return err
			}
		}
	}

	for referent, sp := range rp.UnrevealedAttrs {
		if sp.SubProofIndex != i {
			continue
		}

		if _, ok := check.cd.AttrIndex(v.req.RequestedAttributes[referent].Name); !ok {
			return fmt.Errorf("credential definition has no attribute for %q", referent)
		}
	}

	return nil
}

func (check *subProofCheck) reveal(curve *ml.Curve, name string, value anoncreds.AttributeValue) error {
	idx, ok := check.cd.AttrIndex(name)
	if !ok {
		return fmt.Errorf("credential definition has no attribute %q", name)
	}

	if err := value.Validate(); err != nil {
		return err
	}

	m, err := anoncreds.EncodedToScalar(curve, value.Encoded)
	if err != nil {
		return err
	}

	if prev, ok := check.revealed[idx]; ok && !prev.Equals(m) {
		return fmt.Errorf("attribute %q revealed with two values", name)
	}

	check.revealed[idx] = m
	check.raw[idx] = value

	return nil
}

func (v *verifier) predicateChecks(check *subProofCheck, sub *SubProof, i int) error {
	var referents []string

	for referent, sp := range v.pres.RequestedProof.Predicates {
		if sp.SubProofIndex == i {
			referents = append(referents, referent)
		}
	}

	slices.Sort(referents)

	if len(sub.Predicates) != len(referents) {
		return fmt.Errorf("%d predicate proofs for %d predicates", len(sub.Predicates), len(referents))
	}

	for k, referent := range referents {
		wire := &sub.Predicates[k]
		if wire.Referent != referent {
			return fmt.Errorf("predicate proof for %q where %q was expected", wire.Referent, referent)
		}

		info := v.req.RequestedPredicates[referent]

		idx, ok := check.cd.AttrIndex(info.Name)
		if !ok {
			return fmt.Errorf("credential definition has no attribute %q", info.Name)
		}

		pc := predicateCheck{referent: referent, info: info, idx: idx}

		if raw, ok := check.raw[idx]; ok {
			if !wire.empty() {
				return fmt.Errorf("range proof for revealed attribute of %q", referent)
			}

			pc.revealed = &raw
		} else {
			proof, err := wire.decode(v.curve)
			if err != nil {
				return err
			}

			pc.proof = proof
		}

		check.predicates = append(check.predicates, pc)
	}

	return nil
}

func (v *verifier) membershipCheck(check *subProofCheck, sub *SubProof, referents []string) error {
	if !needsNonRevocation(v.req, check.cd, referents) {
		if sub.NonRevoc != nil || check.id.Timestamp != nil {
			return errors.New("unexpected non-revocation proof")
		}

		return nil
	}

	id := check.id
	if sub.NonRevoc == nil || id.Timestamp == nil || id.RevRegID == "" {
		return errors.New("missing non-revocation proof")
	}

	ts := *id.Timestamp

	for _, referent := range referents {
		if !v.req.NonRevokedFor(referent).Contains(ts) {
			return anoncreds.NewError(anoncreds.KindStaleWitness, "timestamp %d is outside the interval of %q",
				ts, referent)
		}
	}

	def, ok := v.revDefs[id.RevRegID]
	if !ok || def.CredDefID != check.cd.ID {
		return fmt.Errorf("unknown revocation registry %s", id.RevRegID)
	}

	state := v.revStates[id.RevRegID][ts]
	if state == nil || state.RevRegDefID != id.RevRegID {
		return fmt.Errorf("no accepted state of %s at %d", id.RevRegID, ts)
	}

	acc, pk, err := def.Key()
	if err != nil {
		return err
	}

	if acc.Curve() != v.curve {
		return errors.New("registry on a different curve")
	}

	value, err := state.Accumulator.G1(v.curve)
	if err != nil {
		return err
	}

	proof, err := sub.NonRevoc.decode(v.curve)
	if err != nil {
		return err
	}

	idx, _ := check.cd.RevocationIndex()
	check.membership = &membershipCheck{acc: acc, pk: pk, v: value, proof: proof, idx: idx}

	return nil
}

// checkLinkSecret requires every sub-proof to hide the link secret behind the same response.
func checkLinkSecret(checks []*subProofCheck) error {
	var first *ml.Zr

	for i, check := range checks {
		z, ok := check.proof.ZHidden[creddef.LinkSecretIndex]
		if !ok {
			return fmt.Errorf("sub-proof %d does not hide the link secret", i)
		}

		if first == nil {
			first = z
		} else if !first.Equals(z) {
			return errors.New("credentials of different link secrets")
		}
	}

	return nil
}

// contribute recomputes the sub-proof's commitments in the order the prover appended them.
func (check *subProofCheck) contribute(t *transcript.Transcript, params *rangeproof.Params, c *ml.Zr) error {
	appendIdentifier(t, check.id, check.pk)

	if err := check.s.ContributePoK(t, check.pk, check.proof, check.revealed, c); err != nil {
		return err
	}

	for _, pc := range check.predicates {
		t.AppendString(pc.referent)

		if pc.revealed != nil {
			value, ok := anoncreds.Int32Value(pc.revealed.Encoded)
			if !ok || !pc.info.Satisfied(value) {
				return fmt.Errorf("revealed value does not satisfy %q", pc.referent)
			}

			continue
		}

		bound, kind := pc.info.Bound()

		if err := params.Contribute(t, pc.proof, bound, kind, check.proof.ZHidden[pc.idx], c); err != nil {
			return err
		}
	}

	if m := check.membership; m != nil {
		if err := m.acc.ContributeMembership(t, m.pk, m.v, m.proof, check.proof.ZHidden[m.idx], c); err != nil {
			return err
		}
	}

	return nil
}

// verifyPairings runs the challenge independent signature checks of all sub-proofs concurrently.
func verifyPairings(checks []*subProofCheck) error {
	var g errgroup.Group

	for i, check := range checks {
		i, check := i, check

		g.Go(func() error {
			if err := check.s.VerifyPoKPairing(check.pk, check.proof); err != nil {
				return fmt.Errorf("sub-proof %d: %w", i, err)
			}

			return nil
		})
	}

	return g.Wait()
}
