/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentation

import (
	"errors"
	"io"

	ml "github.com/IBM/mathlib"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/api"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/creddef"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/issuance"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/linksecret"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/presreq"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/revocation"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/schema"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/accumulator"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/bbs"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/curveutil"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/rangeproof"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/transcript"
)

// group is the set of referents answered by one sub-proof.
type group struct {
	index int
	entry *entry
	attrs []string
	preds []string

	cd *creddef.CredentialDefinition
	s  api.SignatureScheme
	pk *bbs.PublicKey
}

func (g *group) referents() []string {
	return append(append([]string{}, g.attrs...), g.preds...)
}

type rangeEntry struct {
	referent string
	prover   *rangeproof.Prover
}

// subProver holds the commitment phase state of one sub-proof.
type subProver struct {
	id         Identifier
	pk         *bbs.PublicKey
	pok        *bbs.PoKOfSignature
	ranges     []rangeEntry
	membership *accumulator.MembershipProver
}

func (sp *subProver) contribute(t *transcript.Transcript) {
	appendIdentifier(t, &sp.id, sp.pk)
	sp.pok.Contribute(t)

	for _, r := range sp.ranges {
		t.AppendString(r.referent)

		if r.prover != nil {
			r.prover.Contribute(t)
		}
	}

	if sp.membership != nil {
		sp.membership.Contribute(t)
	}
}

func (sp *subProver) finish(c *ml.Zr) SubProof {
	sub := SubProof{Primary: encodeSignatureProof(sp.pok.GenerateProof(c))}

	for _, r := range sp.ranges {
		if r.prover == nil {
			sub.Predicates = append(sub.Predicates, PredicateProof{Referent: r.referent})

			continue
		}

		sub.Predicates = append(sub.Predicates, encodeRangeProof(r.referent, r.prover.GenerateProof(c)))
	}

	if sp.membership != nil {
		sub.NonRevoc = encodeNonRevocProof(sp.membership.GenerateProof(c))
	}

	return sub
}

// prover carries what every sub-proof of one presentation shares.
type prover struct {
	rng        io.Reader
	req        *presreq.PresentationRequest
	creds      *Credentials
	ls         *linksecret.LinkSecret
	revDefs    map[string]*revocation.Definition
	curve      *ml.Curve
	params     *rangeproof.Params
	lsBlinding *ml.Zr
	requested  RequestedProof
}

// Create builds a presentation answering req. creds says which credential answers each referent and
// selfAttested holds values for unrestricted attributes the holder states without a credential. The
// ledger maps are keyed by object ID.
//
// Create fails with UnsatisfiablePredicate when a credential value does not satisfy a predicate and with
// StaleWitness when the witness does not verify or lies outside a requested non-revocation interval.
func Create(rng io.Reader, req *presreq.PresentationRequest, creds *Credentials, selfAttested map[string]string,
	ls *linksecret.LinkSecret, schemas map[string]schema.Schema, credDefs map[string]*creddef.CredentialDefinition,
	revDefs map[string]*revocation.Definition) (*Presentation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if ls == nil {
		return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "missing link secret")
	}

	if creds == nil {
		creds = NewCredentials()
	}

	p := &prover{rng: rng, req: req, creds: creds, ls: ls, revDefs: revDefs, requested: newRequestedProof()}

	groups, err := p.plan(selfAttested)
	if err != nil {
		return nil, err
	}

	if err := p.resolve(groups, schemas, credDefs); err != nil {
		return nil, err
	}

	pres := &Presentation{RequestedProof: p.requested, Nonce: req.Nonce}
	if len(groups) == 0 {
		return pres, nil
	}

	p.params = rangeproof.NewParams(p.curve)
	p.lsBlinding = curveutil.RandomNonZeroZr(p.curve, rng)

	t := transcript.New(transcriptLabel)
	t.AppendBytes(req.Nonce.Bytes())
	t.AppendUint64(uint64(len(groups)))

	provers := make([]*subProver, len(groups))

	for i, g := range groups {
		sp, err := p.prove(g)
		if err != nil {
			return nil, err
		}

		sp.contribute(t)
		provers[i] = sp
	}

	c := t.Challenge(p.curve)

	pres.Proof.Challenge = anoncreds.ZrElement(c)

	for _, sp := range provers {
		pres.Proof.SubProofs = append(pres.Proof.SubProofs, sp.finish(c))
		pres.Identifiers = append(pres.Identifiers, sp.id)
	}

	logger.Debugf("created presentation with %d sub-proofs", len(provers))

	return pres, nil
}

// plan assigns referents to sub-proofs and records self attested values.
func (p *prover) plan(selfAttested map[string]string) ([]*group, error) {
	var groups []*group

	byKey := make(map[string]*group)

	assign := func(e *entry) (*group, error) {
		if e == nil || e.cred == nil {
			return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "missing credential")
		}

		k := e.key()
		if g, ok := byKey[k]; ok {
			return g, nil
		}

		g := &group{index: len(groups), entry: e}
		byKey[k] = g
		groups = append(groups, g)

		return g, nil
	}

	for _, referent := range p.req.AttributeReferents() {
		info := p.req.RequestedAttributes[referent]
		choice, chosen := p.creds.attrs[referent]
		value, attested := selfAttested[referent]

		switch {
		case chosen && attested:
			return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "attribute %q is both self attested and proven", referent)
		case attested:
			if !info.SelfAttestable() {
				return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "attribute %q cannot be self attested", referent)
			}

			p.requested.SelfAttestedAttrs[referent] = value

			continue
		case !chosen:
			return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "no credential for attribute %q", referent)
		}

		g, err := assign(choice.entry)
		if err != nil {
			return nil, err
		}

		g.attrs = append(g.attrs, referent)
	}

	for _, referent := range p.req.PredicateReferents() {
		g, err := assign(p.creds.preds[referent])
		if err != nil {
			return nil, anoncreds.WrapError(anoncreds.KindMalformedInput, err, "predicate %q", referent)
		}

		g.preds = append(g.preds, referent)
	}

	for referent := range p.creds.attrs {
		if _, ok := p.req.RequestedAttributes[referent]; !ok {
			return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "attribute %q was not requested", referent)
		}
	}

	for referent := range p.creds.preds {
		if _, ok := p.req.RequestedPredicates[referent]; !ok {
			return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "predicate %q was not requested", referent)
		}
	}

	for referent := range selfAttested {
		if _, ok := p.req.RequestedAttributes[referent]; !ok {
			return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "attribute %q was not requested", referent)
		}
	}

	return groups, nil
}

// resolve looks up the ledger objects of every group. All credentials must use one signature scheme.
func (p *prover) resolve(groups []*group, schemas map[string]schema.Schema,
	credDefs map[string]*creddef.CredentialDefinition) error {
	var schemeName string

	for _, g := range groups {
		cred := g.entry.cred

		if _, ok := schemas[cred.SchemaID]; !ok {
			return anoncreds.NewError(anoncreds.KindMalformedInput, "unknown schema %s", cred.SchemaID)
		}

		cd, ok := credDefs[cred.CredDefID]
		if !ok {
			return anoncreds.NewError(anoncreds.KindMalformedInput, "unknown credential definition %s", cred.CredDefID)
		}

		if cd.SchemaID != cred.SchemaID {
			return anoncreds.NewError(anoncreds.KindMalformedInput,
				"credential names schema %s but %s is issued for %s", cred.SchemaID, cd.ID, cd.SchemaID)
		}

		s, pk, err := cd.Key()
		if err != nil {
			return err
		}

		if schemeName == "" {
			schemeName = s.Name()
			p.curve = s.Curve()
		} else if s.Name() != schemeName {
			return anoncreds.NewError(anoncreds.KindUnsupported, "credentials of schemes %s and %s in one presentation",
				schemeName, s.Name())
		}

		g.cd, g.s, g.pk = cd, s, pk
	}

	return nil
}

// prove runs the commitment phase of one sub-proof and fills in the requested proof for its referents.
func (p *prover) prove(g *group) (*subProver, error) {
	cred, cd := g.entry.cred, g.cd

	msgs, err := cred.Messages(p.curve, cd, p.ls)
	if err != nil {
		return nil, err
	}

	sig, err := cred.DecodeSignature(p.curve)
	if err != nil {
		return nil, err
	}

	if err := g.s.Verify(g.pk, sig, msgs); err != nil {
		return nil, anoncreds.WrapError(anoncreds.KindMalformedInput, err,
			"credential of %s does not verify with this link secret", cd.ID)
	}

	revealed, err := p.disclose(g, cred, cd)
	if err != nil {
		return nil, err
	}

	revealedIdx := maps.Keys(revealed)
	slices.Sort(revealedIdx)

	pok, err := g.s.NewPoKOfSignature(p.rng, g.pk, sig, msgs, revealedIdx,
		map[int]*ml.Zr{creddef.LinkSecretIndex: p.lsBlinding})
	if err != nil {
		return nil, anoncreds.WrapError(anoncreds.KindUnknown, err, "signature proof for %s", cd.ID)
	}

	sp := &subProver{
		id:  Identifier{SchemaID: cred.SchemaID, CredDefID: cred.CredDefID, RevRegID: cred.RevRegID},
		pk:  g.pk,
		pok: pok,
	}

	if sp.ranges, err = p.predicates(g, cred, cd, pok, revealed); err != nil {
		return nil, err
	}

	if err := p.nonRevocation(g, sp); err != nil {
		return nil, err
	}

	return sp, nil
}

// disclose records the attribute referents of g and returns the revealed message indices.
func (p *prover) disclose(g *group, cred *issuance.Credential, cd *creddef.CredentialDefinition) (map[int]bool, error) {
	revealed := make(map[int]bool)

	for _, referent := range g.attrs {
		info := p.req.RequestedAttributes[referent]

		if info.Name != "" {
			idx, v, err := lookup(cred, cd, info.Name)
			if err != nil {
				return nil, err
			}

			if !p.creds.attrs[referent].revealed {
				p.requested.UnrevealedAttrs[referent] = SubProofReferent{SubProofIndex: g.index}

				continue
			}

			revealed[idx] = true
			p.requested.RevealedAttrs[referent] = RevealedAttr{SubProofIndex: g.index, Raw: v.Raw, Encoded: v.Encoded}

			continue
		}

		values := make(map[string]anoncreds.AttributeValue, len(info.Names))

		for _, name := range info.Names {
			idx, v, err := lookup(cred, cd, name)
			if err != nil {
				return nil, err
			}

			revealed[idx] = true
			values[name] = v
		}

		p.requested.RevealedAttrGroups[referent] = RevealedAttrGroup{SubProofIndex: g.index, Values: values}
	}

	return revealed, nil
}

func (p *prover) predicates(g *group, cred *issuance.Credential, cd *creddef.CredentialDefinition,
	pok *bbs.PoKOfSignature, revealed map[int]bool) ([]rangeEntry, error) {
	ranges := make([]rangeEntry, 0, len(g.preds))

	for _, referent := range g.preds {
		info := p.req.RequestedPredicates[referent]

		idx, v, err := lookup(cred, cd, info.Name)
		if err != nil {
			return nil, err
		}

		value, ok := anoncreds.Int32Value(v.Encoded)
		if !ok || !info.Satisfied(value) {
			return nil, anoncreds.NewError(anoncreds.KindUnsatisfiablePredicate, "predicate %q does not hold", referent)
		}

		p.requested.Predicates[referent] = SubProofReferent{SubProofIndex: g.index}

		if revealed[idx] {
			ranges = append(ranges, rangeEntry{referent: referent})

			continue
		}

		blinding, _ := pok.Blinding(idx)
		bound, kind := info.Bound()

		rp, err := p.params.NewProver(p.rng, int64(value), bound, kind, blinding)
		if errors.Is(err, rangeproof.ErrUnsatisfied) {
			return nil, anoncreds.WrapError(anoncreds.KindUnsatisfiablePredicate, err, "predicate %q", referent)
		} else if err != nil {
			return nil, anoncreds.WrapError(anoncreds.KindUnknown, err, "predicate %q", referent)
		}

		ranges = append(ranges, rangeEntry{referent: referent, prover: rp})
	}

	return ranges, nil
}

// nonRevocation adds a membership proof when a referent of g asks for one and the credential is
// revocable.
func (p *prover) nonRevocation(g *group, sp *subProver) error {
	if !needsNonRevocation(p.req, g.cd, g.referents()) {
		return nil
	}

	cred := g.entry.cred
	w := g.entry.revState()

	if w == nil || cred.RevReg == nil || w.RevRegDefID != cred.RevRegID || w.Index != cred.RevReg.Index {
		return anoncreds.NewError(anoncreds.KindMalformedInput, "no witness for the credential's registry index")
	}

	def, ok := p.revDefs[cred.RevRegID]
	if !ok || def.CredDefID != g.cd.ID {
		return anoncreds.NewError(anoncreds.KindMalformedInput, "unknown revocation registry %s", cred.RevRegID)
	}

	if err := w.Verify(def); err != nil {
		return err
	}

	for _, referent := range g.referents() {
		if !p.req.NonRevokedFor(referent).Contains(w.Timestamp) {
			return anoncreds.NewError(anoncreds.KindStaleWitness, "witness at %d is outside the interval of %q",
				w.Timestamp, referent)
		}
	}

	acc, pk, err := def.Key()
	if err != nil {
		return err
	}

	v, err := w.Accumulator.G1(p.curve)
	if err != nil {
		return err
	}

	c, err := w.C.G1(p.curve)
	if err != nil {
		return err
	}

	revIdx, _ := g.cd.RevocationIndex()
	yBlinding, _ := sp.pok.Blinding(revIdx)

	sp.membership = acc.NewMembershipProver(p.rng, pk, v, acc.Element(w.Index), c, yBlinding)

	ts := w.Timestamp
	sp.id.Timestamp = &ts

	return nil
}

// needsNonRevocation reports whether a sub-proof over cd answering referents must prove non-revocation.
func needsNonRevocation(req *presreq.PresentationRequest, cd *creddef.CredentialDefinition, referents []string) bool {
	if !cd.Value.Revocation {
		return false
	}

	for _, referent := range referents {
		if req.NonRevokedFor(referent) != nil {
			return true
		}
	}

	return false
}

func lookup(cred *issuance.Credential, cd *creddef.CredentialDefinition, name string) (int, anoncreds.AttributeValue,
	error) {
	idx, ok := cd.AttrIndex(name)
	if !ok {
		return 0, anoncreds.AttributeValue{}, anoncreds.NewError(anoncreds.KindMalformedInput,
			"credential definition %s has no attribute %q", cd.ID, name)
	}

	v, ok := cred.Attribute(name)
	if !ok {
		return 0, anoncreds.AttributeValue{}, anoncreds.NewError(anoncreds.KindMalformedInput,
			"credential lacks attribute %q", name)
	}

	return idx, v, nil
}
