/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package revocation

import (
	"sync"
	"time"

	ml "github.com/IBM/mathlib"
	"github.com/willf/bitset"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/crypto/primitive/accumulator"
	"github.com/hyperledger/aries-anoncreds-go/pkg/storage"
)

// EventType names a registry mutation.
type EventType string

// Registry events.
const (
	EventCreate   EventType = "create"
	EventIssue    EventType = "issue"
	EventRevoke   EventType = "revoke"
	EventUnrevoke EventType = "unrevoke"
)

// Op is the accumulator operation an event performed.
type Op string

// Accumulator operations. Issuing under IssuanceByDefault leaves the accumulator untouched.
const (
	OpNone   Op = ""
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

// Event is one registry version: the mutation that produced it and the accumulator value after it.
type Event struct {
	Version     uint64            `json:"version"`
	Timestamp   int64             `json:"timestamp"`
	Type        EventType         `json:"type"`
	Index       uint32            `json:"index"`
	Op          Op                `json:"op,omitempty"`
	Accumulator anoncreds.Element `json:"accum"`
}

// Snapshot is a read-only view of a registry version, which is what verifiers check
// non-revocation proofs against.
type Snapshot struct {
	RevRegDefID string            `json:"rev_reg_def_id"`
	Version     uint64            `json:"version"`
	Timestamp   int64             `json:"timestamp"`
	Accumulator anoncreds.Element `json:"accum"`
	Issued      uint32            `json:"issued"`
	Revoked     []uint32          `json:"revoked"`
}

type registryOptions struct {
	provider storage.Provider
	clock    func() time.Time
}

// Opt configures a Registry.
type Opt func(*registryOptions)

// WithStore journals every registry version to a store of the provider and restores the registry
// from it when a journal exists.
func WithStore(p storage.Provider) Opt {
	return func(o *registryOptions) {
		o.provider = p
	}
}

// WithClock sets the time source of event timestamps.
func WithClock(clock func() time.Time) Opt {
	return func(o *registryOptions) {
		o.clock = clock
	}
}

// Registry is the issuer side state of a revocation registry. It is safe for concurrent use:
// mutations are serialized and readers get copies.
type Registry struct {
	mu sync.RWMutex

	def     *Definition
	acc     *accumulator.Accumulator
	pk      *accumulator.PublicKey
	sk      *accumulator.SecretKey
	journal *journal
	clock   func() time.Time

	issued  *bitset.BitSet
	revoked *bitset.BitSet
	value   *ml.G1
	events  []*Event
}

// NewRegistry opens the registry of def.
func NewRegistry(def *Definition, priv *PrivateKey, opts ...Opt) (*Registry, error) {
	o := &registryOptions{clock: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	acc, pk, err := def.Key()
	if err != nil {
		return nil, err
	}

	sk, err := priv.trapdoor(acc.Curve(), pk)
	if err != nil {
		return nil, err
	}

	capacity := uint(def.Value.MaxCredNum)

	r := &Registry{
		def:     def,
		acc:     acc,
		pk:      pk,
		sk:      sk,
		clock:   o.clock,
		issued:  bitset.New(capacity),
		revoked: bitset.New(capacity),
	}

	if o.provider != nil {
		store, e := o.provider.OpenStore(journalStoreName)
		if e != nil {
			return nil, anoncreds.WrapError(anoncreds.KindInvalidState, e, "open registry journal")
		}

		r.journal = &journal{store: store, prefix: def.ID}

		events, e := r.journal.load()
		if e != nil {
			return nil, e
		}

		if len(events) > 0 {
			if e := r.restore(events); e != nil {
				return nil, e
			}

			logger.Infof("restored revocation registry %s at version %d", def.ID, r.head().Version)

			return r, nil
		}
	}

	initial := pk.P.Copy()

	if def.Value.IssuanceType == IssuanceByDefault {
		elements := make([]*ml.Zr, def.Value.MaxCredNum)
		for i := range elements {
			elements[i] = acc.Element(uint32(i))
		}

		initial = acc.Initial(sk, pk, elements)
	}

	ev := &Event{Type: EventCreate, Timestamp: r.clock().Unix(), Accumulator: anoncreds.G1Element(initial)}

	if err := r.commit(ev, initial, func() {}); err != nil {
		return nil, err
	}

	logger.Infof("created revocation registry %s", def.ID)

	return r, nil
}

func (r *Registry) restore(events []*Event) error {
	for i, ev := range events {
		if ev.Version != uint64(i) || (i == 0) != (ev.Type == EventCreate) {
			return anoncreds.NewError(anoncreds.KindInvalidState, "registry journal %s is corrupt at version %d", r.def.ID, i)
		}

		if ev.Type != EventCreate && ev.Index >= r.def.Value.MaxCredNum {
			return anoncreds.NewError(anoncreds.KindInvalidState, "registry journal %s has index %d out of range",
				r.def.ID, ev.Index)
		}

		applyEvent(ev, r.issued, r.revoked)
	}

	value, err := events[len(events)-1].Accumulator.G1(r.acc.Curve())
	if err != nil {
		return anoncreds.WrapError(anoncreds.KindInvalidState, err, "registry journal %s", r.def.ID)
	}

	r.value = value
	r.events = events

	return nil
}

func applyEvent(ev *Event, issued, revoked *bitset.BitSet) {
	switch ev.Type {
	case EventIssue:
		issued.Set(uint(ev.Index))
	case EventRevoke:
		revoked.Set(uint(ev.Index))
	case EventUnrevoke:
		revoked.Clear(uint(ev.Index))
	case EventCreate:
	}
}

// Definition returns the registry definition.
func (r *Registry) Definition() *Definition {
	return r.def
}

// IssueIndex allocates the next index, never reusing one, and returns its witness against the
// resulting accumulator.
func (r *Registry) IssueIndex() (*Witness, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	index := uint32(r.issued.Count())
	if index >= r.def.Value.MaxCredNum {
		return nil, anoncreds.NewError(anoncreds.KindRegistryFull, "registry %s holds %d credentials",
			r.def.ID, r.def.Value.MaxCredNum)
	}

	y := r.acc.Element(index)
	value, op := r.value, OpNone

	if r.def.Value.IssuanceType == IssuanceOnDemand {
		value, op = r.acc.Add(r.sk, r.value, y), OpAdd
	}

	c, err := r.acc.Witness(r.sk, value, y)
	if err != nil {
		return nil, anoncreds.WrapError(anoncreds.KindInvalidState, err, "compute witness for index %d", index)
	}

	ev := r.nextEvent(EventIssue, index, op, value)

	if err := r.commit(ev, value, func() { r.issued.Set(uint(index)) }); err != nil {
		return nil, err
	}

	logger.Infof("issued index %d of registry %s at version %d", index, r.def.ID, ev.Version)

	return r.witness(index, c, ev), nil
}

// Revoke removes an issued index from the accumulator. Revoking a revoked index changes nothing.
func (r *Registry) Revoke(index uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkIssued(index); err != nil {
		return err
	}

	if r.revoked.Test(uint(index)) {
		return nil
	}

	value, err := r.acc.Remove(r.sk, r.value, r.acc.Element(index))
	if err != nil {
		return anoncreds.WrapError(anoncreds.KindInvalidState, err, "remove index %d", index)
	}

	ev := r.nextEvent(EventRevoke, index, OpRemove, value)

	if err := r.commit(ev, value, func() { r.revoked.Set(uint(index)) }); err != nil {
		return err
	}

	logger.Infof("revoked index %d of registry %s at version %d", index, r.def.ID, ev.Version)

	return nil
}

// Unrevoke restores a revoked index. Only suspendable registries allow it.
func (r *Registry) Unrevoke(index uint32) error {
	if r.def.Value.Policy != Suspendable {
		return anoncreds.NewError(anoncreds.KindUnsupported, "registry %s does not allow unrevocation", r.def.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkIssued(index); err != nil {
		return err
	}

	if !r.revoked.Test(uint(index)) {
		return nil
	}

	value := r.acc.Add(r.sk, r.value, r.acc.Element(index))
	ev := r.nextEvent(EventUnrevoke, index, OpAdd, value)

	if err := r.commit(ev, value, func() { r.revoked.Clear(uint(index)) }); err != nil {
		return err
	}

	logger.Infof("unrevoked index %d of registry %s at version %d", index, r.def.ID, ev.Version)

	return nil
}

// Witness computes a fresh witness for an issued, unrevoked index against the current accumulator.
func (r *Registry) Witness(index uint32) (*Witness, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.checkIssued(index); err != nil {
		return nil, err
	}

	if r.revoked.Test(uint(index)) {
		return nil, anoncreds.NewError(anoncreds.KindCredentialRevoked, "index %d of registry %s is revoked",
			index, r.def.ID)
	}

	c, err := r.acc.Witness(r.sk, r.value, r.acc.Element(index))
	if err != nil {
		return nil, anoncreds.WrapError(anoncreds.KindInvalidState, err, "compute witness for index %d", index)
	}

	return r.witness(index, c, r.head()), nil
}

// Snapshot returns the current version.
func (r *Registry) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.snapshotAt(r.head().Version)
}

// SnapshotAt returns a past version.
func (r *Registry) SnapshotAt(version uint64) (*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if version > r.head().Version {
		return nil, anoncreds.NewError(anoncreds.KindInvalidState, "registry %s has no version %d", r.def.ID, version)
	}

	return r.snapshotAt(version), nil
}

// SnapshotAtTime returns the latest version whose timestamp is not after ts.
func (r *Registry) SnapshotAtTime(ts int64) (*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Timestamp <= ts {
			return r.snapshotAt(uint64(i)), nil
		}
	}

	return nil, anoncreds.NewError(anoncreds.KindInvalidState, "registry %s did not exist at %d", r.def.ID, ts)
}

// Delta returns the events that lead from version from to version to.
func (r *Registry) Delta(from, to uint64) (*Delta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if from > to || to > r.head().Version {
		return nil, anoncreds.NewError(anoncreds.KindMalformedInput, "invalid version range %d..%d of registry %s (head %d)",
			from, to, r.def.ID, r.head().Version)
	}

	d := &Delta{
		RevRegDefID: r.def.ID,
		From:        from,
		To:          to,
		Prev:        r.events[from].Accumulator,
		Events:      make([]Event, 0, to-from),
	}

	for _, ev := range r.events[from+1 : to+1] {
		d.Events = append(d.Events, *ev)
	}

	return d, nil
}

func (r *Registry) snapshotAt(version uint64) *Snapshot {
	issued := bitset.New(uint(r.def.Value.MaxCredNum))
	revoked := bitset.New(uint(r.def.Value.MaxCredNum))

	for _, ev := range r.events[:version+1] {
		applyEvent(ev, issued, revoked)
	}

	ev := r.events[version]

	s := &Snapshot{
		RevRegDefID: r.def.ID,
		Version:     ev.Version,
		Timestamp:   ev.Timestamp,
		Accumulator: ev.Accumulator,
		Issued:      uint32(issued.Count()),
		Revoked:     make([]uint32, 0, revoked.Count()),
	}

	for i, ok := revoked.NextSet(0); ok; i, ok = revoked.NextSet(i + 1) {
		s.Revoked = append(s.Revoked, uint32(i))
	}

	return s
}

func (r *Registry) checkIssued(index uint32) error {
	if index >= r.def.Value.MaxCredNum || !r.issued.Test(uint(index)) {
		return anoncreds.NewError(anoncreds.KindInvalidState, "index %d of registry %s was never issued", index, r.def.ID)
	}

	return nil
}

func (r *Registry) head() *Event {
	return r.events[len(r.events)-1]
}

func (r *Registry) nextEvent(t EventType, index uint32, op Op, value *ml.G1) *Event {
	head := r.head()

	ts := r.clock().Unix()
	if ts < head.Timestamp {
		ts = head.Timestamp
	}

	return &Event{
		Version:     head.Version + 1,
		Timestamp:   ts,
		Type:        t,
		Index:       index,
		Op:          op,
		Accumulator: anoncreds.G1Element(value),
	}
}

// commit journals ev and only then applies it to memory, so a failed write changes nothing.
func (r *Registry) commit(ev *Event, value *ml.G1, apply func()) error {
	if r.journal != nil {
		if err := r.journal.append(ev); err != nil {
			logger.Errorf("failed to journal version %d of registry %s: %s", ev.Version, r.def.ID, err)

			return err
		}
	}

	apply()

	r.value = value
	r.events = append(r.events, ev)

	return nil
}

func (r *Registry) witness(index uint32, c *ml.G1, ev *Event) *Witness {
	return &Witness{
		RevRegDefID: r.def.ID,
		Index:       index,
		C:           anoncreds.G1Element(c),
		Accumulator: ev.Accumulator,
		Version:     ev.Version,
		Timestamp:   ev.Timestamp,
	}
}
