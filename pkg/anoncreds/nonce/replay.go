/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package nonce

import (
	"sync"
	"time"

	"github.com/bluele/gcache"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/common/log"
)

var logger = log.New("anoncreds/nonce")

// ReplayCache remembers recently seen nonces so that a verifier can reject a presentation (or an
// issuer a request) that reuses one.
type ReplayCache struct {
	mu    sync.Mutex
	cache gcache.Cache
}

type cacheOpts struct {
	clock gcache.Clock
}

// CacheOpt configures a ReplayCache.
type CacheOpt func(*cacheOpts)

// WithClock sets the clock used for expiry.
func WithClock(clock gcache.Clock) CacheOpt {
	return func(o *cacheOpts) {
		o.clock = clock
	}
}

// NewReplayCache keeps up to size nonces, each for ttl.
func NewReplayCache(size int, ttl time.Duration, opts ...CacheOpt) *ReplayCache {
	o := &cacheOpts{clock: gcache.NewRealClock()}

	for _, opt := range opts {
		opt(o)
	}

	return &ReplayCache{
		cache: gcache.New(size).LRU().Expiration(ttl).Clock(o.clock).Build(),
	}
}

// Check records n and fails with ReplayedNonce when it was seen within its lifetime.
func (c *ReplayCache) Check(n Nonce) error {
	if err := n.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cache.Has(string(n)) {
		logger.Warnf("replayed nonce %s", n)

		return anoncreds.NewError(anoncreds.KindReplayedNonce, "nonce %s was already used", n)
	}

	if err := c.cache.Set(string(n), struct{}{}); err != nil {
		return anoncreds.WrapError(anoncreds.KindInvalidState, err, "record nonce")
	}

	return nil
}

// Len returns the number of live nonces.
func (c *ReplayCache) Len() int {
	return c.cache.Len(true)
}
