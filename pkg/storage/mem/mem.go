/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package mem is an in-memory storage provider.
package mem

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hyperledger/aries-anoncreds-go/pkg/storage"
)

var (
	errEmptyKey = errors.New("key cannot be empty")
	errNilValue = errors.New("value cannot be nil")
)

// Provider represents an in-memory implementation of the storage.Provider interface.
type Provider struct {
	dbs  map[string]*memStore
	lock sync.RWMutex
}

type closer func(storeName string)

// NewProvider instantiates a new in-memory storage Provider.
func NewProvider() *Provider {
	return &Provider{dbs: make(map[string]*memStore)}
}

// OpenStore opens a store with the given name and returns a handle.
// If the store has never been opened before, then it is created.
func (p *Provider) OpenStore(name string) (storage.Store, error) {
	if name == "" {
		return nil, fmt.Errorf("store name cannot be empty")
	}

	storeName := strings.ToLower(name)

	p.lock.Lock()
	defer p.lock.Unlock()

	store := p.dbs[storeName]
	if store == nil {
		newStore := &memStore{name: storeName, db: make(map[string][]byte), close: p.removeStore}
		p.dbs[storeName] = newStore

		return newStore, nil
	}

	return store, nil
}

// Close closes all stores created under this store provider.
// All data in the stores is lost.
func (p *Provider) Close() error {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.dbs = make(map[string]*memStore)

	return nil
}

func (p *Provider) removeStore(name string) {
	p.lock.Lock()
	defer p.lock.Unlock()

	delete(p.dbs, name)
}

type memStore struct {
	name  string
	db    map[string][]byte
	close closer
	lock  sync.RWMutex
}

// Put stores the key + value pair.
func (m *memStore) Put(key string, value []byte) error {
	if key == "" {
		return errEmptyKey
	}

	if value == nil {
		return errNilValue
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	m.db[key] = copyBytes(value)

	return nil
}

// Get fetches the value associated with the given key.
func (m *memStore) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, errEmptyKey
	}

	m.lock.RLock()
	defer m.lock.RUnlock()

	value, ok := m.db[key]
	if !ok {
		return nil, storage.ErrDataNotFound
	}

	return copyBytes(value), nil
}

// Delete deletes the key + value pair (if it exists) associated with the given key.
func (m *memStore) Delete(key string) error {
	if key == "" {
		return errEmptyKey
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	delete(m.db, key)

	return nil
}

// Batch validates every operation before applying any of them under one lock.
func (m *memStore) Batch(operations []storage.Operation) error {
	if len(operations) == 0 {
		return errors.New("batch requires at least one operation")
	}

	for _, operation := range operations {
		if operation.Key == "" {
			return errEmptyKey
		}
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	for _, operation := range operations {
		if operation.Value == nil {
			delete(m.db, operation.Key)

			continue
		}

		m.db[operation.Key] = copyBytes(operation.Value)
	}

	return nil
}

// Close removes this store from the parent Provider. Its data is lost.
func (m *memStore) Close() error {
	m.close(m.name)

	return nil
}

func copyBytes(b []byte) []byte {
	return append([]byte{}, b...)
}
