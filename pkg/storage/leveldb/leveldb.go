/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package leveldb is a LevelDB storage provider, one database directory per store.
package leveldb

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/hyperledger/aries-anoncreds-go/pkg/storage"
)

const pathPattern = "%s-%s"

// Provider is a LevelDB implementation of the storage.Provider interface.
type Provider struct {
	dbPath string
	dbs    map[string]*store
	lock   sync.RWMutex
}

type closer func(storeName string)

// NewProvider instantiates Provider.
func NewProvider(dbPath string) *Provider {
	return &Provider{dbs: make(map[string]*store), dbPath: dbPath}
}

// OpenStore opens and returns a store for given name space.
func (p *Provider) OpenStore(name string) (storage.Store, error) {
	if name == "" {
		return nil, errors.New("store name cannot be blank")
	}

	name = strings.ToLower(name)

	p.lock.Lock()
	defer p.lock.Unlock()

	if s, ok := p.dbs[name]; ok {
		return s, nil
	}

	db, err := leveldb.OpenFile(fmt.Sprintf(pathPattern, p.dbPath, name), nil)
	if err != nil {
		return nil, err
	}

	s := &store{db: db, name: name, close: p.removeStore}
	p.dbs[name] = s

	return s, nil
}

// Close closes all stores created under this store provider.
func (p *Provider) Close() error {
	p.lock.RLock()

	openStoresSnapshot := make([]*store, 0, len(p.dbs))

	for _, openStore := range p.dbs {
		openStoresSnapshot = append(openStoresSnapshot, openStore)
	}
	p.lock.RUnlock()

	for _, openStore := range openStoresSnapshot {
		err := openStore.Close()
		if err != nil {
			return fmt.Errorf(`failed to close open store with name "%s": %w`, openStore.name, err)
		}
	}

	return nil
}

func (p *Provider) removeStore(name string) {
	p.lock.Lock()
	defer p.lock.Unlock()

	delete(p.dbs, name)
}

type store struct {
	db    *leveldb.DB
	name  string
	close closer
}

// Put stores the key and the record.
func (s *store) Put(key string, value []byte) error {
	if key == "" {
		return errors.New("key cannot be blank")
	}

	if value == nil {
		return errors.New("value cannot be nil")
	}

	return s.db.Put([]byte(key), value, nil)
}

// Get fetches the record based on key.
func (s *store) Get(key string) ([]byte, error) {
	data, err := s.db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, storage.ErrDataNotFound
		}

		return nil, err
	}

	return data, nil
}

// Delete will delete record with k key.
func (s *store) Delete(key string) error {
	if key == "" {
		return errors.New("key cannot be blank")
	}

	err := s.db.Delete([]byte(key), nil)
	if err != nil {
		return fmt.Errorf("failed to delete from underlying database: %w", err)
	}

	return nil
}

// Batch writes all operations in one leveldb write batch.
func (s *store) Batch(operations []storage.Operation) error {
	if len(operations) == 0 {
		return errors.New("batch requires at least one operation")
	}

	batch := new(leveldb.Batch)

	for _, operation := range operations {
		if operation.Key == "" {
			return errors.New("key cannot be blank")
		}

		if operation.Value == nil {
			batch.Delete([]byte(operation.Key))

			continue
		}

		batch.Put([]byte(operation.Key), operation.Value)
	}

	return s.db.Write(batch, nil)
}

func (s *store) Close() error {
	s.close(s.name)

	err := s.db.Close()
	if err != nil && !errors.Is(err, leveldb.ErrClosed) {
		return err
	}

	return nil
}
