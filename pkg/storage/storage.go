/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

//go:generate mockgen -destination ../internal/gomocks/storage/mocks.gen.go -package storage . Provider,Store

// Package storage defines the key-value store abstraction the revocation registry journals its history to.
package storage

import (
	"errors"
)

var (
	// ErrStoreNotFound is returned when a store is not found.
	ErrStoreNotFound = errors.New("store not found")
	// ErrDataNotFound is returned when data is not found.
	ErrDataNotFound = errors.New("data not found")
)

// Provider represents a storage provider.
type Provider interface {
	// OpenStore opens a store with the given name and returns a handle.
	// If the store has never been opened before, then it is created.
	// Store names are not case-sensitive.
	OpenStore(name string) (Store, error)

	// Close closes all stores created under this store provider.
	Close() error
}

// Operation represents an operation to be performed in the Batch method.
type Operation struct {
	Key   string `json:"key"`
	Value []byte `json:"value"` // A nil value will result in a delete operation.
}

// Store represents a storage database.
type Store interface {
	// Put stores the key + value pair.
	// If key is empty or value is nil, then an error will be returned.
	Put(key string, value []byte) error

	// Get fetches the value associated with the given key.
	// If key cannot be found, then an error wrapping ErrDataNotFound will be returned.
	Get(key string) ([]byte, error)

	// Delete deletes the key + value pair associated with key.
	Delete(key string) error

	// Batch performs multiple Put and/or Delete operations atomically:
	// either every operation is applied or none is.
	Batch(operations []Operation) error

	// Close closes this store object, freeing resources.
	Close() error
}
